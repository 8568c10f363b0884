package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/sigmap/photomap"
	"github.com/sigmap/photomap/internal/config"
)

func main() {
	var extractDir, records, out, thumbDir, thumbFormat, extractor, exiftool, exts, originalPrefix string
	var convert, thumbnails, lossless, verbose bool
	var thumbWidth, thumbHeight, quality int

	flag.StringVar(&extractDir, "extract-exif", "", "extract EXIF data from photos in this directory")
	flag.BoolVar(&convert, "convert", false, "convert the metadata document to GeoJSON")
	flag.BoolVar(&thumbnails, "thumbnails", false, "generate thumbnails (use with -convert)")

	flag.IntVar(&thumbWidth, "thumb-width", 150, "thumbnail maximum width")
	flag.IntVar(&thumbHeight, "thumb-height", 150, "thumbnail maximum height")
	flag.StringVar(&thumbDir, "thumb-dir", "", "thumbnail directory (default: thumbnails)")
	flag.StringVar(&thumbFormat, "thumb-format", "jpg", "thumbnail format: jpg|png|webp")
	flag.IntVar(&quality, "quality", 85, "JPEG/WebP thumbnail quality (1-100)")
	flag.BoolVar(&lossless, "lossless", false, "WebP lossless thumbnails")

	flag.StringVar(&records, "records", "", "intermediate metadata document (default: photos.json)")
	flag.StringVar(&out, "out", "", "output feature collection (default: photos.geojson)")
	flag.StringVar(&originalPrefix, "original-prefix", "", "page-relative prefix for original photo links (default: photos)")
	flag.StringVar(&extractor, "extractor", "", "extractor implementation: exiftool|library")
	flag.StringVar(&exiftool, "exiftool", "", "path to the exiftool binary")
	flag.StringVar(&exts, "ext", "", "comma-separated image extensions (default: jpg,jpeg)")
	flag.BoolVar(&verbose, "verbose", false, "development-style log output")

	flag.Parse()

	if extractDir == "" && !convert {
		fmt.Fprintf(os.Stderr, "usage: %s -extract-exif DIR and/or -convert [-thumbnails]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
		os.Exit(2)
	}

	logger, err := newLogger(verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg := config.FromEnv()
	cfg.SourceDir = extractDir
	cfg.Thumbnails.Enabled = thumbnails
	cfg.Thumbnails.Options.Width = thumbWidth
	cfg.Thumbnails.Options.Height = thumbHeight
	cfg.Thumbnails.Options.Format = thumbFormat
	cfg.Thumbnails.Options.Quality = quality
	cfg.Thumbnails.Options.Lossless = lossless
	if records != "" {
		cfg.RecordsPath = records
	}
	if out != "" {
		cfg.OutputPath = out
	}
	if originalPrefix != "" {
		cfg.OriginalPrefix = originalPrefix
	}
	if thumbDir != "" {
		cfg.Thumbnails.Dir = thumbDir
	}
	if extractor != "" {
		cfg.Extractor = extractor
	}
	if exiftool != "" {
		cfg.ExifToolPath = exiftool
	}
	if exts != "" {
		cfg.Extensions = strings.Split(exts, ",")
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid options: %v\n", err)
		os.Exit(2)
	}

	p, err := photomap.New(cfg, logger)
	if err != nil {
		logger.Error("pipeline setup failed", zap.Error(err))
		os.Exit(1)
	}

	report, err := p.Run(context.Background(), extractDir != "", convert)
	if err != nil {
		if errors.Is(err, photomap.ErrNoInput) {
			logger.Error("nothing to convert, run with -extract-exif first", zap.Error(err))
		} else {
			logger.Error("pipeline failed", zap.Error(err))
		}
		os.Exit(1)
	}

	if convert {
		logger.Info("done",
			zap.Int("processed", report.Processed),
			zap.Int("features", report.Features),
			zap.Int("dropped", report.Dropped),
			zap.Int("thumb_created", report.ThumbCreated),
			zap.Int("thumb_failed", report.ThumbFailed),
		)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
