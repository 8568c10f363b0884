// Package photomap prepares photo collections for map visualization.
//
// It extracts GPS and capture-time metadata from a directory of photos,
// optionally generates marker thumbnails, and writes a GeoJSON
// FeatureCollection that a static map page can fetch and render.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"log"
//
//		"github.com/sigmap/photomap"
//		"github.com/sigmap/photomap/internal/config"
//	)
//
//	func main() {
//		cfg := config.Default()
//		cfg.SourceDir = "photos"
//		cfg.Thumbnails.Enabled = true
//
//		p, err := photomap.New(cfg, nil)
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		report, err := p.Run(context.Background(), true, true)
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		log.Printf("features: %d, dropped: %d", report.Features, report.Dropped)
//	}
//
// The pipeline is strictly sequential and idempotent: extraction runs the
// metadata tool once per batch, conversion is a single pass over the
// resulting records, and the output document is written atomically so an
// interrupted run never leaves a truncated file behind.
package photomap

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/sigmap/photomap/internal/config"
	"github.com/sigmap/photomap/pkg/exif"
	"github.com/sigmap/photomap/pkg/geojson"
	"github.com/sigmap/photomap/pkg/thumb"
	"github.com/sigmap/photomap/pkg/types"
)

// Version of the photomap library
const Version = "1.0.0"

// ErrNoInput indicates a convert-only run found no metadata document at the
// configured records path.
var ErrNoInput = errors.New("metadata document not found")

// Pipeline bundles an extractor and a converter behind one entry point.
type Pipeline struct {
	cfg       *config.Config
	log       *zap.Logger
	extractor exif.Extractor
}

// New wires a pipeline from a validated configuration. A nil logger
// disables logging.
func New(cfg *config.Config, log *zap.Logger) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var extractor exif.Extractor
	switch cfg.Extractor {
	case config.ExtractorLibrary:
		lib := exif.NewLibrary(log)
		lib.Extensions = cfg.Extensions
		extractor = lib
	default:
		et := exif.NewExifTool(log)
		et.Path = cfg.ExifToolPath
		et.Extensions = cfg.Extensions
		extractor = et
	}

	return &Pipeline{
		cfg:       cfg,
		log:       log,
		extractor: extractor,
	}, nil
}

// Extract runs metadata extraction over the configured source directory and
// writes the intermediate metadata document.
func (p *Pipeline) Extract(ctx context.Context) ([]exif.Record, error) {
	records, err := p.extractor.Extract(ctx, p.cfg.SourceDir)
	if err != nil {
		return nil, err
	}

	if err := exif.WriteRecords(p.cfg.RecordsPath, records); err != nil {
		return nil, err
	}

	withGPS := 0
	for _, r := range records {
		if r.HasGPS() {
			withGPS++
		}
	}
	p.log.Info("metadata document written",
		zap.String("path", p.cfg.RecordsPath),
		zap.Int("photos", len(records)),
		zap.Int("with_gps", withGPS),
	)
	return records, nil
}

// Convert turns metadata records into the output feature collection and
// writes it atomically.
func (p *Pipeline) Convert(records []exif.Record) (types.Report, error) {
	conv := geojson.NewConverter(p.log)
	conv.ThumbPrefix = p.cfg.Thumbnails.Dir
	conv.OriginalPrefix = p.cfg.OriginalPrefix

	if p.cfg.Thumbnails.Enabled {
		gen, err := thumb.NewGenerator(p.cfg.Thumbnails.Dir, p.cfg.Thumbnails.Options, p.log)
		if err != nil {
			return types.Report{}, err
		}
		conv.Thumbs = gen
	}

	fc, report := conv.Convert(records)

	if err := geojson.WriteCollection(p.cfg.OutputPath, fc); err != nil {
		return report, err
	}

	p.log.Info("feature collection written",
		zap.String("path", p.cfg.OutputPath),
		zap.Int("features", report.Features),
		zap.Int("dropped", report.Dropped),
		zap.Int("thumb_created", report.ThumbCreated),
		zap.Int("thumb_failed", report.ThumbFailed),
	)
	return report, nil
}

// Run executes the requested pipeline stages. A convert-only run re-reads
// the metadata document from the records path.
func (p *Pipeline) Run(ctx context.Context, doExtract, doConvert bool) (types.Report, error) {
	var records []exif.Record
	var err error

	if doExtract {
		records, err = p.Extract(ctx)
		if err != nil {
			return types.Report{}, err
		}
	}

	if !doConvert {
		return types.Report{}, nil
	}

	if records == nil {
		records, err = exif.ReadRecords(p.cfg.RecordsPath)
		if err != nil {
			if os.IsNotExist(err) {
				return types.Report{}, fmt.Errorf("%w: %s", ErrNoInput, p.cfg.RecordsPath)
			}
			return types.Report{}, err
		}
	}

	return p.Convert(records)
}
