package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/sigmap/photomap/pkg/thumb"
)

// Extractor implementation names.
const (
	ExtractorExifTool = "exiftool"
	ExtractorLibrary  = "library"
)

// Config holds the pipeline configuration. Precedence is flag > environment
// > default; the CLI applies flags on top of FromEnv().
type Config struct {
	SourceDir    string   // photo directory for extraction
	RecordsPath  string   // intermediate metadata document
	OutputPath   string   // feature collection destination
	Extractor    string   // exiftool | library
	ExifToolPath string   // exiftool binary override
	Extensions   []string // image extensions to consider

	// OriginalPrefix is the page-relative path prefix for the original photo
	// links in the output. The viewer resolves these against its own URL, so
	// they must stay relative even when extraction ran over an absolute
	// directory.
	OriginalPrefix string

	Thumbnails ThumbnailConfig
}

// ThumbnailConfig holds thumbnail generation settings.
type ThumbnailConfig struct {
	Enabled bool
	Dir     string // output directory, also the path prefix in properties
	Options thumb.Options
}

// Default returns a configuration with default values.
func Default() *Config {
	return &Config{
		RecordsPath:    "photos.json",
		OutputPath:     "photos.geojson",
		Extractor:      ExtractorExifTool,
		ExifToolPath:   "exiftool",
		Extensions:     []string{"jpg", "jpeg"},
		OriginalPrefix: "photos",
		Thumbnails: ThumbnailConfig{
			Dir:     "thumbnails",
			Options: thumb.DefaultOptions(),
		},
	}
}

// FromEnv returns the defaults with environment overrides applied. A .env
// file in the working directory is loaded first when present.
func FromEnv() *Config {
	_ = godotenv.Load()

	c := Default()
	if v := os.Getenv("PHOTOMAP_RECORDS"); v != "" {
		c.RecordsPath = v
	}
	if v := os.Getenv("PHOTOMAP_OUTPUT"); v != "" {
		c.OutputPath = v
	}
	if v := os.Getenv("PHOTOMAP_THUMB_DIR"); v != "" {
		c.Thumbnails.Dir = v
	}
	if v := os.Getenv("PHOTOMAP_ORIGINAL_PREFIX"); v != "" {
		c.OriginalPrefix = v
	}
	if v := os.Getenv("PHOTOMAP_EXIFTOOL"); v != "" {
		c.ExifToolPath = v
	}
	if v := os.Getenv("PHOTOMAP_EXTRACTOR"); v != "" {
		c.Extractor = v
	}
	if v := os.Getenv("PHOTOMAP_THUMB_QUALITY"); v != "" {
		if q, err := strconv.Atoi(v); err == nil {
			c.Thumbnails.Options.Quality = q
		}
	}
	return c
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.RecordsPath == "" {
		return fmt.Errorf("records path cannot be empty")
	}
	if c.OutputPath == "" {
		return fmt.Errorf("output path cannot be empty")
	}
	if c.Extractor != ExtractorExifTool && c.Extractor != ExtractorLibrary {
		return fmt.Errorf("extractor must be %q or %q", ExtractorExifTool, ExtractorLibrary)
	}
	if len(c.Extensions) == 0 {
		return fmt.Errorf("extensions cannot be empty")
	}

	t := c.Thumbnails
	if t.Enabled {
		if t.Dir == "" {
			return fmt.Errorf("thumbnail directory cannot be empty")
		}
		if t.Options.Width < 1 || t.Options.Height < 1 {
			return fmt.Errorf("thumbnail size must be positive, got %dx%d", t.Options.Width, t.Options.Height)
		}
		if t.Options.Quality < 1 || t.Options.Quality > 100 {
			return fmt.Errorf("thumbnail quality must be between 1 and 100")
		}
		switch t.Options.Format {
		case "jpg", "jpeg", "png", "webp":
		default:
			return fmt.Errorf("unsupported thumbnail format %q", t.Options.Format)
		}
	}
	return nil
}
