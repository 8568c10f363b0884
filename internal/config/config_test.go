package config

import (
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.RecordsPath != "photos.json" {
		t.Errorf("RecordsPath = %q", cfg.RecordsPath)
	}
	if cfg.OutputPath != "photos.geojson" {
		t.Errorf("OutputPath = %q", cfg.OutputPath)
	}
	if cfg.Extractor != ExtractorExifTool {
		t.Errorf("Extractor = %q", cfg.Extractor)
	}
	if cfg.Thumbnails.Dir != "thumbnails" {
		t.Errorf("Thumbnails.Dir = %q", cfg.Thumbnails.Dir)
	}
	if cfg.OriginalPrefix != "photos" {
		t.Errorf("OriginalPrefix = %q", cfg.OriginalPrefix)
	}
	if cfg.Thumbnails.Options.Width != 150 || cfg.Thumbnails.Options.Height != 150 {
		t.Errorf("thumbnail size = %dx%d, want 150x150",
			cfg.Thumbnails.Options.Width, cfg.Thumbnails.Options.Height)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("PHOTOMAP_RECORDS", "meta/records.json")
	t.Setenv("PHOTOMAP_OUTPUT", "web/photos.geojson")
	t.Setenv("PHOTOMAP_THUMB_DIR", "web/thumbs")
	t.Setenv("PHOTOMAP_ORIGINAL_PREFIX", "img/full")
	t.Setenv("PHOTOMAP_EXTRACTOR", ExtractorLibrary)
	t.Setenv("PHOTOMAP_THUMB_QUALITY", "70")

	cfg := FromEnv()

	if cfg.RecordsPath != "meta/records.json" {
		t.Errorf("RecordsPath = %q", cfg.RecordsPath)
	}
	if cfg.OutputPath != "web/photos.geojson" {
		t.Errorf("OutputPath = %q", cfg.OutputPath)
	}
	if cfg.Thumbnails.Dir != "web/thumbs" {
		t.Errorf("Thumbnails.Dir = %q", cfg.Thumbnails.Dir)
	}
	if cfg.OriginalPrefix != "img/full" {
		t.Errorf("OriginalPrefix = %q", cfg.OriginalPrefix)
	}
	if cfg.Extractor != ExtractorLibrary {
		t.Errorf("Extractor = %q", cfg.Extractor)
	}
	if cfg.Thumbnails.Options.Quality != 70 {
		t.Errorf("Quality = %d", cfg.Thumbnails.Options.Quality)
	}
}

func TestFromEnvIgnoresBadQuality(t *testing.T) {
	t.Setenv("PHOTOMAP_THUMB_QUALITY", "not-a-number")

	cfg := FromEnv()
	if cfg.Thumbnails.Options.Quality != Default().Thumbnails.Options.Quality {
		t.Errorf("Quality = %d, want default", cfg.Thumbnails.Options.Quality)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty records path", func(c *Config) { c.RecordsPath = "" }},
		{"empty output path", func(c *Config) { c.OutputPath = "" }},
		{"unknown extractor", func(c *Config) { c.Extractor = "magic" }},
		{"no extensions", func(c *Config) { c.Extensions = nil }},
		{"zero thumb width", func(c *Config) {
			c.Thumbnails.Enabled = true
			c.Thumbnails.Options.Width = 0
		}},
		{"quality out of range", func(c *Config) {
			c.Thumbnails.Enabled = true
			c.Thumbnails.Options.Quality = 101
		}},
		{"bad thumb format", func(c *Config) {
			c.Thumbnails.Enabled = true
			c.Thumbnails.Options.Format = "bmp"
		}},
		{"empty thumb dir", func(c *Config) {
			c.Thumbnails.Enabled = true
			c.Thumbnails.Dir = ""
		}},
	}

	for _, tt := range tests {
		cfg := Default()
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: Validate() passed, want error", tt.name)
		}
	}
}

func TestValidateThumbnailOptionsIgnoredWhenDisabled(t *testing.T) {
	cfg := Default()
	cfg.Thumbnails.Enabled = false
	cfg.Thumbnails.Options.Width = 0

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v with thumbnails disabled", err)
	}
}
