// Package geojson assembles photo metadata records into a GeoJSON
// FeatureCollection for the map viewer.
package geojson

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/sigmap/photomap/pkg/exif"
	"github.com/sigmap/photomap/pkg/gps"
	"github.com/sigmap/photomap/pkg/thumb"
	"github.com/sigmap/photomap/pkg/types"
)

// Coordinates stores a single longitude, latitude pair.
type Coordinates []float64

// Geometry stores a GeoJSON geometry dictionary.
type Geometry struct {
	Type        string      `json:"type"`
	Coordinates Coordinates `json:"coordinates"`
}

// Feature is one photo on the map: a Point geometry plus a properties bag.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// FeatureCollection is the output document consumed by the viewer.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// NewCollection returns an empty FeatureCollection.
func NewCollection() *FeatureCollection {
	return &FeatureCollection{
		Type:     "FeatureCollection",
		Features: []Feature{},
	}
}

// Converter turns metadata records into features. Records without usable
// coordinates are dropped and counted; a failed thumbnail keeps the feature
// but loses its thumb property.
type Converter struct {
	Thumbs         *thumb.Generator // nil disables thumbnail generation
	ThumbPrefix    string           // relative path prefix for thumb properties
	OriginalPrefix string           // relative path prefix for original properties
	Log            *zap.Logger
}

// NewConverter returns a converter without thumbnail generation.
func NewConverter(log *zap.Logger) *Converter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Converter{Log: log}
}

// Convert builds one feature per record that carries valid coordinates,
// preserving input order. It never aborts on a bad record.
func (c *Converter) Convert(records []exif.Record) (*FeatureCollection, types.Report) {
	log := c.Log
	if log == nil {
		log = zap.NewNop()
	}

	fc := NewCollection()
	var report types.Report

	for _, rec := range records {
		report.Processed++

		lon, lat, ok := c.coordinates(rec, log)
		if !ok {
			report.Dropped++
			continue
		}

		props := map[string]any{
			"filename": rec.FileName(),
			"original": c.originalPath(rec),
		}

		if t, ok := rec.Timestamp(); ok {
			props["datetime"] = t.Format("2006-01-02T15:04:05")
		}

		if c.Thumbs != nil {
			name, err := c.Thumbs.Generate(rec.SourceFile(), rec.Orientation())
			if err != nil {
				// Soft failure: the feature survives without a thumbnail.
				report.ThumbFailed++
				log.Warn("thumbnail generation failed",
					zap.String("source", rec.SourceFile()),
					zap.Error(err),
				)
			} else {
				report.ThumbCreated++
				props["thumb"] = filepath.ToSlash(filepath.Join(c.ThumbPrefix, name))
			}
		}

		fc.Features = append(fc.Features, Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: Coordinates{lon, lat},
			},
			Properties: props,
		})
		report.Features++
	}

	return fc, report
}

// coordinates extracts and validates the record's GPS position.
func (c *Converter) coordinates(rec exif.Record, log *zap.Logger) (lon, lat float64, ok bool) {
	lat, err := rec.Latitude()
	if err != nil {
		log.Warn("dropping record without usable latitude",
			zap.String("filename", rec.FileName()),
			zap.Error(err),
		)
		return 0, 0, false
	}

	lon, err = rec.Longitude()
	if err != nil {
		log.Warn("dropping record without usable longitude",
			zap.String("filename", rec.FileName()),
			zap.Error(err),
		)
		return 0, 0, false
	}

	if !gps.ValidLatitude(lat) || !gps.ValidLongitude(lon) {
		log.Warn("dropping record with out-of-range coordinates",
			zap.String("filename", rec.FileName()),
			zap.Float64("lat", lat),
			zap.Float64("lon", lon),
		)
		return 0, 0, false
	}

	return lon, lat, true
}

func (c *Converter) originalPath(rec exif.Record) string {
	if c.OriginalPrefix == "" {
		return filepath.ToSlash(rec.SourceFile())
	}
	return filepath.ToSlash(filepath.Join(c.OriginalPrefix, rec.FileName()))
}

// WriteCollection serializes the feature collection as indented UTF-8 JSON
// and writes it atomically: an interrupted run leaves any pre-existing
// output file untouched.
func WriteCollection(path string, fc *FeatureCollection) error {
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal feature collection: %w", err)
	}
	return WriteFileAtomic(path, data)
}

// WriteFileAtomic writes data to path via a temp file in the same directory
// followed by a rename.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to chmod %s: %w", tmp.Name(), err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
