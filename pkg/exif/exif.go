// Package exif extracts per-photo metadata records from a directory tree.
//
// A Record is the raw JSON object for one photo, in exiftool's tag schema.
// The schema is treated as an opaque but stable contract: records pass through
// the intermediate metadata document untouched, and typed accessors pull out
// the handful of tags the converter needs. Two extractors produce records:
// ExifTool shells out to the exiftool binary once per batch, Library reads
// tags in-process with goexif.
package exif

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tidwall/gjson"

	"github.com/sigmap/photomap/pkg/gps"
)

// ErrNoCoordinate is returned by coordinate accessors when the record carries
// no value for the requested GPS tag.
var ErrNoCoordinate = errors.New("gps tag not present")

// DefaultExtensions are the image extensions considered by both extractors.
var DefaultExtensions = []string{"jpg", "jpeg"}

// Extractor produces one metadata record per photo under a directory.
type Extractor interface {
	Extract(ctx context.Context, dir string) ([]Record, error)
}

// Record is the raw JSON metadata object for a single photo.
type Record []byte

// Get resolves an arbitrary tag path inside the record.
func (r Record) Get(path string) gjson.Result {
	return gjson.GetBytes(r, path)
}

// SourceFile returns the path of the photo the record was read from.
func (r Record) SourceFile() string {
	return r.Get("SourceFile").String()
}

// FileName returns the photo's base filename, falling back to the basename of
// SourceFile when the FileName tag is absent.
func (r Record) FileName() string {
	if name := r.Get("FileName").String(); name != "" {
		return name
	}
	if src := r.SourceFile(); src != "" {
		return filepath.Base(src)
	}
	return ""
}

// HasGPS reports whether both GPS coordinate tags are present.
func (r Record) HasGPS() bool {
	return r.Get("GPSLatitude").Exists() && r.Get("GPSLongitude").Exists()
}

// Latitude parses the GPS latitude in signed decimal degrees.
func (r Record) Latitude() (float64, error) {
	return r.coordinate("GPSLatitude", "GPSLatitudeRef")
}

// Longitude parses the GPS longitude in signed decimal degrees.
func (r Record) Longitude() (float64, error) {
	return r.coordinate("GPSLongitude", "GPSLongitudeRef")
}

func (r Record) coordinate(tag, refTag string) (float64, error) {
	res := r.Get(tag)
	if !res.Exists() {
		return 0, fmt.Errorf("%s: %w", tag, ErrNoCoordinate)
	}

	var v float64
	switch res.Type {
	case gjson.Number:
		v = res.Num
	case gjson.String:
		parsed, err := gps.Parse(res.Str)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", tag, err)
		}
		v = parsed
	default:
		return 0, fmt.Errorf("%s: unexpected value %q", tag, res.Raw)
	}

	return gps.ApplyRef(v, r.Get(refTag).String()), nil
}

// exifTimeFormats are the timestamp layouts observed in DateTimeOriginal
// values, in the order they are tried.
var exifTimeFormats = []string{
	"2006:01:02 15:04:05-07:00",
	"2006:01:02 15:04:05Z07:00",
	"2006:01:02 15:04:05",
}

// Timestamp parses the capture time from DateTimeOriginal, falling back to
// CreateDate. The second return value is false when no timestamp parses.
func (r Record) Timestamp() (time.Time, bool) {
	for _, tag := range []string{"DateTimeOriginal", "CreateDate"} {
		raw := r.Get(tag).String()
		if raw == "" {
			continue
		}
		for _, layout := range exifTimeFormats {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// Orientation returns the EXIF orientation value (1-8), defaulting to 1
// (upright) when the tag is absent or out of range.
func (r Record) Orientation() int {
	o := int(r.Get("Orientation").Int())
	if o < 1 || o > 8 {
		return 1
	}
	return o
}

// WriteRecords writes the intermediate metadata document: a JSON array of raw
// per-photo records.
func WriteRecords(path string, records []Record) error {
	raws := make([]json.RawMessage, len(records))
	for i, r := range records {
		raws[i] = json.RawMessage(r)
	}

	data, err := json.MarshalIndent(raws, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata records: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata document: %w", err)
	}
	return nil
}

// ReadRecords loads a metadata document written by WriteRecords or by
// exiftool itself. Array entries that are not JSON objects are skipped.
func ReadRecords(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseRecords(data)
}

func parseRecords(data []byte) ([]Record, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("metadata document is not valid JSON")
	}

	doc := gjson.ParseBytes(data)
	if !doc.IsArray() {
		return nil, errors.New("metadata document is not a JSON array")
	}

	var records []Record
	for _, entry := range doc.Array() {
		if !entry.IsObject() {
			continue
		}
		records = append(records, Record(entry.Raw))
	}
	return records, nil
}
