package geojson

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/sigmap/photomap/pkg/gps"
)

// DefaultDecimals keeps roughly 0.1m of coordinate precision.
const DefaultDecimals = 6

// Compact shrinks a GeoJSON document for web serving: every Point
// coordinate pair is rounded to the given number of decimal places and all
// insignificant whitespace is removed.
func Compact(data []byte, decimals int) ([]byte, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("input is not valid JSON")
	}
	if decimals < 0 {
		return nil, fmt.Errorf("invalid decimal count %d", decimals)
	}

	features := gjson.GetBytes(data, "features")
	for i, f := range features.Array() {
		if f.Get("geometry.type").String() != "Point" {
			continue
		}
		coords := f.Get("geometry.coordinates").Array()
		if len(coords) != 2 || coords[0].Type != gjson.Number || coords[1].Type != gjson.Number {
			continue
		}

		lon := gps.Round(coords[0].Float(), decimals)
		lat := gps.Round(coords[1].Float(), decimals)
		raw := fmt.Sprintf("[%s,%s]", gps.Format(lon), gps.Format(lat))

		var err error
		data, err = sjson.SetRawBytes(data, fmt.Sprintf("features.%d.geometry.coordinates", i), []byte(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to rewrite feature %d: %w", i, err)
		}
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to compact document: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteGzip writes a gzipped copy of data at best compression, for web
// servers that serve precompressed files. The file is written atomically so
// an interrupted run never leaves a truncated archive being served.
func WriteGzip(path string, data []byte) error {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return err
	}
	if _, err := zw.Write(data); err != nil {
		return fmt.Errorf("failed to compress %s: %w", path, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to compress %s: %w", path, err)
	}
	return WriteFileAtomic(path, buf.Bytes())
}
