package geojson

import (
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

const prettyDoc = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "geometry": {
        "type": "Point",
        "coordinates": [13.73732849123, 51.05043217999]
      },
      "properties": {
        "filename": "a.jpg"
      }
    },
    {
      "type": "Feature",
      "geometry": {
        "type": "Point",
        "coordinates": [-0.12765, 51.50735]
      },
      "properties": {
        "filename": "b.jpg"
      }
    }
  ]
}`

func TestCompactRoundsCoordinates(t *testing.T) {
	out, err := Compact([]byte(prettyDoc), 6)
	if err != nil {
		t.Fatalf("Compact failed: %v", err)
	}

	first := gjson.GetBytes(out, "features.0.geometry.coordinates")
	coords := first.Array()
	if len(coords) != 2 {
		t.Fatalf("coordinates = %s", first.Raw)
	}
	if coords[0].Float() != 13.737328 {
		t.Errorf("lon = %v, want 13.737328", coords[0].Float())
	}
	if coords[1].Float() != 51.050432 {
		t.Errorf("lat = %v, want 51.050432", coords[1].Float())
	}

	// Already-short coordinates pass through unchanged.
	second := gjson.GetBytes(out, "features.1.geometry.coordinates").Array()
	if second[0].Float() != -0.12765 || second[1].Float() != 51.50735 {
		t.Errorf("second coordinates = %v, %v", second[0].Float(), second[1].Float())
	}
}

func TestCompactStripsWhitespace(t *testing.T) {
	out, err := Compact([]byte(prettyDoc), 6)
	if err != nil {
		t.Fatalf("Compact failed: %v", err)
	}

	if bytes.ContainsRune(out, '\n') {
		t.Error("compacted output contains newlines")
	}
	if strings.Contains(string(out), ": ") {
		t.Error("compacted output contains padded separators")
	}
	if len(out) >= len(prettyDoc) {
		t.Errorf("compaction did not shrink the document: %d >= %d", len(out), len(prettyDoc))
	}
}

func TestCompactPreservesProperties(t *testing.T) {
	out, err := Compact([]byte(prettyDoc), 6)
	if err != nil {
		t.Fatalf("Compact failed: %v", err)
	}

	if got := gjson.GetBytes(out, "features.0.properties.filename").String(); got != "a.jpg" {
		t.Errorf("filename property = %q", got)
	}
	if got := gjson.GetBytes(out, "type").String(); got != "FeatureCollection" {
		t.Errorf("type = %q", got)
	}
}

func TestCompactInvalidInput(t *testing.T) {
	if _, err := Compact([]byte("{broken"), 6); err == nil {
		t.Error("Compact accepted invalid JSON")
	}
	if _, err := Compact([]byte(prettyDoc), -1); err == nil {
		t.Error("Compact accepted a negative decimal count")
	}
}

func TestCompactIgnoresNonPointGeometries(t *testing.T) {
	doc := `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"LineString","coordinates":[[1.1111111,2.2222222],[3.3,4.4]]},"properties":{}}]}`

	out, err := Compact([]byte(doc), 2)
	if err != nil {
		t.Fatalf("Compact failed: %v", err)
	}

	// Nested coordinate arrays are left as-is.
	got := gjson.GetBytes(out, "features.0.geometry.coordinates.0.0").Float()
	if got != 1.1111111 {
		t.Errorf("LineString coordinate rewritten to %v", got)
	}
}

func TestWriteGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photos.geojson.gz")
	payload := []byte(`{"type":"FeatureCollection","features":[]}`)

	if err := WriteGzip(path, payload); err != nil {
		t.Fatalf("WriteGzip failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("output is not gzip: %v", err)
	}
	defer zr.Close()

	got, err := io.ReadAll(zr)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("gzip round-trip does not match the input")
	}
}

// TestWriteGzipReplacesExisting: rewriting an archive goes through a temp
// file and a rename, so a stale copy is swapped whole and no partial file
// or temp residue is left next to it.
func TestWriteGzipReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photos.geojson.gz")

	if err := os.WriteFile(path, []byte("stale, not even gzip"), 0644); err != nil {
		t.Fatal(err)
	}

	payload := []byte(`{"type":"FeatureCollection","features":[]}`)
	if err := WriteGzip(path, payload); err != nil {
		t.Fatalf("WriteGzip failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("rewritten archive is not gzip: %v", err)
	}
	got, err := io.ReadAll(zr)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("rewritten archive does not match the input")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("output directory holds %d entries, want 1", len(entries))
	}
}
