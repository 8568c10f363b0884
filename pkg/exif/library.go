package exif

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
	"go.uber.org/zap"

	"github.com/sigmap/photomap/internal/utils"
)

var registerParsers sync.Once

// Library extracts metadata in-process with goexif instead of shelling out
// to exiftool. It emits records in the same tag schema, so the converter
// cannot tell the two extractors apart.
type Library struct {
	Extensions []string
	Log        *zap.Logger
}

// NewLibrary returns an in-process extractor.
func NewLibrary(log *zap.Logger) *Library {
	if log == nil {
		log = zap.NewNop()
	}
	return &Library{
		Extensions: DefaultExtensions,
		Log:        log,
	}
}

// Extract walks dir and reads EXIF tags from every matching image. Files
// whose tags cannot be decoded still produce a record carrying only their
// identity; the converter drops them later for lack of coordinates.
func (l *Library) Extract(ctx context.Context, dir string) ([]Record, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	registerParsers.Do(func() {
		exif.RegisterParsers(mknote.All...)
	})

	exts := l.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	paths, err := utils.ListImageFiles(dir, exts)
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}

	records := make([]Record, 0, len(paths))
	for _, path := range paths {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		rec, err := l.readFile(path)
		if err != nil {
			l.Log.Warn("could not read photo metadata",
				zap.String("path", path),
				zap.Error(err),
			)
			continue
		}
		records = append(records, rec)
	}

	l.Log.Info("library extraction complete",
		zap.String("dir", dir),
		zap.Int("records", len(records)),
	)
	return records, nil
}

// readFile builds one record for a photo. Tag decode failures are soft: the
// record then holds file identity only.
func (l *Library) readFile(path string) (Record, error) {
	tags := map[string]any{
		"SourceFile": path,
		"FileName":   filepath.Base(path),
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err == nil && x != nil {
		if lat, lon, err := x.LatLong(); err == nil {
			tags["GPSLatitude"] = lat
			tags["GPSLongitude"] = lon
		}
		if t, err := x.DateTime(); err == nil {
			tags["DateTimeOriginal"] = t.Format("2006:01:02 15:04:05")
		}
		if tag, err := x.Get(exif.Orientation); err == nil {
			if o, err := tag.Int(0); err == nil {
				tags["Orientation"] = o
			}
		}
	}

	data, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}
	return Record(data), nil
}
