package exif

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// ErrToolUnavailable indicates that the exiftool binary is missing or not
// runnable. It is a fatal, batch-level error.
var ErrToolUnavailable = errors.New("exiftool unavailable")

// extractTags are the tags requested from exiftool. The converter only needs
// GPS, timestamp, orientation and file identity; asking for nothing else
// keeps the metadata document small.
var extractTags = []string{
	"-GPSLatitude",
	"-GPSLongitude",
	"-GPSLatitudeRef",
	"-GPSLongitudeRef",
	"-DateTimeOriginal",
	"-Orientation",
	"-FileName",
	"-SourceFile",
}

// ExifTool extracts metadata by running the exiftool binary once per batch
// with JSON output.
type ExifTool struct {
	Path       string   // binary name or path, default "exiftool"
	Extensions []string // image extensions passed as -ext filters
	Log        *zap.Logger
}

// NewExifTool returns an extractor using the exiftool binary from PATH.
func NewExifTool(log *zap.Logger) *ExifTool {
	if log == nil {
		log = zap.NewNop()
	}
	return &ExifTool{
		Path:       "exiftool",
		Extensions: DefaultExtensions,
		Log:        log,
	}
}

// Extract runs exiftool recursively over dir and returns one raw record per
// matched photo. The photos themselves are never modified.
func (et *ExifTool) Extract(ctx context.Context, dir string) ([]Record, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	if err := et.check(ctx); err != nil {
		return nil, err
	}

	args := et.buildArgs(dir)
	et.Log.Info("running exiftool",
		zap.String("dir", dir),
		zap.Strings("args", args),
	)

	cmd := exec.CommandContext(ctx, et.Path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %v: %s", ErrToolUnavailable, err, strings.TrimSpace(stderr.String()))
	}

	records, err := parseRecords(stdout.Bytes())
	if err != nil {
		return nil, fmt.Errorf("unexpected exiftool output: %w", err)
	}

	et.Log.Info("exiftool extraction complete",
		zap.Int("records", len(records)),
	)
	return records, nil
}

// check verifies the binary exists and answers -ver.
func (et *ExifTool) check(ctx context.Context) error {
	if _, err := exec.LookPath(et.Path); err != nil {
		return fmt.Errorf("%w: %v", ErrToolUnavailable, err)
	}
	if err := exec.CommandContext(ctx, et.Path, "-ver").Run(); err != nil {
		return fmt.Errorf("%w: %v", ErrToolUnavailable, err)
	}
	return nil
}

// buildArgs assembles the exiftool command line: recursive, numeric GPS
// values, JSON output, one -ext filter per extension.
func (et *ExifTool) buildArgs(dir string) []string {
	args := []string{"-r", "-n", "-json", "-charset", "UTF8"}
	args = append(args, extractTags...)
	exts := et.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	for _, ext := range exts {
		args = append(args, "-ext", ext)
	}
	return append(args, dir)
}
