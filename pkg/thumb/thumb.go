// Package thumb generates map-marker thumbnails for photos.
package thumb

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"

	"github.com/sigmap/photomap/internal/utils"
)

// Options control thumbnail size and encoding.
type Options struct {
	Width    int    // maximum width in pixels
	Height   int    // maximum height in pixels
	Format   string // jpg|png|webp
	Quality  int    // JPEG/WebP quality (1-100)
	Lossless bool   // WebP lossless mode
}

// DefaultOptions returns the documented defaults: 150x150 bounding box,
// JPEG output at quality 85.
func DefaultOptions() Options {
	return Options{
		Width:   150,
		Height:  150,
		Format:  "jpg",
		Quality: 85,
	}
}

// Generator writes thumbnails into a single output directory. Output names
// derive deterministically from source filenames, so reruns overwrite
// instead of duplicating.
type Generator struct {
	Dir  string
	Opts Options
	Log  *zap.Logger
}

// NewGenerator creates the output directory and returns a generator.
func NewGenerator(dir string, opts Options, log *zap.Logger) (*Generator, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid thumbnail size %dx%d", opts.Width, opts.Height)
	}
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create thumbnail directory %s: %w", dir, err)
	}
	return &Generator{Dir: dir, Opts: opts, Log: log}, nil
}

// Generate produces the thumbnail for one photo and returns its filename
// within the output directory. The source is rotated upright per the EXIF
// orientation value before resizing.
func (g *Generator) Generate(srcPath string, orientation int) (string, error) {
	img, err := Load(srcPath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", srcPath, err)
	}

	img = ApplyOrientation(img, orientation)
	img = imaging.Fit(img, g.Opts.Width, g.Opts.Height, imaging.Lanczos)

	name := Name(srcPath, g.Opts.Format)
	outPath := filepath.Join(g.Dir, name)

	if err := Save(img, outPath, g.Opts.Format, g.Opts.Quality, g.Opts.Lossless); err != nil {
		return "", fmt.Errorf("failed to save thumbnail %s: %w", outPath, err)
	}
	return name, nil
}

// Name derives the deterministic thumbnail filename for a source photo:
// the source basename with its extension replaced by the output format's.
func Name(srcPath, format string) string {
	base := filepath.Base(srcPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return stem + "." + normalizeFormat(format)
}

func normalizeFormat(format string) string {
	switch strings.ToLower(format) {
	case "jpeg", "jpg", "":
		return "jpg"
	case "png":
		return "png"
	case "webp":
		return "webp"
	default:
		return strings.ToLower(format)
	}
}

// ApplyOrientation rotates or flips an image to upright display orientation
// according to the EXIF orientation value (1-8). Values outside that range
// return the image unchanged.
func ApplyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// Load opens an image from disk with WebP support.
func Load(path string) (image.Image, error) {
	// Try imaging.Open (registered decoders)
	if img, err := imaging.Open(path); err == nil {
		return img, nil
	}

	// Fallback: explicit WebP decode
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.HasSuffix(strings.ToLower(path), ".webp") {
		if img, err := webp.Decode(f); err == nil {
			return img, nil
		}
		if _, err := f.Seek(0, 0); err != nil {
			return nil, err
		}
	}
	if img, _, err := image.Decode(f); err == nil {
		return img, nil
	}
	return nil, fmt.Errorf("image: unknown format for %s", path)
}

// Save writes an image to a file with the specified format and quality.
func Save(img image.Image, path, format string, quality int, lossless bool) error {
	switch normalizeFormat(format) {
	case "webp":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		opts := &webp.Options{Lossless: lossless, Quality: float32(quality)}
		return webp.Encode(f, img, opts)
	case "png":
		return imaging.Save(img, path)
	default: // jpg/jpeg
		return imaging.Save(img, path, imaging.JPEGQuality(quality))
	}
}
