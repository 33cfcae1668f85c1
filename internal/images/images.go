// Package images generates the resized variants of property photos.
package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	"github.com/willemschots/tuffyestates/internal/errorz"
)

// Subdir is where variants live, relative to the static directory.
const Subdir = "property/image"

var (
	ErrInvalidID        = errors.New("invalid image id")
	ErrUnsupportedImage = errors.New("unsupported or corrupt image")
)

type format int

const (
	formatJPEG format = iota
	formatWebP
)

type fitMode int

const (
	// cover crops to exactly fill the box.
	cover fitMode = iota
	// contain scales, up or down, until the image just fits inside the box.
	contain
)

type variant struct {
	suffix  string
	ext     string
	format  format
	width   int
	height  int
	mode    fitMode
	quality int
}

var variants = []variant{
	{suffix: "", ext: ".jpg", format: formatJPEG, width: 3840, height: 1080, mode: cover, quality: 80},
	{suffix: "", ext: ".webp", format: formatWebP, width: 3840, height: 1080, mode: cover, quality: 80},
	{suffix: "-500", ext: ".jpg", format: formatJPEG, width: 500, height: 282, mode: cover, quality: 80},
	{suffix: "-500", ext: ".webp", format: formatWebP, width: 500, height: 282, mode: cover, quality: 80},
	{suffix: "-80", ext: ".jpg", format: formatJPEG, width: 80, height: 80, mode: contain, quality: 30},
}

func (v variant) filename(id string) string {
	return id + v.suffix + v.ext
}

// Filenames returns the names of all variants of id.
func Filenames(id string) []string {
	out := make([]string, 0, len(variants))
	for _, v := range variants {
		out = append(out, v.filename(id))
	}
	return out
}

// Generator writes image variants to a directory.
type Generator struct {
	dir string
}

// NewGenerator creates the variant directory below staticDir.
func NewGenerator(staticDir string) (*Generator, error) {
	dir := filepath.Join(staticDir, filepath.FromSlash(Subdir))

	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}

	return &Generator{dir: dir}, nil
}

// Dir is the directory the variants are written to.
func (g *Generator) Dir() string {
	return g.dir
}

// Generate decodes src and writes all variants for id concurrently. Either
// all variants are written or, on failure, none remain.
func (g *Generator) Generate(ctx context.Context, id string, src []byte) error {
	err := ValidateID(id)
	if err != nil {
		return err
	}

	img, err := imaging.Decode(bytes.NewReader(src), imaging.AutoOrientation(true))
	if err != nil {
		return errorz.InvalidInput{errorz.Keyed{Key: "image", Err: fmt.Errorf("%w: %w", ErrUnsupportedImage, err)}}
	}

	eg, egCtx := errgroup.WithContext(ctx)
	for _, v := range variants {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			return g.write(v, id, img)
		})
	}

	err = eg.Wait()
	if err != nil {
		return errors.Join(err, g.Remove(id))
	}

	return nil
}

func (g *Generator) write(v variant, id string, img image.Image) error {
	out := resize(img, v)

	tmp, err := os.CreateTemp(g.dir, "."+v.filename(id)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	err = encode(tmp, out, v)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		return errors.Join(fmt.Errorf("failed to write %s: %w", v.filename(id), err), os.Remove(tmp.Name()))
	}

	err = os.Rename(tmp.Name(), filepath.Join(g.dir, v.filename(id)))
	if err != nil {
		return errors.Join(fmt.Errorf("failed to move %s into place: %w", v.filename(id), err), os.Remove(tmp.Name()))
	}

	return nil
}

func resize(img image.Image, v variant) image.Image {
	if v.mode == contain {
		srcW, srcH := img.Bounds().Dx(), img.Bounds().Dy()
		if srcW*v.height >= srcH*v.width {
			return imaging.Resize(img, v.width, 0, imaging.Lanczos)
		}
		return imaging.Resize(img, 0, v.height, imaging.Lanczos)
	}

	w, h := coverBox(img.Bounds().Dx(), img.Bounds().Dy(), v.width, v.height)
	return imaging.Fill(img, w, h, imaging.Center, imaging.Lanczos)
}

// coverBox shrinks the target box, keeping its aspect ratio, until it fits
// inside the source. The source is then never enlarged by a cover crop.
func coverBox(srcW, srcH, w, h int) (int, int) {
	if srcW >= w && srcH >= h {
		return w, h
	}

	scale := min(float64(srcW)/float64(w), float64(srcH)/float64(h))

	return max(1, int(float64(w)*scale+0.5)), max(1, int(float64(h)*scale+0.5))
}

func encode(w io.Writer, img image.Image, v variant) error {
	switch v.format {
	case formatWebP:
		return webp.Encode(w, img, &webp.Options{Quality: float32(v.quality)})
	default:
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(v.quality))
	}
}

// Remove deletes all variants of id. Missing files are ignored.
func (g *Generator) Remove(id string) error {
	err := ValidateID(id)
	if err != nil {
		return err
	}

	var errs []error
	for _, name := range Filenames(id) {
		err := os.Remove(filepath.Join(g.dir, name))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// ValidateID checks that id is a 24 character lowercase hex identifier.
func ValidateID(id string) error {
	if len(id) != 24 {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	for _, r := range id {
		if !(r >= '0' && r <= '9') && !(r >= 'a' && r <= 'f') {
			return fmt.Errorf("%w: %q", ErrInvalidID, id)
		}
	}

	return nil
}
