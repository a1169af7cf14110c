package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/image/bmp"

	"newtonmachine/pkg/newton"
	"newtonmachine/pkg/utils"
)

// Image formats understood by Encode
const (
	PNG  = "png"
	JPEG = "jpeg"
	BMP  = "bmp"
)

// JPEGQuality is used for every jpeg encode
const JPEGQuality = 95

var (
	// ErrUnknownFormat is returned for image formats other than png, jpeg and bmp
	ErrUnknownFormat = errors.New("unknown image format")
)

// Quantize maps a normalized value onto 0-255 by truncation; values outside
// [0,1] are clipped and NaN maps to 0.
func Quantize(v float64) uint8 {
	v *= 255
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}

// ToNRGBA converts a computed image into an 8 bit image. Row 0 of the
// computed image becomes the top row.
func ToNRGBA(img *newton.Image, p Palette) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))

	for row := 0; row < img.Height; row++ {
		for col := 0; col < img.Width; col++ {
			q := Quantize(img.At(row, col))
			if p == nil {
				out.SetNRGBA(col, row, color.NRGBA{R: q, G: q, B: q, A: 0xff})
				continue
			}
			out.Set(col, row, p[q])
		}
	}
	return out
}

// NormalizeFormat returns the canonical name of format or ErrUnknownFormat.
// The empty string means png.
func NormalizeFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "", PNG:
		return PNG, nil
	case JPEG, "jpg":
		return JPEG, nil
	case BMP:
		return BMP, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// FormatFromPath picks the format from the file extension
func FormatFromPath(fpath string) (string, error) {
	ext := filepath.Ext(fpath)
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, fpath)
	}
	return NormalizeFormat(ext)
}

// ContentType returns the mime type of a canonical format
func ContentType(format string) string {
	switch format {
	case JPEG:
		return "image/jpeg"
	case BMP:
		return "image/bmp"
	}
	return "image/png"
}

// Encode writes img to w in the given format
func Encode(w io.Writer, img image.Image, format string) error {
	format, err := NormalizeFormat(format)
	if err != nil {
		return err
	}

	switch format {
	case JPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
	case BMP:
		return bmp.Encode(w, img)
	}
	return png.Encode(w, img)
}

// EncodeBytes encodes img into a new buffer
func EncodeBytes(img image.Image, format string) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := Encode(buf, img, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save encodes img into fpath, creating missing folders. The format follows
// the file extension.
func Save(fpath string, img image.Image) error {
	format, err := FormatFromPath(fpath)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(fpath); dir != "." {
		if err := utils.CreateFolder(dir); err != nil {
			return err
		}
	}

	f, err := os.Create(fpath)
	if err != nil {
		return err
	}

	if err := Encode(f, img, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

var filenameReplacer = strings.NewReplacer("*", "x", "/", "div", " ", "")

// DefaultFilename builds fractal_<expression>_<timestamp>.png with the
// characters that don't belong in file names replaced.
func DefaultFilename(src string, t time.Time) string {
	return fmt.Sprintf("fractal_%s_%s.png", filenameReplacer.Replace(src), t.Format("20060102_150405"))
}
