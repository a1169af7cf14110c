package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"newtonmachine/pkg/newton"
)

func testImage() *newton.Image {
	img := newton.NewImage(newton.GridSpec{Width: 3, Height: 2})
	counts := []float64{0, 25, 50, 10, 49, 1}
	img.Assemble(newton.Tile{RowStart: 0, RowEnd: 2, ColStart: 0, ColEnd: 3}, counts, 50)
	return img
}

func TestQuantize(t *testing.T) {
	tests := []struct {
		v    float64
		want uint8
	}{
		{0, 0},
		{1, 255},
		{0.5, 127},
		{0.999, 254},
		{-0.2, 0},
		{1.7, 255},
		{math.NaN(), 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Quantize(tt.v), "value %v", tt.v)
	}
}

func TestToNRGBAGray(t *testing.T) {
	out := ToNRGBA(testImage(), nil)

	require.Equal(t, image.Rect(0, 0, 3, 2), out.Bounds())
	assert.Equal(t, color.NRGBA{R: 0, G: 0, B: 0, A: 255}, out.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: 127, G: 127, B: 127, A: 255}, out.NRGBAAt(1, 0))
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, out.NRGBAAt(2, 0))
	assert.Equal(t, color.NRGBA{R: 51, G: 51, B: 51, A: 255}, out.NRGBAAt(0, 1))
}

func TestToNRGBAPalette(t *testing.T) {
	p := make(Palette, PaletteSize)
	for i := range p {
		p[i] = color.NRGBA{R: uint8(i), G: 0, B: 255 - uint8(i), A: 255}
	}

	out := ToNRGBA(testImage(), p)
	assert.Equal(t, color.NRGBA{R: 0, G: 0, B: 255, A: 255}, out.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: 255, G: 0, B: 0, A: 255}, out.NRGBAAt(2, 0))
}

func TestParsePalette(t *testing.T) {
	p, err := ParsePalette("#000000, #ffffff")
	require.NoError(t, err)
	require.Len(t, p, PaletteSize)

	assert.Equal(t, color.NRGBA{R: 0, G: 0, B: 0, A: 255}, p[0])
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, p[255])

	// Lab blending keeps the ramp monotonic
	prev := -1
	for i, c := range p {
		r := int(c.(color.NRGBA).R)
		assert.GreaterOrEqual(t, r, prev, "entry %d", i)
		prev = r
	}
}

func TestParsePaletteStops(t *testing.T) {
	p, err := ParsePalette("rgb(255,0,0),#00ff00,#0000ff")
	require.NoError(t, err)

	assert.Equal(t, color.NRGBA{R: 255, G: 0, B: 0, A: 255}, p[0])
	assert.Equal(t, color.NRGBA{R: 0, G: 0, B: 255, A: 255}, p[255])
}

func TestParsePaletteNamed(t *testing.T) {
	for _, name := range PaletteNames() {
		p, err := ParsePalette(name)
		require.NoError(t, err, name)
		if name == "gray" {
			assert.Nil(t, p)
			continue
		}
		assert.Len(t, p, PaletteSize, name)
	}

	p, err := ParsePalette("")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestParsePaletteErrors(t *testing.T) {
	for _, s := range []string{"#000000", "nope,#ffffff", "#000000,#zzzzzz", "plasma"} {
		_, err := ParsePalette(s)
		assert.True(t, errors.Is(err, ErrInvalidPalette), "%q: %v", s, err)
	}
}

func TestGradient(t *testing.T) {
	gray := Gradient()
	assert.Equal(t, color.NRGBA{R: 128, G: 128, B: 128, A: 255}, gray[128])
}

func TestEncode(t *testing.T) {
	out := ToNRGBA(testImage(), nil)

	tests := []struct {
		format string
		decode func(*bytes.Reader) (image.Image, error)
	}{
		{"png", func(r *bytes.Reader) (image.Image, error) { return png.Decode(r) }},
		{"jpg", func(r *bytes.Reader) (image.Image, error) { return jpeg.Decode(r) }},
		{"bmp", func(r *bytes.Reader) (image.Image, error) { return bmp.Decode(r) }},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			b, err := EncodeBytes(out, tt.format)
			require.NoError(t, err)

			img, err := tt.decode(bytes.NewReader(b))
			require.NoError(t, err)
			assert.Equal(t, out.Bounds(), img.Bounds())
		})
	}

	_, err := EncodeBytes(out, "gif")
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestPNGIsLossless(t *testing.T) {
	out := ToNRGBA(testImage(), nil)
	b, err := EncodeBytes(out, PNG)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	for x := 0; x < 3; x++ {
		for y := 0; y < 2; y++ {
			r1, g1, b1, _ := out.At(x, y).RGBA()
			r2, g2, b2, _ := img.At(x, y).RGBA()
			assert.Equal(t, []uint32{r1, g1, b1}, []uint32{r2, g2, b2})
		}
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]string{
		"out.png":          PNG,
		"a/b/out.JPG":      JPEG,
		"fractal.jpeg":     JPEG,
		"/tmp/fractal.bmp": BMP,
	}
	for fpath, want := range tests {
		got, err := FormatFromPath(fpath)
		require.NoError(t, err, fpath)
		assert.Equal(t, want, got, fpath)
	}

	_, err := FormatFromPath("fractal")
	assert.True(t, errors.Is(err, ErrUnknownFormat))
	_, err = FormatFromPath("fractal.tiff")
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/png", ContentType(PNG))
	assert.Equal(t, "image/jpeg", ContentType(JPEG))
	assert.Equal(t, "image/bmp", ContentType(BMP))
}

func TestSave(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "nested", "dir", "fractal.png")
	require.NoError(t, Save(fpath, ToNRGBA(testImage(), nil)))

	f, err := os.Open(fpath)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 3, img.Bounds().Dx())
}

func TestDefaultFilename(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

	assert.Equal(t, "fractal_zxx3-1_20240309_140507.png", DefaultFilename("z**3 - 1", ts))
	assert.Equal(t, "fractal_sin(z)div(z+1)_20240309_140507.png", DefaultFilename("sin(z) / (z + 1)", ts))
}
