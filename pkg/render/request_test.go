package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newtonmachine/pkg/newton"
)

func smallRequest(src string) Request {
	r := NewRequest(src)
	r.Params.Grid = newton.GridSpec{Width: 24, Height: 16}
	r.Params.MaxIter = 20
	return r
}

func TestNewRequestDefaults(t *testing.T) {
	r := NewRequest("z**3 - 1")

	assert.Equal(t, newton.GridSpec{Width: 600, Height: 500}, r.Params.Grid)
	assert.Equal(t, newton.DefaultViewport, r.Params.Viewport)
	assert.Equal(t, 50, r.Params.MaxIter)
	assert.Equal(t, 1e-6, r.Params.Tol)
	assert.Equal(t, PNG, r.Format)
	assert.NoError(t, r.Params.Validate())
}

func TestRequestJSONKeepsDefaults(t *testing.T) {
	r := NewRequest("")
	body := `{"expr": "z**4 - 1", "params": {"max_iter": 80, "grid": {"width": 64, "height": 32}}, "palette": "fire"}`
	require.NoError(t, json.Unmarshal([]byte(body), &r))

	assert.Equal(t, "z**4 - 1", r.Expr)
	assert.Equal(t, 80, r.Params.MaxIter)
	assert.Equal(t, newton.GridSpec{Width: 64, Height: 32}, r.Params.Grid)
	assert.Equal(t, 1e-6, r.Params.Tol)
	assert.Equal(t, newton.DefaultViewport, r.Params.Viewport)
	assert.Equal(t, "fire", r.Palette)
}

func TestRequestRender(t *testing.T) {
	b, err := smallRequest("z**3 - 1").Render(context.Background(), nil)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, 24, img.Bounds().Dx())
	assert.Equal(t, 16, img.Bounds().Dy())
}

func TestRequestRenderJPEG(t *testing.T) {
	r := smallRequest("z**3 - 1")
	r.Format = "jpg"
	r.Palette = "ocean"

	b, err := r.Render(context.Background(), nil)
	require.NoError(t, err)

	_, err = jpeg.Decode(bytes.NewReader(b))
	assert.NoError(t, err)
}

func TestRequestRenderBadInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{"expression", func(r *Request) { r.Expr = "z +" }},
		{"operator", func(r *Request) { r.Expr = "abs(z)" }},
		{"params", func(r *Request) { r.Params.TileSize = 0 }},
		{"palette", func(r *Request) { r.Palette = "#zzz" }},
		{"format", func(r *Request) { r.Format = "gif" }},
		{"too large", func(r *Request) { r.Params.Grid = newton.GridSpec{Width: 8192, Height: 4097} }},
		{"overflowing grid", func(r *Request) { r.Params.Grid = newton.GridSpec{Width: 1 << 32, Height: 1 << 32} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := smallRequest("z**3 - 1")
			tt.mutate(&r)

			calls := 0
			_, err := r.Render(context.Background(), func(int) { calls++ })
			require.Error(t, err)
			assert.True(t, IsBadRequest(err), "%v", err)
			assert.Zero(t, calls)
		})
	}
}

func TestRequestCheckSize(t *testing.T) {
	tests := []struct {
		grid newton.GridSpec
		ok   bool
	}{
		{newton.GridSpec{Width: 4096, Height: 4096}, true},
		{newton.GridSpec{Width: 1, Height: MaxPixels}, true},
		{newton.GridSpec{Width: MaxPixels, Height: 1}, true},
		{newton.GridSpec{Width: 0, Height: 10}, true},
		{newton.GridSpec{Width: 4097, Height: 4096}, false},
		{newton.GridSpec{Width: MaxPixels + 1, Height: 1}, false},
		{newton.GridSpec{Width: 1 << 32, Height: 1 << 32}, false},
	}

	for _, tt := range tests {
		r := NewRequest("z")
		r.Params.Grid = tt.grid

		err := r.CheckSize()
		if tt.ok {
			assert.NoError(t, err, "%dx%d", tt.grid.Width, tt.grid.Height)
		} else {
			assert.True(t, errors.Is(err, ErrTooLarge), "%dx%d", tt.grid.Width, tt.grid.Height)
		}
	}
}

func TestRequestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := smallRequest("z**3 - 1").Render(ctx, nil)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, IsBadRequest(err))
}

func TestRequestString(t *testing.T) {
	r := NewRequest("z**3 - 1")
	assert.Equal(t, `"z**3 - 1" [-2,2]x[-2,2] 600x500 iter:50 tol:1e-06`, r.String())
}
