package render

import (
	"context"
	"errors"
	"fmt"

	"newtonmachine/pkg/expr"
	"newtonmachine/pkg/newton"
)

// DefaultGrid is the size of a render when none is given
var DefaultGrid = newton.GridSpec{Width: 600, Height: 500}

// MaxPixels bounds the grid of a single request
const MaxPixels = 4096 * 4096

var (
	// ErrTooLarge is returned for requests above MaxPixels
	ErrTooLarge = errors.New("render too large")
)

// Request describes one encoded render. It is the JSON body accepted by the
// queue workers and the lambda handler.
type Request struct {
	Expr    string        `json:"expr"`
	Params  newton.Params `json:"params"`
	Palette string        `json:"palette,omitempty"`
	Format  string        `json:"format,omitempty"`
}

// NewRequest returns a request for src with the default 600x500 grid over
// [-2,2]x[-2,2], 50 iterations, a 1e-6 tolerance and png output. Unmarshal
// JSON into it to override only the fields that are present.
func NewRequest(src string) Request {
	p := newton.DefaultParams()
	p.Grid = DefaultGrid

	return Request{
		Expr:   src,
		Params: p,
		Format: PNG,
	}
}

func (r Request) String() string {
	return fmt.Sprintf("%q %v %dx%d iter:%d tol:%g", r.Expr, r.Params.Viewport,
		r.Params.Grid.Width, r.Params.Grid.Height, r.Params.MaxIter, r.Params.Tol)
}

// Render compiles the expression and renders it
func (r Request) Render(ctx context.Context, progress newton.ProgressFunc) ([]byte, error) {
	fn, err := expr.Compile(r.Expr)
	if err != nil {
		return nil, err
	}
	return r.RenderFunc(ctx, fn, progress)
}

// RenderFunc renders an already compiled function with the request's
// parameters, palette and format. Format and palette are checked before any
// computation.
func (r Request) RenderFunc(ctx context.Context, fn *expr.Function, progress newton.ProgressFunc) ([]byte, error) {
	if err := r.CheckSize(); err != nil {
		return nil, err
	}

	format, err := NormalizeFormat(r.Format)
	if err != nil {
		return nil, err
	}

	pal, err := ParsePalette(r.Palette)
	if err != nil {
		return nil, err
	}

	e, err := newton.NewEngineFunc(fn, r.Params)
	if err != nil {
		return nil, err
	}

	img, err := e.Compute(ctx, progress)
	if err != nil {
		return nil, err
	}

	return EncodeBytes(ToNRGBA(img, pal), format)
}

// CheckSize rejects grids above MaxPixels. Width and height are compared
// separately so the product cannot overflow. Non-positive sizes are left to
// newton.Params.Validate.
func (r Request) CheckSize() error {
	w, h := r.Params.Grid.Width, r.Params.Grid.Height
	if w <= 0 || h <= 0 {
		return nil
	}
	if w > MaxPixels || h > MaxPixels/w {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooLarge, w, h, MaxPixels)
	}
	return nil
}

// IsBadRequest reports whether err was caused by the caller's input rather
// than by the renderer.
func IsBadRequest(err error) bool {
	for _, target := range []error{
		expr.ErrInvalidExpression,
		expr.ErrUnsupportedOperator,
		newton.ErrInvalidConfiguration,
		ErrInvalidPalette,
		ErrUnknownFormat,
		ErrTooLarge,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
