package newton

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"newtonmachine/pkg/expr"
)

var (
	// ErrInvalidConfiguration is returned for non-positive grid sizes,
	// iteration caps, tolerances or tile sizes, and for non-finite bounds
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.Float64 {
			return false
		}
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	})
	return v
}

// Params are the per-call settings of an Engine.
type Params struct {
	Viewport Viewport `json:"viewport"`
	Grid     GridSpec `json:"grid"`
	MaxIter  int      `json:"max_iter" validate:"gt=0"`
	Tol      float64  `json:"tol" validate:"gt=0,finite"`
	TileSize int      `json:"tile_size" validate:"gt=0"`
}

// DefaultParams renders the [-2,2]x[-2,2] square at 1000x1000 in a single
// tile with 50 iterations and a 1e-6 tolerance.
func DefaultParams() Params {
	return Params{
		Viewport: DefaultViewport,
		Grid:     GridSpec{Width: 1000, Height: 1000},
		MaxIter:  50,
		Tol:      1e-6,
		TileSize: 1000,
	}
}

// Validate reports every offending field wrapped in ErrInvalidConfiguration.
func (p Params) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		if g := p.Grid; g.Height > math.MaxInt/g.Width {
			return fmt.Errorf("%w: grid %dx%d overflows", ErrInvalidConfiguration, g.Width, g.Height)
		}
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s=%v fails %s", fe.Namespace(), fe.Value(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, strings.Join(fields, ", "))
}

// Engine renders one compiled function. The function is compiled once in
// NewEngine and reused by every Compute; parameters may be rebound between
// calls but not while a call is running.
type Engine struct {
	fn      *expr.Function
	params  Params
	Verbose bool
}

// NewEngine compiles src and validates p. Nothing is returned unless both
// succeed.
func NewEngine(src string, p Params) (*Engine, error) {
	fn, err := expr.Compile(src)
	if err != nil {
		return nil, err
	}
	return NewEngineFunc(fn, p)
}

// NewEngineFunc builds an engine around an already compiled function.
func NewEngineFunc(fn *expr.Function, p Params) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Engine{fn: fn, params: p}, nil
}

// Function returns the compiled function
func (e *Engine) Function() *expr.Function {
	return e.fn
}

// Params returns the current parameters
func (e *Engine) Params() Params {
	return e.params
}

// SetParams replaces the parameters. The engine is unchanged if p is invalid.
func (e *Engine) SetParams(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	e.params = p
	return nil
}

// SetViewport rebinds the viewport, e.g. after a zoom.
func (e *Engine) SetViewport(v Viewport) error {
	p := e.params
	p.Viewport = v
	return e.SetParams(p)
}

// Compute renders the image tile by tile in row-major order. ctx is checked
// between tiles; a tile that has started always runs to completion.
func (e *Engine) Compute(ctx context.Context, fn ProgressFunc) (*Image, error) {
	p := e.params
	start := time.Now()

	img := NewImage(p.Grid)
	tiles := Tiles(p.Grid, p.TileSize)
	prog := newProgress(fn, len(tiles))
	prog.setup()

	xs, ys := Axes(p.Viewport, p.Grid)
	f, df := e.fn.Evaluators()

	var ws workspace
	for _, t := range tiles {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("tile %v: %w", t, ctx.Err())
		default:
		}

		n := t.Len()
		ws.grow(n)
		z, counts := ws.z[:n], ws.counts[:n]

		TileGrid(xs, ys, t, z)
		ws.iterate(z, f, df, p.MaxIter, p.Tol, counts)
		img.Assemble(t, counts, p.MaxIter)
		prog.tileDone()
	}
	prog.finish()

	if e.Verbose {
		log.Println("[engine] computed", e.fn, p.Grid.Width, "x", p.Grid.Height, p.Viewport,
			"tiles:", len(tiles), "in", time.Since(start))
	}
	return img, nil
}

// Compute compiles src and renders it once. It is the one-shot form of
// NewEngine followed by Engine.Compute.
func Compute(src string, v Viewport, g GridSpec, maxIter int, tol float64, tileSize int, fn ProgressFunc) (*Image, error) {
	e, err := NewEngine(src, Params{
		Viewport: v,
		Grid:     g,
		MaxIter:  maxIter,
		Tol:      tol,
		TileSize: tileSize,
	})
	if err != nil {
		return nil, err
	}
	return e.Compute(context.Background(), fn)
}
