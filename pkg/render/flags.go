package render

import (
	"github.com/urfave/cli/v2"

	"newtonmachine/pkg/newton"
)

// Flags are the command line flags describing a Request
func Flags() []cli.Flag {
	d := NewRequest("z**3 - 1")
	p := d.Params

	return []cli.Flag{
		&cli.StringFlag{Name: "func", Aliases: []string{"f"}, Value: d.Expr, Usage: "function of z, e.g. \"z**3 - 1\""},
		&cli.Float64Flag{Name: "rmin", Value: p.Viewport.RealMin, Usage: "lower bound of the real axis"},
		&cli.Float64Flag{Name: "rmax", Value: p.Viewport.RealMax, Usage: "upper bound of the real axis"},
		&cli.Float64Flag{Name: "imin", Value: p.Viewport.ImagMin, Usage: "lower bound of the imaginary axis"},
		&cli.Float64Flag{Name: "imax", Value: p.Viewport.ImagMax, Usage: "upper bound of the imaginary axis"},
		&cli.IntFlag{Name: "width", Aliases: []string{"W"}, Value: p.Grid.Width, Usage: "image width in pixels"},
		&cli.IntFlag{Name: "height", Aliases: []string{"H"}, Value: p.Grid.Height, Usage: "image height in pixels"},
		&cli.Float64Flag{Name: "scale", Value: 1, Usage: "resolution multiplier applied to width and height"},
		&cli.IntFlag{Name: "iter", Value: p.MaxIter, Usage: "maximum Newton steps per pixel"},
		&cli.Float64Flag{Name: "tol", Value: p.Tol, Usage: "a step shorter than this counts as converged"},
		&cli.IntFlag{Name: "tile", Value: p.TileSize, Usage: "tile edge in pixels"},
		&cli.StringFlag{Name: "palette", Usage: "palette name or comma separated colour stops"},
		&cli.StringFlag{Name: "format", Value: d.Format, Usage: "png, jpeg or bmp"},
	}
}

// RequestFromContext reads the Flags into a Request. The scale multiplies
// width and height, truncating to whole pixels.
func RequestFromContext(c *cli.Context) Request {
	scale := c.Float64("scale")

	return Request{
		Expr: c.String("func"),
		Params: newton.Params{
			Viewport: newton.Viewport{
				RealMin: c.Float64("rmin"),
				RealMax: c.Float64("rmax"),
				ImagMin: c.Float64("imin"),
				ImagMax: c.Float64("imax"),
			},
			Grid: newton.GridSpec{
				Width:  int(float64(c.Int("width")) * scale),
				Height: int(float64(c.Int("height")) * scale),
			},
			MaxIter:  c.Int("iter"),
			Tol:      c.Float64("tol"),
			TileSize: c.Int("tile"),
		},
		Palette: c.String("palette"),
		Format:  c.String("format"),
	}
}
