package newton

import "fmt"

// Viewport is the rectangle of the complex plane mapped onto the pixel grid.
// Equal bounds are allowed and map every pixel on that axis to one value.
type Viewport struct {
	RealMin float64 `json:"rmin" validate:"finite"`
	RealMax float64 `json:"rmax" validate:"finite"`
	ImagMin float64 `json:"imin" validate:"finite"`
	ImagMax float64 `json:"imax" validate:"finite"`
}

// DefaultViewport is the [-2,2]x[-2,2] square.
var DefaultViewport = Viewport{RealMin: -2, RealMax: 2, ImagMin: -2, ImagMax: 2}

// Min returns the lower left corner
func (v Viewport) Min() complex128 {
	return complex(v.RealMin, v.ImagMin)
}

// Max returns the upper right corner
func (v Viewport) Max() complex128 {
	return complex(v.RealMax, v.ImagMax)
}

func (v Viewport) String() string {
	return fmt.Sprint("[", v.RealMin, ",", v.RealMax, "]x[", v.ImagMin, ",", v.ImagMax, "]")
}

// GridSpec is the pixel size of the rendered image.
type GridSpec struct {
	Width  int `json:"width" validate:"gt=0"`
	Height int `json:"height" validate:"gt=0"`
}

// Len is the number of pixels in the grid
func (g GridSpec) Len() int {
	return g.Width * g.Height
}

// Axes returns the sample coordinates of every pixel column (real part) and
// pixel row (imaginary part). Row 0 maps to ImagMin.
func Axes(v Viewport, g GridSpec) (xs, ys []float64) {
	return linspace(v.RealMin, v.RealMax, g.Width), linspace(v.ImagMin, v.ImagMax, g.Height)
}

// linspace interpolates n samples from start to stop inclusive. The last
// sample is exactly stop; a single sample is start.
func linspace(start, stop float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}

	step := (stop - start) / float64(n-1)
	for j := range out {
		out[j] = start + float64(j)*step
	}
	out[n-1] = stop
	return out
}

// TileGrid writes the complex sample of every pixel in t into dst, row-major
// in tile-local order. dst must hold t.Len() values.
func TileGrid(xs, ys []float64, t Tile, dst []complex128) {
	cols := t.Cols()
	for r := t.RowStart; r < t.RowEnd; r++ {
		row := dst[(r-t.RowStart)*cols : (r-t.RowStart+1)*cols]
		for c := range row {
			row[c] = complex(xs[t.ColStart+c], ys[r])
		}
	}
}
