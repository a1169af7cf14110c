package newton

// Channels is the number of values stored per pixel.
const Channels = 3

// Image is the normalized result of a compute call: Height rows of Width
// pixels, Channels equal values per pixel in [0,1], row-major. Row 0 holds
// the ImagMin samples.
type Image struct {
	Width  int
	Height int
	Pix    []float64
}

// NewImage allocates a black image for the grid
func NewImage(g GridSpec) *Image {
	return &Image{
		Width:  g.Width,
		Height: g.Height,
		Pix:    make([]float64, g.Len()*Channels),
	}
}

// At returns the normalized value of the pixel at row, col.
func (im *Image) At(row, col int) float64 {
	return im.Pix[(row*im.Width+col)*Channels]
}

// Assemble normalizes the counts of tile t by maxIter and writes them into
// every channel of the tile's region.
func (im *Image) Assemble(t Tile, counts []float64, maxIter int) {
	scale := float64(maxIter)
	cols := t.Cols()
	for r := 0; r < t.Rows(); r++ {
		for c := 0; c < cols; c++ {
			v := counts[r*cols+c] / scale
			off := ((t.RowStart+r)*im.Width + t.ColStart + c) * Channels
			for ch := 0; ch < Channels; ch++ {
				im.Pix[off+ch] = v
			}
		}
	}
}
