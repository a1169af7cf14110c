package newton

import "fmt"

// Tile is a half-open sub-rectangle of the pixel grid that is iterated as
// one unit. Only one tile's iteration state is alive at a time, which bounds
// memory by the tile size instead of the image size.
type Tile struct {
	RowStart int `json:"row_start"`
	RowEnd   int `json:"row_end"`
	ColStart int `json:"col_start"`
	ColEnd   int `json:"col_end"`
}

// Rows is the tile height in pixels
func (t Tile) Rows() int {
	return t.RowEnd - t.RowStart
}

// Cols is the tile width in pixels
func (t Tile) Cols() int {
	return t.ColEnd - t.ColStart
}

// Len is the number of pixels in the tile
func (t Tile) Len() int {
	return t.Rows() * t.Cols()
}

func (t Tile) String() string {
	return fmt.Sprint("rows:", t.RowStart, "-", t.RowEnd, " cols:", t.ColStart, "-", t.ColEnd)
}

// TileCount is the number of tiles Tiles returns for the grid.
func TileCount(g GridSpec, size int) int {
	if size <= 0 {
		return 0
	}
	return ceilDiv(g.Height, size) * ceilDiv(g.Width, size)
}

// Tiles partitions the grid into tiles of at most size x size pixels in
// row-major order. Tiles on the last row and column are clipped to the grid.
//
//	 ____ ____ __
//	|  0 |  1 |2 |
//	|____|____|__|
//	|  3 |  4 |5 |
//	|____|____|__|
func Tiles(g GridSpec, size int) []Tile {
	if size <= 0 {
		return nil
	}
	tiles := make([]Tile, 0, TileCount(g, size))
	for row := 0; row < g.Height; row += size {
		for col := 0; col < g.Width; col += size {
			tiles = append(tiles, Tile{
				RowStart: row,
				RowEnd:   min(row+size, g.Height),
				ColStart: col,
				ColEnd:   min(col+size, g.Width),
			})
		}
	}
	return tiles
}

// ceilDiv rounds a/b up for a >= 0 and b > 0 without overflowing a+b
func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a-1)/b + 1
}
