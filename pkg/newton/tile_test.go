package newton

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTilesCoverGrid(t *testing.T) {
	grids := []GridSpec{{1, 1}, {10, 10}, {37, 23}, {5, 100}, {100, 3}}
	sizes := []int{1, 3, 7, 10, 64, 1000}

	for _, g := range grids {
		for _, size := range sizes {
			t.Run(fmt.Sprintf("%dx%d/%d", g.Width, g.Height, size), func(t *testing.T) {
				tiles := Tiles(g, size)
				require.Len(t, tiles, TileCount(g, size))

				owner := make([]int, g.Len())
				for i, tile := range tiles {
					assert.LessOrEqual(t, tile.Rows(), size)
					assert.LessOrEqual(t, tile.Cols(), size)
					assert.Positive(t, tile.Len())

					for r := tile.RowStart; r < tile.RowEnd; r++ {
						for c := tile.ColStart; c < tile.ColEnd; c++ {
							owner[r*g.Width+c]++
						}
					}
					if i > 0 {
						prev := tiles[i-1]
						rowMajor := tile.RowStart > prev.RowStart ||
							(tile.RowStart == prev.RowStart && tile.ColStart > prev.ColStart)
						assert.True(t, rowMajor, "tile %d (%v) after %v", i, tile, prev)
					}
				}

				for i, n := range owner {
					assert.Equal(t, 1, n, "pixel %d covered %d times", i, n)
				}
			})
		}
	}
}

func TestTilesClipped(t *testing.T) {
	tiles := Tiles(GridSpec{Width: 5, Height: 4}, 3)

	assert.Equal(t, []Tile{
		{RowStart: 0, RowEnd: 3, ColStart: 0, ColEnd: 3},
		{RowStart: 0, RowEnd: 3, ColStart: 3, ColEnd: 5},
		{RowStart: 3, RowEnd: 4, ColStart: 0, ColEnd: 3},
		{RowStart: 3, RowEnd: 4, ColStart: 3, ColEnd: 5},
	}, tiles)
}

func TestTileCount(t *testing.T) {
	assert.Equal(t, 1, TileCount(GridSpec{Width: 100, Height: 100}, 100))
	assert.Equal(t, 2, TileCount(GridSpec{Width: 101, Height: 100}, 100))
	assert.Equal(t, 6, TileCount(GridSpec{Width: 5, Height: 4}, 2))
	assert.Equal(t, 0, TileCount(GridSpec{Width: 5, Height: 4}, 0))
	assert.Nil(t, Tiles(GridSpec{Width: 5, Height: 4}, 0))

	assert.Equal(t, 1, TileCount(GridSpec{Width: 1, Height: 2}, math.MaxInt))
	assert.Equal(t, []Tile{{RowStart: 0, RowEnd: 2, ColStart: 0, ColEnd: 1}}, Tiles(GridSpec{Width: 1, Height: 2}, math.MaxInt))
}

func TestTileString(t *testing.T) {
	tile := Tile{RowStart: 0, RowEnd: 3, ColStart: 6, ColEnd: 9}
	assert.Equal(t, "rows:0-3 cols:6-9", tile.String())
	assert.Equal(t, 9, tile.Len())
}
