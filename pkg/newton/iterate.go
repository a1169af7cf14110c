package newton

import (
	"math/cmplx"

	"newtonmachine/pkg/expr"
)

// SingularGuard replaces a derivative that is exactly zero before the Newton
// division. It keeps the step finite; the resulting jump has no mathematical
// meaning and the pixel usually lands far away and keeps moving.
const SingularGuard = complex(1e-20, 0)

// Iterate runs the masked Newton iteration z <- z - f(z)/f'(z) over one
// tile. z holds the starting samples and is updated in place; counts
// receives, per pixel, the number of steps in which the iterate moved by
// more than tol. A pixel that stops moving is deactivated for good, so every
// count lies in [0, maxIter].
func Iterate(z []complex128, f, df expr.Evaluator, maxIter int, tol float64, counts []float64) {
	var ws workspace
	ws.iterate(z, f, df, maxIter, tol, counts)
}

// workspace holds the gather buffers of one tile. The engine reuses it from
// tile to tile so memory stays at one tile's worth.
type workspace struct {
	z      []complex128
	counts []float64
	active []int
	zs     []complex128
	fs     []complex128
	dfs    []complex128
}

func (w *workspace) grow(n int) {
	if cap(w.z) >= n {
		return
	}
	w.z = make([]complex128, n)
	w.counts = make([]float64, n)
	w.active = make([]int, n)
	w.zs = make([]complex128, n)
	w.fs = make([]complex128, n)
	w.dfs = make([]complex128, n)
}

func (w *workspace) iterate(z []complex128, f, df expr.Evaluator, maxIter int, tol float64, counts []float64) {
	n := len(z)
	w.grow(n)

	// every pixel starts active with a zero count
	active := w.active[:n]
	for i := range active {
		active[i] = i
		counts[i] = 0
	}

	for step := 0; step < maxIter; step++ {
		if len(active) == 0 {
			break
		}

		// gather the active pixels; inactive ones are never evaluated
		zs := w.zs[:len(active)]
		fs := w.fs[:len(active)]
		dfs := w.dfs[:len(active)]
		for k, i := range active {
			zs[k] = z[i]
		}
		f(fs, zs)
		df(dfs, zs)

		// scatter the step back and keep only pixels that moved beyond tol.
		// NaN distances compare false and drop out here.
		next := active[:0]
		for k, i := range active {
			d := dfs[k]
			if d == 0 {
				d = SingularGuard
			}
			moved := zs[k] - fs[k]/d
			z[i] = moved
			if cmplx.Abs(moved-zs[k]) > tol {
				counts[i]++
				next = append(next, i)
			}
		}
		active = next
	}
}
