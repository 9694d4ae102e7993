package shakemovie

import "math"

// CellState tags an accumulation cell.
type CellState uint8

const (
	// Empty has not received any contribution.
	Empty CellState = iota
	// Counted holds a positive splat count, sum is not yet divided.
	Counted
	// Pending holds kernel weights only; a later point splat overwrites it.
	Pending
	// Finalized holds an averaged value in Sum.
	Finalized
)

func (s CellState) String() string {
	switch s {
	case Empty:
		return "empty"
	case Counted:
		return "counted"
	case Pending:
		return "pending"
	case Finalized:
		return "finalized"
	}
	return "unknown"
}

// Grid is the equirectangular accumulation grid. Count is always stored as a
// magnitude; State carries what the count means.
type Grid struct {
	W, H  int
	Sum   []float32
	Count []int32
	State []CellState
}

// NewGrid returns a w x h grid with every cell Empty.
func NewGrid(w, h int) *Grid {
	n := w * h
	return &Grid{
		W:     w,
		H:     h,
		Sum:   make([]float32, n),
		Count: make([]int32, n),
		State: make([]CellState, n),
	}
}

func (g *Grid) idx(x, y int) int { return y*g.W + x }

func (g *Grid) Len() int { return g.W * g.H }

func (g *Grid) Reset() {
	for i := range g.Sum {
		g.Sum[i] = 0
		g.Count[i] = 0
		g.State[i] = Empty
	}
}

// Value returns the finalized cell value, 0 for cells never reached.
func (g *Grid) Value(i int) float64 {
	if g.State[i] == Finalized {
		return float64(g.Sum[i])
	}
	return 0
}

func (g *Grid) hasCount(i int) bool {
	return g.State[i] == Counted || g.State[i] == Pending
}

// finalize divides sum by count for every counted or pending cell.
func (g *Grid) finalize(i int) {
	if g.hasCount(i) && g.Count[i] != 0 {
		g.Sum[i] /= float32(g.Count[i])
		g.State[i] = Finalized
	}
}

// unfinalize turns finalized cells back into single-count cells so later
// accumulation treats them as data.
func (g *Grid) unfinalize() {
	for i, s := range g.State {
		if s == Finalized {
			g.Count[i] = 1
			g.State[i] = Counted
		}
	}
}

// MinMax returns the range of finalized values.
func (g *Grid) MinMax() (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, s := range g.State {
		if s != Finalized {
			continue
		}
		v := float64(g.Sum[i])
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}
