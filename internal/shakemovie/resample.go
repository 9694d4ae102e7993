package shakemovie

import (
	"fmt"
	"math"
)

// ResampleOptions configure one Resampler.
type ResampleOptions struct {
	ExtraPasses  int
	HoleFill     int
	UseSetBounds bool
	BoundMin     float64
	BoundMax     float64
	Symmetric    bool
	Cutoff       bool
	CutoffDeg    float64
	CutoffStart  int
	CutoffEnd    int
}

// Stats reports the amplitude range of one processed frame.
type Stats struct {
	RawMin, RawMax float64
	Min, Max       float64
	Samples        int
}

// Resampler turns scattered samples into a filled grid. A nil Kernels table
// selects point splatting.
type Resampler struct {
	Grid    *Grid
	Kernels *KernelTable
	Dist    *DistanceGrid
	Opts    ResampleOptions
}

func NewResampler(g *Grid, kernels *KernelTable, dist *DistanceGrid, opts ResampleOptions) *Resampler {
	return &Resampler{Grid: g, Kernels: kernels, Dist: dist, Opts: opts}
}

// Process runs the full pipeline for one frame: splat, average, polar fill,
// diffuse passes, line fill, noise cutoff and finalization.
func (r *Resampler) Process(frame int, samples []Sample) (Stats, error) {
	st := r.Splat(samples)
	r.Average()
	r.PolarFill()
	r.DiffusePass(r.Opts.ExtraPasses)
	for n := 0; n < r.Opts.HoleFill; n++ {
		r.LineFill()
	}
	if r.Opts.Cutoff {
		if r.Dist == nil {
			return st, fmt.Errorf("noise cutoff enabled without a distance grid")
		}
		r.NoiseCutoff(frame)
	}
	r.Ready()
	st.Min, st.Max = r.Bounds(st.RawMin, st.RawMax)
	DebugLog("Frame %d: raw %e..%e bounds %e..%e", frame, st.RawMin, st.RawMax, st.Min, st.Max)
	return st, nil
}

// Splat clears the grid and accumulates every sample. The raw amplitude
// range is tracked with the first sample seeding both ends.
func (r *Resampler) Splat(samples []Sample) Stats {
	g := r.Grid
	g.Reset()
	st := Stats{Samples: len(samples)}
	for n, s := range samples {
		f := float64(s.V)
		if n == 0 {
			st.RawMin, st.RawMax = f, f
		} else if f < st.RawMin {
			st.RawMin = f
		} else if f > st.RawMax {
			st.RawMax = f
		}
		x := clampInt(s.X, 0, g.W-1)
		y := clampInt(s.Y, 0, g.H-1)
		i := g.idx(x, y)
		if g.State[i] == Counted && g.Count[i] >= SplatCountCeiling {
			g.Count[i] /= 2
			g.Sum[i] /= 2
			DebugLog("Splat count big at (%d, %d)", x, y)
		}
		if r.Kernels != nil {
			r.splatKernel(x, y, s.V)
		} else {
			r.splatPoint(i, s.V)
		}
	}
	return st
}

func (r *Resampler) splatPoint(i int, f float32) {
	g := r.Grid
	switch g.State[i] {
	case Pending:
		g.Sum[i] = f
		g.Count[i] = 1
	default:
		g.Sum[i] += f
		g.Count[i]++
	}
	g.State[i] = Counted
}

// splatKernel wraps horizontally and clamps rows at the poles. Cells already
// counted only blend the value, their count is left alone.
func (r *Resampler) splatKernel(x, y int, f float32) {
	g := r.Grid
	k := r.Kernels.Lookup(y, g.H)
	for kj := 0; kj < k.SizeY(); kj++ {
		row := clampInt(y+kj-k.RadiusY, 0, g.H-1)
		for ki := 0; ki < k.SizeX(); ki++ {
			w := k.At(ki, kj)
			if w <= 0 {
				continue
			}
			col := (x + ki - k.RadiusX) % g.W
			if col < 0 {
				col += g.W
			}
			i := g.idx(col, row)
			switch g.State[i] {
			case Empty, Pending:
				g.Count[i] += int32(w)
				g.State[i] = Pending
			}
			g.Sum[i] += float32(w) * f
		}
	}
}

// Average divides every touched cell and marks it finalized.
func (r *Resampler) Average() {
	g := r.Grid
	for i := range g.State {
		g.finalize(i)
	}
}

// PolarFill patches rows within PolarLatitude degrees of either pole. A
// forward pass copies the last finalized value with an increasing gap count;
// the backward pass blends in the value from the other side by that count.
// Cells left of the first finalized cell in a row end up as 0.
func (r *Resampler) PolarFill() {
	g := r.Grid
	for y := 0; y < g.H; y++ {
		lat := float64(y) * 180.0 / float64(g.H)
		if lat > PolarLatitude && lat < 180.0-PolarLatitude {
			continue
		}
		base := y * g.W
		gap, lastv := int32(0), -1
		for x := 0; x < g.W; x++ {
			i := base + x
			if g.State[i] == Finalized {
				gap, lastv = 0, i
			} else if lastv >= 0 {
				gap++
				g.Count[i] = gap
				g.Sum[i] = g.Sum[lastv]
				g.State[i] = Counted
			}
		}
		gap, lastv = -1, -1
		for x := g.W - 1; x >= 0; x-- {
			i := base + x
			if g.State[i] == Finalized {
				gap, lastv = -1, i
			} else if lastv >= 0 {
				c := g.Count[i]
				if gap < 0 {
					gap = c + 1
				}
				g.Sum[i] = (float32(c)*g.Sum[lastv] + float32(gap-c)*g.Sum[i]) / float32(gap)
				g.State[i] = Finalized
			}
		}
	}
}

// DiffusePass floods finalized values into their neighborhood npasses times.
// From the second pass on, cells with at least PreFinalizeCount weight become
// sources themselves. Finalized cells end as single counts.
func (r *Resampler) DiffusePass(npasses int) {
	g := r.Grid
	w, h := g.W, g.H
	push := func(i, weight int, v float32) {
		if g.State[i] == Finalized {
			return
		}
		g.Count[i] += int32(weight)
		g.Sum[i] += v * float32(weight)
		g.State[i] = Counted
	}
	for npass := 0; npass < npasses; npass++ {
		if npass != 0 {
			for i, s := range g.State {
				if s != Finalized && s != Empty && g.Count[i] >= PreFinalizeCount {
					g.Sum[i] /= float32(g.Count[i])
					g.State[i] = Finalized
				}
			}
		}
		i := 0
		for py := 0; py < h; py++ {
			for px := 0; px < w; px++ {
				if g.State[i] != Finalized {
					i++
					continue
				}
				v := g.Sum[i]
				if px > 0 {
					push(i-1, 8, v)
					if py > 0 {
						push(i-w-1, 4, v)
					}
					if py < h-1 {
						push(i+w-1, 4, v)
					}
				}
				if py > 0 {
					push(i-w, 8, v)
				}
				if px < w-1 {
					push(i+1, 8, v)
					if py > 0 {
						push(i-w+1, 4, v)
					}
					if py < h-1 {
						push(i+w+1, 4, v)
					}
				}
				if py < h-1 {
					push(i+w, 8, v)
				}
				if px > 1 {
					push(i-2, 1, v)
				}
				if py > 1 {
					push(i-2*w, 1, v)
				}
				if px < w-2 {
					push(i+2, 1, v)
				}
				if py < h-2 {
					push(i+2*w, 1, v)
				}
				i++
			}
		}
	}
	g.unfinalize()
}

// LineFill runs the four axis sweeps once. Each sweep carries the last
// finalized value forward with a lifetime that decays by one per cell.
func (r *Resampler) LineFill() {
	g := r.Grid
	for i := range g.State {
		g.finalize(i)
	}
	var (
		value float32
		life  int32
	)
	visit := func(i int) {
		if g.State[i] == Finalized {
			value, life = g.Sum[i], ValueLife
			return
		}
		if life > 0 {
			g.Sum[i] += float32(life) * value
			g.Count[i] += life
			g.State[i] = Counted
			life--
		}
	}
	for y := 0; y < g.H; y++ {
		life = 0
		for x := 0; x < g.W; x++ {
			visit(g.idx(x, y))
		}
	}
	for y := 0; y < g.H; y++ {
		life = 0
		for x := g.W - 1; x >= 0; x-- {
			visit(g.idx(x, y))
		}
	}
	for x := 0; x < g.W; x++ {
		life = 0
		for y := 0; y < g.H; y++ {
			visit(g.idx(x, y))
		}
	}
	for x := 0; x < g.W; x++ {
		life = 0
		for y := g.H - 1; y >= 0; y-- {
			visit(g.idx(x, y))
		}
	}
	g.unfinalize()
}

// NoiseCutoff attenuates cells within CutoffDeg of the source while
// CutoffStart <= frame < CutoffEnd. Suppression is full at the start frame and
// eases off linearly; frames outside the window are left alone.
func (r *Resampler) NoiseCutoff(frame int) {
	o := r.Opts
	if frame < o.CutoffStart || frame >= o.CutoffEnd {
		return
	}
	att := 1.0 - float64(frame-o.CutoffStart)/float64(o.CutoffEnd-o.CutoffStart)
	g := r.Grid
	for i := range g.Sum {
		d := r.Dist.At(i)
		if d < o.CutoffDeg {
			a := (1.0 - att) + att*(1.0-math.Cos(d/o.CutoffDeg*math.Pi))/2.0
			g.Sum[i] *= float32(a)
		}
	}
}

// Ready finalizes every cell. Cells no pass reached hold 0.
func (r *Resampler) Ready() {
	g := r.Grid
	for i := range g.State {
		g.finalize(i)
		if g.State[i] != Finalized {
			g.Sum[i] = 0
			g.Count[i] = 0
			g.State[i] = Finalized
		}
	}
}

// Bounds applies the fixed and symmetric bound options to a raw range.
func (r *Resampler) Bounds(lo, hi float64) (float64, float64) {
	if r.Opts.UseSetBounds {
		lo, hi = r.Opts.BoundMin, r.Opts.BoundMax
	}
	if r.Opts.Symmetric {
		lo, hi = math.Abs(lo), math.Abs(hi)
		if lo > hi {
			hi = lo
		}
		lo = -hi
	}
	return lo, hi
}
