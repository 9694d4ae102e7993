package shakemovie

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pointResampler(w, h int) *Resampler {
	return NewResampler(NewGrid(w, h), nil, nil, ResampleOptions{
		ExtraPasses: ExtraPasses,
		HoleFill:    HoleFillSweeps,
		Symmetric:   true,
	})
}

func TestThreeSamplesPointMode(t *testing.T) {
	r := pointResampler(60, 30)
	samples := []Sample{{X: 5, Y: 15, V: -2}, {X: 30, Y: 15, V: 0}, {X: 50, Y: 15, V: 3}}
	st := r.Splat(samples)
	assert.Equal(t, -2.0, st.RawMin)
	assert.Equal(t, 3.0, st.RawMax)
	r.Average()

	g := r.Grid
	touched := map[int]float32{g.idx(5, 15): -2, g.idx(30, 15): 0, g.idx(50, 15): 3}
	for i := range g.State {
		if v, ok := touched[i]; ok {
			assert.Equal(t, Finalized, g.State[i])
			assert.Equal(t, v, g.Sum[i])
			continue
		}
		require.Equal(t, Empty, g.State[i], "cell %d splatted directly", i)
	}

	st, err := r.Process(1, samples)
	require.NoError(t, err)
	assert.Equal(t, -2.0, st.RawMin)
	assert.Equal(t, 3.0, st.RawMax)
	assert.Equal(t, -3.0, st.Min)
	assert.Equal(t, 3.0, st.Max)
	for i, s := range g.State {
		require.Equal(t, Finalized, s, "cell %d", i)
		require.True(t, isFinite(float64(g.Sum[i])), "cell %d", i)
	}
	assert.Equal(t, float32(3), g.Sum[g.idx(50, 15)])
}

func TestBounds(t *testing.T) {
	r := pointResampler(4, 4)
	lo, hi := r.Bounds(-2, 3)
	assert.Equal(t, -3.0, lo)
	assert.Equal(t, 3.0, hi)

	r.Opts.Symmetric = false
	lo, hi = r.Bounds(-2, 3)
	assert.Equal(t, -2.0, lo)
	assert.Equal(t, 3.0, hi)

	r.Opts.UseSetBounds = true
	r.Opts.BoundMin, r.Opts.BoundMax = -0.5, 0.25
	lo, hi = r.Bounds(-2, 3)
	assert.Equal(t, -0.5, lo)
	assert.Equal(t, 0.25, hi)

	r.Opts.Symmetric = true
	lo, hi = r.Bounds(-2, 3)
	assert.Equal(t, -0.5, lo)
	assert.Equal(t, 0.5, hi)
}

func TestRawMinMaxUpdateOrder(t *testing.T) {
	r := pointResampler(8, 8)
	st := r.Splat([]Sample{{V: 5}, {V: 1}, {V: 7}, {V: -1}})
	assert.Equal(t, -1.0, st.RawMin)
	assert.Equal(t, 7.0, st.RawMax)
}

func TestPointSplatReplacesPending(t *testing.T) {
	r := pointResampler(4, 4)
	g := r.Grid
	i := g.idx(1, 1)
	g.State[i], g.Count[i], g.Sum[i] = Pending, 9, 18
	r.splatPoint(i, 5)
	assert.Equal(t, Counted, g.State[i])
	assert.Equal(t, int32(1), g.Count[i])
	assert.Equal(t, float32(5), g.Sum[i])
	r.splatPoint(i, 3)
	assert.Equal(t, int32(2), g.Count[i])
	assert.Equal(t, float32(8), g.Sum[i])
}

func TestKernelSplatCountRule(t *testing.T) {
	tbl, err := NewKernelTable(1)
	require.NoError(t, err)
	g := NewGrid(40, 20)
	r := NewResampler(g, tbl, nil, ResampleOptions{})
	k := tbl.Lookup(10, g.H)
	require.Equal(t, 1, k.RadiusX)

	r.splatKernel(10, 10, 2)
	c := g.idx(10, 10)
	assert.Equal(t, Pending, g.State[c])
	assert.Equal(t, int32(k.At(1, 1)), g.Count[c])
	assert.Equal(t, float32(2*k.At(1, 1)), g.Sum[c])

	// Counted cells keep their count but blend the value.
	g.State[c], g.Count[c], g.Sum[c] = Counted, 3, 6
	r.splatKernel(10, 10, 1)
	assert.Equal(t, int32(3), g.Count[c])
	assert.Equal(t, float32(6+k.At(1, 1)), g.Sum[c])
}

func TestKernelSplatWrapsAndClamps(t *testing.T) {
	tbl, err := NewKernelTable(1)
	require.NoError(t, err)
	g := NewGrid(40, 20)
	r := NewResampler(g, tbl, nil, ResampleOptions{})
	r.splatKernel(0, 10, 1)
	assert.Equal(t, Pending, g.State[g.idx(39, 10)])
	assert.Equal(t, Pending, g.State[g.idx(1, 10)])

	g.Reset()
	// Row 0 is a polar row: the widest kernel is used and rows above clamp
	// into row 0 instead of wrapping to the bottom.
	r.splatKernel(20, 0, 1)
	for x := 0; x < g.W; x++ {
		assert.Equal(t, Empty, g.State[g.idx(x, g.H-1)])
	}
	assert.Equal(t, Pending, g.State[g.idx(20, 0)])
}

func TestSplatOverflowGuard(t *testing.T) {
	r := pointResampler(4, 4)
	samples := make([]Sample, SplatCountCeiling+1)
	for i := range samples {
		samples[i] = Sample{X: 2, Y: 2, V: 1}
	}
	r.Splat(samples)
	g := r.Grid
	i := g.idx(2, 2)
	assert.Equal(t, int32(SplatCountCeiling/2+1), g.Count[i])
	assert.Equal(t, float32(SplatCountCeiling/2+1), g.Sum[i])
}

func TestPolarFill(t *testing.T) {
	r := pointResampler(8, 90)
	g := r.Grid
	g.State[g.idx(2, 0)], g.Sum[g.idx(2, 0)] = Finalized, 4
	g.State[g.idx(5, 0)], g.Sum[g.idx(5, 0)] = Finalized, 10
	// Row 45 is at the equator and must stay untouched.
	g.State[g.idx(2, 45)], g.Sum[g.idx(2, 45)] = Finalized, 4
	r.PolarFill()

	assert.Equal(t, float32(0), g.Sum[g.idx(0, 0)])
	assert.Equal(t, Finalized, g.State[g.idx(0, 0)])
	assert.Equal(t, float32(0), g.Sum[g.idx(1, 0)])
	assert.InDelta(t, 6.0, g.Sum[g.idx(3, 0)], 1e-5)
	assert.InDelta(t, 8.0, g.Sum[g.idx(4, 0)], 1e-5)
	// Trailing cells only get the forward copy.
	assert.Equal(t, Counted, g.State[g.idx(6, 0)])
	assert.Equal(t, int32(1), g.Count[g.idx(6, 0)])
	assert.Equal(t, int32(2), g.Count[g.idx(7, 0)])
	assert.Equal(t, float32(10), g.Sum[g.idx(7, 0)])

	assert.Equal(t, Empty, g.State[g.idx(3, 45)])
}

func TestDiffusePassSpreadsValue(t *testing.T) {
	r := pointResampler(9, 9)
	g := r.Grid
	c := g.idx(4, 4)
	g.State[c], g.Sum[c] = Finalized, 2
	r.DiffusePass(1)

	assert.Equal(t, Counted, g.State[c])
	assert.Equal(t, int32(1), g.Count[c])
	for _, n := range []struct {
		x, y int
		w    int32
	}{{3, 4, 8}, {5, 4, 8}, {4, 3, 8}, {4, 5, 8}, {3, 3, 4}, {5, 5, 4}, {2, 4, 1}, {4, 6, 1}} {
		i := g.idx(n.x, n.y)
		assert.Equal(t, n.w, g.Count[i], "(%d,%d)", n.x, n.y)
		assert.Equal(t, float32(2)*float32(n.w), g.Sum[i], "(%d,%d)", n.x, n.y)
	}
	assert.Equal(t, Empty, g.State[g.idx(0, 0)])

	// With no passes finalized cells still revert to single counts.
	g.Reset()
	g.State[c], g.Sum[c] = Finalized, 2
	r.DiffusePass(0)
	assert.Equal(t, Counted, g.State[c])
	assert.Equal(t, int32(1), g.Count[c])
}

func TestLineFillIdempotentOnFilledGrid(t *testing.T) {
	r := pointResampler(30, 20)
	_, err := r.Process(1, []Sample{{X: 3, Y: 4, V: 1}, {X: 20, Y: 12, V: -4}, {X: 9, Y: 18, V: 2.5}})
	require.NoError(t, err)
	g := r.Grid
	before := append([]float32(nil), g.Sum...)
	r.LineFill()
	r.Ready()
	for i := range before {
		require.Equal(t, before[i], g.Sum[i], "cell %d", i)
		require.Equal(t, Finalized, g.State[i])
	}
}

func TestLineFillFillsGaps(t *testing.T) {
	r := pointResampler(10, 1)
	g := r.Grid
	g.State[0], g.Count[0], g.Sum[0] = Counted, 1, 3
	r.LineFill()
	r.Ready()
	for x := 0; x < g.W; x++ {
		assert.InDelta(t, 3.0, g.Value(x), 1e-5, "x=%d", x)
	}
}

func cutoffResampler() (*Resampler, int, int) {
	w, h := 361, 181
	g := NewGrid(w, h)
	d := NewDistanceGrid(w, h, 0, 0)
	r := NewResampler(g, nil, d, ResampleOptions{Cutoff: true, CutoffDeg: 20, CutoffStart: 5, CutoffEnd: 45})
	return r, g.idx(180, 90), g.idx(0, 90)
}

func TestNoiseCutoffEasesOffAcrossWindow(t *testing.T) {
	r, src, far := cutoffResampler()
	g := r.Grid
	require.Equal(t, uint16(0), r.Dist.Deg[src])

	for _, tc := range []struct {
		frame int
		want  float64
	}{
		{5, 0},
		{15, 0.25},
		{25, 0.5},
		{44, 39.0 / 40.0},
	} {
		g.Sum[src], g.Sum[far] = 1, 1
		r.NoiseCutoff(tc.frame)
		assert.InDelta(t, tc.want, g.Sum[src], 1e-6, "frame %d", tc.frame)
		assert.Equal(t, float32(1), g.Sum[far], "frame %d", tc.frame)
	}
}

func TestNoiseCutoffIdleOutsideWindow(t *testing.T) {
	r, src, _ := cutoffResampler()
	g := r.Grid
	for _, frame := range []int{0, 4, 45, 100} {
		g.Sum[src] = 1
		r.NoiseCutoff(frame)
		assert.Equal(t, float32(1), g.Sum[src], "frame %d", frame)
	}
}

func TestDistanceGrid(t *testing.T) {
	d := NewDistanceGrid(361, 181, 0, 0)
	assert.Equal(t, uint16(0), d.Deg[90*361+180])
	assert.InDelta(t, 90, float64(d.Deg[0*361+180]), 1)
	assert.InDelta(t, 180, float64(d.Deg[90*361+0]), 1)
	for _, v := range d.Deg {
		require.LessOrEqual(t, v, uint16(180))
	}
	assert.False(t, math.IsNaN(d.At(0)))
}
