package shakemovie

import (
	"fmt"
	"math"
)

// WaveOptions control the wavefield overlay.
type WaveOptions struct {
	Enabled     bool
	Palette     Palette
	Mode        WaveMode
	MaxOpacity  float64
	Enhanced    bool
	Nonlinear   bool
	Power       float64
	FadeOnWater bool
	Contours    bool
}

// WaveStats is the range of overlay values drawn in one frame.
type WaveStats struct {
	Min, Max float64
	N        int
}

func (s *WaveStats) add(v float64) {
	if s.N == 0 || v < s.Min {
		s.Min = v
	}
	if s.N == 0 || v > s.Max {
		s.Max = v
	}
	s.N++
}

func (s *WaveStats) merge(o WaveStats) {
	if o.N == 0 {
		return
	}
	if s.N == 0 {
		*s = o
		return
	}
	s.Min = math.Min(s.Min, o.Min)
	s.Max = math.Max(s.Max, o.Max)
	s.N += o.N
}

// overlayValue is the normalized wave value under the pixel, interpolated
// towards the next field when interlacing.
func (c *Compositor) overlayValue(p *pixel, fc *FrameContext) float64 {
	idx := c.waveIndex(fc.Waves.Grid, p.tx, p.ty)
	if c.Opts.Waves.Enhanced && p.haveIdxW {
		idx = p.idxW
	}
	v := clamp(fc.Waves.normalized(idx, false), -1, 1)
	if fc.Next != nil {
		v2 := clamp(fc.Next.normalized(idx, false), -1, 1)
		v = v*(1.0-fc.Phase) + v2*fc.Phase
	}
	return v
}

// waves colors the pixel by the wave amplitude.
func (c *Compositor) waves(p *pixel, fc *FrameContext, out *Shaded) error {
	wo := &c.Opts.Waves
	if !wo.Enabled || fc.Waves == nil {
		return nil
	}
	v := c.overlayValue(p, fc)
	if !isFinite(v) {
		return fmt.Errorf("wave value at texel (%d, %d): %w", p.tx, p.ty, ErrNaN)
	}
	if wo.Enhanced {
		if math.Abs(v) < WaveCutSnaps {
			v = 0
		}
		if wo.Nonlinear {
			v = math.Copysign(math.Pow(math.Abs(v), wo.Power), v)
		}
	}
	v = clamp(v, -1, 1)
	out.Wave, out.HasWave = v, true

	maxOp := wo.MaxOpacity
	if wo.Mode == Blend && p.water && wo.FadeOnWater {
		v /= 2.0
		maxOp /= 3.0
	}
	col, op, err := DetermineColor(wo.Palette, wo.Mode, v, p.water, wo.Palette.MaxIntensity())
	if err != nil {
		return err
	}
	op = math.Min(op, maxOp)

	if wo.Mode == Additive {
		if v > 0 {
			p.c[ChR] = capByte(float64(p.c[ChR]) + col.R)
		} else if v < 0 {
			p.c[ChB] = capByte(float64(p.c[ChB]) + col.B)
		}
		return nil
	}
	rgb := [3]float64{col.R, col.G, col.B}
	for k := range p.c {
		p.c[k] = capByte(float64(p.c[k])*(1.0-op) + rgb[k])
	}
	return nil
}
