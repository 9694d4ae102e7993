package shakemovie

import (
	"math"
	"math/rand"
)

// Backglow is the halo drawn around the globe. Falloff is the squared outer
// radius in globe radii.
type Backglow struct {
	Corona     bool
	Falloff    float64
	Intensity  float64
	Color      [3]float64
	Background [3]uint8
	sectors    []float64
}

// NewBackglow takes the falloff in pixels beyond the rim. Corona sector radii
// are drawn from a fixed seed so every run looks the same.
func NewBackglow(corona bool, falloffPx, intensity float64, col [3]float64, bg [3]uint8, radius int) *Backglow {
	fo := falloffPx/float64(radius) + 1.0
	b := &Backglow{
		Corona:     corona,
		Falloff:    fo * fo,
		Intensity:  intensity,
		Color:      col,
		Background: bg,
	}
	if corona {
		b.sectors = coronaSectors(rand.New(rand.NewSource(CoronaSeed)))
	}
	DebugLog("Backglow: corona=%v falloff=%f intensity=%f", corona, b.Falloff, intensity)
	return b
}

// coronaSectors gives each one-degree sector a reach in [0,1], interpolating
// between random radii of the wider sectors with jittered positions. The
// last wide sector closes back onto the first radius.
func coronaSectors(rng *rand.Rand) []float64 {
	width := BackglowSectors / CoronaSectors
	sw := float64(BackglowSectors) / CoronaSectors
	r1 := rng.Float64()
	r2 := rng.Float64()
	r0 := r1
	fac := make([]float64, BackglowSectors)
	for i := range fac {
		if i%width == 0 {
			r1 = r2
			r2 = rng.Float64()
			if i >= BackglowSectors-width {
				r2 = r0
			}
		}
		isec := int(float64(i) / sw)
		pos := float64(i)/sw - float64(isec)
		pos += CoronaJitter * (2.0*rng.Float64() - 1.0)
		pos = clamp(pos, 0, 1)
		fac[i] = (1.0-pos)*r1 + pos*r2
	}
	return fac
}

func (b *Backglow) blend(v float64, col [3]float64) [3]uint8 {
	var out [3]uint8
	for k := range out {
		out[k] = capByte(v*col[k] + (1.0-v)*float64(b.Background[k]))
	}
	return out
}

// Apply returns the glow color at screen position (px, py) in globe radii.
// ok is false inside the disc and beyond the falloff.
func (b *Backglow) Apply(px, py float64) (rgb [3]uint8, ok bool) {
	r2 := px*px + py*py
	if r2 <= 1.0 || r2 > b.Falloff {
		return rgb, false
	}
	f := (b.Falloff - r2) / (b.Falloff - 1.0)
	if !b.Corona {
		return b.blend(clamp(f, 0, 1)*b.Intensity, b.Color), true
	}

	az := rad2deg(math.Atan2(px, py))
	if az < 0 {
		az += 360.0
	}
	if az > 360.0 {
		az -= 360.0
	}
	n := len(b.sectors)
	sw := 360.0 / float64(n)
	isec := int(az / sw)
	pos := az/sw - float64(isec)
	isec = clampInt(isec, 0, n-1)
	reach := (1.0-pos)*b.sectors[isec] + pos*b.sectors[(isec+1)%n]

	fr := reach*(b.Falloff-1.0) + 1.0
	f = clamp((fr-r2)/(fr-1.0), 0, 1)
	var col [3]float64
	boost := 0.7 * math.Pow(reach, 8.0)
	for k := range col {
		col[k] = b.Color[k] + boost*(255.0-b.Color[k])
	}
	return b.blend(math.Pow(f, 0.8)*b.Intensity, col), true
}

// Rim is the innermost glow color, used where relief lifts the rim off the
// disc.
func (b *Backglow) Rim() [3]uint8 {
	return b.blend(clamp(b.Intensity, 0, 1), b.Color)
}

func (c *Compositor) backglow(p *pixel) {
	if c.Glow == nil {
		return
	}
	if rgb, ok := c.Glow.Apply(p.pxOrg, p.pyOrg); ok {
		p.c = rgb
	}
	if c.Opts.Elevation && c.Tex.Topo != nil && p.height <= 0 && p.pxOrg*p.pxOrg+p.pyOrg*p.pyOrg <= 1.0 {
		p.c = c.Glow.Rim()
	}
}
