package shakemovie

import (
	"fmt"
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Palette selects the functional color map for wave values.
type Palette int

const (
	BlueRed Palette = iota
	DarkBlueRed
	Spectrum
	Hot
	Hot2
)

var paletteNames = map[string]Palette{
	"bluered":     BlueRed,
	"darkbluered": DarkBlueRed,
	"spectrum":    Spectrum,
	"hot":         Hot,
	"hot2":        Hot2,
}

func ParsePalette(s string) (Palette, error) {
	if s == "" {
		return BlueRed, nil
	}
	p, ok := paletteNames[strings.ToLower(strings.ReplaceAll(s, "_", ""))]
	if !ok {
		return 0, fmt.Errorf("unknown palette %q", s)
	}
	return p, nil
}

// MaxIntensity is the channel scale used when blending with this palette.
func (p Palette) MaxIntensity() float64 {
	if p == DarkBlueRed {
		return DarkColorIntensity
	}
	return MaxColorIntensity
}

// WaveMode selects how wave colors combine with the globe.
type WaveMode int

const (
	Blend WaveMode = iota
	Additive
)

// DetermineColor maps a wave value in [-1,1] to channel values in 0..255
// (stored in a colorful.Color without clamping) and an opacity in [0,1].
func DetermineColor(p Palette, mode WaveMode, v float64, water bool, maxIntensity float64) (colorful.Color, float64, error) {
	if math.IsNaN(v) {
		return colorful.Color{}, 0, fmt.Errorf("determine color: %w", ErrNaN)
	}
	vabs := math.Abs(v)
	if mode == Additive {
		a := vabs * AdditiveIntensity
		return colorful.Color{R: a, G: a, B: a}, vabs, nil
	}

	var c colorful.Color
	switch p {
	case BlueRed, DarkBlueRed:
		if v > 0 {
			c.R = vabs
		} else if v < 0 {
			c.B = vabs
		}
	case Spectrum:
		if water {
			vabs *= 2.0
		}
		if vabs > 1.0 {
			vabs = 1.0
		}
		if v > 0 {
			vf := 1.0
			if vabs > 0.5 {
				vf = math.Sin(vabs*math.Pi)/2.0 + 0.5
			}
			if water {
				vabs /= 2.0
			}
			c.R, c.G = vabs, vabs*vf
		} else if v < 0 {
			vf := 1.0
			if vabs > 0.25 && vabs < 0.75 {
				vf = math.Cos((vabs-0.25)*math.Pi)/2.0 + 0.5
			} else if vabs >= 0.75 {
				vf = 0.5
			}
			if water {
				vabs /= 2.0
			}
			c.G, c.B = vabs*vf, vabs*(1.0-vf)
		}
	case Hot, Hot2:
		c = heat(p, vabs, water)
	default:
		return colorful.Color{}, 0, fmt.Errorf("unknown palette %d", p)
	}
	c.R *= maxIntensity
	c.G *= maxIntensity
	c.B *= maxIntensity
	return c, vabs, nil
}

// heat is the dark red/brown to white ramp of the hot palettes.
func heat(p Palette, vabs float64, water bool) colorful.Color {
	v := math.Min(vabs*2.0, 1.0)
	if water {
		v = math.Min(v*2.0, 1.0) / 2.0
	}
	ramp := func(x, lo, hi float64) float64 {
		switch {
		case x < lo:
			return 0
		case x < hi:
			return (x - lo) / (hi - lo)
		}
		return 1
	}
	var c colorful.Color
	if p == Hot {
		c.R = 1.0
		if v < 0.5 {
			c.R = 0.0416 + (1.0-0.0416)*v/0.5
		}
		c.G = ramp(v, 0.36, 0.75)
		c.B = ramp(v, 0.75, 0.9)
		return c
	}
	c.R = 1.0
	if v < 0.7 {
		c.R = 0.04 + (1.0-0.04)*v/0.7
	}
	c.G = ramp(v, 0.2, 0.8)
	c.B = ramp(v, 0.4, 0.8)
	return c
}

// parseColor accepts "#rrggbb" and returns 0..255 channels.
func parseColor(s string, def [3]uint8) ([3]uint8, error) {
	if s == "" {
		return def, nil
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return def, fmt.Errorf("color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return [3]uint8{r, g, b}, nil
}
