package shakemovie

import (
	"fmt"
	"math"
	"strings"
)

// Planet picks the body being rendered.
type Planet int

const (
	Earth Planet = iota
	Mars
	Moon
)

func ParsePlanet(s string) (Planet, error) {
	switch strings.ToLower(s) {
	case "", "earth":
		return Earth, nil
	case "mars":
		return Mars, nil
	case "moon":
		return Moon, nil
	}
	return 0, fmt.Errorf("unknown planet %q", s)
}

func (p Planet) String() string {
	switch p {
	case Mars:
		return "mars"
	case Moon:
		return "moon"
	}
	return "earth"
}

func (p Planet) RadiusKm() float64 {
	switch p {
	case Mars:
		return MarsRadiusKm
	case Moon:
		return MoonRadiusKm
	}
	return EarthRadiusKm
}

// CloudColor is the cloud tint in 0..255.
func (p Planet) CloudColor() [3]float64 {
	switch p {
	case Mars:
		return MarsCloudColor
	case Moon:
		return [3]float64{}
	}
	return [3]float64{255, 255, 255}
}

// clouds lays the cloud raster over the pixel with a relief shade that uses
// cloud brightness as height. Bright city lights under clouds tint them and
// bleed into the neighbors.
func (c *Compositor) clouds(p *pixel, fc *FrameContext, out *Shaded) {
	cm := c.Tex.Clouds
	if cm == nil {
		return
	}
	cval := p.cloud
	lf := math.Max(p.light, CloudLightFactorMin)
	shadow := clamp(1.0-cval, 0, 1)

	at := func(i int) float64 { return cm.Gray(i) * 255.0 }
	slope, aspect := topoSlope(at, cm.W, cm.H, p.tx, p.ty, CloudShadeScale, true)
	shaded := math.Max(shade(slope, aspect, p.azi, p.ele, fc), 0)
	if p.light > 0 {
		shaded = CloudShadeIntensity * p.light * shaded
	} else {
		shaded = 0
	}

	rgb := c.Opts.Planet.CloudColor()
	if c.Opts.Graymap {
		rgb = [3]float64{255, 255, 255}
	}
	lit := p.c[ChR] > LightThreshold && p.c[ChG] > LightThreshold && p.c[ChB] > LightThreshold
	if lit {
		rgb = LightCloudColor
		shadow = math.Max(shadow, LightShadowFloor)
		shaded = math.Min(shaded, LightShadedCeiling)
		lf = math.Max(lf, LightFactorFloor)
	}

	b := Bleed{Shadow: shadow}
	for k := range b.Add {
		b.Add[k] = (cval + shaded) * lf * rgb[k]
	}
	b.apply(p.c[:])
	if lit {
		out.Bleed = &b
	}
}
