package shakemovie

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// diffuse applies Lambert light, hillshade and albedo on top of the emissive
// base color. It also records the light factor and cloud cover used by the
// later stages.
func (c *Compositor) diffuse(p *pixel, fc *FrameContext) {
	o := &c.Opts
	p.light = clamp(r3.Dot(p.normal(), fc.Sun), -1, 1)

	var d [3]uint8
	emission := 1.0
	if o.Diffuse {
		emission = o.Emission
		if p.light >= 0 {
			for k := range d {
				d[k] = capByte(float64(p.c[k]) * p.light * o.DiffuseIntensity * o.DiffuseColor[k])
			}
		}
	}

	if o.Hillshade && c.Tex.Topo != nil {
		c.hillshade(p, fc, &d)
	}

	p.cloud = 0
	if c.Tex.Clouds != nil {
		p.cloud = c.Tex.Clouds.Gray(c.mapIndex(p))
	}

	p.albedo = 1.0
	if o.Albedo {
		a := (1.0 - o.AlbedoIntensity) + o.AlbedoIntensity*p.gray
		if p.water {
			a = WaterAlbedo
		}
		if c.Tex.Clouds != nil {
			a += p.cloud
		}
		p.albedo = clamp(a, 0, 1)
		for k := range d {
			d[k] = capByte(float64(d[k]) * p.albedo)
		}
	}

	for k := range p.c {
		p.c[k] = capByte(float64(int(float64(p.c[k])*emission) + int(d[k])))
	}
}

// hillshade adds relief shading from the elevation raster into the diffuse
// term.
func (c *Compositor) hillshade(p *pixel, fc *FrameContext, d *[3]uint8) {
	t := c.Tex.Topo
	at := func(i int) float64 { return t.V[i] }
	slope, aspect := topoSlope(at, t.W, t.H, p.tx, p.ty, c.Opts.HillshadeScale, false)
	s := math.Max(shade(slope, aspect, p.azi, p.ele, fc), 0)
	if p.light > HillshadeLightCutoff {
		s = c.Opts.HillshadeIntensity * p.light * s
	} else {
		// faint ambient relief on the night side
		s = c.Opts.HillshadeIntensity * s * 0.1
	}
	for k := range d {
		d[k] = capByte(float64(int(float64(p.c[k])*s) + int(d[k])))
	}
}

// grayAt is the map brightness in 0..255 at a flat index clamped to the
// raster.
func (c *Compositor) grayAt(idx int) float64 {
	m := c.Tex.Map
	return m.Gray(clampInt(idx, 0, m.W*m.H-1)) * 255.0
}

// specularGradient modulates the highlight by the map's backward second
// order differences along x and y, limited to [0.8, 1.2].
func (c *Compositor) specularGradient(p *pixel) float64 {
	w := c.Tex.Map.W
	gi := c.Opts.GradientIntensity
	base := p.ty*w + p.tx
	g := c.grayAt(base)
	gx := 1.0 + gi*(0.5*c.grayAt(base-2)-2.0*c.grayAt(base-1)+1.5*g)
	gy := 1.0 + gi*(0.5*c.grayAt(base+2*w)-2.0*c.grayAt(base+w)+1.5*g)
	return clamp(0.5*(gx+gy), 0.8, 1.2)
}

func (c *Compositor) specular(p *pixel) {
	o := &c.Opts
	if !o.Specular || p.light <= 0 {
		return
	}
	sp := math.Pow(p.light, o.SpecularPower)
	col := o.SpecularColor
	if p.water {
		sp = sp * sp * (o.SpecularIntensity * 2)
		col = o.SpecularOceanColor
	} else {
		grad := 1.0
		if o.Gradient {
			grad = c.specularGradient(p)
		}
		sp *= o.SpecularIntensity * grad * p.albedo
	}
	for k := range p.c {
		p.c[k] = capByte(float64(p.c[k]) + col[k]*sp*255.9999)
	}
}

// night blends in city lights on the dark side, keeping them yellowish.
func (c *Compositor) night(p *pixel) {
	nm := c.Tex.Night
	if nm == nil {
		return
	}
	b := clamp(1.0-p.light, 0, 1)
	if b < NightThreshold {
		b = 0
	} else {
		b = math.Min((b-NightThreshold)/NightRamp, 1.0)
	}
	r, g, bl := nm.RGB(c.mapIndex(p))
	p.c[ChR] = capByte(float64(p.c[ChR])*(1.0-b) + b*float64(r))
	p.c[ChG] = capByte(float64(p.c[ChG])*(1.0-b) + b*float64(g))
	p.c[ChB] = capByte(float64(p.c[ChB])*(1.0-b*NightBlueFactor) + NightBlueFactor*b*float64(bl))
}
