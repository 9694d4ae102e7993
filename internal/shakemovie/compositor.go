package shakemovie

import (
	"fmt"
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	opensimplex "github.com/ojrac/opensimplex-go"
	"gonum.org/v1/gonum/spatial/r3"
)

// CompositorOptions are the per-run shading switches and parameters.
type CompositorOptions struct {
	Width, Height int
	Radius        int
	CX, CY        float64

	Planet     Planet
	Graymap    bool
	Ocean      bool
	OceanColor [3]uint8
	Background [3]uint8

	Lines       bool
	LineSpacing float64

	Elevation          bool
	ElevationIntensity float64

	Diffuse          bool
	DiffuseIntensity float64
	DiffuseColor     [3]float64
	Emission         float64

	Hillshade          bool
	HillshadeIntensity float64
	HillshadeScale     float64

	Albedo          bool
	AlbedoIntensity float64

	Specular          bool
	SpecularIntensity float64
	SpecularPower     float64
	// 0..1 tints of the highlight over land and water.
	SpecularColor      [3]float64
	SpecularOceanColor [3]float64
	Gradient          bool
	GradientIntensity float64

	Waves        WaveOptions
	UseSetBounds bool
}

// WaveField is a finished grid with the bounds used to normalize it.
type WaveField struct {
	Grid     *Grid
	Min, Max float64
}

// normalized maps the cell to [-1,1] by the field bounds; cells no sample
// ever reached are 0.
func (w *WaveField) normalized(idx int, clampBounds bool) float64 {
	if w.Grid.Count[idx] == 0 {
		return 0
	}
	d := w.Grid.Value(idx)
	if clampBounds {
		d = clamp(d, w.Min, w.Max)
	}
	if span := w.Max - w.Min; span != 0 {
		return (d-w.Min)/span*2.0 - 1.0
	}
	return d - w.Min
}

// FrameContext is everything that changes between output frames.
type FrameContext struct {
	Frame    int
	Lat, Lon float64
	Sun      r3.Vec
	Waves    *WaveField
	// Next is the following input frame when interlacing, Phase its weight.
	Next  *WaveField
	Phase float64

	orient orientation
	sun    s2.LatLng
}

func NewFrameContext(frame int, lat, lon float64, sun r3.Vec, waves, next *WaveField, phase float64) *FrameContext {
	fc := &FrameContext{
		Frame: frame, Lat: lat, Lon: lon, Sun: sun,
		Waves: waves, Next: next, Phase: phase,
		orient: newOrientation(lat, lon),
	}
	slat, slon := xyzToLatLon(sun)
	slat, slon = rotateToGeo(slat, slon)
	fc.sun = s2.LatLng{Lat: s1.Angle(slat), Lng: s1.Angle(slon + deg2rad(lon))}
	return fc
}

// Bleed brightens the left and lower neighbors of a city light seen through
// clouds: c = c*Shadow + Add.
type Bleed struct {
	Shadow float64
	Add    [3]float64
}

func (b *Bleed) apply(px []uint8) {
	for k := 0; k < 3; k++ {
		px[k] = capByte(float64(px[k])*b.Shadow + b.Add[k])
	}
}

// Shaded is the result of one pixel evaluation.
type Shaded struct {
	RGB     [3]uint8
	Wave    float64
	HasWave bool
	Bleed   *Bleed
}

// Compositor shades pixels of an orthographic globe view.
type Compositor struct {
	Opts  CompositorOptions
	Tex   *Textures
	Glow  *Backglow
	noise opensimplex.Noise
}

func NewCompositor(opts CompositorOptions, tex *Textures, glow *Backglow) (*Compositor, error) {
	if tex == nil || tex.Map == nil {
		return nil, fmt.Errorf("compositor needs a surface map")
	}
	if opts.Radius <= 0 || opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("bad image %dx%d radius %d", opts.Width, opts.Height, opts.Radius)
	}
	return &Compositor{Opts: opts, Tex: tex, Glow: glow, noise: opensimplex.New(CoronaSeed)}, nil
}

// Shade evaluates pixel (i, j); row 0 is the bottom of the emitted image.
func (c *Compositor) Shade(i, j int, fc *FrameContext) (Shaded, error) {
	var out Shaded
	p := c.project(i, j)
	if p.onSphere() {
		p.setup(fc.orient)
		c.surface(&p, fc)
		c.lines(&p)
		c.diffuse(&p, fc)
		c.specular(&p)
		c.night(&p)
		if err := c.waves(&p, fc, &out); err != nil {
			return out, fmt.Errorf("pixel (%d, %d): %w", i, j, err)
		}
		c.clouds(&p, fc, &out)
		if c.Opts.Waves.Contours && p.contour {
			p.c = [3]uint8{255, 255, 255}
		}
	}
	c.backglow(&p)
	out.RGB = p.c
	return out, nil
}

func (c *Compositor) mapIndex(p *pixel) int { return p.ty*c.Tex.Map.W + p.tx }

// surface samples the map, applying the elevation and wave distortions on
// the way, and detects ocean pixels.
func (c *Compositor) surface(p *pixel, fc *FrameContext) {
	o := &c.Opts
	m := c.Tex.Map
	if p.depth != 0 {
		p.tx, p.ty = texturePosition(p.azi, p.ele, m.W, m.H)
		if o.Elevation && c.Tex.Topo != nil {
			c.elevationDistortion(p, fc)
		}
		if o.Waves.Enabled && o.Waves.Enhanced && fc.Waves != nil {
			c.waveDistortion(p, fc)
		}
	} else {
		p.tx, p.ty = 0, 0
		if p.ele < 0 {
			p.ty = m.H - 1
		}
	}

	idx := c.mapIndex(p)
	if o.Graymap || o.Albedo {
		p.gray = clamp(m.Gray(idx), 0, 1)
	}
	if o.Graymap {
		g := uint8(p.gray * 255.0)
		p.c = [3]uint8{g, g, g}
	} else {
		r, g, b := m.RGB(idx)
		p.c = [3]uint8{r, g, b}
	}
	if o.Ocean && p.c == o.OceanColor {
		n := c.noise.Eval3(float64(p.i)*0.5, float64(p.j)*0.5, float64(fc.Frame)*0.1)
		jitter := clampInt(int((n+1.0)/2.0*OceanJitter), 0, OceanJitter-1)
		for k := range p.c {
			p.c[k] = capByte(float64(int(p.c[k]) + jitter))
		}
		p.water = true
	}
}

// elevationDistortion pushes the pixel radially by the local relief and
// re-derives the texel.
func (c *Compositor) elevationDistortion(p *pixel, fc *FrameContext) {
	t := c.Tex.Topo
	n := t.W * t.H
	half := (ElevationBox - 1) / 2
	sum := 0.0
	for jj := 0; jj < ElevationBox; jj++ {
		for ii := 0; ii < ElevationBox; ii++ {
			idx := (p.ty+jj-half)*t.W + (p.tx + ii - half)
			sum += t.V[clampInt(idx, 0, n-1)]
		}
	}
	topo := clamp(sum/float64(ElevationBox*ElevationBox), 0, 1)
	ele := 2*2.0*topo - 1.0

	s := 1.0 - c.Opts.ElevationIntensity*ele
	p.px *= s
	p.py *= s
	p.pz = math.Sqrt(1.0 - math.Min(p.px*p.px+p.py*p.py, 1.0))
	p.height = p.pz
	p.px = clamp(p.px, -1, 1)
	p.py = clamp(p.py, -1, 1)
	p.reorient(fc.orient, p.px, p.py, c.Tex.Map.W, c.Tex.Map.H)
}

// waveIndex maps a surface texel to its wave grid cell; the grid runs in the
// opposite direction on both axes.
func (c *Compositor) waveIndex(g *Grid, tx, ty int) int {
	m := c.Tex.Map
	x := tx * g.W / m.W
	y := ty * g.H / m.H
	x = clampInt(g.W-x-1, 0, g.W-1)
	y = clampInt(g.H-y-1, 0, g.H-1)
	return x + y*g.W
}

// waveDistortion displaces the lighting height and the texture position by
// the wave amplitude under the pixel.
func (c *Compositor) waveDistortion(p *pixel, fc *FrameContext) {
	p.idxW = c.waveIndex(fc.Waves.Grid, p.tx, p.ty)
	p.haveIdxW = true
	d := fc.Waves.normalized(p.idxW, c.Opts.UseSetBounds)
	if fc.Next != nil {
		d2 := fc.Next.normalized(p.idxW, c.Opts.UseSetBounds)
		d = d*(1.0-fc.Phase) + d2*fc.Phase
	}
	if c.Opts.Waves.Contours {
		for _, lvl := range []float64{0.25, 0.5, 0.75} {
			if math.Abs(d-lvl) <= ContourTolerance || math.Abs(d+lvl) <= ContourTolerance {
				p.contour = true
			}
		}
	}
	d *= WaveEnhanceFactor
	p.pz = clamp(p.pz+DistortionLight*d, 0, 1)
	p.reorient(fc.orient, p.px+DistortionMap*d, p.py+DistortionMap*d, c.Tex.Map.W, c.Tex.Map.H)
}

// lines overlays the latitude/longitude graticule.
func (c *Compositor) lines(p *pixel) {
	if !c.Opts.Lines {
		return
	}
	spacing := c.Opts.LineSpacing
	step := max(int(2.0*spacing), 1)
	az, el := rad2deg(p.azi), rad2deg(p.ele)
	on := int(2.0*az)%step == 0 || int(2.0*el)%step == 0
	if s := int(spacing); s > 0 && 90%s == 0 {
		if math.Abs(az+90.0) < 0.49 || math.Abs(az-90.0) < 0.49 {
			on = true
		}
	}
	if on {
		p.c = [3]uint8{LineColor, LineColor, LineColor}
	}
}

// shade is the hillshade term for a surface patch of given slope and aspect
// lit by the frame's sun.
func shade(slope, aspect, azi, ele float64, fc *FrameContext) float64 {
	plat := clamp(-ele, -math.Pi/2.0, math.Pi/2.0)
	plon := wrapOnce(azi-math.Pi/2.0, -math.Pi, math.Pi, 2.0*math.Pi)
	slat, slon := float64(fc.sun.Lat), float64(fc.sun.Lng)

	az := math.Atan2(
		math.Sin(slon-plon)*math.Cos(slat),
		math.Cos(plat)*math.Sin(slat)-math.Sin(plat)*math.Cos(slat)*math.Cos(slon-plon),
	)
	az = wrapOnce(math.Pi/2.0-az, -math.Pi, math.Pi, 2.0*math.Pi)

	pos := s2.LatLng{Lat: s1.Angle(plat), Lng: s1.Angle(plon)}
	altitude := float64(pos.Distance(fc.sun)) + math.Pi/2.0
	return math.Sin(altitude)*math.Sin(slope) +
		math.Cos(altitude)*math.Cos(slope)*math.Cos((az-math.Pi/2.0)-aspect)
}

// topoSlope estimates slope and aspect from a 3x3 window of a height field
// given as a flat sampler. With average every window cell is itself a 3x3
// mean.
func topoSlope(at func(int) float64, w, h, tx, ty int, scale float64, average bool) (slope, aspect float64) {
	n := w * h
	sample := func(x, y int) float64 { return at(clampInt(y*w+x, 0, n-1)) }
	var win [9]float64
	for jw := 0; jw < 3; jw++ {
		for iw := 0; iw < 3; iw++ {
			x, y := tx+iw-1, ty+jw-1
			if !average {
				win[jw*3+iw] = sample(x, y)
				continue
			}
			s := 0.0
			for jj := 0; jj < 3; jj++ {
				for ii := 0; ii < 3; ii++ {
					s += sample(x+ii-1, y+jj-1)
				}
			}
			win[jw*3+iw] = s / 9.0
		}
	}
	xres := 2.0 * math.Pi / float64(w)
	yres := math.Pi / float64(h)
	hx := ((win[0]+2.0*win[3]+win[6])*0.25 - (win[2]+2.0*win[5]+win[8])*0.25) * 0.5 / xres
	hy := ((win[6]+2.0*win[7]+win[8])*0.25 - (win[0]+2.0*win[1]+win[2])*0.25) * 0.5 / yres
	slope = math.Pi/2.0 - math.Atan(scale*math.Sqrt(hx*hx+hy*hy))
	aspect = math.Atan2(hx, hy)
	return slope, aspect
}
