package shakemovie

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// orientation rotates screen space (x right, y up, z towards the viewer)
// onto the globe for one camera position.
type orientation struct {
	t1, t3, t5, t8 float64
}

func newOrientation(latDeg, lonDeg float64) orientation {
	lat, lon := rotateToCenter(deg2rad(latDeg), deg2rad(lonDeg))
	return orientation{
		t1: math.Cos(lon),
		t3: math.Sin(lon),
		t5: math.Sin(lat),
		t8: math.Cos(lat),
	}
}

func (o orientation) rotate(p r3.Vec) r3.Vec {
	return r3.Vec{
		X: p.X*o.t1 - o.t3*p.Y*o.t5 + o.t3*p.Z*o.t8,
		Y: p.Y*o.t8 + p.Z*o.t5,
		Z: -p.X*o.t3 - o.t1*p.Y*o.t5 + o.t1*p.Z*o.t8,
	}
}

// rotateToCenter moves lat/lon (0,0) to the middle of the screen.
func rotateToCenter(lat, lon float64) (float64, float64) {
	return -lat, lon + math.Pi/2.0
}

// rotateToGeo undoes rotateToCenter.
func rotateToGeo(lat, lon float64) (float64, float64) {
	return -lat, math.Pi/2.0 - lon
}

func latLonToXYZ(lat, lon float64) r3.Vec {
	return r3.Vec{
		X: math.Cos(lon) * math.Cos(lat),
		Y: math.Sin(lat),
		Z: math.Sin(lon) * math.Cos(lat),
	}
}

func xyzToLatLon(v r3.Vec) (float64, float64) {
	return math.Asin(clamp(v.Y, -1, 1)), math.Atan2(v.Z, v.X)
}

// sunFromLatLon places the sun over a geographic position, in degrees.
func sunFromLatLon(latDeg, lonDeg float64) r3.Vec {
	lat, lon := rotateToGeo(deg2rad(latDeg), deg2rad(lonDeg))
	return latLonToXYZ(lat, lon)
}

// toAzimuthElevation converts a rotated unit position to globe angles with
// elevation in [-pi/2, pi/2] and azimuth wrapped once into [-pi, pi].
func toAzimuthElevation(v r3.Vec) (azi, ele float64) {
	ele = math.Asin(clamp(v.Y, -1, 1))
	depth := math.Sqrt(math.Max(1.0-v.Y*v.Y, 0))
	if math.Abs(depth) > 1e-6 {
		azi = math.Asin(clamp(v.X/depth, -1, 1))
		if v.Z < 0 {
			azi = math.Pi - azi
		}
	}
	ele = clamp(ele, -math.Pi/2.0, math.Pi/2.0)
	azi = wrapOnce(azi, -math.Pi, math.Pi, 2.0*math.Pi)
	return azi, ele
}

// texturePosition maps globe angles to a texel of a w x h raster.
func texturePosition(azi, ele float64, w, h int) (tx, ty int) {
	tx = int(math.Floor((azi/math.Pi + 0.5) * (float64(w)/2.0 - 1e-6)))
	for tx < 0 {
		tx += w
	}
	for tx >= w {
		tx -= w
	}
	ty = int(math.Floor((-ele/math.Pi + 0.5) * (float64(h) - 1e-6)))
	for ty < 0 {
		ty += h
	}
	for ty >= h {
		ty -= h
	}
	return tx, ty
}

// pixel is the evaluation state of one output pixel. It lives for a single
// Shade call.
type pixel struct {
	i, j         int
	px, py, pz   float64
	pxOrg, pyOrg float64
	height       float64
	rot          r3.Vec
	azi, ele     float64
	depth        float64
	tx, ty       int
	idxW         int
	haveIdxW     bool
	water        bool
	contour      bool
	gray         float64
	light        float64
	cloud        float64
	albedo       float64
	c            [3]uint8
}

// project places pixel (i, j) relative to the globe; pz holds the squared
// radius until setup turns it into the hemisphere height.
func (c *Compositor) project(i, j int) pixel {
	o := &c.Opts
	r := float64(o.Radius)
	p := pixel{i: i, j: j, c: o.Background, albedo: 1.0}
	p.px = (float64(i) - o.CX) / r
	p.py = ((float64(o.Height) - float64(j)) - o.CY) / r
	p.pz = p.px*p.px + p.py*p.py
	p.pxOrg, p.pyOrg = p.px, p.py
	return p
}

func (p *pixel) onSphere() bool {
	return p.py >= -1 && p.py <= 1 && p.px >= -1 && p.px <= 1 && p.pz <= 1
}

// setup lifts an on-sphere pixel onto the hemisphere and orients it.
func (p *pixel) setup(o orientation) {
	p.pz = math.Sqrt(1.0 - p.pz)
	p.height = p.pz
	p.rot = o.rotate(r3.Vec{X: p.px, Y: p.py, Z: p.pz})
	p.azi, p.ele = toAzimuthElevation(p.rot)
	p.depth = math.Sqrt(math.Max(1.0-p.rot.Y*p.rot.Y, 0))
}

// reorient recomputes the globe angles and texel from a displaced screen
// position.
func (p *pixel) reorient(o orientation, x, y float64, w, h int) {
	z := math.Sqrt(1.0 - math.Min(x*x+y*y, 1.0))
	rot := o.rotate(r3.Vec{X: x, Y: y, Z: z})
	p.rot = r3.Vec{X: clamp(rot.X, -1, 1), Y: clamp(rot.Y, -1, 1), Z: clamp(rot.Z, -1, 1)}
	p.azi, p.ele = toAzimuthElevation(p.rot)
	p.depth = math.Sqrt(1.0 - p.rot.Y*p.rot.Y)
	p.tx, p.ty = texturePosition(p.azi, p.ele, w, h)
}

func (p *pixel) normal() r3.Vec { return r3.Vec{X: p.px, Y: p.py, Z: p.pz} }
