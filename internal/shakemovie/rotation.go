package shakemovie

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Rotation types.
const (
	RotateNone = iota
	RotateConstant
	RotateCosine
	RotateRamp
)

// Camera is the view center in degrees.
type Camera struct {
	Lat, Lon float64
}

// GlobeRotation moves the camera between output frames. Speed is degrees per
// output frame, Frames the number of output frames in the run.
type GlobeRotation struct {
	Type     int
	Speed    float64
	Frames   int
	LatOnly  bool
	LatStart float64
	LonStart float64
}

// increment is the rotation applied after output frame n (0-based).
func (g *GlobeRotation) increment(n int) float64 {
	switch g.Type {
	case RotateConstant:
		return g.Speed
	case RotateCosine:
		if g.Frames <= 1 {
			return 0
		}
		x := float64(n+1)/float64(g.Frames)*2.0*math.Pi - math.Pi
		return 0.5 * (math.Cos(x) + 1.0) * g.Speed * 2.0
	case RotateRamp:
		ramp := int(0.1 * float64(g.Frames))
		if ramp == 0 {
			return g.Speed
		}
		speed := float64(g.Frames) * g.Speed / float64(g.Frames-ramp)
		switch {
		case n < ramp:
			return float64(n) / float64(ramp) * speed
		case n > g.Frames-ramp:
			return float64(g.Frames-n) / float64(ramp) * speed
		}
		return speed
	}
	return 0
}

// Step advances cam after output frame n. Views close to a pole also swing
// in latitude.
func (g *GlobeRotation) Step(cam *Camera, n int) {
	if g.Type == RotateNone {
		return
	}
	rot := g.increment(n)
	rotateLon := !g.LatOnly
	rotateLat := g.LatOnly || math.Abs(g.LatStart) > 70.0
	if rotateLon {
		cam.Lon = wrapAngle(cam.Lon + rot)
	}
	if !rotateLat {
		return
	}
	if rotateLon {
		a := math.Abs(wrapAngle(cam.Lon-g.LonStart) / 180.0)
		cam.Lat = g.LatStart * (1.0 - a)
		return
	}
	cam.Lat = wrapAngle(cam.Lat + rot)
}

// wrapAngle folds degrees into [-180, 180].
func wrapAngle(a float64) float64 {
	for a < -180.0 {
		a += 360.0
	}
	for a > 180.0 {
		a -= 360.0
	}
	return a
}

// rotateSun turns the sun about the screen's vertical axis by a radians.
func rotateSun(sun r3.Vec, a float64) r3.Vec {
	c, s := math.Cos(a), math.Sin(a)
	return r3.Vec{
		X: c*sun.X + s*sun.Z,
		Y: sun.Y,
		Z: -s*sun.X + c*sun.Z,
	}
}
