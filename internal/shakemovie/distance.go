package shakemovie

import (
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// DistanceGrid holds the great-circle distance, in whole degrees, from the
// source to every grid cell.
type DistanceGrid struct {
	W, H int
	Deg  []uint16
}

// NewDistanceGrid evaluates the distance once for every cell. Cell longitudes
// run from 2*pi at x=0 down to 0 at x=W-1, latitudes from +pi/2 at the top row.
func NewDistanceGrid(w, h int, srcLat, srcLon float64) *DistanceGrid {
	d := &DistanceGrid{W: w, H: h, Deg: make([]uint16, w*h)}
	src := s2.LatLngFromDegrees(srcLat, srcLon+180.0)
	wd, hd := float64(w-1), float64(h-1)
	if wd <= 0 {
		wd = 1
	}
	if hd <= 0 {
		hd = 1
	}
	idx := 0
	for y := 0; y < h; y++ {
		lat := s1.Angle((0.5 - float64(y)/hd) * math.Pi)
		for x := 0; x < w; x++ {
			lon := s1.Angle((1.0 - float64(x)/wd) * 2.0 * math.Pi)
			cell := s2.LatLng{Lat: lat, Lng: lon}
			d.Deg[idx] = uint16(src.Distance(cell).Degrees())
			idx++
		}
	}
	DebugLog("Distance grid %dx%d from (%f, %f)", w, h, srcLat, srcLon)
	return d
}

func (d *DistanceGrid) At(i int) float64 { return float64(d.Deg[i]) }
