package shakemovie

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	billy "gopkg.in/src-d/go-billy.v4"
)

// Sample is one amplitude resolved to a grid cell.
type Sample struct {
	X, Y int
	V    float32
}

// Cell is a resolved grid position for a sample index.
type Cell struct {
	X, Y int
}

// CoordMap caches the sample index to grid cell mapping, computed once from
// the coordinates file.
type CoordMap struct {
	W, H       int
	Cells      []Cell
	OutOfRange int
}

// readFloat32s reads exactly n little-endian float32 values.
func readFloat32s(r io.Reader, n int) ([]float32, error) {
	buf := make([]byte, 4*n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return out, nil
}

// LoadCoordMap reads n (c0, c1) float32 pairs, flips them to x=-c1, y=c0 and
// maps them onto a w x h grid over lon -180..180, lat -90..90.
func LoadCoordMap(fs billy.Filesystem, path string, n, w, h int) (*CoordMap, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open coords %s: %w", path, err)
	}
	defer f.Close()
	raw, err := readFloat32s(f, 2*n)
	if err != nil {
		return nil, fmt.Errorf("read coords %s: %w", path, err)
	}
	m := &CoordMap{W: w, H: h, Cells: make([]Cell, n)}
	for i := 0; i < n; i++ {
		x := -raw[2*i+1]
		y := raw[2*i]
		m.Cells[i] = m.resolve(float64(x), float64(y))
	}
	DebugLog("Coords %s: %d samples, %d out of range", path, n, m.OutOfRange)
	return m, nil
}

// resolve converts lon/lat degrees to a cell with one-cell wrap correction;
// anything further out is reported and clamped.
func (m *CoordMap) resolve(x, y float64) Cell {
	posx := int((float64(m.W) - 0.0001) * (x + 180.0) / 360.0)
	posy := int((float64(m.H) - 0.0001) * (-y + 90.0) / 180.0)
	if posx == m.W {
		posx = 0
	} else if posx == -1 {
		posx = m.W - 1
	}
	if posy == m.H {
		posy = 0
	} else if posy == -1 {
		posy = m.H - 1
	}
	if posx < 0 || posx >= m.W || posy < 0 || posy >= m.H {
		fmt.Printf("[SPLAT] out of range: lon=%f lat=%f -> (%d, %d)\n", x, y, posx, posy)
		m.OutOfRange++
		posx = clampInt(posx, 0, m.W-1)
		posy = clampInt(posy, 0, m.H-1)
	}
	return Cell{X: posx, Y: posy}
}

// Samples pairs frame amplitudes with their cached cells.
func (m *CoordMap) Samples(values []float32) ([]Sample, error) {
	if len(values) != len(m.Cells) {
		return nil, fmt.Errorf("got %d amplitudes for %d coordinates", len(values), len(m.Cells))
	}
	out := make([]Sample, len(values))
	for i, v := range values {
		c := m.Cells[i]
		out[i] = Sample{X: c.X, Y: c.Y, V: v}
	}
	return out, nil
}
