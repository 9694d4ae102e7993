package shakemovie

import (
	"fmt"
	"path"
	"strings"

	"go.uber.org/multierr"
	"gonum.org/v1/gonum/floats"
	billy "gopkg.in/src-d/go-billy.v4"
)

// TopoMap is an elevation raster normalized to [0,1].
type TopoMap struct {
	W, H int
	V    []float64
}

// Textures holds every raster the compositor samples. Only Map is required.
type Textures struct {
	Map    *Raster
	Topo   *TopoMap
	Clouds *Raster
	Night  *Raster
}

func LoadRaster(fs billy.Filesystem, name string) (r *Raster, err error) {
	f, err := fs.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer func() { err = multierr.Append(err, f.Close()) }()
	r, err = decodeTGA(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	DebugLog("Raster %s: %dx%d", name, r.W, r.H)
	return r, nil
}

// LoadTopo reads an elevation raster, .tga or 16-bit .ppm/.pgm, smooths it
// with its four neighbors and normalizes it by the observed range. The size
// must match the surface map.
func LoadTopo(fs billy.Filesystem, name string, w, h int) (*TopoMap, error) {
	var (
		raw []float64
		scl float64
	)
	switch strings.ToLower(path.Ext(name)) {
	case ".tga":
		r, err := LoadRaster(fs, name)
		if err != nil {
			return nil, err
		}
		if r.W != w || r.H != h {
			return nil, fmt.Errorf("topo %s is %dx%d, map is %dx%d: %w", name, r.W, r.H, w, h, ErrDimensionMismatch)
		}
		raw = make([]float64, w*h)
		for i := range raw {
			raw[i] = r.Gray(i) * 255.0
		}
		scl = 255.0
	case ".ppm", ".pgm":
		f, err := fs.Open(name)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		tw, th, vals, err := decodePGM16(f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if tw != w || th != h {
			return nil, fmt.Errorf("topo %s is %dx%d, map is %dx%d: %w", name, tw, th, w, h, ErrDimensionMismatch)
		}
		raw = make([]float64, w*h)
		for i, v := range vals {
			raw[i] = float64(v)
		}
		scl = 65535.0
	default:
		return nil, fmt.Errorf("topo %s: unknown file type", name)
	}

	t := &TopoMap{W: w, H: h, V: smoothTopo(raw, w, h)}
	for i := range t.V {
		t.V[i] /= scl
	}
	lo, hi := floats.Min(t.V), floats.Max(t.V)
	span := hi - lo
	if span < 1e-10 {
		span = 1.0
	}
	for i := range t.V {
		t.V[i] = (t.V[i] - lo) / span
	}
	DebugLog("Topo %s: min/max = %f / %f", name, lo, hi)
	return t, nil
}

// smoothTopo averages left/right and up/down neighbors; indices falling off
// the flat buffer fall back to the center sample.
func smoothTopo(raw []float64, w, h int) []float64 {
	n := w * h
	at := func(i, c int) float64 {
		if i < 0 || i > n-1 {
			return raw[c]
		}
		return raw[i]
	}
	out := make([]float64, n)
	for c := range out {
		t1, t2 := at(c-1, c), at(c+1, c)
		t3, t4 := at(c-w, c), at(c+w, c)
		out[c] = ((t2+t1)/2.0 + (t3+t4)/2.0) / 2.0
	}
	return out
}

// LoadTextures loads the surface map and the optional rasters, checking every
// size against the map.
func LoadTextures(fs billy.Filesystem, cfg TexturesCfg) (*Textures, error) {
	m, err := LoadRaster(fs, cfg.Map)
	if err != nil {
		return nil, err
	}
	tx := &Textures{Map: m}
	optional := []struct {
		name string
		dst  **Raster
	}{{cfg.Clouds, &tx.Clouds}, {cfg.Night, &tx.Night}}
	for _, o := range optional {
		if o.name == "" {
			continue
		}
		r, err := LoadRaster(fs, o.name)
		if err != nil {
			return nil, err
		}
		if !r.sameSize(m) {
			return nil, fmt.Errorf("%s is %dx%d, map is %dx%d: %w", o.name, r.W, r.H, m.W, m.H, ErrDimensionMismatch)
		}
		*o.dst = r
	}
	if cfg.Topo != "" {
		if tx.Topo, err = LoadTopo(fs, cfg.Topo, m.W, m.H); err != nil {
			return nil, err
		}
	}
	return tx, nil
}
