package shakemovie

import (
	"fmt"
	"path"
	"path/filepath"
	"time"

	billy "gopkg.in/src-d/go-billy.v4"
	"gopkg.in/src-d/go-billy.v4/osfs"
)

// Run renders the movie described by the config at cfgPath. Paths inside the
// config are relative to its directory.
func Run(cfgPath string) error {
	fs := osfs.New(filepath.Dir(cfgPath))
	cfg, err := loadConfig(fs, filepath.Base(cfgPath))
	if err != nil {
		return err
	}
	m, err := NewMovie(fs, cfg)
	if err != nil {
		return err
	}
	return m.Render()
}

// Movie owns everything needed to turn input frames into output images.
type Movie struct {
	FS  billy.Filesystem
	Cfg *Config

	Tex    *Textures
	Coords *CoordMap
	Source *FrameSource
	Comp   *Compositor
	Out    *FrameWriter

	cur, next *Resampler
	rot       GlobeRotation
	interlace int
}

// NewMovie loads textures and coordinates and builds the pipeline.
func NewMovie(fs billy.Filesystem, cfg *Config) (*Movie, error) {
	tex, err := LoadTextures(fs, cfg.Textures)
	if err != nil {
		return nil, err
	}
	gw, gh := cfg.Grid.Width, cfg.Grid.Height
	if gw <= 0 || gh <= 0 {
		gw, gh = tex.Map.W/cfg.Grid.TextureFactor, tex.Map.H/cfg.Grid.TextureFactor
	}
	if gw <= 0 || gh <= 0 {
		return nil, fmt.Errorf("wave grid %dx%d from map %dx%d: %w", gw, gh, tex.Map.W, tex.Map.H, ErrDimensionMismatch)
	}
	coords, err := LoadCoordMap(fs, cfg.Source.Coords, cfg.Source.N, gw, gh)
	if err != nil {
		return nil, err
	}

	ropts, kernels, err := cfg.Resample.Build()
	if err != nil {
		return nil, err
	}
	var dist *DistanceGrid
	if ropts.Cutoff {
		dist = NewDistanceGrid(gw, gh, cfg.Source.Lat, cfg.Source.Lon)
	}

	opts, err := cfg.compositorOptions()
	if err != nil {
		return nil, err
	}
	glow := cfg.Backglow.Build(opts.Radius, opts.Background)
	comp, err := NewCompositor(opts, tex, glow)
	if err != nil {
		return nil, err
	}
	DebugLog("Planet %s, radius %.1f km, wave grid %dx%d", opts.Planet, opts.Planet.RadiusKm(), gw, gh)

	if err := fs.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return nil, err
	}
	out := &FrameWriter{
		FS:        fs,
		Dir:       cfg.Output.Dir,
		Format:    cfg.Output.Format,
		Half:      cfg.Output.Half,
		Time:      cfg.Output.Time,
		StartTime: cfg.Frames.StartTime,
		StepTime:  cfg.Frames.StepTime,
	}
	if GIF {
		out.GIF = NewGIFCollector(cfg.Output.GIFDelay)
	}

	m := &Movie{
		FS:        fs,
		Cfg:       cfg,
		Tex:       tex,
		Coords:    coords,
		Source:    &FrameSource{FS: fs, Template: cfg.Source.Data, N: cfg.Source.N},
		Comp:      comp,
		Out:       out,
		cur:       NewResampler(NewGrid(gw, gh), kernels, dist, ropts),
		next:      NewResampler(NewGrid(gw, gh), kernels, dist, ropts),
		interlace: cfg.Frames.Interlace,
	}
	rotating := cfg.Camera.Rotate != RotateNone || cfg.Sun.Rotate
	if !rotating || m.interlace <= 1 {
		m.interlace = 1
	}
	m.rot = GlobeRotation{
		Type:     cfg.Camera.Rotate,
		Speed:    cfg.Camera.RotateSpeed / float64(m.interlace),
		Frames:   m.outputFrames(),
		LatOnly:  cfg.Camera.LatOnly,
		LatStart: cfg.Camera.Lat,
		LonStart: cfg.Camera.Lon,
	}
	return m, nil
}

func (m *Movie) inputFrames() int {
	fr := m.Cfg.Frames
	if fr.Step == 0 {
		return 1
	}
	return (fr.Last-fr.First)/fr.Step + 1
}

func (m *Movie) outputFrames() int { return m.inputFrames() * m.interlace }

// load resamples one input frame into r's grid.
func (m *Movie) load(frame int, r *Resampler) (*WaveField, error) {
	vals, err := m.Source.Read(frame)
	if err != nil {
		return nil, err
	}
	samples, err := m.Coords.Samples(vals)
	if err != nil {
		return nil, fmt.Errorf("frame %d: %w", frame, err)
	}
	st, err := r.Process(frame, samples)
	if err != nil {
		return nil, fmt.Errorf("frame %d: %w", frame, err)
	}
	wf := &WaveField{Grid: r.Grid, Min: st.Min, Max: st.Max}
	if Debug {
		lo, hi := r.Grid.MinMax()
		DebugLog("Frame %d: %d samples, grid %f..%f", frame, st.Samples, lo, hi)
	}
	if err := m.dump(frame, wf); err != nil {
		return nil, err
	}
	return wf, nil
}

func (m *Movie) dump(frame int, wf *WaveField) error {
	base := path.Join(m.Cfg.Output.Dir, fmt.Sprintf("grid.%06d", frame))
	if RAW {
		if err := SaveRawGrid(m.FS, base+".raw", wf.Grid); err != nil {
			return err
		}
	}
	if EXR {
		if err := SaveEXRGrid(m.FS, base+".exr", wf); err != nil {
			return err
		}
	}
	return nil
}

// Render walks the input frames, rendering interlace output frames for each.
func (m *Movie) Render() error {
	cfg := m.Cfg
	fr := cfg.Frames
	step := max(fr.Step, 1)
	cam := Camera{Lat: cfg.Camera.Lat, Lon: cfg.Camera.Lon}
	sun := cfg.Sun.Build()
	sunSpeed := cfg.Sun.Speed / float64(m.interlace)
	im := NewImage(cfg.Camera.Width, cfg.Camera.Height)

	start := time.Now()
	cur, err := m.load(fr.First, m.cur)
	if err != nil {
		return err
	}
	n := 0
	for f := fr.First; f <= fr.Last; f += step {
		next := cur
		if m.interlace > 1 && f+step <= fr.Last {
			if next, err = m.load(f+step, m.next); err != nil {
				return err
			}
		}
		for k := 1; k <= m.interlace; k++ {
			phase := float64(k-1) / float64(m.interlace)
			var nf *WaveField
			if m.interlace > 1 {
				nf = next
			}
			fc := NewFrameContext(f, cam.Lat, cam.Lon, sun, cur, nf, phase)
			fmt.Printf("[FRAME] %06d (%d/%d) lat=%.2f lon=%.2f\n", f, k, m.interlace, cam.Lat, cam.Lon)
			stats, err := m.Comp.Render(im, fc)
			if err != nil {
				return fmt.Errorf("frame %d: %w", f, err)
			}
			if stats.N > 0 {
				fmt.Printf("[WAVES] min/max %f %f\n", stats.Min, stats.Max)
			}
			if err := m.Out.Write(n, f, im); err != nil {
				return err
			}
			m.rot.Step(&cam, n)
			if cfg.Sun.Rotate {
				sun = rotateSun(sun, sunSpeed)
			}
			n++
		}
		if f+step > fr.Last {
			break
		}
		if m.interlace > 1 {
			// next now holds f+step; reuse cur's grid for the one after.
			m.cur, m.next = m.next, m.cur
			cur = next
			continue
		}
		if cur, err = m.load(f+step, m.cur); err != nil {
			return err
		}
	}
	DebugLog("Rendered %d frames in %s", n, time.Since(start))

	if m.Out.GIF != nil && m.Out.GIF.Len() > 0 {
		name := path.Join(cfg.Output.Dir, cfg.Output.GIFOut)
		if err := m.Out.GIF.Save(m.FS, name); err != nil {
			return err
		}
		DebugLog("Saved animated GIF: %s", name)
	}
	return nil
}
