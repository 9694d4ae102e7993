package shakemovie

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"go.uber.org/multierr"
	"gonum.org/v1/gonum/spatial/r3"
	billy "gopkg.in/src-d/go-billy.v4"
)

type FramesCfg struct {
	First int `json:"first"`
	Last  int `json:"last"`
	Step  int `json:"step"`
	// Interlace renders this many output frames per input frame.
	Interlace int     `json:"interlace,omitempty"`
	StartTime float64 `json:"startTime,omitempty"`
	StepTime  float64 `json:"stepTime,omitempty"`
}

type SourceCfg struct {
	Coords string `json:"coords"`
	Data   string `json:"data"`
	N      int    `json:"n"`
	// Epicenter, used by the noise cutoff.
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type GridCfg struct {
	// TextureFactor divides the surface map size to get the wave grid size
	// when Width/Height are not given.
	TextureFactor int `json:"textureFactor,omitempty"`
	Width         int `json:"width,omitempty"`
	Height        int `json:"height,omitempty"`
}

type ResampleCfg struct {
	// Kernel enables adaptive splat kernels; without it samples only hit
	// their own cell. A nil KernelRadius means the default, 0 is a 1x1 kernel.
	Kernel       bool `json:"kernel,omitempty"`
	KernelRadius *int `json:"kernelRadius,omitempty"`
	// Negative values disable the pass, zero means default.
	ExtraPasses int     `json:"extraPasses,omitempty"`
	HoleFill    int     `json:"holeFill,omitempty"`
	UseBounds   bool    `json:"useBounds,omitempty"`
	BoundMin    float64 `json:"boundMin,omitempty"`
	BoundMax    float64 `json:"boundMax,omitempty"`
	Symmetric   bool    `json:"symmetric,omitempty"`
	Cutoff      bool    `json:"cutoff,omitempty"`
	CutoffDeg   float64 `json:"cutoffDeg,omitempty"`
	CutoffStart int     `json:"cutoffStart,omitempty"`
	CutoffEnd   int     `json:"cutoffEnd,omitempty"`
}

type CameraCfg struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Width   int     `json:"width,omitempty"`
	Height  int     `json:"height,omitempty"`
	Radius  int     `json:"radius,omitempty"`
	CenterX float64 `json:"centerX,omitempty"`
	CenterY float64 `json:"centerY,omitempty"`
	// Rotate: 0 off, 1 constant, 2 cosine, 3 ramp.
	Rotate      int     `json:"rotate,omitempty"`
	RotateSpeed float64 `json:"rotateSpeed,omitempty"`
	LatOnly     bool    `json:"latOnly,omitempty"`
}

type SunCfg struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
	// Vector overrides lat/lon when non-zero.
	Vector [3]float64 `json:"vector,omitempty"`
	Rotate bool       `json:"rotate,omitempty"`
	Speed  float64    `json:"speed,omitempty"`
}

type TexturesCfg struct {
	Map        string `json:"map"`
	Topo       string `json:"topo,omitempty"`
	Clouds     string `json:"clouds,omitempty"`
	Night      string `json:"night,omitempty"`
	Planet     string `json:"planet,omitempty"`
	Graymap    bool   `json:"graymap,omitempty"`
	Ocean      bool   `json:"ocean,omitempty"`
	OceanColor string `json:"oceanColor,omitempty"`
}

type LightingCfg struct {
	Diffuse            bool       `json:"diffuse,omitempty"`
	DiffuseIntensity   float64    `json:"diffuseIntensity,omitempty"`
	DiffuseColor       [3]float64 `json:"diffuseColor,omitempty"`
	Emission           float64    `json:"emission,omitempty"`
	Specular           bool       `json:"specular,omitempty"`
	SpecularIntensity  float64    `json:"specularIntensity,omitempty"`
	SpecularPower      float64    `json:"specularPower,omitempty"`
	SpecularColor      [3]float64 `json:"specularColor,omitempty"`
	SpecularOceanColor [3]float64 `json:"specularOceanColor,omitempty"`
	Gradient           bool       `json:"gradient,omitempty"`
	GradientIntensity  float64    `json:"gradientIntensity,omitempty"`
	Hillshade          bool       `json:"hillshade,omitempty"`
	HillshadeIntensity float64    `json:"hillshadeIntensity,omitempty"`
	HillshadeScale     float64    `json:"hillshadeScale,omitempty"`
	Albedo             bool       `json:"albedo,omitempty"`
	AlbedoIntensity    float64    `json:"albedoIntensity,omitempty"`
	Elevation          bool       `json:"elevation,omitempty"`
	ElevationIntensity float64    `json:"elevationIntensity,omitempty"`
	Lines              bool       `json:"lines,omitempty"`
	LineSpacing        float64    `json:"lineSpacing,omitempty"`
}

type WavesCfg struct {
	Enabled     bool    `json:"enabled"`
	Palette     string  `json:"palette,omitempty"`
	Additive    bool    `json:"additive,omitempty"`
	MaxOpacity  float64 `json:"maxOpacity,omitempty"`
	Enhanced    bool    `json:"enhanced,omitempty"`
	Nonlinear   bool    `json:"nonlinear,omitempty"`
	Power       float64 `json:"power,omitempty"`
	FadeOnWater bool    `json:"fadeOnWater,omitempty"`
	Contours    bool    `json:"contours,omitempty"`
}

type BackglowCfg struct {
	Enabled   bool       `json:"enabled"`
	Corona    bool       `json:"corona,omitempty"`
	Falloff   float64    `json:"falloff,omitempty"`
	Intensity float64    `json:"intensity,omitempty"`
	Color     [3]float64 `json:"color,omitempty"` // 0..1
}

type OutputCfg struct {
	Dir        string `json:"dir,omitempty"`
	Format     string `json:"format,omitempty"`
	Half       bool   `json:"half,omitempty"`
	Time       bool   `json:"time,omitempty"`
	Background string `json:"background,omitempty"`
	GIFOut     string `json:"gifOut,omitempty"`
	GIFDelay   int    `json:"gifDelay,omitempty"`
}

type Config struct {
	Frames   FramesCfg   `json:"frames"`
	Source   SourceCfg   `json:"source"`
	Grid     GridCfg     `json:"grid"`
	Resample ResampleCfg `json:"resample"`
	Camera   CameraCfg   `json:"camera"`
	Sun      SunCfg      `json:"sun"`
	Textures TexturesCfg `json:"textures"`
	Lighting LightingCfg `json:"lighting"`
	Waves    WavesCfg    `json:"waves"`
	Backglow BackglowCfg `json:"backglow"`
	Output   OutputCfg   `json:"output"`
}

// Build returns the resampler options, or nil kernels for point mode.
func (rc ResampleCfg) Build() (ResampleOptions, *KernelTable, error) {
	opts := ResampleOptions{
		ExtraPasses:  max(rc.ExtraPasses, 0),
		HoleFill:     max(rc.HoleFill, 0),
		UseSetBounds: rc.UseBounds,
		BoundMin:     rc.BoundMin,
		BoundMax:     rc.BoundMax,
		Symmetric:    rc.Symmetric,
		Cutoff:       rc.Cutoff,
		CutoffDeg:    rc.CutoffDeg,
		CutoffStart:  rc.CutoffStart,
		CutoffEnd:    rc.CutoffEnd,
	}
	if rc.UseBounds && rc.BoundMin >= rc.BoundMax {
		return opts, nil, fmt.Errorf("bounds %f..%f are empty", rc.BoundMin, rc.BoundMax)
	}
	if rc.Cutoff && rc.CutoffEnd <= rc.CutoffStart {
		return opts, nil, fmt.Errorf("cutoff window %d..%d is empty", rc.CutoffStart, rc.CutoffEnd)
	}
	if !rc.Kernel {
		return opts, nil, nil
	}
	radius := KernelRadius
	if rc.KernelRadius != nil {
		radius = *rc.KernelRadius
	}
	kt, err := NewKernelTable(radius)
	if err != nil {
		return opts, nil, err
	}
	return opts, kt, nil
}

// Build returns the unit sun direction in screen space.
func (sc SunCfg) Build() r3.Vec {
	v := r3.Vec{X: sc.Vector[0], Y: sc.Vector[1], Z: sc.Vector[2]}
	if v != (r3.Vec{}) {
		return r3.Unit(v)
	}
	return sunFromLatLon(sc.Lat, sc.Lon)
}

func (wc WavesCfg) Build() (WaveOptions, error) {
	p, err := ParsePalette(wc.Palette)
	if err != nil {
		return WaveOptions{}, err
	}
	mode := Blend
	if wc.Additive {
		mode = Additive
	}
	if wc.MaxOpacity < 0 || wc.MaxOpacity > 1 {
		return WaveOptions{}, fmt.Errorf("maxOpacity %f outside [0,1]", wc.MaxOpacity)
	}
	return WaveOptions{
		Enabled:     wc.Enabled,
		Palette:     p,
		Mode:        mode,
		MaxOpacity:  wc.MaxOpacity,
		Enhanced:    wc.Enhanced,
		Nonlinear:   wc.Nonlinear,
		Power:       wc.Power,
		FadeOnWater: wc.FadeOnWater,
		Contours:    wc.Contours,
	}, nil
}

// Build sets up the glow for a globe of radius pixels.
func (bc BackglowCfg) Build(radius int, background [3]uint8) *Backglow {
	if !bc.Enabled {
		return nil
	}
	var col [3]float64
	for c := range col {
		col[c] = bc.Color[c] * 255.0
	}
	return NewBackglow(bc.Corona, bc.Falloff, bc.Intensity, col, background, radius)
}

func (cfg *Config) compositorOptions() (CompositorOptions, error) {
	planet, err := ParsePlanet(cfg.Textures.Planet)
	if err != nil {
		return CompositorOptions{}, err
	}
	ocean, err := parseColor(cfg.Textures.OceanColor, OceanColor)
	if err != nil {
		return CompositorOptions{}, err
	}
	bg, err := parseColor(cfg.Output.Background, BackgroundColor)
	if err != nil {
		return CompositorOptions{}, err
	}
	waves, err := cfg.Waves.Build()
	if err != nil {
		return CompositorOptions{}, err
	}
	l := cfg.Lighting
	return CompositorOptions{
		Width:              cfg.Camera.Width,
		Height:             cfg.Camera.Height,
		Radius:             cfg.Camera.Radius,
		CX:                 cfg.Camera.CenterX,
		CY:                 cfg.Camera.CenterY,
		Planet:             planet,
		Graymap:            cfg.Textures.Graymap,
		Ocean:              cfg.Textures.Ocean,
		OceanColor:         ocean,
		Background:         bg,
		Lines:              l.Lines,
		LineSpacing:        l.LineSpacing,
		Elevation:          l.Elevation,
		ElevationIntensity: l.ElevationIntensity,
		Diffuse:            l.Diffuse,
		DiffuseIntensity:   l.DiffuseIntensity,
		DiffuseColor:       l.DiffuseColor,
		Emission:           l.Emission,
		Hillshade:          l.Hillshade,
		HillshadeIntensity: l.HillshadeIntensity,
		HillshadeScale:     l.HillshadeScale,
		Albedo:             l.Albedo,
		AlbedoIntensity:    l.AlbedoIntensity,
		Specular:           l.Specular,
		SpecularIntensity:  l.SpecularIntensity,
		SpecularPower:      l.SpecularPower,
		SpecularColor:      l.SpecularColor,
		SpecularOceanColor: l.SpecularOceanColor,
		Gradient:           l.Gradient,
		GradientIntensity:  l.GradientIntensity,
		Waves:              waves,
		UseSetBounds:       cfg.Resample.UseBounds,
	}, nil
}

func defaultFloat(v *float64, def float64) {
	if *v <= 0 {
		*v = def
	}
}

func defaultInt(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}

func parseConfig(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadConfig reads name from fs, applies defaults and validates.
func loadConfig(fs billy.Filesystem, name string) (cfg *Config, err error) {
	f, err := fs.Open(name)
	if err != nil {
		return nil, err
	}
	defer func() { err = multierr.Append(err, f.Close()) }()
	cfg, err = parseConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	fr := &cfg.Frames
	if fr.First == 0 && fr.Last == 0 {
		fr.First, fr.Last = FrameFirst, FrameLast
	}
	defaultInt(&fr.Step, FrameStep)
	defaultInt(&fr.Interlace, 1)
	defaultFloat(&fr.StepTime, StepTime)
	if fr.Step < 0 || fr.Last < fr.First {
		return nil, fmt.Errorf("bad frame range %d..%d step %d", fr.First, fr.Last, fr.Step)
	}
	if fr.Interlace < 1 {
		return nil, fmt.Errorf("interlace must be >= 1, got %d", fr.Interlace)
	}

	src := &cfg.Source
	if src.Coords == "" {
		src.Coords = CoordsFile
	}
	if src.Data == "" {
		src.Data = DataFileTemplate
	}
	defaultInt(&src.N, NumCoords)

	defaultInt(&cfg.Grid.TextureFactor, TextureToWavesFactor)
	if cfg.Grid.TextureFactor < 1 {
		return nil, fmt.Errorf("textureFactor must be >= 1, got %d", cfg.Grid.TextureFactor)
	}

	rs := &cfg.Resample
	if rs.KernelRadius == nil {
		r := KernelRadius
		rs.KernelRadius = &r
	}
	defaultInt(&rs.ExtraPasses, ExtraPasses)
	defaultInt(&rs.HoleFill, HoleFillSweeps)
	defaultFloat(&rs.CutoffDeg, CutoffDegrees)
	if rs.CutoffStart == 0 && rs.CutoffEnd == 0 {
		rs.CutoffStart, rs.CutoffEnd = CutoffStartFrame, CutoffEndFrame
	}

	cam := &cfg.Camera
	defaultInt(&cam.Width, ImageWidth)
	defaultInt(&cam.Height, ImageHeight)
	defaultInt(&cam.Radius, GlobeRadius)
	if cam.CenterX == 0 && cam.CenterY == 0 {
		cam.CenterX, cam.CenterY = float64(cam.Width/2), float64(cam.Height/2)
	}
	if cam.Rotate < 0 || cam.Rotate > 3 {
		return nil, fmt.Errorf("unknown rotation type %d", cam.Rotate)
	}
	if cam.RotateSpeed == 0 {
		cam.RotateSpeed = RotateSpeed
	}
	if cam.Width <= 0 || cam.Height <= 0 || cam.Radius <= 0 {
		return nil, fmt.Errorf("bad image %dx%d radius %d", cam.Width, cam.Height, cam.Radius)
	}
	if math.Abs(cam.Lat) > 90 {
		return nil, fmt.Errorf("camera latitude %f out of range", cam.Lat)
	}

	if cfg.Sun.Speed == 0 {
		cfg.Sun.Speed = RotateSunSpeed
	}
	if cfg.Textures.Map == "" {
		return nil, fmt.Errorf("config has no surface map")
	}

	l := &cfg.Lighting
	defaultFloat(&l.DiffuseIntensity, DiffuseIntensity)
	if l.DiffuseColor == ([3]float64{}) {
		l.DiffuseColor = DiffuseColor
	}
	defaultFloat(&l.Emission, EmissionIntensity)
	defaultFloat(&l.SpecularIntensity, SpecularIntensity)
	defaultFloat(&l.SpecularPower, SpecularPower)
	if l.SpecularColor == ([3]float64{}) {
		l.SpecularColor = SpecularColor
	}
	if l.SpecularOceanColor == ([3]float64{}) {
		l.SpecularOceanColor = SpecularOceanColor
	}
	defaultFloat(&l.GradientIntensity, GradientIntensity)
	defaultFloat(&l.HillshadeIntensity, HillshadeIntensity)
	defaultFloat(&l.HillshadeScale, HillshadeScale)
	defaultFloat(&l.AlbedoIntensity, AlbedoIntensity)
	defaultFloat(&l.ElevationIntensity, ElevationIntensity)
	defaultFloat(&l.LineSpacing, DegreesBetweenLines)

	w := &cfg.Waves
	defaultFloat(&w.MaxOpacity, MaxWaveOpacity)
	defaultFloat(&w.Power, NonlinearPower)

	b := &cfg.Backglow
	defaultFloat(&b.Falloff, BackglowFalloff)
	defaultFloat(&b.Intensity, BackglowIntensity)
	if b.Color == ([3]float64{}) {
		b.Color = BackglowColor
	}

	o := &cfg.Output
	if o.Dir == "" {
		o.Dir = OutputDir
	}
	o.Format = strings.ToLower(o.Format)
	switch o.Format {
	case "":
		o.Format = "ppm"
	case "jpeg":
		o.Format = "jpg"
	case "ppm", "tga", "jpg", "png":
	default:
		return nil, fmt.Errorf("unknown output format %q", o.Format)
	}
	if o.GIFOut == "" {
		o.GIFOut = "movie.gif"
	}
	defaultInt(&o.GIFDelay, GIFDelay)

	DebugLog(
		"Loaded config from %s: frames=%d..%d/%d interlace=%d, image=%dx%d r=%d, format=%s",
		name, fr.First, fr.Last, fr.Step, fr.Interlace, cam.Width, cam.Height, cam.Radius, o.Format,
	)
	return cfg, nil
}
