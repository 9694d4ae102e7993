package shakemovie

// Channel indices for readability.
const (
	ChR = 0
	ChG = 1
	ChB = 2
)

// Frames and input.
const (
	FrameFirst        = 100
	FrameLast         = 7000
	FrameStep         = 100
	NumCoords         = 2457602
	CoordsFile        = "translateddata/gmt_movie_coords.xy.Cb"
	DataFileTemplate  = "translateddata/gmt_movie_%06d.v.Cb"
	OutputDir         = "."
	FrameNameTemplate = "frame.%06d"
	StepTime          = 0.025
)

// Resampling.
const (
	TextureToWavesFactor = 4
	KernelRadius         = 2
	MaxKernelRadius      = 255
	ExtraPasses          = 4
	HoleFillSweeps       = 2
	ValueLife            = 1024
	SplatCountCeiling    = 256 * 120
	PolarLatitude        = 2.0
	CutoffDegrees        = 20.0
	CutoffStartFrame     = 5
	CutoffEndFrame       = 45
	PreFinalizeCount     = 4
)

// Compositor.
const (
	ImageWidth           = 256
	ImageHeight          = 256
	GlobeRadius          = 126
	DegreesBetweenLines  = 5.0
	LineColor            = 150
	ElevationIntensity   = 0.01
	ElevationBox         = 7
	WaveEnhanceFactor    = 0.01
	DistortionMap        = 0.10
	DistortionLight      = 0.10
	WaveCutSnaps         = 0.01
	NonlinearPower       = 0.60
	ContourTolerance     = 0.01
	DiffuseIntensity     = 1.0
	EmissionIntensity    = 0.2
	AlbedoIntensity      = 0.5
	WaterAlbedo          = 0.8
	SpecularIntensity    = 0.3
	SpecularPower        = 16.0
	GradientIntensity    = 0.05
	HillshadeIntensity   = 1.0
	HillshadeScale       = 0.02
	CloudShadeIntensity  = 0.15
	CloudShadeScale      = 0.2
	NightThreshold       = 0.7
	NightRamp            = 0.2
	NightBlueFactor      = 0.2
	MaxColorIntensity    = 255.0
	DarkColorIntensity   = 155.0
	MaxWaveOpacity       = 0.75
	AdditiveIntensity    = 220.0
	RotateSpeed          = 0.75
	RotateSunSpeed       = -0.0075
	BackglowFalloff      = 100.0
	BackglowIntensity    = 0.5
	BackglowSectors      = 360
	CoronaSectors        = 20
	CoronaSeed           = 10
	CoronaJitter         = 0.2
	JPEGQuality          = 92
	GIFDelay             = 5 // 100ths of a second per frame
	OceanJitter          = 8
	EarthRadiusKm        = 6366.707
	MarsRadiusKm         = 3396.2
	MoonRadiusKm         = 1737.1
	LightThreshold       = 200
	LightShadowFloor     = 0.8
	LightShadedCeiling   = 0.2
	LightFactorFloor     = 0.5
	CloudLightFactorMin  = 0.2
	HillshadeLightCutoff = 0.1
)

// Default colors, 0..255 unless noted.
var (
	OceanColor         = [3]uint8{10, 10, 51}
	BackgroundColor    = [3]uint8{0, 0, 0}
	DiffuseColor       = [3]float64{1.0, 1.0, 1.0}
	SpecularColor      = [3]float64{1.0, 0.825, 0.5}
	SpecularOceanColor = [3]float64{1.0, 0.95, 0.5}
	BackglowColor      = [3]float64{0.2, 0.4, 0.5} // 0..1
	MarsCloudColor     = [3]float64{255, 233, 186}
	LightCloudColor    = [3]float64{255, 244, 214}
	TimeTextColor      = uint8(240)
)
