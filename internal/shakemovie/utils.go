package shakemovie

import (
	"errors"
	"math"
)

var (
	ErrNaN               = errors.New("NaN value")
	ErrDimensionMismatch = errors.New("raster dimensions mismatch")
	ErrKernelRadius      = errors.New("kernel radius out of range")
	ErrKernelSquish      = errors.New("kernel cannot be squished")
)

func isFinite(x float64) bool { return !math.IsInf(x, 0) && !math.IsNaN(x) }

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func clampInt(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// capByte truncates to int and saturates at 255; negative values become 0.
func capByte(x float64) uint8 {
	v := int(x)
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return uint8(v)
}

// wrapOnce applies a single +/- period correction, matching the renderer's
// explicit angle wraps (not a modulo).
func wrapOnce(x, lo, hi, period float64) float64 {
	if x < lo {
		return x + period
	}
	if x > hi {
		return x - period
	}
	return x
}

func deg2rad(d float64) float64 { return d * math.Pi / 180.0 }
func rad2deg(r float64) float64 { return r * 180.0 / math.Pi }
