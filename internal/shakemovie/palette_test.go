package shakemovie

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlueRedEndpoints(t *testing.T) {
	c, op, err := DetermineColor(BlueRed, Blend, 1, false, MaxColorIntensity)
	require.NoError(t, err)
	assert.Equal(t, 255.0, c.R)
	assert.Equal(t, 0.0, c.G)
	assert.Equal(t, 0.0, c.B)
	assert.Equal(t, 1.0, op)

	c, op, err = DetermineColor(BlueRed, Blend, -1, false, MaxColorIntensity)
	require.NoError(t, err)
	assert.Equal(t, 0.0, c.R)
	assert.Equal(t, 255.0, c.B)
	assert.Equal(t, 1.0, op)

	c, op, err = DetermineColor(BlueRed, Blend, 0, false, MaxColorIntensity)
	require.NoError(t, err)
	assert.Equal(t, 0.0, c.R+c.G+c.B)
	assert.Equal(t, 0.0, op)
}

func TestDarkBlueRedScale(t *testing.T) {
	p, err := ParsePalette("dark_blue_red")
	require.NoError(t, err)
	require.Equal(t, DarkBlueRed, p)
	c, _, err := DetermineColor(p, Blend, 0.5, false, p.MaxIntensity())
	require.NoError(t, err)
	assert.InDelta(t, 0.5*DarkColorIntensity, c.R, 1e-9)
}

func TestAdditiveGray(t *testing.T) {
	c, op, err := DetermineColor(Spectrum, Additive, -0.5, false, MaxColorIntensity)
	require.NoError(t, err)
	assert.InDelta(t, 0.5*AdditiveIntensity, c.R, 1e-9)
	assert.Equal(t, c.R, c.G)
	assert.Equal(t, c.R, c.B)
	assert.Equal(t, 0.5, op)
}

func TestPalettesStayInRange(t *testing.T) {
	for _, p := range []Palette{BlueRed, DarkBlueRed, Spectrum, Hot, Hot2} {
		for _, water := range []bool{false, true} {
			for v := -1.0; v <= 1.0; v += 0.05 {
				c, op, err := DetermineColor(p, Blend, v, water, MaxColorIntensity)
				require.NoError(t, err)
				for _, ch := range []float64{c.R, c.G, c.B} {
					if ch < 0 || ch > MaxColorIntensity+1e-9 {
						t.Fatalf("palette %d v=%f water=%v: channel %f out of range", p, v, water, ch)
					}
				}
				if op < 0 || op > 1+1e-9 {
					t.Fatalf("palette %d v=%f: opacity %f", p, v, op)
				}
			}
		}
	}
}

func TestHotWhiteAtPeak(t *testing.T) {
	c, _, err := DetermineColor(Hot, Blend, 1, false, MaxColorIntensity)
	require.NoError(t, err)
	assert.Equal(t, 255.0, c.R)
	assert.Equal(t, 255.0, c.G)
	assert.Equal(t, 255.0, c.B)
}

func TestDetermineColorNaN(t *testing.T) {
	_, _, err := DetermineColor(BlueRed, Blend, math.NaN(), false, MaxColorIntensity)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNaN))
}

func TestParsePaletteAndColor(t *testing.T) {
	p, err := ParsePalette("")
	require.NoError(t, err)
	assert.Equal(t, BlueRed, p)
	_, err = ParsePalette("rainbow")
	require.Error(t, err)

	c, err := parseColor("#0a0a33", BackgroundColor)
	require.NoError(t, err)
	assert.Equal(t, [3]uint8{10, 10, 51}, c)
	c, err = parseColor("", OceanColor)
	require.NoError(t, err)
	assert.Equal(t, OceanColor, c)
	_, err = parseColor("blue", OceanColor)
	require.Error(t, err)
}
