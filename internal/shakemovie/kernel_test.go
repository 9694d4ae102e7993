package shakemovie

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildKernelCenterIsUniqueMax(t *testing.T) {
	for _, r := range []int{0, 1, 2, 4, 9, 30} {
		k, err := BuildKernel(r)
		require.NoError(t, err)
		require.Equal(t, (2*r+1)*(2*r+1), len(k.Weights))
		c := k.At(r, r)
		for j := 0; j < k.SizeY(); j++ {
			for i := 0; i < k.SizeX(); i++ {
				if i == r && j == r {
					continue
				}
				if k.At(i, j) >= c {
					t.Fatalf("r=%d: weight at (%d,%d)=%d not below center %d", r, i, j, k.At(i, j), c)
				}
			}
		}
	}
}

func TestBuildKernelSumTracksGaussian(t *testing.T) {
	for _, r := range []int{1, 2, 5, 12} {
		k, err := BuildKernel(r)
		require.NoError(t, err)
		g4 := float64((r+1)*(r+1)) / 4.0
		edge := float64(r) + 0.5
		factor := math.Exp(-(edge * edge) / g4)
		exact := 0.0
		for j := -r; j <= r; j++ {
			for i := -r; i <= r; i++ {
				exact += math.Exp(-float64(i*i+j*j)/g4) / factor
			}
		}
		cells := float64(len(k.Weights))
		diff := exact - float64(k.Sum())
		assert.GreaterOrEqual(t, diff, 0.0, "r=%d", r)
		assert.Less(t, diff, cells, "r=%d", r)
	}
}

func TestBuildKernelRejectsRadius(t *testing.T) {
	_, err := BuildKernel(-1)
	assert.True(t, errors.Is(err, ErrKernelRadius))
	_, err = BuildKernel(MaxKernelRadius + 1)
	assert.True(t, errors.Is(err, ErrKernelRadius))
	_, err = BuildKernel(MaxKernelRadius)
	assert.NoError(t, err)
}

func TestSquishIdentity(t *testing.T) {
	k, err := BuildKernel(4)
	require.NoError(t, err)
	s, err := k.Squish(4)
	require.NoError(t, err)
	assert.Equal(t, k.Weights, s.Weights)
	assert.Equal(t, 4, s.RadiusY)
}

func TestSquishPreservesWeight(t *testing.T) {
	k, err := BuildKernel(8)
	require.NoError(t, err)
	for _, to := range []int{1, 2, 4} {
		s, err := k.Squish(to)
		require.NoError(t, err)
		f := 8 / to
		assert.Equal(t, 8, s.RadiusX)
		assert.Equal(t, to, s.RadiusY)
		assert.Equal(t, k.SizeX()*(2*to+1), len(s.Weights))
		// Center row is copied; every other kept row lost at most f-1 per cell
		// to integer division.
		for i := 0; i < k.SizeX(); i++ {
			assert.Equal(t, k.At(i, 8), s.At(i, to))
		}
		expected := 0
		for _, w := range k.Weights {
			expected += w
		}
		expected -= sumRow(k, 8)
		got := s.Sum() - sumRow(s, to)
		slack := 2 * to * k.SizeX()
		assert.LessOrEqual(t, got*f, expected, "to=%d", to)
		assert.Greater(t, got*f+slack*f, expected, "to=%d", to)
	}
}

func sumRow(k *Kernel, row int) int {
	s := 0
	for i := 0; i < k.SizeX(); i++ {
		s += k.At(i, row)
	}
	return s
}

func TestSquishRejects(t *testing.T) {
	k, err := BuildKernel(6)
	require.NoError(t, err)
	for _, to := range []int{7, 4, 0, -1} {
		_, err := k.Squish(to)
		assert.True(t, errors.Is(err, ErrKernelSquish), "to=%d", to)
	}
}

func TestKernelTableLookup(t *testing.T) {
	tbl, err := NewKernelTable(2)
	require.NoError(t, err)
	h := 900
	cases := []struct {
		row     int
		radiusX int
	}{
		{0, 56},   // 0 deg
		{10, 56},  // 2 deg
		{11, 30},  // 2.2 deg
		{25, 30},  // 5 deg
		{40, 8},   // 8 deg
		{90, 4},   // 18 deg
		{450, 2},  // equator
		{899, 56}, // 179.8 deg
	}
	for _, c := range cases {
		k := tbl.Lookup(c.row, h)
		assert.Equal(t, c.radiusX, k.RadiusX, "row %d", c.row)
		assert.Equal(t, 2, k.RadiusY, "row %d", c.row)
	}
}
