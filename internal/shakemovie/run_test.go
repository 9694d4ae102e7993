package shakemovie

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	billy "gopkg.in/src-d/go-billy.v4"
	"gopkg.in/src-d/go-billy.v4/memfs"
	"gopkg.in/src-d/go-billy.v4/util"
)

func movieFS(t *testing.T, cfg string) billy.Filesystem {
	t.Helper()
	fs := memfs.New()
	rgb := make([]uint8, 3*16*8)
	for p := range rgb {
		rgb[p] = 90
	}
	require.NoError(t, util.WriteFile(fs, "earth.tga", tgaBytes(t, 16, 8, rgb), 0o644))
	// (lat, -lon) pairs
	coords := []float32{10, -20, -30, 100, 45, 170, 0, 0}
	require.NoError(t, util.WriteFile(fs, "coords.bin", float32Bytes(t, coords), 0o644))
	for f := 1; f <= 2; f++ {
		vals := []float32{float32(f), -1, 0.5, 2}
		require.NoError(t, util.WriteFile(fs, fmt.Sprintf("data_%d.bin", f), float32Bytes(t, vals), 0o644))
	}
	require.NoError(t, util.WriteFile(fs, "config.json", []byte(cfg), 0o644))
	return fs
}

const movieConfig = `{
	"frames": {"first": 1, "last": 2, "step": 1, "interlace": 2, "stepTime": 1},
	"source": {"coords": "coords.bin", "data": "data_%d.bin", "n": 4},
	"resample": {"symmetric": true},
	"camera": {"lat": 10, "lon": 20, "width": 40, "height": 40, "radius": 15, "rotate": 1, "rotateSpeed": 10},
	"textures": {"map": "earth.tga"},
	"waves": {"enabled": true},
	"backglow": {"enabled": true, "falloff": 5},
	"output": {"dir": "out", "format": "png", "half": true, "time": true}
}`

func TestMovieInterlacedRun(t *testing.T) {
	RAW = true
	defer func() { RAW = false }()

	fs := movieFS(t, movieConfig)
	cfg, err := loadConfig(fs, "config.json")
	require.NoError(t, err)
	m, err := NewMovie(fs, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, m.interlace)
	assert.Equal(t, 4, m.outputFrames())
	assert.Equal(t, 5.0, m.rot.Speed)
	assert.Equal(t, 4, m.Coords.W)
	assert.Equal(t, 2, m.Coords.H)

	require.NoError(t, m.Render())
	for n := 0; n < 4; n++ {
		_, err := fs.Stat(fmt.Sprintf("out/frame.%06d.png", n))
		require.NoError(t, err, "frame %d", n)
		_, err = fs.Stat(fmt.Sprintf("out/frame.%06d.www.ppm", n))
		require.NoError(t, err, "half %d", n)
	}
	_, err = fs.Stat("out/frame.000004.png")
	require.Error(t, err)
	for _, f := range []int{1, 2} {
		_, err := fs.Stat(fmt.Sprintf("out/grid.%06d.raw", f))
		require.NoError(t, err)
	}
}

func TestMovieWithoutRotationDropsInterlace(t *testing.T) {
	cfg := `{
		"frames": {"first": 1, "last": 2, "step": 1, "interlace": 3},
		"source": {"coords": "coords.bin", "data": "data_%d.bin", "n": 4},
		"camera": {"width": 20, "height": 20, "radius": 8},
		"textures": {"map": "earth.tga"},
		"output": {"dir": "out"}
	}`
	fs := movieFS(t, cfg)
	c, err := loadConfig(fs, "config.json")
	require.NoError(t, err)
	m, err := NewMovie(fs, c)
	require.NoError(t, err)
	assert.Equal(t, 1, m.interlace)
	require.NoError(t, m.Render())
	_, err = fs.Stat("out/frame.000001.ppm")
	require.NoError(t, err)
}

func TestMovieMissingFrame(t *testing.T) {
	fs := movieFS(t, movieConfig)
	require.NoError(t, fs.Remove("data_2.bin"))
	cfg, err := loadConfig(fs, "config.json")
	require.NoError(t, err)
	m, err := NewMovie(fs, cfg)
	require.NoError(t, err)
	require.Error(t, m.Render())
}

func TestMovieFieldsKeepOwnBounds(t *testing.T) {
	fs := movieFS(t, movieConfig)
	require.NoError(t, util.WriteFile(fs, "data_2.bin", float32Bytes(t, []float32{4, -1, 0.5, 2}), 0o644))
	cfg, err := loadConfig(fs, "config.json")
	require.NoError(t, err)
	m, err := NewMovie(fs, cfg)
	require.NoError(t, err)

	cur, err := m.load(1, m.cur)
	require.NoError(t, err)
	next, err := m.load(2, m.next)
	require.NoError(t, err)
	assert.NotSame(t, cur.Grid, next.Grid)
	assert.Equal(t, -2.0, cur.Min)
	assert.Equal(t, 2.0, cur.Max)
	assert.Equal(t, -4.0, next.Min)
	assert.Equal(t, 4.0, next.Max)
}
