package shakemovie

import (
	"bytes"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/src-d/go-billy.v4/memfs"
)

func TestTimeLabel(t *testing.T) {
	assert.Equal(t, " 0:00:02", timeLabel(100, 0.025, 0))
	assert.Equal(t, "-1:02:05", timeLabel(0, 1, -3725))
	assert.Equal(t, " 2:01:01", timeLabel(2*3600+61, 1, 0))
}

func TestAnnotateStaysInLabelBox(t *testing.T) {
	im := NewImage(200, 100)
	annotate(im, " 0:00:02", TimePosW, TimePosH, TimeTextColor)
	lit := 0
	for j := 0; j < im.H; j++ {
		for i := 0; i < im.W; i++ {
			c := im.At(i, j)
			if c == ([3]uint8{}) {
				continue
			}
			lit++
			if i < 131 || i > 188 || j < 45 || j > 58 {
				t.Fatalf("pixel (%d, %d) lit outside the label box", i, j)
			}
		}
	}
	assert.Greater(t, lit, 20)
}

func TestAnnotateTinyImage(t *testing.T) {
	im := NewImage(4, 4)
	assert.NotPanics(t, func() { annotate(im, "-9:59:59", TimePosW, TimePosH, TimeTextColor) })
}

func TestWriteImageFormats(t *testing.T) {
	im := NewImage(3, 2)
	im.Set(0, 0, [3]uint8{255, 0, 0})
	fs := memfs.New()
	for _, f := range []string{"ppm", "tga", "jpg", "png"} {
		require.NoError(t, writeImage(fs, "x."+f, f, im), f)
	}
	require.Error(t, writeImage(fs, "x.bmp", "bmp", im))

	b := readAll(t, fs, "x.png")
	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	r, _, _, _ := img.At(0, 1).RGBA()
	assert.Equal(t, uint32(0xffff), r, "bottom buffer row is the last png row")

	b = readAll(t, fs, "x.jpg")
	_, err = jpeg.Decode(bytes.NewReader(b))
	require.NoError(t, err)

	b = readAll(t, fs, "x.tga")
	rt, err := decodeTGA(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, im.Pix, rt.Pix)
}

func TestFrameWriter(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, fs.MkdirAll("out", 0o755))
	fw := &FrameWriter{
		FS: fs, Dir: "out", Format: "ppm",
		Half: true, Time: true, StepTime: 0.025,
		GIF: NewGIFCollector(GIFDelay),
	}
	im := NewImage(4, 4)
	require.NoError(t, fw.Write(0, 100, im))
	require.NoError(t, fw.Write(1, 200, im))

	full := readAll(t, fs, "out/frame.000001.ppm")
	assert.Len(t, full, len("P6\n4 4\n255\n")+3*16)
	half := readAll(t, fs, "out/frame.000001.www.ppm")
	assert.Len(t, half, len("P6\n2 2\n255\n")+3*4)

	require.Equal(t, 2, fw.GIF.Len())
	require.NoError(t, fw.GIF.Save(fs, "out/movie.gif"))
	assert.True(t, bytes.HasPrefix(readAll(t, fs, "out/movie.gif"), []byte("GIF89a")))
}

func TestEmptyGIF(t *testing.T) {
	require.Error(t, NewGIFCollector(5).Save(memfs.New(), "x.gif"))
}
