package shakemovie

import (
	"fmt"
	"image"
	"path"

	"github.com/mrjoshuak/go-openexr/exr"
	"go.uber.org/multierr"
	billy "gopkg.in/src-d/go-billy.v4"
)

// SaveEXRGrid writes the field normalized to [-1,1] in all color channels.
// Alpha is 1 where a sample reached the cell and 0 elsewhere.
func SaveEXRGrid(fs billy.Filesystem, name string, wf *WaveField) (err error) {
	g := wf.Grid
	if g.W <= 0 || g.H <= 0 {
		return fmt.Errorf("bad grid dimensions: %dx%d", g.W, g.H)
	}
	img := exr.NewRGBAImage(image.Rect(0, 0, g.W, g.H))
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			i := g.idx(x, y)
			v := float32(wf.normalized(i, false))
			a := float32(0)
			if g.Count[i] != 0 {
				a = 1
			}
			img.SetRGBA(x, y, v, v, v, a)
		}
	}
	if err := fs.MkdirAll(path.Dir(name), 0o755); err != nil {
		return err
	}
	f, err := fs.Create(name)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, f.Close()) }()
	return exr.Encode(f, img)
}
