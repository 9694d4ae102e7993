package shakemovie

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"

	"go.uber.org/multierr"
	billy "gopkg.in/src-d/go-billy.v4"
)

// GIFCollector keeps quantized preview frames until the run ends.
type GIFCollector struct {
	Delay  int // 100ths of a second per frame
	frames []*image.Paletted
}

func NewGIFCollector(delay int) *GIFCollector {
	return &GIFCollector{Delay: delay}
}

func (g *GIFCollector) Len() int { return len(g.frames) }

// Add quantizes im to Plan9 with Floyd-Steinberg dithering.
func (g *GIFCollector) Add(im *Image) {
	rgba := im.RGBA()
	pimg := image.NewPaletted(rgba.Bounds(), palette.Plan9)
	draw.FloydSteinberg.Draw(pimg, pimg.Bounds(), rgba, image.Point{})
	g.frames = append(g.frames, pimg)
}

// Save writes all collected frames as a looping animation.
func (g *GIFCollector) Save(fs billy.Filesystem, name string) (err error) {
	if len(g.frames) == 0 {
		return fmt.Errorf("gif %s: no frames", name)
	}
	out := &gif.GIF{
		Image:     make([]*image.Paletted, 0, len(g.frames)),
		Delay:     make([]int, 0, len(g.frames)),
		LoopCount: 0,
	}
	n := len(g.frames)
	for k, f := range g.frames {
		if k%max(1, n/10) == 0 {
			fmt.Printf("[GIF] %.2f%%\n", float64(k+1)*100/float64(n))
		}
		out.Image = append(out.Image, f)
		out.Delay = append(out.Delay, g.Delay)
	}

	f, err := fs.Create(name)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, f.Close()) }()
	return gif.EncodeAll(f, out)
}
