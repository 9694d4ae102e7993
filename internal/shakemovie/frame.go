package shakemovie

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"path"

	"go.uber.org/multierr"
	billy "gopkg.in/src-d/go-billy.v4"
)

// RGBA converts to a top-down image.
func (im *Image) RGBA() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, im.W, im.H))
	for j := 0; j < im.H; j++ {
		y := im.H - 1 - j
		rowOff := y * out.Stride
		for i := 0; i < im.W; i++ {
			p := im.idx(i, j)
			q := rowOff + i*4
			out.Pix[q+0] = im.Pix[p+0]
			out.Pix[q+1] = im.Pix[p+1]
			out.Pix[q+2] = im.Pix[p+2]
			out.Pix[q+3] = 255
		}
	}
	return out
}

// writeImage encodes im as ppm, tga, jpg or png.
func writeImage(fs billy.Filesystem, name, format string, im *Image) (err error) {
	f, err := fs.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	defer func() { err = multierr.Append(err, f.Close()) }()
	switch format {
	case "ppm":
		err = encodePPM(f, im.W, im.H, im.Pix)
	case "tga":
		err = encodeTGA(f, im.W, im.H, im.Pix)
	case "jpg":
		err = jpeg.Encode(f, im.RGBA(), &jpeg.Options{Quality: JPEGQuality})
	case "png":
		err = png.Encode(f, im.RGBA())
	default:
		err = fmt.Errorf("unknown image format %q", format)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// FrameWriter names, annotates and saves rendered frames.
type FrameWriter struct {
	FS        billy.Filesystem
	Dir       string
	Format    string
	Half      bool
	Time      bool
	StartTime float64
	StepTime  float64
	GIF       *GIFCollector
}

// Write saves output frame n rendered from simulation frame sim.
func (fw *FrameWriter) Write(n, sim int, im *Image) error {
	base := path.Join(fw.Dir, fmt.Sprintf(FrameNameTemplate, n))
	label := timeLabel(sim, fw.StepTime, fw.StartTime)

	var half *Image
	if fw.Half || fw.GIF != nil {
		half = im.Half()
		if fw.Time {
			annotate(half, label, TimePosW, TimePosH, TimeTextColor)
		}
	}
	if fw.Time {
		annotate(im, label, TimePosW, TimePosH, TimeTextColor)
	}

	name := base + "." + fw.Format
	if err := writeImage(fw.FS, name, fw.Format, im); err != nil {
		return err
	}
	DebugLog("Saved %s (frame %d)", name, sim)
	if PNG && fw.Format != "png" {
		if err := writeImage(fw.FS, base+".png", "png", im); err != nil {
			return err
		}
	}
	if fw.Half {
		if err := writeImage(fw.FS, base+".www.ppm", "ppm", half); err != nil {
			return err
		}
	}
	if fw.GIF != nil {
		fw.GIF.Add(half)
	}
	return nil
}
