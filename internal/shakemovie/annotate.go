package shakemovie

import (
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Time label placement, measured from the right and top edges.
const (
	TimePosW = 69
	TimePosH = 54
)

// timeLabel formats simulation time for a frame as [-]H:MM:SS.
func timeLabel(frame int, stepTime, startTime float64) string {
	t := int(stepTime*float64(frame) + startTime)
	sign := ' '
	if t < 0 {
		sign = '-'
		t = -t
	}
	return fmt.Sprintf("%c%d:%02d:%02d", sign, t/3600, (t/60)%60, t%60)
}

// annotate draws text with a one pixel dark shadow. The box's left edge sits
// posW pixels from the right border and its bottom posH pixels below the top,
// pulled back inside the image when needed.
func annotate(im *Image, text string, posW, posH int, gray uint8) {
	face := basicfont.Face7x13
	d := &font.Drawer{Face: face, Src: image.Opaque}
	w := d.MeasureString(text).Ceil()
	h := face.Metrics().Height.Ceil()
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	d.Dst = mask
	d.Dot = fixed.P(0, face.Metrics().Ascent.Ceil())
	d.DrawString(text)

	x0 := im.W - posW
	if im.W-x0 < w+1 {
		x0 = im.W - w - 5
	}
	top := posH - h
	x0 = clampInt(x0, 0, max(im.W-w-1, 0))
	top = clampInt(top, 0, max(im.H-h-1, 0))

	put := func(x, y int, a uint8, c uint8) {
		if x < 0 || x >= im.W || y < 0 || y >= im.H || a == 0 {
			return
		}
		j := im.H - 1 - y
		p := im.idx(x, j)
		f := float64(a) / 255.0
		for k := 0; k < 3; k++ {
			im.Pix[p+k] = capByte(f*float64(c) + (1.0-f)*float64(im.Pix[p+k]))
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			put(x0+x+1, top+y+1, mask.AlphaAt(x, y).A, 0)
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			put(x0+x, top+y, mask.AlphaAt(x, y).A, gray)
		}
	}
}
