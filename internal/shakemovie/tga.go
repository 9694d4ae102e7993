package shakemovie

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

const tgaHeaderSize = 18

// Raster is an 8-bit RGB image, rows in file order.
type Raster struct {
	W, H int
	Pix  []uint8
}

func NewRaster(w, h int) *Raster {
	return &Raster{W: w, H: h, Pix: make([]uint8, 3*w*h)}
}

func (r *Raster) RGB(i int) (uint8, uint8, uint8) {
	p := 3 * i
	return r.Pix[p+ChR], r.Pix[p+ChG], r.Pix[p+ChB]
}

// Gray is the channel mean scaled to [0,1].
func (r *Raster) Gray(i int) float64 {
	p := 3 * i
	return (float64(r.Pix[p]) + float64(r.Pix[p+1]) + float64(r.Pix[p+2])) / 3.0 / 255.0
}

func (r *Raster) sameSize(o *Raster) bool { return r.W == o.W && r.H == o.H }

// decodeTGA reads an uncompressed 24-bit truecolor TGA, swapping BGR to RGB.
func decodeTGA(rd io.Reader) (*Raster, error) {
	var hdr [tgaHeaderSize]byte
	if _, err := io.ReadFull(rd, hdr[:]); err != nil {
		return nil, fmt.Errorf("tga header: %w", err)
	}
	if hdr[2] != 2 {
		return nil, fmt.Errorf("tga: unsupported image type %d", hdr[2])
	}
	if hdr[16] != 24 {
		return nil, fmt.Errorf("tga: unsupported depth %d", hdr[16])
	}
	w := int(binary.LittleEndian.Uint16(hdr[12:]))
	h := int(binary.LittleEndian.Uint16(hdr[14:]))
	if idLen := int(hdr[0]); idLen > 0 {
		if _, err := io.CopyN(io.Discard, rd, int64(idLen)); err != nil {
			return nil, fmt.Errorf("tga id: %w", err)
		}
	}
	r := NewRaster(w, h)
	if _, err := io.ReadFull(rd, r.Pix); err != nil {
		return nil, fmt.Errorf("tga pixels %dx%d: %w", w, h, err)
	}
	for p := 0; p < len(r.Pix); p += 3 {
		r.Pix[p], r.Pix[p+2] = r.Pix[p+2], r.Pix[p]
	}
	return r, nil
}

// encodeTGA writes rows in buffer order as BGR.
func encodeTGA(wr io.Writer, w, h int, rgb []uint8) error {
	var hdr [tgaHeaderSize]byte
	hdr[2] = 2
	binary.LittleEndian.PutUint16(hdr[12:], uint16(w))
	binary.LittleEndian.PutUint16(hdr[14:], uint16(h))
	hdr[16] = 24
	bw := bufio.NewWriter(wr)
	if _, err := bw.Write(hdr[:]); err != nil {
		return err
	}
	row := make([]byte, 3*w)
	for j := 0; j < h; j++ {
		src := rgb[3*w*j : 3*w*(j+1)]
		for p := 0; p < len(row); p += 3 {
			row[p], row[p+1], row[p+2] = src[p+2], src[p+1], src[p]
		}
		if _, err := bw.Write(row); err != nil {
			return err
		}
	}
	return bw.Flush()
}
