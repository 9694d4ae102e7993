package shakemovie

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// encodePPM writes a binary P6 image emitting buffer rows bottom to top.
func encodePPM(wr io.Writer, w, h int, rgb []uint8) error {
	bw := bufio.NewWriter(wr)
	if _, err := fmt.Fprintf(bw, "P6\n%d %d\n255\n", w, h); err != nil {
		return err
	}
	for j := h - 1; j >= 0; j-- {
		if _, err := bw.Write(rgb[3*w*j : 3*w*(j+1)]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// decodePGM16 reads a 16-bit big-endian P5 image with maxval 65535. The first
// row in the file lands in the last buffer row.
func decodePGM16(rd io.Reader) (w, h int, vals []uint16, err error) {
	br := bufio.NewReader(rd)
	var magic string
	var maxval int
	if _, err = fmt.Fscan(br, &magic, &w, &h, &maxval); err != nil {
		return 0, 0, nil, fmt.Errorf("pgm header: %w", err)
	}
	if magic != "P5" {
		return 0, 0, nil, fmt.Errorf("pgm: header %q, want P5", magic)
	}
	if maxval != 65535 {
		return 0, 0, nil, fmt.Errorf("pgm: maxval %d, want 65535", maxval)
	}
	// single whitespace after maxval
	if _, err = br.ReadByte(); err != nil {
		return 0, 0, nil, fmt.Errorf("pgm header: %w", err)
	}
	vals = make([]uint16, w*h)
	row := make([]byte, 2*w)
	for j := h - 1; j >= 0; j-- {
		if _, err = io.ReadFull(br, row); err != nil {
			return 0, 0, nil, fmt.Errorf("pgm row %d: %w", j, err)
		}
		dst := vals[j*w : (j+1)*w]
		for i := range dst {
			dst[i] = binary.BigEndian.Uint16(row[2*i:])
		}
	}
	return w, h, vals, nil
}
