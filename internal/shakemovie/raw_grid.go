package shakemovie

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"path"

	"go.uber.org/multierr"
	billy "gopkg.in/src-d/go-billy.v4"
)

// SaveRawGrid dumps the finished grid: W and H as int32, then W*H float32
// values row by row, little-endian. Cells never sampled hold 0.
func SaveRawGrid(fs billy.Filesystem, name string, g *Grid) (err error) {
	if g.W <= 0 || g.H <= 0 {
		return fmt.Errorf("bad grid dimensions: %dx%d", g.W, g.H)
	}
	if len(g.Sum) != g.Len() {
		return fmt.Errorf("grid length mismatch: got %d, expected %d", len(g.Sum), g.Len())
	}
	if err := fs.MkdirAll(path.Dir(name), 0o755); err != nil {
		return err
	}
	f, err := fs.Create(name)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, f.Close()) }()

	w := bufio.NewWriter(f)
	if err := binary.Write(w, binary.LittleEndian, [2]int32{int32(g.W), int32(g.H)}); err != nil {
		return err
	}
	vals := make([]float32, g.Len())
	for i := range vals {
		vals[i] = float32(g.Value(i))
	}
	if err := binary.Write(w, binary.LittleEndian, vals); err != nil {
		return err
	}
	return w.Flush()
}
