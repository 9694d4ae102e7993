package shakemovie

import (
	"fmt"
	"io"
	"path"
	"regexp"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/multierr"
	billy "gopkg.in/src-d/go-billy.v4"
)

var intVerb = regexp.MustCompile(`%(\d*)i`)

// FrameSource reads per-frame amplitude files named by a printf template.
type FrameSource struct {
	FS       billy.Filesystem
	Template string
	N        int
}

// Path returns the frame file name. Templates may use %06i, which is
// rewritten to the Go verb.
func (s *FrameSource) Path(frame int) string {
	return fmt.Sprintf(intVerb.ReplaceAllString(s.Template, "%${1}d"), frame)
}

// resolve picks the first existing file among the plain name and its
// compressed variants.
func (s *FrameSource) resolve(frame int) (string, error) {
	name := s.Path(frame)
	for _, ext := range []string{"", ".zst", ".zz", ".sz"} {
		if _, err := s.FS.Stat(name + ext); err == nil {
			return name + ext, nil
		}
	}
	return "", fmt.Errorf("frame %d: no data file %s", frame, name)
}

// Read loads the N amplitudes of a frame, decoding .zst, .zz and .sz files.
func (s *FrameSource) Read(frame int) (vals []float32, err error) {
	name, err := s.resolve(frame)
	if err != nil {
		return nil, err
	}
	f, err := s.FS.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer func() { err = multierr.Append(err, f.Close()) }()

	var r io.Reader = f
	switch path.Ext(name) {
	case ".zst":
		dec, derr := zstd.NewReader(f)
		if derr != nil {
			return nil, fmt.Errorf("zstd %s: %w", name, derr)
		}
		defer dec.Close()
		r = dec
	case ".zz":
		zr, zerr := zlib.NewReader(f)
		if zerr != nil {
			return nil, fmt.Errorf("zlib %s: %w", name, zerr)
		}
		defer func() { err = multierr.Append(err, zr.Close()) }()
		r = zr
	case ".sz":
		r = snappy.NewReader(f)
	}
	vals, err = readFloat32s(r, s.N)
	if err != nil {
		return nil, fmt.Errorf("read amplitudes %s: %w", name, err)
	}
	DebugLog("Frame %d: %d amplitudes from %s", frame, len(vals), name)
	return vals, nil
}
