package shakemovie

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// Image is an 8-bit RGB buffer; row 0 is the bottom row of the picture.
type Image struct {
	W, H int
	Pix  []uint8
}

func NewImage(w, h int) *Image {
	return &Image{W: w, H: h, Pix: make([]uint8, 3*w*h)}
}

func (im *Image) idx(i, j int) int { return 3 * (j*im.W + i) }

func (im *Image) At(i, j int) [3]uint8 {
	p := im.idx(i, j)
	return [3]uint8{im.Pix[p], im.Pix[p+1], im.Pix[p+2]}
}

func (im *Image) Set(i, j int, c [3]uint8) {
	p := im.idx(i, j)
	im.Pix[p], im.Pix[p+1], im.Pix[p+2] = c[0], c[1], c[2]
}

// Half is the 2x2 box mean, integer division.
func (im *Image) Half() *Image {
	h := NewImage(im.W/2, im.H/2)
	for j := 0; j < h.H; j++ {
		for i := 0; i < h.W; i++ {
			a, b := im.idx(2*i, 2*j), im.idx(2*i+1, 2*j)
			c, d := im.idx(2*i, 2*j+1), im.idx(2*i+1, 2*j+1)
			q := h.idx(i, j)
			for k := 0; k < 3; k++ {
				sum := uint(im.Pix[a+k]) + uint(im.Pix[b+k]) + uint(im.Pix[c+k]) + uint(im.Pix[d+k])
				h.Pix[q+k] = uint8(sum / 4)
			}
		}
	}
	return h
}

type bleedAt struct {
	i, j int
	b    *Bleed
}

// Render shades every pixel of im in parallel, rows handed out to one worker
// per CPU. The first per-pixel error stops all workers. Cloud light bleeds
// are applied after all pixels are final.
func (c *Compositor) Render(im *Image, fc *FrameContext) (WaveStats, error) {
	if im.W != c.Opts.Width || im.H != c.Opts.Height {
		return WaveStats{}, fmt.Errorf("image %dx%d, compositor %dx%d: %w", im.W, im.H, c.Opts.Width, c.Opts.Height, ErrDimensionMismatch)
	}
	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}

	var (
		nextRow  int64 = -1
		done     int64
		abort    atomic.Bool
		mu       sync.Mutex
		firstErr error
		stats    WaveStats
		bleeds   = make([][]bleedAt, workers)
		wg       sync.WaitGroup
	)
	nextPrint := int64(max(im.H/10, 1))

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		wid := w
		go func() {
			defer wg.Done()
			var local WaveStats
			for !abort.Load() {
				j := int(atomic.AddInt64(&nextRow, 1))
				if j >= im.H {
					break
				}
				for i := 0; i < im.W; i++ {
					s, err := c.Shade(i, j, fc)
					if err != nil {
						mu.Lock()
						if firstErr == nil {
							firstErr = err
						}
						mu.Unlock()
						abort.Store(true)
						return
					}
					im.Set(i, j, s.RGB)
					if s.HasWave {
						local.add(s.Wave)
					}
					if s.Bleed != nil {
						bleeds[wid] = append(bleeds[wid], bleedAt{i: i, j: j, b: s.Bleed})
					}
				}
				if n := atomic.AddInt64(&done, 1); Debug && n%nextPrint == 0 {
					fmt.Printf("[PROGRESS] %.2f%%\n", float64(n)*100/float64(im.H))
				}
			}
			mu.Lock()
			stats.merge(local)
			mu.Unlock()
		}()
	}
	wg.Wait()
	if firstErr != nil {
		return stats, firstErr
	}
	c.applyBleeds(im, bleeds)
	return stats, nil
}

// applyBleeds writes every worker's light bleeds into the left, lower and
// lower-left neighbors. Neighbor rows belong to other workers, so writes go
// through shard locks unless locking is disabled.
func (c *Compositor) applyBleeds(im *Image, bleeds [][]bleedAt) {
	locks := newShardLocks(NumShards)
	if !UseLocks {
		DebugLogOnce("Cloud light bleeds written without locks")
	}
	write := func(i, j int, b *Bleed) {
		if i < 0 || j < 0 {
			return
		}
		p := im.idx(i, j)
		if UseLocks {
			locks.lock(p)
			defer locks.unlock(p)
		}
		b.apply(im.Pix[p : p+3])
	}
	var wg sync.WaitGroup
	for _, list := range bleeds {
		if len(list) == 0 {
			continue
		}
		wg.Add(1)
		go func(list []bleedAt) {
			defer wg.Done()
			for _, e := range list {
				write(e.i-1, e.j, e.b)
				write(e.i, e.j-1, e.b)
				write(e.i-1, e.j-1, e.b)
			}
		}(list)
	}
	wg.Wait()
}
