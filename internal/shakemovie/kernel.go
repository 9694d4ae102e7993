package shakemovie

import (
	"fmt"
	"math"
)

// Kernel is an integer splat stencil of size (2*RadiusX+1) x (2*RadiusY+1),
// stored row-major.
type Kernel struct {
	RadiusX int
	RadiusY int
	Weights []int
}

// SizeX is the stencil width.
func (k *Kernel) SizeX() int { return 2*k.RadiusX + 1 }

// SizeY is the stencil height.
func (k *Kernel) SizeY() int { return 2*k.RadiusY + 1 }

// At returns the weight at column kx, row ky.
func (k *Kernel) At(kx, ky int) int { return k.Weights[ky*k.SizeX()+kx] }

// Sum is the total weight, logged when kernels are built.
func (k *Kernel) Sum() int {
	s := 0
	for _, w := range k.Weights {
		s += w
	}
	return s
}

// BuildKernel returns a square Gaussian kernel of radius r with the weight at
// the corner-adjacent half cell normalized to 1.
func BuildKernel(r int) (*Kernel, error) {
	if r < 0 || r > MaxKernelRadius {
		return nil, fmt.Errorf("build kernel r=%d: %w", r, ErrKernelRadius)
	}
	size := 2*r + 1
	g := float64(r + 1)
	g4 := g * g / 4.0
	edge := float64(r) + 0.5
	factor := math.Exp(-(edge * edge) / g4)

	k := &Kernel{RadiusX: r, RadiusY: r, Weights: make([]int, size*size)}
	idx := 0
	for j := 0; j < size; j++ {
		y := float64(j - r)
		for i := 0; i < size; i++ {
			x := float64(i - r)
			k.Weights[idx] = int(math.Exp(-(x*x+y*y)/g4) / factor)
			idx++
		}
	}
	return k, nil
}

// Squish compacts the kernel vertically to toRadius rows on each side of the
// center. Absorbed rows are summed into the kept row, which is then divided by
// the compaction factor; the center row is copied as is.
func (k *Kernel) Squish(toRadius int) (*Kernel, error) {
	from := k.RadiusY
	if toRadius == from {
		return k.clone(), nil
	}
	if toRadius <= 0 || toRadius > from || from%toRadius != 0 {
		return nil, fmt.Errorf("squish %d -> %d: %w", from, toRadius, ErrKernelSquish)
	}
	sx := k.SizeX()
	sy := k.SizeY()
	f := from / toRadius

	rows := make([][]int, sy)
	for j := 0; j < sy; j++ {
		rows[j] = append([]int(nil), k.Weights[j*sx:(j+1)*sx]...)
	}
	absorb := func(start, end int) {
		for nrow := start; nrow < end; nrow += f {
			for i := 0; i < sx; i++ {
				for j := 1; j < f; j++ {
					rows[nrow][i] += rows[nrow+j][i]
				}
			}
		}
	}
	absorb(0, from)
	absorb(from+1, sy)

	out := &Kernel{RadiusX: k.RadiusX, RadiusY: toRadius, Weights: make([]int, sx*(2*toRadius+1))}
	put := func(newRow int, src []int, div int) {
		dst := out.Weights[newRow*sx : (newRow+1)*sx]
		for i := range dst {
			dst[i] = src[i] / div
		}
	}
	for n := 0; n < toRadius; n++ {
		put(n, rows[n*f], f)
		put(toRadius+1+n, rows[from+1+n*f], f)
	}
	put(toRadius, rows[from], 1)
	return out, nil
}

func (k *Kernel) clone() *Kernel {
	return &Kernel{RadiusX: k.RadiusX, RadiusY: k.RadiusY, Weights: append([]int(nil), k.Weights...)}
}

// kernelBand selects a kernel for latitudes (degrees from the north pole) at
// or below Min or at or above Max.
type kernelBand struct {
	Min, Max float64
	Kernel   *Kernel
}

// KernelTable maps latitude bands to kernels, widest kernels closest to the
// poles. The last band matches everything.
type KernelTable struct {
	bands []kernelBand
}

var (
	adaptiveMultipliers = [5]int{1, 2, 4, 15, 28}
	adaptiveMin         = [5]float64{90, 19, 10, 5, 2}
	adaptiveMax         = [5]float64{90, 161, 170, 175, 178}
)

// NewKernelTable builds the adaptive kernels from a base radius. Every kernel
// keeps its horizontal radius and is squished to the base vertical radius.
func NewKernelTable(radius int) (*KernelTable, error) {
	kernels := make([]*Kernel, len(adaptiveMultipliers))
	for n, m := range adaptiveMultipliers {
		k, err := BuildKernel(m * radius)
		if err != nil {
			return nil, fmt.Errorf("adaptive kernel #%d: %w", n, err)
		}
		if n > 0 && radius > 0 {
			k, err = k.Squish(kernels[0].RadiusY)
			if err != nil {
				return nil, fmt.Errorf("adaptive kernel #%d: %w", n, err)
			}
		}
		kernels[n] = k
		DebugLog("Kernel #%d: %dx%d sum=%d", n, k.SizeX(), k.SizeY(), k.Sum())
	}
	t := &KernelTable{}
	for n := len(kernels) - 1; n >= 0; n-- {
		t.bands = append(t.bands, kernelBand{Min: adaptiveMin[n], Max: adaptiveMax[n], Kernel: kernels[n]})
	}
	return t, nil
}

// Lookup returns the kernel for a grid row.
func (t *KernelTable) Lookup(row, height int) *Kernel {
	lat := float64(row) * 180.0 / float64(height)
	last := len(t.bands) - 1
	for _, b := range t.bands[:last] {
		if lat <= b.Min || lat >= b.Max {
			return b.Kernel
		}
	}
	return t.bands[last].Kernel
}
