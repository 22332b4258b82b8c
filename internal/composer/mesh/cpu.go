package mesh

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"math/rand"
	"sync"

	"github.com/disintegration/imaging"

	"icon-studio/internal/composer/layers"
)

// ============================================================
// CPU backend
// ============================================================

// NoiseSeed keeps grain identical between exports of the same options.
const NoiseSeed = 0x1c0

var errReleased = errors.New("surface already released")

// CPUBackend renders on the CPU. At most MaxContexts surfaces are alive at
// once; Acquire fails fast instead of waiting for a free one.
type CPUBackend struct {
	slots chan struct{}
}

func NewCPUBackend(maxContexts int) *CPUBackend {
	if maxContexts < 0 {
		maxContexts = 0
	}
	return &CPUBackend{
		slots: make(chan struct{}, maxContexts),
	}
}

// InUse returns the number of surfaces not yet released.
func (b *CPUBackend) InUse() int {
	return len(b.slots)
}

func (b *CPUBackend) Acquire(width, height int) (Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid surface size %dx%d", width, height)
	}
	select {
	case b.slots <- struct{}{}:
	default:
		return nil, ErrContextUnavailable
	}
	return &cpuSurface{
		backend: b,
		img:     image.NewNRGBA(image.Rect(0, 0, width, height)),
	}, nil
}

type cpuSurface struct {
	backend  *CPUBackend
	img      *image.NRGBA
	once     sync.Once
	released bool
}

func (s *cpuSurface) Image() image.Image {
	return s.img
}

func (s *cpuSurface) Release() {
	s.once.Do(func() {
		s.released = true
		s.img = nil
		<-s.backend.slots
	})
}

type point struct {
	x, y    float64
	r, g, b float64
}

func (s *cpuSurface) Render(p Params) error {
	if s.released {
		return errReleased
	}

	points := p.Points
	if len(points) > MaxPoints {
		points = points[:MaxPoints]
	}
	parsed := make([]point, 0, len(points))
	for i, mp := range points {
		rgb := layers.ParseRGB(mp.Color)
		if math.IsNaN(rgb.R) || math.IsNaN(rgb.G) || math.IsNaN(rgb.B) {
			return fmt.Errorf("mesh point %d: bad color %q", i, mp.Color)
		}
		parsed = append(parsed, point{x: mp.X / 100, y: mp.Y / 100, r: rgb.R, g: rgb.G, b: rgb.B})
	}

	blend(s.img, parsed, p.Noise/100*0.1)

	out := s.img
	if p.Contrast != 0 {
		out = imaging.AdjustContrast(out, p.Contrast)
	}
	if p.Saturation != 0 {
		out = imaging.AdjustSaturation(out, p.Saturation)
	}
	if p.Brightness != 0 {
		out = imaging.AdjustBrightness(out, p.Brightness)
	}
	s.img = out
	return nil
}

// blend fills img with the inverse-distance-squared mix of the points over
// the first point's color, then adds grain of the given ratio.
func blend(img *image.NRGBA, points []point, noiseRatio float64) {
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())

	var base point
	if len(points) > 0 {
		base = points[0]
	}
	rng := rand.New(rand.NewSource(NoiseSeed))

	for py := b.Min.Y; py < b.Max.Y; py++ {
		v := (float64(py-b.Min.Y) + 0.5) / h
		for px := b.Min.X; px < b.Max.X; px++ {
			u := (float64(px-b.Min.X) + 0.5) / w

			weight := 1.0
			r, g, bl := base.r, base.g, base.b
			for _, pt := range points {
				dx, dy := u-pt.x, v-pt.y
				wt := 1 / (dx*dx + dy*dy + 1e-4)
				r += pt.r * wt
				g += pt.g * wt
				bl += pt.b * wt
				weight += wt
			}
			r, g, bl = r/weight, g/weight, bl/weight

			if noiseRatio > 0 {
				grain := (rng.Float64() - 0.5) * 2 * noiseRatio * 255
				r, g, bl = r+grain, g+grain, bl+grain
			}

			img.SetNRGBA(px, py, color.NRGBA{R: clamp(r), G: clamp(g), B: clamp(bl), A: 255})
		}
	}
}

func clamp(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}
