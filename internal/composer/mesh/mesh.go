package mesh

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"

	"icon-studio/internal/composer/models"
)

// ErrContextUnavailable is returned when a backend cannot hand out a
// graphics context.
var ErrContextUnavailable = errors.New("graphics context unavailable")

// MaxPoints is the number of control points a render takes into account.
const MaxPoints = 10

// Params describe one mesh-gradient background.
type Params struct {
	Points     []models.MeshPoint
	Noise      float64
	Contrast   float64
	Saturation float64
	Brightness float64
}

// ParamsFrom extracts the mesh parameters of a background.
func ParamsFrom(bg models.BackgroundOptions) Params {
	return Params{
		Points:     bg.Mesh,
		Noise:      bg.Noise,
		Contrast:   bg.Contrast,
		Saturation: bg.Saturation,
		Brightness: bg.Brightness,
	}
}

// Surface is an acquired graphics context. Release must be called exactly
// once, whatever Render returned.
type Surface interface {
	Render(p Params) error
	Image() image.Image
	Release()
}

// Backend hands out graphics contexts.
type Backend interface {
	Acquire(width, height int) (Surface, error)
}

// RenderDataURL renders a background and returns it as a PNG data URL. The
// context is released on every path.
func RenderDataURL(backend Backend, width, height int, p Params) (string, error) {
	surface, err := backend.Acquire(width, height)
	if err != nil {
		return "", fmt.Errorf("acquire graphics context: %w", err)
	}
	defer surface.Release()

	if err := surface.Render(p); err != nil {
		return "", fmt.Errorf("render mesh: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, surface.Image()); err != nil {
		return "", fmt.Errorf("encode background: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
