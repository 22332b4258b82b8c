package models

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidOptions is returned by Validate for requests that must not reach
// the pipeline.
var ErrInvalidOptions = errors.New("invalid options")

// ============================================================
// Render options
// ============================================================

// RenderOptions drive the composition of the icon fragment. Size and offsets
// are in units of the 512x512 canvas.
type RenderOptions struct {
	Glow    bool    `json:"glow"`
	Glass   bool    `json:"glass"`
	Color   string  `json:"color"`
	Size    float64 `json:"size"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

// Layered reports whether the icon is rebuilt from synthesized layers.
func (o RenderOptions) Layered() bool {
	return o.Glow || o.Glass
}

// MeshPoint is one control point of the mesh gradient. X and Y are
// percentages of the canvas and may lie outside 0..100.
type MeshPoint struct {
	Color string  `json:"color"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// BackgroundOptions drive the background compositor and the mesh backend.
type BackgroundOptions struct {
	BorderRadius         float64     `json:"borderRadius"`
	BorderStroke         float64     `json:"borderStroke"`
	BorderColor          string      `json:"borderColor"`
	BorderOpacity        float64     `json:"borderOpacity"`
	Background3D         bool        `json:"background3D"`
	Background3DRotation float64     `json:"background3DRotation"`
	Mesh                 []MeshPoint `json:"mesh"`
	Noise                float64     `json:"noise"`
	Contrast             float64     `json:"contrast"`
	Saturation           float64     `json:"saturation"`
	Brightness           float64     `json:"brightness"`
}

// ============================================================
// Export request
// ============================================================

type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
	FormatICO Format = "ico"
)

// ContentType returns the MIME type of an exported artifact.
func (f Format) ContentType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatICO:
		return "image/x-icon"
	default:
		return "image/svg+xml"
	}
}

// CustomIcon is the reserved icon name for user-supplied artwork.
const CustomIcon = "Custom"

// CustomKind tells how custom artwork content is encoded.
type CustomKind string

const (
	CustomSVG CustomKind = "svg"
	CustomPNG CustomKind = "png"
)

type ExportRequest struct {
	Icon        string            `json:"icon"`
	CustomSVG   string            `json:"customSvg,omitempty"`
	CustomPNG   string            `json:"customPng,omitempty"`
	ContentType CustomKind        `json:"customContentType,omitempty"`
	Render      RenderOptions     `json:"render"`
	Background  BackgroundOptions `json:"background"`
	Format      Format            `json:"format"`
	PNGSize     int               `json:"pngSize,omitempty"`
	ICOSizes    []int             `json:"icoSizes,omitempty"`
}

// Defaults applied to a fresh editor session.
const (
	DefaultIcon          = "AcademicCap"
	DefaultColor         = "#ffffff"
	DefaultIconSize      = 250
	DefaultBorderRadius  = 120
	DefaultBorderColor   = "#ffffff"
	DefaultBorderOpacity = 100
	DefaultPNGSize       = 512
)

// DefaultICOSizes is the size set written when a request names none.
var DefaultICOSizes = []int{16, 32, 48, 256}

// DefaultMesh returns the mesh control points of a fresh session.
func DefaultMesh() []MeshPoint {
	return []MeshPoint{
		{Color: "#000000", X: -20, Y: -10},
		{Color: "#0094FF", X: 120, Y: 40},
		{Color: "#CD4E57", X: 60, Y: 110},
		{Color: "#0032FF", X: -10, Y: 80},
		{Color: "#C84BE0", X: 90, Y: -15},
	}
}

// NewExportRequest returns a request carrying the session defaults.
func NewExportRequest() ExportRequest {
	return ExportRequest{
		Icon: DefaultIcon,
		Render: RenderOptions{
			Color: DefaultColor,
			Size:  DefaultIconSize,
		},
		Background: BackgroundOptions{
			BorderRadius:  DefaultBorderRadius,
			BorderColor:   DefaultBorderColor,
			BorderOpacity: DefaultBorderOpacity,
			Background3D:  true,
			Mesh:          DefaultMesh(),
		},
		Format: FormatSVG,
	}
}

// WithDefaults fills the zero-valued fields a client may omit.
func (r ExportRequest) WithDefaults() ExportRequest {
	if r.Icon == "" {
		r.Icon = DefaultIcon
	}
	if r.Format == "" {
		r.Format = FormatSVG
	}
	if r.Render.Color == "" {
		r.Render.Color = DefaultColor
	}
	if r.Render.Size == 0 {
		r.Render.Size = DefaultIconSize
	}
	if r.Background.BorderColor == "" {
		r.Background.BorderColor = DefaultBorderColor
	}
	if len(r.Background.Mesh) == 0 {
		r.Background.Mesh = DefaultMesh()
	}
	if r.PNGSize == 0 {
		r.PNGSize = DefaultPNGSize
	}
	if len(r.ICOSizes) == 0 {
		r.ICOSizes = append([]int(nil), DefaultICOSizes...)
	}
	return r
}

// ============================================================
// Validation
// ============================================================

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// IsHexColor reports whether s is a #RRGGBB color.
func IsHexColor(s string) bool {
	return hexColor.MatchString(s)
}

// Validate checks every field the pipeline does arithmetic on.
func (r ExportRequest) Validate() error {
	if !IsHexColor(r.Render.Color) {
		return fmt.Errorf("%w: icon color %q is not #RRGGBB", ErrInvalidOptions, r.Render.Color)
	}
	if r.Render.Size <= 0 {
		return fmt.Errorf("%w: icon size must be positive", ErrInvalidOptions)
	}
	if r.Background.BorderStroke > 0 && !IsHexColor(r.Background.BorderColor) {
		return fmt.Errorf("%w: border color %q is not #RRGGBB", ErrInvalidOptions, r.Background.BorderColor)
	}
	if r.Background.BorderOpacity < 0 || r.Background.BorderOpacity > 100 {
		return fmt.Errorf("%w: border opacity must be within 0..100", ErrInvalidOptions)
	}
	if r.Background.BorderRadius < 0 || r.Background.BorderStroke < 0 {
		return fmt.Errorf("%w: border radius and stroke must not be negative", ErrInvalidOptions)
	}
	for i, p := range r.Background.Mesh {
		if !IsHexColor(p.Color) {
			return fmt.Errorf("%w: mesh point %d color %q is not #RRGGBB", ErrInvalidOptions, i, p.Color)
		}
	}
	if r.Icon == CustomIcon {
		switch r.ContentType {
		case CustomSVG:
			if r.CustomSVG == "" {
				return fmt.Errorf("%w: custom svg content is empty", ErrInvalidOptions)
			}
		case CustomPNG:
			if r.CustomPNG == "" {
				return fmt.Errorf("%w: custom png content is empty", ErrInvalidOptions)
			}
		default:
			return fmt.Errorf("%w: unknown custom content type %q", ErrInvalidOptions, r.ContentType)
		}
	}

	switch r.Format {
	case FormatSVG:
	case FormatPNG:
		if r.PNGSize <= 0 || r.PNGSize > 4096 {
			return fmt.Errorf("%w: png size must be within 1..4096", ErrInvalidOptions)
		}
	case FormatICO:
		if len(r.ICOSizes) == 0 {
			return fmt.Errorf("%w: no ico sizes", ErrInvalidOptions)
		}
		for _, s := range r.ICOSizes {
			if s < 1 || s > 256 {
				return fmt.Errorf("%w: ico size %d outside 1..256", ErrInvalidOptions, s)
			}
		}
	default:
		return fmt.Errorf("%w: unknown format %q", ErrInvalidOptions, r.Format)
	}
	return nil
}
