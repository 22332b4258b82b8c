package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExportRequestIsValid(t *testing.T) {
	req := NewExportRequest()
	require.NoError(t, req.Validate())
	assert.Len(t, req.Background.Mesh, 5)
	assert.False(t, req.Render.Layered())
}

func TestWithDefaults(t *testing.T) {
	req := ExportRequest{Format: FormatICO}.WithDefaults()

	assert.Equal(t, DefaultIcon, req.Icon)
	assert.Equal(t, DefaultColor, req.Render.Color)
	assert.Equal(t, float64(DefaultIconSize), req.Render.Size)
	assert.Equal(t, []int{16, 32, 48, 256}, req.ICOSizes)
	require.NoError(t, req.Validate())

	req.ICOSizes[0] = 64
	assert.Equal(t, 16, DefaultICOSizes[0])
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ExportRequest)
	}{
		{"short color", func(r *ExportRequest) { r.Render.Color = "#fff" }},
		{"named color", func(r *ExportRequest) { r.Render.Color = "red" }},
		{"non hex color", func(r *ExportRequest) { r.Render.Color = "#gg0000" }},
		{"zero size", func(r *ExportRequest) { r.Render.Size = 0 }},
		{"bad border color", func(r *ExportRequest) {
			r.Background.BorderStroke = 4
			r.Background.BorderColor = "white"
		}},
		{"opacity over 100", func(r *ExportRequest) { r.Background.BorderOpacity = 101 }},
		{"negative radius", func(r *ExportRequest) { r.Background.BorderRadius = -1 }},
		{"bad mesh color", func(r *ExportRequest) { r.Background.Mesh[2].Color = "#12345" }},
		{"unknown format", func(r *ExportRequest) { r.Format = "gif" }},
		{"png too large", func(r *ExportRequest) {
			r.Format = FormatPNG
			r.PNGSize = 8192
		}},
		{"ico size 512", func(r *ExportRequest) {
			r.Format = FormatICO
			r.ICOSizes = []int{16, 512}
		}},
		{"custom without content", func(r *ExportRequest) {
			r.Icon = CustomIcon
			r.ContentType = CustomSVG
		}},
		{"custom without kind", func(r *ExportRequest) {
			r.Icon = CustomIcon
			r.CustomSVG = "<svg/>"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := NewExportRequest().WithDefaults()
			tt.mutate(&req)
			assert.ErrorIs(t, req.Validate(), ErrInvalidOptions)
		})
	}
}

func TestValidateBorderColorIgnoredWithoutStroke(t *testing.T) {
	req := NewExportRequest()
	req.Background.BorderColor = "transparent"
	assert.NoError(t, req.Validate())
}

func TestFormatContentType(t *testing.T) {
	assert.Equal(t, "image/svg+xml", FormatSVG.ContentType())
	assert.Equal(t, "image/png", FormatPNG.ContentType())
	assert.Equal(t, "image/x-icon", FormatICO.ContentType())
}
