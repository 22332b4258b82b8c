package mesh

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"icon-studio/internal/composer/models"
)

// failingBackend hands out surfaces whose Render always fails.
type failingBackend struct {
	released int
}

type failingSurface struct {
	backend *failingBackend
}

func (b *failingBackend) Acquire(width, height int) (Surface, error) {
	return &failingSurface{backend: b}, nil
}

func (s *failingSurface) Render(Params) error { return errors.New("shader link error") }
func (s *failingSurface) Image() image.Image  { return nil }
func (s *failingSurface) Release()            { s.backend.released++ }

func decodeDataURL(t *testing.T, url string) image.Image {
	t.Helper()
	const prefix = "data:image/png;base64,"
	require.True(t, strings.HasPrefix(url, prefix))
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, prefix))
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

func TestRenderDataURL(t *testing.T) {
	backend := NewCPUBackend(1)
	p := ParamsFrom(models.NewExportRequest().Background)

	url, err := RenderDataURL(backend, 32, 16, p)
	require.NoError(t, err)
	assert.Equal(t, 0, backend.InUse())

	img := decodeDataURL(t, url)
	assert.Equal(t, image.Rect(0, 0, 32, 16), img.Bounds())
	_, _, _, a := img.At(5, 5).RGBA()
	assert.Equal(t, uint32(0xffff), a)
}

func TestRenderDataURLReleasesOnFailure(t *testing.T) {
	backend := &failingBackend{}

	_, err := RenderDataURL(backend, 8, 8, Params{})
	require.Error(t, err)
	assert.Equal(t, 1, backend.released)
}

func TestRenderDataURLReleasesOnBadColor(t *testing.T) {
	backend := NewCPUBackend(1)
	p := Params{Points: []models.MeshPoint{{Color: "blue"}}}

	_, err := RenderDataURL(backend, 8, 8, p)
	require.Error(t, err)
	assert.Equal(t, 0, backend.InUse())

	_, err = RenderDataURL(backend, 8, 8, Params{})
	assert.NoError(t, err)
}

func TestAcquireExhausted(t *testing.T) {
	backend := NewCPUBackend(1)

	first, err := backend.Acquire(4, 4)
	require.NoError(t, err)

	_, err = backend.Acquire(4, 4)
	assert.ErrorIs(t, err, ErrContextUnavailable)

	_, err = RenderDataURL(backend, 4, 4, Params{})
	assert.ErrorIs(t, err, ErrContextUnavailable)

	first.Release()
	first.Release()
	assert.Equal(t, 0, backend.InUse())

	_, err = NewCPUBackend(0).Acquire(4, 4)
	assert.ErrorIs(t, err, ErrContextUnavailable)
}

func TestRenderAfterRelease(t *testing.T) {
	s, err := NewCPUBackend(1).Acquire(4, 4)
	require.NoError(t, err)
	s.Release()
	assert.Error(t, s.Render(Params{}))
}

func TestRenderSinglePoint(t *testing.T) {
	s, err := NewCPUBackend(1).Acquire(8, 8)
	require.NoError(t, err)
	defer s.Release()

	require.NoError(t, s.Render(Params{Points: []models.MeshPoint{{Color: "#336699", X: 50, Y: 50}}}))
	r, g, b, _ := s.Image().At(0, 7).RGBA()
	assert.Equal(t, []uint32{0x33, 0x66, 0x99}, []uint32{r >> 8, g >> 8, b >> 8})
}

func TestRenderDeterministic(t *testing.T) {
	backend := NewCPUBackend(2)
	p := ParamsFrom(models.BackgroundOptions{
		Mesh:       models.DefaultMesh(),
		Noise:      80,
		Contrast:   20,
		Saturation: -30,
		Brightness: 10,
	})

	a, err := RenderDataURL(backend, 24, 24, p)
	require.NoError(t, err)
	b, err := RenderDataURL(backend, 24, 24, p)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRenderUsesAtMostTenPoints(t *testing.T) {
	points := make([]models.MeshPoint, 0, 12)
	for i := 0; i < 10; i++ {
		points = append(points, models.MeshPoint{Color: "#000000", X: float64(i * 10), Y: 50})
	}
	withExtra := append(append([]models.MeshPoint(nil), points...),
		models.MeshPoint{Color: "#ffffff", X: 50, Y: 50},
		models.MeshPoint{Color: "#ffffff", X: 0, Y: 0})

	backend := NewCPUBackend(1)
	a, err := RenderDataURL(backend, 8, 8, Params{Points: points})
	require.NoError(t, err)
	b, err := RenderDataURL(backend, 8, 8, Params{Points: withExtra})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
