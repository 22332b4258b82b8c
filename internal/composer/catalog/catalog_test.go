package catalog

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"icon-studio/internal/composer/models"
	"icon-studio/internal/composer/svgtree"
)

func TestIconName(t *testing.T) {
	assert.Equal(t, "AcademicCap", IconName("academic-cap.svg"))
	assert.Equal(t, "RocketLaunch", IconName("assets/rocket-launch.svg"))
	assert.Equal(t, "Star", IconName("star"))
	assert.Equal(t, "ArrowUp", IconName("arrow--up.svg"))
}

func TestEmbeddedCatalog(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	names := c.Names()
	assert.Contains(t, names, models.DefaultIcon)
	assert.Contains(t, names, "ShieldCheck")
	assert.IsIncreasing(t, names)

	for _, name := range names {
		markup, ok := c.Lookup(name)
		require.True(t, ok)
		_, err := svgtree.Parse(markup)
		assert.NoError(t, err, name)
	}
}

func TestMarkupFallsBackToDefault(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	def, _ := c.Lookup(models.DefaultIcon)
	assert.Equal(t, def, c.Markup("NoSuchIcon"))
	_, ok := c.Lookup("NoSuchIcon")
	assert.False(t, ok)
}

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"icons/arrow-up.svg": {Data: []byte(`<svg/>`)},
		"icons/readme.txt":   {Data: []byte(`skip`)},
	}
	c, err := Load(fsys, "icons")
	require.NoError(t, err)
	assert.Equal(t, []string{"ArrowUp"}, c.Names())

	_, err = Load(fsys, "missing")
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	art, err := c.Resolve(models.ExportRequest{Icon: "Heart"})
	require.NoError(t, err)
	assert.Equal(t, "Heart", art.Name)
	assert.False(t, art.Raster)

	art, err = c.Resolve(models.ExportRequest{Icon: models.CustomIcon, ContentType: models.CustomSVG, CustomSVG: `<svg id="mine"/>`})
	require.NoError(t, err)
	assert.Equal(t, `<svg id="mine"/>`, art.Markup)

	_, err = c.Resolve(models.ExportRequest{Icon: models.CustomIcon, ContentType: models.CustomPNG, CustomPNG: "not base64!"})
	assert.ErrorIs(t, err, ErrInvalidArtwork)

	_, err = c.Resolve(models.ExportRequest{Icon: models.CustomIcon})
	assert.ErrorIs(t, err, ErrInvalidArtwork)
}

func TestResolveCustomPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 6, 3))))
	payload := base64.StdEncoding.EncodeToString(buf.Bytes())

	c, err := New()
	require.NoError(t, err)
	art, err := c.Resolve(models.ExportRequest{Icon: models.CustomIcon, ContentType: models.CustomPNG, CustomPNG: payload})
	require.NoError(t, err)
	assert.True(t, art.Raster)

	root, err := svgtree.Parse(art.Markup)
	require.NoError(t, err)
	assert.Equal(t, "0 0 6 3", root.Attrs["viewBox"])
	require.Len(t, root.Children, 1)
	assert.Equal(t, "data:image/png;base64,"+payload, root.Children[0].Attrs["href"])

	opts := art.Adjust(models.RenderOptions{Glow: true, Glass: true, Color: "#ffffff"})
	assert.False(t, opts.Glow)
	assert.False(t, opts.Glass)
	assert.Equal(t, "#ffffff", opts.Color)

	keep := Artwork{}.Adjust(models.RenderOptions{Glow: true})
	assert.True(t, keep.Glow)
}
