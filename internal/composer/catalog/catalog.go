package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"unicode"

	"icon-studio/internal/composer/models"
	"icon-studio/internal/composer/raster"
	"icon-studio/internal/composer/svgtree"
)

//go:embed assets/*.svg
var assets embed.FS

// ErrInvalidArtwork is returned for custom artwork that cannot be used.
var ErrInvalidArtwork = errors.New("invalid custom artwork")

// ============================================================
// Catalog
// ============================================================

// Catalog maps icon names to their markup. Names are the PascalCase form of
// the kebab-case file names, academic-cap.svg being AcademicCap.
type Catalog struct {
	icons map[string]string
	names []string
}

// New loads the embedded icon set.
func New() (*Catalog, error) {
	return Load(assets, "assets")
}

// Load reads every .svg file of dir.
func Load(fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read icon dir: %w", err)
	}

	c := &Catalog{icons: make(map[string]string)}
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".svg" {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read icon %s: %w", entry.Name(), err)
		}
		name := IconName(entry.Name())
		c.icons[name] = string(data)
		c.names = append(c.names, name)
	}
	sort.Strings(c.names)
	return c, nil
}

// IconName converts a file name such as "rocket-launch.svg" to "RocketLaunch".
func IconName(fileName string) string {
	base := strings.TrimSuffix(path.Base(fileName), ".svg")
	var b strings.Builder
	for _, word := range strings.Split(base, "-") {
		if word == "" {
			continue
		}
		r := []rune(word)
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	return b.String()
}

// Names returns the icon names in sorted order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

// Lookup returns the markup of a named icon.
func (c *Catalog) Lookup(name string) (string, bool) {
	markup, ok := c.icons[name]
	return markup, ok
}

// Markup returns the named icon, or the default icon for unknown names.
func (c *Catalog) Markup(name string) string {
	if markup, ok := c.icons[name]; ok {
		return markup
	}
	return c.icons[models.DefaultIcon]
}

// ============================================================
// Artwork
// ============================================================

// Artwork is the markup fed to the composer for one request.
type Artwork struct {
	Name   string
	Markup string
	// Raster is set for uploaded bitmaps, which have no geometry to rebuild.
	Raster bool
}

// Adjust returns the options the artwork can be rendered with. Raster
// artwork cannot carry glow or glass layers.
func (a Artwork) Adjust(opts models.RenderOptions) models.RenderOptions {
	if a.Raster {
		opts.Glow = false
		opts.Glass = false
	}
	return opts
}

// Resolve picks the artwork a request refers to.
func (c *Catalog) Resolve(req models.ExportRequest) (Artwork, error) {
	if req.Icon != models.CustomIcon {
		return Artwork{Name: req.Icon, Markup: c.Markup(req.Icon)}, nil
	}

	switch req.ContentType {
	case models.CustomSVG:
		if strings.TrimSpace(req.CustomSVG) == "" {
			return Artwork{}, fmt.Errorf("%w: empty svg", ErrInvalidArtwork)
		}
		return Artwork{Name: models.CustomIcon, Markup: req.CustomSVG}, nil
	case models.CustomPNG:
		markup, err := wrapPNG(req.CustomPNG)
		if err != nil {
			return Artwork{}, err
		}
		return Artwork{Name: models.CustomIcon, Markup: markup, Raster: true}, nil
	default:
		return Artwork{}, fmt.Errorf("%w: unknown content type %q", ErrInvalidArtwork, req.ContentType)
	}
}

// wrapPNG embeds a PNG, given as a data URL or bare base64, in an svg sized
// to the image.
func wrapPNG(content string) (string, error) {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "data:") {
		content = "data:image/png;base64," + content
	}
	img, err := raster.DecodeDataURL(content)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArtwork, err)
	}

	w := fmt.Sprint(img.Bounds().Dx())
	h := fmt.Sprint(img.Bounds().Dy())
	root := svgtree.NewElement("svg", map[string]string{
		"xmlns":       "http://www.w3.org/2000/svg",
		"xmlns:xlink": "http://www.w3.org/1999/xlink",
		"width":       w,
		"height":      h,
		"viewBox":     "0 0 " + w + " " + h,
	}, svgtree.NewElement("image", map[string]string{
		"href":   content,
		"width":  w,
		"height": h,
	}))
	return svgtree.Serialize(root), nil
}
