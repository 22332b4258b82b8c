package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/google/uuid"

	"icon-studio/internal/common/logging"
	"icon-studio/internal/composer/catalog"
	"icon-studio/internal/composer/ico"
	"icon-studio/internal/composer/mapper"
	"icon-studio/internal/composer/mesh"
	"icon-studio/internal/composer/models"
	"icon-studio/internal/composer/raster"
	"icon-studio/internal/composer/repository"
)

// backgroundSize is the edge of the mesh background image.
const backgroundSize = 512

// Records persists export history.
type Records interface {
	Create(ctx context.Context, rec *repository.ExportRecord) error
	Get(ctx context.Context, id string) (*repository.ExportRecord, error)
	List(ctx context.Context, limit int) ([]*repository.ExportRecord, error)
}

// Result is one rendered artifact.
type Result struct {
	ID          string
	Icon        string
	Format      models.Format
	ContentType string
	Data        []byte
	Path        string
}

// ============================================================
// Exporter
// ============================================================

// Exporter runs the whole pipeline: artwork lookup, icon composition, mesh
// background, final composition and encoding.
type Exporter struct {
	catalog    *catalog.Catalog
	composer   *mapper.Composer
	compositor *mapper.Compositor
	backend    mesh.Backend
	rasterizer *raster.Rasterizer
	storage    *FileStorage
	records    Records
	log        *logging.Logger
}

// NewExporter wires an exporter. storage and records may be nil, in which
// case Export renders without persisting.
func NewExporter(cat *catalog.Catalog, backend mesh.Backend, storage *FileStorage, records Records) *Exporter {
	return &Exporter{
		catalog:    cat,
		composer:   mapper.NewComposer(),
		compositor: mapper.NewCompositor(),
		backend:    backend,
		rasterizer: raster.NewRasterizer(),
		storage:    storage,
		records:    records,
		log:        logging.New("export"),
	}
}

// Fragment returns the composed icon markup without background.
func (e *Exporter) Fragment(req models.ExportRequest) (string, error) {
	req = req.WithDefaults()
	if err := req.Validate(); err != nil {
		return "", err
	}
	art, err := e.artwork(req)
	if err != nil {
		return "", err
	}
	return e.composer.Compose(art.Markup, art.Adjust(req.Render)), nil
}

// Document returns the final composed SVG document.
func (e *Exporter) Document(req models.ExportRequest) (string, error) {
	req = req.WithDefaults()
	if err := req.Validate(); err != nil {
		return "", err
	}
	return e.document(req)
}

func (e *Exporter) document(req models.ExportRequest) (string, error) {
	art, err := e.artwork(req)
	if err != nil {
		return "", err
	}
	fragment := e.composer.Compose(art.Markup, art.Adjust(req.Render))

	background, err := mesh.RenderDataURL(e.backend, backgroundSize, backgroundSize, mesh.ParamsFrom(req.Background))
	if err != nil {
		return "", err
	}

	doc, err := e.compositor.Compose(req.Background, background, fragment)
	if err != nil {
		return "", fmt.Errorf("compose document: %w", err)
	}
	return doc, nil
}

func (e *Exporter) artwork(req models.ExportRequest) (catalog.Artwork, error) {
	art, err := e.catalog.Resolve(req)
	if err != nil {
		return catalog.Artwork{}, fmt.Errorf("%w: %w", models.ErrInvalidOptions, err)
	}
	return art, nil
}

// Render produces the artifact bytes for req without persisting them.
func (e *Exporter) Render(req models.ExportRequest) (*Result, error) {
	req = req.WithDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	doc, err := e.document(req)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Icon:        req.Icon,
		Format:      req.Format,
		ContentType: req.Format.ContentType(),
	}
	switch req.Format {
	case models.FormatPNG:
		img, err := e.rasterizer.Rasterize(doc, req.PNGSize)
		if err != nil {
			return nil, fmt.Errorf("rasterize: %w", err)
		}
		if res.Data, err = raster.EncodePNG(img); err != nil {
			return nil, err
		}
	case models.FormatICO:
		img, err := e.rasterizer.Rasterize(doc, largest(req.ICOSizes))
		if err != nil {
			return nil, fmt.Errorf("rasterize: %w", err)
		}
		if res.Data, err = icoFrom(img, req.ICOSizes); err != nil {
			return nil, err
		}
	default:
		res.Data = []byte(doc)
	}

	e.log.Debug("Render", "%s as %s, %d bytes", res.Icon, res.Format, len(res.Data))
	return res, nil
}

// Export renders req, stores the artifact and records the export.
func (e *Exporter) Export(ctx context.Context, req models.ExportRequest) (*Result, error) {
	res, err := e.Render(req)
	if err != nil {
		return nil, err
	}
	res.ID = uuid.NewString()

	if e.storage != nil {
		if res.Path, err = e.storage.Save(res.ID, res.Format, res.Data); err != nil {
			return nil, err
		}
	}
	if e.records != nil {
		rec := &repository.ExportRecord{
			ID:       res.ID,
			IconName: res.Icon,
			Format:   string(res.Format),
			Options:  optionsJSON(req.WithDefaults()),
			Bytes:    len(res.Data),
			Path:     res.Path,
		}
		if err := e.records.Create(ctx, rec); err != nil {
			if e.storage != nil {
				if rmErr := e.storage.Remove(res.ID); rmErr != nil {
					e.log.Warn("export %s: %v", res.ID, rmErr)
				}
			}
			return nil, fmt.Errorf("record export: %w", err)
		}
	}

	e.log.Info("export %s: %s as %s (%d bytes)", res.ID, res.Icon, res.Format, len(res.Data))
	return res, nil
}

// Lookup returns a recorded export.
func (e *Exporter) Lookup(ctx context.Context, id string) (*repository.ExportRecord, error) {
	if e.records == nil {
		return nil, repository.ErrNotFound
	}
	return e.records.Get(ctx, id)
}

// History lists recent exports.
func (e *Exporter) History(ctx context.Context, limit int) ([]*repository.ExportRecord, error) {
	if e.records == nil {
		return nil, nil
	}
	return e.records.List(ctx, limit)
}

// File returns the stored artifact of a recorded export.
func (e *Exporter) File(ctx context.Context, id string) (*repository.ExportRecord, []byte, error) {
	rec, err := e.Lookup(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if e.storage == nil || rec.Path == "" {
		return nil, nil, repository.ErrNotFound
	}
	data, err := e.storage.Read(rec.Path)
	if err != nil {
		return nil, nil, errors.Join(repository.ErrNotFound, err)
	}
	return rec, data, nil
}

// Icons lists the catalog names.
func (e *Exporter) Icons() []string {
	return e.catalog.Names()
}

// Icon returns the markup of a catalog icon.
func (e *Exporter) Icon(name string) (string, bool) {
	return e.catalog.Lookup(name)
}

func largest(sizes []int) int {
	n := 0
	for _, s := range sizes {
		if s > n {
			n = s
		}
	}
	return n
}

func icoFrom(img image.Image, sizes []int) ([]byte, error) {
	data, err := ico.FromImage(img, sizes)
	if err != nil {
		return nil, fmt.Errorf("encode ico: %w", err)
	}
	return data, nil
}

// optionsJSON records the rendering options of a request, without the
// custom artwork payload.
func optionsJSON(req models.ExportRequest) json.RawMessage {
	data, err := json.Marshal(struct {
		Render     models.RenderOptions     `json:"render"`
		Background models.BackgroundOptions `json:"background"`
		PNGSize    int                      `json:"pngSize,omitempty"`
		ICOSizes   []int                    `json:"icoSizes,omitempty"`
	}{req.Render, req.Background, req.PNGSize, req.ICOSizes})
	if err != nil {
		return json.RawMessage("{}")
	}
	return data
}
