package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"icon-studio/internal/common/logging"
	"icon-studio/internal/composer/mesh"
	"icon-studio/internal/composer/models"
	"icon-studio/internal/composer/repository"
	"icon-studio/internal/composer/service"
	"icon-studio/internal/composer/svgtree"
)

// ============================================================
// Composer Handler
// ============================================================

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type ComposerHandler struct {
	exporter *service.Exporter
	db       Pinger
	log      *logging.Logger
}

// NewComposerHandler builds the handler. db may be nil.
func NewComposerHandler(exporter *service.Exporter, db Pinger) *ComposerHandler {
	return &ComposerHandler{
		exporter: exporter,
		db:       db,
		log:      logging.New("http"),
	}
}

// Register mounts the routes on r.
func (h *ComposerHandler) Register(r fiber.Router) {
	r.Get("/health/live", h.Live)
	r.Get("/health/ready", h.Ready)

	r.Get("/icons", h.ListIcons)
	r.Get("/icons/:name", h.GetIcon)
	r.Post("/compose", h.Compose)
	r.Post("/document", h.Document)
	r.Post("/export", h.Export)
	r.Get("/exports", h.ListExports)
	r.Get("/exports/:id", h.GetExport)
	r.Get("/exports/:id/file", h.GetExportFile)
}

func (h *ComposerHandler) Live(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "alive"})
}

func (h *ComposerHandler) Ready(c fiber.Ctx) error {
	if h.db != nil {
		if err := h.db.PingContext(c.Context()); err != nil {
			return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable", "error": err.Error()})
		}
	}
	return c.JSON(fiber.Map{"status": "ready"})
}

// ListIcons returns the catalog names.
func (h *ComposerHandler) ListIcons(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"icons": h.exporter.Icons()})
}

// GetIcon returns the source markup of one catalog icon.
func (h *ComposerHandler) GetIcon(c fiber.Ctx) error {
	markup, ok := h.exporter.Icon(c.Params("name"))
	if !ok {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "icon not found"})
	}
	c.Set(fiber.HeaderContentType, models.FormatSVG.ContentType())
	return c.SendString(markup)
}

// Compose returns the composed icon fragment without background.
func (h *ComposerHandler) Compose(c fiber.Ctx) error {
	req, err := decodeRequest(c)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	fragment, err := h.exporter.Fragment(req)
	if err != nil {
		return h.fail(c, "Compose", err)
	}
	c.Set(fiber.HeaderContentType, models.FormatSVG.ContentType())
	return c.SendString(fragment)
}

// Document returns the full composed SVG without recording an export.
func (h *ComposerHandler) Document(c fiber.Ctx) error {
	req, err := decodeRequest(c)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	doc, err := h.exporter.Document(req)
	if err != nil {
		return h.fail(c, "Document", err)
	}
	c.Set(fiber.HeaderContentType, models.FormatSVG.ContentType())
	return c.SendString(doc)
}

// Export renders and stores an artifact and returns its bytes.
func (h *ComposerHandler) Export(c fiber.Ctx) error {
	req, err := decodeRequest(c)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	res, err := h.exporter.Export(c.Context(), req)
	if err != nil {
		return h.fail(c, "Export", err)
	}

	c.Set(fiber.HeaderContentType, res.ContentType)
	c.Set("X-Export-Id", res.ID)
	if c.Query("download") != "" {
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+fileName(res.Icon, res.Format)+`"`)
	}
	return c.Send(res.Data)
}

func (h *ComposerHandler) ListExports(c fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit"))
	recs, err := h.exporter.History(c.Context(), limit)
	if err != nil {
		return h.fail(c, "ListExports", err)
	}
	if recs == nil {
		recs = []*repository.ExportRecord{}
	}
	return c.JSON(fiber.Map{"exports": recs})
}

func (h *ComposerHandler) GetExport(c fiber.Ctx) error {
	rec, err := h.exporter.Lookup(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, "GetExport", err)
	}
	return c.JSON(rec)
}

func (h *ComposerHandler) GetExportFile(c fiber.Ctx) error {
	rec, data, err := h.exporter.File(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, "GetExportFile", err)
	}
	format := models.Format(rec.Format)
	c.Set(fiber.HeaderContentType, format.ContentType())
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+fileName(rec.IconName, format)+`"`)
	return c.Send(data)
}

// ============================================================
// Helpers
// ============================================================

// decodeRequest reads a JSON export request over the session defaults.
func decodeRequest(c fiber.Ctx) (models.ExportRequest, error) {
	req := models.NewExportRequest()
	if len(c.Body()) == 0 {
		return req, nil
	}
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return req, errors.New("invalid json")
	}
	return req, nil
}

func (h *ComposerHandler) fail(c fiber.Ctx, method string, err error) error {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("%s: %v", method, err)
	} else {
		h.log.Debug(method, "%d: %v", status, err)
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidOptions):
		return http.StatusBadRequest
	case errors.Is(err, svgtree.ErrMalformedMarkup):
		return http.StatusUnprocessableEntity
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, mesh.ErrContextUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func fileName(icon string, format models.Format) string {
	if icon == "" {
		icon = "icon"
	}
	return icon + "." + string(format)
}
