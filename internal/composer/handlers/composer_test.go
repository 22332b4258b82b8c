package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"icon-studio/internal/composer/catalog"
	"icon-studio/internal/composer/mesh"
	"icon-studio/internal/composer/models"
	"icon-studio/internal/composer/repository"
	"icon-studio/internal/composer/service"
	"icon-studio/internal/composer/svgtree"
)

type memRecords struct {
	recs map[string]*repository.ExportRecord
}

func (m *memRecords) Create(_ context.Context, rec *repository.ExportRecord) error {
	m.recs[rec.ID] = rec
	return nil
}

func (m *memRecords) Get(_ context.Context, id string) (*repository.ExportRecord, error) {
	if rec, ok := m.recs[id]; ok {
		return rec, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memRecords) List(_ context.Context, _ int) ([]*repository.ExportRecord, error) {
	out := []*repository.ExportRecord{}
	for _, rec := range m.recs {
		out = append(out, rec)
	}
	return out, nil
}

func newApp(t *testing.T, backend mesh.Backend) *fiber.App {
	t.Helper()
	cat, err := catalog.New()
	require.NoError(t, err)

	records := &memRecords{recs: make(map[string]*repository.ExportRecord)}
	exporter := service.NewExporter(cat, backend, service.NewFileStorage(t.TempDir()), records)

	app := fiber.New()
	NewComposerHandler(exporter, nil).Register(app)
	return app
}

func do(t *testing.T, app *fiber.App, method, target, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, fiber.TestConfig{Timeout: 30 * time.Second})
	require.NoError(t, err)
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func TestHealth(t *testing.T) {
	app := newApp(t, mesh.NewCPUBackend(1))
	resp := do(t, app, http.MethodGet, "/health/live", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = do(t, app, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestIcons(t *testing.T) {
	app := newApp(t, mesh.NewCPUBackend(1))

	resp := do(t, app, http.MethodGet, "/icons", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var payload struct {
		Icons []string `json:"icons"`
	}
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &payload))
	assert.Contains(t, payload.Icons, "AcademicCap")

	resp = do(t, app, http.MethodGet, "/icons/Star", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))

	resp = do(t, app, http.MethodGet, "/icons/Nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCompose(t *testing.T) {
	app := newApp(t, mesh.NewCPUBackend(1))

	resp := do(t, app, http.MethodPost, "/compose", `{"icon":"Bolt","render":{"glass":true,"color":"#ff8800","size":300}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	root, err := svgtree.Parse(readBody(t, resp))
	require.NoError(t, err)
	assert.Equal(t, "512", root.Attrs["width"])
}

func TestExportRoundTrip(t *testing.T) {
	app := newApp(t, mesh.NewCPUBackend(1))

	resp := do(t, app, http.MethodPost, "/export", `{"icon":"Heart","format":"svg"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	id := resp.Header.Get("X-Export-Id")
	require.NotEmpty(t, id)
	body := readBody(t, resp)

	resp = do(t, app, http.MethodGet, "/exports/"+id, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rec repository.ExportRecord
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &rec))
	assert.Equal(t, "Heart", rec.IconName)
	assert.Equal(t, "svg", rec.Format)
	assert.Equal(t, len(body), rec.Bytes)

	resp = do(t, app, http.MethodGet, "/exports/"+id+"/file", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, body, readBody(t, resp))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "Heart.svg")

	resp = do(t, app, http.MethodGet, "/exports", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestExportICO(t *testing.T) {
	app := newApp(t, mesh.NewCPUBackend(1))

	resp := do(t, app, http.MethodPost, "/export", `{"format":"ico","icoSizes":[16,48]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/x-icon", resp.Header.Get("Content-Type"))
	body := readBody(t, resp)
	assert.Equal(t, "\x00\x00\x01\x00\x02\x00", body[:6])
}

func TestExportErrors(t *testing.T) {
	app := newApp(t, mesh.NewCPUBackend(1))

	resp := do(t, app, http.MethodPost, "/export", `{"render":{"color":"blue"}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, app, http.MethodPost, "/export", `{"format":"ico","icoSizes":[300]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, app, http.MethodPost, "/export", `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, app, http.MethodPost, "/export", `{"icon":"Custom","customContentType":"svg","customSvg":"<svg><g></svg>","format":"png"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = do(t, app, http.MethodGet, "/exports/unknown", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	busy := newApp(t, mesh.NewCPUBackend(0))
	resp = do(t, busy, http.MethodPost, "/export", `{}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestExportUnparsedCustomSVG(t *testing.T) {
	app := newApp(t, mesh.NewCPUBackend(1))

	resp := do(t, app, http.MethodPost, "/export", `{"icon":"Custom","customContentType":"svg","customSvg":"<svg><g></svg>"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasSuffix(readBody(t, resp), "<g></svg>"))
}

func TestErrorStatus(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, errorStatus(errors.New("boom")))
	assert.Equal(t, http.StatusBadRequest, errorStatus(models.ErrInvalidOptions))
}
