package proxy

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"icon-studio/internal/common/logging"
)

// forwardedHeaders are copied from the client request to the upstream.
var forwardedHeaders = []string{"Content-Type", "Accept", "Authorization"}

// ============================================================
// Proxy
// ============================================================

// Proxy forwards requests to one upstream service.
type Proxy struct {
	base   string
	client *http.Client
	log    *logging.Logger
}

func New(baseURL string, timeout time.Duration) *Proxy {
	return &Proxy{
		base:   strings.TrimRight(baseURL, "/"),
		client: &http.Client{Timeout: timeout},
		log:    logging.New("proxy"),
	}
}

// Mount forwards every request below prefix to the upstream, with the
// prefix removed and the query string kept.
func (p *Proxy) Mount(prefix string) fiber.Handler {
	return func(c fiber.Ctx) error {
		path := strings.TrimPrefix(c.Path(), prefix)
		if path == "" {
			path = "/"
		}
		target := p.base + path
		if q := string(c.Request().URI().QueryString()); q != "" {
			target += "?" + q
		}
		return p.Forward(c, target)
	}
}

// Forward sends the request to targetURL and copies the response back.
func (p *Proxy) Forward(c fiber.Ctx, targetURL string) error {
	p.log.Debug("Forward", "%s %s -> %s (%d bytes)", c.Method(), c.Path(), targetURL, len(c.Body()))

	req, err := http.NewRequestWithContext(c.Context(), c.Method(), targetURL, bytes.NewReader(c.Body()))
	if err != nil {
		p.log.Error("build request: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "proxy failed"})
	}
	for _, key := range forwardedHeaders {
		if v := c.Get(key); v != "" {
			req.Header.Set(key, v)
		}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.log.Error("%s: %v", targetURL, err)
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": "failed to reach upstream service"})
	}
	defer resp.Body.Close()

	return copyResponse(c, resp)
}

// Check reports whether the upstream answers its readiness probe.
func (p *Proxy) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.base+"/health/ready", nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("upstream unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upstream not ready: %s", resp.Status)
	}
	return nil
}

func copyResponse(c fiber.Ctx, resp *http.Response) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": "invalid upstream response"})
	}

	for key, values := range resp.Header {
		if len(values) > 0 && key != "Content-Length" {
			c.Set(key, values[0])
		}
	}

	c.Status(resp.StatusCode)
	return c.Send(data)
}
