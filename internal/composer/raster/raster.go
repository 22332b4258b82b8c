package raster

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"math"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"

	"icon-studio/internal/common/logging"
	"icon-studio/internal/composer/svgtree"
)

// ============================================================
// Rasterizer
// ============================================================

var errNotDataURL = errors.New("not a base64 data url")

// Rasterizer draws composed documents into RGBA images. Embedded raster
// images are drawn first, in document order, then the vector content.
type Rasterizer struct {
	log *logging.Logger
}

func NewRasterizer() *Rasterizer {
	return &Rasterizer{
		log: logging.New("raster"),
	}
}

// Rasterize draws the document onto a size x size canvas.
func (r *Rasterizer) Rasterize(svg string, size int) (*image.RGBA, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid raster size %d", size)
	}

	root, err := svgtree.Parse(svg)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	normalized, images := normalize(root)

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	unit := float64(size) / viewportWidth(root)

	for _, p := range images {
		if err := drawPlacement(img, p, unit); err != nil {
			r.log.Warn("skipping embedded image: %v", err)
		}
	}

	icon, err := oksvg.ReadIconStream(strings.NewReader(svgtree.Serialize(normalized)))
	if err != nil {
		return nil, fmt.Errorf("read vector content: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	r.log.Debug("Rasterize", "%dpx, %d embedded images", size, len(images))
	return img, nil
}

// viewportWidth is the width of the root's user space.
func viewportWidth(root *svgtree.Node) float64 {
	if vb, ok := root.Attr("viewBox"); ok {
		f := strings.FieldsFunc(vb, func(r rune) bool { return r == ',' || r == ' ' })
		if len(f) == 4 {
			if w := number(f[2], 0); w > 0 {
				return w
			}
		}
	}
	if w := number(root.Attrs["width"], 0); w > 0 {
		return w
	}
	return 512
}

// drawPlacement scales the decoded image into its box, clipped to rounded
// corners when the placement carries a clip radius.
func drawPlacement(dst *image.RGBA, p Placement, unit float64) error {
	src, err := DecodeDataURL(p.Href)
	if err != nil {
		return err
	}

	rect := image.Rect(
		int(math.Round(p.X*unit)),
		int(math.Round(p.Y*unit)),
		int(math.Round((p.X+p.W)*unit)),
		int(math.Round((p.Y+p.H)*unit)),
	)
	if rect.Empty() {
		return nil
	}

	scaled := image.NewRGBA(rect)
	draw.CatmullRom.Scale(scaled, rect, src, src.Bounds(), draw.Src, nil)

	var mask image.Image
	if p.ClipRadius >= 0 {
		mask = roundedMask(rect, p.ClipRadius*unit)
	}
	draw.DrawMask(dst, rect, scaled, rect.Min, mask, rect.Min, draw.Over)
	return nil
}

// roundedMask returns an alpha mask of a rounded rectangle filling rect, with
// 4x4 supersampling along the corners.
func roundedMask(rect image.Rectangle, radius float64) *image.Alpha {
	mask := image.NewAlpha(rect)
	w, h := float64(rect.Dx()), float64(rect.Dy())
	radius = math.Min(radius, math.Min(w, h)/2)

	inside := func(x, y float64) bool {
		cx := math.Max(radius, math.Min(w-radius, x))
		cy := math.Max(radius, math.Min(h-radius, y))
		dx, dy := x-cx, y-cy
		return dx*dx+dy*dy <= radius*radius
	}

	const samples = 4
	for py := 0; py < rect.Dy(); py++ {
		for px := 0; px < rect.Dx(); px++ {
			hits := 0
			for sy := 0; sy < samples; sy++ {
				for sx := 0; sx < samples; sx++ {
					x := float64(px) + (float64(sx)+0.5)/samples
					y := float64(py) + (float64(sy)+0.5)/samples
					if inside(x, y) {
						hits++
					}
				}
			}
			mask.SetAlpha(rect.Min.X+px, rect.Min.Y+py, color.Alpha{A: uint8(hits * 255 / (samples * samples))})
		}
	}
	return mask
}

// DecodeDataURL decodes a base64 data URL holding a PNG or JPEG image.
func DecodeDataURL(href string) (image.Image, error) {
	meta, payload, ok := strings.Cut(href, ",")
	if !ok || !strings.HasPrefix(meta, "data:") || !strings.HasSuffix(meta, ";base64") {
		return nil, errNotDataURL
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, fmt.Errorf("decode data url: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode embedded image: %w", err)
	}
	return img, nil
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
