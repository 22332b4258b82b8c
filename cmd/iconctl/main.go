package main

import (
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"icon-studio/internal/common/config"
	"icon-studio/internal/common/logging"
	"icon-studio/internal/composer/catalog"
	"icon-studio/internal/composer/mesh"
	"icon-studio/internal/composer/models"
	"icon-studio/internal/composer/service"
)

// ============================================================
// iconctl
// ============================================================

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			log.Printf("[ICONCTL] %v", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	req := models.NewExportRequest()
	fs := flag.NewFlagSet("iconctl", flag.ContinueOnError)

	var (
		list     = fs.Bool("list", false, "list the built-in icons and exit")
		custom   = fs.String("custom", "", "custom artwork file (.svg or .png)")
		out      = fs.String("out", "", "output file, stdout when empty")
		format   = fs.String("format", string(models.FormatSVG), "svg, png or ico")
		icoSizes = fs.String("ico-sizes", "16,32,48,256", "comma separated ico sizes")
		flat     = fs.Bool("flat", false, "disable the 3D bevel")
		verbose  = fs.String("verbose", config.Env("VERBOSE", ""), "debug log filter")
	)
	fs.StringVar(&req.Icon, "icon", models.DefaultIcon, "built-in icon name")
	fs.StringVar(&req.Render.Color, "color", models.DefaultColor, "icon color #RRGGBB")
	fs.Float64Var(&req.Render.Size, "size", models.DefaultIconSize, "icon size on the 512 canvas")
	fs.Float64Var(&req.Render.OffsetX, "offset-x", 0, "horizontal icon offset")
	fs.Float64Var(&req.Render.OffsetY, "offset-y", 0, "vertical icon offset")
	fs.BoolVar(&req.Render.Glow, "glow", false, "add glow layers")
	fs.BoolVar(&req.Render.Glass, "glass", false, "add glass layers")
	fs.Float64Var(&req.Background.BorderRadius, "radius", models.DefaultBorderRadius, "corner radius")
	fs.Float64Var(&req.Background.BorderStroke, "stroke", 0, "border stroke width, 0 for none")
	fs.StringVar(&req.Background.BorderColor, "stroke-color", models.DefaultBorderColor, "border color #RRGGBB")
	fs.Float64Var(&req.Background.BorderOpacity, "stroke-opacity", models.DefaultBorderOpacity, "border opacity 0..100")
	fs.Float64Var(&req.Background.Background3DRotation, "rotation", 0, "3D bevel light rotation in degrees")
	fs.Float64Var(&req.Background.Noise, "noise", 0, "background grain 0..100")
	fs.Float64Var(&req.Background.Contrast, "contrast", 0, "background contrast -100..100")
	fs.Float64Var(&req.Background.Saturation, "saturation", 0, "background saturation -100..100")
	fs.Float64Var(&req.Background.Brightness, "brightness", 0, "background brightness -100..100")
	fs.IntVar(&req.PNGSize, "png-size", models.DefaultPNGSize, "png edge in pixels")

	if err := fs.Parse(args); err != nil {
		return err
	}
	logging.SetVerbose(*verbose)

	icons, err := catalog.New()
	if err != nil {
		return err
	}
	if *list {
		for _, name := range icons.Names() {
			fmt.Fprintln(stdout, name)
		}
		return nil
	}

	req.Format = models.Format(strings.ToLower(*format))
	req.Background.Background3D = !*flat
	if req.ICOSizes, err = parseSizes(*icoSizes); err != nil {
		return err
	}
	if *custom != "" {
		if err := loadCustom(&req, *custom); err != nil {
			return err
		}
	}

	exporter := service.NewExporter(icons, mesh.NewCPUBackend(1), nil, nil)
	res, err := exporter.Render(req)
	if err != nil {
		return err
	}

	if *out == "" {
		_, err = stdout.Write(res.Data)
		return err
	}
	if err := os.WriteFile(*out, res.Data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	log.Printf("[ICONCTL] wrote %s (%d bytes)", *out, len(res.Data))
	return nil
}

func parseSizes(value string) ([]int, error) {
	var sizes []int
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("bad ico size %q", part)
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}

func loadCustom(req *models.ExportRequest, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read custom artwork: %w", err)
	}
	req.Icon = models.CustomIcon
	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg":
		req.ContentType = models.CustomSVG
		req.CustomSVG = string(data)
	case ".png":
		req.ContentType = models.CustomPNG
		req.CustomPNG = base64.StdEncoding.EncodeToString(data)
	default:
		return fmt.Errorf("custom artwork must be .svg or .png, got %s", filepath.Base(path))
	}
	return nil
}
