package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"icon-studio/internal/common/config"
	"icon-studio/internal/common/logging"
	"icon-studio/internal/common/middleware"
	"icon-studio/internal/composer/catalog"
	"icon-studio/internal/composer/handlers"
	"icon-studio/internal/composer/mesh"
	"icon-studio/internal/composer/repository"
	"icon-studio/internal/composer/service"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// ============================================================
// Composer Service
// ============================================================

func main() {
	cfg := config.Load()
	if config.Env("PORT", "") == "" {
		cfg.Port = "3001"
	}
	logging.SetVerbose(cfg.Verbose)

	db, err := repository.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	repo := repository.New(db)
	if err := repo.Init(context.Background(), cfg.MigrationsPath); err != nil {
		log.Fatalf("init db: %v", err)
	}

	icons, err := catalog.New()
	if err != nil {
		log.Fatalf("load icons: %v", err)
	}

	backend := mesh.NewCPUBackend(cfg.MaxGraphicsContexts)
	exporter := service.NewExporter(icons, backend, service.NewFileStorage(cfg.ExportsDir), repo)
	composerHandler := handlers.NewComposerHandler(exporter, db)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		BodyLimit:    16 * 1024 * 1024,
		AppName:      "Icon Composer",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS())

	// ============================================================
	// Routes
	// ============================================================

	composerHandler.Register(app)

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting Icon Composer on %s (env: %s, %d icons, %d graphics contexts)",
		addr, cfg.Environment, len(icons.Names()), cfg.MaxGraphicsContexts)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
