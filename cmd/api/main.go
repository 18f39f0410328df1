package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"alfredoptarigan/resume-screener/internal/app"
	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/handlers"
	"alfredoptarigan/resume-screener/pkg/logging"
)

// formOverhead leaves room for the non-file multipart fields.
const formOverhead = 1 << 20

func main() {
	cfg := config.Load()

	log := logging.New(cfg.Server.LogLevel)
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Error("configuration rejected", "error", err)
		os.Exit(1)
	}
	log.Info("config loaded", "env", cfg.Server.Env, "backend", cfg.Gemini.Backend, "model", cfg.Gemini.Model)

	ctx := context.Background()
	pipeline, err := app.NewPipeline(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize services", "error", err)
		os.Exit(1)
	}

	screeningHandler := handlers.NewScreeningHandler(pipeline.Screening, cfg.Upload.MaxFiles, cfg.Scoring.ScreenTimeout, cfg.Email, log)
	emailHandler := handlers.NewEmailHandler(pipeline.Composer, cfg.Email)
	summaryHandler := handlers.NewSummaryHandler(pipeline.Summarizer)

	server := fiber.New(fiber.Config{
		AppName:      "Resume Screener API",
		ReadTimeout:  60 * time.Second,
		WriteTimeout: cfg.Scoring.ScreenTimeout + time.Minute,
		BodyLimit:    int(cfg.Upload.MaxFileSize)*cfg.Upload.MaxFiles + formOverhead,
		ErrorHandler: handlers.ErrorHandler(log),
	})

	server.Use(recover.New())
	server.Use(requestid.New())
	server.Use(logger.New(logger.Config{
		Format:     "[${time}] ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	server.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	api := server.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":        "healthy",
			"ai_configured": pipeline.Client.Configured(),
			"time":          time.Now(),
		})
	})

	api.Post("/screen", screeningHandler.HandleScreen)
	api.Post("/jd/summary", summaryHandler.HandleSummary)
	api.Post("/email", emailHandler.HandleCompose)

	server.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Resume Screener API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/screen",
				"POST /api/v1/jd/summary",
				"POST /api/v1/email",
				"GET /api/v1/health",
			},
		})
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("shutting down server")
		if err := server.ShutdownWithTimeout(30 * time.Second); err != nil {
			log.Error("server forced to shutdown", "error", err)
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("server starting", "addr", addr)

	if err := server.Listen(addr); err != nil {
		log.Error("failed to start server", "error", err)
		os.Exit(1)
	}
}
