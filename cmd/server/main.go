// @title         AI Feedback Service API
// @version       1.0
// @description   Forwards content and a context label to an LLM chat-completion API and returns its review.
// @BasePath      /
// @schemes       http
// @host          localhost:8000
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	swagger "github.com/gofiber/swagger"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	_ "github.com/artem13815/feedback/docs"

	// internal imports
	"github.com/artem13815/feedback/api/http"
	"github.com/artem13815/feedback/api/http/handlers"
	"github.com/artem13815/feedback/api/http/middleware"
	"github.com/artem13815/feedback/pkg/config"
	"github.com/artem13815/feedback/pkg/feedback"
	"github.com/artem13815/feedback/pkg/health"
	"github.com/artem13815/feedback/pkg/logging"
)

func main() {
	// Load configuration from env/.env
	cfg := config.Load()
	logging.Init(cfg.LogLevel, cfg.LogFormat)

	// One client for the whole process, shared read-only by every request
	llmClient, err := newProvider(cfg)
	if err != nil {
		logrus.Fatalf("init llm provider: %v", err)
	}
	if err := llmClient.Check(context.Background()); err != nil {
		logrus.Warnf("%s provider is not ready: %v", llmClient.Name(), err)
	}

	feedbackUC := feedback.NewService(llmClient, feedback.Options{
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Timeout:     cfg.Timeout,
		MaxInFlight: cfg.MaxInFlight,
	})
	feedbackHandler := handlers.NewFeedbackHandler(feedbackUC)

	readiness := health.NewService(llmClient)
	healthHandler := handlers.NewHealthHandler(readiness)

	app := fiber.New(fiber.Config{
		AppName:               "ai-feedback",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator:  uuid.NewString,
		ContextKey: middleware.RequestIDKey,
	}))
	app.Use(middleware.NewAccessLog(logrus.StandardLogger()))
	app.Use(cors.New())

	// Register routes
	http.Register(app, healthHandler, feedbackHandler)

	// Swagger UI
	app.Get("/swagger/*", swagger.HandlerDefault)

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		logrus.Info("shutting down")
		if err := app.ShutdownWithTimeout(cfg.Timeout + 5*time.Second); err != nil {
			logrus.Errorf("shutdown: %v", err)
		}
	}()

	// Start server
	logrus.WithFields(logrus.Fields{
		"provider": llmClient.Name(),
		"timeout":  cfg.Timeout,
	}).Infof("HTTP server listening on :%s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		logrus.Fatalf("server stopped: %v", err)
	}
}
