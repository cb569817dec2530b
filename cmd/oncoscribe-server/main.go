package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/oncoscribe/oncoscribe/internal/config"
	"github.com/oncoscribe/oncoscribe/internal/domain/consultation"
	"github.com/oncoscribe/oncoscribe/internal/platform/llm"
	"github.com/oncoscribe/oncoscribe/internal/platform/middleware"
	"github.com/oncoscribe/oncoscribe/internal/platform/render"
	"github.com/oncoscribe/oncoscribe/internal/platform/schema"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "oncoscribe-server",
		Short: "Consultation note to structured report service",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(schemaCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func schemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect the canonical consultation record schema",
	}

	printCmd := &cobra.Command{
		Use:   "print",
		Short: "Print the canonical schema document",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := schema.Load(os.Getenv("SCHEMA_PATH"))
			if err != nil {
				return err
			}
			fmt.Println(string(reg.Canonical()))
			return nil
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate <record.json>",
		Short: "Validate a record file against the canonical schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := schema.Load(os.Getenv("SCHEMA_PATH"))
			if err != nil {
				return err
			}
			validator, err := schema.Compile(reg)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var value any
			if err := json.Unmarshal(data, &value); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			_, violations := validator.Check(value)
			if len(violations) == 0 {
				fmt.Println("valid")
				return nil
			}
			for _, v := range violations {
				fmt.Printf("%s: %s (%s)\n", v.Path, v.Message, v.Constraint)
			}
			return fmt.Errorf("%d violation(s)", len(violations))
		},
	}

	cmd.AddCommand(printCmd)
	cmd.AddCommand(validateCmd)
	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Schema registry and validator
	registry, err := schema.Load(cfg.SchemaPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load schema")
	}
	validator, err := schema.Compile(registry)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to compile schema")
	}
	logger.Info().Msg("schema compiled")

	// Report renderer
	renderer, err := render.New(cfg.TemplatePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load report template")
	}

	// Generation gateway
	generator, err := buildGenerator(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure generation backend")
	}
	logger.Info().Str("backend", cfg.GenerationBackend).Msg("generation backend ready")

	svc := consultation.NewService(registry, validator, generator, renderer, llm.Params{
		Temperature: cfg.GenerationTemperature,
		MaxTokens:   cfg.GenerationMaxTokens,
	}, logger)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.Sanitize())
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Content-Type", "X-Request-ID"},
	}))

	// API group
	apiV1 := e.Group("/api/v1")

	// Rate limiting middleware
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})

	// Pipeline routes
	handler := consultation.NewHandler(svc, cfg.IsDev())
	handler.RegisterRoutes(apiV1)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// buildGenerator selects the backend from configuration. Both constructors
// fail fast on incomplete settings; no provider call is made here.
func buildGenerator(cfg *config.Config) (llm.Generator, error) {
	switch cfg.GenerationBackend {
	case "openai":
		return llm.NewOpenAIClient(llm.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
			Timeout: cfg.GenerationTimeout,
		})
	case "azure":
		return llm.NewAzureClient(llm.AzureConfig{
			Endpoint:     cfg.AzureEndpoint,
			Deployment:   cfg.AzureDeployment,
			APIVersion:   cfg.AzureAPIVersion,
			TenantID:     cfg.AzureTenantID,
			ClientID:     cfg.AzureClientID,
			ClientSecret: cfg.AzureClientSecret,
			Timeout:      cfg.GenerationTimeout,
		})
	default:
		return nil, fmt.Errorf("unknown generation backend %q", cfg.GenerationBackend)
	}
}
