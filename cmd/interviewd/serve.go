package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/interviewkit/interviewkit"
	"github.com/interviewkit/interviewkit/config"
	"github.com/interviewkit/interviewkit/core"
	"github.com/interviewkit/interviewkit/engine"
	"github.com/interviewkit/interviewkit/httpapi"
	"github.com/interviewkit/interviewkit/logging"
	"github.com/interviewkit/interviewkit/model"
	anthropicmodel "github.com/interviewkit/interviewkit/model/anthropic"
	geminimodel "github.com/interviewkit/interviewkit/model/gemini"
	openaimodel "github.com/interviewkit/interviewkit/model/openai"
	"github.com/interviewkit/interviewkit/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interview HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&resumesFile, "resumes", "r", "", "JSON file with candidate resumes to preload")
}

func serve(ctx context.Context) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, zapLogger, err := logging.NewZapLogger(cfg.Logging.JSON, cfg.Logging.Debug)
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	zapLogger.Info("starting interviewd",
		zap.String("version", version),
		zap.String("provider", cfg.Model.Provider),
	)

	llm, err := buildModel(ctx, cfg.Model)
	if err != nil {
		return fmt.Errorf("building model provider: %w", err)
	}

	resumes := store.NewInMemoryResumeStore()
	if resumesFile != "" {
		count, err := loadResumes(resumes, resumesFile)
		if err != nil {
			return fmt.Errorf("loading resumes from %s: %w", resumesFile, err)
		}
		zapLogger.Info("preloaded resumes", zap.Int("count", count))
	}
	results := store.NewInMemoryResultStore()

	kit := interviewkit.New(func(o *interviewkit.Options) {
		o.Model = llm
		o.ResumeStore = resumes
		o.ResultStore = results
		o.Logger = logger
		o.EngineConfig = engine.Config{
			MinQuestions:      cfg.Interview.MinQuestions,
			InactivityTimeout: cfg.Interview.InactivityTimeout,
			SweepInterval:     cfg.Interview.SweepInterval,
		}
	})
	defer kit.Close()

	srv := httpapi.New(kit.Engine(), func(o *httpapi.Options) {
		o.Addr = cfg.Server.Addr
		o.ReadTimeout = cfg.Server.ReadTimeout
		o.WriteTimeout = cfg.Server.WriteTimeout
		o.Results = results
		o.Logger = logger
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		zapLogger.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

// buildModel constructs the configured provider. Providers read their API
// keys from their usual environment variables unless the config overrides.
func buildModel(ctx context.Context, cfg config.ModelConfig) (model.Model, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "openai", "":
		return openaimodel.NewModel(func(o *openaimodel.Options) {
			if cfg.Name != "" {
				o.Model = cfg.Name
			}
		}), nil
	case "anthropic":
		return anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			if cfg.Name != "" {
				o.Model = anthropic.Model(cfg.Name)
			}
			o.APIKey = cfg.APIKey
		}), nil
	case "gemini":
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		return geminimodel.NewModel(ctx, func(o *geminimodel.Options) {
			o.Model = cfg.Name
			o.APIKey = apiKey
		})
	case "mock":
		return model.NewMockModel("mock"), nil
	default:
		return nil, fmt.Errorf("unsupported model provider: %s", cfg.Provider)
	}
}

// loadResumes reads a JSON object mapping candidate names to resume facts.
func loadResumes(dst *store.InMemoryResumeStore, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var byName map[string]core.ResumeFacts
	if err := json.Unmarshal(data, &byName); err != nil {
		return 0, fmt.Errorf("parse resumes: %w", err)
	}
	for name, facts := range byName {
		dst.Put(name, facts)
	}
	return len(byName), nil
}
