// Command supportmeshd runs the customer support automation daemon: an HTTP
// API in front of the workflow engine, file-backed ticket storage and an
// optional NATS handoff queue.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	openaisdk "github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"

	"github.com/hupe1980/supportmesh"
	"github.com/hupe1980/supportmesh/config"
	"github.com/hupe1980/supportmesh/handler"
	"github.com/hupe1980/supportmesh/inference"
	"github.com/hupe1980/supportmesh/inference/anthropic"
	"github.com/hupe1980/supportmesh/inference/openai"
	"github.com/hupe1980/supportmesh/logging"
	"github.com/hupe1980/supportmesh/queue"
	"github.com/hupe1980/supportmesh/server"
	"github.com/hupe1980/supportmesh/storage"
	"github.com/hupe1980/supportmesh/ticket"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "supportmeshd: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := newTicketStore(cfg)
	if err != nil {
		return err
	}

	uploader, err := storage.NewDirUploader(cfg.Server.UploadsDir, logger)
	if err != nil {
		return err
	}

	languageClassifier, issueClassifier, vision, err := newInference(cfg)
	if err != nil {
		return err
	}

	var publisher queue.Publisher
	if cfg.Queue.Enabled {
		natsPub, err := queue.NewNATSPublisher(cfg.Queue.URL, func(o *queue.NATSPublisherOptions) {
			o.Subject = cfg.Queue.Subject
			o.Logger = logger
		})
		if err != nil {
			return err
		}
		defer natsPub.Close()
		publisher = natsPub
	}

	mesh, err := supportmesh.New(languageClassifier, issueClassifier, vision, func(o *supportmesh.Options) {
		o.TicketStore = store
		o.Uploader = uploader
		o.Queue = publisher
		o.ConfidenceThreshold = cfg.Inference.ConfidenceThreshold
		o.MaxSteps = cfg.Engine.MaxSteps
		o.Logger = logger
	})
	if err != nil {
		return err
	}

	srv, err := server.New(mesh, func(o *server.Options) {
		o.Addr = cfg.Server.Addr
		o.UploadsDir = cfg.Server.UploadsDir
		o.Logger = logger
	})
	if err != nil {
		return err
	}

	logger.Info("supportmeshd starting",
		"addr", cfg.Server.Addr,
		"storage", cfg.Storage.Backend,
		"provider", cfg.Inference.Provider,
		"queue_enabled", cfg.Queue.Enabled,
	)

	if err := srv.Start(ctx); err != nil {
		return err
	}

	logger.Info("supportmeshd stopped")
	return nil
}

func newLogger(level string) logging.Logger {
	lvl := slog.LevelInfo
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	return logging.NewSlogAdapter(slog.New(h))
}

func newTicketStore(cfg *config.Config) (ticket.Store, error) {
	if cfg.Storage.Backend == "memory" {
		return ticket.NewInMemoryStore(), nil
	}
	return ticket.NewFileStore(cfg.Storage.Dir)
}

// newInference builds the classifier pair and vision analyzer for the
// configured provider. Vision stays on OpenAI for the anthropic provider; the
// anthropic adapter covers text classification only.
func newInference(cfg *config.Config) (inference.TextClassifier, inference.TextClassifier, inference.VisionAnalyzer, error) {
	switch cfg.Inference.Provider {
	case "mock":
		return inference.NewMockClassifier("en"),
			inference.NewMockClassifier("food_quality"),
			inference.NewMockVision(inference.ImageAnalysis{}),
			nil

	case "anthropic":
		var opts []anthropicopt.RequestOption
		if cfg.Inference.APIKey.IsSet() {
			opts = append(opts, anthropicopt.WithAPIKey(cfg.Inference.APIKey.Value()))
		}
		client := anthropicsdk.NewClient(opts...)

		language := anthropic.NewClassifierFromClient(&client, func(o *anthropic.ClassifierOptions) {
			o.Instructions = handler.LanguageInstructions
		})
		issues := anthropic.NewClassifierFromClient(&client, func(o *anthropic.ClassifierOptions) {
			o.Instructions = handler.ClassificationInstructions
		})
		return language, issues, openai.NewVision(), nil

	default:
		var opts []openaiopt.RequestOption
		if cfg.Inference.APIKey.IsSet() {
			opts = append(opts, openaiopt.WithAPIKey(cfg.Inference.APIKey.Value()))
		}
		client := openaisdk.NewClient(opts...)

		language := openai.NewClassifierFromClient(&client, func(o *openai.ClassifierOptions) {
			o.Instructions = handler.LanguageInstructions
		})
		issues := openai.NewClassifierFromClient(&client, func(o *openai.ClassifierOptions) {
			o.Instructions = handler.ClassificationInstructions
		})
		return language, issues, openai.NewVisionFromClient(&client), nil
	}
}
