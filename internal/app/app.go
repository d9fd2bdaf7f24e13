package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	apphttp "github.com/yungbote/station-marker/internal/http"
	httpH "github.com/yungbote/station-marker/internal/http/handlers"
	"github.com/yungbote/station-marker/internal/modules/marking"
	"github.com/yungbote/station-marker/internal/observability"
	"github.com/yungbote/station-marker/internal/platform/logger"
	"github.com/yungbote/station-marker/internal/platform/openai"
	"github.com/yungbote/station-marker/internal/stations"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	Log     *logger.Logger
	Cfg     Config
	Catalog *stations.Catalog
	Marking *marking.Pipeline
	Server  *apphttp.Server

	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel)

	catalog, err := loadCatalog(cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}
	scoring, err := cfg.Scoring(catalog.Scoring())
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("scoring config: %w", err)
	}

	client, err := openai.NewClient(openai.Config{
		BaseURL: cfg.OpenAIBaseURL,
		APIKey:  cfg.OpenAIKey,
		Model:   cfg.OpenAIModel,
		Timeout: cfg.OpenAITimeout,
	}, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init openai client: %w", err)
	}
	if cfg.OpenAIKey == "" {
		log.Warn("OPENAI_API_KEY is not set; every marking request will fail until it is")
	}

	pipeline, err := marking.New(marking.Options{
		Catalog:           catalog,
		Generator:         marking.OpenAIGenerator{Client: client, UseSchema: cfg.UseSchema},
		Scoring:           scoring,
		Credential:        cfg.OpenAIKey,
		RequireAllAnswers: cfg.RequireAllAnswers,
		Log:               log,
	})
	if err != nil {
		log.Sync()
		return nil, err
	}

	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	server := apphttp.NewServer(cfg.Address, apphttp.RouterConfig{
		ServiceName:    serviceName,
		Log:            log,
		HealthHandler:  httpH.NewHealthHandler(),
		MarkHandler:    httpH.NewMarkHandler(log, pipeline),
		StationHandler: httpH.NewStationHandler(catalog),
	})

	log.Info("station marker ready",
		"stations", len(catalog.List()),
		"catalog_version", catalog.Version(),
		"overall_mode", scoring.Overall,
		"model", cfg.OpenAIModel,
		"schema", cfg.UseSchema,
	)
	return &App{
		Log:          log,
		Cfg:          cfg,
		Catalog:      catalog,
		Marking:      pipeline,
		Server:       server,
		otelShutdown: otelShutdown,
	}, nil
}

func loadCatalog(cfg Config) (*stations.Catalog, error) {
	if cfg.StationsFile == "" {
		cat, err := stations.LoadDefault()
		if err != nil {
			return nil, fmt.Errorf("load embedded stations: %w", err)
		}
		return cat, nil
	}
	cat, err := stations.LoadFile(cfg.StationsFile)
	if err != nil {
		return nil, fmt.Errorf("load stations from %s: %w", cfg.StationsFile, err)
	}
	return cat, nil
}

// Run serves until ctx is done or the server fails, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Log.Info("HTTP server listening", "address", a.Cfg.Address)
		return a.Server.Run()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.Log.Info("HTTP server shutting down")
		return a.Server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil && a.Log != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
