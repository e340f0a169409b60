package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/mongo"

	"uistudio/app/config"
	"uistudio/app/usecase"
	"uistudio/internal/domain/entity"
	"uistudio/internal/domain/repository"
	"uistudio/internal/infrastructure/llm"
	"uistudio/internal/infrastructure/store/filesystem"
	"uistudio/internal/infrastructure/store/memory"
	mongorepo "uistudio/internal/infrastructure/store/mongodb"
	s3store "uistudio/internal/infrastructure/store/s3"
	"uistudio/internal/pipeline"
	"uistudio/internal/preview"
)

type app struct {
	cfg         *config.Config
	logger      *slog.Logger
	mongoClient *mongo.Client

	runs      repository.RunRepository
	files     repository.FileRepository
	artifacts repository.ArtifactStore
	renderer  *preview.Renderer

	generation *usecase.GenerationService
	runSvc     *usecase.RunService
	fileSvc    *usecase.FileService
}

// buildApp wires stores, collaborators and services from cfg. With persist
// unset everything is kept in memory.
func buildApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, persist bool) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	if err := a.openStores(ctx, persist); err != nil {
		return nil, err
	}

	renderer, err := preview.NewRenderer(cfg.Pipeline.PreviewCacheSize, logger)
	if err != nil {
		return nil, err
	}
	a.renderer = renderer

	backend, err := llm.New(ctx, llm.Settings{
		Provider:   cfg.LLM.Provider,
		Model:      cfg.LLM.Model,
		APIKey:     cfg.LLM.APIKey,
		BaseURL:    cfg.LLM.BaseURL,
		AuthHeader: cfg.LLM.AuthHeader,
	})
	if err != nil {
		if !errors.Is(err, entity.ErrMissingCredential) {
			return nil, fmt.Errorf("init llm: %w", err)
		}
		// Runs still start and report the missing credential to the user.
		logger.Error("llm credential missing, generation will fail", "provider", cfg.LLM.Provider)
		backend = nil
	} else {
		logger.Info("llm backend ready", "backend", backend.Name())
	}

	timeouts := pipeline.Timeouts{
		Analysis: cfg.Pipeline.AnalysisTimeout,
		Scaffold: cfg.Pipeline.ScaffoldTimeout,
		Styling:  cfg.Pipeline.StylingTimeout,
		Run:      cfg.Pipeline.RunTimeout,
	}
	collabs := pipeline.Collaborators{
		Analysis: llm.NewClient(backend, "analysis", timeouts.Analysis, logger),
		Scaffold: llm.NewClient(backend, "scaffold", timeouts.Scaffold, logger),
		Styling:  llm.NewClient(backend, "styling", timeouts.Styling, logger),
	}
	orch := pipeline.NewOrchestrator(collabs, renderer, timeouts, logger)

	a.generation = usecase.NewGenerationService(a.runs, a.files, a.artifacts, orch, logger)
	a.runSvc = usecase.NewRunService(a.runs, a.files, a.artifacts)
	a.fileSvc = usecase.NewFileService(a.runs, a.files, a.artifacts, renderer)
	return a, nil
}

func (a *app) openStores(ctx context.Context, persist bool) error {
	cfg := a.cfg
	if !persist {
		a.runs = memory.NewRunStore()
		a.files = memory.NewFileStore()
		a.artifacts = memory.NewArtifactStore()
		return nil
	}

	if cfg.Mongo.URI != "" {
		client, err := mongorepo.Connect(ctx, cfg.Mongo.URI)
		if err != nil {
			return err
		}
		a.mongoClient = client
		db := client.Database(cfg.Mongo.Database)
		a.runs = mongorepo.NewMongoRunRepo(db)
		a.files = mongorepo.NewMongoFileRepo(db)
		a.logger.Info("connected to mongo", "database", cfg.Mongo.Database)
	} else {
		a.runs = memory.NewRunStore()
		a.files = memory.NewFileStore()
		a.logger.Warn("MONGO_URI not set, keeping runs in memory")
	}

	if s3cfg := cfg.Storage.S3; s3cfg.Endpoint != "" {
		store, err := s3store.NewArtifactStore(s3store.Config{
			Endpoint:  s3cfg.Endpoint,
			Region:    s3cfg.Region,
			AccessKey: s3cfg.AccessKey,
			SecretKey: s3cfg.SecretKey,
			Bucket:    s3cfg.Bucket,
			UseSSL:    s3cfg.UseSSL,
		})
		if err != nil {
			return err
		}
		a.artifacts = store
		a.logger.Info("artifacts stored in bucket", "endpoint", s3cfg.Endpoint, "bucket", s3cfg.Bucket)
		return nil
	}

	store, err := filesystem.NewArtifactStore(cfg.Storage.ArtifactDir)
	if err != nil {
		return fmt.Errorf("err init artifact store: %w", err)
	}
	a.artifacts = store
	a.logger.Info("artifacts stored on disk", "dir", store.BasePath())
	return nil
}

func (a *app) close(ctx context.Context) {
	if a.mongoClient == nil {
		return
	}
	a.logger.Info("disconnecting mongo")
	if err := a.mongoClient.Disconnect(ctx); err != nil {
		a.logger.Error("mongo disconnect error", "err", err)
	}
}
