package bootstrap

import (
	"context"
	"fmt"

	"github.com/schemegpt/scheme-assistant/internal/config"
	"github.com/schemegpt/scheme-assistant/internal/core/domain"
	"github.com/schemegpt/scheme-assistant/internal/core/ports"
	"github.com/schemegpt/scheme-assistant/internal/core/usecase"
	"github.com/schemegpt/scheme-assistant/internal/infrastructure/chunking"
	"github.com/schemegpt/scheme-assistant/internal/infrastructure/extractor/pdfdoc"
	"github.com/schemegpt/scheme-assistant/internal/infrastructure/llm/ollama"
	"github.com/schemegpt/scheme-assistant/internal/infrastructure/queue/nats"
	"github.com/schemegpt/scheme-assistant/internal/infrastructure/repository/postgres"
	"github.com/schemegpt/scheme-assistant/internal/infrastructure/resilience"
	"github.com/schemegpt/scheme-assistant/internal/infrastructure/storage/localfs"
	"github.com/schemegpt/scheme-assistant/internal/infrastructure/vector/qdrant"
)

type App struct {
	Config  config.Config
	Schemes *domain.SchemeTable

	Queue     ports.MessageQueue
	Repo      ports.DocumentRepository
	IngestUC  ports.DocumentIngestor
	ProcessUC ports.DocumentProcessor
	AskUC     ports.QuestionAnswerer

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	schemes, err := config.LoadSchemeTable(cfg.SchemesConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load scheme table: %w", err)
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, ollama.WithExecutor(executor))
	embedder := ollama.NewEmbedder(ollamaClient)
	generator := ollama.NewGenerator(ollamaClient)

	vectorDB := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)
	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	extractor := pdfdoc.NewExtractor(storage)

	ingestUC := usecase.NewIngestDocumentUseCase(repo, storage, queue)
	processUC := usecase.NewProcessDocumentUseCase(repo, extractor, chunker, embedder, vectorDB, schemes)
	askUC, err := usecase.NewAskUseCase(schemes, embedder, vectorDB, generator, cfg.RAGTopK)
	if err != nil {
		queue.Close()
		_ = db.Close()
		return nil, fmt.Errorf("build ask pipeline: %w", err)
	}

	return &App{
		Config:  cfg,
		Schemes: schemes,
		Queue:   queue,
		Repo:    repo,

		IngestUC:  ingestUC,
		ProcessUC: processUC,
		AskUC:     askUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
