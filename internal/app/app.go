package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Shivamm1101/doc-ai/internal/api/handlers"
	"github.com/Shivamm1101/doc-ai/internal/config"
	"github.com/Shivamm1101/doc-ai/internal/core"
	db "github.com/Shivamm1101/doc-ai/internal/core/database"
	"github.com/Shivamm1101/doc-ai/internal/core/ingestion_engine"
	"github.com/Shivamm1101/doc-ai/internal/core/llm"
	objectclient "github.com/Shivamm1101/doc-ai/internal/core/object-client"
	"github.com/Shivamm1101/doc-ai/internal/core/pdfdoc"
	"github.com/Shivamm1101/doc-ai/internal/logger"
	"github.com/Shivamm1101/doc-ai/internal/services"
)

type App struct {
	DBClient     *db.DatabaseClient
	ObjectClient *objectclient.S3Client
	Pipeline     *ingestion_engine.Pipeline
	Documents    *services.DocumentService
	Search       *services.SearchService
	Server       *Server

	closers []func() error
}

func NewApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	a := &App{}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	a.DBClient = dbClient
	a.closers = append(a.closers, dbClient.Close)
	log.Info("database initialized and ready")
	vectors := db.NewVectorStore(dbClient)

	var objects core.ObjectClient
	if cfg.S3Enabled() {
		s3c, err := objectclient.NewS3Client(appCtx, cfg, log)
		if err != nil {
			return nil, err
		}
		a.ObjectClient = s3c
		objects = s3c
	} else {
		log.Info("object storage not configured, uploads stay local")
	}

	provider, embedder, err := a.newProviders(appCtx, cfg)
	if err != nil {
		return nil, err
	}

	gateway := llm.NewGateway(provider, llm.RetryPolicy{
		MaxAttempts: cfg.LLMMaxAttempts,
		BaseDelay:   cfg.LLMBaseBackoff,
		MaxDelay:    cfg.LLMMaxBackoff,
	}, log)

	ingCfg := ingestion_engine.IngestConfigFromEnv(cfg)
	reader := pdfdoc.NewReader(pdfdoc.DefaultTableOptions())
	ocr := pdfdoc.NewOCR(pdfdoc.NewRasterizer(cfg.OCRDPI), log)

	chunker, err := ingestion_engine.NewChunker(ingCfg.Chunk)
	if err != nil {
		return nil, err
	}
	a.Pipeline = ingestion_engine.NewPipeline(
		objectclient.NewFileStore(objects),
		reader,
		ingestion_engine.NewClassifier(reader, ocr, gateway, ingCfg, log),
		ingestion_engine.NewStructuredExtractor(reader, gateway, ingCfg, log),
		chunker,
		ingestion_engine.NewLoader(dbClient, vectors, embedder, ingCfg, log),
		ingCfg,
		log,
	)

	queryEmbedder := llm.NewCachedEmbedder(embedder, cfg.QueryCacheSize, cfg.QueryCacheTTL, log)
	a.Documents = services.NewDocumentService(dbClient, objects, cfg.BucketName, a.Pipeline, cfg.DocumentsDir, log)
	a.Search = services.NewSearchService(queryEmbedder, vectors, dbClient, gateway, cfg.VectorCollection, log)

	a.Server = NewServer(cfg.Port,
		handlers.NewDocumentHandler(a.Documents, log),
		handlers.NewSearchHandler(a.Search, log),
		log,
	)

	ok = true
	return a, nil
}

func (a *App) newProviders(ctx context.Context, cfg *config.Config) (core.LLMProvider, core.EmbeddingProvider, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		oc := llm.OpenAIConfig{
			Token:      cfg.OpenAIAPIKey,
			BaseURL:    cfg.OpenAIBaseURL,
			Model:      cfg.GenModel,
			EmbedModel: cfg.EmbedModel,
		}
		gen, err := llm.NewOpenAILLM(oc)
		if err != nil {
			return nil, nil, err
		}
		emb, err := llm.NewOpenAIEmbedder(oc)
		if err != nil {
			return nil, nil, err
		}
		return gen, emb, nil
	default:
		gen, err := llm.NewGeminiLLM(ctx, cfg.GeminiAPIKey, cfg.GenModel)
		if err != nil {
			return nil, nil, fmt.Errorf("couldn't initialize the llm: %w", err)
		}
		a.closers = append(a.closers, gen.Close)
		emb, err := llm.NewGeminiEmbedder(ctx, cfg.GeminiAPIKey, cfg.EmbedModel)
		if err != nil {
			return nil, nil, fmt.Errorf("couldn't initialize the embedder: %w", err)
		}
		a.closers = append(a.closers, emb.Close)
		return gen, emb, nil
	}
}

// Close releases clients in reverse creation order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
	a.closers = nil
}
