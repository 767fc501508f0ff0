package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/Shivamm1101/doc-ai/internal/app"
	"github.com/Shivamm1101/doc-ai/internal/config"
	"github.com/Shivamm1101/doc-ai/internal/core/ingestion_engine"
	"github.com/Shivamm1101/doc-ai/internal/logger"
	"github.com/Shivamm1101/doc-ai/internal/models"
	"github.com/Shivamm1101/doc-ai/internal/services"
)

type searcher interface {
	Search(ctx context.Context, query string, k int) ([]models.ChunkMatch, error)
	Answer(ctx context.Context, query string, k int) (*services.SearchResult, error)
	Records(ctx context.Context, keyword string, limit int) ([]models.RecordMatch, error)
}

type documentLister interface {
	List(ctx context.Context) ([]models.DocumentSummary, error)
}

// appServices is what the commands need from a wired application.
type appServices struct {
	Ingestor  ingestion_engine.Ingestor
	Previewer ingestion_engine.Previewer
	Search    searcher
	Documents documentLister
	Close     func()
}

// buildApp wires the full application from the environment. Tests replace it.
var buildApp = func(ctx context.Context) (*appServices, error) {
	cfg := config.LoadConfig()
	lg, err := logger.New(cfg.LogMode, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	a, err := app.NewApp(ctx, cfg, lg)
	if err != nil {
		return nil, err
	}
	return &appServices{
		Ingestor:  a.Pipeline,
		Previewer: a.Pipeline,
		Search:    a.Search,
		Documents: a.Documents,
		Close: func() {
			a.Close()
			lg.Sync()
		},
	}, nil
}

var rootCmd = &cobra.Command{
	Use:   "docai",
	Short: "Ingest and query construction PDFs",
	Long: `docai classifies construction PDFs, extracts their cost, schedule,
regulatory and approval records, and indexes their text for semantic search.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func withServices(cmd *cobra.Command, fn func(ctx context.Context, svc *appServices) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, err := buildApp(ctx)
	if err != nil {
		return err
	}
	if svc == nil {
		return errors.New("application not configured")
	}
	if svc.Close != nil {
		defer svc.Close()
	}
	return fn(ctx, svc)
}
