package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Shivamm1101/doc-ai/internal/core/ingestion_engine"
)

var ingestJSON bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [paths...]",
	Short: "Ingest PDF documents",
	Long: `Classifies each PDF, extracts its structured records, and stores the
records together with the embedded text chunks. A failure in one document
does not stop the others.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output the batch report as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	return withServices(cmd, func(ctx context.Context, svc *appServices) error {
		report := svc.Ingestor.IngestMany(ctx, args)

		if ingestJSON {
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal report: %w", err)
			}
			cmd.Println(string(data))
		} else {
			outputIngestTable(cmd, report)
		}

		if report.Failed > 0 {
			return fmt.Errorf("%d of %d documents failed", report.Failed, len(report.Documents))
		}
		return nil
	})
}

func outputIngestTable(cmd *cobra.Command, report *ingestion_engine.BatchReport) {
	for _, d := range report.Documents {
		if d.Result != nil {
			cmd.Printf("  [ok]   %s -> document %d (%s, %d records, %d chunks)\n",
				d.Path, d.Result.DocumentID, d.Result.DocumentType, d.Result.Records, d.Result.Chunks)
			if len(d.Result.FailedPages) > 0 {
				cmd.Printf("         failed pages: %v\n", d.Result.FailedPages)
			}
			continue
		}
		cmd.Printf("  [fail] %s at %s: %s\n", d.Path, d.Stage, d.Error)
	}
	cmd.Printf("\n%d succeeded, %d failed\n", report.Succeeded, report.Failed)
}
