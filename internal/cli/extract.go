package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Shivamm1101/doc-ai/internal/core/ingestion_engine"
	"github.com/Shivamm1101/doc-ai/internal/models"
)

var extractJSON bool

var extractCmd = &cobra.Command{
	Use:   "extract [paths...]",
	Short: "Classify and extract without storing",
	Long: `Classifies each PDF and runs page-level structured extraction, printing
what would be stored. Nothing is written to the database or the vector store.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "output extracted items as JSON")
	rootCmd.AddCommand(extractCmd)
}

type extractView struct {
	Path         string                 `json:"path"`
	Stage        ingestion_engine.Stage `json:"stage"`
	DocumentType models.DocumentType    `json:"document_type,omitempty"`
	Items        []any                  `json:"items,omitempty"`
	FailedPages  []int                  `json:"failed_pages,omitempty"`
	Error        string                 `json:"error,omitempty"`
}

func toExtractView(r ingestion_engine.DocumentResult) extractView {
	v := extractView{Path: r.Path, Stage: r.Stage}
	if r.Classification != nil {
		v.DocumentType = r.Classification.DocumentType
	}
	if r.Extraction != nil {
		v.Items = r.Extraction.Items
		v.FailedPages = r.Extraction.FailedPages()
	}
	if r.Err != nil {
		v.Error = r.Err.Error()
	}
	return v
}

func runExtract(cmd *cobra.Command, args []string) error {
	return withServices(cmd, func(ctx context.Context, svc *appServices) error {
		results := svc.Previewer.Process(ctx, args)

		views := make([]extractView, len(results))
		failed := 0
		for i, r := range results {
			views[i] = toExtractView(r)
			if r.Err != nil {
				failed++
			}
		}

		if extractJSON {
			data, err := json.MarshalIndent(views, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal results: %w", err)
			}
			cmd.Println(string(data))
		} else {
			for _, v := range views {
				if v.Error != "" {
					cmd.Printf("  [fail] %s at %s: %s\n", v.Path, v.Stage, v.Error)
					continue
				}
				cmd.Printf("  [ok]   %s (%s, %d items)\n", v.Path, v.DocumentType, len(v.Items))
				if len(v.FailedPages) > 0 {
					cmd.Printf("         failed pages: %v\n", v.FailedPages)
				}
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d documents failed", failed, len(results))
		}
		return nil
	})
}
