package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var documentsJSON bool

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "List ingested documents",
	Args:  cobra.NoArgs,
	RunE:  runDocuments,
}

func init() {
	documentsCmd.Flags().BoolVar(&documentsJSON, "json", false, "output documents as JSON")
	rootCmd.AddCommand(documentsCmd)
}

func runDocuments(cmd *cobra.Command, _ []string) error {
	return withServices(cmd, func(ctx context.Context, svc *appServices) error {
		docs, err := svc.Documents.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list documents: %w", err)
		}

		if documentsJSON {
			data, err := json.MarshalIndent(docs, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal documents: %w", err)
			}
			cmd.Println(string(data))
			return nil
		}

		if len(docs) == 0 {
			cmd.Println("No documents ingested.")
			return nil
		}
		for _, d := range docs {
			cmd.Printf("  %d  %s  [%s]  costs=%d tasks=%d rules=%d steps=%d\n",
				d.ID, d.Name, d.Type, d.CostItems, d.ProjectTasks, d.RegulatoryRules, d.ApprovalSteps)
		}
		return nil
	})
}
