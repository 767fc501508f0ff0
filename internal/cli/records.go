package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	recordsLimit int
	recordsJSON  bool
)

var recordsCmd = &cobra.Command{
	Use:   "records [keyword]",
	Short: "Keyword search over extracted records",
	Long: `Matches the keyword against cost items, project tasks, regulatory rules
and approval steps of every ingested document.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecords,
}

func init() {
	recordsCmd.Flags().IntVarP(&recordsLimit, "limit", "n", 50, "maximum number of records")
	recordsCmd.Flags().BoolVar(&recordsJSON, "json", false, "output records as JSON")
	rootCmd.AddCommand(recordsCmd)
}

func runRecords(cmd *cobra.Command, args []string) error {
	return withServices(cmd, func(ctx context.Context, svc *appServices) error {
		matches, err := svc.Search.Records(ctx, args[0], recordsLimit)
		if err != nil {
			return fmt.Errorf("records search failed: %w", err)
		}

		if recordsJSON {
			data, err := json.MarshalIndent(matches, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal records: %w", err)
			}
			cmd.Println(string(data))
			return nil
		}

		if len(matches) == 0 {
			cmd.Println("No records found.")
			return nil
		}
		for _, m := range matches {
			page := "-"
			if m.PageNumber != nil {
				page = fmt.Sprint(*m.PageNumber)
			}
			cmd.Printf("  %-16s %s (document %d, page %s)\n", m.Kind, m.Text, m.DocumentID, page)
		}
		return nil
	})
}
