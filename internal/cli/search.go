package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Shivamm1101/doc-ai/internal/services"
)

var (
	searchTopK     int
	searchNoAnswer bool
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search ingested documents",
	Long: `Embeds the query, returns the closest text chunks, and asks the model
for an answer grounded in those chunks.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 5, "number of chunks to retrieve")
	searchCmd.Flags().BoolVar(&searchNoAnswer, "no-answer", false, "only list matching chunks")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	return withServices(cmd, func(ctx context.Context, svc *appServices) error {
		var res *services.SearchResult
		if searchNoAnswer {
			matches, err := svc.Search.Search(ctx, query, searchTopK)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			res = &services.SearchResult{Results: matches}
		} else {
			r, err := svc.Search.Answer(ctx, query, searchTopK)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			res = r
		}

		if searchJSON {
			data, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal results: %w", err)
			}
			cmd.Println(string(data))
			return nil
		}
		outputSearchTable(cmd, res)
		return nil
	})
}

func outputSearchTable(cmd *cobra.Command, res *services.SearchResult) {
	if len(res.Results) == 0 {
		cmd.Println("No results found.")
		return
	}
	if res.Answer != "" {
		cmd.Println("Answer:")
		cmd.Printf("  %s\n\n", res.Answer)
	}

	cmd.Println("Results:")
	for i, m := range res.Results {
		// Format: [N] type page P (distance)
		cmd.Printf("  [%d] %s page %d (%.3f)\n", i+1, m.Metadata.DocumentType, m.Metadata.PageNumber, m.Score)
		cmd.Printf("      %s\n", snippet(m.Text, 160))
	}
}

func snippet(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
