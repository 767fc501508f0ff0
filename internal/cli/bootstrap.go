package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Shivamm1101/doc-ai/internal/config"
	db "github.com/Shivamm1101/doc-ai/internal/core/database"
)

// bootstrapDB connects to the database, which applies the schema if needed.
var bootstrapDB = func(ctx context.Context) error {
	client, err := db.NewDatabaseClient(ctx, config.LoadConfig())
	if err != nil {
		return err
	}
	return client.Close()
}

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Create the database schema",
	Long:  `Creates the pgvector extension, the record tables and the chunk embedding table if they do not exist yet.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := bootstrapDB(cmd.Context()); err != nil {
			return err
		}
		cmd.Println("Database schema is ready.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bootstrapCmd)
}
