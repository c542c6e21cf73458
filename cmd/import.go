package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"pagebuilder/internal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Import every <pageId>.json/.yaml file in a directory once",
	Long: `Replaces the canvas of each page that has a <pageId>.json, .yaml or .yml
file in dir. Each import is saved as a revision so it can be restored later.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBackend(logger)
		if err != nil {
			return err
		}
		defer b.Close()

		ctx := context.Background()
		pages, err := importer.ImportDir(ctx, args[0], importHandler(b))
		for _, pageID := range pages {
			if _, saveErr := b.checkpoints.Save(ctx, pageID, "Import"); saveErr != nil {
				return saveErr
			}
			fmt.Println(pageID)
		}
		if err != nil {
			return fmt.Errorf("import %s: %w", args[0], err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
