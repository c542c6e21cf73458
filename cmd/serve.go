package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/importer"
	mcpserver "pagebuilder/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP editor server on stdin/stdout",
	Long: `Runs the editor as an MCP server on stdin/stdout. Revisions of edited pages
are saved on the configured checkpoint schedule, and when import.dir is set,
page files written there replace the canvas of the matching page.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("import-dir", "", "watch this directory for <pageId>.json/.yaml files")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	b, err := openBackend(logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			logger.Warn("close backend", zap.Error(err))
		}
	}()

	if err := b.checkpoints.Start(cfg.Revisions.CheckpointSchedule); err != nil {
		return err
	}

	importDir := cfg.Import.Dir
	if dir, _ := cmd.Flags().GetString("import-dir"); dir != "" {
		importDir = dir
	}
	if importDir != "" {
		w, err := importer.Watch(importDir, importHandler(b), logger.Named("importer"),
			importer.WithDebounce(cfg.Import.Debounce))
		if err != nil {
			return fmt.Errorf("start importer: %w", err)
		}
		defer w.Close()
	}

	srv := mcpserver.New(mcpserver.Deps{
		Sites:       b.sites,
		Editor:      b.editor,
		Checkpoints: b.checkpoints,
		Log:         logger,
		Version:     version,
	})

	errc := make(chan error, 1)
	go func() { errc <- srv.ServeStdio() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		return nil
	}
}

// importHandler replaces a page canvas with imported elements as one undoable
// edit. Unchanged files are skipped so saving in an editor does not grow the
// history.
func importHandler(b *backend) importer.Handler {
	return func(ctx context.Context, pageID string, elements []domain.CanvasElement) error {
		if _, err := b.sites.GetPage(pageID); err != nil {
			return fmt.Errorf("import page %s: %w", pageID, err)
		}
		return b.editor.ReplaceAll(ctx, pageID, elements, "Import page file")
	}
}
