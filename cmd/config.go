package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pagebuilder/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a commented default config (default: .pagebuilder/config.yaml)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ".pagebuilder/config.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.WriteDefaultConfig(path); err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("config file:                   %s\n", viperConfigFile())
		fmt.Printf("db_path:                       %s\n", cfg.DBPath)
		fmt.Printf("history.max_size:              %d\n", cfg.History.MaxSize)
		fmt.Printf("history.session_ttl:           %s\n", cfg.History.SessionTTL)
		fmt.Printf("revisions.max_per_page:        %d\n", cfg.Revisions.MaxPerPage)
		fmt.Printf("revisions.checkpoint_schedule: %q\n", cfg.Revisions.CheckpointSchedule)
		fmt.Printf("import.dir:                    %q\n", cfg.Import.Dir)
		fmt.Printf("import.debounce:               %s\n", cfg.Import.Debounce)
		fmt.Printf("debug:                         %t\n", cfg.Debug)
	},
}

func init() {
	configInitCmd.Flags().Bool("force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}
