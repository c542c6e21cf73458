package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"pagebuilder/internal/config"
	"pagebuilder/internal/logging"
)

var (
	version = "dev"
	cfgFile string
	cfg     config.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pagebuilder",
	Short: "Page builder editing backend",
	Long: `pagebuilder stores sites, pages and their canvas elements, and serves an
MCP editor over stdio with per-page undo/redo history and saved revisions.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		var err error
		logger, err = logging.New(cfg.Debug)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/pagebuilder/config.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("db", "", "path to the sqlite database")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("db_path", rootCmd.PersistentFlags().Lookup("db"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("data_dir", defaults.DataDir)
	viper.SetDefault("db_path", defaults.DBPath)
	viper.SetDefault("history.max_size", defaults.History.MaxSize)
	viper.SetDefault("history.session_ttl", defaults.History.SessionTTL)
	viper.SetDefault("revisions.max_per_page", defaults.Revisions.MaxPerPage)
	viper.SetDefault("revisions.checkpoint_schedule", defaults.Revisions.CheckpointSchedule)
	viper.SetDefault("import.dir", defaults.Import.Dir)
	viper.SetDefault("import.debounce", defaults.Import.Debounce)
	viper.SetDefault("debug", defaults.Debug)

	// PAGEBUILDER_HISTORY_MAX_SIZE overrides history.max_size, and so on.
	viper.SetEnvPrefix("PAGEBUILDER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .pagebuilder/config.yaml (current directory)
		// 2. ~/.config/pagebuilder/config.yaml (user config)
		if _, err := os.Stat(".pagebuilder/config.yaml"); err == nil {
			viper.SetConfigFile(".pagebuilder/config.yaml")
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "pagebuilder"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "pagebuilder: reading config: %v\n", err)
		}
	}

	_ = viper.Unmarshal(&cfg)
	cfg.ResolvePaths()
}

func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func viperConfigFile() string {
	if f := viper.ConfigFileUsed(); f != "" {
		return f
	}
	return "(none)"
}
