package main

import (
	"os"

	"github.com/spf13/cobra"

	"dirigent/internal/config"
	"dirigent/internal/logging"
)

var (
	cfgPath  string
	logLevel string

	cfgManager = config.NewManager()
)

var rootCmd = &cobra.Command{
	Use:   "dirigent",
	Short: "File-browser coordination core: undoable operations, navigation history, and debounced refreshes.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfgPath != "" {
			err = cfgManager.LoadFrom(cfgPath)
		} else {
			err = cfgManager.Load()
		}
		if err != nil {
			return err
		}

		level := cfgManager.Get().Logging.Level
		if logLevel != "" {
			level = logLevel
		}
		logging.SetLevel(level)

		if perr := cfgManager.ParseError(); perr != nil {
			logging.Warn("config file could not be parsed, running on defaults", "err", perr)
		}
		return nil
	},
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default ~/.config/dirigent/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug|info|warn|error)")
}
