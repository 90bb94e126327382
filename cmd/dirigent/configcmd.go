package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dirigent/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the dirigent config file",
}

var configGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a fresh default config, backing up any existing one",
	RunE: func(cmd *cobra.Command, args []string) error {
		backup, err := config.GenerateConfig()
		if err != nil {
			return err
		}
		if backup != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "existing config backed up to %s\n", backup)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote default config to %s\n", config.ConfigPath())
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), config.ConfigPath())
	},
}

func init() {
	configCmd.AddCommand(configGenerateCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}
