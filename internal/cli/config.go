package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justyntemme/arbor/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage arbor configuration",
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
			fmt.Printf("backed up existing config to %s\n", backup)
		}
		fmt.Printf("wrote default config to %s\n", config.ConfigPath())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGenerateCmd)
}
