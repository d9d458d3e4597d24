package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/slotplanner/slotplanner/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "slotplanner",
	Short: "Weekly session assignment planner",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// loadConfig reads the configured file, falling back to defaults when the
// default path does not exist and was not explicitly requested.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			return config.Default(), nil
		}
	}
	return config.Load(cfgPath)
}
