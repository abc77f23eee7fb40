// Package cli implements the zoomtype command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yoanbernabeu/zoomtype/config"
)

var settingsPath string

var rootCmd = &cobra.Command{
	Use:   "zoomtype",
	Short: "Predictive zooming text entry",
	Long: `zoomtype writes text by steering through a zooming tree of letters.
Each letter gets room in proportion to how likely a language model thinks
it is, so likely text is quick to reach.

Start typing with: zoomtype type`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "settings file (default: ~/.zoomtype/settings.yaml)")

	rootCmd.AddCommand(typeCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(alphabetsCmd)
	rootCmd.AddCommand(mcpServeCmd)
}

// GetRootCmd returns the root command, for tests and documentation.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

// Execute runs the command line and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadParams reads the settings file named by --settings.
func loadParams() (*config.Store, error) {
	path := settingsPath
	if path == "" {
		path = config.DefaultSettingsPath()
	}
	params, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return params, nil
}
