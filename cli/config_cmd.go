package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yoanbernabeu/zoomtype/config"
)

var configShowAll bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and change settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print every setting with its value",
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := loadParams()
		if err != nil {
			return err
		}
		printParams(cmd.OutOrStdout(), params, configShowAll)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting and save it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := loadParams()
		if err != nil {
			return err
		}
		p, ok := config.Lookup(args[0])
		if !ok {
			return fmt.Errorf("%w: %s", config.ErrUnknownParam, args[0])
		}
		if !p.Persistent() {
			return fmt.Errorf("%s is not saved between runs", p.Key())
		}
		if err := params.SetFromString(args[0], args[1]); err != nil {
			return err
		}
		if err := params.Save(); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", p.Key(), params.Format(p))
		return nil
	},
}

var configResetCmd = &cobra.Command{
	Use:   "reset [key...]",
	Short: "Restore defaults for the given settings, or all of them",
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := loadParams()
		if err != nil {
			return err
		}
		targets := config.Params()
		if len(args) > 0 {
			targets = targets[:0:0]
			for _, key := range args {
				p, ok := config.Lookup(key)
				if !ok {
					return fmt.Errorf("%w: %s", config.ErrUnknownParam, key)
				}
				targets = append(targets, p)
			}
		}
		for _, p := range targets {
			params.Reset(p)
		}
		if err := params.Save(); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Reset %d setting(s)\n", len(targets))
		return nil
	},
}

func init() {
	configShowCmd.Flags().BoolVar(&configShowAll, "all", false, "Include settings that are not saved between runs")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configResetCmd)
}

func printParams(w io.Writer, params *config.Store, all bool) {
	if path := params.Path(); path != "" {
		fmt.Fprintf(w, "# %s\n", path)
	}
	for _, p := range config.Params() {
		if !all && !p.Persistent() {
			continue
		}
		fmt.Fprintf(w, "%-24s %-8s %s\n", p.Key(), p.Kind(), params.Format(p))
	}
}
