package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/w3mask/internal/ui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:     "show",
	Aliases: []string{"list"},
	Short:   "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out(cmd, ui.KeyValueBlock("Current configuration", cfg.Values()))
		out(cmd, ui.Meta("Config directory: "+cfg.Dir()))
		out(cmd, ui.Meta("Daemon: "+cfg.Daemon()))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a configuration value",
	Long: `Change a configuration value and save it.

Keys: daemon_url, default_chain, listen_addr, log_level, network_mode,
open_browser. Environment variables (W3MASK_LISTEN_ADDR, W3MASK_DAEMON_URL,
W3MASK_LOG_LEVEL, ...) still override the saved values.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		out(cmd, ui.Success(fmt.Sprintf("%s set to %q", args[0], args[1])))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd)
}
