package cmd

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Mohsinsiddi/w3mask/internal/api"
	"github.com/Mohsinsiddi/w3mask/internal/bridge"
	"github.com/Mohsinsiddi/w3mask/internal/config"
	"github.com/Mohsinsiddi/w3mask/internal/ui"
	"github.com/spf13/cobra"
)

var (
	stateJSON         bool
	dashboardInterval time.Duration
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show the wallet session",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := statusContext(cmd)
		defer cancel()
		s, err := daemonClient().State(ctx)
		if err != nil {
			return err
		}
		if stateJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(s)
		}
		out(cmd, ui.Session(s, chainLabel))
		return nil
	},
}

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Ask the wallet for account access",
	RunE: func(cmd *cobra.Command, args []string) error {
		accounts, err := walletCall(cmd, "Connecting", func(ctx context.Context, c *api.Client) ([]string, error) {
			return c.Connect(ctx)
		})
		if err != nil {
			return err
		}
		if len(accounts) == 0 {
			out(cmd, ui.Warn("The wallet returned no accounts"))
			return nil
		}
		out(cmd, ui.Success("Connected "+ui.Addr(accounts[0])))
		for _, a := range accounts[1:] {
			out(cmd, "  "+ui.Meta(a))
		}
		return nil
	},
}

var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Forget the connected accounts",
	Long: `Clear the session on the daemon. Wallets have no disconnect request,
so the wallet itself keeps its permission until you revoke it there.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := statusContext(cmd)
		defer cancel()
		if _, err := daemonClient().Disconnect(ctx); err != nil {
			return err
		}
		out(cmd, ui.Success("Disconnected"))
		return nil
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Live view of the wallet session",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := daemonClient()
		fetch := func(ctx context.Context) (bridge.State, error) { return c.State(ctx) }
		_, err := ui.NewDashboard(dashboardInterval, config.StatusTimeout, fetch, chainLabel).Run()
		return err
	},
}

func init() {
	stateCmd.Flags().BoolVar(&stateJSON, "json", false, "print the session as JSON")
	dashboardCmd.Flags().DurationVar(&dashboardInterval, "interval", time.Second, "refresh interval")
}
