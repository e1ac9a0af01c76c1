package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Mohsinsiddi/w3mask/internal/api"
	"github.com/Mohsinsiddi/w3mask/internal/chain"
	"github.com/Mohsinsiddi/w3mask/internal/config"
	"github.com/Mohsinsiddi/w3mask/internal/ui"
	"github.com/spf13/cobra"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/w3mask/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir    string
	cfg       *config.Config
	verbose   bool
	logLevel  string
	daemonURL string
	testnet   bool
	mainnet   bool
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "w3mask",
	Short: "Drive your browser wallet from the terminal",
	Long: `w3mask bridges a browser wallet extension (MetaMask and compatible
EIP-1193 wallets) to the command line.

Start the bridge with ` + "`w3mask serve`" + ` and open the page it prints in a browser
that has the wallet installed. Every other command asks the wallet for
something through that page: connect an account, switch chains, sign and
send transactions, encrypt and decrypt messages.

Global flags --testnet and --mainnet pick which deployment of a named chain
is used. Without either flag the configured network mode applies
(default: mainnet).`,
	Version:       Version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if testnet {
			cfg.NetworkMode = chain.Testnet
		}
		if mainnet {
			cfg.NetworkMode = chain.Mainnet
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		if daemonURL != "" {
			cfg.DaemonURL = daemonURL
		}
		return nil
	},
}

// Execute runs the root command. Failures are printed as a one-line notice
// carrying the wallet's own message when there is one.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.Notice(err))
		os.Exit(1)
	}
}

func init() {
	// W3MASK_CONFIG_DIR overrides --config.
	if envDir := os.Getenv("W3MASK_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.w3mask)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "daemon log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&daemonURL, "daemon", "", "daemon URL (default: derived from listen_addr)")
	rootCmd.PersistentFlags().BoolVar(&testnet, "testnet", false, "use testnet deployments of named chains")
	rootCmd.PersistentFlags().BoolVar(&mainnet, "mainnet", false, "use mainnet deployments of named chains")
	rootCmd.MarkFlagsMutuallyExclusive("testnet", "mainnet")

	rootCmd.AddCommand(
		serveCmd,
		stateCmd,
		connectCmd,
		disconnectCmd,
		dashboardCmd,
		chainCmd,
		assetCmd,
		permissionsCmd,
		encryptionKeyCmd,
		encryptCmd,
		decryptCmd,
		scanQRCmd,
		sendCmd,
		tokenCmd,
		faucetCmd,
		configCmd,
	)
}

// --- shared helpers ---

func daemonClient() *api.Client {
	return api.NewClient(cfg.Daemon())
}

// promptContext is for calls that wait for the user to answer a wallet
// prompt. It has no deadline; Ctrl-C cancels it.
func promptContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithCancel(cmd.Context())
}

// statusContext bounds a call that never prompts.
func statusContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), config.StatusTimeout)
}

// walletCall runs fn without a deadline while a spinner tells the user
// to look at the wallet.
func walletCall[T any](cmd *cobra.Command, what string, fn func(ctx context.Context, c *api.Client) (T, error)) (T, error) {
	ctx, cancel := promptContext(cmd)
	defer cancel()

	sp := ui.NewSpinner(cmd.ErrOrStderr(), what+": confirm in your wallet")
	sp.Start()
	defer sp.Stop()

	return fn(ctx, daemonClient())
}

// chainLabel names a session chain id from the registry.
func chainLabel(id string) string {
	c, mode, err := chain.NewRegistry().Lookup(id)
	if err != nil {
		return ""
	}
	return c.Network(mode).Name
}

// txLink links hash on the explorer of the session's chain, if known.
func txLink(chainID, hash string) string {
	c, mode, err := chain.NewRegistry().Lookup(chainID)
	if err != nil {
		return ""
	}
	return c.TxURL(mode, hash)
}

func out(cmd *cobra.Command, a ...any) {
	fmt.Fprintln(cmd.OutOrStdout(), a...)
}
