package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/w3mask/internal/chain"
	"github.com/Mohsinsiddi/w3mask/internal/faucet"
	"github.com/Mohsinsiddi/w3mask/internal/logger"
	"github.com/Mohsinsiddi/w3mask/internal/rpc"
	"github.com/Mohsinsiddi/w3mask/internal/ui"
	"github.com/Mohsinsiddi/w3mask/internal/wallet"
	"github.com/spf13/cobra"
	"github.com/toqueteos/webbrowser"
)

var (
	faucetChain   string
	faucetKeyName string
	faucetOpen    bool
	faucetYes     bool
)

var faucetCmd = &cobra.Command{
	Use:   "faucet",
	Short: "Send test tokens from an admin key held in the keychain",
	Long: `Send test tokens from an admin account. The admin key never reaches the
wallet page: it is stored in the OS keychain with ` + "`faucet import-key`" + ` and
read only by this process.

Configuration comes from the environment:
  W3MASK_FAUCET_RPC_URL        RPC endpoint (default: fastest testnet RPC of --chain)
  W3MASK_FAUCET_TOKEN          token contract
  W3MASK_FAUCET_DECIMALS       token decimals (18)
  W3MASK_FAUCET_ADMIN_ADDRESS  expected admin address (optional check)
  W3MASK_FAUCET_KEY_REF        keychain reference (w3mask.faucet)
  W3MASK_FAUCET_GAS_LIMIT      gas limit (150000)
  W3MASK_FAUCET_MIN / _MAX     accepted amount range (1..15)
  W3MASK_FAUCET_EXPLORER       explorer for tx links`,
}

var faucetSendCmd = &cobra.Command{
	Use:   "send <to> <amount>",
	Short: "Transfer faucet tokens to an address",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fc, err := faucet.LoadConfig()
		if err != nil {
			return err
		}
		if fc.RPCURL == "" || cmd.Flags().Changed("chain") {
			name := faucetChain
			if name == "" {
				name = cfg.DefaultChain
			}
			c, err := chain.NewRegistry().GetByName(name)
			if err != nil {
				return err
			}
			if fc.RPCURL == "" {
				ctx, cancel := promptContext(cmd)
				fc.RPCURL, err = rpc.Select(ctx, c.RPCs(chain.Testnet))
				cancel()
				if err != nil {
					return fmt.Errorf("%s testnet: %w", c.DisplayName, err)
				}
			}
			if cmd.Flags().Changed("chain") {
				fc.Explorer = c.Explorer(chain.Testnet)
			}
		}

		log, _, err := logger.New(cfg.LogLevel, verbose, "")
		if err != nil {
			return err
		}
		defer log.Sync() //nolint:errcheck

		ks, err := wallet.DefaultKeystore()
		if err != nil {
			return err
		}

		ctx, cancel := promptContext(cmd)
		defer cancel()
		f, closeFn, err := faucet.Dial(ctx, fc, ks, faucet.WithLogger(log.Named("faucet")))
		if err != nil {
			return err
		}
		defer closeFn()

		out(cmd, ui.KeyValueBlock("Faucet transfer", [][2]string{
			{"From", f.Admin().Hex()},
			{"To", args[0]},
			{"Token", fc.Token},
			{"Amount", args[1]},
			{"RPC", fc.RPCURL},
		}))
		if !faucetYes && !ui.ConfirmDanger(cmd.InOrStdin(), cmd.OutOrStdout(), "Broadcast this transfer?") {
			out(cmd, ui.Meta("Cancelled"))
			return nil
		}

		sp := ui.NewSpinner(cmd.ErrOrStderr(), "Broadcasting")
		sp.Start()
		r, err := f.Send(ctx, args[0], args[1])
		sp.Stop()
		if err != nil {
			return err
		}
		out(cmd, ui.Success("Sent "+r.Amount+" tokens to "+ui.Addr(r.To)))
		out(cmd, "  "+ui.Addr(r.Hash))
		if r.ExplorerURL != "" {
			out(cmd, "  "+ui.Meta(r.ExplorerURL))
		}
		return nil
	},
}

var faucetImportKeyCmd = &cobra.Command{
	Use:   "import-key",
	Short: "Store the faucet admin key in the OS keychain",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := ui.ReadSecret(cmd.InOrStdin(), cmd.ErrOrStderr(), "Admin private key (hex):")
		if err != nil {
			return err
		}
		addr, err := wallet.ValidateKey(key)
		if err != nil {
			return err
		}
		ks, err := wallet.DefaultKeystore()
		if err != nil {
			return err
		}
		ref, err := ks.Store(faucetKeyName, key)
		if err != nil {
			return err
		}
		out(cmd, ui.Success("Stored key for "+ui.Addr(addr.Hex())))
		out(cmd, "  "+ui.Meta("reference: "+ref))
		if faucetKeyName != faucet.DefaultKeyName {
			out(cmd, ui.Hint("export W3MASK_FAUCET_KEY_REF="+ref))
		}
		return nil
	},
}

var faucetLinksCmd = &cobra.Command{
	Use:   "links [chain]",
	Short: "Show public testnet faucets",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := chain.NewRegistry()
		if len(args) == 1 {
			return showChainFaucet(cmd, reg, args[0])
		}
		fmt.Fprint(cmd.OutOrStdout(), ui.FaucetTable(reg.All()))
		out(cmd, ui.Hint("w3mask faucet links <chain> --open"))
		return nil
	},
}

func showChainFaucet(cmd *cobra.Command, reg *chain.Registry, name string) error {
	c, err := reg.GetByName(name)
	if err != nil {
		return fmt.Errorf("%w (see `w3mask chain list`)", err)
	}
	out(cmd, ui.ChainName(c.DisplayName)+"  "+ui.Meta("testnet: "+c.Testnet.Name))
	if c.FaucetURL == "" {
		out(cmd, ui.Warn("No dedicated faucet for this chain. Bridge assets from its parent network."))
		return nil
	}
	out(cmd, "  "+ui.Meta("Faucet  :")+" "+ui.Addr(c.FaucetURL))
	out(cmd, "  "+ui.Meta("Explorer:")+" "+ui.Addr(c.Testnet.Explorer))
	if faucetOpen {
		if err := webbrowser.Open(c.FaucetURL); err != nil {
			out(cmd, ui.Warn("could not open a browser: "+err.Error()))
		}
	}
	return nil
}

func init() {
	faucetSendCmd.Flags().StringVar(&faucetChain, "chain", "", "chain whose testnet RPC and explorer are used (default: default_chain)")
	faucetSendCmd.Flags().BoolVarP(&faucetYes, "yes", "y", false, "skip the confirmation prompt")
	faucetImportKeyCmd.Flags().StringVar(&faucetKeyName, "name", faucet.DefaultKeyName, "key name in the keychain")
	faucetLinksCmd.Flags().BoolVar(&faucetOpen, "open", false, "open the faucet in your browser")

	faucetCmd.AddCommand(faucetSendCmd, faucetImportKeyCmd, faucetLinksCmd)
}
