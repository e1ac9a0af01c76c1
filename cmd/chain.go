package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Mohsinsiddi/w3mask/internal/api"
	"github.com/Mohsinsiddi/w3mask/internal/bridge"
	"github.com/Mohsinsiddi/w3mask/internal/chain"
	"github.com/Mohsinsiddi/w3mask/internal/provider"
	"github.com/Mohsinsiddi/w3mask/internal/ui"
	"github.com/spf13/cobra"
)

var (
	addChainID       string
	addChainName     string
	addChainRPCs     []string
	addChainSymbol   string
	addChainCurrency string
	addChainDecimals int
	addChainExplorer string
)

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "List, switch and add chains in the wallet",
}

var chainListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the built-in chains",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprint(cmd.OutOrStdout(), ui.ChainTable(chain.NewRegistry().All()))
		out(cmd, ui.Hint("w3mask chain switch <chain> [--testnet]"))
		return nil
	},
}

var chainSwitchCmd = &cobra.Command{
	Use:   "switch <chain|chain-id>",
	Short: "Ask the wallet to switch chains",
	Long: `Ask the wallet to switch to a chain, named from the registry or given as
a decimal or 0x-prefixed chain id.

The session's chain changes when the wallet reports the switch, not when
this command returns.

Examples:
  w3mask chain switch polygon
  w3mask chain switch base --testnet
  w3mask chain switch 0xa4b1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, label, err := resolveChainID(args[0])
		if err != nil {
			return err
		}
		_, err = walletCall(cmd, "Switching to "+label, func(ctx context.Context, c *api.Client) (struct{}, error) {
			return struct{}{}, c.SwitchChain(ctx, bridge.SwitchChainParams{ChainID: id})
		})
		var pe *provider.Error
		if errors.As(err, &pe) && pe.Code == provider.CodeUnrecognizedChain {
			out(cmd, ui.Hint("the wallet does not know this chain yet: w3mask chain add "+args[0]))
		}
		if err != nil {
			return err
		}
		out(cmd, ui.Success("Switched to "+ui.ChainName(label)))
		return nil
	},
}

var chainAddCmd = &cobra.Command{
	Use:   "add [chain]",
	Short: "Ask the wallet to add a chain",
	Long: `Ask the wallet to add a chain. Name a built-in chain, or describe one
with flags.

Examples:
  w3mask chain add scroll
  w3mask chain add linea --testnet
  w3mask chain add --chain-id 0x7a69 --name Anvil --rpc http://127.0.0.1:8545 --symbol ETH`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var desc bridge.ChainDescriptor
		if len(args) == 1 {
			c, mode, err := chain.NewRegistry().Resolve(args[0], cfg.NetworkMode)
			if err != nil {
				return err
			}
			desc = c.Descriptor(mode)
		} else {
			var err error
			if desc, err = customChain(); err != nil {
				return err
			}
		}
		if err := desc.Validate(); err != nil {
			return err
		}

		_, err := walletCall(cmd, "Adding "+desc.ChainName, func(ctx context.Context, c *api.Client) (struct{}, error) {
			return struct{}{}, c.AddChain(ctx, desc)
		})
		if err != nil {
			return err
		}
		out(cmd, ui.Success(fmt.Sprintf("Added %s (%s)", ui.ChainName(desc.ChainName), desc.ChainID)))
		return nil
	},
}

// resolveChainID turns a chain reference into the wallet's hex chain id and
// a label. Unknown numeric ids pass through.
func resolveChainID(ref string) (string, string, error) {
	c, mode, err := chain.NewRegistry().Resolve(ref, cfg.NetworkMode)
	if err == nil {
		return c.HexID(mode), c.Network(mode).Name, nil
	}
	id, perr := chain.ParseHexID(ref)
	if perr != nil {
		n, nerr := strconv.ParseInt(ref, 10, 64)
		if nerr != nil || n <= 0 {
			return "", "", err
		}
		return fmt.Sprintf("0x%x", n), ref, nil
	}
	return fmt.Sprintf("0x%x", id), ref, nil
}

func customChain() (bridge.ChainDescriptor, error) {
	if addChainID == "" {
		return bridge.ChainDescriptor{}, errors.New("name a chain or pass --chain-id, --name, --rpc and --symbol")
	}
	id, _, err := resolveChainID(addChainID)
	if err != nil {
		return bridge.ChainDescriptor{}, err
	}
	currency := addChainCurrency
	if currency == "" {
		currency = addChainSymbol
	}
	desc := bridge.ChainDescriptor{
		ChainID:   id,
		ChainName: addChainName,
		NativeCurrency: bridge.NativeCurrency{
			Name:     currency,
			Symbol:   addChainSymbol,
			Decimals: addChainDecimals,
		},
		RPCURLs: addChainRPCs,
	}
	if addChainExplorer != "" {
		desc.BlockExplorerURLs = []string{addChainExplorer}
	}
	return desc, nil
}

func init() {
	chainAddCmd.Flags().StringVar(&addChainID, "chain-id", "", "chain id (decimal or 0x-prefixed)")
	chainAddCmd.Flags().StringVar(&addChainName, "name", "", "chain name shown by the wallet")
	chainAddCmd.Flags().StringSliceVar(&addChainRPCs, "rpc", nil, "RPC URL (repeatable)")
	chainAddCmd.Flags().StringVar(&addChainSymbol, "symbol", "", "native currency symbol")
	chainAddCmd.Flags().StringVar(&addChainCurrency, "currency", "", "native currency name (default: symbol)")
	chainAddCmd.Flags().IntVar(&addChainDecimals, "decimals", 18, "native currency decimals")
	chainAddCmd.Flags().StringVar(&addChainExplorer, "explorer", "", "block explorer URL")

	chainCmd.AddCommand(chainListCmd, chainSwitchCmd, chainAddCmd)
}
