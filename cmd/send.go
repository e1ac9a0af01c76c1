package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/w3mask/internal/api"
	"github.com/Mohsinsiddi/w3mask/internal/bridge"
	"github.com/Mohsinsiddi/w3mask/internal/token"
	"github.com/Mohsinsiddi/w3mask/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

var (
	sendData string
	sendGas  uint64
	sendYes  bool
)

var sendCmd = &cobra.Command{
	Use:   "send <to> <amount>",
	Short: "Send native currency from the connected account",
	Long: `Send native currency (ETH, POL, ...) through the wallet. The amount is in
whole units; the sender and chain are the session's. The wallet shows its
own confirmation before anything is signed.

Examples:
  w3mask send 0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045 0.01
  w3mask send 0xd8dA...6045 0 --data 0xdeadbeef --gas 60000`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tx, err := nativeTransfer(args[0], args[1])
		if err != nil {
			return err
		}
		return submit(cmd, tx, args[1]+" to "+ui.Addr(tx.To))
	},
}

// nativeTransfer builds the request for sending amount whole units to to.
func nativeTransfer(to, amount string) (bridge.TransactionRequest, error) {
	if !common.IsHexAddress(to) {
		return bridge.TransactionRequest{}, fmt.Errorf("%w: %q", token.ErrInvalidAddress, to)
	}
	wei, err := token.ScaleAmount(amount, 18)
	if err != nil {
		return bridge.TransactionRequest{}, err
	}
	tx := bridge.TransactionRequest{
		To:    common.HexToAddress(to).Hex(),
		Value: hexutil.EncodeBig(wei),
	}
	if sendData != "" {
		if _, err := hexutil.Decode(sendData); err != nil {
			return bridge.TransactionRequest{}, fmt.Errorf("invalid --data: %w", err)
		}
		tx.Data = sendData
	}
	if sendGas > 0 {
		tx.Gas = hexutil.EncodeUint64(sendGas)
	}
	return tx, nil
}

// submit shows what is about to be sent, asks for a go-ahead unless --yes
// and hands tx to the wallet.
func submit(cmd *cobra.Command, tx bridge.TransactionRequest, summary string) error {
	ctx, cancel := statusContext(cmd)
	s, err := daemonClient().State(ctx)
	cancel()
	if err != nil {
		return err
	}
	if s.Account() == "" {
		return bridge.ErrNoAccount
	}

	chainName := s.ChainID
	if label := chainLabel(s.ChainID); label != "" {
		chainName = label
	}
	out(cmd, ui.KeyValueBlock("Transaction", [][2]string{
		{"From", s.Account()},
		{"To", tx.To},
		{"Chain", chainName},
		{"Value", tx.Value},
	}))
	if !sendYes && !ui.Confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Send "+summary+"?") {
		out(cmd, ui.Meta("Cancelled"))
		return nil
	}

	hash, err := walletCall(cmd, "Sending", func(ctx context.Context, c *api.Client) (string, error) {
		return c.SendTransaction(ctx, tx)
	})
	if err != nil {
		return err
	}
	out(cmd, ui.Success("Submitted "+ui.Addr(hash)))
	if link := txLink(s.ChainID, hash); link != "" {
		out(cmd, "  "+ui.Meta(link))
	}
	return nil
}

func init() {
	sendCmd.Flags().StringVar(&sendData, "data", "", "hex call data")
	sendCmd.Flags().Uint64Var(&sendGas, "gas", 0, "gas limit (default: the wallet estimates)")
	sendCmd.Flags().BoolVarP(&sendYes, "yes", "y", false, "skip the confirmation prompt")
}
