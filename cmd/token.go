package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/w3mask/internal/token"
	"github.com/Mohsinsiddi/w3mask/internal/ui"
	"github.com/spf13/cobra"
)

var tokenDecimals uint8

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "ERC-20 token operations through the wallet",
}

var tokenSendCmd = &cobra.Command{
	Use:   "send <contract> <to> <amount>",
	Short: "Transfer ERC-20 tokens from the connected account",
	Long: `Build a transfer(to, amount) call to the token contract and send it
through the wallet. The amount is in whole tokens and is scaled by
--decimals.

Example:
  w3mask token send 0x0064164e643f4EfFDdd5E5892C7e4C707908D55f 0xd8dA...6045 12.5`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		tx, err := token.TransferRequest(args[0], args[1], args[2], tokenDecimals)
		if err != nil {
			return err
		}
		return submit(cmd, tx, fmt.Sprintf("%s tokens to %s", args[2], ui.Addr(args[1])))
	},
}

func init() {
	tokenSendCmd.Flags().Uint8Var(&tokenDecimals, "decimals", token.DefaultDecimals, "token decimals")
	tokenSendCmd.Flags().BoolVarP(&sendYes, "yes", "y", false, "skip the confirmation prompt")
	tokenCmd.AddCommand(tokenSendCmd)
}
