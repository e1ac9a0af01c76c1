package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Mohsinsiddi/w3mask/internal/api"
	"github.com/Mohsinsiddi/w3mask/internal/bridge"
	"github.com/Mohsinsiddi/w3mask/internal/token"
	"github.com/Mohsinsiddi/w3mask/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var (
	assetDecimals int
	assetImage    string
	permRequest   []string
	encryptKey    string
	scanPattern   string
)

// --- asset ---

var assetCmd = &cobra.Command{
	Use:   "asset",
	Short: "Manage tokens tracked by the wallet",
}

var assetWatchCmd = &cobra.Command{
	Use:   "watch <token-address> <symbol>",
	Short: "Ask the wallet to track an ERC-20 token",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !common.IsHexAddress(args[0]) {
			return fmt.Errorf("%w: %s", token.ErrInvalidAddress, args[0])
		}
		asset := bridge.NewERC20Asset(common.HexToAddress(args[0]).Hex(), args[1], assetDecimals, assetImage)
		added, err := walletCall(cmd, "Adding "+args[1], func(ctx context.Context, c *api.Client) (bool, error) {
			return c.WatchAsset(ctx, asset)
		})
		if err != nil {
			return err
		}
		if !added {
			out(cmd, ui.Warn(args[1]+" was not added"))
			return nil
		}
		out(cmd, ui.Success(args[1]+" added to the wallet"))
		return nil
	},
}

// --- permissions ---

var permissionsCmd = &cobra.Command{
	Use:   "permissions",
	Short: "Show or request wallet permissions",
	Long: `Show the permissions this page holds in the wallet, or ask for more.

Examples:
  w3mask permissions
  w3mask permissions --request eth_accounts`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			perms []bridge.Permission
			err   error
		)
		if cmd.Flags().Changed("request") {
			perms, err = walletCall(cmd, "Requesting permissions", func(ctx context.Context, c *api.Client) ([]bridge.Permission, error) {
				return c.RequestPermissions(ctx, permRequest...)
			})
		} else {
			ctx, cancel := statusContext(cmd)
			defer cancel()
			perms, err = daemonClient().GetPermissions(ctx)
		}
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), ui.PermissionsTable(perms))
		return nil
	},
}

// --- encryption ---

var encryptionKeyCmd = &cobra.Command{
	Use:   "encryption-key",
	Short: "Show the connected account's public encryption key",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := walletCall(cmd, "Reading encryption key", func(ctx context.Context, c *api.Client) (string, error) {
			return c.GetEncryptionPublicKey(ctx)
		})
		if err != nil {
			return err
		}
		out(cmd, key)
		return nil
	},
}

var encryptCmd = &cobra.Command{
	Use:   "encrypt <message|->",
	Short: "Encrypt a message for an account's encryption key",
	Long: `Encrypt a message with x25519-xsalsa20-poly1305 so that only the
holder of the key can decrypt it with eth_decrypt. Without --key the
message is encrypted for the connected account. Pass - to read stdin.

Examples:
  w3mask encrypt "gm"
  w3mask encrypt --key <base64-key> "meet at noon"
  cat note.txt | w3mask encrypt -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := messageArg(cmd, args[0])
		if err != nil {
			return err
		}
		sealed, err := walletCall(cmd, "Encrypting", func(ctx context.Context, c *api.Client) (string, error) {
			return c.Encrypt(ctx, encryptKey, msg)
		})
		if err != nil {
			return err
		}
		out(cmd, sealed)
		return nil
	},
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt <0x-message|->",
	Short: "Decrypt a message with the connected account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := messageArg(cmd, args[0])
		if err != nil {
			return err
		}
		plain, err := walletCall(cmd, "Decrypting", func(ctx context.Context, c *api.Client) (string, error) {
			return c.Decrypt(ctx, strings.TrimSpace(msg))
		})
		if err != nil {
			return err
		}
		out(cmd, plain)
		return nil
	},
}

// messageArg returns arg, or stdin when arg is "-".
func messageArg(cmd *cobra.Command, arg string) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(b), nil
}

// --- qr ---

var scanQRCmd = &cobra.Command{
	Use:   "scan-qr",
	Short: "Ask a mobile wallet to scan a QR code",
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := walletCall(cmd, "Scanning", func(ctx context.Context, c *api.Client) (string, error) {
			return c.ScanQRCode(ctx, scanPattern)
		})
		if err != nil {
			return err
		}
		out(cmd, text)
		return nil
	},
}

func init() {
	assetWatchCmd.Flags().IntVar(&assetDecimals, "decimals", int(token.DefaultDecimals), "token decimals")
	assetWatchCmd.Flags().StringVar(&assetImage, "image", "", "token image URL")
	assetCmd.AddCommand(assetWatchCmd)

	permissionsCmd.Flags().StringSliceVar(&permRequest, "request", nil, "request permissions for methods (default eth_accounts)")
	permissionsCmd.Flags().Lookup("request").NoOptDefVal = "eth_accounts"

	encryptCmd.Flags().StringVar(&encryptKey, "key", "", "recipient's base64 encryption key (default: connected account)")

	scanQRCmd.Flags().StringVar(&scanPattern, "pattern", "", "regular expression the scanned text must match")
}
