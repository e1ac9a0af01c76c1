// Package token builds ERC-20 transfers that a connected wallet can sign.
package token

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/Mohsinsiddi/w3mask/internal/bridge"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// DefaultDecimals is what almost every ERC-20 uses.
const DefaultDecimals uint8 = 18

// Errors.
var (
	ErrMissingAddress = errors.New("contract address or receiver's address is empty")
	ErrInvalidAddress = errors.New("not a valid hex address")
	ErrInvalidAmount  = errors.New("invalid token amount")
)

const erc20TransferABI = `[{
	"type": "function",
	"name": "transfer",
	"stateMutability": "nonpayable",
	"inputs": [
		{"name": "to", "type": "address"},
		{"name": "amount", "type": "uint256"}
	],
	"outputs": [{"name": "", "type": "bool"}]
}]`

var erc20 = mustParseABI(erc20TransferABI)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}

// ScaleAmount converts a human amount such as "1.5" into base units,
// amount × 10^decimals, without floating point.
func ScaleAmount(amount string, decimals uint8) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" || strings.HasPrefix(amount, "-") || strings.HasPrefix(amount, "+") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	whole, frac, _ := strings.Cut(amount, ".")
	if whole == "" && frac == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	if len(frac) > int(decimals) {
		return nil, fmt.Errorf("%w: %q has more than %d decimal places", ErrInvalidAmount, amount, decimals)
	}
	digits := whole + frac + strings.Repeat("0", int(decimals)-len(frac))
	for _, r := range digits {
		if r < '0' || r > '9' {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
		}
	}
	n, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	return n, nil
}

// TransferCalldata ABI-encodes transfer(to, amount).
func TransferCalldata(to string, amount *big.Int) ([]byte, error) {
	if !common.IsHexAddress(to) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAddress, to)
	}
	if amount == nil || amount.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	return erc20.Pack("transfer", common.HexToAddress(to), amount)
}

// TransferRequest returns the transaction a wallet signs to move amount
// tokens of contract to the receiver. The caller's account is the sender.
func TransferRequest(contract, to, amount string, decimals uint8) (bridge.TransactionRequest, error) {
	if strings.TrimSpace(contract) == "" || strings.TrimSpace(to) == "" {
		return bridge.TransactionRequest{}, ErrMissingAddress
	}
	if !common.IsHexAddress(contract) {
		return bridge.TransactionRequest{}, fmt.Errorf("%w: %s", ErrInvalidAddress, contract)
	}
	units, err := ScaleAmount(amount, decimals)
	if err != nil {
		return bridge.TransactionRequest{}, err
	}
	data, err := TransferCalldata(to, units)
	if err != nil {
		return bridge.TransactionRequest{}, err
	}
	return bridge.TransactionRequest{
		To:    common.HexToAddress(contract).Hex(),
		Value: "0x0",
		Data:  hexutil.Encode(data),
	}, nil
}
