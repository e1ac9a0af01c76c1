package bridge

import (
	"errors"
	"strings"
)

// NativeCurrency describes a chain's gas token.
type NativeCurrency struct {
	Name     string `json:"name,omitempty"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals,omitempty"`
}

// ChainDescriptor is the wallet_addEthereumChain parameter. It is passed to
// the wallet verbatim.
type ChainDescriptor struct {
	ChainID           string         `json:"chainId"` // 0x-prefixed hex
	ChainName         string         `json:"chainName"`
	NativeCurrency    NativeCurrency `json:"nativeCurrency"`
	RPCURLs           []string       `json:"rpcUrls"`
	BlockExplorerURLs []string       `json:"blockExplorerUrls,omitempty"`
	IconURLs          []string       `json:"iconUrls,omitempty"`
}

// Validate checks that the required fields are present. Values are not
// otherwise interpreted; the wallet is the authority on them.
func (d ChainDescriptor) Validate() error {
	var missing []string
	if d.ChainID == "" {
		missing = append(missing, "chainId")
	}
	if d.ChainName == "" {
		missing = append(missing, "chainName")
	}
	if d.NativeCurrency.Symbol == "" {
		missing = append(missing, "nativeCurrency.symbol")
	}
	if len(d.RPCURLs) == 0 {
		missing = append(missing, "rpcUrls")
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	return nil
}

// SwitchChainParams is the wallet_switchEthereumChain parameter.
type SwitchChainParams struct {
	ChainID string `json:"chainId"`
}

// TransactionRequest is what callers hand to SendTransaction. From and
// ChainID are filled in from the session and cannot be set by the caller.
type TransactionRequest struct {
	To       string `json:"to"`
	Value    string `json:"value"`
	Data     string `json:"data,omitempty"`
	Gas      string `json:"gas,omitempty"`
	GasPrice string `json:"gasPrice,omitempty"`
	Nonce    string `json:"nonce,omitempty"` // ignored by MetaMask
}

// outgoingTx is the eth_sendTransaction payload.
type outgoingTx struct {
	TransactionRequest
	From    string `json:"from"`
	ChainID string `json:"chainId"`
}

// AssetTypeERC20 is the only asset standard wallets accept today.
const AssetTypeERC20 = "ERC20"

// AssetOptions describes the token to watch.
type AssetOptions struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
	Image    string `json:"image,omitempty"`
}

// AssetDescriptor is the wallet_watchAsset parameter.
type AssetDescriptor struct {
	Type    string       `json:"type"`
	Options AssetOptions `json:"options"`
}

// NewERC20Asset returns a descriptor with the type tag fixed to ERC20.
func NewERC20Asset(address, symbol string, decimals int, image string) AssetDescriptor {
	return AssetDescriptor{
		Type: AssetTypeERC20,
		Options: AssetOptions{
			Address:  address,
			Symbol:   symbol,
			Decimals: decimals,
			Image:    image,
		},
	}
}

// Permission is one entry of the wallet's permission list (EIP-2255).
type Permission struct {
	ParentCapability string   `json:"parentCapability"`
	Invoker          string   `json:"invoker,omitempty"`
	Date             int64    `json:"date,omitempty"`
	Caveats          []Caveat `json:"caveats,omitempty"`
}

// Caveat restricts a permission.
type Caveat struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// RequestedPermissions maps method names to an empty object, for example
// {"eth_accounts": {}}.
type RequestedPermissions map[string]struct{}

// NewRequestedPermissions builds a request for the given methods.
func NewRequestedPermissions(methods ...string) RequestedPermissions {
	rp := make(RequestedPermissions, len(methods))
	for _, m := range methods {
		rp[m] = struct{}{}
	}
	return rp
}

// MissingFieldsError lists required fields that were empty.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// ErrInvalidParams marks caller-side validation failures.
var ErrInvalidParams = errors.New("invalid params")

// Is lets errors.Is(err, ErrInvalidParams) match a MissingFieldsError.
func (e *MissingFieldsError) Is(target error) bool {
	return target == ErrInvalidParams
}
