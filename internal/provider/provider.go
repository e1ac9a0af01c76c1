// Package provider abstracts the wallet provider a browser extension injects
// into a page (window.ethereum). Everything outside this package talks to a
// wallet through the Provider interface and never touches the transport.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Wire-level method names understood by the wallet.
const (
	MethodRequestAccounts        = "eth_requestAccounts"
	MethodDecrypt                = "eth_decrypt"
	MethodGetEncryptionPublicKey = "eth_getEncryptionPublicKey"
	MethodSendTransaction        = "eth_sendTransaction"
	MethodAddEthereumChain       = "wallet_addEthereumChain"
	MethodSwitchEthereumChain    = "wallet_switchEthereumChain"
	MethodWatchAsset             = "wallet_watchAsset"
	MethodGetPermissions         = "wallet_getPermissions"
	MethodRequestPermissions     = "wallet_requestPermissions"
	MethodScanQRCode             = "wallet_scanQRCode"
)

// Provider-emitted notification names.
const (
	EventConnect         = "connect"
	EventDisconnect      = "disconnect"
	EventAccountsChanged = "accountsChanged"
	EventChainChanged    = "chainChanged"
)

// Provider is a single request/response entry point plus an event emitter.
// Request performs exactly one round trip; it is bounded only by ctx.
type Provider interface {
	Request(ctx context.Context, method string, params any) (json.RawMessage, error)
	// Subscribe registers fn for every provider notification and returns a
	// function that removes it.
	Subscribe(fn func(Event)) (unsubscribe func())
}

// Event is a notification emitted by the wallet.
type Event struct {
	Name string          `json:"name"`
	Data json.RawMessage `json:"data,omitempty"`
}

// EIP-1193 and JSON-RPC error codes the wallet is known to return.
const (
	CodeUserRejected      = 4001
	CodeUnauthorized      = 4100
	CodeUnsupported       = 4200
	CodeDisconnected      = 4900
	CodeChainDisconnected = 4901
	CodeUnrecognizedChain = 4902
	CodeInvalidParams     = -32602
	CodeInternal          = -32603
)

// Error is the wallet's error payload, passed through unchanged.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

// ErrProviderAbsent is returned by every request when no wallet is available.
var ErrProviderAbsent = errors.New("wallet provider not installed")

// IsUserRejected reports whether err is the wallet's "user rejected" error.
func IsUserRejected(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Code == CodeUserRejected
}

// Message returns the text a user should see for err: the wallet's own
// message when there is one, the error string otherwise.
func Message(err error) string {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Message
	}
	return err.Error()
}
