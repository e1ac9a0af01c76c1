// Package api is the daemon's local HTTP interface: the JSON bodies both
// sides exchange, the mapping between Go errors and error bodies, and a
// client for the CLI.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Mohsinsiddi/w3mask/internal/bridge"
	"github.com/Mohsinsiddi/w3mask/internal/provider"
)

// Routes.
const (
	PathState         = "/api/state"
	PathConnect       = "/api/connect"
	PathDisconnect    = "/api/disconnect"
	PathSwitchChain   = "/api/chain/switch"
	PathAddChain      = "/api/chain/add"
	PathWatchAsset    = "/api/asset/watch"
	PathPermissions   = "/api/permissions"
	PathDecrypt       = "/api/decrypt"
	PathEncryptionKey = "/api/encryption-key"
	PathEncrypt       = "/api/encrypt"
	PathScanQRCode    = "/api/qr/scan"
	PathTransaction   = "/api/tx"
)

type ConnectResponse struct {
	Accounts []string `json:"accounts"`
}

type WatchAssetResponse struct {
	Added bool `json:"added"`
}

type PermissionsRequest struct {
	Methods []string `json:"methods"`
}

type PermissionsResponse struct {
	Permissions []bridge.Permission `json:"permissions"`
}

type DecryptRequest struct {
	Message string `json:"message"`
}

// EncryptRequest encrypts Message for PublicKey, or for the connected
// account's key when PublicKey is empty.
type EncryptRequest struct {
	PublicKey string `json:"publicKey,omitempty"`
	Message   string `json:"message"`
}

type ScanRequest struct {
	Pattern string `json:"pattern,omitempty"`
}

type ResultResponse struct {
	Result string `json:"result"`
}

type KeyResponse struct {
	Key string `json:"key"`
}

type TxResponse struct {
	Hash string `json:"hash"`
}

// Error kinds.
const (
	KindProvider     = "provider"
	KindAbsent       = "absent"
	KindNoAccount    = "no_account"
	KindStaleSession = "stale_session"
	KindInvalid      = "invalid_params"
	KindInternal     = "internal"
)

// ErrorBody is the payload of every non-2xx response. For provider errors
// Code, Message and Data are the wallet's own.
type ErrorBody struct {
	Kind    string          `json:"kind"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrBadRequest marks a request body the daemon could not decode.
var ErrBadRequest = errors.New("bad request")

// ErrorFor maps err to an HTTP status and error body.
func ErrorFor(err error) (int, ErrorBody) {
	var pe *provider.Error
	switch {
	case errors.As(err, &pe):
		return http.StatusBadGateway, ErrorBody{Kind: KindProvider, Code: pe.Code, Message: pe.Message, Data: pe.Data}
	case errors.Is(err, provider.ErrProviderAbsent):
		return http.StatusServiceUnavailable, ErrorBody{Kind: KindAbsent, Code: provider.CodeDisconnected, Message: err.Error()}
	case errors.Is(err, bridge.ErrNoAccount):
		return http.StatusConflict, ErrorBody{Kind: KindNoAccount, Code: provider.CodeUnauthorized, Message: err.Error()}
	case errors.Is(err, bridge.ErrStaleSession):
		return http.StatusConflict, ErrorBody{Kind: KindStaleSession, Message: err.Error()}
	case errors.Is(err, bridge.ErrInvalidParams), errors.Is(err, bridge.ErrBadPublicKey), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, ErrorBody{Kind: KindInvalid, Code: provider.CodeInvalidParams, Message: err.Error()}
	default:
		return http.StatusInternalServerError, ErrorBody{Kind: KindInternal, Code: provider.CodeInternal, Message: err.Error()}
	}
}

// Err turns a decoded body back into an error that errors.Is and
// errors.As match the same way as on the daemon side.
func (b ErrorBody) Err() error {
	switch b.Kind {
	case KindProvider:
		return &provider.Error{Code: b.Code, Message: b.Message, Data: b.Data}
	case KindAbsent:
		return provider.ErrProviderAbsent
	case KindNoAccount:
		return bridge.ErrNoAccount
	case KindStaleSession:
		return bridge.ErrStaleSession
	case KindInvalid:
		return fmt.Errorf("%w: %s", bridge.ErrInvalidParams, b.Message)
	default:
		return fmt.Errorf("daemon error: %s", b.Message)
	}
}
