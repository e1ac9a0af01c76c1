package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Mohsinsiddi/w3mask/internal/api"
	"github.com/Mohsinsiddi/w3mask/internal/bridge"
	"go.uber.org/zap"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.bridge.State())
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.bridge.Connect(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.ConnectResponse{Accounts: accounts})
}

func (s *Server) handleDisconnect(w http.ResponseWriter, _ *http.Request) {
	s.bridge.Disconnect()
	writeJSON(w, http.StatusOK, s.bridge.State())
}

func (s *Server) handleSwitchChain(w http.ResponseWriter, r *http.Request) {
	var params bridge.SwitchChainParams
	if !s.decode(w, r, &params) {
		return
	}
	if err := s.bridge.SwitchChain(r.Context(), params); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.bridge.State())
}

func (s *Server) handleAddChain(w http.ResponseWriter, r *http.Request) {
	var desc bridge.ChainDescriptor
	if !s.decode(w, r, &desc) {
		return
	}
	if err := s.bridge.AddChain(r.Context(), desc); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.bridge.State())
}

func (s *Server) handleWatchAsset(w http.ResponseWriter, r *http.Request) {
	var asset bridge.AssetDescriptor
	if !s.decode(w, r, &asset) {
		return
	}
	added, err := s.bridge.WatchAsset(r.Context(), asset)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.WatchAssetResponse{Added: added})
}

func (s *Server) handleGetPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := s.bridge.GetPermissions(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.PermissionsResponse{Permissions: perms})
}

func (s *Server) handleRequestPermissions(w http.ResponseWriter, r *http.Request) {
	var req api.PermissionsRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Methods) == 0 {
		req.Methods = []string{"eth_accounts"}
	}
	perms, err := s.bridge.RequestPermissions(r.Context(), bridge.NewRequestedPermissions(req.Methods...))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.PermissionsResponse{Permissions: perms})
}

func (s *Server) handleDecrypt(w http.ResponseWriter, r *http.Request) {
	var req api.DecryptRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Message == "" {
		s.fail(w, r, &bridge.MissingFieldsError{Fields: []string{"message"}})
		return
	}
	plain, err := s.bridge.Decrypt(r.Context(), req.Message)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.ResultResponse{Result: plain})
}

func (s *Server) handleEncryptionKey(w http.ResponseWriter, r *http.Request) {
	key, err := s.bridge.GetEncryptionPublicKey(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.KeyResponse{Key: key})
}

// handleEncrypt seals a message locally. Without a recipient key the
// connected account's own encryption key is fetched from the wallet.
func (s *Server) handleEncrypt(w http.ResponseWriter, r *http.Request) {
	var req api.EncryptRequest
	if !s.decode(w, r, &req) {
		return
	}
	key := req.PublicKey
	if key == "" {
		var err error
		if key, err = s.bridge.GetEncryptionPublicKey(r.Context()); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	sealed, err := bridge.Encrypt(key, req.Message)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.ResultResponse{Result: sealed})
}

func (s *Server) handleScanQRCode(w http.ResponseWriter, r *http.Request) {
	var req api.ScanRequest
	if !s.decode(w, r, &req) {
		return
	}
	var pattern []string
	if req.Pattern != "" {
		pattern = append(pattern, req.Pattern)
	}
	text, err := s.bridge.ScanQRCode(r.Context(), pattern...)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.ResultResponse{Result: text})
}

func (s *Server) handleTransaction(w http.ResponseWriter, r *http.Request) {
	var tx bridge.TransactionRequest
	if !s.decode(w, r, &tx) {
		return
	}
	hash, err := s.bridge.SendTransaction(r.Context(), tx)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.TxResponse{Hash: hash})
}

// --- helpers ---

// decode reads a JSON body into v. An empty body leaves v untouched.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		s.fail(w, r, fmt.Errorf("%w: %v", api.ErrBadRequest, err))
		return false
	}
	return true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Debug("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	writeError(w, err)
}

func writeError(w http.ResponseWriter, err error) {
	status, body := api.ErrorFor(err)
	writeJSON(w, status, api.ErrorResponse{Error: body})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
