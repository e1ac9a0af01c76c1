package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Mohsinsiddi/w3mask/internal/bridge"
)

// ErrDaemonUnreachable is returned when nothing answers at the daemon URL.
var ErrDaemonUnreachable = errors.New("w3mask daemon is not running (start it with `w3mask serve`)")

// Client calls the daemon. Every call is bounded by its context only.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient creates a client for the daemon at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the daemon address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// --- operations ---

func (c *Client) State(ctx context.Context) (bridge.State, error) {
	var s bridge.State
	err := c.do(ctx, http.MethodGet, PathState, nil, &s)
	return s, err
}

func (c *Client) Connect(ctx context.Context) ([]string, error) {
	var out ConnectResponse
	err := c.do(ctx, http.MethodPost, PathConnect, nil, &out)
	return out.Accounts, err
}

func (c *Client) Disconnect(ctx context.Context) (bridge.State, error) {
	var s bridge.State
	err := c.do(ctx, http.MethodPost, PathDisconnect, nil, &s)
	return s, err
}

func (c *Client) SwitchChain(ctx context.Context, params bridge.SwitchChainParams) error {
	return c.do(ctx, http.MethodPost, PathSwitchChain, params, nil)
}

func (c *Client) AddChain(ctx context.Context, desc bridge.ChainDescriptor) error {
	return c.do(ctx, http.MethodPost, PathAddChain, desc, nil)
}

func (c *Client) WatchAsset(ctx context.Context, asset bridge.AssetDescriptor) (bool, error) {
	var out WatchAssetResponse
	err := c.do(ctx, http.MethodPost, PathWatchAsset, asset, &out)
	return out.Added, err
}

func (c *Client) GetPermissions(ctx context.Context) ([]bridge.Permission, error) {
	var out PermissionsResponse
	err := c.do(ctx, http.MethodGet, PathPermissions, nil, &out)
	return out.Permissions, err
}

func (c *Client) RequestPermissions(ctx context.Context, methods ...string) ([]bridge.Permission, error) {
	var out PermissionsResponse
	err := c.do(ctx, http.MethodPost, PathPermissions, PermissionsRequest{Methods: methods}, &out)
	return out.Permissions, err
}

func (c *Client) Decrypt(ctx context.Context, message string) (string, error) {
	var out ResultResponse
	err := c.do(ctx, http.MethodPost, PathDecrypt, DecryptRequest{Message: message}, &out)
	return out.Result, err
}

func (c *Client) GetEncryptionPublicKey(ctx context.Context) (string, error) {
	var out KeyResponse
	err := c.do(ctx, http.MethodGet, PathEncryptionKey, nil, &out)
	return out.Key, err
}

// Encrypt seals message for publicKey; an empty key means the connected
// account's own encryption key.
func (c *Client) Encrypt(ctx context.Context, publicKey, message string) (string, error) {
	var out ResultResponse
	err := c.do(ctx, http.MethodPost, PathEncrypt, EncryptRequest{PublicKey: publicKey, Message: message}, &out)
	return out.Result, err
}

func (c *Client) ScanQRCode(ctx context.Context, pattern string) (string, error) {
	var out ResultResponse
	err := c.do(ctx, http.MethodPost, PathScanQRCode, ScanRequest{Pattern: pattern}, &out)
	return out.Result, err
}

func (c *Client) SendTransaction(ctx context.Context, tx bridge.TransactionRequest) (string, error) {
	var out TxResponse
	err := c.do(ctx, http.MethodPost, PathTransaction, tx, &out)
	return out.Hash, err
}

// --- transport ---

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if method != http.MethodGet {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrDaemonUnreachable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode >= 300 {
		var er ErrorResponse
		if err := json.Unmarshal(data, &er); err != nil || er.Error.Message == "" {
			return fmt.Errorf("daemon returned %s", resp.Status)
		}
		return er.Error.Err()
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
