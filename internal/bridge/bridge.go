// Package bridge is the single point of contact with a wallet provider. It
// turns each wallet operation into one provider request and keeps the
// session state (accounts, chain, connection flag) in step with the
// provider's notifications.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/Mohsinsiddi/w3mask/internal/provider"
	"go.uber.org/zap"
)

// Errors.
var (
	// ErrNoAccount is returned by operations that need a connected account.
	ErrNoAccount = errors.New("no connected account: connect the wallet first")
	// ErrStaleSession is returned when a request completes after the session
	// it was made in has been reset. Its result is discarded.
	ErrStaleSession = errors.New("session was reset while the request was in flight")
)

// State is a snapshot of the wallet session.
type State struct {
	Installed  bool     `json:"isInstalled"`
	Wallet     string   `json:"wallet,omitempty"`
	Active     bool     `json:"active"`
	ChainID    string   `json:"chainId"`
	Accounts   []string `json:"accounts"`
	Generation uint64   `json:"generation"`
}

// Account returns the implicit sender, or "" when disconnected.
func (s State) Account() string {
	if len(s.Accounts) == 0 {
		return ""
	}
	return s.Accounts[0]
}

// Bridge wraps a provider and owns the session state.
type Bridge struct {
	p   provider.Provider
	log *zap.Logger

	mu       sync.Mutex
	active   bool
	chainID  string
	accounts []string
	gen      uint64

	watchMu  sync.Mutex
	watchID  uint64
	watchers map[uint64]func(State)

	unsubscribe func()
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger used for state transitions.
func WithLogger(l *zap.Logger) Option {
	return func(b *Bridge) {
		b.log = l
	}
}

// New creates a bridge over p and subscribes to its notifications. The
// subscription lives until Close.
func New(p provider.Provider, opts ...Option) *Bridge {
	b := &Bridge{
		p:        p,
		log:      zap.NewNop(),
		accounts: []string{},
		watchers: make(map[uint64]func(State)),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.unsubscribe = p.Subscribe(b.handleEvent)
	return b
}

// Close drops the provider subscription.
func (b *Bridge) Close() {
	b.unsubscribe()
}

// Capability reports whether a wallet is available right now.
func (b *Bridge) Capability() provider.Capability {
	return provider.Detect(b.p)
}

// State returns a copy of the session.
func (b *Bridge) State() State {
	s := b.snapshot()
	if c, ok := b.Capability().(provider.Present); ok {
		s.Installed = true
		s.Wallet = c.Info.Name
	}
	return s
}

// Watch registers fn to be called with the new state after every change.
func (b *Bridge) Watch(fn func(State)) (stop func()) {
	b.watchMu.Lock()
	id := b.watchID
	b.watchID++
	b.watchers[id] = fn
	b.watchMu.Unlock()
	return func() {
		b.watchMu.Lock()
		delete(b.watchers, id)
		b.watchMu.Unlock()
	}
}

// --- eth ---

// Connect asks the wallet for account access. On success the returned
// accounts replace the session's; on failure the session is untouched and
// the wallet's error is returned as is.
func (b *Bridge) Connect(ctx context.Context) ([]string, error) {
	p, err := b.present()
	if err != nil {
		return nil, err
	}
	gen := b.generation()

	raw, err := p.Request(ctx, provider.MethodRequestAccounts, nil)
	if err != nil {
		return nil, err
	}
	var accounts []string
	if err := json.Unmarshal(raw, &accounts); err != nil {
		return nil, fmt.Errorf("decoding %s result: %w", provider.MethodRequestAccounts, err)
	}
	if accounts == nil {
		accounts = []string{}
	}

	b.mu.Lock()
	if b.gen != gen {
		b.mu.Unlock()
		b.log.Debug("discarding stale connect result", zap.Uint64("generation", gen))
		return nil, ErrStaleSession
	}
	b.accounts = accounts
	b.active = len(accounts) > 0
	b.mu.Unlock()

	b.log.Info("wallet connected", zap.Strings("accounts", accounts))
	b.notify()
	return slices.Clone(accounts), nil
}

// Disconnect clears the session locally. Wallets have no disconnect call,
// so the provider is not told. Requests still in flight become stale.
func (b *Bridge) Disconnect() {
	b.reset("local disconnect")
}

// Decrypt asks the wallet to decrypt a message for the first account.
func (b *Bridge) Decrypt(ctx context.Context, encryptedMessage string) (string, error) {
	account, err := b.sender()
	if err != nil {
		return "", err
	}
	var out string
	err = b.call(ctx, provider.MethodDecrypt, []string{encryptedMessage, account}, &out)
	return out, err
}

// GetEncryptionPublicKey returns the first account's public encryption key.
func (b *Bridge) GetEncryptionPublicKey(ctx context.Context) (string, error) {
	account, err := b.sender()
	if err != nil {
		return "", err
	}
	var out string
	err = b.call(ctx, provider.MethodGetEncryptionPublicKey, []string{account}, &out)
	return out, err
}

// SendTransaction submits tx from the first account on the session's chain
// and returns the transaction hash.
func (b *Bridge) SendTransaction(ctx context.Context, tx TransactionRequest) (string, error) {
	s := b.snapshot()
	if len(s.Accounts) == 0 {
		return "", ErrNoAccount
	}
	out := outgoingTx{
		TransactionRequest: tx,
		From:               s.Accounts[0],
		ChainID:            s.ChainID,
	}
	var hash string
	if err := b.call(ctx, provider.MethodSendTransaction, []outgoingTx{out}, &hash); err != nil {
		return "", err
	}
	b.log.Info("transaction submitted", zap.String("hash", hash), zap.String("from", out.From), zap.String("chain", out.ChainID))
	return hash, nil
}

// --- wallet ---

// AddChain asks the wallet to add a chain. The session's chain is not
// changed here; the wallet announces the switch itself.
func (b *Bridge) AddChain(ctx context.Context, chain ChainDescriptor) error {
	if err := chain.Validate(); err != nil {
		return err
	}
	return b.call(ctx, provider.MethodAddEthereumChain, []ChainDescriptor{chain}, nil)
}

// SwitchChain asks the wallet to switch chains. Like AddChain it leaves the
// session's chain alone.
func (b *Bridge) SwitchChain(ctx context.Context, params SwitchChainParams) error {
	if params.ChainID == "" {
		return &MissingFieldsError{Fields: []string{"chainId"}}
	}
	return b.call(ctx, provider.MethodSwitchEthereumChain, []SwitchChainParams{params}, nil)
}

// WatchAsset asks the wallet to track a token and reports whether the user
// accepted.
func (b *Bridge) WatchAsset(ctx context.Context, asset AssetDescriptor) (bool, error) {
	var added bool
	err := b.call(ctx, provider.MethodWatchAsset, asset, &added)
	return added, err
}

// GetPermissions returns the wallet's permission list for this page.
func (b *Bridge) GetPermissions(ctx context.Context) ([]Permission, error) {
	var perms []Permission
	err := b.call(ctx, provider.MethodGetPermissions, nil, &perms)
	return perms, err
}

// RequestPermissions asks the user to grant the requested permissions.
func (b *Bridge) RequestPermissions(ctx context.Context, requested RequestedPermissions) ([]Permission, error) {
	var perms []Permission
	err := b.call(ctx, provider.MethodRequestPermissions, []RequestedPermissions{requested}, &perms)
	return perms, err
}

// ScanQRCode asks a mobile wallet to scan a QR code. An optional regular
// expression restricts what is accepted.
func (b *Bridge) ScanQRCode(ctx context.Context, pattern ...string) (string, error) {
	var params any
	if len(pattern) > 0 {
		params = pattern
	}
	var out string
	err := b.call(ctx, provider.MethodScanQRCode, params, &out)
	return out, err
}

// --- internal ---

func (b *Bridge) present() (provider.Provider, error) {
	switch c := b.Capability().(type) {
	case provider.Present:
		return c.Provider, nil
	case provider.Absent:
		return nil, fmt.Errorf("%w: %s", provider.ErrProviderAbsent, c.Reason)
	default:
		return nil, provider.ErrProviderAbsent
	}
}

// call performs one request and decodes the result into out (if non-nil).
// Provider errors are returned unchanged.
func (b *Bridge) call(ctx context.Context, method string, params, out any) error {
	p, err := b.present()
	if err != nil {
		return err
	}
	raw, err := p.Request(ctx, method, params)
	if err != nil {
		b.log.Debug("wallet request failed", zap.String("method", method), zap.Error(err))
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding %s result: %w", method, err)
	}
	return nil
}

func (b *Bridge) sender() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.accounts) == 0 {
		return "", ErrNoAccount
	}
	return b.accounts[0], nil
}

func (b *Bridge) generation() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gen
}

func (b *Bridge) snapshot() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return State{
		Active:     b.active,
		ChainID:    b.chainID,
		Accounts:   slices.Clone(b.accounts),
		Generation: b.gen,
	}
}

func (b *Bridge) reset(reason string) {
	b.mu.Lock()
	b.accounts = []string{}
	b.active = false
	b.gen++
	gen := b.gen
	b.mu.Unlock()

	b.log.Info("wallet disconnected", zap.String("reason", reason), zap.Uint64("generation", gen))
	b.notify()
}

func (b *Bridge) handleEvent(ev provider.Event) {
	switch ev.Name {
	case provider.EventConnect:
		var info struct {
			ChainID string `json:"chainId"`
		}
		if err := json.Unmarshal(ev.Data, &info); err != nil {
			b.log.Warn("malformed connect event", zap.Error(err))
			return
		}
		b.mu.Lock()
		b.chainID = info.ChainID
		b.mu.Unlock()
		b.log.Info("wallet chain", zap.String("chainId", info.ChainID))
		b.notify()

	case provider.EventDisconnect:
		b.reset("provider disconnect")

	case provider.EventAccountsChanged:
		var accounts []string
		if err := json.Unmarshal(ev.Data, &accounts); err != nil {
			b.log.Warn("malformed accountsChanged event", zap.Error(err))
			return
		}
		if len(accounts) == 0 {
			b.reset("accounts cleared")
			return
		}
		b.mu.Lock()
		b.accounts = accounts
		b.active = true
		b.mu.Unlock()
		b.log.Info("wallet accounts changed", zap.Strings("accounts", accounts))
		b.notify()

	case provider.EventChainChanged:
		// The session chain follows connect notifications only.
		b.log.Debug("wallet reported chain change", zap.ByteString("data", ev.Data))
	}
}

func (b *Bridge) notify() {
	s := b.State()
	b.watchMu.Lock()
	fns := make([]func(State), 0, len(b.watchers))
	for _, fn := range b.watchers {
		fns = append(fns, fn)
	}
	b.watchMu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}
