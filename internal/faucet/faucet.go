// Package faucet sends ERC-20 tokens from an admin account whose key is held
// by the local keychain.
package faucet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/Mohsinsiddi/w3mask/internal/token"
	"github.com/Mohsinsiddi/w3mask/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Errors.
var (
	ErrAmountOutOfRange = errors.New("amount out of range")
	ErrAdminMismatch    = errors.New("stored key does not belong to the admin address")
)

// Backend is the part of an Ethereum client the faucet needs.
// *ethclient.Client satisfies it.
type Backend interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	ChainID(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// Receipt describes a broadcast faucet transfer.
type Receipt struct {
	Hash        string   `json:"hash"`
	ExplorerURL string   `json:"explorerUrl,omitempty"`
	From        string   `json:"from"`
	To          string   `json:"to"`
	Amount      string   `json:"amount"`
	Nonce       uint64   `json:"nonce"`
	GasPrice    *big.Int `json:"gasPrice"`
}

// Faucet signs and broadcasts token transfers.
type Faucet struct {
	cfg     Config
	backend Backend
	signer  *wallet.Signer
	log     *zap.Logger
}

// Option configures a Faucet.
type Option func(*Faucet)

// WithLogger sets the faucet's logger.
func WithLogger(l *zap.Logger) Option {
	return func(f *Faucet) {
		f.log = l
	}
}

// New creates a faucet. When cfg names an admin address the signer must
// control it.
func New(cfg Config, backend Backend, signer *wallet.Signer, opts ...Option) (*Faucet, error) {
	if cfg.AdminAddress != "" && common.HexToAddress(cfg.AdminAddress) != signer.Address() {
		return nil, fmt.Errorf("%w: %s", ErrAdminMismatch, cfg.AdminAddress)
	}
	f := &Faucet{cfg: cfg, backend: backend, signer: signer, log: zap.NewNop()}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Dial connects to cfg.RPCURL and loads the admin key from ks.
func Dial(ctx context.Context, cfg Config, ks wallet.KeyStore, opts ...Option) (*Faucet, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	signer, err := wallet.NewSigner(ks, cfg.KeyRef)
	if err != nil {
		return nil, nil, err
	}
	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to %s: %w", cfg.RPCURL, err)
	}
	f, err := New(cfg, client, signer, opts...)
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	return f, client.Close, nil
}

// Admin returns the sending account.
func (f *Faucet) Admin() common.Address {
	return f.signer.Address()
}

// Send transfers amount tokens to the receiver.
func (f *Faucet) Send(ctx context.Context, to, amount string) (Receipt, error) {
	if strings.TrimSpace(to) == "" {
		return Receipt{}, token.ErrMissingAddress
	}
	units, err := f.checkAmount(amount)
	if err != nil {
		return Receipt{}, err
	}
	data, err := token.TransferCalldata(to, units)
	if err != nil {
		return Receipt{}, err
	}

	admin := f.signer.Address()
	var (
		nonce    uint64
		gasPrice *big.Int
		chainID  *big.Int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := f.backend.PendingNonceAt(gctx, admin)
		if err != nil {
			return fmt.Errorf("getting nonce: %w", err)
		}
		nonce = n
		return nil
	})
	g.Go(func() error {
		p, err := f.backend.SuggestGasPrice(gctx)
		if err != nil {
			return fmt.Errorf("getting gas price: %w", err)
		}
		gasPrice = p
		return nil
	})
	g.Go(func() error {
		id, err := f.backend.ChainID(gctx)
		if err != nil {
			return fmt.Errorf("getting chain id: %w", err)
		}
		chainID = id
		return nil
	})
	if err := g.Wait(); err != nil {
		return Receipt{}, err
	}

	contract := common.HexToAddress(f.cfg.Token)
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      f.cfg.GasLimit,
		To:       &contract,
		Value:    big.NewInt(0),
		Data:     data,
	})
	signed, err := f.signer.SignTx(tx, chainID)
	if err != nil {
		return Receipt{}, err
	}
	if err := f.backend.SendTransaction(ctx, signed); err != nil {
		return Receipt{}, fmt.Errorf("broadcasting transaction: %w", err)
	}

	hash := signed.Hash().Hex()
	f.log.Info("faucet transfer sent",
		zap.String("hash", hash),
		zap.String("to", to),
		zap.String("amount", amount),
		zap.Uint64("nonce", nonce))

	return Receipt{
		Hash:        hash,
		ExplorerURL: f.cfg.TxURL(hash),
		From:        admin.Hex(),
		To:          common.HexToAddress(to).Hex(),
		Amount:      amount,
		Nonce:       nonce,
		GasPrice:    gasPrice,
	}, nil
}

func (f *Faucet) checkAmount(amount string) (*big.Int, error) {
	units, err := token.ScaleAmount(amount, f.cfg.Decimals)
	if err != nil {
		return nil, err
	}
	lo, err := token.ScaleAmount(strconv.FormatInt(f.cfg.Min, 10), f.cfg.Decimals)
	if err != nil {
		return nil, fmt.Errorf("%w: minimum %d", ErrInvalidConfig, f.cfg.Min)
	}
	hi, err := token.ScaleAmount(strconv.FormatInt(f.cfg.Max, 10), f.cfg.Decimals)
	if err != nil {
		return nil, fmt.Errorf("%w: maximum %d", ErrInvalidConfig, f.cfg.Max)
	}
	if units.Cmp(lo) < 0 || units.Cmp(hi) > 0 {
		return nil, fmt.Errorf("%w: %s not in [%d, %d]", ErrAmountOutOfRange, amount, f.cfg.Min, f.cfg.Max)
	}
	return units, nil
}
