package faucet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/ethereum/go-ethereum/common"
)

// Defaults carried over from the token faucet this replaces.
const (
	DefaultToken    = "0x0064164e643f4EfFDdd5E5892C7e4C707908D55f"
	DefaultExplorer = "https://ropsten.etherscan.io"
	DefaultKeyName  = "faucet"
)

// Config is read from W3MASK_FAUCET_* environment variables. The signing
// key itself is never part of it; KeyRef names a keychain entry.
type Config struct {
	RPCURL       string `env:"W3MASK_FAUCET_RPC_URL"`
	Token        string `env:"W3MASK_FAUCET_TOKEN"         envDefault:"0x0064164e643f4EfFDdd5E5892C7e4C707908D55f"`
	Decimals     uint8  `env:"W3MASK_FAUCET_DECIMALS"      envDefault:"18"`
	AdminAddress string `env:"W3MASK_FAUCET_ADMIN_ADDRESS"`
	KeyRef       string `env:"W3MASK_FAUCET_KEY_REF"       envDefault:"w3mask.faucet"`
	GasLimit     uint64 `env:"W3MASK_FAUCET_GAS_LIMIT"     envDefault:"150000"`
	Min          int64  `env:"W3MASK_FAUCET_MIN"           envDefault:"1"`
	Max          int64  `env:"W3MASK_FAUCET_MAX"           envDefault:"15"`
	Explorer     string `env:"W3MASK_FAUCET_EXPLORER"      envDefault:"https://ropsten.etherscan.io"`
}

// LoadConfig parses the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// ErrInvalidConfig marks a faucet configuration that cannot send.
var ErrInvalidConfig = errors.New("invalid faucet config")

// Validate checks the fields Send depends on.
func (c Config) Validate() error {
	var problems []string
	if c.RPCURL == "" {
		problems = append(problems, "W3MASK_FAUCET_RPC_URL is not set")
	}
	if !common.IsHexAddress(c.Token) {
		problems = append(problems, "token is not an address")
	}
	if c.AdminAddress != "" && !common.IsHexAddress(c.AdminAddress) {
		problems = append(problems, "admin address is not an address")
	}
	if c.KeyRef == "" {
		problems = append(problems, "key reference is empty")
	}
	if c.GasLimit == 0 {
		problems = append(problems, "gas limit is zero")
	}
	if c.Min < 0 || c.Max < c.Min {
		problems = append(problems, fmt.Sprintf("amount bounds [%d, %d] are invalid", c.Min, c.Max))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// TxURL links a transaction hash on the configured explorer.
func (c Config) TxURL(hash string) string {
	if c.Explorer == "" {
		return ""
	}
	return strings.TrimRight(c.Explorer, "/") + "/tx/" + hash
}
