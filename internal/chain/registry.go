package chain

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/Mohsinsiddi/w3mask/internal/bridge"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ErrChainNotFound is returned when a chain is not in the registry.
var ErrChainNotFound = errors.New("chain not found")

// Network modes.
const (
	Mainnet = "mainnet"
	Testnet = "testnet"
)

// Network is one deployment of a chain.
type Network struct {
	Name     string   `json:"name"`
	ChainID  int64    `json:"chain_id"`
	RPCs     []string `json:"rpcs"`
	Explorer string   `json:"explorer"`
}

// Chain holds the metadata a wallet needs to add or switch to a chain.
type Chain struct {
	Name        string                `json:"name"`
	DisplayName string                `json:"display_name"`
	Currency    bridge.NativeCurrency `json:"currency"`
	Mainnet     Network               `json:"mainnet"`
	Testnet     Network               `json:"testnet"`
	// FaucetURL is the official testnet faucet.
	FaucetURL string `json:"faucet_url,omitempty"`
}

// Registry is the chain registry.
type Registry struct {
	chains []Chain
	byName map[string]*Chain
	byID   map[int64]*Chain
}

// NewRegistry returns the built-in EVM chains.
func NewRegistry() *Registry {
	chains := allChains()
	r := &Registry{
		chains: chains,
		byName: make(map[string]*Chain, len(chains)),
		byID:   make(map[int64]*Chain, 2*len(chains)),
	}
	for i := range r.chains {
		c := &r.chains[i]
		r.byName[c.Name] = c
		r.byID[c.Mainnet.ChainID] = c
		r.byID[c.Testnet.ChainID] = c
	}
	return r
}

// All returns every chain in the registry.
func (r *Registry) All() []Chain {
	return r.chains
}

// GetByName finds a chain by its slug name (e.g. "base", "ethereum").
func (r *Registry) GetByName(name string) (*Chain, error) {
	c, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrChainNotFound, name)
	}
	return c, nil
}

// GetByChainID finds a chain by a mainnet or testnet chain ID and reports
// which of the two it matched.
func (r *Registry) GetByChainID(id int64) (*Chain, string, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, "", fmt.Errorf("%w: id %d", ErrChainNotFound, id)
	}
	if c.Testnet.ChainID == id {
		return c, Testnet, nil
	}
	return c, Mainnet, nil
}

// Lookup resolves a wallet chainId such as "0x89".
func (r *Registry) Lookup(hexID string) (*Chain, string, error) {
	id, err := ParseHexID(hexID)
	if err != nil {
		return nil, "", err
	}
	if !id.IsInt64() {
		return nil, "", fmt.Errorf("%w: %s", ErrChainNotFound, hexID)
	}
	return r.GetByChainID(id.Int64())
}

// Resolve accepts a chain slug, a decimal ID or a 0x-prefixed hex ID.
func (r *Registry) Resolve(ref, mode string) (*Chain, string, error) {
	if c, err := r.GetByName(ref); err == nil {
		return c, normaliseMode(mode), nil
	}
	if strings.HasPrefix(ref, "0x") || strings.HasPrefix(ref, "0X") {
		return r.Lookup(ref)
	}
	id, ok := new(big.Int).SetString(ref, 10)
	if !ok || !id.IsInt64() {
		return nil, "", fmt.Errorf("%w: %s", ErrChainNotFound, ref)
	}
	return r.GetByChainID(id.Int64())
}

// Network returns the deployment for mode; anything but "testnet" is
// mainnet.
func (c *Chain) Network(mode string) Network {
	if mode == Testnet {
		return c.Testnet
	}
	return c.Mainnet
}

// RPCs returns the RPC list for a chain in the given mode.
func (c *Chain) RPCs(mode string) []string {
	return c.Network(mode).RPCs
}

// Explorer returns the explorer URL for a chain in the given mode.
func (c *Chain) Explorer(mode string) string {
	return c.Network(mode).Explorer
}

// HexID returns the wallet form of the chain ID, e.g. "0x89".
func (c *Chain) HexID(mode string) string {
	return hexutil.EncodeBig(big.NewInt(c.Network(mode).ChainID))
}

// Descriptor returns the wallet_addEthereumChain parameter for mode.
func (c *Chain) Descriptor(mode string) bridge.ChainDescriptor {
	n := c.Network(mode)
	d := bridge.ChainDescriptor{
		ChainID:        c.HexID(mode),
		ChainName:      n.Name,
		NativeCurrency: c.Currency,
		RPCURLs:        append([]string(nil), n.RPCs...),
	}
	if n.Explorer != "" {
		d.BlockExplorerURLs = []string{n.Explorer}
	}
	return d
}

// TxURL links a transaction on the chain's explorer, or "" if it has none.
func (c *Chain) TxURL(mode, hash string) string {
	explorer := c.Explorer(mode)
	if explorer == "" {
		return ""
	}
	return strings.TrimRight(explorer, "/") + "/tx/" + hash
}

// ParseHexID decodes a 0x-prefixed chain ID.
func ParseHexID(hexID string) (*big.Int, error) {
	id, err := hexutil.DecodeBig(strings.ToLower(hexID))
	if err != nil {
		return nil, fmt.Errorf("invalid chain id %q: %w", hexID, err)
	}
	return id, nil
}

func normaliseMode(mode string) string {
	if mode == Testnet {
		return Testnet
	}
	return Mainnet
}

// --- chain data ---

func eth(name string) bridge.NativeCurrency {
	return bridge.NativeCurrency{Name: name, Symbol: "ETH", Decimals: 18}
}

func allChains() []Chain {
	return []Chain{
		{
			Name: "ethereum", DisplayName: "Ethereum", Currency: eth("Ether"),
			Mainnet: Network{
				Name: "Ethereum Mainnet", ChainID: 1,
				RPCs:     []string{"https://eth.llamarpc.com", "https://ethereum-rpc.publicnode.com"},
				Explorer: "https://etherscan.io",
			},
			Testnet: Network{
				Name: "Sepolia", ChainID: 11155111,
				RPCs:     []string{"https://rpc.sepolia.org", "https://sepolia.gateway.tenderly.co"},
				Explorer: "https://sepolia.etherscan.io",
			},
			FaucetURL: "https://sepoliafaucet.com",
		},
		{
			Name: "base", DisplayName: "Base", Currency: eth("Ether"),
			Mainnet: Network{
				Name: "Base", ChainID: 8453,
				RPCs:     []string{"https://mainnet.base.org", "https://base.llamarpc.com"},
				Explorer: "https://basescan.org",
			},
			Testnet: Network{
				Name: "Base Sepolia", ChainID: 84532,
				RPCs:     []string{"https://sepolia.base.org"},
				Explorer: "https://sepolia.basescan.org",
			},
			FaucetURL: "https://www.alchemy.com/faucets/base-sepolia",
		},
		{
			Name: "polygon", DisplayName: "Polygon",
			Currency: bridge.NativeCurrency{Name: "POL", Symbol: "POL", Decimals: 18},
			Mainnet: Network{
				Name: "Polygon Mainnet", ChainID: 137,
				RPCs:     []string{"https://polygon-bor-rpc.publicnode.com", "https://polygon-pokt.nodies.app"},
				Explorer: "https://polygonscan.com",
			},
			Testnet: Network{
				Name: "Polygon Amoy", ChainID: 80002,
				RPCs:     []string{"https://rpc-amoy.polygon.technology"},
				Explorer: "https://amoy.polygonscan.com",
			},
			FaucetURL: "https://faucet.polygon.technology",
		},
		{
			Name: "arbitrum", DisplayName: "Arbitrum", Currency: eth("Ether"),
			Mainnet: Network{
				Name: "Arbitrum One", ChainID: 42161,
				RPCs:     []string{"https://arb1.arbitrum.io/rpc", "https://arbitrum.llamarpc.com"},
				Explorer: "https://arbiscan.io",
			},
			Testnet: Network{
				Name: "Arbitrum Sepolia", ChainID: 421614,
				RPCs:     []string{"https://sepolia-rollup.arbitrum.io/rpc"},
				Explorer: "https://sepolia.arbiscan.io",
			},
			FaucetURL: "https://www.alchemy.com/faucets/arbitrum-sepolia",
		},
		{
			Name: "optimism", DisplayName: "Optimism", Currency: eth("Ether"),
			Mainnet: Network{
				Name: "OP Mainnet", ChainID: 10,
				RPCs:     []string{"https://mainnet.optimism.io", "https://optimism.llamarpc.com"},
				Explorer: "https://optimistic.etherscan.io",
			},
			Testnet: Network{
				Name: "OP Sepolia", ChainID: 11155420,
				RPCs:     []string{"https://sepolia.optimism.io"},
				Explorer: "https://sepolia-optimism.etherscan.io",
			},
			FaucetURL: "https://www.alchemy.com/faucets/optimism-sepolia",
		},
		{
			Name: "bnb", DisplayName: "BNB Chain",
			Currency: bridge.NativeCurrency{Name: "BNB", Symbol: "BNB", Decimals: 18},
			Mainnet: Network{
				Name: "BNB Smart Chain", ChainID: 56,
				RPCs:     []string{"https://bsc-dataseed.binance.org", "https://bsc-rpc.publicnode.com"},
				Explorer: "https://bscscan.com",
			},
			Testnet: Network{
				Name: "BSC Testnet", ChainID: 97,
				RPCs:     []string{"https://data-seed-prebsc-1-s1.binance.org:8545"},
				Explorer: "https://testnet.bscscan.com",
			},
			FaucetURL: "https://www.bnbchain.org/en/testnet-faucet",
		},
		{
			Name: "avalanche", DisplayName: "Avalanche",
			Currency: bridge.NativeCurrency{Name: "Avalanche", Symbol: "AVAX", Decimals: 18},
			Mainnet: Network{
				Name: "Avalanche C-Chain", ChainID: 43114,
				RPCs:     []string{"https://api.avax.network/ext/bc/C/rpc", "https://avalanche-c-chain-rpc.publicnode.com"},
				Explorer: "https://snowtrace.io",
			},
			Testnet: Network{
				Name: "Avalanche Fuji", ChainID: 43113,
				RPCs:     []string{"https://api.avax-test.network/ext/bc/C/rpc"},
				Explorer: "https://testnet.snowtrace.io",
			},
			FaucetURL: "https://faucet.avax.network",
		},
		{
			Name: "linea", DisplayName: "Linea", Currency: eth("Linea Ether"),
			Mainnet: Network{
				Name: "Linea", ChainID: 59144,
				RPCs:     []string{"https://rpc.linea.build", "https://linea-rpc.publicnode.com"},
				Explorer: "https://lineascan.build",
			},
			Testnet: Network{
				Name: "Linea Sepolia", ChainID: 59141,
				RPCs:     []string{"https://rpc.sepolia.linea.build"},
				Explorer: "https://sepolia.lineascan.build",
			},
			FaucetURL: "https://www.infura.io/faucet/linea",
		},
		{
			Name: "scroll", DisplayName: "Scroll", Currency: eth("Ether"),
			Mainnet: Network{
				Name: "Scroll", ChainID: 534352,
				RPCs:     []string{"https://rpc.scroll.io", "https://scroll-rpc.publicnode.com"},
				Explorer: "https://scrollscan.com",
			},
			Testnet: Network{
				Name: "Scroll Sepolia", ChainID: 534351,
				RPCs:     []string{"https://sepolia-rpc.scroll.io"},
				Explorer: "https://sepolia.scrollscan.com",
			},
			FaucetURL: "https://faucet.quicknode.com/scroll/sepolia",
		},
		{
			Name: "celo", DisplayName: "Celo",
			Currency: bridge.NativeCurrency{Name: "Celo", Symbol: "CELO", Decimals: 18},
			Mainnet: Network{
				Name: "Celo Mainnet", ChainID: 42220,
				RPCs:     []string{"https://forno.celo.org", "https://celo-rpc.publicnode.com"},
				Explorer: "https://celoscan.io",
			},
			Testnet: Network{
				Name: "Celo Alfajores", ChainID: 44787,
				RPCs:     []string{"https://alfajores-forno.celo-testnet.org"},
				Explorer: "https://alfajores.celoscan.io",
			},
			FaucetURL: "https://faucet.celo.org",
		},
		{
			Name: "gnosis", DisplayName: "Gnosis",
			Currency: bridge.NativeCurrency{Name: "xDAI", Symbol: "XDAI", Decimals: 18},
			Mainnet: Network{
				Name: "Gnosis", ChainID: 100,
				RPCs:     []string{"https://rpc.gnosischain.com", "https://gnosis-rpc.publicnode.com"},
				Explorer: "https://gnosisscan.io",
			},
			Testnet: Network{
				Name: "Gnosis Chiado", ChainID: 10200,
				RPCs:     []string{"https://rpc.chiadochain.net"},
				Explorer: "https://gnosis-chiado.blockscout.com",
			},
			FaucetURL: "https://faucet.chiadochain.net",
		},
		{
			Name: "mantle", DisplayName: "Mantle",
			Currency: bridge.NativeCurrency{Name: "Mantle", Symbol: "MNT", Decimals: 18},
			Mainnet: Network{
				Name: "Mantle", ChainID: 5000,
				RPCs:     []string{"https://rpc.mantle.xyz", "https://mantle-rpc.publicnode.com"},
				Explorer: "https://mantlescan.xyz",
			},
			Testnet: Network{
				Name: "Mantle Sepolia", ChainID: 5003,
				RPCs:     []string{"https://rpc.sepolia.mantle.xyz"},
				Explorer: "https://sepolia.mantlescan.xyz",
			},
			FaucetURL: "https://faucet.sepolia.mantle.xyz",
		},
	}
}
