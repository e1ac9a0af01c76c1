package chain_test

import (
	"testing"

	"github.com/Mohsinsiddi/w3mask/internal/chain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryGetByName(t *testing.T) {
	registry := chain.NewRegistry()

	tests := []struct {
		name      string
		mainnetID int64
		testnetID int64
	}{
		{"ethereum", 1, 11155111},
		{"base", 8453, 84532},
		{"polygon", 137, 80002},
		{"arbitrum", 42161, 421614},
		{"optimism", 10, 11155420},
		{"bnb", 56, 97},
		{"avalanche", 43114, 43113},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := registry.GetByName(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.name, c.Name)
			assert.Equal(t, tt.mainnetID, c.Mainnet.ChainID)
			assert.Equal(t, tt.testnetID, c.Testnet.ChainID)
		})
	}
}

func TestRegistryGetByNameCaseInsensitive(t *testing.T) {
	c, err := chain.NewRegistry().GetByName("Polygon")
	require.NoError(t, err)
	assert.Equal(t, "polygon", c.Name)
}

func TestRegistryGetUnknownChain(t *testing.T) {
	registry := chain.NewRegistry()
	_, err := registry.GetByName("unknownchain")
	assert.ErrorIs(t, err, chain.ErrChainNotFound)

	_, _, err = registry.GetByChainID(123456789)
	assert.ErrorIs(t, err, chain.ErrChainNotFound)
}

func TestAllChainsComplete(t *testing.T) {
	registry := chain.NewRegistry()
	seen := map[int64]string{}
	for _, c := range registry.All() {
		t.Run(c.Name, func(t *testing.T) {
			for _, mode := range []string{chain.Mainnet, chain.Testnet} {
				n := c.Network(mode)
				assert.NotEmpty(t, n.Name, mode)
				assert.NotZero(t, n.ChainID, mode)
				assert.NotEmpty(t, n.RPCs, mode)
				assert.NotEmpty(t, n.Explorer, mode)
				require.NoError(t, c.Descriptor(mode).Validate(), mode)

				prev, dup := seen[n.ChainID]
				assert.False(t, dup, "chain id %d used by %s and %s", n.ChainID, prev, c.Name)
				seen[n.ChainID] = c.Name
			}
			assert.Equal(t, 18, c.Currency.Decimals)
		})
	}
}

func TestGetByChainIDReportsMode(t *testing.T) {
	registry := chain.NewRegistry()

	c, mode, err := registry.GetByChainID(137)
	require.NoError(t, err)
	assert.Equal(t, "polygon", c.Name)
	assert.Equal(t, chain.Mainnet, mode)

	c, mode, err = registry.GetByChainID(80002)
	require.NoError(t, err)
	assert.Equal(t, "polygon", c.Name)
	assert.Equal(t, chain.Testnet, mode)
}

func TestHexID(t *testing.T) {
	c, err := chain.NewRegistry().GetByName("polygon")
	require.NoError(t, err)
	assert.Equal(t, "0x89", c.HexID(chain.Mainnet))
	assert.Equal(t, "0x13882", c.HexID(chain.Testnet))
	assert.Equal(t, "0x89", c.HexID(""))
}

func TestDescriptor(t *testing.T) {
	c, err := chain.NewRegistry().GetByName("base")
	require.NoError(t, err)

	d := c.Descriptor(chain.Testnet)
	assert.Equal(t, "0x14a34", d.ChainID)
	assert.Equal(t, "Base Sepolia", d.ChainName)
	assert.Equal(t, "ETH", d.NativeCurrency.Symbol)
	assert.Equal(t, []string{"https://sepolia.base.org"}, d.RPCURLs)
	assert.Equal(t, []string{"https://sepolia.basescan.org"}, d.BlockExplorerURLs)

	// The descriptor owns its slices.
	d.RPCURLs[0] = "mutated"
	assert.Equal(t, "https://sepolia.base.org", c.Testnet.RPCs[0])
}

func TestLookup(t *testing.T) {
	registry := chain.NewRegistry()

	c, mode, err := registry.Lookup("0x1")
	require.NoError(t, err)
	assert.Equal(t, "ethereum", c.Name)
	assert.Equal(t, chain.Mainnet, mode)

	c, mode, err = registry.Lookup("0xaa36a7")
	require.NoError(t, err)
	assert.Equal(t, "ethereum", c.Name)
	assert.Equal(t, chain.Testnet, mode)

	_, _, err = registry.Lookup("1")
	assert.Error(t, err)
	_, _, err = registry.Lookup("0x999999")
	assert.ErrorIs(t, err, chain.ErrChainNotFound)
}

func TestResolve(t *testing.T) {
	registry := chain.NewRegistry()

	tests := []struct {
		ref, mode string
		wantName  string
		wantMode  string
	}{
		{"arbitrum", "testnet", "arbitrum", chain.Testnet},
		{"arbitrum", "", "arbitrum", chain.Mainnet},
		{"0x38", "testnet", "bnb", chain.Mainnet},
		{"97", "", "bnb", chain.Testnet},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			c, mode, err := registry.Resolve(tt.ref, tt.mode)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, c.Name)
			assert.Equal(t, tt.wantMode, mode)
		})
	}

	_, _, err := registry.Resolve("nowhere", "")
	assert.ErrorIs(t, err, chain.ErrChainNotFound)
}

func TestTxURL(t *testing.T) {
	c, err := chain.NewRegistry().GetByName("ethereum")
	require.NoError(t, err)
	assert.Equal(t, "https://sepolia.etherscan.io/tx/0xabc", c.TxURL(chain.Testnet, "0xabc"))
	assert.Equal(t, "https://etherscan.io/tx/0xabc", c.TxURL(chain.Mainnet, "0xabc"))
}
