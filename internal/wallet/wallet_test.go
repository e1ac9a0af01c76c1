package wallet

import (
	"math/big"
	"testing"

	"github.com/99designs/keyring"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Hardhat/Anvil test account #0. Never fund it on mainnet.
const (
	testPrivKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testSignerAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

// testKeystore returns a file-backed Keystore isolated to a temp directory.
// Using the FileBackend avoids OS keychain prompts in CI.
func testKeystore(t *testing.T) *Keystore {
	t.Helper()
	ring, err := keyring.Open(keyring.Config{
		ServiceName:      "w3mask-test",
		AllowedBackends:  []keyring.BackendType{keyring.FileBackend},
		FileDir:          t.TempDir(),
		FilePasswordFunc: func(string) (string, error) { return "testpass", nil },
	})
	require.NoError(t, err)
	return NewKeystore(ring)
}

// ---------------------------------------------------------------------------
// normaliseHexKey
// ---------------------------------------------------------------------------

func TestNormaliseHexKey(t *testing.T) {
	tests := []struct{ in, want string }{
		{"0xabc123", "abc123"},
		{"0Xabc123", "abc123"},
		{"abc123", "abc123"},
		{"  0xabc  ", "abc"},
		{"0x", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normaliseHexKey(tt.in), tt.in)
	}
}

// ---------------------------------------------------------------------------
// Keystore (file backend)
// ---------------------------------------------------------------------------

func TestKeystoreRoundTrip(t *testing.T) {
	ks := testKeystore(t)

	ref, err := ks.Store("faucet", "0x"+testPrivKeyHex)
	require.NoError(t, err)
	assert.Equal(t, "w3mask.faucet", ref)

	got, err := ks.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, testPrivKeyHex, got)

	require.NoError(t, ks.Delete(ref))
	_, err = ks.Retrieve(ref)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestKeystoreRetrieveMissing(t *testing.T) {
	_, err := testKeystore(t).Retrieve("w3mask.nope")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

// ---------------------------------------------------------------------------
// InMemoryKeystore
// ---------------------------------------------------------------------------

func TestInMemoryKeystore(t *testing.T) {
	ks := NewInMemoryKeystore()

	ref, err := ks.Store("a", "0xKEY")
	require.NoError(t, err)
	assert.Equal(t, Ref("a"), ref)

	got, err := ks.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, "KEY", got)

	_, err = ks.Store("a", "OTHER")
	require.NoError(t, err)
	got, _ = ks.Retrieve(ref)
	assert.Equal(t, "OTHER", got)

	require.NoError(t, ks.Delete(ref))
	require.NoError(t, ks.Delete(ref))
	_, err = ks.Retrieve(ref)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

// ---------------------------------------------------------------------------
// Signer
// ---------------------------------------------------------------------------

func TestNewSignerFromKeystore(t *testing.T) {
	ks := NewInMemoryKeystore()
	ref, _ := ks.Store("faucet", testPrivKeyHex)

	s, err := NewSigner(ks, ref)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testSignerAddr), s.Address())
}

func TestNewSignerMissingKey(t *testing.T) {
	_, err := NewSigner(NewInMemoryKeystore(), "w3mask.none")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestSignerFromHexInvalid(t *testing.T) {
	_, err := SignerFromHex("0xnothex")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing private key")
}

func TestSignTxRecoversSender(t *testing.T) {
	s, err := SignerFromHex(testPrivKeyHex)
	require.NoError(t, err)

	for _, id := range []int64{1, 3, 137} {
		chainID := big.NewInt(id)
		to := common.HexToAddress("0x2222222222222222222222222222222222222222")
		tx := types.NewTx(&types.LegacyTx{
			Nonce:    7,
			To:       &to,
			Value:    big.NewInt(0),
			Gas:      150000,
			GasPrice: big.NewInt(1e9),
		})

		signed, err := s.SignTx(tx, chainID)
		require.NoError(t, err)
		assert.Equal(t, chainID, signed.ChainId())

		from, err := types.Sender(types.LatestSignerForChainID(chainID), signed)
		require.NoError(t, err)
		assert.Equal(t, s.Address(), from)
	}
}

func TestValidateKey(t *testing.T) {
	addr, err := ValidateKey("0x" + testPrivKeyHex)
	require.NoError(t, err)
	assert.Equal(t, testSignerAddr, addr.Hex())

	_, err = ValidateKey("1234")
	assert.Error(t, err)
}
