package bridge

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/nacl/box"
)

func TestEncryptOpensWithRecipientKey(t *testing.T) {
	pub, priv, err := box.GenerateKey(rand.Reader)
	require.NoError(t, err)

	out, err := Encrypt(base64.StdEncoding.EncodeToString(pub[:]), "gm")
	require.NoError(t, err)

	raw, err := hexutil.Decode(out)
	require.NoError(t, err)
	var env EncryptedData
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, EncryptionVersion, env.Version)

	nonce := decode24(t, env.Nonce)
	ephem := decode32(t, env.EphemPublicKey)
	sealed, err := base64.StdEncoding.DecodeString(env.Ciphertext)
	require.NoError(t, err)

	plain, ok := box.Open(nil, sealed, &nonce, &ephem, priv)
	require.True(t, ok)
	assert.Equal(t, "gm", string(plain))
}

func TestEncryptFreshNoncePerCall(t *testing.T) {
	pub, _, err := box.GenerateKey(rand.Reader)
	require.NoError(t, err)
	key := base64.StdEncoding.EncodeToString(pub[:])

	a, err := Seal(key, []byte("same"))
	require.NoError(t, err)
	b, err := Seal(key, []byte("same"))
	require.NoError(t, err)
	assert.NotEqual(t, a.Nonce, b.Nonce)
	assert.NotEqual(t, a.EphemPublicKey, b.EphemPublicKey)
}

func TestEncryptRejectsBadKey(t *testing.T) {
	for _, key := range []string{"", "not base64!", base64.StdEncoding.EncodeToString([]byte("short"))} {
		_, err := Encrypt(key, "x")
		assert.ErrorIs(t, err, ErrBadPublicKey, key)
	}
}

func decode24(t *testing.T, s string) [24]byte {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(s)
	require.NoError(t, err)
	require.Len(t, raw, 24)
	var out [24]byte
	copy(out[:], raw)
	return out
}

func decode32(t *testing.T, s string) [32]byte {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(s)
	require.NoError(t, err)
	require.Len(t, raw, 32)
	var out [32]byte
	copy(out[:], raw)
	return out
}
