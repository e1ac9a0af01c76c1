package bridge

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/nacl/box"
)

// EncryptionVersion is the only scheme wallets decrypt with eth_decrypt.
const EncryptionVersion = "x25519-xsalsa20-poly1305"

// EncryptedData is the JSON envelope eth_decrypt expects, hex-encoded.
type EncryptedData struct {
	Version        string `json:"version"`
	Nonce          string `json:"nonce"`
	EphemPublicKey string `json:"ephemPublicKey"`
	Ciphertext     string `json:"ciphertext"`
}

// ErrBadPublicKey is returned for encryption keys that are not 32 bytes of
// base64.
var ErrBadPublicKey = errors.New("encryption public key must be 32 bytes, base64 encoded")

// Encrypt seals message for the holder of publicKey (as returned by
// GetEncryptionPublicKey). It runs locally and needs no wallet. The result
// is the 0x-prefixed hex of the JSON envelope, ready for Decrypt.
func Encrypt(publicKey, message string) (string, error) {
	env, err := Seal(publicKey, []byte(message))
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(env)
	if err != nil {
		return "", err
	}
	return hexutil.Encode(data), nil
}

// Seal builds the envelope for message.
func Seal(publicKey string, message []byte) (*EncryptedData, error) {
	raw, err := base64.StdEncoding.DecodeString(publicKey)
	if err != nil || len(raw) != 32 {
		return nil, ErrBadPublicKey
	}
	var recipient [32]byte
	copy(recipient[:], raw)

	ephemPub, ephemPriv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generating ephemeral key: %w", err)
	}
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}

	sealed := box.Seal(nil, message, &nonce, &recipient, ephemPriv)
	return &EncryptedData{
		Version:        EncryptionVersion,
		Nonce:          base64.StdEncoding.EncodeToString(nonce[:]),
		EphemPublicKey: base64.StdEncoding.EncodeToString(ephemPub[:]),
		Ciphertext:     base64.StdEncoding.EncodeToString(sealed),
	}, nil
}
