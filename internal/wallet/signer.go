package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer signs transactions with a key held in a KeyStore. The key is read
// once at construction and never leaves the process.
type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewSigner loads the key stored under ref.
func NewSigner(ks KeyStore, ref string) (*Signer, error) {
	hexKey, err := ks.Retrieve(ref)
	if err != nil {
		return nil, fmt.Errorf("retrieving key: %w", err)
	}
	return SignerFromHex(hexKey)
}

// SignerFromHex builds a signer from a raw hex private key.
func SignerFromHex(hexKey string) (*Signer, error) {
	key, err := crypto.HexToECDSA(normaliseHexKey(hexKey))
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	return &Signer{key: key, address: crypto.PubkeyToAddress(key.PublicKey)}, nil
}

// Address returns the signing account.
func (s *Signer) Address() common.Address {
	return s.address
}

// SignTx signs tx for chainID with the latest signer the chain supports.
func (s *Signer) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), s.key)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}
	return signed, nil
}

// ValidateKey reports whether hexKey parses as a secp256k1 private key and
// returns its address.
func ValidateKey(hexKey string) (common.Address, error) {
	s, err := SignerFromHex(hexKey)
	if err != nil {
		return common.Address{}, err
	}
	return s.Address(), nil
}
