// Package keys turns raw secp256k1 key material into the credential types
// used across the SDK: private keys, compressed public keys, and the 20-byte
// account addresses derived from them.
//
// An address has two interchangeable encodings that always decode to the same
// payload: an EIP-55 checksummed hex form and a bech32 form under a
// human-readable prefix. The derivation pipeline is fixed:
//
//	compressed pubkey -> SHA-256 -> RIPEMD-160 -> bech32
//
// with no version byte, so the bech32 payload is exactly the RIPEMD-160
// digest.
package keys

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/ripemd160"
)

// PrivateKeySize is the length of a raw secp256k1 private scalar.
const PrivateKeySize = 32

// PublicKeySize is the length of a compressed secp256k1 public key.
const PublicKeySize = 33

// ErrInvalidKey is returned when private key material has the wrong length
// or encodes a scalar outside the valid range (zero or >= curve order).
var ErrInvalidKey = errors.New("keys: invalid private key")

// PrivateKey wraps a secp256k1 private scalar. It is exclusively owned by
// the session that created it; call Zero when the session ends so the scalar
// does not outlive its use. A PrivateKey is never serialized by this package.
type PrivateKey struct {
	k *secp256k1.PrivateKey
}

// NewPrivateKey validates and wraps 32 bytes of raw key material.
// The scalar must be non-zero and strictly below the curve order.
func NewPrivateKey(raw []byte) (*PrivateKey, error) {
	if len(raw) != PrivateKeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKey, PrivateKeySize, len(raw))
	}
	s := new(big.Int).SetBytes(raw)
	if s.Sign() == 0 {
		return nil, fmt.Errorf("%w: zero scalar", ErrInvalidKey)
	}
	if s.Cmp(secp256k1.S256().N) >= 0 {
		return nil, fmt.Errorf("%w: scalar not below curve order", ErrInvalidKey)
	}
	return &PrivateKey{k: secp256k1.PrivKeyFromBytes(raw)}, nil
}

// NewPrivateKeyFromHex decodes a 64-character hex string, with or without a
// 0x prefix, into a PrivateKey.
func NewPrivateKeyFromHex(hexKey string) (*PrivateKey, error) {
	hexKey = strings.TrimPrefix(hexKey, "0x")
	if len(hexKey) != 2*PrivateKeySize {
		return nil, fmt.Errorf("%w: expected %d hex characters, got %d", ErrInvalidKey, 2*PrivateKeySize, len(hexKey))
	}
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	return NewPrivateKey(raw)
}

// PublicKey derives the compressed public key by scalar multiplication on
// the secp256k1 base point. The result is deterministic for a given key.
func (p *PrivateKey) PublicKey() PublicKey {
	var pub PublicKey
	copy(pub[:], p.k.PubKey().SerializeCompressed())
	return pub
}

// Address derives the account address for this key.
func (p *PrivateKey) Address() Address {
	return p.PublicKey().Address()
}

// Secp256k1 exposes the underlying decred private key for signing backends.
func (p *PrivateKey) Secp256k1() *secp256k1.PrivateKey {
	return p.k
}

// Zero wipes the private scalar. The key must not be used afterwards.
func (p *PrivateKey) Zero() {
	if p.k != nil {
		p.k.Zero()
	}
}

// PublicKey is a 33-byte compressed secp256k1 point. Immutable once derived.
type PublicKey [PublicKeySize]byte

// Bytes returns the compressed point encoding.
func (p PublicKey) Bytes() []byte {
	out := make([]byte, PublicKeySize)
	copy(out, p[:])
	return out
}

// Address derives the 20-byte account address: SHA-256 of the compressed
// key, then RIPEMD-160 of that digest.
func (p PublicKey) Address() Address {
	sha := sha256.Sum256(p[:])
	h := ripemd160.New()
	h.Write(sha[:])

	var addr Address
	copy(addr[:], h.Sum(nil))
	return addr
}
