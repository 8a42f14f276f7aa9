//go:build !orbex_no_btcecbackend

package sign

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"github.com/orbexchain/orbex-go/pkg/keys"
)

// btcecBackend signs with btcec. It is the last backend in the chain and
// exercises the DER decoding path: btcec serializes signatures as DER, which
// must be converted to the 64-byte compact form before returning.
type btcecBackend struct{}

func init() {
	registerBackend(2, btcecBackend{})
}

func (btcecBackend) Name() string { return "btcec" }

func (btcecBackend) SignDigest(digest [32]byte, priv *keys.PrivateKey) ([]byte, error) {
	der := ecdsa.Sign(priv.Secp256k1(), digest[:]).Serialize()
	return compactFromDER(der)
}

// compactFromDER decodes a DER-encoded ECDSA signature into the 64-byte
// r||s compact form. DER integers are minimally encoded, so r and s may be
// shorter than 32 bytes or carry a leading zero sign byte.
func compactFromDER(der []byte) ([]byte, error) {
	if len(der) < 8 || der[0] != 0x30 {
		return nil, fmt.Errorf("malformed DER signature: missing sequence header")
	}
	rest := der[2:]

	r, rest, err := derInteger(rest)
	if err != nil {
		return nil, fmt.Errorf("malformed DER signature: r: %w", err)
	}
	s, _, err := derInteger(rest)
	if err != nil {
		return nil, fmt.Errorf("malformed DER signature: s: %w", err)
	}

	out := make([]byte, CompactSignatureSize)
	copy(out[32-len(r):32], r)
	copy(out[64-len(s):], s)
	return out, nil
}

func derInteger(b []byte) (value, rest []byte, err error) {
	if len(b) < 2 || b[0] != 0x02 {
		return nil, nil, fmt.Errorf("missing integer tag")
	}
	n := int(b[1])
	if n == 0 || len(b) < 2+n {
		return nil, nil, fmt.Errorf("truncated integer of length %d", n)
	}
	v := b[2 : 2+n]
	// Drop the sign byte DER adds when the high bit is set.
	if v[0] == 0x00 && len(v) > 1 {
		v = v[1:]
	}
	if len(v) > 32 {
		return nil, nil, fmt.Errorf("integer is %d bytes, exceeds field size", len(v))
	}
	return v, b[2+n:], nil
}
