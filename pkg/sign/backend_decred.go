//go:build !orbex_no_decredbackend

package sign

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/orbexchain/orbex-go/pkg/keys"
)

// decredBackend signs with the pure-Go decred implementation. It serves as
// the fallback when the go-ethereum backend is excluded from the build.
type decredBackend struct{}

func init() {
	registerBackend(1, decredBackend{})
}

func (decredBackend) Name() string { return "decred" }

// SignDigest produces a compact [V || R || S] signature and strips the
// leading recovery byte. decred always emits low-s signatures.
func (decredBackend) SignDigest(digest [32]byte, priv *keys.PrivateKey) ([]byte, error) {
	sig := ecdsa.SignCompact(priv.Secp256k1(), digest[:], true)
	return sig[1:], nil
}
