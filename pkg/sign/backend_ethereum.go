//go:build !orbex_no_ethbackend

package sign

import (
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/orbexchain/orbex-go/pkg/keys"
)

// ethereumBackend signs with go-ethereum's libsecp256k1 bindings. It is the
// preferred backend when compiled in.
type ethereumBackend struct{}

func init() {
	registerBackend(0, ethereumBackend{})
}

func (ethereumBackend) Name() string { return "go-ethereum" }

// SignDigest produces a recoverable [R || S || V] signature and drops the
// trailing recovery byte. go-ethereum always emits low-s signatures.
func (ethereumBackend) SignDigest(digest [32]byte, priv *keys.PrivateKey) ([]byte, error) {
	ecKey := priv.Secp256k1().ToECDSA()
	// ethcrypto.Sign compares curve instances by identity, so the key must
	// carry go-ethereum's S256() rather than decred's.
	ecKey.Curve = ethcrypto.S256()
	sig, err := ethcrypto.Sign(digest[:], ecKey)
	if err != nil {
		return nil, err
	}
	return sig[:CompactSignatureSize], nil
}
