package sign

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/orbexchain/orbex-go/pkg/keys"
)

// recoverableSignatureSize is the length of a personal-message signature:
// r || s || v, where v is the recovery identifier.
const recoverableSignatureSize = 65

// PersonalSign signs free-form text with the Ethereum personal-message
// scheme: the text is prefixed with "\x19Ethereum Signed Message:\n" and its
// length, hashed with Keccak-256, and signed. The result is a 0x-prefixed
// hex string of the 65-byte recoverable signature with V adjusted to 27/28.
//
// This is the off-chain authorization shape, e.g. for binding an agent
// identity to its owning key. It is not interchangeable with the 64-byte
// compact form used for ledger transactions.
func PersonalSign(text string, priv *keys.PrivateKey) (string, error) {
	hash, _ := accounts.TextAndHash([]byte(text))
	ecKey := priv.Secp256k1().ToECDSA()
	// ethcrypto.Sign compares curve instances by identity, so the key must
	// carry go-ethereum's S256() rather than decred's.
	ecKey.Curve = ethcrypto.S256()
	sig, err := ethcrypto.Sign(hash, ecKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign personal message: %w", err)
	}
	// Adjust V from 0/1 to 27/28 for Ethereum compatibility.
	if sig[recoverableSignatureSize-1] < 27 {
		sig[recoverableSignatureSize-1] += 27
	}
	return hexutil.Encode(sig), nil
}

// VerifyPersonal recovers the signer of a personal-message signature and
// compares it against address (hex, case-insensitive). It returns false on
// any malformed input and never panics or raises.
func VerifyPersonal(address, text, sigHex string) bool {
	if !common.IsHexAddress(address) {
		return false
	}
	sig, err := hexutil.Decode(sigHex)
	if err != nil || len(sig) != recoverableSignatureSize {
		return false
	}

	local := make([]byte, recoverableSignatureSize)
	copy(local, sig)
	if local[recoverableSignatureSize-1] >= 27 {
		local[recoverableSignatureSize-1] -= 27
	}
	if local[recoverableSignatureSize-1] > 1 {
		return false
	}

	hash, _ := accounts.TextAndHash([]byte(text))
	pub, err := ethcrypto.SigToPub(hash, local)
	if err != nil {
		return false
	}
	return ethcrypto.PubkeyToAddress(*pub) == common.HexToAddress(address)
}

// PersonalAddress returns the Ethereum-style address of the key used for
// personal-message signing. It is derived from the Keccak-256 hash of the
// uncompressed public key and is distinct from the account address the
// ledger derives via SHA-256/RIPEMD-160.
func PersonalAddress(priv *keys.PrivateKey) string {
	return ethcrypto.PubkeyToAddress(priv.Secp256k1().ToECDSA().PublicKey).Hex()
}
