package tx

import (
	"crypto/sha256"
	"encoding/base64"

	"github.com/orbexchain/orbex-go/pkg/keys"
	"github.com/orbexchain/orbex-go/pkg/sign"
)

// BodyParams are the optional fields of a transaction body.
type BodyParams struct {
	Memo          string
	TimeoutHeight uint64
	// Unordered, together with TimeoutTimestampNs, selects nonce-window
	// replay protection. The caller (normally the session's sequence
	// resolver) is responsible for setting them as a pair.
	Unordered          bool
	TimeoutTimestampNs int64
}

// NewBody builds a transaction body from envelopes, preserving their order.
func NewBody(envelopes []Envelope, params BodyParams) Body {
	return Body{
		Envelopes:          envelopes,
		Memo:               params.Memo,
		TimeoutHeight:      params.TimeoutHeight,
		Unordered:          params.Unordered,
		TimeoutTimestampNs: params.TimeoutTimestampNs,
	}
}

// NewAuthInfo builds the auth info for a single-signer transaction.
func NewAuthInfo(pub keys.PublicKey, sequence, gasLimit uint64, fees ...Coin) AuthInfo {
	return AuthInfo{
		PublicKey: pub,
		Sequence:  sequence,
		GasLimit:  gasLimit,
		Fees:      fees,
	}
}

// NewSignDoc freezes body and auth info into their canonical sign-able form.
func NewSignDoc(body Body, authInfo AuthInfo, chainID string, accountNumber uint64) SignDoc {
	return SignDoc{
		BodyBytes:     body.Marshal(),
		AuthInfoBytes: authInfo.Marshal(),
		ChainID:       chainID,
		AccountNumber: accountNumber,
	}
}

// Sign signs the SHA-256 digest of the serialized sign doc and assembles
// the finished transaction. A signature of any length other than 64 bytes
// aborts before a Raw is ever produced.
func Sign(doc SignDoc, priv *keys.PrivateKey) (Raw, error) {
	digest := sha256.Sum256(doc.Marshal())
	sig, err := sign.SignHash(digest, priv)
	if err != nil {
		return Raw{}, err
	}
	return Raw{
		BodyBytes:     doc.BodyBytes,
		AuthInfoBytes: doc.AuthInfoBytes,
		Signatures:    [][]byte{sig},
	}, nil
}

// Base64 is the transport encoding of the raw transaction.
func (r Raw) Base64() string {
	return base64.StdEncoding.EncodeToString(r.Marshal())
}
