package tx

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/orbexchain/orbex-go/pkg/keys"
)

// PubKeyTypeURL is the chain's type identifier for secp256k1 public keys.
// AuthInfo always wraps the signer key under this URL, with the same
// override discipline as Envelope: the URL is fixed, never inferred.
const PubKeyTypeURL = "/orbex.crypto.secp256k1.PubKey"

// signModeDirect is the only sign mode the venue accepts: the signature
// covers the raw serialized SignDoc.
const signModeDirect = 1

// Coin is a single fee amount.
type Coin struct {
	Denom  string
	Amount string
}

func (c Coin) marshal() []byte {
	var buf []byte
	if c.Denom != "" {
		buf = protowire.AppendTag(buf, 1, protowire.BytesType)
		buf = protowire.AppendString(buf, c.Denom)
	}
	if c.Amount != "" {
		buf = protowire.AppendTag(buf, 2, protowire.BytesType)
		buf = protowire.AppendString(buf, c.Amount)
	}
	return buf
}

// Body is the transaction body: an ordered sequence of envelopes, a memo,
// an optional absolute timeout height, and the unordered replay-protection
// pair. Unordered and TimeoutTimestampNs belong together; the sequence/nonce
// resolver guarantees they are only set as a pair.
type Body struct {
	Envelopes     []Envelope
	Memo          string
	TimeoutHeight uint64
	// Unordered selects nonce-window replay protection instead of the
	// monotonic sequence counter.
	Unordered bool
	// TimeoutTimestampNs is the absolute expiry of an unordered transaction
	// in nanoseconds since the epoch. Zero when ordered.
	TimeoutTimestampNs int64
}

// Marshal serializes the body. Envelope order is preserved; zero-valued
// fields are omitted per proto3 encoding rules.
func (b Body) Marshal() []byte {
	var buf []byte
	for _, env := range b.Envelopes {
		buf = protowire.AppendTag(buf, 1, protowire.BytesType)
		buf = protowire.AppendBytes(buf, env.Marshal())
	}
	if b.Memo != "" {
		buf = protowire.AppendTag(buf, 2, protowire.BytesType)
		buf = protowire.AppendString(buf, b.Memo)
	}
	if b.TimeoutHeight != 0 {
		buf = protowire.AppendTag(buf, 3, protowire.VarintType)
		buf = protowire.AppendVarint(buf, b.TimeoutHeight)
	}
	if b.Unordered {
		buf = protowire.AppendTag(buf, 4, protowire.VarintType)
		buf = protowire.AppendVarint(buf, 1)
	}
	if b.TimeoutTimestampNs != 0 {
		buf = protowire.AppendTag(buf, 5, protowire.BytesType)
		buf = protowire.AppendBytes(buf, marshalTimestamp(b.TimeoutTimestampNs))
	}
	return buf
}

// marshalTimestamp encodes nanoseconds since the epoch as a
// google.protobuf.Timestamp.
func marshalTimestamp(ns int64) []byte {
	secs, nanos := ns/1e9, ns%1e9
	var buf []byte
	if secs != 0 {
		buf = protowire.AppendTag(buf, 1, protowire.VarintType)
		buf = protowire.AppendVarint(buf, uint64(secs))
	}
	if nanos != 0 {
		buf = protowire.AppendTag(buf, 2, protowire.VarintType)
		buf = protowire.AppendVarint(buf, uint64(nanos))
	}
	return buf
}

// AuthInfo carries the signer's public key, the replay counter, and the fee
// parameters. Sequence must be zero for unordered transactions.
type AuthInfo struct {
	PublicKey keys.PublicKey
	Sequence  uint64
	GasLimit  uint64
	Fees      []Coin
}

// Marshal serializes the auth info with a single signer in direct sign mode.
// The public key is wrapped under PubKeyTypeURL unconditionally.
func (a AuthInfo) Marshal() []byte {
	// secp256k1 PubKey message: bytes key = 1.
	var pubKeyMsg []byte
	pubKeyMsg = protowire.AppendTag(pubKeyMsg, 1, protowire.BytesType)
	pubKeyMsg = protowire.AppendBytes(pubKeyMsg, a.PublicKey.Bytes())

	// ModeInfo{ single: { mode: SIGN_MODE_DIRECT } }.
	var single []byte
	single = protowire.AppendTag(single, 1, protowire.VarintType)
	single = protowire.AppendVarint(single, signModeDirect)
	var modeInfo []byte
	modeInfo = protowire.AppendTag(modeInfo, 1, protowire.BytesType)
	modeInfo = protowire.AppendBytes(modeInfo, single)

	var signerInfo []byte
	signerInfo = protowire.AppendTag(signerInfo, 1, protowire.BytesType)
	signerInfo = protowire.AppendBytes(signerInfo, Wrap(pubKeyMsg, PubKeyTypeURL).Marshal())
	signerInfo = protowire.AppendTag(signerInfo, 2, protowire.BytesType)
	signerInfo = protowire.AppendBytes(signerInfo, modeInfo)
	if a.Sequence != 0 {
		signerInfo = protowire.AppendTag(signerInfo, 3, protowire.VarintType)
		signerInfo = protowire.AppendVarint(signerInfo, a.Sequence)
	}

	var fee []byte
	for _, c := range a.Fees {
		fee = protowire.AppendTag(fee, 1, protowire.BytesType)
		fee = protowire.AppendBytes(fee, c.marshal())
	}
	if a.GasLimit != 0 {
		fee = protowire.AppendTag(fee, 2, protowire.VarintType)
		fee = protowire.AppendVarint(fee, a.GasLimit)
	}

	var buf []byte
	buf = protowire.AppendTag(buf, 1, protowire.BytesType)
	buf = protowire.AppendBytes(buf, signerInfo)
	buf = protowire.AppendTag(buf, 2, protowire.BytesType)
	buf = protowire.AppendBytes(buf, fee)
	return buf
}

// SignDoc is the canonical sign-able form of a transaction. It is built
// once from the serialized body and auth info and never mutated; any change
// to an input yields different sign bytes.
type SignDoc struct {
	BodyBytes     []byte
	AuthInfoBytes []byte
	ChainID       string
	AccountNumber uint64
}

// Marshal serializes the sign doc: body bytes, auth info bytes, chain ID
// and account number, in that order, each length-delimited.
func (d SignDoc) Marshal() []byte {
	var buf []byte
	if len(d.BodyBytes) > 0 {
		buf = protowire.AppendTag(buf, 1, protowire.BytesType)
		buf = protowire.AppendBytes(buf, d.BodyBytes)
	}
	if len(d.AuthInfoBytes) > 0 {
		buf = protowire.AppendTag(buf, 2, protowire.BytesType)
		buf = protowire.AppendBytes(buf, d.AuthInfoBytes)
	}
	if d.ChainID != "" {
		buf = protowire.AppendTag(buf, 3, protowire.BytesType)
		buf = protowire.AppendString(buf, d.ChainID)
	}
	if d.AccountNumber != 0 {
		buf = protowire.AppendTag(buf, 4, protowire.VarintType)
		buf = protowire.AppendVarint(buf, d.AccountNumber)
	}
	return buf
}

// Raw is a finished signed transaction ready for transport submission.
type Raw struct {
	BodyBytes     []byte
	AuthInfoBytes []byte
	Signatures    [][]byte
}

// Marshal serializes the raw transaction.
func (r Raw) Marshal() []byte {
	var buf []byte
	if len(r.BodyBytes) > 0 {
		buf = protowire.AppendTag(buf, 1, protowire.BytesType)
		buf = protowire.AppendBytes(buf, r.BodyBytes)
	}
	if len(r.AuthInfoBytes) > 0 {
		buf = protowire.AppendTag(buf, 2, protowire.BytesType)
		buf = protowire.AppendBytes(buf, r.AuthInfoBytes)
	}
	for _, sig := range r.Signatures {
		buf = protowire.AppendTag(buf, 3, protowire.BytesType)
		buf = protowire.AppendBytes(buf, sig)
	}
	return buf
}
