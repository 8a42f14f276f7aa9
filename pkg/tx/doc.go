// Package tx assembles sign-able ledger transactions.
//
// A transaction is built in three steps. One or more opaque, pre-encoded
// operation payloads are wrapped into Envelopes carrying an explicitly
// declared type URL. The envelopes, memo, timeout and replay-protection
// parameters form a Body; the signer's public key, sequence and fee form an
// AuthInfo. Body, AuthInfo, chain ID and account number are then serialized
// into the canonical SignDoc whose SHA-256 digest is signed, yielding a Raw
// transaction ready for base64 transport submission.
//
// The wire format is standard length-delimited protobuf, emitted directly
// with protowire so the byte layout is canonical by construction: fields are
// written in field-number order and zero values are omitted, exactly once.
// The SignDoc is order-dependent; changing any input changes the signed
// bytes.
package tx
