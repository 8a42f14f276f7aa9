// Package sign produces the two signature shapes used by the SDK.
//
// Transaction signing yields a 64-byte compact signature, the big-endian
// r and s components of an ECDSA signature over the SHA-256 digest of the
// canonical sign bytes. It is served by an ordered chain of secp256k1
// backends; the first backend compiled into the binary is selected once and
// used for every call. Each backend lives in its own file behind an opt-out
// build tag, so the selection happens at build time, never by runtime
// probing:
//
//	orbex_no_ethbackend     excludes the go-ethereum backend
//	orbex_no_decredbackend  excludes the decred backend
//	orbex_no_btcecbackend   excludes the btcec backend
//
// Personal-message signing yields a 65-byte recoverable signature over an
// Ethereum-style prefixed message, rendered as a 0x hex string. The two
// shapes are distinct and must not be conflated: the recoverable form carries
// a trailing recovery identifier byte that a ledger transaction signature
// never has.
//
// All backends in the chain normalize s to the lower half of the curve
// order, so a signature produced by one backend verifies under the same
// rules as any other.
package sign
