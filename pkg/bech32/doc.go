// Package bech32 implements the checksummed address text encoding used for
// Orbex account identities.
//
// An encoded address has the form:
//
//	<hrp>1<data><checksum>
//
// where <hrp> is the human-readable prefix identifying the address namespace,
// the separator is always the digit "1", <data> is the 20-byte account payload
// regrouped into 5-bit words over a fixed 32-character alphabet, and
// <checksum> is 6 characters computed over both the prefix and the data.
//
// The codec is pure and performs no I/O. Encoding always produces lowercase
// output; decoding rejects mixed-case input outright.
package bech32
