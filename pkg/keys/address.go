package keys

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/orbexchain/orbex-go/pkg/bech32"
)

// AddressSize is the length of the account address payload.
const AddressSize = 20

// ErrInvalidAddress is returned when a string is neither a valid checksummed
// hex address nor a valid bech32 address, or when a decoded payload has the
// wrong length.
var ErrInvalidAddress = errors.New("keys: invalid address")

// Address is a 20-byte account identity. Its two text encodings, EIP-55
// checksummed hex and bech32, always decode back to the same payload.
type Address [AddressSize]byte

// Bytes returns a copy of the address payload.
func (a Address) Bytes() []byte {
	out := make([]byte, AddressSize)
	copy(out, a[:])
	return out
}

// Hex renders the address as 0x-prefixed, EIP-55 checksummed hex.
func (a Address) Hex() string {
	return common.Address(a).Hex()
}

// Bech32 renders the address under the given human-readable prefix.
func (a Address) Bech32(hrp string) (string, error) {
	return bech32.Encode(hrp, a[:])
}

// Equal compares two addresses by payload.
func (a Address) Equal(other Address) bool {
	return a == other
}

// AddressFromHex parses a 0x-prefixed hex address. Checksum casing is not
// enforced on input; output casing always is.
func AddressFromHex(hexAddr string) (Address, error) {
	if !common.IsHexAddress(hexAddr) {
		return Address{}, fmt.Errorf("%w: expected 0x + 40 hex characters, got %q", ErrInvalidAddress, hexAddr)
	}
	return Address(common.HexToAddress(hexAddr)), nil
}

// AddressFromBech32 decodes a bech32 address, returning the prefix it was
// encoded under alongside the payload.
func AddressFromBech32(addr string) (string, Address, error) {
	hrp, payload, err := bech32.Decode(addr)
	if err != nil {
		return "", Address{}, err
	}
	if len(payload) != AddressSize {
		return "", Address{}, fmt.Errorf("%w: payload is %d bytes, expected %d", ErrInvalidAddress, len(payload), AddressSize)
	}
	var a Address
	copy(a[:], payload)
	return hrp, a, nil
}

// ConvertToBech32 re-encodes any valid address string, hex or bech32, under
// the given prefix. Re-encoding a bech32 address to a different prefix is
// permitted and preserves the payload.
func ConvertToBech32(addr, hrp string) (string, error) {
	a, err := parseAny(addr)
	if err != nil {
		return "", err
	}
	return a.Bech32(hrp)
}

// ConvertToHex re-encodes any valid address string, hex or bech32, as
// EIP-55 checksummed hex.
func ConvertToHex(addr string) (string, error) {
	a, err := parseAny(addr)
	if err != nil {
		return "", err
	}
	return a.Hex(), nil
}

func parseAny(addr string) (Address, error) {
	if addr == "" {
		return Address{}, fmt.Errorf("%w: empty string", ErrInvalidAddress)
	}
	if common.IsHexAddress(addr) {
		return AddressFromHex(addr)
	}
	_, a, err := AddressFromBech32(addr)
	return a, err
}
