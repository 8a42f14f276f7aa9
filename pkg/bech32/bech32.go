package bech32

import (
	"errors"
	"fmt"
	"strings"
)

// charset is the fixed 32-character data alphabet shared by all bech32
// encoders. The index of a character is its 5-bit value.
const charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

// generator holds the coefficients of the checksum polynomial.
var generator = [5]uint32{0x3b6a57b2, 0x26508e6d, 0x1ea119fa, 0x3d4233dd, 0x2a1462b3}

// Errors returned by Encode and Decode. Callers can match them with
// errors.Is to distinguish malformed input from checksum failures.
var (
	// ErrMixedCase is returned when an address mixes upper and lower case.
	ErrMixedCase = errors.New("bech32: mixed-case string")
	// ErrSeparatorMissing is returned when no "1" separator is present.
	ErrSeparatorMissing = errors.New("bech32: separator not found")
	// ErrInvalidChecksum is returned when the trailing 6 characters do not
	// match the checksum computed over the prefix and data.
	ErrInvalidChecksum = errors.New("bech32: invalid checksum")
	// ErrInvalidCharacter is returned when a data character is outside the
	// bech32 alphabet.
	ErrInvalidCharacter = errors.New("bech32: invalid character")
	// ErrInvalidPadding is returned when regrouping 5-bit words back to bytes
	// leaves non-zero padding bits, which indicates a malformed encoding.
	ErrInvalidPadding = errors.New("bech32: invalid padding bits")
	// ErrInvalidLength is returned when the prefix or data section is empty
	// or too short to contain a checksum.
	ErrInvalidLength = errors.New("bech32: invalid length")
)

// Encode encodes payload under the given human-readable prefix. The payload
// is regrouped from 8-bit bytes to 5-bit words before the checksum is
// appended. The result is always lowercase.
func Encode(hrp string, payload []byte) (string, error) {
	if hrp == "" {
		return "", fmt.Errorf("%w: empty prefix", ErrInvalidLength)
	}
	for i := 0; i < len(hrp); i++ {
		if hrp[i] < 33 || hrp[i] > 126 {
			return "", fmt.Errorf("%w: prefix byte 0x%02x at position %d", ErrInvalidCharacter, hrp[i], i)
		}
	}
	data, err := convertBits(payload, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("failed to regroup payload: %w", err)
	}

	hrp = strings.ToLower(hrp)
	var sb strings.Builder
	sb.Grow(len(hrp) + 1 + len(data) + checksumLen)
	sb.WriteString(hrp)
	sb.WriteByte('1')
	for _, d := range append(data, createChecksum(hrp, data)...) {
		sb.WriteByte(charset[d])
	}
	return sb.String(), nil
}

// Decode splits addr on the last separator, verifies the checksum against
// the declared prefix, and regroups the data section back to 8-bit bytes.
// Mixed-case input is rejected; all-uppercase input is accepted and treated
// as its lowercase form.
func Decode(addr string) (string, []byte, error) {
	if strings.ToLower(addr) != addr && strings.ToUpper(addr) != addr {
		return "", nil, ErrMixedCase
	}
	addr = strings.ToLower(addr)

	sep := strings.LastIndexByte(addr, '1')
	if sep == -1 {
		return "", nil, ErrSeparatorMissing
	}
	hrp, encoded := addr[:sep], addr[sep+1:]
	if hrp == "" || len(encoded) < checksumLen {
		return "", nil, fmt.Errorf("%w: prefix %q, data section %d chars", ErrInvalidLength, hrp, len(encoded))
	}

	data := make([]byte, len(encoded))
	for i := 0; i < len(encoded); i++ {
		v := strings.IndexByte(charset, encoded[i])
		if v == -1 {
			return "", nil, fmt.Errorf("%w: %q at position %d", ErrInvalidCharacter, encoded[i], sep+1+i)
		}
		data[i] = byte(v)
	}

	if !verifyChecksum(hrp, data) {
		return "", nil, ErrInvalidChecksum
	}

	payload, err := convertBits(data[:len(data)-checksumLen], 5, 8, false)
	if err != nil {
		return "", nil, err
	}
	return hrp, payload, nil
}

const checksumLen = 6

func polymod(values []byte) uint32 {
	chk := uint32(1)
	for _, v := range values {
		top := chk >> 25
		chk = (chk&0x1ffffff)<<5 ^ uint32(v)
		for i := 0; i < 5; i++ {
			if (top>>uint(i))&1 == 1 {
				chk ^= generator[i]
			}
		}
	}
	return chk
}

// hrpExpand splits each prefix character into its high and low bits, with a
// zero separator in between, so the checksum covers the prefix as well.
func hrpExpand(hrp string) []byte {
	exp := make([]byte, 0, len(hrp)*2+1)
	for i := 0; i < len(hrp); i++ {
		exp = append(exp, hrp[i]>>5)
	}
	exp = append(exp, 0)
	for i := 0; i < len(hrp); i++ {
		exp = append(exp, hrp[i]&31)
	}
	return exp
}

func createChecksum(hrp string, data []byte) []byte {
	values := append(hrpExpand(hrp), data...)
	values = append(values, make([]byte, checksumLen)...)
	pm := polymod(values) ^ 1
	chk := make([]byte, checksumLen)
	for i := 0; i < checksumLen; i++ {
		chk[i] = byte(pm >> uint(5*(5-i)) & 31)
	}
	return chk
}

func verifyChecksum(hrp string, data []byte) bool {
	return polymod(append(hrpExpand(hrp), data...)) == 1
}

// convertBits regroups a word stream from fromBits-wide words to toBits-wide
// words. When pad is true the final partial word is zero-padded; when false,
// leftover bits must be zero or the input is rejected as malformed.
func convertBits(data []byte, fromBits, toBits uint, pad bool) ([]byte, error) {
	var acc uint32
	var bits uint
	maxv := uint32(1)<<toBits - 1
	ret := make([]byte, 0, len(data)*int(fromBits)/int(toBits)+1)
	for i, v := range data {
		if uint32(v)>>fromBits != 0 {
			return nil, fmt.Errorf("%w: value %d exceeds %d bits at index %d", ErrInvalidCharacter, v, fromBits, i)
		}
		acc = acc<<fromBits | uint32(v)
		bits += fromBits
		for bits >= toBits {
			bits -= toBits
			ret = append(ret, byte(acc>>bits&maxv))
		}
	}
	if pad {
		if bits > 0 {
			ret = append(ret, byte(acc<<(toBits-bits)&maxv))
		}
	} else if bits >= fromBits {
		return nil, fmt.Errorf("%w: %d leftover bits", ErrInvalidPadding, bits)
	} else if acc<<(toBits-bits)&maxv != 0 {
		return nil, ErrInvalidPadding
	}
	return ret, nil
}
