package keys

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testKeyHex is the fixed test key: 32 bytes of 0x01.
const testKeyHex = "0101010101010101010101010101010101010101010101010101010101010101"

func testKey(t *testing.T) *PrivateKey {
	t.Helper()
	priv, err := NewPrivateKeyFromHex(testKeyHex)
	require.NoError(t, err)
	return priv
}

func TestNewPrivateKey(t *testing.T) {
	t.Run("Valid key", func(t *testing.T) {
		priv, err := NewPrivateKey(bytes.Repeat([]byte{0x01}, 32))
		require.NoError(t, err)
		assert.NotNil(t, priv)
	})

	t.Run("Invalid key material", func(t *testing.T) {
		// Curve order n, the smallest out-of-range scalar.
		order, err := hex.DecodeString("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141")
		require.NoError(t, err)

		tests := []struct {
			name string
			raw  []byte
		}{
			{"Too short", make([]byte, 31)},
			{"Too long", make([]byte, 33)},
			{"Empty", nil},
			{"Zero scalar", make([]byte, 32)},
			{"Scalar equal to curve order", order},
			{"Scalar above curve order", bytes.Repeat([]byte{0xff}, 32)},
		}

		for _, test := range tests {
			t.Run(test.name, func(t *testing.T) {
				_, err := NewPrivateKey(test.raw)
				assert.ErrorIs(t, err, ErrInvalidKey)
			})
		}
	})

	t.Run("From hex", func(t *testing.T) {
		withPrefix, err := NewPrivateKeyFromHex("0x" + testKeyHex)
		require.NoError(t, err)
		bare, err := NewPrivateKeyFromHex(testKeyHex)
		require.NoError(t, err)
		assert.Equal(t, withPrefix.PublicKey(), bare.PublicKey())

		_, err = NewPrivateKeyFromHex("0xzz")
		assert.ErrorIs(t, err, ErrInvalidKey)

		// Right length, non-hex content.
		_, err = NewPrivateKeyFromHex(strings.Repeat("zz", PrivateKeySize))
		assert.ErrorIs(t, err, ErrInvalidKey)
	})
}

func TestDerivation(t *testing.T) {
	priv := testKey(t)

	t.Run("Compressed public key golden vector", func(t *testing.T) {
		pub := priv.PublicKey()
		assert.Equal(t,
			"031b84c5567b126440995d3ed5aaba0565d71e1834604819ff9c17f5e9d5dd078f",
			hex.EncodeToString(pub.Bytes()))
	})

	t.Run("Address golden vector", func(t *testing.T) {
		addr := priv.Address()
		assert.Equal(t, "79b000887626b294a914501a4cd226b58b235983", hex.EncodeToString(addr.Bytes()))

		b32, err := addr.Bech32("orb")
		require.NoError(t, err)
		assert.Equal(t, "orb10xcqpzrky6eff2g52qdye53xkk9jxkvr6vgxl4", b32)

		assert.Equal(t, "0x79B000887626B294A914501a4cd226B58B235983", addr.Hex())
	})

	t.Run("Derivation is deterministic", func(t *testing.T) {
		other := testKey(t)
		assert.Equal(t, priv.PublicKey(), other.PublicKey())
		assert.True(t, priv.Address().Equal(other.Address()))
	})
}

func TestAddressConversion(t *testing.T) {
	const (
		b32Addr = "orb10xcqpzrky6eff2g52qdye53xkk9jxkvr6vgxl4"
		hexAddr = "0x79B000887626B294A914501a4cd226B58B235983"
	)

	t.Run("Bech32 to hex", func(t *testing.T) {
		got, err := ConvertToHex(b32Addr)
		require.NoError(t, err)
		assert.Equal(t, hexAddr, got)
	})

	t.Run("Hex to bech32", func(t *testing.T) {
		got, err := ConvertToBech32(hexAddr, "orb")
		require.NoError(t, err)
		assert.Equal(t, b32Addr, got)

		// Lowercase hex without a valid checksum still parses.
		got, err = ConvertToBech32("0x79b000887626b294a914501a4cd226b58b235983", "orb")
		require.NoError(t, err)
		assert.Equal(t, b32Addr, got)
	})

	t.Run("Re-encoding to a different prefix preserves the payload", func(t *testing.T) {
		moved, err := ConvertToBech32(b32Addr, "orbvaloper")
		require.NoError(t, err)

		hrp, a, err := AddressFromBech32(moved)
		require.NoError(t, err)
		assert.Equal(t, "orbvaloper", hrp)
		assert.Equal(t, hexAddr, a.Hex())
	})

	t.Run("Invalid input", func(t *testing.T) {
		_, err := ConvertToHex("")
		assert.ErrorIs(t, err, ErrInvalidAddress)

		_, err = ConvertToBech32("0x1234", "orb")
		assert.Error(t, err)

		_, _, err = AddressFromBech32("orb1qqqqqqqqq")
		assert.Error(t, err)
	})
}
