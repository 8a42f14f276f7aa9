package bech32

import (
	"encoding/hex"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	t.Run("Golden vector", func(t *testing.T) {
		payload, err := hex.DecodeString("79b000887626b294a914501a4cd226b58b235983")
		require.NoError(t, err)

		addr, err := Encode("orb", payload)
		require.NoError(t, err)
		assert.Equal(t, "orb10xcqpzrky6eff2g52qdye53xkk9jxkvr6vgxl4", addr)
	})

	t.Run("Output is always lowercase", func(t *testing.T) {
		addr, err := Encode("ORB", make([]byte, 20))
		require.NoError(t, err)
		assert.Equal(t, strings.ToLower(addr), addr)
	})

	t.Run("Empty prefix rejected", func(t *testing.T) {
		_, err := Encode("", make([]byte, 20))
		assert.ErrorIs(t, err, ErrInvalidLength)
	})

	t.Run("Prefix characters outside the printable range rejected", func(t *testing.T) {
		for _, hrp := range []string{"or b", "orb\x00", "orb\x7f", "\norb"} {
			_, err := Encode(hrp, make([]byte, 20))
			assert.ErrorIs(t, err, ErrInvalidCharacter, "prefix %q", hrp)
		}
	})
}

func TestDecode(t *testing.T) {
	t.Run("Round trip for random 20-byte payloads", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))
		for _, hrp := range []string{"orb", "orbvaloper", "cosmos"} {
			for i := 0; i < 50; i++ {
				payload := make([]byte, 20)
				_, err := rng.Read(payload)
				require.NoError(t, err)

				addr, err := Encode(hrp, payload)
				require.NoError(t, err)

				gotHRP, gotPayload, err := Decode(addr)
				require.NoError(t, err)
				assert.Equal(t, hrp, gotHRP)
				assert.Equal(t, payload, gotPayload)
			}
		}
	})

	t.Run("All-uppercase input accepted", func(t *testing.T) {
		addr, err := Encode("orb", make([]byte, 20))
		require.NoError(t, err)

		hrp, payload, err := Decode(strings.ToUpper(addr))
		require.NoError(t, err)
		assert.Equal(t, "orb", hrp)
		assert.Equal(t, make([]byte, 20), payload)
	})

	t.Run("Flipping any checksum character fails", func(t *testing.T) {
		addr, err := Encode("orb", []byte("twenty bytes exactly"))
		require.NoError(t, err)

		for i := len(addr) - 6; i < len(addr); i++ {
			mutated := []byte(addr)
			if mutated[i] == 'q' {
				mutated[i] = 'p'
			} else {
				mutated[i] = 'q'
			}
			_, _, err := Decode(string(mutated))
			assert.ErrorIs(t, err, ErrInvalidChecksum, "checksum position %d", i)
		}
	})

	t.Run("Malformed input", func(t *testing.T) {
		tests := []struct {
			name string
			addr string
			err  error
		}{
			{"Mixed case", "orb10XCqpzrky6eff2g52qdye53xkk9jxkvr6vgxl4", ErrMixedCase},
			{"No separator", "orbqpzry9x8gf2tvdw0", ErrSeparatorMissing},
			{"Empty prefix", "10xcqpzrky6eff2g52qdye53xkk9jxkvr6vgxl4", ErrInvalidLength},
			{"Data too short for checksum", "orb1qqq", ErrInvalidLength},
			{"Character outside alphabet", "orb1bxcqpzrky6eff2g52qdye53xkk9jxkvr6vgxl4", ErrInvalidCharacter},
		}

		for _, test := range tests {
			t.Run(test.name, func(t *testing.T) {
				_, _, err := Decode(test.addr)
				assert.ErrorIs(t, err, test.err)
			})
		}
	})

	t.Run("Non-zero padding bits rejected", func(t *testing.T) {
		// A single data word before the checksum leaves 5 leftover bits that
		// can never form a full byte, so decoding must fail.
		data := []byte{31}
		chk := createChecksum("orb", data)
		addr := "orb1" + string(charset[data[0]])
		for _, c := range chk {
			addr += string(charset[c])
		}
		_, _, err := Decode(addr)
		assert.ErrorIs(t, err, ErrInvalidPadding)
	})
}
