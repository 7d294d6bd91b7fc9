package address

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"
)

func TestDecodeHexNormalization(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "41d3682962027e721c5247a9faf7865fe4a71d5438", "41d3682962027e721c5247a9faf7865fe4a71d5438"},
		{"with 0x prefix", "0x41d3682962027e721c5247a9faf7865fe4a71d5438", "41d3682962027e721c5247a9faf7865fe4a71d5438"},
		{"topic padded", "000000000000000000000000d3682962027e721c5247a9faf7865fe4a71d5438", "41d3682962027e721c5247a9faf7865fe4a71d5438"},
		{"missing prefix", "d3682962027e721c5247a9faf7865fe4a71d5438", "41d3682962027e721c5247a9faf7865fe4a71d5438"},
		{"uppercase 0X", "0X41d3682962027e721c5247a9faf7865fe4a71d5438", "41d3682962027e721c5247a9faf7865fe4a71d5438"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := DecodeHex(tc.input)
			require.NoError(t, err)
			require.Equal(t, tc.want, HexString(raw))
			require.Len(t, raw, RawLength)
			require.Equal(t, byte(PrefixByte), raw[0])
		})
	}
}

func TestDecodeHexInvalid(t *testing.T) {
	_, err := DecodeHex("41zz82962027e721c5247a9faf7865fe4a71d5438")
	require.ErrorIs(t, err, ErrInvalidHex)
}

func TestDecodeHexIdempotent(t *testing.T) {
	raw, err := DecodeHex("0x41d3682962027e721c5247a9faf7865fe4a71d5438")
	require.NoError(t, err)

	again, err := DecodeHex(HexString(raw))
	require.NoError(t, err)
	require.Equal(t, raw, again)
}

func TestToBase58KnownVectors(t *testing.T) {
	cases := []struct {
		hexAddr string
		want    string
	}{
		{"41d3682962027e721c5247a9faf7865fe4a71d5438", "TVF2Mp9QY7FEGTnr3DBpFLobA6jguHyMvi"},
		{"41eca9bc828a3005b9a3b909f2cc5c2a54794de05f", "TXYZopYRdj2D9XRtbG411XZZ3kM5VkAeBf"},
	}

	for _, tc := range cases {
		raw, err := DecodeHex(tc.hexAddr)
		require.NoError(t, err)

		got := ToBase58(raw)
		require.Equal(t, tc.want, got)
		// deterministic on repeated calls
		require.Equal(t, got, ToBase58(raw))
	}
}

func TestRoundTrip(t *testing.T) {
	seeds := []string{
		"41d3682962027e721c5247a9faf7865fe4a71d5438",
		"41eca9bc828a3005b9a3b909f2cc5c2a54794de05f",
		"410000000000000000000000000000000000000000",
		"41ffffffffffffffffffffffffffffffffffffffff",
		"410102030405060708090a0b0c0d0e0f1011121314",
	}

	for _, seed := range seeds {
		raw, err := hex.DecodeString(seed)
		require.NoError(t, err)

		back, err := FromBase58(ToBase58(raw))
		require.NoError(t, err)
		require.Equal(t, raw, back)
	}
}

func TestChecksumSensitivity(t *testing.T) {
	raw, err := DecodeHex("41d3682962027e721c5247a9faf7865fe4a71d5438")
	require.NoError(t, err)

	payload, err := base58.Decode(ToBase58(raw))
	require.NoError(t, err)

	// Flipping any single bit in the trailing checksum bytes must fail decode.
	for i := len(payload) - 4; i < len(payload); i++ {
		for bit := 0; bit < 8; bit++ {
			corrupted := make([]byte, len(payload))
			copy(corrupted, payload)
			corrupted[i] ^= 1 << bit

			_, err := FromBase58(base58.Encode(corrupted))
			require.ErrorIs(t, err, ErrChecksumMismatch, "byte %d bit %d", i, bit)
		}
	}
}

func TestHexToBase58BestEffort(t *testing.T) {
	got := HexToBase58("41d3682962027e721c5247a9faf7865fe4a71d5438")
	require.Equal(t, "TVF2Mp9QY7FEGTnr3DBpFLobA6jguHyMvi", got)

	bad := HexToBase58("not-hex-at-all")
	require.Contains(t, bad, "not-hex-at-all")
	require.Contains(t, bad, "conversion failed")
}

func TestFromBase58Garbage(t *testing.T) {
	_, err := FromBase58("TT")
	if err == nil {
		t.Fatalf("expected error for short payload")
	}
	if !errors.Is(err, ErrChecksumMismatch) {
		// base58 decode itself may fail first for some inputs; both are acceptable
		require.Error(t, err)
	}
}

func TestShapeHeuristics(t *testing.T) {
	require.True(t, IsHexAddress("41d3682962027e721c5247a9faf7865fe4a71d5438"))
	require.False(t, IsHexAddress("d3682962027e721c5247a9faf7865fe4a71d5438"))
	require.False(t, IsHexAddress("41d368"))

	require.True(t, IsBase58Address("TVF2Mp9QY7FEGTnr3DBpFLobA6jguHyMvi"))
	require.False(t, IsBase58Address("TVF2Mp9QY7FEGTnr3DBpFLobA6jguHyMv"))
	require.False(t, IsBase58Address("41d3682962027e721c5247a9faf7865fe4a71d5438"))
}
