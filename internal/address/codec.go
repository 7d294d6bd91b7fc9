package address

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// PrefixByte is the network prefix carried by every Tron account address.
const PrefixByte = 0x41

// RawLength is the length of a prefixed raw address in bytes.
const RawLength = 21

const checksumLength = 4

var (
	// ErrInvalidHex reports a hex address that cannot be normalized.
	ErrInvalidHex = errors.New("invalid address hex")
	// ErrChecksumMismatch reports a base58 address whose embedded checksum
	// does not match the recomputed one.
	ErrChecksumMismatch = errors.New("address checksum mismatch")
)

// DecodeHex normalizes a hex address string into prefixed raw bytes.
// It strips an optional 0x prefix and any leading zero digits left over
// from 32-byte padded log topics, prepends the network prefix when absent,
// and pads to an even number of digits before parsing.
func DecodeHex(input string) ([]byte, error) {
	cleaned := strings.TrimSpace(input)
	if strings.HasPrefix(cleaned, "0x") || strings.HasPrefix(cleaned, "0X") {
		cleaned = cleaned[2:]
	}
	cleaned = strings.TrimLeft(cleaned, "0")

	if !strings.HasPrefix(cleaned, "41") {
		cleaned = "41" + cleaned
	}
	if len(cleaned)%2 != 0 {
		cleaned = "0" + cleaned
	}

	raw, err := hex.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidHex, input)
	}
	return raw, nil
}

// ToBase58 encodes prefixed raw address bytes into the checksummed base58
// text form. The checksum is the first four bytes of a double SHA-256 over
// the raw bytes.
func ToBase58(raw []byte) string {
	payload := make([]byte, 0, len(raw)+checksumLength)
	payload = append(payload, raw...)
	payload = append(payload, checksum(raw)...)
	return base58.Encode(payload)
}

// FromBase58 decodes a base58 text address back into prefixed raw bytes,
// verifying the embedded checksum.
func FromBase58(text string) ([]byte, error) {
	payload, err := base58.Decode(text)
	if err != nil {
		return nil, fmt.Errorf("decode base58: %w", err)
	}
	if len(payload) <= checksumLength {
		return nil, fmt.Errorf("%w: payload too short", ErrChecksumMismatch)
	}

	raw := payload[:len(payload)-checksumLength]
	got := payload[len(payload)-checksumLength:]
	want := checksum(raw)
	for i := range want {
		if got[i] != want[i] {
			return nil, ErrChecksumMismatch
		}
	}
	return raw, nil
}

// HexToBase58 converts a hex address to base58 text on a best-effort basis.
// Addresses arrive embedded in display pipelines that must never abort over
// one bad field, so a failure yields a diagnostic string carrying the
// original input instead of an error.
func HexToBase58(input string) string {
	raw, err := DecodeHex(input)
	if err != nil {
		return fmt.Sprintf("%s (conversion failed: %v)", input, err)
	}
	return ToBase58(raw)
}

// HexString renders raw address bytes back to lowercase hex.
func HexString(raw []byte) string {
	return hex.EncodeToString(raw)
}

// IsHexAddress reports whether the value looks like a prefixed hex address.
func IsHexAddress(value string) bool {
	if len(value) != RawLength*2 || !strings.HasPrefix(value, "41") {
		return false
	}
	_, err := hex.DecodeString(value)
	return err == nil
}

// IsBase58Address reports whether the value looks like a base58 text address.
// This is a shape check only; it does not verify the checksum.
func IsBase58Address(value string) bool {
	return len(value) == 34 && strings.HasPrefix(value, "T")
}

func checksum(raw []byte) []byte {
	first := sha256.Sum256(raw)
	second := sha256.Sum256(first[:])
	return second[:checksumLength]
}
