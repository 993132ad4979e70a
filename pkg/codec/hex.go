package codec

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidHex = errors.New("invalid hex string")

// ToHex returns the lowercase hex form of b.
func ToHex(b []byte) string {
	return hex.EncodeToString(b)
}

// FromHex decodes s, accepting either letter case. Surrounding whitespace is ignored.
func FromHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("%w: odd length %d", ErrInvalidHex, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}
	return b, nil
}

// FromHex32 decodes s into a 32-byte array, the width of a SHA-256 digest.
func FromHex32(s string) ([32]byte, error) {
	var out [32]byte
	b, err := FromHex(s)
	if err != nil {
		return out, err
	}
	if len(b) != len(out) {
		return out, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidHex, len(out), len(b))
	}
	copy(out[:], b)
	return out, nil
}
