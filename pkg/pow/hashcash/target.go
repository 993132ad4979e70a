package hashcash

import (
	"fmt"
	"strings"
)

const (
	maxHexNibbles = 64 // two nibbles per SHA-256 output byte
	maxZeroBytes  = 32 // SHA-256 output length
)

// Policy selects how leading zeros of a hash are counted.
type Policy string

const (
	// PolicyHexNibbles counts leading '0' characters of the lowercase hex digest.
	PolicyHexNibbles Policy = "hex"
	// PolicyZeroBytes counts leading zero bytes of the raw digest.
	PolicyZeroBytes Policy = "bytes"
)

// ParsePolicy maps a configuration value to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyHexNibbles:
		return PolicyHexNibbles, nil
	case PolicyZeroBytes:
		return PolicyZeroBytes, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// Target is the difficulty predicate a proof hash must satisfy.
//
// ZeroBytes(k) accepts exactly the hashes HexNibbles(2k) accepts. For an odd
// nibble count the two policies disagree, so a target always names its policy.
type Target struct {
	Policy Policy `json:"policy" yaml:"policy"`
	Count  int    `json:"count" yaml:"count"`
}

// NewTarget validates policy and count.
func NewTarget(policy Policy, count int) (Target, error) {
	t := Target{Policy: policy, Count: count}
	if err := t.Validate(); err != nil {
		return Target{}, err
	}
	return t, nil
}

// HexNibbles is a shorthand for a hex-policy target. It does not validate.
func HexNibbles(n int) Target {
	return Target{Policy: PolicyHexNibbles, Count: n}
}

// ZeroBytes is a shorthand for a byte-policy target. It does not validate.
func ZeroBytes(n int) Target {
	return Target{Policy: PolicyZeroBytes, Count: n}
}

func (t Target) Validate() error {
	switch t.Policy {
	case PolicyHexNibbles:
		if t.Count < 0 || t.Count > maxHexNibbles {
			return fmt.Errorf("%w: leading zero nibbles must be between 0 and %d, got %d",
				ErrDifficultyRange, maxHexNibbles, t.Count)
		}
	case PolicyZeroBytes:
		if t.Count < 0 || t.Count > maxZeroBytes {
			return fmt.Errorf("%w: leading zero bytes must be between 0 and %d, got %d",
				ErrDifficultyRange, maxZeroBytes, t.Count)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPolicy, t.Policy)
	}
	return nil
}

// IsSatisfiedBy reports whether hash has the required run of leading zeros.
func (t Target) IsSatisfiedBy(hash [32]byte) bool {
	switch t.Policy {
	case PolicyHexNibbles:
		for i := 0; i < t.Count; i++ {
			b := hash[i/2]
			if i%2 == 0 {
				b >>= 4
			}
			if b&0x0f != 0 {
				return false
			}
		}
		return true
	case PolicyZeroBytes:
		for i := 0; i < t.Count; i++ {
			if hash[i] != 0 {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// ZeroBits is the number of leading zero bits the target demands.
func (t Target) ZeroBits() int {
	switch t.Policy {
	case PolicyHexNibbles:
		return t.Count * 4
	case PolicyZeroBytes:
		return t.Count * 8
	default:
		return 0
	}
}

func (t Target) String() string {
	return fmt.Sprintf("%s:%d", t.Policy, t.Count)
}
