package attest

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Failure kinds, matched with errors.Is
	ErrKeyGenerationFailed = errors.New("key generation failed")
	ErrSigningFailed       = errors.New("signing failed")
	ErrVerification        = errors.New("verification error")

	// Causes
	ErrNoPrivateKey   = errors.New("no private key configured")
	ErrNoPublicKey    = errors.New("no public key configured")
	ErrInvalidKey     = errors.New("invalid key type, expected RSA")
	ErrKeySize        = errors.New("key size out of acceptable range")
	ErrHashLength     = errors.New("hash must be a 32-byte SHA-256 digest")
	ErrSignatureSize  = errors.New("signature length does not match key modulus")
	ErrSignatureRange = errors.New("signature representative out of range")
	ErrPadding        = errors.New("recovered block is not PKCS#1 v1.5 type 1")
)

// CryptoError ties a failure kind to its cause and the key it happened with.
type CryptoError struct {
	Op      string // Operation that failed
	Kind    error  // One of the Err*Failed / ErrVerification kinds
	Err     error  // Underlying cause
	KeyBits int    // Modulus size in bits, 0 when unknown
}

func (e *CryptoError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %v", e.Op, e.Kind)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if e.KeyBits > 0 {
		fmt.Fprintf(&b, " (%d-bit key)", e.KeyBits)
	}
	return b.String()
}

func (e *CryptoError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func NewCryptoError(op string, kind, err error, keyBits int) error {
	return &CryptoError{
		Op:      op,
		Kind:    kind,
		Err:     err,
		KeyBits: keyBits,
	}
}
