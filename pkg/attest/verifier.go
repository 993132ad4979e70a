package attest

import (
	"crypto/rsa"
	"crypto/subtle"
	"errors"
	"math/big"

	"powattest/pkg/codec"
)

// Minimum length of the 0xff padding string in a type 1 block.
const minPaddingLen = 8

// Verifier recovers a hash from a signature with the RSA public-key transform.
type Verifier struct {
	publicKey *rsa.PublicKey
}

func NewVerifier(pub *rsa.PublicKey) (*Verifier, error) {
	if pub == nil || pub.N == nil || pub.N.Sign() <= 0 {
		return nil, NewCryptoError("NewVerifier", ErrVerification, ErrNoPublicKey, 0)
	}
	if pub.E < 2 {
		return nil, NewCryptoError("NewVerifier", ErrVerification, ErrInvalidKey, pub.N.BitLen())
	}
	return &Verifier{publicKey: pub}, nil
}

// NewVerifierFromHex creates a verifier from hex-encoded SubjectPublicKeyInfo DER.
func NewVerifierFromHex(publicKeyHex string) (*Verifier, error) {
	pub, err := PublicKeyFromHex(publicKeyHex)
	if err != nil {
		return nil, err
	}
	return NewVerifier(pub)
}

// Recover computes s^e mod n and strips the type 1 padding, returning the
// embedded bytes. A signature whose length differs from the modulus fails
// with ErrVerification; a wrong key or a corrupted signature additionally
// carries ErrSignatureRange or ErrPadding as the cause.
func (v *Verifier) Recover(signature []byte) ([]byte, error) {
	k := v.publicKey.Size()
	bits := v.publicKey.N.BitLen()
	if len(signature) != k {
		return nil, NewCryptoError("Recover", ErrVerification, ErrSignatureSize, bits)
	}

	s := new(big.Int).SetBytes(signature)
	if s.Cmp(v.publicKey.N) >= 0 {
		return nil, NewCryptoError("Recover", ErrVerification, ErrSignatureRange, bits)
	}
	m := new(big.Int).Exp(s, big.NewInt(int64(v.publicKey.E)), v.publicKey.N)
	em := m.FillBytes(make([]byte, k))

	// EM = 0x00 || 0x01 || PS (0xff...) || 0x00 || T
	if em[0] != 0x00 || em[1] != 0x01 {
		return nil, NewCryptoError("Recover", ErrVerification, ErrPadding, bits)
	}
	i := 2
	for i < k && em[i] == 0xff {
		i++
	}
	if i == k || em[i] != 0x00 || i-2 < minPaddingLen {
		return nil, NewCryptoError("Recover", ErrVerification, ErrPadding, bits)
	}

	return em[i+1:], nil
}

// Verify reports whether signature recovers exactly expected. A structurally
// valid signature that recovers anything else is a rejection, not an error.
func (v *Verifier) Verify(signature, expected []byte) (bool, error) {
	recovered, err := v.Recover(signature)
	if err != nil {
		if errors.Is(err, ErrSignatureRange) || errors.Is(err, ErrPadding) {
			return false, nil
		}
		return false, err
	}
	return subtle.ConstantTimeCompare(recovered, expected) == 1, nil
}

// VerifyHex is Verify for a hex-encoded signature.
func (v *Verifier) VerifyHex(signatureHex string, expected []byte) (bool, error) {
	signature, err := codec.FromHex(signatureHex)
	if err != nil {
		return false, NewCryptoError("VerifyHex", ErrVerification, err, v.publicKey.N.BitLen())
	}
	return v.Verify(signature, expected)
}
