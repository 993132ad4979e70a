package attest

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"

	"powattest/pkg/codec"
)

// Signer applies the RSA private-key transform to a proof hash.
//
// The hash is wrapped in a PKCS#1 v1.5 type 1 block with no DigestInfo and
// raised to the private exponent. This is raw "encrypt with the private key",
// not a signature scheme with domain separation.
type Signer struct {
	privateKey *rsa.PrivateKey
}

// NewSigner creates a signer for the private half of kp.
func NewSigner(kp *KeyPair) (*Signer, error) {
	if kp == nil || kp.private == nil {
		return nil, NewCryptoError("NewSigner", ErrSigningFailed, ErrNoPrivateKey, 0)
	}
	return &Signer{privateKey: kp.private}, nil
}

// Sign returns the signature bytes, exactly one modulus long.
func (s *Signer) Sign(hash []byte) ([]byte, error) {
	bits := s.privateKey.N.BitLen()
	if len(hash) != sha256.Size {
		return nil, NewCryptoError("Sign", ErrSigningFailed, ErrHashLength, bits)
	}

	// A zero crypto.Hash makes the rsa package pad hash verbatim.
	signature, err := rsa.SignPKCS1v15(rand.Reader, s.privateKey, crypto.Hash(0), hash)
	if err != nil {
		return nil, NewCryptoError("Sign", ErrSigningFailed, err, bits)
	}
	return signature, nil
}

// SignHex is Sign with a lowercase hex result.
func (s *Signer) SignHex(hash []byte) (string, error) {
	signature, err := s.Sign(hash)
	if err != nil {
		return "", err
	}
	return codec.ToHex(signature), nil
}
