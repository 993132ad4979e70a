package attest

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"powattest/pkg/codec"
)

const (
	DefaultKeyBits = 2048
	MinKeyBits     = 1024
	MaxKeyBits     = 16384
)

// KeyPair holds the holder's RSA key. Only the public half is ever encoded.
type KeyPair struct {
	private *rsa.PrivateKey
}

// GenerateKeyPair creates a fresh RSA key pair with a bits-sized modulus.
func GenerateKeyPair(bits int) (*KeyPair, error) {
	if bits < MinKeyBits || bits > MaxKeyBits {
		return nil, NewCryptoError("GenerateKeyPair", ErrKeyGenerationFailed,
			fmt.Errorf("%w: must be between %d and %d", ErrKeySize, MinKeyBits, MaxKeyBits), bits)
	}

	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, NewCryptoError("GenerateKeyPair", ErrKeyGenerationFailed, err, bits)
	}

	return &KeyPair{private: key}, nil
}

// NewKeyPair wraps an existing private key.
func NewKeyPair(key *rsa.PrivateKey) (*KeyPair, error) {
	if key == nil {
		return nil, NewCryptoError("NewKeyPair", ErrKeyGenerationFailed, ErrNoPrivateKey, 0)
	}
	if err := key.Validate(); err != nil {
		return nil, NewCryptoError("NewKeyPair", ErrKeyGenerationFailed, err, key.N.BitLen())
	}
	if bits := key.N.BitLen(); bits < MinKeyBits || bits > MaxKeyBits {
		return nil, NewCryptoError("NewKeyPair", ErrKeyGenerationFailed, ErrKeySize, bits)
	}
	return &KeyPair{private: key}, nil
}

// LoadKeyPairPEM reads an RSA private key from a PEM file, either PKCS#1
// ("RSA PRIVATE KEY") or PKCS#8 ("PRIVATE KEY").
func LoadKeyPairPEM(path string) (*KeyPair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewCryptoError("LoadKeyPairPEM", ErrKeyGenerationFailed,
			fmt.Errorf("reading key %q: %w", path, err), 0)
	}
	return ParseKeyPairPEM(data)
}

func ParseKeyPairPEM(data []byte) (*KeyPair, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, NewCryptoError("ParseKeyPairPEM", ErrKeyGenerationFailed,
			fmt.Errorf("no PEM block found"), 0)
	}

	switch block.Type {
	case "RSA PRIVATE KEY":
		key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, NewCryptoError("ParseKeyPairPEM", ErrKeyGenerationFailed, err, 0)
		}
		return NewKeyPair(key)
	case "PRIVATE KEY":
		parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, NewCryptoError("ParseKeyPairPEM", ErrKeyGenerationFailed, err, 0)
		}
		key, ok := parsed.(*rsa.PrivateKey)
		if !ok {
			return nil, NewCryptoError("ParseKeyPairPEM", ErrKeyGenerationFailed, ErrInvalidKey, 0)
		}
		return NewKeyPair(key)
	default:
		return nil, NewCryptoError("ParseKeyPairPEM", ErrKeyGenerationFailed,
			fmt.Errorf("unsupported PEM type %q", block.Type), 0)
	}
}

func (kp *KeyPair) PrivateKey() *rsa.PrivateKey {
	return kp.private
}

func (kp *KeyPair) PublicKey() *rsa.PublicKey {
	return &kp.private.PublicKey
}

// Bits returns the modulus size.
func (kp *KeyPair) Bits() int {
	return kp.private.N.BitLen()
}

// PublicKeyHex returns the SubjectPublicKeyInfo DER of the public key as hex.
func (kp *KeyPair) PublicKeyHex() (string, error) {
	return PublicKeyToHex(kp.PublicKey())
}

func PublicKeyToHex(pub *rsa.PublicKey) (string, error) {
	if pub == nil {
		return "", NewCryptoError("PublicKeyToHex", ErrVerification, ErrNoPublicKey, 0)
	}
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", NewCryptoError("PublicKeyToHex", ErrVerification, err, pub.N.BitLen())
	}
	return codec.ToHex(der), nil
}

// PublicKeyFromHex parses hex-encoded SubjectPublicKeyInfo DER.
func PublicKeyFromHex(s string) (*rsa.PublicKey, error) {
	der, err := codec.FromHex(s)
	if err != nil {
		return nil, NewCryptoError("PublicKeyFromHex", ErrVerification, err, 0)
	}
	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, NewCryptoError("PublicKeyFromHex", ErrVerification, err, 0)
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, NewCryptoError("PublicKeyFromHex", ErrVerification, ErrInvalidKey, 0)
	}
	return rsaPub, nil
}
