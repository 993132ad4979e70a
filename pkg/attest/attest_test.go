package attest

import (
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"powattest/pkg/codec"
)

var (
	keysOnce sync.Once
	keyA     *KeyPair
	keyB     *KeyPair
	keyErr   error
)

// testKeys generates two 2048-bit key pairs once per test binary.
func testKeys(t *testing.T) (*KeyPair, *KeyPair) {
	t.Helper()
	keysOnce.Do(func() {
		keyA, keyErr = GenerateKeyPair(DefaultKeyBits)
		if keyErr != nil {
			return
		}
		keyB, keyErr = GenerateKeyPair(DefaultKeyBits)
	})
	require.NoError(t, keyErr)
	return keyA, keyB
}

func TestGenerateKeyPair(t *testing.T) {
	kp, _ := testKeys(t)
	assert.Equal(t, DefaultKeyBits, kp.Bits())
	assert.NotNil(t, kp.PrivateKey())
	assert.Equal(t, &kp.PrivateKey().PublicKey, kp.PublicKey())
}

func TestGenerateKeyPairUnsupportedSize(t *testing.T) {
	for _, bits := range []int{0, 512, 1023, MaxKeyBits + 1} {
		_, err := GenerateKeyPair(bits)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrKeyGenerationFailed)
		assert.ErrorIs(t, err, ErrKeySize)

		var cryptoErr *CryptoError
		require.True(t, errors.As(err, &cryptoErr))
		assert.Equal(t, bits, cryptoErr.KeyBits)
	}
}

func TestPublicKeyHexRoundTrip(t *testing.T) {
	kp, _ := testKeys(t)

	encoded, err := kp.PublicKeyHex()
	require.NoError(t, err)

	der, err := codec.FromHex(encoded)
	require.NoError(t, err)
	_, err = x509.ParsePKIXPublicKey(der)
	require.NoError(t, err)

	pub, err := PublicKeyFromHex(encoded)
	require.NoError(t, err)
	assert.True(t, kp.PublicKey().Equal(pub))
}

func TestPublicKeyFromHexInvalid(t *testing.T) {
	_, err := PublicKeyFromHex("not hex")
	assert.ErrorIs(t, err, ErrVerification)

	_, err = PublicKeyFromHex("3000")
	assert.ErrorIs(t, err, ErrVerification)

	_, err = PublicKeyToHex(nil)
	assert.ErrorIs(t, err, ErrNoPublicKey)
}

func TestSignVerifyRoundTrip(t *testing.T) {
	kp, _ := testKeys(t)
	signer, err := NewSigner(kp)
	require.NoError(t, err)
	verifier, err := NewVerifier(kp.PublicKey())
	require.NoError(t, err)

	for _, msg := range []string{`{"a":1}0`, "resume", ""} {
		hash := sha256.Sum256([]byte(msg))

		signature, err := signer.Sign(hash[:])
		require.NoError(t, err)
		assert.Len(t, signature, kp.PublicKey().Size())

		recovered, err := verifier.Recover(signature)
		require.NoError(t, err)
		assert.Equal(t, hash[:], recovered)

		ok, err := verifier.Verify(signature, hash[:])
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestSignIsDeterministic(t *testing.T) {
	kp, _ := testKeys(t)
	signer, err := NewSigner(kp)
	require.NoError(t, err)
	hash := sha256.Sum256([]byte("same input"))

	first, err := signer.SignHex(hash[:])
	require.NoError(t, err)
	second, err := signer.SignHex(hash[:])
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestVerifyRejectsOtherHash(t *testing.T) {
	kp, _ := testKeys(t)
	signer, err := NewSigner(kp)
	require.NoError(t, err)
	verifier, err := NewVerifier(kp.PublicKey())
	require.NoError(t, err)

	hash := sha256.Sum256([]byte("original"))
	other := sha256.Sum256([]byte("tampered"))

	signature, err := signer.SignHex(hash[:])
	require.NoError(t, err)

	ok, err := verifier.VerifyHex(signature, other[:])
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = verifier.VerifyHex(signature, hash[:31])
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyRejectsUnrelatedKey(t *testing.T) {
	kp, other := testKeys(t)
	signer, err := NewSigner(kp)
	require.NoError(t, err)
	verifier, err := NewVerifier(other.PublicKey())
	require.NoError(t, err)

	hash := sha256.Sum256([]byte("resume"))
	signature, err := signer.Sign(hash[:])
	require.NoError(t, err)

	ok, err := verifier.Verify(signature, hash[:])
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyRejectsCorruptedSignature(t *testing.T) {
	kp, _ := testKeys(t)
	signer, err := NewSigner(kp)
	require.NoError(t, err)
	verifier, err := NewVerifier(kp.PublicKey())
	require.NoError(t, err)

	hash := sha256.Sum256([]byte("resume"))
	signature, err := signer.Sign(hash[:])
	require.NoError(t, err)

	corrupted := append([]byte(nil), signature...)
	corrupted[len(corrupted)/2] ^= 0x01

	ok, err := verifier.Verify(corrupted, hash[:])
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = verifier.Recover(corrupted)
	assert.ErrorIs(t, err, ErrPadding)

	var cryptoErr *CryptoError
	require.True(t, errors.As(err, &cryptoErr))
	assert.Equal(t, DefaultKeyBits, cryptoErr.KeyBits)
}

func TestVerifyOutOfRangeSignature(t *testing.T) {
	kp, _ := testKeys(t)
	verifier, err := NewVerifier(kp.PublicKey())
	require.NoError(t, err)

	tooLarge := make([]byte, kp.PublicKey().Size())
	for i := range tooLarge {
		tooLarge[i] = 0xff
	}
	hash := sha256.Sum256([]byte("x"))

	_, err = verifier.Recover(tooLarge)
	assert.ErrorIs(t, err, ErrSignatureRange)
	assert.ErrorIs(t, err, ErrVerification)

	var cryptoErr *CryptoError
	require.True(t, errors.As(err, &cryptoErr))
	assert.Equal(t, "Recover", cryptoErr.Op)
	assert.Equal(t, DefaultKeyBits, cryptoErr.KeyBits)

	ok, err := verifier.Verify(tooLarge, hash[:])
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyMalformedSignatureIsError(t *testing.T) {
	kp, _ := testKeys(t)
	verifier, err := NewVerifier(kp.PublicKey())
	require.NoError(t, err)
	hash := sha256.Sum256([]byte("x"))

	_, err = verifier.Verify([]byte{0x01, 0x02}, hash[:])
	assert.ErrorIs(t, err, ErrVerification)
	assert.ErrorIs(t, err, ErrSignatureSize)

	_, err = verifier.VerifyHex("zz", hash[:])
	assert.ErrorIs(t, err, ErrVerification)
	assert.ErrorIs(t, err, codec.ErrInvalidHex)
}

func TestVerifyWrongKeySizeIsError(t *testing.T) {
	kp, _ := testKeys(t)
	small, err := GenerateKeyPair(MinKeyBits)
	require.NoError(t, err)

	signer, err := NewSigner(kp)
	require.NoError(t, err)
	hash := sha256.Sum256([]byte("x"))
	signature, err := signer.Sign(hash[:])
	require.NoError(t, err)

	verifier, err := NewVerifier(small.PublicKey())
	require.NoError(t, err)
	_, err = verifier.Verify(signature, hash[:])
	assert.ErrorIs(t, err, ErrVerification)
}

func TestSignRejectsNonDigestInput(t *testing.T) {
	kp, _ := testKeys(t)
	signer, err := NewSigner(kp)
	require.NoError(t, err)

	_, err = signer.Sign([]byte("short"))
	assert.ErrorIs(t, err, ErrSigningFailed)
	assert.ErrorIs(t, err, ErrHashLength)
}

func TestNewSignerAndVerifierRequireKeys(t *testing.T) {
	_, err := NewSigner(nil)
	assert.ErrorIs(t, err, ErrSigningFailed)

	_, err = NewVerifier(nil)
	assert.ErrorIs(t, err, ErrVerification)

	_, err = NewVerifier(&rsa.PublicKey{})
	assert.ErrorIs(t, err, ErrNoPublicKey)
}

func TestLoadKeyPairPEM(t *testing.T) {
	kp, _ := testKeys(t)
	dir := t.TempDir()

	pkcs1 := filepath.Join(dir, "pkcs1.pem")
	require.NoError(t, os.WriteFile(pkcs1, pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(kp.PrivateKey()),
	}), 0o600))

	der, err := x509.MarshalPKCS8PrivateKey(kp.PrivateKey())
	require.NoError(t, err)
	pkcs8 := filepath.Join(dir, "pkcs8.pem")
	require.NoError(t, os.WriteFile(pkcs8, pem.EncodeToMemory(&pem.Block{
		Type:  "PRIVATE KEY",
		Bytes: der,
	}), 0o600))

	for _, path := range []string{pkcs1, pkcs8} {
		loaded, err := LoadKeyPairPEM(path)
		require.NoError(t, err)
		assert.True(t, kp.PublicKey().Equal(loaded.PublicKey()))
	}
}

func TestLoadKeyPairPEMFailures(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadKeyPairPEM(filepath.Join(dir, "missing.pem"))
	assert.ErrorIs(t, err, ErrKeyGenerationFailed)

	garbage := filepath.Join(dir, "garbage.pem")
	require.NoError(t, os.WriteFile(garbage, []byte("not a key"), 0o600))
	_, err = LoadKeyPairPEM(garbage)
	assert.ErrorIs(t, err, ErrKeyGenerationFailed)

	cert := filepath.Join(dir, "cert.pem")
	require.NoError(t, os.WriteFile(cert, pem.EncodeToMemory(&pem.Block{
		Type:  "CERTIFICATE",
		Bytes: []byte{0x30, 0x00},
	}), 0o600))
	_, err = LoadKeyPairPEM(cert)
	assert.ErrorIs(t, err, ErrKeyGenerationFailed)
}
