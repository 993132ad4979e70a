package usecases

import (
	"powattest/pkg/attest"
)

// KeyUsecase materializes the holder's key pair.
type KeyUsecase interface {
	KeyPair() (*attest.KeyPair, error)
}

type keyUsecaseImpl struct {
	bits int
	path string
}

// NewKeyUsecase loads the key at path when set, otherwise generates a fresh
// bits-sized pair on every call.
func NewKeyUsecase(bits int, path string) KeyUsecase {
	return &keyUsecaseImpl{bits: bits, path: path}
}

func (k *keyUsecaseImpl) KeyPair() (*attest.KeyPair, error) {
	if k.path != "" {
		return attest.LoadKeyPairPEM(k.path)
	}
	return attest.GenerateKeyPair(k.bits)
}

type staticKeyUsecase struct {
	kp *attest.KeyPair
}

// NewStaticKeyUsecase always hands out kp.
func NewStaticKeyUsecase(kp *attest.KeyPair) KeyUsecase {
	return &staticKeyUsecase{kp: kp}
}

func (s *staticKeyUsecase) KeyPair() (*attest.KeyPair, error) {
	if s.kp == nil {
		return nil, attest.NewCryptoError("KeyPair", attest.ErrKeyGenerationFailed, attest.ErrNoPrivateKey, 0)
	}
	return s.kp, nil
}
