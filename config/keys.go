package config

import (
	"fmt"

	"powattest/pkg/attest"
)

const SignatureAlgorithmRSARaw = "RSA-PKCS1v15-raw"

type Keys struct {
	Bits               int    `yaml:"bits" env:"KEYS_BITS" env-default:"2048"`
	PrivateKeyPath     string `yaml:"private_key_path" env:"KEYS_PRIVATE_KEY_PATH"`
	SignatureAlgorithm string `yaml:"signature_algorithm" env:"KEYS_SIGNATURE_ALGORITHM" env-default:"RSA-PKCS1v15-raw"`
}

func (k Keys) Validate() error {
	if k.SignatureAlgorithm != SignatureAlgorithmRSARaw {
		return fmt.Errorf("KEYS_SIGNATURE_ALGORITHM must be %q, got %q", SignatureAlgorithmRSARaw, k.SignatureAlgorithm)
	}
	if k.PrivateKeyPath == "" && (k.Bits < attest.MinKeyBits || k.Bits > attest.MaxKeyBits) {
		return fmt.Errorf("KEYS_BITS must be between %d and %d, got %d", attest.MinKeyBits, attest.MaxKeyBits, k.Bits)
	}
	return nil
}
