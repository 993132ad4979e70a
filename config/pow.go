package config

import (
	"fmt"
	"runtime"

	"powattest/pkg/pow/hashcash"
)

const HashAlgorithmSHA256 = "SHA-256"

type Pow struct {
	Policy             string `yaml:"policy" env:"POW_POLICY" env-default:"hex"`
	LeadingZeroNibbles int    `yaml:"leading_zero_nibbles" env:"POW_LEADING_ZERO_NIBBLES" env-default:"4"`
	LeadingZeroBytes   int    `yaml:"leading_zero_bytes" env:"POW_LEADING_ZERO_BYTES" env-default:"2"`
	MaxIterations      uint64 `yaml:"max_iterations" env:"POW_MAX_ITERATIONS" env-default:"100000000"`
	Workers            int    `yaml:"workers" env:"POW_WORKERS" env-default:"0"`
	HashAlgorithm      string `yaml:"hash_algorithm" env:"POW_HASH_ALGORITHM" env-default:"SHA-256"`
}

// Target builds the difficulty target selected by Policy.
func (p Pow) Target() (hashcash.Target, error) {
	policy, err := hashcash.ParsePolicy(p.Policy)
	if err != nil {
		return hashcash.Target{}, err
	}

	count := p.LeadingZeroNibbles
	if policy == hashcash.PolicyZeroBytes {
		count = p.LeadingZeroBytes
	}
	return hashcash.NewTarget(policy, count)
}

// WorkerCount resolves Workers, where 0 means one per CPU.
func (p Pow) WorkerCount() int {
	if p.Workers <= 0 {
		return runtime.NumCPU()
	}
	return p.Workers
}

func (p Pow) Validate() error {
	if p.HashAlgorithm != HashAlgorithmSHA256 {
		return fmt.Errorf("POW_HASH_ALGORITHM must be %q, got %q", HashAlgorithmSHA256, p.HashAlgorithm)
	}
	if p.Workers < 0 {
		return fmt.Errorf("POW_WORKERS must be >= 0, got %d", p.Workers)
	}
	if _, err := p.Target(); err != nil {
		return err
	}
	return nil
}
