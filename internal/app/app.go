package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"powattest/config"
	"powattest/internal/document"
	"powattest/internal/domain"
	"powattest/internal/logger"
	"powattest/internal/usecases"
)

var (
	ErrRejected  = errors.New("attestation rejected")
	ErrExhausted = errors.New("search exhausted")
)

// Overrides are command-line values that take precedence over the loaded config.
type Overrides struct {
	Workers       *int
	MaxIterations *uint64
	Nibbles       *int
	Bytes         *int
	Policy        *string
}

func (o Overrides) apply(cfg *config.Config) error {
	if o.Workers != nil {
		cfg.Pow.Workers = *o.Workers
	}
	if o.MaxIterations != nil {
		cfg.Pow.MaxIterations = *o.MaxIterations
	}
	if o.Policy != nil {
		cfg.Pow.Policy = *o.Policy
	}
	if o.Nibbles != nil {
		cfg.Pow.LeadingZeroNibbles = *o.Nibbles
	}
	if o.Bytes != nil {
		cfg.Pow.LeadingZeroBytes = *o.Bytes
	}
	return cfg.Validate()
}

// Engine bundles the wired pipeline for one invocation.
type Engine struct {
	Attestation usecases.AttestationUsecase
	Logger      *logger.Zap
}

// NewEngine wires the pipeline described by cfg.
func NewEngine(cfg *config.Config, log *logger.Zap) (*Engine, error) {
	target, err := cfg.Pow.Target()
	if err != nil {
		return nil, err
	}

	powUsecase, err := usecases.NewPowUsecase(target, cfg.Pow.MaxIterations, cfg.Pow.WorkerCount())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize pow: %w", err)
	}
	keyUsecase := usecases.NewKeyUsecase(cfg.Keys.Bits, cfg.Keys.PrivateKeyPath)

	return &Engine{
		Attestation: usecases.NewAttestationUsecase(powUsecase, keyUsecase,
			log.With("hash_algorithm", cfg.Pow.HashAlgorithm, "signature_algorithm", cfg.Keys.SignatureAlgorithm)),
		Logger:      log,
	}, nil
}

func loadEngine(configPath string, overrides Overrides) (*Engine, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := overrides.apply(cfg); err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Options{
		Level:  cfg.App.LogLevel,
		Format: cfg.App.LogFormat,
		Name:   cfg.App.Name,
	})
	if err != nil {
		return nil, err
	}

	return NewEngine(cfg, log)
}

// RunAttest commits to the document at docPath and writes the attestation to out.
func RunAttest(ctx context.Context, e *Engine, docPath, format string, out io.Writer) error {
	doc, err := document.Load(docPath)
	if err != nil {
		return err
	}

	att, state, err := e.Attestation.Attest(ctx, doc)
	if err != nil {
		if state == domain.StateExhausted {
			return fmt.Errorf("%w: %w", ErrExhausted, err)
		}
		return err
	}
	if state != domain.StateVerified {
		return fmt.Errorf("%w: self-check ended in %s", ErrRejected, state)
	}

	return WriteAttestation(out, att, format)
}

// RunVerify checks the attestation at attPath against the document at docPath.
func RunVerify(ctx context.Context, e *Engine, docPath, attPath string, out io.Writer) error {
	doc, err := document.Load(docPath)
	if err != nil {
		return err
	}
	att, err := ReadAttestation(attPath)
	if err != nil {
		return err
	}

	state, err := e.Attestation.Verify(ctx, doc, att)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(out, state); err != nil {
		return err
	}
	if state != domain.StateVerified {
		return ErrRejected
	}
	return nil
}
