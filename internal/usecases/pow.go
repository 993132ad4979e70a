package usecases

import (
	"context"
	"fmt"

	"powattest/internal/domain"
	"powattest/pkg/pow/hashcash"
)

// PowUsecase defines the interface for the document proof-of-work.
type PowUsecase interface {
	Solve(ctx context.Context, doc domain.Document) (*domain.Proof, error)
	Check(doc domain.Document, nonce uint64) ([32]byte, bool, error)
	Target() hashcash.Target
}

type powUsecaseImpl struct {
	hashcash *hashcash.HashCash
}

// NewPowUsecase initializes the powUsecaseImpl with the given target and search limits.
func NewPowUsecase(target hashcash.Target, maxIterations uint64, workers int) (PowUsecase, error) {
	hc, err := hashcash.NewHashCash(target,
		hashcash.WithMaxIterations(maxIterations),
		hashcash.WithWorkers(workers),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize hashcash: %w", err)
	}
	return &powUsecaseImpl{hashcash: hc}, nil
}

// Solve searches for the smallest nonce meeting the target.
func (p *powUsecaseImpl) Solve(ctx context.Context, doc domain.Document) (*domain.Proof, error) {
	sol, err := p.hashcash.Search(ctx, doc)
	if err != nil {
		return nil, err
	}
	return &domain.Proof{
		Nonce:    sol.Nonce,
		Hash:     sol.Hash,
		Target:   p.hashcash.GetTarget(),
		Attempts: sol.Attempts,
		Hashed:   sol.Hashed,
	}, nil
}

// Check recomputes the proof hash for nonce and reports whether it meets the target.
func (p *powUsecaseImpl) Check(doc domain.Document, nonce uint64) ([32]byte, bool, error) {
	return p.hashcash.Verify(doc, nonce)
}

func (p *powUsecaseImpl) Target() hashcash.Target {
	return p.hashcash.GetTarget()
}
