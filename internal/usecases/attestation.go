package usecases

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/sha3"

	"powattest/internal/domain"
	"powattest/pkg/attest"
	"powattest/pkg/codec"
	"powattest/pkg/pow/canonical"
	"powattest/pkg/pow/hashcash"
)

// AttestationUsecase defines the commit-sign-verify pipeline.
type AttestationUsecase interface {
	Attest(ctx context.Context, doc domain.Document) (*domain.Attestation, domain.State, error)
	Verify(ctx context.Context, doc domain.Document, att *domain.Attestation) (domain.State, error)
}

type attestationUsecaseImpl struct {
	pow    PowUsecase
	keys   KeyUsecase
	logger Logger
}

func NewAttestationUsecase(pow PowUsecase, keys KeyUsecase, logger Logger) AttestationUsecase {
	return &attestationUsecaseImpl{
		pow:    pow,
		keys:   keys,
		logger: logger,
	}
}

// DocumentRef is the SHA3-256 of the canonical document, hex encoded.
func DocumentRef(doc domain.Document) (string, error) {
	text, err := canonical.Canonical(doc)
	if err != nil {
		return "", err
	}
	ref := sha3.Sum256(text)
	return codec.ToHex(ref[:]), nil
}

// Attest searches for a proof, signs its hash and checks the signature
// against the fresh public key before handing the record out.
func (a *attestationUsecaseImpl) Attest(ctx context.Context, doc domain.Document) (*domain.Attestation, domain.State, error) {
	run := NewRun(a.logger)

	ref, err := DocumentRef(doc)
	if err != nil {
		run.Fail(err)
		return nil, run.State(), err
	}

	// Step 1: Search
	if err := run.Advance(domain.StateSearching); err != nil {
		return nil, run.State(), err
	}
	a.logger.Info("search started", "run_id", run.ID, "document", ref, "target", a.pow.Target().String())

	proof, err := a.pow.Solve(ctx, doc)
	if err != nil {
		if hashcash.IsUnreachable(err) {
			a.logger.Info("search exhausted", "run_id", run.ID, "error", err)
			if terr := run.Advance(domain.StateExhausted); terr != nil {
				return nil, run.State(), terr
			}
			return nil, run.State(), err
		}
		run.Fail(err)
		return nil, run.State(), err
	}
	if err := run.Advance(domain.StateFound); err != nil {
		return nil, run.State(), err
	}
	hashHex := codec.ToHex(proof.Hash[:])
	a.logger.Info("proof found", "run_id", run.ID, "nonce", proof.Nonce, "hash", hashHex, "attempts", proof.Attempts, "hashed", proof.Hashed)

	// Step 2: Sign
	kp, err := a.keys.KeyPair()
	if err != nil {
		run.Fail(err)
		return nil, run.State(), err
	}
	if err := run.Advance(domain.StateSigning); err != nil {
		return nil, run.State(), err
	}

	signer, err := attest.NewSigner(kp)
	if err != nil {
		run.Fail(err)
		return nil, run.State(), err
	}
	signature, err := signer.SignHex(proof.Hash[:])
	if err != nil {
		run.Fail(err)
		return nil, run.State(), err
	}
	publicKey, err := kp.PublicKeyHex()
	if err != nil {
		run.Fail(err)
		return nil, run.State(), err
	}
	if err := run.Advance(domain.StateSigned); err != nil {
		return nil, run.State(), err
	}
	a.logger.Debug("proof signed", "run_id", run.ID, "key_bits", kp.Bits())

	att := &domain.Attestation{
		Document:  ref,
		Nonce:     proof.Nonce,
		Hash:      hashHex,
		Signature: signature,
		PublicKey: publicKey,
		Target:    proof.Target,
	}

	// Step 3: Verify against the key that just signed
	if err := run.Advance(domain.StateVerifying); err != nil {
		return nil, run.State(), err
	}
	verifier, err := attest.NewVerifier(kp.PublicKey())
	if err != nil {
		run.Fail(err)
		return nil, run.State(), err
	}
	ok, err := verifier.VerifyHex(signature, proof.Hash[:])
	if err != nil {
		run.Fail(err)
		return nil, run.State(), err
	}

	final := domain.StateRejected
	if ok {
		final = domain.StateVerified
	}
	if err := run.Advance(final); err != nil {
		return nil, run.State(), err
	}
	a.logger.Info("attestation complete", "run_id", run.ID, "state", final)

	return att, run.State(), nil
}

// Verify recomputes the proof from doc and att.Nonce and checks the signature
// with the attestation's public key. A record made for a weaker target than
// the configured one is rejected up front. A record that does not match is
// Rejected; an error means the check itself could not be carried out.
func (a *attestationUsecaseImpl) Verify(ctx context.Context, doc domain.Document, att *domain.Attestation) (domain.State, error) {
	run := NewRun(a.logger)
	if err := run.Advance(domain.StateVerifying); err != nil {
		return run.State(), err
	}
	if att == nil {
		err := attest.NewCryptoError("Verify", attest.ErrVerification, errors.New("no attestation"), 0)
		run.Fail(err)
		return run.State(), err
	}
	if err := ctx.Err(); err != nil {
		run.Fail(err)
		return run.State(), err
	}

	reject := func(reason string) (domain.State, error) {
		a.logger.Info("attestation rejected", "run_id", run.ID, "reason", reason)
		if err := run.Advance(domain.StateRejected); err != nil {
			return run.State(), err
		}
		return run.State(), nil
	}

	claimed, err := codec.FromHex32(att.Hash)
	if err != nil {
		err = attest.NewCryptoError("Verify", attest.ErrVerification, fmt.Errorf("attestation hash: %w", err), 0)
		run.Fail(err)
		return run.State(), err
	}

	if att.Document != "" {
		ref, err := DocumentRef(doc)
		if err != nil {
			run.Fail(err)
			return run.State(), err
		}
		if ref != att.Document {
			return reject("document reference mismatch")
		}
	}

	configured := a.pow.Target()
	if att.Target.Policy != "" && att.Target.ZeroBits() < configured.ZeroBits() {
		return reject(fmt.Sprintf("record target %s below configured %s", att.Target, configured))
	}

	expected, meets, err := a.pow.Check(doc, att.Nonce)
	if err != nil {
		run.Fail(err)
		return run.State(), err
	}
	if expected != claimed {
		return reject("proof hash mismatch")
	}
	if !meets {
		return reject(fmt.Sprintf("hash does not meet target %s", configured))
	}

	verifier, err := attest.NewVerifierFromHex(att.PublicKey)
	if err != nil {
		run.Fail(err)
		return run.State(), err
	}
	ok, err := verifier.VerifyHex(att.Signature, expected[:])
	if err != nil {
		run.Fail(err)
		return run.State(), err
	}
	if !ok {
		return reject("signature does not recover proof hash")
	}

	if err := run.Advance(domain.StateVerified); err != nil {
		return run.State(), err
	}
	a.logger.Info("attestation verified", "run_id", run.ID, "nonce", att.Nonce)
	return run.State(), nil
}
