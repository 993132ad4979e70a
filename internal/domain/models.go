package domain

import "powattest/pkg/pow/hashcash"

// Document is the JSON object being committed to. It is read-only for the
// duration of one run.
type Document map[string]any

// Proof is the outcome of the nonce search.
type Proof struct {
	Nonce    uint64
	Hash     [32]byte
	Target   hashcash.Target
	Attempts uint64
	Hashed   uint64
}

// Attestation binds a proof to the holder's public key. It never carries the
// private key.
type Attestation struct {
	Document  string          `json:"document" yaml:"document"`
	Nonce     uint64          `json:"nonce" yaml:"nonce"`
	Hash      string          `json:"hash" yaml:"hash"`
	Signature string          `json:"signature" yaml:"signature"`
	PublicKey string          `json:"publicKey" yaml:"publicKey"`
	Target    hashcash.Target `json:"target" yaml:"target"`
}
