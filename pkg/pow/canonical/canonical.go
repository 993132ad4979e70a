// Package canonical produces the byte form of a document that the proof-of-work
// search hashes.
//
// The canonical text is compact JSON with object keys sorted at every level and
// HTML characters left unescaped. Numbers decoded as json.Number are written back
// verbatim, so a document loaded from disk hashes the same way on every run.
// A candidate is the canonical text immediately followed by the decimal nonce.
package canonical

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"
)

var ErrUnencodable = errors.New("document cannot be canonically encoded")

// Canonical returns the canonical JSON text of doc.
func Canonical(doc map[string]any) ([]byte, error) {
	if doc == nil {
		doc = map[string]any{}
	}
	// encoding/json replaces invalid UTF-8 with U+FFFD, which would map
	// distinct documents to the same text.
	if err := checkUTF8(doc); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// encoding/json writes map keys in sorted order, nested maps included.
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnencodable, err)
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

func checkUTF8(v any) error {
	switch v := v.(type) {
	case string:
		if !utf8.ValidString(v) {
			return fmt.Errorf("%w: invalid UTF-8 in string %q", ErrUnencodable, v)
		}
	case map[string]any:
		for key, value := range v {
			if !utf8.ValidString(key) {
				return fmt.Errorf("%w: invalid UTF-8 in key %q", ErrUnencodable, key)
			}
			if err := checkUTF8(value); err != nil {
				return err
			}
		}
	case []any:
		for _, value := range v {
			if err := checkUTF8(value); err != nil {
				return err
			}
		}
	case map[string]string:
		for key, value := range v {
			if !utf8.ValidString(key) || !utf8.ValidString(value) {
				return fmt.Errorf("%w: invalid UTF-8 under key %q", ErrUnencodable, key)
			}
		}
	case []string:
		for _, value := range v {
			if err := checkUTF8(value); err != nil {
				return err
			}
		}
	}
	return nil
}

// Encode returns canonical(doc) || decimal(nonce).
func Encode(doc map[string]any, nonce uint64) ([]byte, error) {
	enc, err := NewEncoder(doc)
	if err != nil {
		return nil, err
	}
	return enc.Encode(nonce), nil
}

// Encoder caches the canonical text of one document so that each nonce only
// costs an append.
type Encoder struct {
	prefix []byte
}

func NewEncoder(doc map[string]any) (*Encoder, error) {
	prefix, err := Canonical(doc)
	if err != nil {
		return nil, err
	}
	return &Encoder{prefix: prefix}, nil
}

// Encode returns a freshly allocated candidate for nonce.
func (e *Encoder) Encode(nonce uint64) []byte {
	return e.AppendNonce(nil, nonce)
}

// AppendNonce writes the candidate for nonce into dst[:0], reusing its capacity.
func (e *Encoder) AppendNonce(dst []byte, nonce uint64) []byte {
	dst = append(dst[:0], e.prefix...)
	return strconv.AppendUint(dst, nonce, 10)
}

// Prefix returns a copy of the canonical document text.
func (e *Encoder) Prefix() []byte {
	return bytes.Clone(e.prefix)
}
