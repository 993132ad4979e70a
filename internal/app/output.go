package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"powattest/internal/domain"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// WriteAttestation encodes att to w in the given format.
func WriteAttestation(w io.Writer, att *domain.Attestation, format string) error {
	switch format {
	case "", FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(att); err != nil {
			return fmt.Errorf("failed to encode attestation: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(att); err != nil {
			return fmt.Errorf("failed to encode attestation: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// ReadAttestation loads a JSON or YAML attestation record from path, or stdin for "-".
func ReadAttestation(path string) (*domain.Attestation, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read attestation: %w", err)
	}
	return ParseAttestation(data)
}

func ParseAttestation(data []byte) (*domain.Attestation, error) {
	att := &domain.Attestation{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, att); err != nil {
			return nil, fmt.Errorf("failed to decode attestation: %w", err)
		}
		return att, nil
	}
	if err := yaml.Unmarshal(trimmed, att); err != nil {
		return nil, fmt.Errorf("failed to decode attestation: %w", err)
	}
	return att, nil
}
