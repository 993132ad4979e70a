package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"powattest/internal/domain"
)

// StdinPath makes Load read from standard input.
const StdinPath = "-"

var (
	ErrDocumentUnavailable = errors.New("document unavailable")
	ErrNotAnObject         = errors.New("top-level JSON value is not an object")
	ErrTrailingData        = errors.New("unexpected data after JSON object")
)

type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrDocumentUnavailable, e.Path, e.Err)
}

func (e *LoadError) Unwrap() []error {
	return []error{ErrDocumentUnavailable, e.Err}
}

func NewLoadError(path string, err error) error {
	return &LoadError{Path: path, Err: err}
}

// Load reads the JSON object at path, or stdin for "-".
func Load(path string) (domain.Document, error) {
	if path == StdinPath {
		return Decode(os.Stdin, "stdin")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, NewLoadError(path, err)
	}
	defer f.Close()

	return Decode(f, path)
}

// Decode parses one JSON object from r. Numbers are kept as json.Number so
// the canonical form reproduces them digit for digit.
func Decode(r io.Reader, name string) (domain.Document, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, NewLoadError(name, err)
	}
	doc, ok := raw.(map[string]any)
	if !ok {
		return nil, NewLoadError(name, ErrNotAnObject)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, NewLoadError(name, ErrTrailingData)
	}

	return domain.Document(doc), nil
}

// Parse is Decode for an in-memory document.
func Parse(data []byte) (domain.Document, error) {
	return Decode(bytes.NewReader(data), "inline")
}
