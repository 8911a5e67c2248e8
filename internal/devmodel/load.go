package devmodel

import (
	"fmt"
	"os"

	"github.com/virtfuzz/devilang/internal/validator"
)

// Loader reads device-model config files, validating each one against the
// CUE contract before decoding. One Loader can load any number of files;
// the compiled schema is reused.
type Loader struct {
	validate *validator.Validator
}

// NewLoader creates a Loader with the embedded schema compiled.
func NewLoader() (*Loader, error) {
	v, err := validator.New()
	if err != nil {
		return nil, fmt.Errorf("creating model validator: %w", err)
	}
	return &Loader{validate: v}, nil
}

// Load reads, validates and decodes one config file.
func (l *Loader) Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := l.validate.ValidateJSON(data); err != nil {
		return nil, fmt.Errorf("validating config %s: %w", path, err)
	}

	return Decode(data)
}
