package repository

import (
	"context"
	"fmt"
	"os"

	"github.com/okian/lineup/internal/domain/model"
)

// JSONFileSource reads a JSON array of player records from disk on every load.
type JSONFileSource struct {
	path string
}

// NewJSONFileSource creates a source for the given file.
func NewJSONFileSource(path string) *JSONFileSource {
	return &JSONFileSource{path: path}
}

// Load reads and decodes the file.
func (s *JSONFileSource) Load(ctx context.Context) ([]model.Player, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	players, err := model.DecodePlayers(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return players, nil
}

// Name implements Source.
func (s *JSONFileSource) Name() string { return "json" }
