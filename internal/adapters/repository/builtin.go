package repository

import (
	"context"

	"github.com/okian/lineup/internal/domain/model"
)

// BuiltinSource serves the fixed sample snapshot.
type BuiltinSource struct{}

// NewBuiltinSource creates the built-in source.
func NewBuiltinSource() *BuiltinSource { return &BuiltinSource{} }

// Load returns a fresh copy of the sample players.
func (BuiltinSource) Load(_ context.Context) ([]model.Player, error) {
	return model.SamplePlayers(), nil
}

// Name implements Source.
func (BuiltinSource) Name() string { return "builtin" }
