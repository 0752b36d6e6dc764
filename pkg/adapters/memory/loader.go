package memory

import (
	"context"

	"github.com/aretw0/taskflow/pkg/domain"
)

// Loader implements ports.DefinitionLoader with a blueprint held in memory,
// typically produced by the dsl package.
type Loader struct {
	blueprint *domain.Blueprint
}

// NewLoader creates a Loader serving the given blueprint.
func NewLoader(bp *domain.Blueprint) *Loader {
	return &Loader{blueprint: bp}
}

// Load returns the blueprint, or domain.ErrDefinitionNotFound if none was provided.
func (l *Loader) Load(ctx context.Context) (*domain.Blueprint, error) {
	if l.blueprint == nil {
		return nil, domain.ErrDefinitionNotFound
	}
	return l.blueprint, nil
}
