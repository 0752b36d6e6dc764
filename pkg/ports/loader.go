package ports

import (
	"context"

	"github.com/aretw0/taskflow/pkg/domain"
)

// DefinitionLoader defines how the engine retrieves the process definition.
// This allows the authoring format (YAML, Go DSL, remote registry) to be decoupled.
type DefinitionLoader interface {
	// Load returns the blueprint governing every process of the engine.
	// Returns domain.ErrDefinitionNotFound if no definition is available.
	Load(ctx context.Context) (*domain.Blueprint, error)
}
