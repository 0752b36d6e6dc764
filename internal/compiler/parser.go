package compiler

import (
	"fmt"

	"github.com/aretw0/taskflow/internal/dto"
	"github.com/aretw0/taskflow/pkg/domain"
	"github.com/aretw0/taskflow/pkg/policy"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Parser converts raw definition documents into a Blueprint.
// JSON documents are accepted too, being valid YAML.
type Parser struct {
	// Strict rejects unknown keys in the document.
	Strict bool
}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{Strict: true}
}

// Parse decodes the raw content and compiles it into a Blueprint.
func (p *Parser) Parse(data []byte) (*domain.Blueprint, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse definition: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("failed to parse definition: document is empty")
	}

	doc, err := p.Decode(raw)
	if err != nil {
		return nil, err
	}
	return Compile(doc)
}

// Decode maps a loosely typed document (as produced by YAML/JSON decoders) onto the DTO.
func (p *Parser) Decode(raw map[string]any) (*dto.ProcessDocument, error) {
	var doc dto.ProcessDocument
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      p.Strict,
		WeaklyTypedInput: true,
		Result:           &doc,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode definition: %w", err)
	}
	return &doc, nil
}

// Compile turns a decoded document into a Blueprint.
func Compile(doc *dto.ProcessDocument) (*domain.Blueprint, error) {
	defs := make([]domain.TaskDefinition, 0, len(doc.Tasks))
	for i, t := range doc.Tasks {
		kind, err := domain.ParseTaskKind(t.Kind)
		if err != nil {
			return nil, fmt.Errorf("task %q (index %d): %w", t.Name, i, err)
		}

		rules := policy.Rules{
			Requires: t.Requires,
			WaitFor:  t.WaitFor,
			Next:     t.Next,
		}
		for _, b := range t.Branches {
			rules.Branches = append(rules.Branches, policy.Branch{
				IfCompleted: b.IfCompleted,
				Then:        b.Then,
			})
		}

		var pol domain.TaskPolicy
		if !rules.IsZero() {
			pol = rules
		}
		defs = append(defs, domain.NewTask(t.Name, kind, pol))
	}

	bp := &domain.Blueprint{
		Name:         doc.Name,
		InitialTasks: append([]string{}, doc.Initial...),
		Definitions:  defs,
	}
	if err := bp.Validate(); err != nil {
		return nil, fmt.Errorf("invalid definition: %w", err)
	}
	return bp, nil
}

// Describe converts a Blueprint back into its document form, for display and export.
// Policies other than policy.Rules are reported as Custom.
func Describe(bp *domain.Blueprint) *dto.ProcessDocument {
	doc := &dto.ProcessDocument{
		Name:    bp.Name,
		Initial: append([]string{}, bp.InitialTasks...),
		Tasks:   make([]dto.TaskMetadata, 0, len(bp.Definitions)),
	}
	for _, def := range bp.Definitions {
		meta := dto.TaskMetadata{Name: def.Name, Kind: string(def.Kind)}
		switch p := def.Policy.(type) {
		case nil:
		case policy.Rules:
			meta.Next = p.Next
			meta.Requires = p.Requires
			meta.WaitFor = p.WaitFor
			for _, b := range p.Branches {
				meta.Branches = append(meta.Branches, dto.BranchMetadata{IfCompleted: b.IfCompleted, Then: b.Then})
			}
		default:
			meta.Custom = true
		}
		doc.Tasks = append(doc.Tasks, meta)
	}
	return doc
}
