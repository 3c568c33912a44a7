// Package steps reads and writes step plans: ordered lists of build steps
// produced by a generator and stored as JSON or YAML documents.
package steps

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/stepfs/pkg/stepfs/core"
)

// PlanVersion is written into new plans.
const PlanVersion = "1.0"

// Plan is a serialisable list of build steps.
type Plan struct {
	Steps    []core.BuildStep `json:"steps" yaml:"steps"`
	Metadata PlanMetadata     `json:"metadata" yaml:"metadata"`
}

// PlanMetadata contains information about the plan
type PlanMetadata struct {
	Version     string `json:"version" yaml:"version"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// PlanError reports a step plan that could not be decoded.
type PlanError struct {
	Source string
	Cause  error
}

func (e *PlanError) Error() string {
	return fmt.Sprintf("invalid step plan %s: %v", e.Source, e.Cause)
}

func (e *PlanError) Unwrap() error {
	return e.Cause
}

// NewPlan creates an empty plan
func NewPlan(description string) *Plan {
	return &Plan{
		Steps: []core.BuildStep{},
		Metadata: PlanMetadata{
			Version:     PlanVersion,
			Description: description,
		},
	}
}

// Add appends steps to the plan
func (p *Plan) Add(steps ...core.BuildStep) {
	p.Steps = append(p.Steps, steps...)
}

// MarshalPlan serializes a plan to indented JSON
func MarshalPlan(plan *Plan) ([]byte, error) {
	return json.MarshalIndent(plan, "", "  ")
}

// UnmarshalPlan decodes a JSON plan. A bare array of steps is accepted too.
func UnmarshalPlan(data []byte) (*Plan, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []core.BuildStep
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, &PlanError{Source: "json", Cause: err}
		}
		plan := NewPlan("")
		plan.Add(list...)
		return plan, nil
	}

	plan := NewPlan("")
	if err := json.Unmarshal(trimmed, plan); err != nil {
		return nil, &PlanError{Source: "json", Cause: err}
	}
	return plan, nil
}

// UnmarshalPlanYAML decodes a YAML plan. A bare sequence of steps is accepted too.
func UnmarshalPlanYAML(data []byte) (*Plan, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &PlanError{Source: "yaml", Cause: err}
	}

	plan := NewPlan("")
	if len(doc.Content) == 0 {
		return plan, nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.SequenceNode {
		var list []core.BuildStep
		if err := root.Decode(&list); err != nil {
			return nil, &PlanError{Source: "yaml", Cause: err}
		}
		plan.Add(list...)
		return plan, nil
	}
	if err := root.Decode(plan); err != nil {
		return nil, &PlanError{Source: "yaml", Cause: err}
	}
	return plan, nil
}

// LoadPlan reads a plan file, choosing the decoder by extension. Files ending
// in .yaml or .yml are YAML, everything else is JSON.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return UnmarshalPlanYAML(data)
	default:
		return UnmarshalPlan(data)
	}
}
