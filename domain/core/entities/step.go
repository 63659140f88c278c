package entities

import (
	"encoding/json"
	"fmt"
)

// StepKind discriminates the bounded instruction set a function block may
// contain
type StepKind string

const (
	StepKindReturn       StepKind = "return"
	StepKindCallFunction StepKind = "call_function"
	StepKindQuery        StepKind = "query"
	StepKindBranch       StepKind = "branch"
)

// Valid reports whether the kind is one of the known step kinds
func (k StepKind) Valid() bool {
	switch k {
	case StepKindReturn, StepKindCallFunction, StepKindQuery, StepKindBranch:
		return true
	}
	return false
}

// Step is a single instruction inside a function block. Config carries the
// kind-specific payload; Ref names another node (the called function block
// or the queried data resource) where the kind requires one.
type Step struct {
	ID     string                 `json:"id"`
	Kind   StepKind               `json:"kind"`
	Ref    string                 `json:"ref,omitempty"`
	Config map[string]interface{} `json:"config,omitempty"`
}

// UnmarshalJSON rejects unknown step kinds at decode time
func (s *Step) UnmarshalJSON(data []byte) error {
	type stepAlias Step
	var decoded stepAlias
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	if decoded.ID == "" {
		return fmt.Errorf("step is missing an id")
	}
	if !decoded.Kind.Valid() {
		return fmt.Errorf("step %q has unknown kind %q", decoded.ID, decoded.Kind)
	}
	*s = Step(decoded)
	return nil
}

// ProcessData is the kind-specific payload of a process node: the ordered
// step sequence the interpreter executes
type ProcessData struct {
	Steps []Step `json:"steps"`
}
