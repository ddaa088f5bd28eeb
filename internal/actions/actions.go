// Package actions defines the fixed catalog of named operations the
// conversational assistant may invoke, and validates model-proposed tool
// calls against it. The registry is static configuration: built once at
// startup and shared read-only across all conversations.
package actions

import (
	"fmt"

	"github.com/akademix/akademix/pkg/models"
)

// ParamType is the declared type of an action parameter.
type ParamType string

const (
	TypeString      ParamType = "string"
	TypeNumber      ParamType = "number"
	TypeEnum        ParamType = "enum"
	TypeObjectArray ParamType = "object_array"
)

// ParamSpec declares one parameter of an action.
type ParamSpec struct {
	Type        ParamType `json:"type"`
	Required    bool      `json:"required,omitempty"`
	Enum        []string  `json:"enum,omitempty"`
	Description string    `json:"description,omitempty"`
}

// Spec declares one action: its identity, argument schema, and whether
// invoking it mutates persisted data (and therefore needs confirmation).
type Spec struct {
	Name        string               `json:"name"`
	Entity      string               `json:"entity"`
	Op          string               `json:"op"` // add, show, update, delete, search
	Params      map[string]ParamSpec `json:"params,omitempty"`
	Mutating    bool                 `json:"mutating"`
	Description string               `json:"description,omitempty"`
}

// UnknownActionError is returned when a tool call names no registered spec.
type UnknownActionError struct {
	Name string
}

func (e *UnknownActionError) Error() string {
	return "unknown action: " + e.Name
}

// InvalidArgumentError is returned when a tool call's arguments do not
// match the declared schema. Param names the offending parameter.
type InvalidArgumentError struct {
	Action string
	Param  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("%s: invalid argument %q: %s", e.Action, e.Param, e.Reason)
}

// Registry is the read-only action catalog.
type Registry struct {
	specs   map[string]Spec
	ordered []string
}

// NewRegistry builds a registry from specs, failing on duplicate names or
// enum parameters without declared values. Called once at process start.
func NewRegistry(specs ...Spec) (*Registry, error) {
	r := &Registry{specs: make(map[string]Spec, len(specs))}
	for _, s := range specs {
		if s.Name == "" {
			return nil, fmt.Errorf("action spec with empty name")
		}
		if _, dup := r.specs[s.Name]; dup {
			return nil, fmt.Errorf("duplicate action name: %s", s.Name)
		}
		for pname, p := range s.Params {
			if p.Type == TypeEnum && len(p.Enum) == 0 {
				return nil, fmt.Errorf("action %s: enum param %q has no values", s.Name, pname)
			}
		}
		r.specs[s.Name] = s
		r.ordered = append(r.ordered, s.Name)
	}
	return r, nil
}

// Lookup returns the spec for an action name.
func (r *Registry) Lookup(name string) (Spec, bool) {
	s, ok := r.specs[name]
	return s, ok
}

// Specs returns all specs in registration order.
func (r *Registry) Specs() []Spec {
	out := make([]Spec, 0, len(r.ordered))
	for _, name := range r.ordered {
		out = append(out, r.specs[name])
	}
	return out
}

// Validate checks a tool call against its spec: the action must exist,
// every required parameter must be present, and every supplied value must
// be structurally compatible with its declared type. No side effects.
func (r *Registry) Validate(call models.ToolCall) error {
	spec, ok := r.Lookup(call.Name)
	if !ok {
		return &UnknownActionError{Name: call.Name}
	}

	for pname, p := range spec.Params {
		v, present := call.Args[pname]
		if !present || v == nil {
			if p.Required {
				return &InvalidArgumentError{Action: call.Name, Param: pname, Reason: "required parameter missing"}
			}
			continue
		}
		if err := checkType(call.Name, pname, p, v); err != nil {
			return err
		}
	}
	return nil
}

func checkType(action, pname string, p ParamSpec, v any) error {
	switch p.Type {
	case TypeString:
		if _, ok := v.(string); !ok {
			return &InvalidArgumentError{Action: action, Param: pname, Reason: fmt.Sprintf("expected string, got %T", v)}
		}
	case TypeNumber:
		switch v.(type) {
		case float64, float32, int, int64:
			// JSON decoding yields float64; the rest cover direct Go callers.
		default:
			return &InvalidArgumentError{Action: action, Param: pname, Reason: fmt.Sprintf("expected number, got %T", v)}
		}
	case TypeEnum:
		s, ok := v.(string)
		if !ok {
			return &InvalidArgumentError{Action: action, Param: pname, Reason: fmt.Sprintf("expected string, got %T", v)}
		}
		for _, allowed := range p.Enum {
			if s == allowed {
				return nil
			}
		}
		return &InvalidArgumentError{Action: action, Param: pname, Reason: fmt.Sprintf("%q is not one of %v", s, p.Enum)}
	case TypeObjectArray:
		arr, ok := v.([]any)
		if !ok {
			return &InvalidArgumentError{Action: action, Param: pname, Reason: fmt.Sprintf("expected array of objects, got %T", v)}
		}
		for i, item := range arr {
			if _, ok := item.(map[string]any); !ok {
				return &InvalidArgumentError{Action: action, Param: pname, Reason: fmt.Sprintf("element %d is not an object", i)}
			}
		}
	default:
		return &InvalidArgumentError{Action: action, Param: pname, Reason: "unsupported parameter type " + string(p.Type)}
	}
	return nil
}
