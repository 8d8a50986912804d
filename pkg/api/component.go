package api

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// Plane groups components by where they run
	Plane string

	// Component describes one cluster component shown in the diagrams
	Component struct {
		ID               ComponentID `json:"id" yaml:"id"`
		Name             string      `json:"name" yaml:"name"`
		Plane            Plane       `json:"plane" yaml:"plane"`
		Summary          string      `json:"summary" yaml:"summary"`
		Responsibilities []string    `json:"responsibilities" yaml:"responsibilities"`
	}

	// FieldMapping ties a manifest field path to the component acting on it
	FieldMapping struct {
		Path      string      `json:"path" yaml:"path"`
		Component ComponentID `json:"component" yaml:"component"`
		Note      string      `json:"note" yaml:"note"`
	}

	// Annotation reports one manifest field and the component acting on it
	Annotation struct {
		Document  int         `json:"document"`
		Kind      string      `json:"kind"`
		Name      string      `json:"name,omitempty"`
		Path      string      `json:"path"`
		Component ComponentID `json:"component"`
		Note      string      `json:"note"`
		Value     any         `json:"value,omitempty"`
	}

	// WorkloadSummary describes a decoded Deployment. Requests totals the
	// resource requests of one pod across its containers
	WorkloadSummary struct {
		Name     string            `json:"name"`
		Replicas int32             `json:"replicas"`
		Images   []string          `json:"images"`
		Requests map[string]string `json:"requests,omitempty"`
	}
)

const (
	PlaneControl Plane = "control"
	PlaneNode    Plane = "node"
	PlaneAddon   Plane = "addon"

	// ListMarker stands in for any list index in a field mapping path
	ListMarker = "[]"
)

var (
	ErrComponentIDInvalid = errors.New("component ID invalid")
	ErrComponentNameEmpty = errors.New("component name empty")
	ErrComponentPlane     = errors.New("component plane invalid")
	ErrMappingPathEmpty   = errors.New("field mapping path empty")
)

// Validate checks the component record
func (c *Component) Validate() error {
	if !IsCanonicalID(c.ID) {
		return fmt.Errorf("%w: %q", ErrComponentIDInvalid, c.ID)
	}
	if c.Name == "" {
		return ErrComponentNameEmpty
	}
	switch c.Plane {
	case PlaneControl, PlaneNode, PlaneAddon:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrComponentPlane, c.Plane)
	}
}

// Segments splits the mapping path on dots
func (m *FieldMapping) Segments() []string {
	return SplitPath(m.Path)
}

// Validate checks the field mapping record
func (m *FieldMapping) Validate() error {
	if strings.TrimSpace(m.Path) == "" {
		return ErrMappingPathEmpty
	}
	if !IsCanonicalID(m.Component) {
		return fmt.Errorf("%w: %q", ErrComponentIDInvalid, m.Component)
	}
	return nil
}

// SplitPath splits a dotted field path into its segments
func SplitPath(path string) []string {
	return strings.Split(path, ".")
}

// JoinPath joins segments into a dotted field path
func JoinPath(segments []string) string {
	return strings.Join(segments, ".")
}
