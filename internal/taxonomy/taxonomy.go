// Package taxonomy holds the stop-work reason codes and the clearance step
// template bound to each of them.
package taxonomy

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/mtlprog/stopwork/internal/domain"
)

//go:embed reasons.yaml
var defaultReasons []byte

// Reason is one entry of the reason-code taxonomy.
type Reason struct {
	Code  string                `yaml:"-"`
	Label string                `yaml:"label"`
	Steps []domain.StepTemplate `yaml:"steps"`
}

// Catalog maps reason codes to their step templates.
type Catalog struct {
	Reasons map[string]*Reason `yaml:"reasons"`
}

// Default returns the built-in catalog.
func Default() *Catalog {
	catalog, err := FromYAML(defaultReasons)
	if err != nil {
		panic(fmt.Sprintf("embedded reason catalog is invalid: %v", err))
	}
	return catalog
}

// FromYAML parses and validates a catalog from raw YAML bytes.
func FromYAML(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("invalid taxonomy yaml: %w", err)
	}
	for code, reason := range catalog.Reasons {
		reason.Code = code
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return &catalog, nil
}

// FromFile reads a catalog from the given path.
func FromFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy file: %w", err)
	}
	return FromYAML(data)
}

// Validate checks every reason has at least one step and only known roles.
func (c *Catalog) Validate() error {
	if len(c.Reasons) == 0 {
		return fmt.Errorf("taxonomy defines no reason codes")
	}
	for code, reason := range c.Reasons {
		if reason == nil || len(reason.Steps) == 0 {
			return fmt.Errorf("reason %s has no clearance steps", code)
		}
		for i, step := range reason.Steps {
			if step.Title == "" {
				return fmt.Errorf("reason %s step %d has no title", code, i+1)
			}
			if !step.RequiredRole.IsValid() || step.RequiredRole == domain.RoleSystem {
				return fmt.Errorf("reason %s step %d has invalid role %q", code, i+1, step.RequiredRole)
			}
		}
	}
	return nil
}

// Lookup returns the reason for a code.
func (c *Catalog) Lookup(code string) (*Reason, error) {
	reason, ok := c.Reasons[code]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownReasonCode, code)
	}
	return reason, nil
}

// List returns every reason sorted by code.
func (c *Catalog) List() []*Reason {
	reasons := make([]*Reason, 0, len(c.Reasons))
	for _, r := range c.Reasons {
		reasons = append(reasons, r)
	}
	sort.Slice(reasons, func(i, j int) bool { return reasons[i].Code < reasons[j].Code })
	return reasons
}
