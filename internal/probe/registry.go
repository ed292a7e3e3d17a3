package probe

import (
	"fmt"
	"sort"
)

// Registry is a fixed, ordinal-sorted sequence of checks.
type Registry struct {
	checks []Check
}

// NewRegistry validates checks and orders them by ordinal. Ordinals must
// be positive and unique, names non-empty and procedures non-nil.
func NewRegistry(checks ...Check) (*Registry, error) {
	seen := make(map[int]string, len(checks))
	for _, c := range checks {
		if c.Order < 1 {
			return nil, fmt.Errorf("check %q: ordinal must be positive, got %d", c.Name, c.Order)
		}
		if c.Name == "" {
			return nil, fmt.Errorf("check #%d: empty name", c.Order)
		}
		if c.Run == nil {
			return nil, fmt.Errorf("check %q: nil procedure", c.Name)
		}
		if prev, dup := seen[c.Order]; dup {
			return nil, fmt.Errorf("checks %q and %q share ordinal %d", prev, c.Name, c.Order)
		}
		seen[c.Order] = c.Name
	}

	sorted := make([]Check, len(checks))
	copy(sorted, checks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })
	return &Registry{checks: sorted}, nil
}

// MustRegistry is NewRegistry for statically declared checks.
func MustRegistry(checks ...Check) *Registry {
	r, err := NewRegistry(checks...)
	if err != nil {
		panic(err)
	}
	return r
}

// Checks returns the checks in execution order.
func (r *Registry) Checks() []Check {
	out := make([]Check, len(r.checks))
	copy(out, r.checks)
	return out
}

func (r *Registry) Len() int { return len(r.checks) }
