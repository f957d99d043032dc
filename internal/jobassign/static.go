package jobassign

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/mtlprog/stopwork/internal/domain"
)

// StaticResolver serves assignments from memory. It backs local runs
// without an assignment service and the test suites.
type StaticResolver struct {
	mu          sync.RWMutex
	assignments map[domain.ScopeType]map[string][]string
}

// staticFile is the YAML layout accepted by LoadStaticFile:
//
//	WORK_CENTER:
//	  WC-SAW-001: [JOB-001, JOB-002]
//	ASSET:
//	  PRESS-7: [JOB-003]
type staticFile map[domain.ScopeType]map[string][]string

// NewStaticResolver creates an empty StaticResolver.
func NewStaticResolver() *StaticResolver {
	return &StaticResolver{assignments: map[domain.ScopeType]map[string][]string{}}
}

// LoadStaticFile reads assignments from a YAML file.
func LoadStaticFile(path string) (*StaticResolver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read assignments file: %w", err)
	}

	var f staticFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse assignments file: %w", err)
	}

	r := NewStaticResolver()
	for scopeType, scopes := range f {
		if !scopeType.IsValid() {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownScopeType, scopeType)
		}
		for scopeID, jobs := range scopes {
			r.Assign(scopeType, scopeID, jobs...)
		}
	}
	return r, nil
}

// Assign replaces the jobs bound to a scope.
func (r *StaticResolver) Assign(scopeType domain.ScopeType, scopeID string, jobIDs ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	scopes, ok := r.assignments[scopeType]
	if !ok {
		scopes = map[string][]string{}
		r.assignments[scopeType] = scopes
	}
	scopes[scopeID] = append([]string(nil), jobIDs...)
}

// ResolveJobsFor implements Resolver.
func (r *StaticResolver) ResolveJobsFor(ctx context.Context, scopeType domain.ScopeType, scopeID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.assignments[scopeType][scopeID]...), nil
}
