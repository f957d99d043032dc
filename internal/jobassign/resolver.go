// Package jobassign resolves which jobs are scheduled on a work center or
// use an asset. It is the client side of the Job Assignment collaborator.
package jobassign

import (
	"context"

	"github.com/mtlprog/stopwork/internal/domain"
)

// Resolver lists the jobs currently bound to a scope.
type Resolver interface {
	ResolveJobsFor(ctx context.Context, scopeType domain.ScopeType, scopeID string) ([]string, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, scopeType domain.ScopeType, scopeID string) ([]string, error)

// ResolveJobsFor calls f.
func (f ResolverFunc) ResolveJobsFor(ctx context.Context, scopeType domain.ScopeType, scopeID string) ([]string, error) {
	return f(ctx, scopeType, scopeID)
}
