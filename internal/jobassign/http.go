package jobassign

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mtlprog/stopwork/internal/domain"
)

// maxResponseBytes bounds the body read from the assignment service.
const maxResponseBytes = 1 << 20

// HTTPResolver queries the job assignment service over HTTP:
//
//	GET {base}/job-assignments?scope_type=WORK_CENTER&scope_id=WC-SAW-001
//	200 {"job_ids": ["JOB-001", "JOB-002"]}
type HTTPResolver struct {
	baseURL string
	client  *http.Client
}

// NewHTTPResolver creates a resolver with a per-request timeout.
func NewHTTPResolver(baseURL string, timeout time.Duration) *HTTPResolver {
	return &HTTPResolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type assignmentsResponse struct {
	JobIDs []string `json:"job_ids"`
}

// ResolveJobsFor implements Resolver.
func (r *HTTPResolver) ResolveJobsFor(ctx context.Context, scopeType domain.ScopeType, scopeID string) ([]string, error) {
	q := url.Values{}
	q.Set("scope_type", string(scopeType))
	q.Set("scope_id", scopeID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/job-assignments?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build job assignment request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query job assignments for %s %s: %w", scopeType, scopeID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("job assignments for %s %s: unexpected status %d", scopeType, scopeID, resp.StatusCode)
	}

	var body assignmentsResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode job assignments: %w", err)
	}

	return body.JobIDs, nil
}
