package jobassign_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/stopwork/internal/domain"
	"github.com/mtlprog/stopwork/internal/jobassign"
)

func TestHTTPResolver_ResolvesJobs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/job-assignments", r.URL.Path)
		assert.Equal(t, "WORK_CENTER", r.URL.Query().Get("scope_type"))
		assert.Equal(t, "WC-SAW-001", r.URL.Query().Get("scope_id"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"job_ids":["JOB-001","JOB-002"]}`))
	}))
	defer srv.Close()

	r := jobassign.NewHTTPResolver(srv.URL+"/", time.Second)
	jobs, err := r.ResolveJobsFor(context.Background(), domain.ScopeTypeWorkCenter, "WC-SAW-001")
	require.NoError(t, err)
	assert.Equal(t, []string{"JOB-001", "JOB-002"}, jobs)
}

func TestHTTPResolver_Non200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	r := jobassign.NewHTTPResolver(srv.URL, time.Second)
	_, err := r.ResolveJobsFor(context.Background(), domain.ScopeTypeAsset, "PRESS-7")
	assert.ErrorContains(t, err, "unexpected status 503")
}

func TestHTTPResolver_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	r := jobassign.NewHTTPResolver(srv.URL, 50*time.Millisecond)
	start := time.Now()
	_, err := r.ResolveJobsFor(context.Background(), domain.ScopeTypeWorkCenter, "WC-1")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestStaticResolver(t *testing.T) {
	r := jobassign.NewStaticResolver()
	r.Assign(domain.ScopeTypeWorkCenter, "WC-1", "JOB-1", "JOB-2")

	jobs, err := r.ResolveJobsFor(context.Background(), domain.ScopeTypeWorkCenter, "WC-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"JOB-1", "JOB-2"}, jobs)

	jobs, err = r.ResolveJobsFor(context.Background(), domain.ScopeTypeAsset, "WC-1")
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestLoadStaticFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assignments.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
WORK_CENTER:
  WC-SAW-001: [JOB-001, JOB-002]
ASSET:
  PRESS-7: [JOB-003]
`), 0o600))

	r, err := jobassign.LoadStaticFile(path)
	require.NoError(t, err)

	jobs, err := r.ResolveJobsFor(context.Background(), domain.ScopeTypeAsset, "PRESS-7")
	require.NoError(t, err)
	assert.Equal(t, []string{"JOB-003"}, jobs)
}

func TestLoadStaticFile_UnknownScopeType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assignments.yaml")
	require.NoError(t, os.WriteFile(path, []byte("MACHINE:\n  M-1: [JOB-1]\n"), 0o600))

	_, err := jobassign.LoadStaticFile(path)
	assert.ErrorIs(t, err, domain.ErrUnknownScopeType)
}
