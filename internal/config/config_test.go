package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/stopwork/internal/config"
	"github.com/mtlprog/stopwork/internal/domain"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, config.DefaultPort, cfg.Server.Port)
	assert.Equal(t, config.DefaultJobLookupTimeout, cfg.JobAssignment.Timeout)
	assert.Equal(t, config.DefaultRedisChannel, cfg.Redis.Channel)
	assert.True(t, cfg.Approval.SeparationOfDuties)
	assert.Equal(t, 2, cfg.Approval.CriticalEscalationThreshold)
	assert.Contains(t, cfg.Approval.ApproverRoles, domain.RoleEHS)
	assert.Equal(t, 4*time.Hour, cfg.SLA.Critical)
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stopwork.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9090"
job_assignment:
  base_url: http://scheduler.local
  timeout: 150ms
approval:
  approver_roles: [SAFETY_MANAGER]
  separation_of_duties: false
sla:
  critical: 2h
`), 0o600))
	t.Setenv("STOPWORK_AUTH_JWT_SECRET", "s3cret")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "http://scheduler.local", cfg.JobAssignment.BaseURL)
	assert.Equal(t, 150*time.Millisecond, cfg.JobAssignment.Timeout)
	assert.Equal(t, []domain.Role{domain.RoleSafetyManager}, cfg.Approval.ApproverRoles)
	assert.False(t, cfg.Approval.SeparationOfDuties)
	assert.Equal(t, 2*time.Hour, cfg.SLA.Critical)
	assert.Equal(t, 24*time.Hour, cfg.SLA.High)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
}

func TestLoad_UnknownApproverRole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stopwork.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
approval:
  approver_roles: [JANITOR]
`), 0o600))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
