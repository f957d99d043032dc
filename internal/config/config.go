package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mtlprog/stopwork/internal/domain"
)

const (
	// DefaultPort is the default HTTP server port.
	DefaultPort = "8080"

	// DefaultDatabaseURL is empty; must be provided via flag or environment.
	DefaultDatabaseURL = ""

	// DefaultJobLookupTimeout bounds the job-assignment call. A degraded,
	// fail-closed blocked set is always safe to serve, so keep it short.
	DefaultJobLookupTimeout = 250 * time.Millisecond

	// DefaultJWTIssuer is the expected issuer of identity tokens.
	DefaultJWTIssuer = "stopwork"

	// DefaultRedisChannel carries blocked-resource snapshots to dispatch.
	DefaultRedisChannel = "stopwork:blocked-resources"

	// DefaultFeedResendInterval is how often the push feed repeats the snapshot.
	DefaultFeedResendInterval = 30 * time.Second

	// DefaultMaxEvidenceBytes caps a single evidence upload.
	DefaultMaxEvidenceBytes = 20 << 20

	// EnvPrefix prefixes every environment override, e.g. STOPWORK_AUTH_JWT_SECRET.
	EnvPrefix = "STOPWORK"
)

// Config is the full service configuration.
type Config struct {
	Server struct {
		Port               string        `mapstructure:"port"`
		CorsAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
		FeedResendInterval time.Duration `mapstructure:"feed_resend_interval"`
	} `mapstructure:"server"`

	Database struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"database"`

	Auth struct {
		JWTSecret string `mapstructure:"jwt_secret"`
		Issuer    string `mapstructure:"issuer"`
	} `mapstructure:"auth"`

	JobAssignment struct {
		BaseURL         string        `mapstructure:"base_url"`
		Timeout         time.Duration `mapstructure:"timeout"`
		AssignmentsFile string        `mapstructure:"assignments_file"`
	} `mapstructure:"job_assignment"`

	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		Channel  string `mapstructure:"channel"`
	} `mapstructure:"redis"`

	Evidence struct {
		Bucket    string `mapstructure:"bucket"`
		Region    string `mapstructure:"region"`
		Endpoint  string `mapstructure:"endpoint"`
		AccessKey string `mapstructure:"access_key"`
		SecretKey string `mapstructure:"secret_key"`
		MaxBytes  int64  `mapstructure:"max_bytes"`
	} `mapstructure:"evidence"`

	Approval ApprovalPolicy `mapstructure:"approval"`

	SLA SLA `mapstructure:"sla"`

	Taxonomy struct {
		File string `mapstructure:"file"`
	} `mapstructure:"taxonomy"`
}

// ApprovalPolicy governs who may decide a pending clearance.
type ApprovalPolicy struct {
	ApproverRoles               []domain.Role `mapstructure:"approver_roles"`
	EscalationApproverRoles     []domain.Role `mapstructure:"escalation_approver_roles"`
	SeparationOfDuties          bool          `mapstructure:"separation_of_duties"`
	CriticalEscalationThreshold int           `mapstructure:"critical_escalation_threshold"`
}

// SLA holds the clearance target per severity.
type SLA struct {
	Critical time.Duration `mapstructure:"critical"`
	High     time.Duration `mapstructure:"high"`
	Medium   time.Duration `mapstructure:"medium"`
	Low      time.Duration `mapstructure:"low"`
}

// DefaultApprovalPolicy returns the policy used when nothing is configured.
func DefaultApprovalPolicy() ApprovalPolicy {
	return ApprovalPolicy{
		ApproverRoles:               []domain.Role{domain.RoleEHS, domain.RoleSafetyManager, domain.RolePlantManager},
		EscalationApproverRoles:     []domain.Role{domain.RolePlantManager},
		SeparationOfDuties:          true,
		CriticalEscalationThreshold: 2,
	}
}

// DefaultSLA returns the default clearance targets.
func DefaultSLA() SLA {
	return SLA{
		Critical: 4 * time.Hour,
		High:     24 * time.Hour,
		Medium:   72 * time.Hour,
		Low:      168 * time.Hour,
	}
}

// Load reads configuration from .env, an optional YAML file and STOPWORK_*
// environment variables, in increasing order of precedence.
func Load(path string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	policy := DefaultApprovalPolicy()
	sla := DefaultSLA()

	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.cors_allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.feed_resend_interval", DefaultFeedResendInterval)
	v.SetDefault("database.url", DefaultDatabaseURL)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", DefaultJWTIssuer)
	v.SetDefault("job_assignment.base_url", "")
	v.SetDefault("job_assignment.timeout", DefaultJobLookupTimeout)
	v.SetDefault("job_assignment.assignments_file", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.channel", DefaultRedisChannel)
	v.SetDefault("evidence.bucket", "")
	v.SetDefault("evidence.region", "auto")
	v.SetDefault("evidence.endpoint", "")
	v.SetDefault("evidence.access_key", "")
	v.SetDefault("evidence.secret_key", "")
	v.SetDefault("evidence.max_bytes", DefaultMaxEvidenceBytes)
	v.SetDefault("approval.approver_roles", policy.ApproverRoles)
	v.SetDefault("approval.escalation_approver_roles", policy.EscalationApproverRoles)
	v.SetDefault("approval.separation_of_duties", policy.SeparationOfDuties)
	v.SetDefault("approval.critical_escalation_threshold", policy.CriticalEscalationThreshold)
	v.SetDefault("sla.critical", sla.Critical)
	v.SetDefault("sla.high", sla.High)
	v.SetDefault("sla.medium", sla.Medium)
	v.SetDefault("sla.low", sla.Low)
	v.SetDefault("taxonomy.file", "")
}

// Validate checks values that would otherwise fail at request time.
func (c *Config) Validate() error {
	if c.JobAssignment.Timeout <= 0 {
		return fmt.Errorf("job_assignment.timeout must be positive")
	}
	if len(c.Approval.ApproverRoles) == 0 {
		return fmt.Errorf("approval.approver_roles must not be empty")
	}
	for _, r := range slices.Concat(c.Approval.ApproverRoles, c.Approval.EscalationApproverRoles) {
		if !r.IsValid() {
			return fmt.Errorf("approval: unknown role %q", r)
		}
	}
	return nil
}
