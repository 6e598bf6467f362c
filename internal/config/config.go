// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nova-migration/migrate-go/internal/agent"
	"github.com/nova-migration/migrate-go/internal/observability"
)

// Mode determines whether the worker calls stub agents or the hosted agent endpoint.
type Mode string

const (
	ModeStub       Mode = "stub"
	ModeProduction Mode = "production"
)

// StubRegistry is the agent registry used in stub mode when no file is given.
var StubRegistry = agent.Registry{
	TestGenerator:  "stub-test-generator",
	PromptMigrator: "stub-prompt-migrator",
	Executor:       "stub-nova-executor",
	Comparator:     "stub-output-comparator",
	PromptImprover: "stub-prompt-improver",
}

// Config holds all application configuration.
type Config struct {
	Mode        Mode
	FixturesDir string

	// Agent endpoint settings.
	AgentEndpoint string
	AgentAPIKey   string
	AgentUserID   string
	AgentsFile    string
	Agents        agent.Registry
	AgentRPS      float64

	// API server settings.
	APIPort      string
	CORSOrigins  []string
	LogLevel     string
	OTelEnabled  bool
	// OTelEndpoint overrides the OTLP exporter URL; empty uses the OTEL_* env defaults.
	OTelEndpoint    string
	OTelSampleRatio float64
	OIDCIssuer   string
	OIDCAudience string

	// Worker settings.
	Queues     string
	RunBudget  int
	BudgetSpan time.Duration

	// AWS settings for run metrics.
	AWSRegion           string
	AWSProfile          string
	MetricsRoleARN      string
	CloudWatchNamespace string
}

// LoadFromEnv reads configuration from environment variables with sensible defaults.
func LoadFromEnv() (Config, error) {
	cfg := Config{
		Mode:                Mode(envOr("MIGRATE_MODE", "stub")),
		FixturesDir:         os.Getenv("MIGRATE_FIXTURES_DIR"),
		AgentEndpoint:       os.Getenv("MIGRATE_AGENT_ENDPOINT"),
		AgentAPIKey:         os.Getenv("MIGRATE_AGENT_API_KEY"),
		AgentUserID:         envOr("MIGRATE_AGENT_USER_ID", "migrate-go"),
		AgentsFile:          os.Getenv("MIGRATE_AGENTS_FILE"),
		APIPort:             envOr("MIGRATE_API_PORT", "8080"),
		CORSOrigins:         parseList(os.Getenv("MIGRATE_CORS_ORIGINS"), []string{"*"}),
		LogLevel:            envOr("MIGRATE_LOG_LEVEL", "info"),
		OTelEndpoint:        os.Getenv("MIGRATE_OTEL_ENDPOINT"),
		OIDCIssuer:          os.Getenv("MIGRATE_OIDC_ISSUER"),
		OIDCAudience:        os.Getenv("MIGRATE_OIDC_AUDIENCE"),
		Queues:              os.Getenv("MIGRATE_QUEUES"),
		AWSRegion:           envOr("AWS_REGION", "us-east-1"),
		AWSProfile:          os.Getenv("AWS_PROFILE"),
		MetricsRoleARN:      os.Getenv("MIGRATE_METRICS_ROLE_ARN"),
		CloudWatchNamespace: os.Getenv("MIGRATE_CLOUDWATCH_NAMESPACE"),
	}

	if cfg.Mode != ModeStub && cfg.Mode != ModeProduction {
		return Config{}, fmt.Errorf("config: invalid MIGRATE_MODE %q (must be stub or production)", cfg.Mode)
	}

	var err error
	if cfg.AgentRPS, err = envFloat("MIGRATE_AGENT_RPS", 2); err != nil {
		return Config{}, err
	}
	if cfg.OTelEnabled, err = envBool("MIGRATE_OTEL_ENABLED", false); err != nil {
		return Config{}, err
	}
	if cfg.OTelSampleRatio, err = envFloat("MIGRATE_OTEL_SAMPLE_RATIO", 1); err != nil {
		return Config{}, err
	}
	if cfg.OTelSampleRatio < 0 || cfg.OTelSampleRatio > 1 {
		return Config{}, fmt.Errorf("config: MIGRATE_OTEL_SAMPLE_RATIO %v out of range [0, 1]", cfg.OTelSampleRatio)
	}
	if cfg.RunBudget, err = envInt("MIGRATE_RUN_BUDGET", 0); err != nil {
		return Config{}, err
	}
	if cfg.BudgetSpan, err = envDuration("MIGRATE_RUN_BUDGET_WINDOW", time.Hour); err != nil {
		return Config{}, err
	}

	if cfg.AgentsFile != "" {
		reg, err := LoadAgentRegistry(cfg.AgentsFile)
		if err != nil {
			return Config{}, err
		}
		cfg.Agents = reg
	} else if cfg.Mode == ModeStub {
		cfg.Agents = StubRegistry
	}

	if cfg.Mode == ModeProduction {
		if cfg.AgentEndpoint == "" {
			return Config{}, fmt.Errorf("config: MIGRATE_AGENT_ENDPOINT required in production mode")
		}
		if cfg.AgentAPIKey == "" {
			return Config{}, fmt.Errorf("config: MIGRATE_AGENT_API_KEY required in production mode")
		}
		if cfg.AgentsFile == "" {
			return Config{}, fmt.Errorf("config: MIGRATE_AGENTS_FILE required in production mode")
		}
	}

	return cfg, nil
}

// AgentConfig returns the transport settings shared by every agent.
func (c Config) AgentConfig() agent.Config {
	return agent.Config{Endpoint: c.AgentEndpoint, APIKey: c.AgentAPIKey, UserID: c.AgentUserID}
}

// TracerConfig returns the tracing settings for one binary.
func (c Config) TracerConfig(component string) observability.TracerConfig {
	return observability.TracerConfig{
		Component:   component,
		Endpoint:    c.OTelEndpoint,
		SampleRatio: c.OTelSampleRatio,
	}
}

// OIDCEnabled reports whether API bearer auth is configured.
func (c Config) OIDCEnabled() bool {
	return c.OIDCIssuer != ""
}

type registryFile struct {
	Agents agent.Registry `yaml:"agents"`
}

// LoadAgentRegistry reads the agent id for every pipeline step from a YAML file:
//
//	agents:
//	  test_generator: 68a...
//	  prompt_migrator: 68b...
//	  executor: 68c...
//	  comparator: 68d...
//	  prompt_improver: 68e...
func LoadAgentRegistry(path string) (agent.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return agent.Registry{}, fmt.Errorf("config: read agents file: %w", err)
	}
	var f registryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return agent.Registry{}, fmt.Errorf("config: parse agents file %s: %w", path, err)
	}
	if err := f.Agents.Validate(); err != nil {
		return agent.Registry{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return f.Agents, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func envInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func envBool(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("config: invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func parseList(raw string, fallback []string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if t := strings.TrimSpace(o); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
