// Package config defines process configuration and its loading order.
package config

import "time"

// Config captures everything the server needs at startup. Fields map to YAML
// keys and TALENTGATE_* environment variables via koanf tags.
type Config struct {
	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// PostgresDSN selects the Postgres stores when non-empty; the in-memory
	// stores are used otherwise.
	PostgresDSN string `koanf:"postgres_dsn"`

	// RedisURL enables the Redis-backed keyed locks when non-empty. With an
	// empty URL the engine falls back to in-process locks, which is correct
	// for a single-instance deployment.
	RedisURL string `koanf:"redis_url"`

	// KafkaBrokers enables the Kafka audit publisher when non-empty.
	KafkaBrokers []string `koanf:"kafka_brokers"`

	// KafkaAuditTopic is the topic audit events are published to.
	KafkaAuditTopic string `koanf:"kafka_audit_topic"`

	// AssessmentThreshold is the minimum general-competency score that counts
	// as a pass, on a scale of 0..AssessmentScale.
	AssessmentThreshold float64 `koanf:"assessment_threshold"`

	// AssessmentScale is the maximum possible general-competency score.
	AssessmentScale float64 `koanf:"assessment_scale"`

	// WebhookSecret signs and verifies the assessment provider's bearer tokens.
	WebhookSecret string `koanf:"webhook_secret"`

	// FormsPath points to the YAML file holding form field definitions.
	FormsPath string `koanf:"forms_path"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Defaults returns a Config with development-friendly defaults. Load layers
// file and environment values on top.
func Defaults() *Config {
	return &Config{
		Addr:                ":8080",
		LogLevel:            "info",
		KafkaAuditTopic:     "talentgate.audit",
		AssessmentThreshold: 70,
		AssessmentScale:     100,
		ShutdownTimeout:     10 * time.Second,
	}
}
