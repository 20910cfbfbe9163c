package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jittakal/podstats/internal/config/dto"
	"github.com/spf13/viper"
)

// Supported storage backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendS3     = "s3"
	BackendGCS    = "gcs"
	BackendAzure  = "azure"
)

// DefaultPath is used when neither the -config flag nor CONFIG_PATH is set.
const DefaultPath = "config/application.yaml"

// ResolvePath picks the config file path.
// Priority: CLI flag > CONFIG_PATH env var > DefaultPath.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return envPath
	}
	return DefaultPath
}

// Loader handles configuration loading and validation
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &Loader{v: v}
}

// Load loads configuration from file and environment variables
func (l *Loader) Load(path string) (*dto.ApplicationConfig, error) {
	l.setDefaults()

	if path != "" {
		l.v.SetConfigFile(path)
		if err := l.v.ReadInConfig(); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	// Only expand values containing ${...}
	for _, key := range l.v.AllKeys() {
		value := l.v.GetString(key)
		if strings.Contains(value, "${") {
			l.v.Set(key, os.ExpandEnv(value))
		}
	}

	var config dto.ApplicationConfig
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := l.Validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func (l *Loader) setDefaults() {
	// Application defaults
	l.v.SetDefault("application.name", "podstats")
	l.v.SetDefault("application.version", "1.0.0")
	l.v.SetDefault("application.environment", "development")

	// Storage defaults
	l.v.SetDefault("storage.backend", BackendFile)
	l.v.SetDefault("storage.file.base_path", "./data")
	l.v.SetDefault("storage.s3.use_path_style", false)
	l.v.SetDefault("replica_storage.backend", "")

	// Query defaults
	l.v.SetDefault("query.max_limit", 100000)
	l.v.SetDefault("query.max_response_bytes", 64*1024*1024)

	// Server defaults
	l.v.SetDefault("server.port", 8080)
	l.v.SetDefault("server.read_timeout_seconds", 10)
	l.v.SetDefault("server.write_timeout_seconds", 60)
	l.v.SetDefault("server.idle_timeout_seconds", 120)
	l.v.SetDefault("server.readiness_timeout_seconds", 2)

	// Export defaults
	l.v.SetDefault("export.format", "parquet")
	l.v.SetDefault("export.parquet.compression", "snappy")
	l.v.SetDefault("export.avro.codec", "null")

	// Observability defaults
	l.v.SetDefault("observability.logging.level", "info")
	l.v.SetDefault("observability.logging.format", "json")
	l.v.SetDefault("observability.logging.output", "stdout")
	l.v.SetDefault("observability.metrics.enabled", true)
	l.v.SetDefault("observability.metrics.port", 9090)
	l.v.SetDefault("observability.metrics.path", "/metrics")
	l.v.SetDefault("observability.health.liveness_path", "/health/live")
	l.v.SetDefault("observability.health.readiness_path", "/health/ready")

	// Shutdown defaults
	l.v.SetDefault("shutdown.grace_period_seconds", 30)
}

// Validate validates the configuration
func (l *Loader) Validate(config *dto.ApplicationConfig) error {
	if err := ValidateStorage("storage", config.Storage); err != nil {
		return err
	}
	if config.ReplicaStorage.Enabled() {
		if err := ValidateStorage("replica_storage", config.ReplicaStorage); err != nil {
			return err
		}
	}

	// Query validation
	if config.Query.MaxLimit < 1 {
		return fmt.Errorf("invalid query.max_limit: %d", config.Query.MaxLimit)
	}
	if config.Query.MaxResponseBytes < 0 {
		return fmt.Errorf("invalid query.max_response_bytes: %d", config.Query.MaxResponseBytes)
	}

	// Export validation
	switch config.Export.Format {
	case "parquet", "avro":
	default:
		return fmt.Errorf("unsupported export format: %s", config.Export.Format)
	}

	// Port validation
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}
	if config.Observability.Metrics.Enabled {
		if config.Observability.Metrics.Port < 1 || config.Observability.Metrics.Port > 65535 {
			return fmt.Errorf("invalid metrics port: %d", config.Observability.Metrics.Port)
		}
		if config.Observability.Metrics.Port == config.Server.Port {
			return fmt.Errorf("metrics port %d must differ from server port", config.Observability.Metrics.Port)
		}
	}

	return nil
}

// ValidateStorage checks that the selected backend has its required settings.
func ValidateStorage(section string, storage dto.StorageConfig) error {
	var err error
	switch storage.Backend {
	case BackendS3:
		err = storage.S3.Validate()
	case BackendAzure:
		err = storage.Azure.Validate()
	case BackendGCS:
		err = storage.GCS.Validate()
	case BackendFile:
		err = storage.File.Validate()
	case BackendMemory:
	default:
		return fmt.Errorf("%s: unsupported storage backend: %q (supported: file, memory, s3, gcs, azure)", section, storage.Backend)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", section, err)
	}
	return nil
}
