package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFileEnv names an optional YAML file whose keys mirror the
// environment variables (BACKEND_URL or backend_url). Environment wins.
const ConfigFileEnv = "VIEWER_CONFIG"

type Config struct {
	APIPort  string
	LogLevel string

	BackendURL           string
	UploadTimeoutSeconds int
	FetchTimeoutSeconds  int
	ProbeTimeoutSeconds  int

	BreakerEnabled            bool
	BreakerMinRequests        int
	BreakerFailureRatio       float64
	BreakerOpenTimeoutSeconds int

	NATSURL               string
	NATSSubject           string
	NATSClassifiedSubject string
	NATSPublishAttempts   int

	PollIntervalMS  int
	PollMaxAttempts int

	ExportPath     string
	MaxUploadBytes int64

	RateLimitRPS   float64
	RateLimitBurst int
	MaxInFlight    int

	WorkerMetricsPort string
}

func Load() (Config, error) {
	overlay, err := loadOverlay(os.Getenv(ConfigFileEnv))
	if err != nil {
		return Config{}, err
	}
	env := source{overlay: overlay}

	return Config{
		APIPort:  env.str("API_PORT", "8090"),
		LogLevel: env.str("LOG_LEVEL", "info"),

		BackendURL:           strings.TrimRight(env.str("BACKEND_URL", "http://localhost:8080"), "/"),
		UploadTimeoutSeconds: env.integer("UPLOAD_TIMEOUT_SECONDS", 60),
		FetchTimeoutSeconds:  env.integer("FETCH_TIMEOUT_SECONDS", 30),
		ProbeTimeoutSeconds:  env.integer("PROBE_TIMEOUT_SECONDS", 5),

		BreakerEnabled:            env.boolean("BREAKER_ENABLED", true),
		BreakerMinRequests:        env.integer("BREAKER_MIN_REQUESTS", 5),
		BreakerFailureRatio:       env.float("BREAKER_FAILURE_RATIO", 0.6),
		BreakerOpenTimeoutSeconds: env.integer("BREAKER_OPEN_TIMEOUT_SECONDS", 15),

		NATSURL:               env.str("NATS_URL", "nats://localhost:4222"),
		NATSSubject:           env.str("NATS_SUBJECT", "documents.uploaded"),
		NATSClassifiedSubject: env.str("NATS_CLASSIFIED_SUBJECT", "documents.classified"),
		NATSPublishAttempts:   env.integer("NATS_PUBLISH_ATTEMPTS", 3),

		PollIntervalMS:  env.integer("POLL_INTERVAL_MS", 2000),
		PollMaxAttempts: env.integer("POLL_MAX_ATTEMPTS", 30),

		ExportPath:     env.str("EXPORT_PATH", "./data/exports"),
		MaxUploadBytes: int64(env.integer("MAX_UPLOAD_BYTES", 50<<20)),

		RateLimitRPS:   env.float("RATE_LIMIT_RPS", 10),
		RateLimitBurst: env.integer("RATE_LIMIT_BURST", 20),
		MaxInFlight:    env.integer("MAX_IN_FLIGHT", 32),

		WorkerMetricsPort: env.str("WORKER_METRICS_PORT", "9090"),
	}, nil
}

func (c Config) UploadTimeout() time.Duration {
	return time.Duration(c.UploadTimeoutSeconds) * time.Second
}

func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

func (c Config) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutSeconds) * time.Second
}

func (c Config) BreakerOpenTimeout() time.Duration {
	return time.Duration(c.BreakerOpenTimeoutSeconds) * time.Second
}

func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

func loadOverlay(path string) (map[string]string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var decoded map[string]any
	if err := yaml.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	overlay := make(map[string]string, len(decoded))
	for key, value := range decoded {
		if value == nil {
			continue
		}
		overlay[strings.ToUpper(strings.TrimSpace(key))] = fmt.Sprint(value)
	}
	return overlay, nil
}

type source struct {
	overlay map[string]string
}

func (s source) lookup(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return s.overlay[key]
}

func (s source) str(key, fallback string) string {
	v := s.lookup(key)
	if v == "" {
		return fallback
	}
	return v
}

func (s source) integer(key string, fallback int) int {
	v := s.lookup(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func (s source) float(key string, fallback float64) float64 {
	v := s.lookup(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return n
}

func (s source) boolean(key string, fallback bool) bool {
	v := s.lookup(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
