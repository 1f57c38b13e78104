package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables holding the RongCloud credentials. The lowercase
// names match what the RongCloud SDKs read.
const (
	EnvAppKey    = "rongcloud_app_key"
	EnvAppSecret = "rongcloud_app_secret"
)

// DefaultAPIHost is the RongCloud server API endpoint used when
// RONGCLOUD_API_HOST is not set.
const DefaultAPIHost = "https://api.cn.rong.io"

// Config captures all runtime configuration for the RongCloud executables.
type Config struct {
	App       AppConfig
	RongCloud RongCloudConfig
	Gateway   GatewayConfig
	Kafka     KafkaConfig
	Topics    TopicConfig
	Worker    WorkerConfig
}

// AppConfig contains generic application level settings.
type AppConfig struct {
	Env      string
	LogLevel string
}

// RongCloudConfig holds the credentials and endpoint settings of the API client.
type RongCloudConfig struct {
	AppKey         string
	AppSecret      string
	APIHost        string
	ResponseFormat string
	// InsecureSkipVerify disables certificate validation. The zero value keeps
	// validation on; RONGCLOUD_VERIFY_TLS=false is the explicit opt-out.
	InsecureSkipVerify bool
}

// GatewayConfig configures the HTTP gateway.
type GatewayConfig struct {
	HTTPAddr string
}

// KafkaConfig defines broker information.
type KafkaConfig struct {
	Brokers []string
}

// TopicConfig names the topics used by the action worker.
type TopicConfig struct {
	Request string
	Result  string
	DLQ     string
}

// WorkerConfig controls the action worker.
type WorkerConfig struct {
	ConsumerGroup       string
	Concurrency         int
	MsgMaxBytes         int
	CommitOnSuccessOnly bool
}

// IsDevelopment reports whether the application runs in a development
// environment.
func (c AppConfig) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development") || strings.EqualFold(c.Env, "dev")
}

// Load reads environment variables, applies defaults, validates required
// values and returns the configuration of the Kafka worker.
func Load() (*Config, error) {
	_ = godotenv.Load()

	ldr := &envLoader{}
	cfg := &Config{}
	loadClientSections(ldr, cfg)

	cfg.Kafka.Brokers = ldr.getStringSlice("KAFKA_BROKERS", true)

	cfg.Topics = TopicConfig{
		Request: ldr.getString("KAFKA_ACTION_REQUEST_TOPIC", "", true),
		Result:  ldr.getString("KAFKA_ACTION_RESULT_TOPIC", "", true),
		DLQ:     ldr.getString("KAFKA_ACTION_DLQ_TOPIC", "", true),
	}

	cfg.Worker.ConsumerGroup = ldr.getString("ACTION_CONSUMER_GROUP", "", true)
	cfg.Worker.Concurrency = ldr.getInt("WORKER_CONCURRENCY", 10, false)
	cfg.Worker.MsgMaxBytes = ldr.getInt("MSG_MAX_BYTES", 200000, false)
	cfg.Worker.CommitOnSuccessOnly = ldr.getBool("COMMIT_ON_SUCCESS_ONLY", true, false)
	if cfg.Worker.Concurrency < 1 {
		ldr.addError("WORKER_CONCURRENCY must be >= 1")
	}

	if err := ldr.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadClient reads only the sections needed by the CLI and the HTTP gateway.
// Kafka settings are left empty.
func LoadClient() (*Config, error) {
	_ = godotenv.Load()

	ldr := &envLoader{}
	cfg := &Config{}
	loadClientSections(ldr, cfg)

	if err := ldr.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadClientSections(ldr *envLoader, cfg *Config) {
	cfg.App.Env = ldr.getString("APP_ENV", "development", false)
	cfg.App.LogLevel = ldr.getString("LOG_LEVEL", "info", false)

	cfg.RongCloud.AppKey = ldr.getString(EnvAppKey, "", true)
	cfg.RongCloud.AppSecret = ldr.getString(EnvAppSecret, "", true)
	cfg.RongCloud.APIHost = strings.TrimRight(ldr.getString("RONGCLOUD_API_HOST", DefaultAPIHost, false), "/")
	cfg.RongCloud.ResponseFormat = ldr.getString("RONGCLOUD_RESPONSE_FORMAT", "json", false)
	cfg.RongCloud.InsecureSkipVerify = !ldr.getBool("RONGCLOUD_VERIFY_TLS", true, false)
	if u, err := url.Parse(cfg.RongCloud.APIHost); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		ldr.addError("RONGCLOUD_API_HOST must be an absolute http(s) URL")
	}

	cfg.Gateway.HTTPAddr = ldr.getString("GATEWAY_HTTP_ADDR", ":8080", false)
}

type envLoader struct {
	errs []string
}

func (l *envLoader) validate() error {
	if len(l.errs) == 0 {
		return nil
	}
	return fmt.Errorf("config validation failed: %s", strings.Join(l.errs, "; "))
}

func (l *envLoader) getString(key, def string, required bool) string {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.TrimSpace(val)
		if val != "" {
			return val
		}
	}
	if required {
		l.addError(fmt.Sprintf("%s is required", key))
	}
	return def
}

func (l *envLoader) getInt(key string, def int, required bool) int {
	raw := l.getString(key, "", required)
	if raw == "" {
		return def
	}
	i, err := strconv.Atoi(raw)
	if err != nil {
		l.addError(fmt.Sprintf("%s must be a valid integer", key))
		return def
	}
	return i
}

func (l *envLoader) getBool(key string, def bool, required bool) bool {
	raw := l.getString(key, "", required)
	if raw == "" {
		return def
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		l.addError(fmt.Sprintf("%s must be a valid boolean", key))
		return def
	}
	return parsed
}

func (l *envLoader) getStringSlice(key string, required bool) []string {
	raw := l.getString(key, "", required)
	if raw == "" {
		if required {
			return nil
		}
		return []string{}
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if required && len(out) == 0 {
		l.addError(fmt.Sprintf("%s must contain at least one entry", key))
	}
	return out
}

func (l *envLoader) addError(err string) {
	l.errs = append(l.errs, err)
}
