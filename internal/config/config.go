package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the service reads,
// e.g. BLOBMANAGER_STORAGE_CONNECTION_STRING.
const EnvPrefix = "BLOBMANAGER"

// Viper keys.
const (
	KeyServerHost        = "server.host"
	KeyServerPort        = "server.port"
	KeyReadTimeout       = "server.read_timeout"
	KeyWriteTimeout      = "server.write_timeout"
	KeyShutdownTimeout   = "server.shutdown_timeout"
	KeyStorageProvider   = "storage.provider"
	KeyConnectionString  = "storage.connection_string"
	KeyContainer         = "storage.container"
	KeyRequestContainers = "storage.request_containers"
	KeyHeaderKey         = "header.key"
	KeyHeaderSecrets     = "header.secrets"
	KeyMaxBodyBytes      = "limits.max_body_bytes"
	KeyLogLevel          = "log.level"
	KeyLogFormat         = "log.format"
	KeyCORSEnabled       = "cors.enabled"
	KeyMetricsEnabled    = "metrics.enabled"
)

// Supported storage providers.
const (
	ProviderAzure = "azure"
	ProviderMinio = "minio"
	ProviderS3    = "s3"
	ProviderGCS   = "gcs"
	ProviderLocal = "local"
)

// Config holds the application configuration. It is built once at startup
// and shared read-only by every request.
type Config struct {
	ServerHost      string
	ServerPort      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	StorageProvider  string
	ConnectionString string
	DefaultContainer string
	// RequestContainers maps additional lower-cased trequest tags to their
	// container.
	RequestContainers map[string]string

	HeaderKey     string
	HeaderSecrets []string

	MaxBodyBytes int64

	LogLevel  string
	LogFormat string

	EnableCORS     bool
	MetricsEnabled bool
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyServerHost, "0.0.0.0")
	v.SetDefault(KeyServerPort, "3003")
	v.SetDefault(KeyReadTimeout, 30*time.Second)
	v.SetDefault(KeyWriteTimeout, 30*time.Second)
	v.SetDefault(KeyShutdownTimeout, 30*time.Second)
	v.SetDefault(KeyStorageProvider, ProviderAzure)
	v.SetDefault(KeyConnectionString, "")
	v.SetDefault(KeyContainer, "")
	v.SetDefault(KeyRequestContainers, map[string]string{})
	v.SetDefault(KeyHeaderKey, "X-Blob-Canary")
	v.SetDefault(KeyHeaderSecrets, []string{})
	v.SetDefault(KeyMaxBodyBytes, int64(32<<20))
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "json")
	v.SetDefault(KeyCORSEnabled, false)
	v.SetDefault(KeyMetricsEnabled, true)
}

// NewViper returns a viper instance with defaults and environment binding
// configured. Callers may still add a config file or bind flags.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load builds a Config from v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		ServerHost:        strings.TrimSpace(v.GetString(KeyServerHost)),
		ServerPort:        strings.TrimSpace(v.GetString(KeyServerPort)),
		ReadTimeout:       v.GetDuration(KeyReadTimeout),
		WriteTimeout:      v.GetDuration(KeyWriteTimeout),
		ShutdownTimeout:   v.GetDuration(KeyShutdownTimeout),
		StorageProvider:   strings.ToLower(strings.TrimSpace(v.GetString(KeyStorageProvider))),
		ConnectionString:  strings.TrimSpace(v.GetString(KeyConnectionString)),
		DefaultContainer:  strings.TrimSpace(v.GetString(KeyContainer)),
		RequestContainers: cleanContainers(v.GetStringMapString(KeyRequestContainers)),
		HeaderKey:         strings.TrimSpace(v.GetString(KeyHeaderKey)),
		HeaderSecrets:     readSecrets(v.Get(KeyHeaderSecrets)),
		MaxBodyBytes:      v.GetInt64(KeyMaxBodyBytes),
		LogLevel:          strings.ToLower(strings.TrimSpace(v.GetString(KeyLogLevel))),
		LogFormat:         strings.ToLower(strings.TrimSpace(v.GetString(KeyLogFormat))),
		EnableCORS:        v.GetBool(KeyCORSEnabled),
		MetricsEnabled:    v.GetBool(KeyMetricsEnabled),
	}

	switch cfg.StorageProvider {
	case ProviderAzure, ProviderMinio, ProviderS3, ProviderGCS, ProviderLocal:
	default:
		return nil, fmt.Errorf("unsupported storage provider %q", cfg.StorageProvider)
	}
	if cfg.ServerPort == "" {
		return nil, fmt.Errorf("server port must not be empty")
	}
	if cfg.MaxBodyBytes <= 0 {
		return nil, fmt.Errorf("max body bytes must be positive, got %d", cfg.MaxBodyBytes)
	}
	return cfg, nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// Warnings reports settings that leave the service unable to serve requests
// without being fatal at startup.
func (c *Config) Warnings() []string {
	var out []string
	if c.HeaderKey == "" {
		out = append(out, "header key is empty; every data request will be rejected")
	}
	if len(c.HeaderSecrets) == 0 {
		out = append(out, "no header secrets configured; every data request will be rejected")
	}
	if c.ConnectionString == "" {
		out = append(out, "storage connection string is empty; data requests will fail")
	}
	if c.DefaultContainer == "" {
		out = append(out, "default container is empty; GeneralBlobRequest will fail")
	}
	return out
}

// RequestTags returns the configured extra request tags in sorted order.
func (c *Config) RequestTags() []string {
	tags := make([]string, 0, len(c.RequestContainers))
	for tag := range c.RequestContainers {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// readSecrets keeps every secret byte-exact. A single string (environment)
// is split on commas only; list values (config file, flags) are taken
// entry by entry. Empty entries are dropped.
func readSecrets(raw any) []string {
	var items []string
	switch val := raw.(type) {
	case nil:
	case string:
		items = strings.Split(val, ",")
	case []string:
		items = val
	case []any:
		for _, item := range val {
			items = append(items, fmt.Sprint(item))
		}
	default:
		items = []string{fmt.Sprint(val)}
	}

	var out []string
	for _, s := range items {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// viper lower-cases map keys read from config files, so tags are folded here
// for every source and matched case-insensitively.
func cleanContainers(raw map[string]string) map[string]string {
	out := make(map[string]string, len(raw))
	for tag, container := range raw {
		tag = strings.ToLower(strings.TrimSpace(tag))
		container = strings.TrimSpace(container)
		if tag == "" || container == "" {
			continue
		}
		out[tag] = container
	}
	return out
}
