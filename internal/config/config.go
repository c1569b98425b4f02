// Package config reads orgwidget settings from the environment.
//
// Load returns the storefront service settings and LoadWidget the settings
// used by the widget and the CLI. Both accept values from an optional .env
// file loaded with LoadDotEnv; real environment variables take precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the storefront service settings.
type Config struct {
	DatabaseURL string // ORGWIDGET_DATABASE_URL (required)
	GRPCAddr    string // ORGWIDGET_GRPC_ADDR (default ":9090")
	HTTPAddr    string // ORGWIDGET_HTTP_ADDR (default ":8080")
	NATSURL     string // ORGWIDGET_NATS_URL (optional, empty = no events)
	AuthToken   string // ORGWIDGET_AUTH_TOKEN (optional, empty = auth disabled)

	// Widget fragment settings
	Namespace     string // ORGWIDGET_NAMESPACE (default "b2b-organizations")
	RootPath      string // ORGWIDGET_ROOT_PATH (default "")
	SecureCookies bool   // ORGWIDGET_SECURE_COOKIES (default false)

	SessionIdleTimeout time.Duration // ORGWIDGET_SESSION_IDLE_TIMEOUT (default 30m; 0 = no reaper)

	// Sync settings
	SyncInterval   time.Duration // ORGWIDGET_SYNC_INTERVAL (default 3m; 0 = disabled)
	SyncS3Bucket   string        // ORGWIDGET_SYNC_S3_BUCKET (enables S3 when set)
	SyncS3Endpoint string        // ORGWIDGET_SYNC_S3_ENDPOINT (custom endpoint for MinIO)
	SyncS3Region   string        // ORGWIDGET_SYNC_S3_REGION (default "us-east-1")
	SyncS3Key      string        // ORGWIDGET_SYNC_S3_KEY (default "orgwidget/directory.jsonl")
	SyncGitRepo    string        // ORGWIDGET_SYNC_GIT_REPO (enables git when set; path to clone)
	SyncGitFile    string        // ORGWIDGET_SYNC_GIT_FILE (default "orgwidget.jsonl")
	SyncGitBranch  string        // ORGWIDGET_SYNC_GIT_BRANCH (default "main")
}

// Load reads the service configuration.
func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:    os.Getenv("ORGWIDGET_DATABASE_URL"),
		GRPCAddr:       envOrDefault("ORGWIDGET_GRPC_ADDR", ":9090"),
		HTTPAddr:       envOrDefault("ORGWIDGET_HTTP_ADDR", ":8080"),
		NATSURL:        os.Getenv("ORGWIDGET_NATS_URL"),
		AuthToken:      os.Getenv("ORGWIDGET_AUTH_TOKEN"),
		Namespace:      envOrDefault("ORGWIDGET_NAMESPACE", DefaultNamespace),
		RootPath:       os.Getenv("ORGWIDGET_ROOT_PATH"),
		SecureCookies:  envBool("ORGWIDGET_SECURE_COOKIES"),
		SyncS3Bucket:   os.Getenv("ORGWIDGET_SYNC_S3_BUCKET"),
		SyncS3Endpoint: os.Getenv("ORGWIDGET_SYNC_S3_ENDPOINT"),
		SyncS3Region:   envOrDefault("ORGWIDGET_SYNC_S3_REGION", "us-east-1"),
		SyncS3Key:      envOrDefault("ORGWIDGET_SYNC_S3_KEY", "orgwidget/directory.jsonl"),
		SyncGitRepo:    os.Getenv("ORGWIDGET_SYNC_GIT_REPO"),
		SyncGitFile:    envOrDefault("ORGWIDGET_SYNC_GIT_FILE", "orgwidget.jsonl"),
		SyncGitBranch:  envOrDefault("ORGWIDGET_SYNC_GIT_BRANCH", "main"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("ORGWIDGET_DATABASE_URL is required")
	}

	var err error
	if c.SyncInterval, err = envDuration("ORGWIDGET_SYNC_INTERVAL", 3*time.Minute); err != nil {
		return nil, err
	}
	if c.SessionIdleTimeout, err = envDuration("ORGWIDGET_SESSION_IDLE_TIMEOUT", 30*time.Minute); err != nil {
		return nil, err
	}
	return c, nil
}

// SyncEnabled reports whether a sync destination and a positive interval are configured.
func (c *Config) SyncEnabled() bool {
	return c.SyncInterval > 0 && (c.SyncS3Bucket != "" || c.SyncGitRepo != "")
}

// DefaultNamespace is the storage namespace of the auth flag.
const DefaultNamespace = "b2b-organizations"

// Transports accepted by LoadWidget.
const (
	TransportHTTP = "http"
	TransportGRPC = "grpc"
)

// Flag stores accepted by LoadWidget.
const (
	FlagStoreFile   = "file"
	FlagStoreRedis  = "redis"
	FlagStoreMemory = "memory"
)

// Widget holds the settings of the widget and the CLI client commands.
type Widget struct {
	HTTPURL   string // ORGWIDGET_HTTP_URL (default "http://localhost:8080")
	Server    string // ORGWIDGET_SERVER gRPC address (default "localhost:9090")
	Transport string // ORGWIDGET_TRANSPORT http|grpc (default "http")
	Token     string // ORGWIDGET_TOKEN (optional bearer token)
	SessionID string // ORGWIDGET_SESSION_ID (optional; a new session is created when empty)
	Namespace string // ORGWIDGET_NAMESPACE (default "b2b-organizations")
	RootPath  string // ORGWIDGET_ROOT_PATH (default "")
	Locale    string // ORGWIDGET_LOCALE (default from LANG, else "en")

	FlagStore string // ORGWIDGET_FLAG_STORE file|redis|memory (default "file")
	FlagFile  string // ORGWIDGET_FLAG_FILE (default under the user config dir)
	RedisURL  string // ORGWIDGET_REDIS_URL (required when FlagStore is redis)
	NATSURL   string // ORGWIDGET_NATS_URL (optional; enables push updates in watch)
}

// LoadWidget reads the widget configuration.
func LoadWidget() (*Widget, error) {
	w := &Widget{
		HTTPURL:   envOrDefault("ORGWIDGET_HTTP_URL", "http://localhost:8080"),
		Server:    envOrDefault("ORGWIDGET_SERVER", "localhost:9090"),
		Transport: strings.ToLower(envOrDefault("ORGWIDGET_TRANSPORT", TransportHTTP)),
		Token:     os.Getenv("ORGWIDGET_TOKEN"),
		SessionID: os.Getenv("ORGWIDGET_SESSION_ID"),
		Namespace: envOrDefault("ORGWIDGET_NAMESPACE", DefaultNamespace),
		RootPath:  os.Getenv("ORGWIDGET_ROOT_PATH"),
		Locale:    envOrDefault("ORGWIDGET_LOCALE", localeFromLang(os.Getenv("LANG"))),
		FlagStore: strings.ToLower(envOrDefault("ORGWIDGET_FLAG_STORE", FlagStoreFile)),
		FlagFile:  os.Getenv("ORGWIDGET_FLAG_FILE"),
		RedisURL:  os.Getenv("ORGWIDGET_REDIS_URL"),
		NATSURL:   os.Getenv("ORGWIDGET_NATS_URL"),
	}

	switch w.Transport {
	case TransportHTTP, TransportGRPC:
	default:
		return nil, fmt.Errorf("ORGWIDGET_TRANSPORT: unknown transport %q (want http or grpc)", w.Transport)
	}
	switch w.FlagStore {
	case FlagStoreFile, FlagStoreMemory:
	case FlagStoreRedis:
		if w.RedisURL == "" {
			return nil, fmt.Errorf("ORGWIDGET_REDIS_URL is required when ORGWIDGET_FLAG_STORE=redis")
		}
	default:
		return nil, fmt.Errorf("ORGWIDGET_FLAG_STORE: unknown store %q (want file, redis or memory)", w.FlagStore)
	}
	return w, nil
}

// LoadDotEnv loads variables from path into the environment without
// overriding ones already set. An empty path or a missing file is not an
// error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// localeFromLang turns a POSIX LANG value such as "es_AR.UTF-8" into a
// BCP 47 tag ("es-AR").
func localeFromLang(lang string) string {
	lang, _, _ = strings.Cut(lang, ".")
	lang, _, _ = strings.Cut(lang, "@")
	if lang == "" || lang == "C" || lang == "POSIX" {
		return "en"
	}
	return strings.ReplaceAll(lang, "_", "-")
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func envBool(key string) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
