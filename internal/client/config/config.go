package config

import (
	"fmt"
	"time"
)

const (
	StorageSQLite = "sqlite"
	StorageBadger = "badger"
	StorageMemory = "memory"

	ProfilesFirestore = "firestore"
	ProfilesPostgres  = "postgres"

	LogSlog = "slog"
	LogZap  = "zap"
)

// Firebase holds the web SDK settings of the remote project. The env names
// are the ones the mobile build is configured with.
type Firebase struct {
	APIKey            string `json:"api_key" env:"EXPO_PUBLIC_FIREBASE_API_KEY"`
	AuthDomain        string `json:"auth_domain" env:"EXPO_PUBLIC_FIREBASE_AUTH_DOMAIN"`
	ProjectID         string `json:"project_id" env:"EXPO_PUBLIC_FIREBASE_PROJECT_ID"`
	StorageBucket     string `json:"storage_bucket" env:"EXPO_PUBLIC_FIREBASE_STORAGE_BUCKET"`
	MessagingSenderID string `json:"messaging_sender_id" env:"EXPO_PUBLIC_FIREBASE_MESSAGING_SENDER_ID"`
	AppID             string `json:"app_id" env:"EXPO_PUBLIC_FIREBASE_APP_ID"`

	// Endpoint overrides, for emulators.
	IdentityEndpoint  string `json:"identity_endpoint" env:"EDEN_IDENTITY_ENDPOINT"`
	FirestoreEndpoint string `json:"firestore_endpoint" env:"EDEN_FIRESTORE_ENDPOINT"`
}

// S3 configures avatar uploads. An empty Bucket disables them.
type S3 struct {
	Region        string `json:"region" env:"EDEN_S3_REGION"`
	Endpoint      string `json:"endpoint" env:"EDEN_S3_ENDPOINT"`
	AccessKey     string `json:"access_key" env:"EDEN_S3_ACCESS_KEY"`
	SecretKey     string `json:"secret_key" env:"EDEN_S3_SECRET_KEY"`
	Bucket        string `json:"bucket" env:"EDEN_S3_BUCKET"`
	PublicBaseURL string `json:"public_base_url" env:"EDEN_S3_PUBLIC_BASE_URL"`
}

// Config holds runtime settings for the Eden CLI.
type Config struct {
	// DBPath is the SQLite file or Badger directory of the device store.
	DBPath        string `json:"db_path" env:"EDEN_DB_PATH"`
	StorageDriver string `json:"storage_driver" env:"EDEN_STORAGE_DRIVER"`
	ProfileDriver string `json:"profile_driver" env:"EDEN_PROFILE_DRIVER"`
	PostgresDSN   string `json:"postgres_dsn" env:"EDEN_POSTGRES_DSN"`

	// RemoteTimeout bounds every call to a remote service.
	RemoteTimeout time.Duration `json:"-" env:"EDEN_REMOTE_TIMEOUT"`
	// Offline skips the remote services even when they are configured.
	Offline bool `json:"offline" env:"EDEN_OFFLINE"`

	LogBackend string `json:"log_backend" env:"EDEN_LOG_BACKEND"`
	LogFormat  string `json:"log_format" env:"EDEN_LOG_FORMAT"`
	LogLevel   string `json:"log_level" env:"EDEN_LOG_LEVEL"`

	MetricsAddr string `json:"metrics_addr" env:"EDEN_METRICS_ADDR"`

	Firebase Firebase `json:"firebase"`
	S3       S3       `json:"s3"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DBPath = "eden.db"
	c.StorageDriver = StorageSQLite
	c.ProfileDriver = ProfilesFirestore
	c.RemoteTimeout = 10 * time.Second
	c.LogBackend = LogSlog
	c.LogFormat = "text"
	c.LogLevel = "info"
	c.S3.Region = "us-east-1"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if -c/-config is given), the environment and command-line flags.
// Later sources take precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageSQLite, StorageBadger, StorageMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
	switch c.ProfileDriver {
	case ProfilesFirestore:
	case ProfilesPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("profile driver %q requires a postgres dsn", c.ProfileDriver)
		}
	default:
		return fmt.Errorf("unknown profile driver %q", c.ProfileDriver)
	}
	switch c.LogBackend {
	case LogSlog, LogZap:
	default:
		return fmt.Errorf("unknown log backend %q", c.LogBackend)
	}
	if c.RemoteTimeout < 0 {
		return fmt.Errorf("remote timeout must not be negative")
	}
	return nil
}

// MissingFirebaseKeys lists the env names of the Firebase settings that are
// not set, in declaration order.
func (c *Config) MissingFirebaseKeys() []string {
	keys := []struct {
		env   string
		value string
	}{
		{"EXPO_PUBLIC_FIREBASE_API_KEY", c.Firebase.APIKey},
		{"EXPO_PUBLIC_FIREBASE_AUTH_DOMAIN", c.Firebase.AuthDomain},
		{"EXPO_PUBLIC_FIREBASE_PROJECT_ID", c.Firebase.ProjectID},
		{"EXPO_PUBLIC_FIREBASE_STORAGE_BUCKET", c.Firebase.StorageBucket},
		{"EXPO_PUBLIC_FIREBASE_MESSAGING_SENDER_ID", c.Firebase.MessagingSenderID},
		{"EXPO_PUBLIC_FIREBASE_APP_ID", c.Firebase.AppID},
	}

	var missing []string
	for _, k := range keys {
		if k.value == "" {
			missing = append(missing, k.env)
		}
	}
	return missing
}

// RemoteConfigured reports whether the remote services should be used.
func (c *Config) RemoteConfigured() bool {
	return !c.Offline && len(c.MissingFirebaseKeys()) == 0
}
