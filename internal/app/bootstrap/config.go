// Package bootstrap loads configuration, connects backing services,
// and assembles the HTTP handler.
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full application configuration. Values come from an
// optional YAML config file, overridable by DRIVEYARD_* environment
// variables (dots become underscores: DRIVEYARD_MONGO_URI).
type Config struct {
	Env      string `mapstructure:"env"`  // dev or prod
	HTTPAddr string `mapstructure:"http_addr"`

	Mongo struct {
		URI         string `mapstructure:"uri"`
		Database    string `mapstructure:"database"`
		MaxPoolSize uint64 `mapstructure:"max_pool_size"`
		MinPoolSize uint64 `mapstructure:"min_pool_size"`
	} `mapstructure:"mongo"`

	Minio struct {
		Endpoint  string `mapstructure:"endpoint"`
		AccessKey string `mapstructure:"access_key"`
		SecretKey string `mapstructure:"secret_key"`
		Bucket    string `mapstructure:"bucket"`
		UseSSL    bool   `mapstructure:"use_ssl"`
	} `mapstructure:"minio"`

	Session struct {
		Key    string        `mapstructure:"key"`
		Name   string        `mapstructure:"name"`
		Domain string        `mapstructure:"domain"`
		MaxAge time.Duration `mapstructure:"max_age"`
	} `mapstructure:"session"`

	Upload struct {
		MaxFiles      int           `mapstructure:"max_files"`
		MaxFileSize   int64         `mapstructure:"max_file_size"`
		RetryAttempts int           `mapstructure:"retry_attempts"`
		RetryDelay    time.Duration `mapstructure:"retry_delay"`
	} `mapstructure:"upload"`

	Storage struct {
		DefaultQuota  int64         `mapstructure:"default_quota"`
		PresignExpiry time.Duration `mapstructure:"presign_expiry"`
	} `mapstructure:"storage"`

	FolderDeletePolicy string `mapstructure:"folder_delete_policy"` // reject, cascade, orphan

	CORSOrigins []string `mapstructure:"cors_origins"`

	Seed struct {
		Email    string `mapstructure:"email"`
		Name     string `mapstructure:"name"`
		Password string `mapstructure:"password"`
	} `mapstructure:"seed"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("http_addr", ":8080")

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "driveyard")
	v.SetDefault("mongo.max_pool_size", 100)
	v.SetDefault("mongo.min_pool_size", 0)

	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.access_key", "minioadmin")
	v.SetDefault("minio.secret_key", "minioadmin")
	v.SetDefault("minio.bucket", "driveyard")
	v.SetDefault("minio.use_ssl", false)

	v.SetDefault("session.key", "dev-only-session-key-change-in-prod")
	v.SetDefault("session.name", "driveyard-session")
	v.SetDefault("session.domain", "")
	v.SetDefault("session.max_age", 24*time.Hour)

	v.SetDefault("upload.max_files", 10)
	v.SetDefault("upload.max_file_size", int64(100<<20)) // 100 MiB
	v.SetDefault("upload.retry_attempts", 3)
	v.SetDefault("upload.retry_delay", time.Second)

	v.SetDefault("storage.default_quota", int64(5<<30)) // 5 GiB
	v.SetDefault("storage.presign_expiry", 15*time.Minute)

	v.SetDefault("folder_delete_policy", "reject")
	v.SetDefault("cors_origins", []string{})
}

// LoadConfig reads configuration from the given file (optional) and the
// environment.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("DRIVEYARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}
