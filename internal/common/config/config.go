// internal/common/config/config.go
package config

import "time"

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Lark       LarkConfig       `mapstructure:"lark"`
	Bitable    BitableConfig    `mapstructure:"bitable"`
	TokenCache TokenCacheConfig `mapstructure:"token_cache"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig holds the inbound HTTP settings.
type ServerConfig struct {
	Address         string `mapstructure:"address"`
	AllowOrigin     string `mapstructure:"allow_origin"`
	ReadTimeout     int    `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"` // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64  `mapstructure:"max_body_bytes"`
}

// LarkConfig holds the open platform credentials and endpoints.
type LarkConfig struct {
	AppID            string `mapstructure:"app_id"`
	AppSecret        string `mapstructure:"app_secret"`
	BaseURL          string `mapstructure:"base_url"`
	DriveBaseURL     string `mapstructure:"drive_base_url"`
	UploadParentType string `mapstructure:"upload_parent_type"`
	UploadParentNode string `mapstructure:"upload_parent_node"`
	Timeout          int    `mapstructure:"timeout"`            // milliseconds
	TokenRefreshSkew int    `mapstructure:"token_refresh_skew"` // seconds
}

// BitableConfig names the destination database and its three tables.
type BitableConfig struct {
	AppToken            string `mapstructure:"app_token"`
	ApplicationsTableID string `mapstructure:"applications_table_id"`
	VisionaryTableID    string `mapstructure:"visionary_table_id"`
	MentorTableID       string `mapstructure:"mentor_table_id"`
}

// TokenCacheConfig selects where the tenant token is kept.
type TokenCacheConfig struct {
	Backend  string `mapstructure:"backend"` // memory | redis
	RedisKey string `mapstructure:"redis_key"`
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

const (
	TokenBackendMemory = "memory"
	TokenBackendRedis  = "redis"
)

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
