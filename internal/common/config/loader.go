// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envAliases are the flat variable names used by existing deployments.
var envAliases = map[string]string{
	"server.allow_origin":           "ALLOW_ORIGIN",
	"bitable.applications_table_id": "APPLICATIONS_TABLE_ID",
	"bitable.visionary_table_id":    "VISIONARY_TABLE_ID",
	"bitable.mentor_table_id":       "MENTOR_TABLE_ID",
	"token_cache.backend":           "TOKEN_CACHE_BACKEND",
	"database.redis.address":        "REDIS_ADDRESS",
	"database.redis.password":       "REDIS_PASSWORD",
}

// Load reads configs/config.yaml (optional), config.<env>.yaml (optional),
// .env and the process environment, in increasing priority.
func Load() (*Config, error) {
	return load(validateConfig)
}

// LoadCredentials loads the same sources but only requires the app
// credentials and database token. Operator tools use it.
func LoadCredentials() (*Config, error) {
	return load(validateCredentials)
}

func load(validate func(*Config) error) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return finish(v, validate)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v, validateConfig)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setKeys(v)
	return v
}

// setKeys registers every key so AutomaticEnv applies during Unmarshal.
func setKeys(v *viper.Viper) {
	v.SetDefault("app.name", "bitable-intake")
	v.SetDefault("app.version", "")
	v.SetDefault("app.environment", "development")

	v.SetDefault("server.address", ":8787")
	v.SetDefault("server.allow_origin", "")
	v.SetDefault("server.read_timeout", 0)
	v.SetDefault("server.write_timeout", 0)
	v.SetDefault("server.shutdown_timeout", 0)
	v.SetDefault("server.max_body_bytes", 0)

	for _, key := range []string{
		"lark.app_id", "lark.app_secret", "lark.base_url", "lark.drive_base_url",
		"lark.upload_parent_type", "lark.upload_parent_node",
		"bitable.app_token", "bitable.applications_table_id",
		"bitable.visionary_table_id", "bitable.mentor_table_id",
		"token_cache.backend", "token_cache.redis_key",
		"database.redis.address", "database.redis.password",
		"logging.level", "logging.format", "logging.output",
	} {
		v.SetDefault(key, "")
	}
	v.SetDefault("lark.timeout", 0)
	v.SetDefault("lark.token_refresh_skew", 0)
	v.SetDefault("database.redis.db", 0)
	v.SetDefault("database.redis.pool_size", 0)
}

func finish(v *viper.Viper, validate func(*Config) error) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideEmptyConfig(&cfg)
	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads the first .env found walking up towards the module root.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills fields still empty from their flat env aliases.
func overrideEmptyConfig(cfg *Config) {
	targets := map[string]*string{
		"server.allow_origin":           &cfg.Server.AllowOrigin,
		"bitable.applications_table_id": &cfg.Bitable.ApplicationsTableID,
		"bitable.visionary_table_id":    &cfg.Bitable.VisionaryTableID,
		"bitable.mentor_table_id":       &cfg.Bitable.MentorTableID,
		"token_cache.backend":           &cfg.TokenCache.Backend,
		"database.redis.address":        &cfg.Database.Redis.Address,
		"database.redis.password":       &cfg.Database.Redis.Password,
	}
	for key, envName := range envAliases {
		field := targets[key]
		if field == nil || *field != "" {
			continue
		}
		if val := os.Getenv(envName); val != "" {
			*field = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8787"
	}
	if cfg.Server.AllowOrigin == "" {
		cfg.Server.AllowOrigin = "*"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 90000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10000
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = 20 << 20
	}

	if cfg.Lark.BaseURL == "" {
		cfg.Lark.BaseURL = "https://open.larksuite.com"
	}
	cfg.Lark.BaseURL = strings.TrimSuffix(cfg.Lark.BaseURL, "/")
	if cfg.Lark.DriveBaseURL == "" {
		cfg.Lark.DriveBaseURL = cfg.Lark.BaseURL
	}
	cfg.Lark.DriveBaseURL = strings.TrimSuffix(cfg.Lark.DriveBaseURL, "/")
	if cfg.Lark.UploadParentType == "" {
		cfg.Lark.UploadParentType = "bitable"
	}
	if cfg.Lark.UploadParentNode == "" {
		cfg.Lark.UploadParentNode = cfg.Bitable.AppToken
	}
	if cfg.Lark.Timeout == 0 {
		cfg.Lark.Timeout = 30000
	}
	if cfg.Lark.TokenRefreshSkew == 0 {
		cfg.Lark.TokenRefreshSkew = 60
	}

	if cfg.TokenCache.Backend == "" {
		cfg.TokenCache.Backend = TokenBackendMemory
	}
	if cfg.TokenCache.RedisKey == "" {
		cfg.TokenCache.RedisKey = "bitable-intake:tenant_access_token"
	}
	if cfg.Database.Redis.PoolSize == 0 {
		cfg.Database.Redis.PoolSize = 10
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

type requiredField struct {
	key   string
	value string
}

func checkRequired(fields []requiredField) error {
	for _, r := range fields {
		if r.value == "" {
			return fmt.Errorf("%s is required", r.key)
		}
	}
	return nil
}

func validateCredentials(cfg *Config) error {
	return checkRequired([]requiredField{
		{"lark.app_id", cfg.Lark.AppID},
		{"lark.app_secret", cfg.Lark.AppSecret},
		{"bitable.app_token", cfg.Bitable.AppToken},
	})
}

// validateConfig validates critical configuration fields.
func validateConfig(cfg *Config) error {
	if err := validateCredentials(cfg); err != nil {
		return err
	}
	if err := checkRequired([]requiredField{
		{"bitable.applications_table_id", cfg.Bitable.ApplicationsTableID},
		{"bitable.visionary_table_id", cfg.Bitable.VisionaryTableID},
		{"bitable.mentor_table_id", cfg.Bitable.MentorTableID},
	}); err != nil {
		return err
	}

	switch cfg.TokenCache.Backend {
	case TokenBackendMemory:
	case TokenBackendRedis:
		if cfg.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.address is required when token_cache.backend is redis")
		}
	default:
		return fmt.Errorf("token_cache.backend must be %q or %q", TokenBackendMemory, TokenBackendRedis)
	}

	return nil
}
