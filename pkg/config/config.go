package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	API     APIConfig
	Auth    AuthConfig
	Token   TokenConfig
	Redis   RedisConfig
	Console ConsoleConfig
	Log     LogConfig
	Mock    MockConfig
	JWT     JWTConfig `mapstructure:"jwt"`
	CORS    CORSConfig
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// AuthConfig holds the fixed bootstrap credentials used by auto-login.
type AuthConfig struct {
	Email    string
	Password string
}

type TokenConfig struct {
	Store    string // memory, file, redis
	Key      string
	FilePath string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Prefix   string
}

// ConsoleConfig controls the role console behaviour.
type ConsoleConfig struct {
	DeleteModalPolicy  string // keep-open or optimistic
	LegacyNameBaseline bool
	RefreshCron        string
}

type LogConfig struct {
	Level      string
	FilePath   string
	MaxSize    int  // MB
	MaxBackups int
	MaxAge     int  // days
	Compress   bool
	Format     string // json or text
}

// MockConfig configures the development stub backend.
type MockConfig struct {
	Port          string
	Mode          string
	AdminEmail    string
	AdminPassword string
}

type JWTConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	TokenDuration string `mapstructure:"token_duration"`
}

type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           int // hours
}

var (
	globalConfig *Config
	once         sync.Once
)

func GetConfig() *Config {
	once.Do(func() {
		var err error
		globalConfig, err = LoadConfig()
		if err != nil {
			panic("Failed to load config: " + err.Error())
		}
	})
	return globalConfig
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true"
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// comma separated, blanks dropped
func getEnvAsStringArray(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return defaultValue
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), "sikseb", "auth_token")
	}
	return filepath.Join(home, ".sikseb", "auth_token")
}

func LoadConfig() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	config := &Config{
		API: APIConfig{
			BaseURL: strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8000"), "/"),
			Timeout: getEnvAsDuration("API_TIMEOUT", 30*time.Second),
		},
		Auth: AuthConfig{
			Email:    getEnv("AUTO_LOGIN_EMAIL", "admin@example.com"),
			Password: getEnv("AUTO_LOGIN_PASSWORD", "password"),
		},
		Token: TokenConfig{
			Store:    getEnv("TOKEN_STORE", "file"),
			Key:      getEnv("TOKEN_KEY", "auth_token"),
			FilePath: getEnv("TOKEN_FILE", defaultTokenFile()),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Prefix:   getEnv("REDIS_PREFIX", "sikseb"),
		},
		Console: ConsoleConfig{
			DeleteModalPolicy:  getEnv("DELETE_MODAL_POLICY", "keep-open"),
			LegacyNameBaseline: getEnvAsBool("LEGACY_NAME_BASELINE", false),
			RefreshCron:        getEnv("REFRESH_CRON", ""),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			FilePath:   getEnv("LOG_FILE_PATH", ""),
			MaxSize:    getEnvAsInt("LOG_MAX_SIZE", 100),
			MaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 7),
			MaxAge:     getEnvAsInt("LOG_MAX_AGE", 30),
			Compress:   getEnvAsBool("LOG_COMPRESS", true),
			Format:     getEnv("LOG_FORMAT", "text"),
		},
		Mock: MockConfig{
			Port:          getEnv("MOCK_PORT", "8000"),
			Mode:          getEnv("MOCK_MODE", "debug"),
			AdminEmail:    getEnv("MOCK_ADMIN_EMAIL", "admin@example.com"),
			AdminPassword: getEnv("MOCK_ADMIN_PASSWORD", "password"),
		},
		JWT: JWTConfig{
			SecretKey:     getEnv("JWT_SECRET_KEY", "default-secret-change-me"),
			TokenDuration: getEnv("JWT_TOKEN_DURATION", "24h"),
		},
		CORS: CORSConfig{
			AllowOrigins:     getEnvAsStringArray("CORS_ALLOW_ORIGINS", []string{"http://localhost:3000"}),
			AllowMethods:     getEnvAsStringArray("CORS_ALLOW_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"}),
			AllowHeaders:     getEnvAsStringArray("CORS_ALLOW_HEADERS", []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With", "X-Request-Id"}),
			ExposeHeaders:    getEnvAsStringArray("CORS_EXPOSE_HEADERS", []string{"Content-Length", "Content-Type"}),
			AllowCredentials: getEnvAsBool("CORS_ALLOW_CREDENTIALS", true),
			MaxAge:           getEnvAsInt("CORS_MAX_AGE", 12),
		},
	}

	return config, nil
}
