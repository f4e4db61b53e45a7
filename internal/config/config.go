package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage providers accepted by STORAGE_PROVIDER.
const (
	StorageCloudinary = "cloudinary"
	StorageGCS        = "gcs"
)

// Priority providers accepted by PRIORITY_PROVIDER.
const (
	PriorityHTTP    = "http"
	PriorityFormula = "formula"
	PriorityOpenAI  = "openai"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	LogLevel               string
	DatabaseURL            string
	DBMaxOpenConns         int
	DBMaxIdleConns         int
	DBConnMaxLifetime      time.Duration
	RedisURL               string
	JWTSecret              string
	JWTTokenTTL            time.Duration
	StorageProvider        string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	GCSBucket              string
	GCSPrefix              string
	GCSCredentialsFile     string
	UploadMaxSizeMB        int
	LeaderboardCacheTTL    time.Duration
	PriorityProvider       string
	PriorityServiceURL     string
	PriorityTimeout        time.Duration
	OpenAIAPIKey           string
	OpenAIModel            string
	StrictStudentCode      bool
	AuthRateLimitMax       int
	AuthRateLimitWindow    time.Duration
	CORSAllowOrigins       string
}

// IsDevelopment reports whether the service runs with development defaults.
func (c Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SCHEDMATE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "SchedMate API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("cors.allow_origins", "*")
	v.SetDefault("jwt.ttl", "8760h")
	v.SetDefault("storage.provider", StorageCloudinary)
	v.SetDefault("cloudinary.folder", "schedmate/uploads")
	v.SetDefault("gcs.prefix", "uploads")
	v.SetDefault("upload.max_size_mb", 10)
	v.SetDefault("leaderboard.cache_ttl", "1m")
	v.SetDefault("priority.provider", PriorityHTTP)
	v.SetDefault("priority.timeout", "5s")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("enrollment.strict_student_code", false)
	v.SetDefault("auth.rate_limit_max", 10)
	v.SetDefault("auth.rate_limit_window", "1m")

	tokenTTL, err := parseDuration(v, "jwt.ttl")
	if err != nil {
		return Config{}, err
	}

	cacheTTL, err := parseDuration(v, "leaderboard.cache_ttl")
	if err != nil {
		return Config{}, err
	}

	priorityTimeout, err := parseDuration(v, "priority.timeout")
	if err != nil {
		return Config{}, err
	}

	rateWindow, err := parseDuration(v, "auth.rate_limit_window")
	if err != nil {
		return Config{}, err
	}

	connLifetime, err := parseDuration(v, "database.conn_max_lifetime")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		LogLevel:               strings.ToLower(v.GetString("log.level")),
		DatabaseURL:            v.GetString("database.url"),
		DBMaxOpenConns:         v.GetInt("database.max_open_conns"),
		DBMaxIdleConns:         v.GetInt("database.max_idle_conns"),
		DBConnMaxLifetime:      connLifetime,
		RedisURL:               v.GetString("redis.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		JWTTokenTTL:            tokenTTL,
		StorageProvider:        strings.ToLower(v.GetString("storage.provider")),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		GCSBucket:              v.GetString("gcs.bucket"),
		GCSPrefix:              v.GetString("gcs.prefix"),
		GCSCredentialsFile:     v.GetString("gcs.credentials_file"),
		UploadMaxSizeMB:        v.GetInt("upload.max_size_mb"),
		LeaderboardCacheTTL:    cacheTTL,
		PriorityProvider:       strings.ToLower(v.GetString("priority.provider")),
		PriorityServiceURL:     strings.TrimRight(v.GetString("priority.url"), "/"),
		PriorityTimeout:        priorityTimeout,
		OpenAIAPIKey:           v.GetString("openai_api_key"),
		OpenAIModel:            v.GetString("openai.model"),
		StrictStudentCode:      v.GetBool("enrollment.strict_student_code"),
		AuthRateLimitMax:       v.GetInt("auth.rate_limit_max"),
		AuthRateLimitWindow:    rateWindow,
		CORSAllowOrigins:       strings.TrimSpace(v.GetString("cors.allow_origins")),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	if cfg.UploadMaxSizeMB <= 0 {
		cfg.UploadMaxSizeMB = 10
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt secret must be provided")
	}

	switch c.StorageProvider {
	case StorageCloudinary:
	case StorageGCS:
		if c.GCSBucket == "" {
			return fmt.Errorf("gcs bucket must be provided for the gcs storage provider")
		}
	default:
		return fmt.Errorf("unsupported storage provider %q", c.StorageProvider)
	}

	switch c.PriorityProvider {
	case PriorityHTTP:
		if c.PriorityServiceURL == "" {
			return fmt.Errorf("priority service url must be provided for the http provider")
		}
	case PriorityFormula:
	case PriorityOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("openai api key must be provided for the openai provider")
		}
	default:
		return fmt.Errorf("unsupported priority provider %q", c.PriorityProvider)
	}

	return nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}
