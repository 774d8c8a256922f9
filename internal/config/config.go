package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

type Config struct {
	Env       string
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Sources   SourcesConfig
	Scheduler SchedulerConfig
	AI        AIConfig
	Admin     AdminConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	RateLimitPerMinute int
	RateLimitBurst     int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// AuthConfig описывает проверку токенов, выпущенных внешним слоем авторизации.
type AuthConfig struct {
	JWTSecret      string
	JWTIssuer      string
	AccessTokenTTL time.Duration
}

type SourcesConfig struct {
	Timeout            time.Duration
	EIAAPIKey          string
	EIABaseURL         string
	EIAGasSeries       string
	BLSAPIKey          string
	BLSBaseURL         string
	BLSCPISeries       string
	FREDAPIKey         string
	FREDBaseURL        string
	InterestRateSeries string
	UnemploymentSeries string
}

type SchedulerConfig struct {
	Enabled    bool
	Cron       string
	RunTimeout time.Duration
}

type AIConfig struct {
	Provider        string
	APIKey          string
	BaseURL         string
	Model           string
	Timeout         time.Duration
	MaxOutputTokens int
}

type AdminConfig struct {
	Emails []string
}

type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Enabled сообщает, настроен ли AI-провайдер.
func (c AIConfig) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// Load загружает конфигурацию приложения из окружения и .env.
func Load() (Config, error) {
	cfg := Config{}

	if err := loadEnv(); err != nil {
		return cfg, err
	}

	cfg.Env = getEnv("APP_ENV", "local")

	var err error
	if cfg.Server, err = loadServer(); err != nil {
		return cfg, err
	}
	if cfg.Database, err = loadDatabase(); err != nil {
		return cfg, err
	}
	if cfg.Auth, err = loadAuth(); err != nil {
		return cfg, err
	}
	if cfg.Sources, err = loadSources(); err != nil {
		return cfg, err
	}
	if cfg.Scheduler, err = loadScheduler(); err != nil {
		return cfg, err
	}
	if cfg.AI, err = loadAI(); err != nil {
		return cfg, err
	}
	if cfg.Log, err = loadLog(); err != nil {
		return cfg, err
	}

	cfg.Admin = AdminConfig{
		Emails: parseCSVEnv("ADMIN_EMAILS"),
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func loadServer() (ServerConfig, error) {
	port, err := parseIntEnv("SERVER_PORT", 8080)
	if err != nil {
		return ServerConfig{}, err
	}

	readTimeout, err := parseDurationEnv("SERVER_READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return ServerConfig{}, err
	}

	writeTimeout, err := parseDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return ServerConfig{}, err
	}

	idleTimeout, err := parseDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return ServerConfig{}, err
	}

	rateLimitPerMinute, err := parseIntEnv("API_RATE_LIMIT_PER_MINUTE", 120)
	if err != nil {
		return ServerConfig{}, err
	}

	rateLimitBurst, err := parseIntEnv("API_RATE_LIMIT_BURST", 20)
	if err != nil {
		return ServerConfig{}, err
	}

	return ServerConfig{
		Host:               getEnv("SERVER_HOST", "0.0.0.0"),
		Port:               port,
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		IdleTimeout:        idleTimeout,
		RateLimitPerMinute: rateLimitPerMinute,
		RateLimitBurst:     rateLimitBurst,
	}, nil
}

func loadDatabase() (DatabaseConfig, error) {
	port, err := parseIntEnv("DB_PORT", 5432)
	if err != nil {
		return DatabaseConfig{}, err
	}

	maxOpenConns, err := parseIntEnv("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return DatabaseConfig{}, err
	}

	maxIdleConns, err := parseIntEnv("DB_MAX_IDLE_CONNS", 5)
	if err != nil {
		return DatabaseConfig{}, err
	}

	connMaxIdleTime, err := parseDurationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute)
	if err != nil {
		return DatabaseConfig{}, err
	}

	connMaxLifetime, err := parseDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	if err != nil {
		return DatabaseConfig{}, err
	}

	autoMigrate, err := parseBoolEnv("DB_AUTO_MIGRATE", true)
	if err != nil {
		return DatabaseConfig{}, err
	}

	return DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            port,
		User:            getEnv("DB_USER", "signal"),
		Password:        getEnv("DB_PASSWORD", "signal"),
		Name:            getEnv("DB_NAME", "cost_signal"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    maxOpenConns,
		MaxIdleConns:    maxIdleConns,
		ConnMaxIdleTime: connMaxIdleTime,
		ConnMaxLifetime: connMaxLifetime,
		AutoMigrate:     autoMigrate,
	}, nil
}

func loadAuth() (AuthConfig, error) {
	accessTTL, err := parseDurationEnv("JWT_ACCESS_TTL", 15*time.Minute)
	if err != nil {
		return AuthConfig{}, err
	}

	return AuthConfig{
		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTIssuer:      getEnv("JWT_ISSUER", "cost-signal"),
		AccessTokenTTL: accessTTL,
	}, nil
}

func loadSources() (SourcesConfig, error) {
	timeout, err := parseDurationEnv("SOURCES_TIMEOUT", 15*time.Second)
	if err != nil {
		return SourcesConfig{}, err
	}

	return SourcesConfig{
		Timeout:            timeout,
		EIAAPIKey:          getEnv("EIA_API_KEY", ""),
		EIABaseURL:         strings.TrimRight(getEnv("EIA_BASE_URL", "https://api.eia.gov/v2"), "/"),
		EIAGasSeries:       getEnv("EIA_GAS_SERIES", "EMM_EPMR_PTE_NUS_DPG"),
		BLSAPIKey:          getEnv("BLS_API_KEY", ""),
		BLSBaseURL:         strings.TrimRight(getEnv("BLS_BASE_URL", "https://api.bls.gov/publicAPI/v2"), "/"),
		BLSCPISeries:       getEnv("BLS_CPI_SERIES", "CUUR0000SA0"),
		FREDAPIKey:         getEnv("FRED_API_KEY", ""),
		FREDBaseURL:        strings.TrimRight(getEnv("FRED_BASE_URL", "https://api.stlouisfed.org/fred"), "/"),
		InterestRateSeries: getEnv("FRED_INTEREST_RATE_SERIES", "FEDFUNDS"),
		UnemploymentSeries: getEnv("FRED_UNEMPLOYMENT_SERIES", "UNRATE"),
	}, nil
}

func loadScheduler() (SchedulerConfig, error) {
	enabled, err := parseBoolEnv("SCHEDULER_ENABLED", true)
	if err != nil {
		return SchedulerConfig{}, err
	}

	runTimeout, err := parseDurationEnv("SIGNAL_RUN_TIMEOUT", 2*time.Minute)
	if err != nil {
		return SchedulerConfig{}, err
	}

	return SchedulerConfig{
		Enabled:    enabled,
		Cron:       getEnv("SIGNAL_CRON", "0 14 * * 1"),
		RunTimeout: runTimeout,
	}, nil
}

func loadAI() (AIConfig, error) {
	timeout, err := parseDurationEnv("AI_TIMEOUT", 20*time.Second)
	if err != nil {
		return AIConfig{}, err
	}

	maxOutputTokens, err := parseIntEnv("AI_MAX_OUTPUT_TOKENS", 512)
	if err != nil {
		return AIConfig{}, err
	}

	provider := strings.ToLower(getEnv("AI_PROVIDER", "gemini"))
	defaultBaseURL := "https://api.groq.com/openai/v1"
	defaultModel := "llama-3.1-8b-instant"
	if provider == "gemini" {
		defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
		defaultModel = "gemini-1.5-flash"
	}

	apiKey := getEnv("AI_API_KEY", "")
	if apiKey == "" && provider == "gemini" {
		apiKey = getEnv("GEMINI_API_KEY", "")
	}

	return AIConfig{
		Provider:        provider,
		APIKey:          apiKey,
		BaseURL:         getEnv("AI_BASE_URL", defaultBaseURL),
		Model:           getEnv("AI_MODEL", defaultModel),
		Timeout:         timeout,
		MaxOutputTokens: maxOutputTokens,
	}, nil
}

func loadLog() (LogConfig, error) {
	maxSize, err := parseIntEnv("LOG_MAX_SIZE_MB", 50)
	if err != nil {
		return LogConfig{}, err
	}

	maxBackups, err := parseIntEnv("LOG_MAX_BACKUPS", 5)
	if err != nil {
		return LogConfig{}, err
	}

	maxAge, err := parseIntEnv("LOG_MAX_AGE_DAYS", 14)
	if err != nil {
		return LogConfig{}, err
	}

	return LogConfig{
		Level:      strings.ToLower(getEnv("LOG_LEVEL", "info")),
		File:       getEnv("LOG_FILE", ""),
		MaxSizeMB:  maxSize,
		MaxBackups: maxBackups,
		MaxAgeDays: maxAge,
	}, nil
}

// DSN возвращает строку подключения к базе данных.
func (c DatabaseConfig) DSN() string {
	user := url.UserPassword(c.User, c.Password)
	dsn := url.URL{
		Scheme: "postgres",
		User:   user,
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}

	query := url.Values{}
	query.Set("sslmode", c.SSLMode)
	return dsn.String() + "?" + query.Encode()
}

func (c Config) validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("SERVER_PORT must be greater than 0")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}

	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}

	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}

	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("DB_MAX_IDLE_CONNS cannot exceed DB_MAX_OPEN_CONNS")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Auth.AccessTokenTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be greater than 0")
	}

	if _, err := cron.ParseStandard(c.Scheduler.Cron); err != nil {
		return fmt.Errorf("SIGNAL_CRON is invalid: %w", err)
	}

	switch c.AI.Provider {
	case "gemini", "groq":
	default:
		return fmt.Errorf("AI_PROVIDER must be gemini or groq")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func parseIntEnv(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func parseBoolEnv(key string, fallback bool) (bool, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}

	return parsed, nil
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func parseCSVEnv(key string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(part))
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

func loadEnv() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}

	return nil
}
