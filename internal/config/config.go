package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Redis      RedisConfig
	Attendance AttendanceConfig
	Sync       SyncConfig
	Storage    StorageConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	// AutoMigrate applies the embedded schema on startup
	AutoMigrate bool
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// RedisConfig configures the sync dispatch queue. An empty Addr selects the in-memory queue.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	QueueKey string
}

// AttendanceConfig holds the batch and policy settings of the attendance engine
type AttendanceConfig struct {
	Timezone         string
	DailyRunHour     int
	MonthlyRunHour   int
	AutoCheckoutHour int
	SweepConcurrency int
	DriverLocations  []string
}

// SyncConfig holds the outbound sync settings
type SyncConfig struct {
	MaxRetries    int
	SweepInterval time.Duration
	SweepBatch    int
	SendTimeout   time.Duration
	PullTimeout   time.Duration
	// AlertUserID and AlertCompanyID address terminal sync failure notifications
	AlertUserID    string
	AlertCompanyID string
}

// StorageConfig selects where uploaded invoices are kept
type StorageConfig struct {
	Type     string
	BasePath string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file loaded, using process environment", "error", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "ess"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}
	config.Database.AutoMigrate, err = strconv.ParseBool(getEnv("DB_AUTO_MIGRATE", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_AUTO_MIGRATE: %w", err)
	}

	// Redis configuration
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	config.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
		QueueKey: getEnv("REDIS_SYNC_QUEUE_KEY", "ess:sync:queue"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}
	if len(config.App.AllowedOrigins) == 0 {
		config.App.AllowedOrigins = []string{"http://localhost:3000"}
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Attendance configuration
	dailyHour, err := getEnvInt("ATTENDANCE_DAILY_RUN_HOUR", 1)
	if err != nil {
		return nil, err
	}
	monthlyHour, err := getEnvInt("ATTENDANCE_MONTHLY_RUN_HOUR", 2)
	if err != nil {
		return nil, err
	}
	autoCheckoutHour, err := getEnvInt("ATTENDANCE_AUTO_CHECKOUT_HOUR", 21)
	if err != nil {
		return nil, err
	}
	concurrency, err := getEnvInt("ATTENDANCE_SWEEP_CONCURRENCY", 8)
	if err != nil {
		return nil, err
	}
	driverLocations := getEnvSlice("ATTENDANCE_DRIVER_LOCATIONS")
	if len(driverLocations) == 0 {
		driverLocations = []string{"Noida"}
	}

	config.Attendance = AttendanceConfig{
		Timezone:         getEnv("APP_TIMEZONE", "Asia/Kolkata"),
		DailyRunHour:     dailyHour,
		MonthlyRunHour:   monthlyHour,
		AutoCheckoutHour: autoCheckoutHour,
		SweepConcurrency: concurrency,
		DriverLocations:  driverLocations,
	}

	// Sync configuration
	maxRetries, err := getEnvInt("SYNC_MAX_RETRIES", 3)
	if err != nil {
		return nil, err
	}
	sweepBatch, err := getEnvInt("SYNC_SWEEP_BATCH", 100)
	if err != nil {
		return nil, err
	}
	sweepInterval, err := time.ParseDuration(getEnv("SYNC_SWEEP_INTERVAL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_SWEEP_INTERVAL: %w", err)
	}
	sendTimeout, err := time.ParseDuration(getEnv("SYNC_SEND_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_SEND_TIMEOUT: %w", err)
	}
	pullTimeout, err := time.ParseDuration(getEnv("SYNC_PULL_TIMEOUT", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_PULL_TIMEOUT: %w", err)
	}

	config.Sync = SyncConfig{
		MaxRetries:     maxRetries,
		SweepInterval:  sweepInterval,
		SweepBatch:     sweepBatch,
		SendTimeout:    sendTimeout,
		PullTimeout:    pullTimeout,
		AlertUserID:    getEnv("SYNC_ALERT_USER_ID", ""),
		AlertCompanyID: getEnv("SYNC_ALERT_COMPANY_ID", ""),
	}

	// Storage configuration
	config.Storage = StorageConfig{
		Type:     getEnv("STORAGE_TYPE", "local"),
		BasePath: getEnv("STORAGE_BASE_PATH", "./uploads"),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.LoadLocation(c.Attendance.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	for name, hour := range map[string]int{
		"ATTENDANCE_DAILY_RUN_HOUR":     c.Attendance.DailyRunHour,
		"ATTENDANCE_MONTHLY_RUN_HOUR":   c.Attendance.MonthlyRunHour,
		"ATTENDANCE_AUTO_CHECKOUT_HOUR": c.Attendance.AutoCheckoutHour,
	} {
		if hour < 0 || hour > 23 {
			return fmt.Errorf("%s must be between 0 and 23", name)
		}
	}
	if c.Attendance.SweepConcurrency < 1 {
		return fmt.Errorf("ATTENDANCE_SWEEP_CONCURRENCY must be positive")
	}
	if c.Sync.MaxRetries < 1 {
		return fmt.Errorf("SYNC_MAX_RETRIES must be positive")
	}
	if c.Sync.SweepBatch < 1 {
		return fmt.Errorf("SYNC_SWEEP_BATCH must be positive")
	}
	if c.Storage.Type != "local" {
		return fmt.Errorf("unsupported STORAGE_TYPE: %s", c.Storage.Type)
	}
	return nil
}

// Location returns the wall-clock location attendance dates are computed in
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Attendance.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := getEnv(key, strconv.Itoa(fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			result = append(result, p)
		}
	}
	return result
}
