// Package config provides configuration management for the application.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Email      EmailConfig      `mapstructure:"email"`
	SMS        SMSConfig        `mapstructure:"sms"`
	Admin      AdminConfig      `mapstructure:"admin"`
	Settings   SettingsConfig   `mapstructure:"settings"`
	Intake     IntakeConfig     `mapstructure:"intake"`
	Sequences  SequencesConfig  `mapstructure:"sequences"`
	Middleware MiddlewareConfig `mapstructure:"middleware"`
}

type ServerConfig struct {
	Port         string `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// DatabaseConfig selects and parameterizes the storage backend. Driver is
// "postgres" or "sqlite"; business logic never sees which one is active.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	Path     string `mapstructure:"path"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type EmailConfig struct {
	APIURL         string               `mapstructure:"api_url"`
	APIKey         string               `mapstructure:"api_key"`
	From           string               `mapstructure:"from"`
	SMTPHost       string               `mapstructure:"smtp_host"`
	SMTPPort       int                  `mapstructure:"smtp_port"`
	SMTPUser       string               `mapstructure:"smtp_user"`
	SMTPPassword   string               `mapstructure:"smtp_password"`
	Timeout        int                  `mapstructure:"timeout"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

type SMSConfig struct {
	GatewayURL     string               `mapstructure:"gateway_url"`
	APIKey         string               `mapstructure:"api_key"`
	APISecret      string               `mapstructure:"api_secret"`
	Sender         string               `mapstructure:"sender"`
	Timeout        int                  `mapstructure:"timeout"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

type CircuitBreakerConfig struct {
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"`
	Timeout          int     `mapstructure:"timeout"`
	FailureRatio     float64 `mapstructure:"failure_ratio"`
	ConsecutiveFails uint32  `mapstructure:"consecutive_fails"`
}

// AdminConfig gates the admin endpoints. An empty password disables the
// check entirely, which is the documented development-mode behavior.
type AdminConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// SettingsConfig selects where provider credentials live: "env" reads them
// from this config only, "table" persists admin updates to the settings table.
type SettingsConfig struct {
	Store string `mapstructure:"store"`
}

// IntakeConfig controls the store-backed submission rate limiter.
type IntakeConfig struct {
	RateLimitMax      int    `mapstructure:"rate_limit_max"`
	RateLimitWindowMs int    `mapstructure:"rate_limit_window_ms"`
	RateLimitPolicy   string `mapstructure:"rate_limit_policy"`
}

type SequencesConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	IntervalMinutes int  `mapstructure:"interval_minutes"`
	BatchSize       int  `mapstructure:"batch_size"`
}

type MiddlewareConfig struct {
	RateLimit      int      `mapstructure:"rate_limit"`
	RateLimitBurst int      `mapstructure:"rate_limit_burst"`
	EnableCORS     bool     `mapstructure:"enable_cors"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func LoadConfig(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.read_timeout", 10)
	viper.SetDefault("server.write_timeout", 10)
	viper.SetDefault("database.driver", "postgres")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.path", "leadfunnel.db")
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("email.api_url", "https://api.resend.com/emails")
	viper.SetDefault("email.smtp_port", 587)
	viper.SetDefault("email.timeout", 15)
	viper.SetDefault("sms.gateway_url", "https://api.solapi.com/messages/v4/send")
	viper.SetDefault("sms.timeout", 15)
	viper.SetDefault("admin.username", "admin")
	viper.SetDefault("settings.store", "env")
	viper.SetDefault("intake.rate_limit_max", 5)
	viper.SetDefault("intake.rate_limit_window_ms", 60000)
	viper.SetDefault("intake.rate_limit_policy", "fail_open")
	viper.SetDefault("sequences.enabled", false)
	viper.SetDefault("sequences.interval_minutes", 5)
	viper.SetDefault("sequences.batch_size", 20)
	viper.SetDefault("middleware.rate_limit", 100)
	viper.SetDefault("middleware.rate_limit_burst", 1000)
	viper.SetDefault("middleware.enable_cors", true)
	viper.SetDefault("middleware.allowed_origins", []string{"*"})

	for _, section := range []string{"email", "sms"} {
		viper.SetDefault(section+".circuit_breaker.max_requests", 3)
		viper.SetDefault(section+".circuit_breaker.interval", 60)
		viper.SetDefault(section+".circuit_breaker.timeout", 60)
		viper.SetDefault(section+".circuit_breaker.failure_ratio", 0.6)
		viper.SetDefault(section+".circuit_breaker.consecutive_fails", 5)
	}

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// GetDSN returns the connection string for the configured driver.
func (d *DatabaseConfig) GetDSN() string {
	if d.Driver == "sqlite" {
		return d.Path
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}
