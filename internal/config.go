package internal

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"http_server"`
	MasterDB MasterDBConfig `mapstructure:"master_db"`
	Session  SessionConfig  `mapstructure:"session"`
	Security SecurityConfig `mapstructure:"security"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

// MasterDBConfig is the connection to the shared credential registry. This is
// the admin connection used for tenant resolution and provisioning; it is
// distinct from any tenant's own database credentials.
type MasterDBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

type SessionConfig struct {
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl"`
	CookieName    string        `mapstructure:"cookie_name"`
	CookieSecure  bool          `mapstructure:"cookie_secure"`
}

type SecurityConfig struct {
	ResetTokenSecret   string        `mapstructure:"reset_token_secret"`
	ResetTokenDuration time.Duration `mapstructure:"reset_token_duration"`
	BCryptCost         int           `mapstructure:"bcrypt_cost"`
	AdminAPIKey        string        `mapstructure:"admin_api_key"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

// LoadConfigFromEnv builds a Config purely from environment variables. The
// MYSQL_ADMIN_* / MASTER_DB_NAME contract is shared with the provisioning
// scripts and must keep those exact names.
func LoadConfigFromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              getEnvAsInt("HTTP_PORT", 8080),
			BaseURL:           getEnv("BASE_URL", "http://localhost:8080"),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			IdleTimeout:       60 * time.Second,
			WriteTimeout:      30 * time.Second,
		},
		MasterDB: MasterDBConfig{
			Host:     getEnv("MYSQL_ADMIN_HOST", "127.0.0.1"),
			Port:     getEnvAsInt("MYSQL_ADMIN_PORT", 3306),
			User:     getEnv("MYSQL_ADMIN_USER", "root"),
			Password: getEnv("MYSQL_ADMIN_PWD", ""),
			Name:     getEnv("MASTER_DB_NAME", "master_db"),
		},
		Session: SessionConfig{
			RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("REDIS_DB", 0),
			TTL:           12 * time.Hour,
			CookieName:    "pm_session",
			CookieSecure:  getEnv("APP_ENV", "") == "production",
		},
		Security: SecurityConfig{
			ResetTokenSecret:   getEnv("RESET_TOKEN_SECRET", ""),
			ResetTokenDuration: 24 * time.Hour,
			BCryptCost:         getEnvAsInt("BCRYPT_COST", 12),
			AdminAPIKey:        getEnv("ADMIN_API_KEY", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.MasterDB.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("master_db config: %v", err))
	}

	if err := c.Session.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("session config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *MasterDBConfig) Validate() error {
	if c.Host == "" {
		return errors.New("host is required")
	}
	if c.User == "" {
		return errors.New("user is required")
	}
	if c.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

func (c *SessionConfig) Validate() error {
	if c.RedisAddr == "" {
		return errors.New("redis_addr is required")
	}
	if c.TTL <= 0 {
		return errors.New("ttl must be positive")
	}
	if c.CookieName == "" {
		return errors.New("cookie_name is required")
	}
	return nil
}

func (c *SecurityConfig) Validate() error {
	if c.ResetTokenSecret == "" {
		return errors.New("reset_token_secret is required")
	}
	if c.BCryptCost < 10 || c.BCryptCost > 15 {
		return errors.New("bcrypt_cost must be between 10 and 15")
	}
	return nil
}

// AdminDSN is the DSN for the admin connection without a database selected,
// used by the provisioner for CREATE DATABASE / CREATE USER statements.
func (c *MasterDBConfig) AdminDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/?parseTime=true&multiStatements=true",
		c.User, c.Password, c.Host, c.Port)
}

// DSN is the DSN for the master registry database itself.
func (c *MasterDBConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		c.User, c.Password, c.Host, c.Port, c.Name)
}
