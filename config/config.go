package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App       AppConfig       `yaml:"app"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	CORS      CORSConfig      `yaml:"cors"`
	Logging   LoggingConfig   `yaml:"logging"`
	Redis     RedisConfig     `yaml:"redis"`
	RabbitMQ  RabbitMQConfig  `yaml:"rabbitmq"`
	CRM       CRMConfig       `yaml:"crm"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Sync      SyncConfig      `yaml:"sync"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Port        string `yaml:"port"`
}

type DatabaseConfig struct {
	Driver        string        `yaml:"driver"` // mysql or postgres
	URL           string        `yaml:"url"`
	User          string        `yaml:"user"`
	Password      string        `yaml:"password"`
	Host          string        `yaml:"host"`
	Port          string        `yaml:"port"`
	Name          string        `yaml:"name"`
	SSLMode       string        `yaml:"sslmode"`
	MaxOpenConns  int           `yaml:"max_open_conns"`
	MaxIdleConns  int           `yaml:"max_idle_conns"`
	SlowThreshold time.Duration `yaml:"slow_threshold"`
	AutoMigrate   bool          `yaml:"auto_migrate"`
}

type AuthConfig struct {
	JWTSecret     string        `yaml:"jwt_secret"`
	TokenTTL      time.Duration `yaml:"token_ttl"`
	AdminEmail    string        `yaml:"admin_email"`
	AdminPassword string        `yaml:"admin_password"`
}

type CORSConfig struct {
	Origins []string `yaml:"origins"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type RabbitMQConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

type CRMConfig struct {
	LoginURL      string        `yaml:"login_url"`
	Username      string        `yaml:"username"`
	Password      string        `yaml:"password"`
	SecurityToken string        `yaml:"security_token"`
	ClientID      string        `yaml:"client_id"`
	ClientSecret  string        `yaml:"client_secret"`
	APIVersion    string        `yaml:"api_version"`
	Timeout       time.Duration `yaml:"timeout"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type SyncConfig struct {
	Schedule    string        `yaml:"schedule"`
	LockKey     string        `yaml:"lock_key"`
	LockTTL     time.Duration `yaml:"lock_ttl"`
	MetricsAddr string        `yaml:"metrics_addr"`
}

func Default() *Config {
	return &Config{
		App: AppConfig{Name: "hotel-platform", Environment: "development", Port: "8080"},
		Database: DatabaseConfig{
			Driver:        "mysql",
			Host:          "127.0.0.1",
			Port:          "3306",
			User:          "root",
			Name:          "hotel_db",
			SSLMode:       "disable",
			MaxOpenConns:  25,
			MaxIdleConns:  5,
			SlowThreshold: time.Second,
			AutoMigrate:   true,
		},
		Auth:      AuthConfig{TokenTTL: 24 * time.Hour},
		CORS:      CORSConfig{Origins: []string{"*"}},
		Logging:   LoggingConfig{Level: "info", Format: "text"},
		Redis:     RedisConfig{PoolSize: 10},
		RabbitMQ:  RabbitMQConfig{Exchange: "events"},
		CRM:       CRMConfig{LoginURL: "https://login.salesforce.com", APIVersion: "v59.0", Timeout: 30 * time.Second},
		RateLimit: RateLimitConfig{RPS: 5, Burst: 10},
		Sync:      SyncConfig{LockKey: "hotel:crm-sync:lock", LockTTL: 30 * time.Minute},
	}
}

// Load reads .env (if present), then the YAML file at path (if non-empty),
// then applies environment overrides.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path == "" {
		path = strings.TrimSpace(os.Getenv("CONFIG_PATH"))
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		expanded := []byte(os.ExpandEnv(string(data)))
		if err := yaml.Unmarshal(expanded, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.App.Port, "PORT")
	setString(&c.App.Environment, "APP_ENV")

	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.URL, "DATABASE_URL")
	setString(&c.Database.URL, "MYSQL_URL")
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASS")
	setString(&c.Database.Host, "DB_HOST")
	setString(&c.Database.Port, "DB_PORT")
	setString(&c.Database.Name, "DB_NAME")
	setString(&c.Database.SSLMode, "DB_SSLMODE")

	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Auth.AdminEmail, "ADMIN_EMAIL")
	setString(&c.Auth.AdminPassword, "ADMIN_PASSWORD")
	if err := setDuration(&c.Auth.TokenTTL, "JWT_TTL"); err != nil {
		return err
	}

	if v := strings.TrimSpace(os.Getenv("CORS_ORIGINS")); v != "" {
		c.CORS.Origins = splitList(v)
	}

	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.Format, "LOG_FORMAT")

	setString(&c.Redis.Address, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.RabbitMQ.URL, "RABBITMQ_URL")

	setString(&c.CRM.LoginURL, "SALESFORCE_LOGIN_URL")
	setString(&c.CRM.Username, "SALESFORCE_USERNAME")
	setString(&c.CRM.Password, "SALESFORCE_PASSWORD")
	setString(&c.CRM.SecurityToken, "SALESFORCE_TOKEN")
	setString(&c.CRM.ClientID, "SALESFORCE_CLIENT_ID")
	setString(&c.CRM.ClientSecret, "SALESFORCE_CLIENT_SECRET")
	setString(&c.CRM.APIVersion, "SALESFORCE_API_VERSION")

	if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		}
		c.RateLimit.RPS = f
	}
	if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_BURST: %w", err)
		}
		c.RateLimit.Burst = n
	}

	setString(&c.Sync.Schedule, "SYNC_SCHEDULE")
	return nil
}

// Validate checks the settings the API server cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.Database.Driver {
	case "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
