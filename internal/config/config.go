package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	// developmentAPIURL is where the UI expects the API when running locally.
	developmentAPIURL = "http://localhost:5000/api"
)

type Config struct {
	Env  string
	HTTP struct {
		Addr            string
		ShutdownTimeout time.Duration
	}
	DB struct {
		Driver string
		DSN    string
	}
	API struct {
		RateLimit float64 // requests per second; 0 disables limiting
		RateBurst int
	}
	Client struct {
		APIURL  string
		Timeout time.Duration
	}
	Log struct {
		Level string
	}
	SessionLifetime time.Duration
	SecureCookies   bool // set when the UI is served over HTTPS
}

// IsProduction reports whether the production profile is active.
func (c *Config) IsProduction() bool { return c.Env == EnvProduction }

// Load reads config from an optional .env file, the environment (RECIPES_
// prefix) and an optional recipe-manager.yaml, in increasing precedence of
// environment over file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("RECIPES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("recipe-manager")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetDefault("env", EnvDevelopment)
	v.SetDefault("http.shutdown_timeout", "15s")
	v.SetDefault("db.driver", "sqlite3")
	v.SetDefault("db.dsn", "file:recipes.db")
	v.SetDefault("api.rate_limit", 50)
	v.SetDefault("api.rate_burst", 100)
	v.SetDefault("client.timeout", "10s")
	v.SetDefault("session.lifetime", "24h")
	v.SetDefault("session.secure_cookie", false)
	v.SetDefault("log.level", "info")

	cfg := &Config{}
	cfg.Env = strings.ToLower(v.GetString("env"))
	if cfg.Env != EnvDevelopment && cfg.Env != EnvProduction {
		return nil, fmt.Errorf("RECIPES_ENV must be %q or %q, got %q", EnvDevelopment, EnvProduction, cfg.Env)
	}

	if cfg.IsProduction() {
		v.SetDefault("http.addr", ":8080")
	} else {
		v.SetDefault("http.addr", ":5000")
	}
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.DB.Driver = v.GetString("db.driver")
	cfg.DB.DSN = v.GetString("db.dsn")
	cfg.API.RateLimit = v.GetFloat64("api.rate_limit")
	cfg.API.RateBurst = v.GetInt("api.rate_burst")
	cfg.Client.APIURL = v.GetString("client.api_url")
	cfg.Log.Level = v.GetString("log.level")
	cfg.SecureCookies = v.GetBool("session.secure_cookie")

	var err error
	if cfg.HTTP.ShutdownTimeout, err = time.ParseDuration(v.GetString("http.shutdown_timeout")); err != nil {
		return nil, fmt.Errorf("invalid RECIPES_HTTP_SHUTDOWN_TIMEOUT: %w", err)
	}
	if cfg.Client.Timeout, err = time.ParseDuration(v.GetString("client.timeout")); err != nil {
		return nil, fmt.Errorf("invalid RECIPES_CLIENT_TIMEOUT: %w", err)
	}
	if cfg.SessionLifetime, err = time.ParseDuration(v.GetString("session.lifetime")); err != nil {
		return nil, fmt.Errorf("invalid RECIPES_SESSION_LIFETIME: %w", err)
	}

	switch cfg.DB.Driver {
	case "sqlite3", "mysql", "postgres":
	default:
		return nil, fmt.Errorf("RECIPES_DB_DRIVER must be one of sqlite3, mysql, postgres; got %q", cfg.DB.Driver)
	}
	if cfg.DB.DSN == "" {
		return nil, fmt.Errorf("RECIPES_DB_DSN is required")
	}
	if cfg.API.RateLimit < 0 {
		return nil, fmt.Errorf("RECIPES_API_RATE_LIMIT must not be negative")
	}
	if cfg.API.RateLimit > 0 && cfg.API.RateBurst < 1 {
		return nil, fmt.Errorf("RECIPES_API_RATE_BURST must be at least 1 when rate limiting is enabled")
	}

	if cfg.Client.APIURL == "" {
		cfg.Client.APIURL, err = defaultAPIURL(cfg)
		if err != nil {
			return nil, err
		}
	}
	cfg.Client.APIURL = strings.TrimRight(cfg.Client.APIURL, "/")

	return cfg, nil
}

// defaultAPIURL picks the API base the UI talks to. Production serves the API
// from the same process, so the URL follows the listen address; development
// points at the local API port.
func defaultAPIURL(cfg *Config) (string, error) {
	if !cfg.IsProduction() {
		return developmentAPIURL, nil
	}
	host, port, err := net.SplitHostPort(cfg.HTTP.Addr)
	if err != nil {
		return "", fmt.Errorf("invalid RECIPES_HTTP_ADDR %q: %w", cfg.HTTP.Addr, err)
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port) + "/api", nil
}
