// Package config loads the application configuration from a YAML file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Cache backends.
const (
	CacheMemory   = "memory"
	CacheRedis    = "redis"
	CachePostgres = "postgres"
)

// Config represents the application configuration structure.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`
	// LogLevel overrides the environment's default log level when set
	LogLevel string `env:"LOG_LEVEL" yaml:"logLevel"`

	// HTTP contains all HTTP server related configurations
	HTTP struct {
		// Addr is the address and port the HTTP server will listen on
		Addr string `env:"HTTP_ADDR" env-default:":8080" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"3m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout bounds a single request; a report scrapes several sites so it is generous
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"2m" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
		// Pprof mounts net/http/pprof under /debug/pprof/
		Pprof bool `env:"HTTP_PPROF" env-default:"false" yaml:"pprof"`
	} `yaml:"http"`

	// Cache selects and configures the page cache
	Cache struct {
		// Backend is one of memory, redis or postgres
		Backend string `env:"CACHE_BACKEND" env-default:"memory" yaml:"backend"`
		// TTL is how long a fetched page is served from the cache
		TTL time.Duration `env:"CACHE_TTL" env-default:"24h" yaml:"ttl"`
	} `yaml:"cache"`

	// Redis is used when the cache backend is redis
	Redis struct {
		// Addr is the host:port of the redis server
		Addr string `env:"REDIS_ADDR" env-default:"localhost:6379" yaml:"addr"`
		// Password for redis authentication
		Password string `env:"REDIS_PASSWORD" yaml:"password"`
		// DB is the redis logical database
		DB int `env:"REDIS_DB" env-default:"0" yaml:"db"`
		// Prefix namespaces every cache key
		Prefix string `env:"REDIS_PREFIX" env-default:"propertydata:" yaml:"prefix"`
	} `yaml:"redis"`

	// Database contains all database connection related configurations
	Database struct {
		// Username for database authentication
		Username string `env:"DATABASE_USERNAME" env-default:"myuser" yaml:"username"`
		// Password for database authentication
		Password string `env:"DATABASE_PASSWORD" env-default:"mypassword" yaml:"password"`
		// Host is the database server hostname or IP address
		Host string `env:"DATABASE_HOST" env-default:"localhost" yaml:"host"`
		// Port is the database server port number
		Port int `env:"DATABASE_PORT" env-default:"5432" yaml:"port"`
		// SslMode defines the SSL mode for the database connection
		SslMode string `env:"DATABASE_SSL_MODE" env-default:"disable" yaml:"sslMode"`
		// DatabaseName is the name of the database to connect to
		DatabaseName string `env:"DATABASE_NAME" env-default:"propertydata" yaml:"name"`
		// MaxOpenConnections limits the number of open connections to the database
		MaxOpenConnections int `env:"DATABASE_MAX_OPEN_CONNECTIONS" env-default:"10" yaml:"maxOpenConnections"`
		// MaxIdleConnections limits the number of connections in the idle connection pool
		MaxIdleConnections int `env:"DATABASE_MAX_IDLE_CONNECTIONS" env-default:"8" yaml:"maxIdleConnections"`
		// ConnMaxLifetime is the maximum amount of time a connection may be reused
		ConnMaxLifetime time.Duration `env:"DATABASE_CONNECTION_MAX_LIFETIME" env-default:"3m" yaml:"connMaxLifetime"`
		// ConnMaxIdleTime is the maximum amount of time a connection may be idle
		ConnMaxIdleTime time.Duration `env:"DATABASE_CONNECTION_MAX_IDLE_TIME" env-default:"3m" yaml:"connMaxIdleTime"`
	} `yaml:"database"`

	// Scrapers configures how source pages are fetched
	Scrapers struct {
		// UserAgent overrides the desktop browser user agent sent with page requests
		UserAgent string `env:"SCRAPERS_USER_AGENT" yaml:"userAgent"`
		// HTTPTimeout bounds a single HTTP page fetch
		HTTPTimeout time.Duration `env:"SCRAPERS_HTTP_TIMEOUT" env-default:"20s" yaml:"httpTimeout"`
		// BypassCloudflare installs the cloudflare bypass transport
		BypassCloudflare bool `env:"SCRAPERS_BYPASS_CLOUDFLARE" env-default:"false" yaml:"bypassCloudflare"`
		// Debug dumps every page request and response at debug level
		Debug bool `env:"SCRAPERS_DEBUG" env-default:"false" yaml:"debug"`

		// Browser renders client-side pages with headless chrome
		Browser struct {
			Enabled  bool          `env:"SCRAPERS_BROWSER_ENABLED" env-default:"false" yaml:"enabled"`
			ExecPath string        `env:"SCRAPERS_BROWSER_EXEC_PATH" yaml:"execPath"`
			Timeout  time.Duration `env:"SCRAPERS_BROWSER_TIMEOUT" env-default:"45s" yaml:"timeout"`
		} `yaml:"browser"`
	} `yaml:"scrapers"`

	// Report configures record assembly
	Report struct {
		// FieldConcurrency bounds how many fields are acquired at once
		FieldConcurrency int `env:"REPORT_FIELD_CONCURRENCY" env-default:"4" yaml:"fieldConcurrency"`

		// Fallback configures the whole-record tier. cleanenv applies defaults
		// to zero values, so the switch is phrased as Disabled.
		Fallback struct {
			Disabled    bool `env:"REPORT_FALLBACK_DISABLED" env-default:"false" yaml:"disabled"`
			MaxAttempts int  `env:"REPORT_FALLBACK_MAX_ATTEMPTS" env-default:"3" yaml:"maxAttempts"`
		} `yaml:"fallback"`
	} `yaml:"report"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load receives the path for yaml config file and returns a filled Config struct.
// A missing file is not an error: the config is then read from the
// environment and defaults alone.
func Load(configPath string) (*Config, error) {
	var cfg Config

	_, err := os.Stat(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		err = cleanenv.ReadEnv(&cfg)
	case err == nil:
		err = cleanenv.ReadConfig(configPath, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	if err = cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case CacheMemory, CacheRedis, CachePostgres:
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}

	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive, got %s", c.Cache.TTL)
	}

	return nil
}
