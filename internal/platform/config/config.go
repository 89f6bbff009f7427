// Package config builds runtime configuration from environment variables
// so main stays lean. Every knob has a development default; production
// deployments override via the environment.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config is the full runtime configuration.
type Config struct {
	Server   Server
	Postgres Postgres
	Redis    Redis

	// DirectoryFile points at the site directory JSON (geofences,
	// beacons, assignments). Empty means no sites are provisioned.
	DirectoryFile string
	LogLevel      string
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	JWTSigningKey   string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// Postgres configures the attendance event store. An empty URL selects
// the in-memory store.
type Postgres struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Redis configures the distributed day lock. An empty URL selects the
// in-process lock.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv reads the PUNCHCARD_* environment.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr: envString("PUNCHCARD_ADDR", ":8080"),
			// Development default, must be overridden in production.
			JWTSigningKey:   envString("PUNCHCARD_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			RequestTimeout:  envDuration("PUNCHCARD_REQUEST_TIMEOUT", 30*time.Second),
			ShutdownTimeout: envDuration("PUNCHCARD_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Postgres: Postgres{
			URL:             os.Getenv("PUNCHCARD_POSTGRES_URL"),
			MaxOpenConns:    envInt("PUNCHCARD_POSTGRES_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    envInt("PUNCHCARD_POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("PUNCHCARD_POSTGRES_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: Redis{
			URL:          os.Getenv("PUNCHCARD_REDIS_URL"),
			PoolSize:     envInt("PUNCHCARD_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("PUNCHCARD_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("PUNCHCARD_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("PUNCHCARD_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("PUNCHCARD_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		DirectoryFile: os.Getenv("PUNCHCARD_DIRECTORY_FILE"),
		LogLevel:      envString("PUNCHCARD_LOG_LEVEL", "info"),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
