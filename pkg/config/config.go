package config

import (
	"fmt"
	"time"
)

// DbConfig holds the Postgres connection settings
type DbConfig struct {
	Host     string `env:"PORTAL_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"PORTAL_PG_PORT" env-default:"5432"`
	Database string `env:"PORTAL_PG_DATABASE" env-default:"portal_db"`
	User     string `env:"PORTAL_PG_USER" env-default:"portal"`
	Password string `env:"PORTAL_PG_PASSWORD" env-default:"pwd"`
	Schema   string `env:"PORTAL_PG_SCHEMA" env-default:"public"`
}

func (d DbConfig) ToDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable&search_path=%s,public",
		d.User, d.Password, d.Host, d.Port, d.Database, d.Schema)
}

// ServerConfig holds the HTTP listener settings
type ServerConfig struct {
	Host string `env:"PORTAL_HOST" env-default:"localhost"`
	Port uint16 `env:"PORTAL_PORT" env-default:"4000"`

	CookieHttpOnly bool `env:"COOKIE_HTTP_ONLY" env-default:"true"`
	CookieSecure   bool `env:"COOKIE_SECURE" env-default:"true"`

	// How often the maintenance sweeper runs
	SweepInterval time.Duration `env:"PORTAL_SWEEP_INTERVAL" env-default:"1h"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig holds the authentication and lockout policy knobs
type SecurityConfig struct {
	// Account lockout
	MaxAttempts     int           `env:"AUTH_MAX_ATTEMPTS" env-default:"5"`
	LockoutDuration time.Duration `env:"AUTH_LOCKOUT_DURATION" env-default:"5m"`

	// Token lifetimes
	SessionTimeout   time.Duration `env:"AUTH_SESSION_TIMEOUT" env-default:"1h"`
	RememberDuration time.Duration `env:"AUTH_REMEMBER_DURATION" env-default:"720h"`

	// Password policy
	PasswordMinLength int `env:"AUTH_PASSWORD_MIN_LENGTH" env-default:"6"`

	// Token entropy in bytes; tokens are hex-encoded so the string is twice
	// this long. Remember tokens are intentionally longer than session tokens.
	SessionTokenBytes  int `env:"AUTH_SESSION_TOKEN_BYTES" env-default:"32"`
	RememberTokenBytes int `env:"AUTH_REMEMBER_TOKEN_BYTES" env-default:"64"`
}

// DefaultSecurityConfig returns a SecurityConfig with the standard defaults
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		MaxAttempts:        5,
		LockoutDuration:    5 * time.Minute,
		SessionTimeout:     time.Hour,
		RememberDuration:   720 * time.Hour,
		PasswordMinLength:  6,
		SessionTokenBytes:  32,
		RememberTokenBytes: 64,
	}
}

// Validate checks if the configuration is valid
func (c *SecurityConfig) Validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1, got %d", c.MaxAttempts)
	}
	if c.LockoutDuration <= 0 {
		return fmt.Errorf("lockout_duration must be positive, got %v", c.LockoutDuration)
	}
	if c.SessionTimeout <= 0 {
		return fmt.Errorf("session_timeout must be positive, got %v", c.SessionTimeout)
	}
	if c.RememberDuration <= 0 {
		return fmt.Errorf("remember_duration must be positive, got %v", c.RememberDuration)
	}
	if c.PasswordMinLength < 1 {
		return fmt.Errorf("password_min_length must be at least 1, got %d", c.PasswordMinLength)
	}
	if c.SessionTokenBytes < 16 {
		return fmt.Errorf("session_token_bytes must be at least 16, got %d", c.SessionTokenBytes)
	}
	if c.RememberTokenBytes < c.SessionTokenBytes {
		return fmt.Errorf("remember_token_bytes (%d) must be >= session_token_bytes (%d)",
			c.RememberTokenBytes, c.SessionTokenBytes)
	}
	return nil
}
