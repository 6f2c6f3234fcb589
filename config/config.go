package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Booking    BookingConfig    `yaml:"booking"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// BookingConfig holds the scheduling conventions and the policy defaults
// seeded into the settings row on first startup. The live policy is stored
// in the database and edited through the settings endpoint; these values
// only apply when no settings row exists yet.
type BookingConfig struct {
	Timezone     string          `yaml:"timezone"`
	WeekStartsOn string          `yaml:"week_starts_on"`
	Defaults     BookingDefaults `yaml:"defaults"`
}

// BookingDefaults mirrors the fields of the persisted scheduling policy.
type BookingDefaults struct {
	StartTime            string `yaml:"start_time"`
	EndTime              string `yaml:"end_time"`
	WashDurationMinutes  int    `yaml:"wash_duration_minutes"`
	BreakAfter           int    `yaml:"break_after"`
	BreakDurationMinutes int    `yaml:"break_duration_minutes"`
	SlotsPerDay          int    `yaml:"slots_per_day"`
	WeeklyLimit          int    `yaml:"weekly_limit"`
	MonthlyLimit         int    `yaml:"monthly_limit"`
	AutoGenerate         bool   `yaml:"auto_generate"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 30
	}

	if cfg.Booking.Timezone == "" {
		cfg.Booking.Timezone = "UTC"
	}
	if cfg.Booking.WeekStartsOn == "" {
		cfg.Booking.WeekStartsOn = "monday"
	}
	if _, err := cfg.Booking.WeekStart(); err != nil {
		return nil, err
	}

	d := &cfg.Booking.Defaults
	if d.StartTime == "" {
		d.StartTime = "08:00"
	}
	if d.EndTime == "" {
		d.EndTime = "22:00"
	}
	if d.WashDurationMinutes <= 0 {
		d.WashDurationMinutes = 30
	}
	if d.BreakAfter < 0 {
		d.BreakAfter = 0
	}
	if d.BreakDurationMinutes < 0 {
		d.BreakDurationMinutes = 0
	}
	if d.SlotsPerDay <= 0 {
		d.SlotsPerDay = 20
	}
	if d.WeeklyLimit < 0 {
		d.WeeklyLimit = 0
	}
	if d.MonthlyLimit < 0 {
		d.MonthlyLimit = 0
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	return &cfg, nil
}

// WeekStart resolves the configured first day of the booking week.
func (b *BookingConfig) WeekStart() (time.Weekday, error) {
	switch strings.ToLower(b.WeekStartsOn) {
	case "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	case "tuesday":
		return time.Tuesday, nil
	case "wednesday":
		return time.Wednesday, nil
	case "thursday":
		return time.Thursday, nil
	case "friday":
		return time.Friday, nil
	case "saturday":
		return time.Saturday, nil
	}
	return time.Sunday, fmt.Errorf("unknown week_starts_on value %q", b.WeekStartsOn)
}

// Location resolves the configured booking timezone.
func (b *BookingConfig) Location() (*time.Location, error) {
	return time.LoadLocation(b.Timezone)
}
