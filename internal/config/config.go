package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Store       StoreConfig       `yaml:"store"`
	Database    DatabaseConfig    `yaml:"database"`
	JWT         JWTConfig         `yaml:"jwt"`
	Log         LogConfig         `yaml:"log"`
	Inventory   InventoryConfig   `yaml:"inventory"`
	Reservation ReservationConfig `yaml:"reservation"`
	Reaper      ReaperConfig      `yaml:"reaper"`
	Scheduler   SchedulerConfig   `yaml:"scheduler"`
}

// ServerConfig contains HTTP and gRPC listener settings
type ServerConfig struct {
	Host     string `yaml:"host"`
	HTTPPort int    `yaml:"http_port"`
	GRPCPort int    `yaml:"grpc_port"`
}

// StoreConfig selects the persistence backend
type StoreConfig struct {
	Type string `yaml:"type"` // "postgres" or "memory"
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host                   string `yaml:"host"`
	Port                   int    `yaml:"port"`
	User                   string `yaml:"user"`
	Password               string `yaml:"password"`
	Database               string `yaml:"database"`
	SSLMode                string `yaml:"ssl_mode"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	// LockTimeoutMs bounds how long a transaction waits on an inventory row lock.
	LockTimeoutMs int `yaml:"lock_timeout_ms"`
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// InventoryConfig contains room-night ledger settings
type InventoryConfig struct {
	// Unset means 5. An explicit 0 leaves unprovisioned nights with no units.
	DefaultCapacity *int `yaml:"default_capacity"`
}

// ReservationConfig contains hold and listing settings
type ReservationConfig struct {
	DefaultHoldSeconds int `yaml:"default_hold_seconds"`
	MaxHoldSeconds     int `yaml:"max_hold_seconds"`
	MaxNights          int `yaml:"max_nights"`
	DefaultPageSize    int `yaml:"default_page_size"`
	MaxPageSize        int `yaml:"max_page_size"`
}

// ReaperConfig contains expired-hold sweep settings
type ReaperConfig struct {
	BatchSize int  `yaml:"batch_size"`
	Embedded  bool `yaml:"embedded"` // run the sweep inside the API server process
}

// SchedulerConfig contains cron schedule settings (seconds precision)
type SchedulerConfig struct {
	ExpireHolds string `yaml:"expire_holds"`
}

const (
	StoreTypePostgres = "postgres"
	StoreTypeMemory   = "memory"
)

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	if val := os.Getenv("STORE_TYPE"); val != "" {
		c.Store.Type = val
	}

	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}
	if val := os.Getenv("DB_LOCK_TIMEOUT_MS"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.LockTimeoutMs)
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_HTTP_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.HTTPPort)
	}
	if val := os.Getenv("SERVER_GRPC_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.GRPCPort)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Inventory / holds
	if val := os.Getenv("INVENTORY_DEFAULT_CAPACITY"); val != "" {
		var n int
		if _, err := fmt.Sscanf(val, "%d", &n); err == nil {
			c.Inventory.DefaultCapacity = &n
		}
	}
	if val := os.Getenv("HOLD_SECONDS"); val != "" {
		fmt.Sscanf(val, "%d", &c.Reservation.DefaultHoldSeconds)
	}
	if val := os.Getenv("REAPER_BATCH_SIZE"); val != "" {
		fmt.Sscanf(val, "%d", &c.Reaper.BatchSize)
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid and fills defaults
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.Server.HTTPPort)
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("invalid gRPC port: %d", c.Server.GRPCPort)
	}

	if c.Store.Type == "" {
		c.Store.Type = StoreTypePostgres
	}
	switch c.Store.Type {
	case StoreTypePostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
	case StoreTypeMemory:
	default:
		return fmt.Errorf("unsupported store type: %s", c.Store.Type)
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 25
	}
	if c.Database.ConnMaxLifetimeMinutes == 0 {
		c.Database.ConnMaxLifetimeMinutes = 5
	}
	if c.Database.LockTimeoutMs == 0 {
		c.Database.LockTimeoutMs = 5000
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 60
	}

	if c.Inventory.DefaultCapacity == nil {
		n := 5
		c.Inventory.DefaultCapacity = &n
	}
	if *c.Inventory.DefaultCapacity < 0 {
		return fmt.Errorf("invalid default capacity: %d", *c.Inventory.DefaultCapacity)
	}

	if c.Reservation.DefaultHoldSeconds == 0 {
		c.Reservation.DefaultHoldSeconds = 30
	}
	if c.Reservation.MaxHoldSeconds == 0 {
		c.Reservation.MaxHoldSeconds = 3600
	}
	if c.Reservation.DefaultHoldSeconds < 0 || c.Reservation.DefaultHoldSeconds > c.Reservation.MaxHoldSeconds {
		return fmt.Errorf("invalid default hold seconds: %d", c.Reservation.DefaultHoldSeconds)
	}
	if c.Reservation.MaxNights == 0 {
		c.Reservation.MaxNights = 30
	}
	if c.Reservation.DefaultPageSize == 0 {
		c.Reservation.DefaultPageSize = 10
	}
	if c.Reservation.MaxPageSize == 0 {
		c.Reservation.MaxPageSize = 100
	}

	if c.Reaper.BatchSize == 0 {
		c.Reaper.BatchSize = 500
	}
	if c.Reaper.BatchSize < 0 {
		return fmt.Errorf("invalid reaper batch size: %d", c.Reaper.BatchSize)
	}

	if c.Scheduler.ExpireHolds == "" {
		c.Scheduler.ExpireHolds = "*/10 * * * * *" // every 10 seconds
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetHTTPAddress returns the REST listener address
func (c *Config) GetHTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.HTTPPort)
}

// GetGRPCAddress returns the gRPC listener address
func (c *Config) GetGRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPCPort)
}

// DefaultCapacity returns the units an unprovisioned room-night starts with.
func (c *Config) DefaultCapacity() int {
	if c.Inventory.DefaultCapacity == nil {
		return 5
	}
	return *c.Inventory.DefaultCapacity
}

func (c *Config) LockTimeout() time.Duration {
	return time.Duration(c.Database.LockTimeoutMs) * time.Millisecond
}

func (c *Config) ConnMaxLifetime() time.Duration {
	return time.Duration(c.Database.ConnMaxLifetimeMinutes) * time.Minute
}

func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.JWT.AccessTokenExpiry) * time.Minute
}
