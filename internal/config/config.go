package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/yukikurage/kanban-api/internal/constants"
	"github.com/yukikurage/kanban-api/internal/policy"
)

// Supported storage drivers
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

type Config struct {
	Port       string `mapstructure:"PORT"`
	GinMode    string `mapstructure:"GIN_MODE"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`
	CORSOrigin string `mapstructure:"CORS_ORIGIN"`

	DBDriver   string `mapstructure:"DB_DRIVER"`
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	SQLitePath string `mapstructure:"SQLITE_PATH"`

	MongoURI      string `mapstructure:"MONGO_URI"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`

	JWTSecret string        `mapstructure:"JWT_SECRET"`
	JWTIssuer string        `mapstructure:"JWT_ISSUER"`
	TokenTTL  time.Duration `mapstructure:"TOKEN_TTL"`

	PermanentDeletePolicy string `mapstructure:"PERMANENT_DELETE_POLICY"`
	PurgeConcurrency      int    `mapstructure:"PURGE_CONCURRENCY"`
}

var defaults = map[string]interface{}{
	"PORT":                    "8080",
	"GIN_MODE":                "debug",
	"LOG_LEVEL":               "info",
	"CORS_ORIGIN":             "http://localhost:3000",
	"DB_DRIVER":               DriverPostgres,
	"DB_HOST":                 "localhost",
	"DB_PORT":                 "5432",
	"DB_USER":                 "kanban",
	"DB_PASSWORD":             "kanban",
	"DB_NAME":                 "kanban",
	"SQLITE_PATH":             "kanban.db",
	"MONGO_URI":               "mongodb://localhost:27017",
	"MONGO_DATABASE":          "kanban",
	"JWT_SECRET":              "default-secret-key-change-me",
	"JWT_ISSUER":              "kanban-api",
	"TOKEN_TTL":               constants.DefaultTokenTTL,
	"PERMANENT_DELETE_POLICY": "any",
	"PURGE_CONCURRENCY":       constants.DefaultPurgeConcurrency,
}

// Load reads configuration from defaults, an optional YAML file named by
// CONFIG_FILE, and the environment, in increasing order of precedence.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports configuration values the server cannot start with.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverMySQL, DriverSQLite, DriverMongo:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	purge, err := policy.ParsePurgePolicy(c.PermanentDeletePolicy)
	if err != nil {
		return fmt.Errorf("unsupported PERMANENT_DELETE_POLICY %q", c.PermanentDeletePolicy)
	}
	c.PermanentDeletePolicy = string(purge)
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.PurgeConcurrency < 1 {
		c.PurgeConcurrency = constants.DefaultPurgeConcurrency
	}
	return nil
}

// PurgePolicy returns the validated permanent delete policy.
func (c *Config) PurgePolicy() policy.PurgePolicy {
	return policy.PurgePolicy(c.PermanentDeletePolicy)
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}
