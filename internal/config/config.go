package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Log         LogConfig         `mapstructure:"log"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Ingest      IngestConfig      `mapstructure:"ingest"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Neo4j       Neo4jConfig       `mapstructure:"neo4j"`
	ObjectStore ObjectStoreConfig `mapstructure:"objectstore"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
}

type LogConfig struct {
	Mode       string `mapstructure:"mode"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type DatabaseConfig struct {
	Driver           string        `mapstructure:"driver"`
	DSN              string        `mapstructure:"dsn"`
	Host             string        `mapstructure:"host"`
	Port             int           `mapstructure:"port"`
	User             string        `mapstructure:"user"`
	Password         string        `mapstructure:"password"`
	Name             string        `mapstructure:"name"`
	SSLMode          string        `mapstructure:"sslmode"`
	StatementTimeout time.Duration `mapstructure:"statement_timeout"`
	AutoMigrate      bool          `mapstructure:"auto_migrate"`
}

type IngestConfig struct {
	Strict             bool `mapstructure:"strict"`
	Workers            int  `mapstructure:"workers"`
	MaxPatchRounds     int  `mapstructure:"max_patch_rounds"`
	SynthesizeFeedback bool `mapstructure:"synthesize_feedback"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
}

type Neo4jConfig struct {
	URI      string        `mapstructure:"uri"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	Database string        `mapstructure:"database"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type ObjectStoreConfig struct {
	GCSCredentialsFile string `mapstructure:"gcs_credentials_file"`
	S3Endpoint         string `mapstructure:"s3_endpoint"`
	S3AccessKey        string `mapstructure:"s3_access_key"`
	S3SecretKey        string `mapstructure:"s3_secret_key"`
	S3Region           string `mapstructure:"s3_region"`
	S3Secure           bool   `mapstructure:"s3_secure"`
}

type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Load reads an optional YAML file at path, then COURSETREE_* and the
// conventional unprefixed variables. An empty path means env and defaults only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("COURSETREE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// conventional names shared with the rest of the deployment
	_ = v.BindEnv("log.mode", "COURSETREE_LOG_MODE", "LOG_MODE")
	_ = v.BindEnv("database.dsn", "COURSETREE_DATABASE_DSN", "DATABASE_URL")
	_ = v.BindEnv("database.host", "COURSETREE_DATABASE_HOST", "POSTGRES_HOST")
	_ = v.BindEnv("database.port", "COURSETREE_DATABASE_PORT", "POSTGRES_PORT")
	_ = v.BindEnv("database.user", "COURSETREE_DATABASE_USER", "POSTGRES_USER")
	_ = v.BindEnv("database.password", "COURSETREE_DATABASE_PASSWORD", "POSTGRES_PASSWORD")
	_ = v.BindEnv("database.name", "COURSETREE_DATABASE_NAME", "POSTGRES_NAME")
	_ = v.BindEnv("redis.addr", "COURSETREE_REDIS_ADDR", "REDIS_ADDR")
	_ = v.BindEnv("redis.password", "COURSETREE_REDIS_PASSWORD", "REDIS_PASSWORD")
	_ = v.BindEnv("neo4j.uri", "COURSETREE_NEO4J_URI", "NEO4J_URI")
	_ = v.BindEnv("neo4j.user", "COURSETREE_NEO4J_USER", "NEO4J_USER")
	_ = v.BindEnv("neo4j.password", "COURSETREE_NEO4J_PASSWORD", "NEO4J_PASSWORD")
	_ = v.BindEnv("neo4j.database", "COURSETREE_NEO4J_DATABASE", "NEO4J_DATABASE")
	_ = v.BindEnv("objectstore.gcs_credentials_file", "COURSETREE_OBJECTSTORE_GCS_CREDENTIALS_FILE", "GOOGLE_APPLICATION_CREDENTIALS")
	_ = v.BindEnv("objectstore.s3_endpoint", "COURSETREE_OBJECTSTORE_S3_ENDPOINT", "MINIO_ENDPOINT")
	_ = v.BindEnv("objectstore.s3_access_key", "COURSETREE_OBJECTSTORE_S3_ACCESS_KEY", "MINIO_ACCESS_KEY")
	_ = v.BindEnv("objectstore.s3_secret_key", "COURSETREE_OBJECTSTORE_S3_SECRET_KEY", "MINIO_SECRET_KEY")

	if path = strings.TrimSpace(path); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.mode", "development")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)

	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "coursetree")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.statement_timeout", 30*time.Second)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("ingest.strict", false)
	v.SetDefault("ingest.workers", 1)
	v.SetDefault("ingest.max_patch_rounds", 3)
	v.SetDefault("ingest.synthesize_feedback", false)

	v.SetDefault("redis.lock_ttl", 10*time.Minute)
	v.SetDefault("neo4j.database", "neo4j")
	v.SetDefault("neo4j.timeout", 10*time.Second)
	v.SetDefault("objectstore.s3_secure", true)
}

func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Database.Driver)) {
	case DriverPostgres, DriverSQLite:
		c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	default:
		return fmt.Errorf("config: database.driver must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.Database.Driver)
	}
	if c.Database.Driver == DriverSQLite && strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("config: database.dsn is required for sqlite")
	}
	if c.Ingest.Workers < 1 {
		c.Ingest.Workers = 1
	}
	if c.Ingest.MaxPatchRounds < 1 {
		c.Ingest.MaxPatchRounds = 1
	}
	return nil
}

// PostgresDSN returns database.dsn or builds one from the host fields.
func (d DatabaseConfig) PostgresDSN() string {
	if dsn := strings.TrimSpace(d.DSN); dsn != "" {
		return dsn
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}
