package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App     AppSettings     `mapstructure:"app"`
	Mongo   MongoSettings   `mapstructure:"mongo"`
	Redis   RedisSettings   `mapstructure:"redis"`
	JWT     JWTSettings     `mapstructure:"jwt"`
	Lockout LockoutSettings `mapstructure:"lockout"`
	Catalog CatalogSettings `mapstructure:"catalog"`
	CORS    CORSSettings    `mapstructure:"cors"`
}

type AppSettings struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// MongoSettings configures the document store connection.
type MongoSettings struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// RedisSettings configures the Redis connection used by the catalog cache.
type RedisSettings struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	DB         int    `mapstructure:"db"`
	Password   string `mapstructure:"password"`
	TLSEnabled bool   `mapstructure:"tls_enabled"`
}

// JWTSettings holds the symmetric signing secret and token lifetime.
type JWTSettings struct {
	Secret   string        `mapstructure:"secret"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

// LockoutSettings tune the per-account login lockout policy.
type LockoutSettings struct {
	MaxAttempts  int           `mapstructure:"max_attempts"`
	LockDuration time.Duration `mapstructure:"lock_duration"`
}

// CatalogSettings configure course catalog caching.
type CatalogSettings struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// CORSSettings list the origins allowed to call the API from a browser.
type CORSSettings struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("LMS")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"mongo.uri",
		"mongo.database",
		"mongo.connect_timeout",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"jwt.secret",
		"jwt.token_ttl",
		"lockout.max_attempts",
		"lockout.lock_duration",
		"catalog.cache_ttl",
		"cors.allowed_origins",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "coursehub-api")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 5000)

	v.SetDefault("mongo.uri", "mongodb://127.0.0.1:27017")
	v.SetDefault("mongo.database", "lms_database")
	v.SetDefault("mongo.connect_timeout", 10*time.Second)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.token_ttl", 7*24*time.Hour)

	v.SetDefault("lockout.max_attempts", 5)
	v.SetDefault("lockout.lock_duration", 15*time.Minute)

	v.SetDefault("catalog.cache_ttl", 5*time.Minute)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	return nil
}
