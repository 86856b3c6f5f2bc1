package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Name string `mapstructure:"name"`
		Port string `mapstructure:"port"`
	} `mapstructure:"app"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`

	Storage StorageConfig `mapstructure:"storage"`

	Postgres PostgresConfig `mapstructure:"postgres"`

	SQLite struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"sqlite"`

	Redis RedisConfig `mapstructure:"redis"`

	OpenExchange OpenExchangeConfig `mapstructure:"openexchange"`

	Cache CacheConfig `mapstructure:"cache"`

	Scheduler struct {
		RefreshSpec string `mapstructure:"refresh_spec"`
	} `mapstructure:"scheduler"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	DBName   string `mapstructure:"dbname"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig points at the preference store. An empty Addr keeps sync
// timestamps in process memory.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type OpenExchangeConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	AppID   string        `mapstructure:"app_id"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type CacheConfig struct {
	RatesTTL        time.Duration `mapstructure:"rates_ttl"`
	CurrencyListTTL time.Duration `mapstructure:"currency_list_ttl"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "converter-service")
	v.SetDefault("app.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.dbname", "converter")
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("sqlite.path", "exchange_rates.sqlite3")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "converter:")
	v.SetDefault("openexchange.base_url", "https://openexchangerates.org/api")
	v.SetDefault("openexchange.app_id", "")
	v.SetDefault("openexchange.timeout", 10*time.Second)
	v.SetDefault("cache.rates_ttl", 30*time.Minute)
	v.SetDefault("cache.currency_list_ttl", 30*time.Minute)
	v.SetDefault("scheduler.refresh_spec", "@every 30m")
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")
	v.AddConfigPath("../../config")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
