package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisLockDB   int    `mapstructure:"REDIS_LOCK_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Scheduling knobs.
	SlotGranularityMinutes int `mapstructure:"SLOT_GRANULARITY_MINUTES"`
	LockTTLSeconds         int `mapstructure:"LOCK_TTL_SECONDS"`
	RuleCacheTTLSeconds    int `mapstructure:"RULE_CACHE_TTL_SECONDS"`
	PendingExpiryMinutes   int `mapstructure:"PENDING_EXPIRY_MINUTES"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "slotify")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_LOCK_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("SLOT_GRANULARITY_MINUTES", 15)
	viper.SetDefault("LOCK_TTL_SECONDS", 8)
	viper.SetDefault("RULE_CACHE_TTL_SECONDS", 60)
	viper.SetDefault("PENDING_EXPIRY_MINUTES", 15)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// SlotGranularity returns the configured slot enumeration step.
func SlotGranularity() time.Duration {
	return time.Duration(AppConfig.SlotGranularityMinutes) * time.Minute
}

// LockTTL returns the TTL applied to reservation locks.
func LockTTL() time.Duration {
	return time.Duration(AppConfig.LockTTLSeconds) * time.Second
}

// RuleCacheTTL returns how long schedule rules may be served from cache.
func RuleCacheTTL() time.Duration {
	return time.Duration(AppConfig.RuleCacheTTLSeconds) * time.Second
}

// PendingExpiry returns how long a Pending booking may hold capacity.
func PendingExpiry() time.Duration {
	return time.Duration(AppConfig.PendingExpiryMinutes) * time.Minute
}
