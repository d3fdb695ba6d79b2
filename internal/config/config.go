// Package config reads server configuration from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Data sources the record store can be backed by.
const (
	SourceFixtures = "fixtures"
	SourceMongo    = "mongo"
)

// Config holds every server setting.
type Config struct {
	Port     string
	LogLevel log.Level

	DataSource      string
	MongoURI        string
	MongoDatabase   string
	RefreshInterval time.Duration

	JWTSecret string
	JWTExpiry time.Duration

	AdminUsername string
	AdminPassword string

	MQTTBroker   string
	MQTTClientID string
	MQTTTopic    string

	SettingsFile string
	FromAddress  string

	RateLimit       int
	RateLimitWindow time.Duration
}

// Load reads the given .env files, when present, then the environment.
// Variables already set in the environment win over the files.
func Load(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := Config{
		Port:          getenv("PORT", "8080"),
		DataSource:    strings.ToLower(getenv("DATA_SOURCE", SourceFixtures)),
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDatabase: getenv("MONGO_DB", "fleet"),
		JWTSecret:     getenv("JWT_SECRET", "default-secret-key-change-in-production"),
		AdminUsername: getenv("ADMIN_USERNAME", "admin"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		MQTTBroker:    os.Getenv("MQTT_BROKER"),
		MQTTClientID:  getenv("MQTT_CLIENT_ID", "fleet-dashboard"),
		MQTTTopic:     getenv("MQTT_TOPIC", "fleet/notifications"),
		SettingsFile:  os.Getenv("SETTINGS_FILE"),
		FromAddress:   getenv("FROM_ADDRESS", "fleet@dashboard.example"),
	}

	var err error
	if cfg.LogLevel, err = log.ParseLevel(getenv("LOG_LEVEL", "info")); err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if cfg.JWTExpiry, err = duration("JWT_EXPIRY", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.RefreshInterval, err = duration("REFRESH_INTERVAL", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitWindow, err = duration("RATE_LIMIT_WINDOW", time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.RateLimit, err = integer("RATE_LIMIT", 100); err != nil {
		return Config{}, err
	}

	switch cfg.DataSource {
	case SourceFixtures:
	case SourceMongo:
		if cfg.MongoURI == "" {
			return Config{}, errors.New("MONGO_URI is required when DATA_SOURCE=mongo")
		}
	default:
		return Config{}, fmt.Errorf("DATA_SOURCE: unknown source %q", cfg.DataSource)
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func duration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func integer(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
