// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing or malformed, the process
// exits before touching the network.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all runtime configuration for the core service.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string

	AdzunaAppID   string
	AdzunaAppKey  string
	AdzunaCountry string // e.g. "fr", "gb", "us"

	ScrapeIntervalHours int // how often the discovery cron fires
	FeedTTLDays         int // expiry horizon stamped on new feed items
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	interval, err := positiveIntEnv("SCRAPE_INTERVAL_HOURS", 6)
	if err != nil {
		return nil, err
	}

	ttlDays, err := positiveIntEnv("FEED_TTL_DAYS", 30)
	if err != nil {
		return nil, err
	}

	country := os.Getenv("ADZUNA_COUNTRY")
	if country == "" {
		country = "fr"
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	return &Config{
		Port:                port,
		DatabaseURL:         dbURL,
		RedisURL:            redisURL,
		AdzunaAppID:         os.Getenv("ADZUNA_APP_ID"),
		AdzunaAppKey:        os.Getenv("ADZUNA_APP_KEY"),
		AdzunaCountry:       country,
		ScrapeIntervalHours: interval,
		FeedTTLDays:         ttlDays,
	}, nil
}

func positiveIntEnv(name string, def int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, s)
	}
	return v, nil
}
