package config

import "testing"

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/jobtrail")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "")
	t.Setenv("ADZUNA_COUNTRY", "")
	t.Setenv("SCRAPE_INTERVAL_HOURS", "")
	t.Setenv("FEED_TTL_DAYS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.AdzunaCountry != "fr" {
		t.Errorf("AdzunaCountry = %q, want fr", cfg.AdzunaCountry)
	}
	if cfg.ScrapeIntervalHours != 6 {
		t.Errorf("ScrapeIntervalHours = %d, want 6", cfg.ScrapeIntervalHours)
	}
	if cfg.FeedTTLDays != 30 {
		t.Errorf("FeedTTLDays = %d, want 30", cfg.FeedTTLDays)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	if _, err := Load(); err == nil {
		t.Error("expected error without DATABASE_URL")
	}

	t.Setenv("DATABASE_URL", "postgres://localhost:5432/jobtrail")
	t.Setenv("REDIS_URL", "")
	if _, err := Load(); err == nil {
		t.Error("expected error without REDIS_URL")
	}
}

func TestLoad_RejectsBadIntervals(t *testing.T) {
	for _, bad := range []string{"0", "-2", "six"} {
		t.Run(bad, func(t *testing.T) {
			setRequired(t)
			t.Setenv("SCRAPE_INTERVAL_HOURS", bad)
			if _, err := Load(); err == nil {
				t.Errorf("SCRAPE_INTERVAL_HOURS=%q: expected error", bad)
			}
		})
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SCRAPE_INTERVAL_HOURS", "12")
	t.Setenv("FEED_TTL_DAYS", "7")
	t.Setenv("ADZUNA_COUNTRY", "gb")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ScrapeIntervalHours != 12 || cfg.FeedTTLDays != 7 || cfg.AdzunaCountry != "gb" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}
