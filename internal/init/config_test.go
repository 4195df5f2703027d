package config

import (
	"testing"
	"time"
)

func TestInit_Defaults(t *testing.T) {
	c := Init()

	if c.Mode != "server" {
		t.Fatalf("expected server mode, got %q", c.Mode)
	}
	if c.DBDriver != "sqlite" {
		t.Fatalf("expected sqlite driver, got %q", c.DBDriver)
	}
	if c.StatusURL != defaultStatusURL {
		t.Fatalf("unexpected status url %q", c.StatusURL)
	}
	if c.KafkaBroker != "" {
		t.Fatalf("kafka should be disabled by default, got %q", c.KafkaBroker)
	}
	if c.MediaBaseURL != "/static/" {
		t.Fatalf("unexpected media base url %q", c.MediaBaseURL)
	}
}

func TestInit_EnvOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("MEDIA_BACKEND", "gcs")
	t.Setenv("GCS_BUCKET", "feed-media")

	c := Init()

	if c.DBDriver != "postgres" {
		t.Fatalf("expected postgres, got %q", c.DBDriver)
	}
	if c.SessionTTL != 90*time.Minute {
		t.Fatalf("expected 90m, got %v", c.SessionTTL)
	}
	if c.BcryptCost != 4 {
		t.Fatalf("expected cost 4, got %d", c.BcryptCost)
	}
	if c.MediaBaseURL != "https://storage.googleapis.com/feed-media/" {
		t.Fatalf("unexpected media base url %q", c.MediaBaseURL)
	}
}

func TestInit_ReturnsFreshConfig(t *testing.T) {
	t.Setenv("KAFKA_BROKER", "localhost:9092")
	first := Init()
	t.Setenv("KAFKA_BROKER", "")
	second := Init()

	if first == second {
		t.Fatalf("each Init should build its own config")
	}
	if first.KafkaBroker != "localhost:9092" || second.KafkaBroker != "" {
		t.Fatalf("unexpected brokers %q / %q", first.KafkaBroker, second.KafkaBroker)
	}
}

func TestParseDuration_Fallback(t *testing.T) {
	if d := parseDuration("not-a-duration", 3*time.Second); d != 3*time.Second {
		t.Fatalf("expected fallback, got %v", d)
	}
}
