package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.JWTIssuer != "workeye-admin" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "workeye-admin")
	}
	if cfg.JWTAudience != "workeye-api" {
		t.Errorf("JWTAudience = %q, want %q", cfg.JWTAudience, "workeye-api")
	}
	if cfg.RequestTimeout != "10s" {
		t.Errorf("RequestTimeout = %q, want %q", cfg.RequestTimeout, "10s")
	}
	if cfg.ArchiveKafkaTopic != "workeye-activity" {
		t.Errorf("ArchiveKafkaTopic = %q, want default", cfg.ArchiveKafkaTopic)
	}
	if cfg.KafkaGroupID != "workeye-archive-worker" {
		t.Errorf("KafkaGroupID = %q, want default", cfg.KafkaGroupID)
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("JWT_ISSUER", "custom-issuer")
	os.Setenv("REQUEST_TIMEOUT", "3s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}
	if cfg.JWTIssuer != "custom-issuer" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "custom-issuer")
	}
	if got := cfg.RequestTimeoutDuration(); got != 3*time.Second {
		t.Errorf("RequestTimeoutDuration = %v, want 3s", got)
	}
}

func TestLoad_ProductionRequiresJWTSecret(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("APP_ENV", "production")

	if _, err := Load(); err == nil {
		t.Fatal("Load should fail in production without JWT_SECRET")
	}

	os.Setenv("JWT_SECRET", "s3cret")
	if _, err := Load(); err != nil {
		t.Fatalf("Load with JWT_SECRET: %v", err)
	}
}

func TestRequestTimeoutDuration_Invalid(t *testing.T) {
	cfg := &Config{RequestTimeout: "not-a-duration"}
	if got := cfg.RequestTimeoutDuration(); got != 10*time.Second {
		t.Errorf("RequestTimeoutDuration = %v, want 10s fallback", got)
	}
}

func TestArchiveKafkaBrokersList(t *testing.T) {
	cfg := &Config{ArchiveKafkaBrokers: "localhost:9092, broker2:9092 ,, "}
	got := cfg.ArchiveKafkaBrokersList()
	if len(got) != 2 {
		t.Fatalf("brokers = %v, want 2 entries", got)
	}
	if got[0] != "localhost:9092" || got[1] != "broker2:9092" {
		t.Errorf("brokers = %v", got)
	}

	empty := &Config{}
	if list := empty.ArchiveKafkaBrokersList(); list != nil {
		t.Errorf("empty brokers = %v, want nil", list)
	}
}
