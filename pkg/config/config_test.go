package config

import (
	"testing"
	"time"
)

func TestEnvList_TrimsAndSkipsEmpty(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,http://b.example:5173,")
	got := envList("ALLOWED_ORIGINS", "")
	if len(got) != 2 {
		t.Fatalf("expected 2 origins, got %d (%v)", len(got), got)
	}
	if got[0] != "https://a.example" || got[1] != "http://b.example:5173" {
		t.Fatalf("unexpected origins: %v", got)
	}
}

func TestLoad_PortFallbackAndDurations(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_TTL_HOURS", "2")
	t.Setenv("HOTEL_CACHE_TTL_SEC", "not-a-number")

	cfg := Load()
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("expected :9090, got %q", cfg.HTTPAddr)
	}
	if cfg.Session.TTL != 2*time.Hour {
		t.Fatalf("expected 2h session ttl, got %s", cfg.Session.TTL)
	}
	if cfg.Redis.HotelTTL != 300*time.Second {
		t.Fatalf("expected default cache ttl on bad input, got %s", cfg.Redis.HotelTTL)
	}
}

func TestSMTPEnabled(t *testing.T) {
	if (SMTPConfig{Host: "smtp.example.com"}).Enabled() {
		t.Fatalf("expected disabled without sender address")
	}
	if !(SMTPConfig{Host: "smtp.example.com", From: "noreply@example.com"}).Enabled() {
		t.Fatalf("expected enabled")
	}
}
