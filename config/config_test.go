package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"QS_HOST", "QS_PORT", "DATABASE_URL", "TOKEN_SECRET", "TOKEN_TTL", "QS_DEBUG",
		"REDIS_URL", "SUBMIT_RATE", "SUBMIT_BURST", "ADMIN_USER", "ADMIN_PASSWORD", "QS_TRUST_PROXY",
	} {
		t.Setenv(key, "")
	}
}

func TestParseFlagsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := ParseFlags([]string{"-token-secret", "abc"})
	if err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	if cfg.Addr != "0.0.0.0:80" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.DBUrl != "qsurvey.sqlite" {
		t.Errorf("DBUrl = %q", cfg.DBUrl)
	}
	if cfg.TokenTTL != 120*time.Second {
		t.Errorf("TokenTTL = %s", cfg.TokenTTL)
	}
	if cfg.SubmitRate != 1 || cfg.SubmitBurst != 5 {
		t.Errorf("rate limit = %v/%d", cfg.SubmitRate, cfg.SubmitBurst)
	}
	if cfg.TrustProxy {
		t.Error("forwarding headers must not be trusted by default")
	}
	if cfg.Url() != "http://localhost:80" {
		t.Errorf("Url() = %q", cfg.Url())
	}
}

func TestParseFlagsFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("QS_HOST", "127.0.0.1")
	t.Setenv("QS_PORT", "8080")
	t.Setenv("TOKEN_SECRET", "from-env")
	t.Setenv("TOKEN_TTL", "30")
	t.Setenv("QS_DEBUG", "1")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("SUBMIT_RATE", "0.5")
	t.Setenv("SUBMIT_BURST", "10")
	t.Setenv("QS_TRUST_PROXY", "1")

	cfg, err := ParseFlags([]string{"-port", "9090"})
	if err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	if cfg.Addr != "127.0.0.1:9090" {
		t.Errorf("flags should win over env, Addr = %q", cfg.Addr)
	}
	if cfg.TokenSecret != "from-env" || cfg.TokenTTL != 30*time.Second || !cfg.Debug {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" || cfg.SubmitRate != 0.5 || cfg.SubmitBurst != 10 || !cfg.TrustProxy {
		t.Errorf("unexpected rate limit config %+v", cfg)
	}
}

func TestParseFlagsErrors(t *testing.T) {
	tests := map[string][]string{
		"missing secret": {},
		"admin no pass":  {"-token-secret", "x", "-admin-user", "root"},
		"zero rate":      {"-token-secret", "x", "-submit-rate", "0"},
		"zero burst":     {"-token-secret", "x", "-submit-burst", "0"},
		"unknown flag":   {"-token-secret", "x", "-nope"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			if _, err := ParseFlags(args); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
