package config

import (
	"reflect"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		PostgresDB:         "dispensa",
		PostgresHost:       "localhost",
		CooldownDurationMs: 30000,
		MinimumCoupons:     20,
		ReplenishCount:     50,
		InitialSeedCount:   100,
		RateLimitRPS:       5,
		RateLimitBurst:     10,
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"zero seed count allowed", func(c *Config) { c.InitialSeedCount = 0 }, false},
		{"zero floor allowed", func(c *Config) { c.MinimumCoupons = 0 }, false},
		{"missing database", func(c *Config) { c.PostgresDB = "" }, true},
		{"missing host", func(c *Config) { c.PostgresHost = "" }, true},
		{"zero cooldown", func(c *Config) { c.CooldownDurationMs = 0 }, true},
		{"negative cooldown", func(c *Config) { c.CooldownDurationMs = -1 }, true},
		{"negative floor", func(c *Config) { c.MinimumCoupons = -1 }, true},
		{"zero replenish count", func(c *Config) { c.ReplenishCount = 0 }, true},
		{"negative seed count", func(c *Config) { c.InitialSeedCount = -5 }, true},
		{"zero rate limit", func(c *Config) { c.RateLimitRPS = 0 }, true},
		{"zero burst", func(c *Config) { c.RateLimitBurst = 0 }, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Error("Validate() = nil, want error")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Validate() = %s, want nil", err)
			}
		})
	}
}

func TestCooldownDuration(t *testing.T) {
	cfg := &Config{CooldownDurationMs: 30000}
	if got := cfg.CooldownDuration(); got != 30*time.Second {
		t.Errorf("CooldownDuration() = %s, want 30s", got)
	}
}

func TestGetEnvAsInt64(t *testing.T) {
	t.Setenv("TEST_COOLDOWN", "45000")
	if got := getEnvAsInt64("TEST_COOLDOWN", 30000); got != 45000 {
		t.Errorf("getEnvAsInt64 = %d, want 45000", got)
	}
	if got := getEnvAsInt64("TEST_COOLDOWN_MISSING", 30000); got != 30000 {
		t.Errorf("getEnvAsInt64 = %d, want the default 30000", got)
	}
	t.Setenv("TEST_COOLDOWN_BAD", "not-a-number")
	if got := getEnvAsInt64("TEST_COOLDOWN_BAD", 30000); got != 30000 {
		t.Errorf("getEnvAsInt64 = %d, want the default on a parse failure", got)
	}
}

func TestGetEnvAsFloat(t *testing.T) {
	t.Setenv("TEST_RPS", "2.5")
	if got := getEnvAsFloat("TEST_RPS", 5); got != 2.5 {
		t.Errorf("getEnvAsFloat = %v, want 2.5", got)
	}
	if got := getEnvAsFloat("TEST_RPS_MISSING", 5); got != 5 {
		t.Errorf("getEnvAsFloat = %v, want the default 5", got)
	}
}

func TestGetEnvAsList(t *testing.T) {
	cases := []struct {
		name  string
		value string
		want  []string
	}{
		{"single value", "*", []string{"*"}},
		{"multiple origins", "https://a.example,https://b.example", []string{"https://a.example", "https://b.example"}},
		{"whitespace trimmed", " https://a.example , https://b.example ", []string{"https://a.example", "https://b.example"}},
		{"empty entries dropped", "https://a.example,,", []string{"https://a.example"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("TEST_ORIGINS", tc.value)
			if got := getEnvAsList("TEST_ORIGINS", "*"); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("getEnvAsList = %v, want %v", got, tc.want)
			}
		})
	}
}
