package config

import (
	"os"
	"testing"
	"time"
)

func TestConfig_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Network != "mainnet" {
		t.Errorf("expected default network mainnet, got %q", cfg.Network)
	}

	if cfg.StorageMode != "console" {
		t.Errorf("expected default storage mode console, got %q", cfg.StorageMode)
	}

	if cfg.FeeCacheTTL != 0 {
		t.Errorf("expected fee caching disabled by default, got %v", cfg.FeeCacheTTL)
	}
}

func TestConfig_UnknownNetwork(t *testing.T) {
	os.Setenv("ETH_NETWORK", "hyperspace")
	t.Cleanup(func() {
		os.Unsetenv("ETH_NETWORK")
	})

	_, err := LoadFromEnv()
	if err == nil {
		t.Fatal("expected error for unknown network")
	}
}

func TestConfig_FeeCacheTTL(t *testing.T) {
	t.Run("custom_ttl", func(t *testing.T) {
		os.Setenv("FEE_CACHE_TTL", "5m")
		t.Cleanup(func() {
			os.Unsetenv("FEE_CACHE_TTL")
		})

		cfg, err := LoadFromEnv()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if cfg.FeeCacheTTL != 5*time.Minute {
			t.Errorf("expected FeeCacheTTL to be 5m, got %v", cfg.FeeCacheTTL)
		}
	})

	t.Run("invalid_ttl_falls_back_to_default", func(t *testing.T) {
		os.Setenv("FEE_CACHE_TTL", "not-a-duration")
		t.Cleanup(func() {
			os.Unsetenv("FEE_CACHE_TTL")
		})

		cfg, err := LoadFromEnv()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if cfg.FeeCacheTTL != 0 {
			t.Errorf("expected FeeCacheTTL default 0, got %v", cfg.FeeCacheTTL)
		}
	})
}

func TestConfig_InvalidStorageMode(t *testing.T) {
	os.Setenv("STORAGE_MODE", "cassandra")
	t.Cleanup(func() {
		os.Unsetenv("STORAGE_MODE")
	})

	_, err := LoadFromEnv()
	if err == nil {
		t.Fatal("expected error for invalid storage mode")
	}
}
