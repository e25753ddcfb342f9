package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Session.PersistMode != PersistUser {
		t.Errorf("expected default persist mode %q, got %q", PersistUser, cfg.Session.PersistMode)
	}
	if cfg.Session.ThreadSync != ThreadSyncReplace {
		t.Errorf("expected default thread sync %q, got %q", ThreadSyncReplace, cfg.Session.ThreadSync)
	}
	if cfg.Session.ReconcileDelay != 500*time.Millisecond {
		t.Errorf("expected 500ms reconcile delay, got %v", cfg.Session.ReconcileDelay)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("GROWWISE_API_URL", "https://api.example.com/")
	t.Setenv("GROWWISE_PERSIST_MODE", "FULL")
	t.Setenv("GROWWISE_THREAD_SYNC", "merge")
	t.Setenv("GROWWISE_RECONCILE_DELAY", "250")
	t.Setenv("GROWWISE_PROMOTE_LOCAL", "off")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.APIBaseURL != "https://api.example.com" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.APIBaseURL)
	}
	if cfg.Session.PersistMode != PersistFull || cfg.Session.ThreadSync != ThreadSyncMerge {
		t.Errorf("unexpected session config: %+v", cfg.Session)
	}
	if cfg.Session.ReconcileDelay != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %v", cfg.Session.ReconcileDelay)
	}
	if cfg.Session.PromoteLocal {
		t.Error("expected PromoteLocal to be disabled")
	}
}

func TestValidateRejectsBadModes(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"persist mode", "GROWWISE_PERSIST_MODE", "everything"},
		{"thread sync", "GROWWISE_THREAD_SYNC", "union"},
		{"api url", "GROWWISE_API_URL", "not a url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tt.key, tt.val)
			}
		})
	}
}
