package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"uigen/internal/config"
)

func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for _, k := range []string{"UIGEN_ENV", "UIGEN_ADDR", "UIGEN_STORAGE", "UIGEN_SQLITE_PATH", "DATABASE_URL", "JWT_SECRET", "UIGEN_LOG_LEVEL"} {
		t.Setenv(k, kv[k])
	}
}

func TestRun_InvalidConfigReturnsError(t *testing.T) {
	setEnv(t, map[string]string{"UIGEN_STORAGE": "bogus", "UIGEN_LOG_LEVEL": "error"})

	err := run()
	if err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestRun_ListenFailureReturnsError(t *testing.T) {
	setEnv(t, map[string]string{
		"UIGEN_ADDR":        ":-1",
		"UIGEN_STORAGE":     "sqlite",
		"UIGEN_SQLITE_PATH": filepath.Join(t.TempDir(), "uigen.db"),
		"UIGEN_LOG_LEVEL":   "error",
	})

	err := run()
	if err == nil || !strings.Contains(err.Error(), "server stopped") {
		t.Fatalf("expected listen error, got %v", err)
	}
}

func TestOpenStorage(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		st, err := openStorage(&config.Config{Storage: config.StorageMemory})
		if err != nil {
			t.Fatalf("openStorage: %v", err)
		}
		if err := st.ping(context.Background()); err != nil {
			t.Errorf("ping: %v", err)
		}
		if err := st.close(); err != nil {
			t.Errorf("close: %v", err)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		st, err := openStorage(&config.Config{
			Storage:    config.StorageSQLite,
			SQLitePath: filepath.Join(t.TempDir(), "uigen.db"),
		})
		if err != nil {
			t.Fatalf("openStorage: %v", err)
		}
		if err := st.ping(context.Background()); err != nil {
			t.Errorf("ping: %v", err)
		}
		if err := st.close(); err != nil {
			t.Fatalf("close: %v", err)
		}
		if err := st.ping(context.Background()); err == nil {
			t.Error("expected ping to fail after close")
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if _, err := openStorage(&config.Config{Storage: "bogus"}); err == nil {
			t.Error("expected error for unknown backend")
		}
	})
}
