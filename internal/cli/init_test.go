package cli

import (
	"context"
	"testing"

	"gastos/internal/config"
	"gastos/internal/log"
)

func baseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("SESSION_SECRET", "a-long-enough-secret")
	t.Setenv("PORT", "8080")
	t.Setenv("SEED_FILE", "")
	t.Setenv("AMQP_URL", "")
}

func TestLoadConfigRunsExtraChecks(t *testing.T) {
	baseEnv(t)
	if _, err := LoadConfig(); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if _, err := LoadConfig((*config.Config).ValidateMirror); err == nil {
		t.Fatal("expected mirror validation to fail without AMQP and Sheets settings")
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	baseEnv(t)
	t.Setenv("SESSION_SECRET", "short")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected validation error for a short session secret")
	}
}

func TestOpenStoreMemory(t *testing.T) {
	baseEnv(t)
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	res, err := OpenStore(context.Background(), cfg, log.Discard())
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer res.Cleanup()
	if res.Store == nil {
		t.Fatal("nil store")
	}
}
