package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LLMProvider != "deepseek" {
		t.Errorf("provider: got %q", cfg.LLMProvider)
	}
	if cfg.MoexDaysLookback != 180 || cfg.NewsDaysLookback != 1 || cfg.RecentDataDays != 20 {
		t.Errorf("lookback defaults wrong: %d/%d/%d",
			cfg.MoexDaysLookback, cfg.NewsDaysLookback, cfg.RecentDataDays)
	}
	if cfg.MaxNewsItems != 3 || cfg.MaxIfrsContentLength != 1500 {
		t.Errorf("limit defaults wrong: %d/%d", cfg.MaxNewsItems, cfg.MaxIfrsContentLength)
	}
	if cfg.APITimeout != 30*time.Second || cfg.MaxRetries != 3 {
		t.Errorf("API defaults wrong: %v/%d", cfg.APITimeout, cfg.MaxRetries)
	}
	if cfg.MaxConcurrentTasks != 5 {
		t.Errorf("concurrency default: got %d, want 5", cfg.MaxConcurrentTasks)
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("DEEPSEEK_API_KEY", "sk-test")
	t.Setenv("DEEPSEEK_MODEL", "deepseek-reasoner")
	t.Setenv("LLM_PROVIDER", "OPENAI")
	t.Setenv("MOEX_DAYS_LOOKBACK", "90")
	t.Setenv("MAX_CONCURRENT_TASKS", "2")
	t.Setenv("API_TIMEOUT", "10")
	t.Setenv("CACHE_ENABLED", "false")

	cfg := DefaultConfig()
	cfg.loadFromEnv()

	if cfg.DeepSeekAPIKey != "sk-test" {
		t.Errorf("api key: got %q", cfg.DeepSeekAPIKey)
	}
	if cfg.DeepSeekModel != "deepseek-reasoner" {
		t.Errorf("model: got %q", cfg.DeepSeekModel)
	}
	if cfg.LLMProvider != "openai" {
		t.Errorf("provider must be lowercased: got %q", cfg.LLMProvider)
	}
	if cfg.MoexDaysLookback != 90 {
		t.Errorf("lookback override: got %d", cfg.MoexDaysLookback)
	}
	if cfg.MaxConcurrentTasks != 2 {
		t.Errorf("concurrency override: got %d", cfg.MaxConcurrentTasks)
	}
	if cfg.APITimeout != 10*time.Second {
		t.Errorf("timeout override: got %v", cfg.APITimeout)
	}
	if cfg.CacheEnabled {
		t.Error("cache must be disabled by override")
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Error("missing API key must fail validation")
	}

	cfg.DeepSeekAPIKey = "sk-test"
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	cfg.LLMProvider = "anthropic"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown provider must fail validation")
	}

	cfg.LLMProvider = "deepseek"
	cfg.MaxConcurrentTasks = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero concurrency must fail validation")
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.ResultsDir = filepath.Join(dir, "results")
	cfg.DataCacheDir = filepath.Join(dir, "data", "cache")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, d := range []string{cfg.ResultsDir, cfg.DataCacheDir} {
		if _, err := os.Stat(d); err != nil {
			t.Errorf("directory %s not created: %v", d, err)
		}
	}
}

func TestLongportEnabled(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.LongportEnabled() {
		t.Error("longport must be disabled without credentials")
	}
	cfg.LongportAppKey = "k"
	cfg.LongportAppSecret = "s"
	cfg.LongportAccessToken = "t"
	if !cfg.LongportEnabled() {
		t.Error("longport must be enabled with full credentials")
	}
}
