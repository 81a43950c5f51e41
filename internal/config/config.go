package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ProjectDir   string `json:"project_dir"`
	ResultsDir   string `json:"results_dir"`
	DataCacheDir string `json:"data_cache_dir"`

	// Text-generation collaborator. Provider is "deepseek" (native client)
	// or "openai" (any DeepSeek-compatible endpoint via BaseURL).
	LLMProvider     string `json:"llm_provider"`
	DeepSeekAPIKey  string `json:"deepseek_api_key"`
	DeepSeekModel   string `json:"deepseek_model"`
	DeepSeekBaseURL string `json:"deepseek_base_url"`
	MaxTokens       int    `json:"max_tokens"`

	// Analysis windows and limits.
	NewsDaysLookback     int `json:"news_days_lookback"`
	MoexDaysLookback     int `json:"moex_days_lookback"`
	RecentDataDays       int `json:"recent_data_days"`
	MaxNewsItems         int `json:"max_news_items"`
	MaxIfrsContentLength int `json:"max_ifrs_content_length"`

	// External call limits.
	APITimeout time.Duration `json:"api_timeout"`
	MaxRetries int           `json:"max_retries"`
	RetryDelay time.Duration `json:"retry_delay"`

	MaxConcurrentTasks int `json:"max_concurrent_tasks"`

	CacheEnabled bool          `json:"cache_enabled"`
	CacheTTL     time.Duration `json:"cache_ttl"`

	RiskProfile string `json:"risk_profile"`

	Debug            bool `json:"debug"`
	EinoDebugEnabled bool `json:"eino_debug_enabled"`
	EinoDebugPort    int  `json:"eino_debug_port"`

	// Longport quote source, active only when all three are set.
	LongportAppKey      string `json:"longport_app_key"`
	LongportAppSecret   string `json:"longport_app_secret"`
	LongportAccessToken string `json:"longport_access_token"`
}

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()

	return &Config{
		ProjectDir:   currentDir,
		ResultsDir:   filepath.Join(currentDir, "results"),
		DataCacheDir: filepath.Join(currentDir, "data", "cache"),

		LLMProvider:     "deepseek",
		DeepSeekModel:   "deepseek-chat",
		DeepSeekBaseURL: "https://api.deepseek.com",
		MaxTokens:       8192,

		NewsDaysLookback:     1,
		MoexDaysLookback:     180,
		RecentDataDays:       20,
		MaxNewsItems:         3,
		MaxIfrsContentLength: 1500,

		APITimeout: 30 * time.Second,
		MaxRetries: 3,
		RetryDelay: 1 * time.Second,

		MaxConcurrentTasks: 5,

		CacheEnabled: true,
		CacheTTL:     5 * time.Minute,

		RiskProfile: "balanced",

		Debug:            false,
		EinoDebugEnabled: false,
		EinoDebugPort:    52538,
	}
}

// Load builds the effective configuration: defaults, then .env, then the
// process environment.
func Load() *Config {
	cfg := DefaultConfig()
	_ = godotenv.Load()
	cfg.loadFromEnv()
	return cfg
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("PROJECT_DIR"); val != "" {
		c.ProjectDir = val
	}
	if val := os.Getenv("RESULTS_DIR"); val != "" {
		c.ResultsDir = val
	}
	if val := os.Getenv("DATA_CACHE_DIR"); val != "" {
		c.DataCacheDir = val
	}

	if val := os.Getenv("LLM_PROVIDER"); val != "" {
		c.LLMProvider = strings.ToLower(val)
	}
	if val := os.Getenv("DEEPSEEK_API_KEY"); val != "" {
		c.DeepSeekAPIKey = val
	}
	if val := os.Getenv("DEEPSEEK_MODEL"); val != "" {
		c.DeepSeekModel = val
	}
	if val := os.Getenv("DEEPSEEK_BASE_URL"); val != "" {
		c.DeepSeekBaseURL = val
	}
	if val := os.Getenv("MAX_TOKENS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxTokens = v
		}
	}

	if val := os.Getenv("NEWS_DAYS_LOOKBACK"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.NewsDaysLookback = v
		}
	}
	if val := os.Getenv("MOEX_DAYS_LOOKBACK"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MoexDaysLookback = v
		}
	}
	if val := os.Getenv("RECENT_DATA_DAYS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.RecentDataDays = v
		}
	}
	if val := os.Getenv("MAX_NEWS_ITEMS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxNewsItems = v
		}
	}
	if val := os.Getenv("MAX_IFRS_CONTENT_LENGTH"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxIfrsContentLength = v
		}
	}

	if val := os.Getenv("API_TIMEOUT"); val != "" {
		if v, err := strconv.Atoi(val); err == nil && v > 0 {
			c.APITimeout = time.Duration(v) * time.Second
		}
	}
	if val := os.Getenv("MAX_RETRIES"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxRetries = v
		}
	}
	if val := os.Getenv("RETRY_DELAY"); val != "" {
		if v, err := strconv.Atoi(val); err == nil && v >= 0 {
			c.RetryDelay = time.Duration(v) * time.Second
		}
	}

	if val := os.Getenv("MAX_CONCURRENT_TASKS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxConcurrentTasks = v
		}
	}

	if val := os.Getenv("CACHE_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.CacheEnabled = enabled
		}
	}
	if val := os.Getenv("CACHE_TTL"); val != "" {
		if v, err := strconv.Atoi(val); err == nil && v > 0 {
			c.CacheTTL = time.Duration(v) * time.Second
		}
	}

	if val := os.Getenv("RISK_PROFILE"); val != "" {
		c.RiskProfile = strings.ToLower(val)
	}

	if val := os.Getenv("MOEXGO_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}
	if val := os.Getenv("EINO_DEBUG_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.EinoDebugEnabled = enabled
		}
	}
	if val := os.Getenv("EINO_DEBUG_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.EinoDebugPort = port
		}
	}

	if val := os.Getenv("LONGPORT_APP_KEY"); val != "" {
		c.LongportAppKey = val
	}
	if val := os.Getenv("LONGPORT_APP_SECRET"); val != "" {
		c.LongportAppSecret = val
	}
	if val := os.Getenv("LONGPORT_ACCESS_TOKEN"); val != "" {
		c.LongportAccessToken = val
	}
}

// Validate fails fast on configuration that cannot produce a working run.
func (c *Config) Validate() error {
	if c.DeepSeekAPIKey == "" {
		return fmt.Errorf("DEEPSEEK_API_KEY must be set")
	}
	switch c.LLMProvider {
	case "deepseek", "openai":
	default:
		return fmt.Errorf("unknown LLM provider %q (want deepseek or openai)", c.LLMProvider)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max retries must be at least 1, got %d", c.MaxRetries)
	}
	if c.MaxConcurrentTasks < 1 {
		return fmt.Errorf("max concurrent tasks must be at least 1, got %d", c.MaxConcurrentTasks)
	}
	return nil
}

// LongportEnabled reports whether the optional Longport quote source has
// full credentials.
func (c *Config) LongportEnabled() bool {
	return c.LongportAppKey != "" && c.LongportAppSecret != "" && c.LongportAccessToken != ""
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.ResultsDir, c.DataCacheDir}
	for _, dir := range dirs {
		path := strings.TrimSpace(dir)
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
	}
	return nil
}
