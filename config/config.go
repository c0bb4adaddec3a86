// Package config provides seekwell configuration loading via Viper.
package config

// Config represents the seekwell configuration
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Inference InferenceConfig `mapstructure:"inference"`
	Scrape    ScrapeConfig    `mapstructure:"scrape"`
	Flow      FlowConfig      `mapstructure:"flow"`
	Output    OutputConfig    `mapstructure:"output"`
}

// DatabaseConfig configures the SQLite checkpoint database
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// InferenceConfig selects and configures the LLM backend
type InferenceConfig struct {
	Provider   string           `mapstructure:"provider"` // "openrouter", "local", or "auto"
	OpenRouter OpenRouterConfig `mapstructure:"openrouter"`
	Local      LocalConfig      `mapstructure:"local"`
}

// OpenRouterConfig configures the OpenRouter.ai client
type OpenRouterConfig struct {
	APIKey      string   `mapstructure:"api_key"`
	Model       string   `mapstructure:"model"`
	Temperature *float64 `mapstructure:"temperature"` // nil = client default
	MaxTokens   *int     `mapstructure:"max_tokens"`  // nil = client default
}

// LocalConfig configures a local Ollama-compatible inference server
type LocalConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// ScrapeConfig configures the job board sources
type ScrapeConfig struct {
	PageCount         int          `mapstructure:"page_count"`          // pages fetched per source (default: 2)
	RequestsPerSecond float64      `mapstructure:"requests_per_second"` // per-source pacing (default: 1)
	Naukri            NaukriConfig `mapstructure:"naukri"`
	Hirist            HiristConfig `mapstructure:"hirist"`
}

// NaukriConfig configures the Naukri job API client
type NaukriConfig struct {
	BaseURL string `mapstructure:"base_url"`
	NKParam string `mapstructure:"nkparam"` // session parameter the API requires
}

// HiristConfig configures the Hirist job API client
type HiristConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	SessionCookie string `mapstructure:"session_cookie"`
}

// FlowConfig tunes the workflow engine's domain parameters
type FlowConfig struct {
	ChunkSize      int `mapstructure:"chunk_size"`      // jobs per scoring batch (default: 10)
	ScoreThreshold int `mapstructure:"score_threshold"` // minimum score a job must reach to be shown (default: 5)
}

// OutputConfig configures the result sink
type OutputConfig struct {
	Format string `mapstructure:"format"` // "html" writes a page, "text" prints a report
	Path   string `mapstructure:"path"`   // destination for html output
}
