package config

import (
	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.path", "seekwell.db")

	// Inference defaults
	v.SetDefault("inference.provider", "auto")

	// Local inference (Ollama) defaults
	v.SetDefault("inference.local.base_url", "http://localhost:11434")
	v.SetDefault("inference.local.model", "llama3.2:3b")
	v.SetDefault("inference.local.timeout_seconds", 300)

	// OpenRouter defaults
	v.SetDefault("inference.openrouter.model", "openai/gpt-4o-mini") // Cost-effective default
	v.SetDefault("inference.openrouter.temperature", 0.2)            // Deterministic
	v.SetDefault("inference.openrouter.max_tokens", 4000)            // Rendered pages need headroom

	// Scrape defaults
	v.SetDefault("scrape.page_count", 2)
	v.SetDefault("scrape.requests_per_second", 1.0) // Polite pacing per source
	v.SetDefault("scrape.naukri.base_url", "https://www.naukri.com/jobapi/v3/search")
	v.SetDefault("scrape.hirist.base_url", "https://gladiator.hirist.tech/job/search")

	// Flow defaults
	v.SetDefault("flow.chunk_size", 10)
	v.SetDefault("flow.score_threshold", 5)

	// Output defaults
	v.SetDefault("output.format", "html")
	v.SetDefault("output.path", "index.html")
}

// BindSensitiveEnvVars explicitly binds sensitive configuration to environment variables
func BindSensitiveEnvVars(v *viper.Viper) {
	v.BindEnv("inference.openrouter.api_key", "SEEKWELL_OPENROUTER_API_KEY")
	v.BindEnv("scrape.naukri.nkparam", "SEEKWELL_NAUKRI_NKPARAM")
	v.BindEnv("scrape.hirist.session_cookie", "SEEKWELL_HIRIST_COOKIE")
}
