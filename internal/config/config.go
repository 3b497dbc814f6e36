// Package config loads the Symbol Orchestration Core's configuration from
// YAML or TOML into a single Config struct, nested per concern the way
// internal/config does in the teacher repo, with defaults applied by a
// sanitize pass (internal/agent.sanitizeLoopConfig's pattern) rather than
// scattered zero-value fallbacks in business logic.
package config

import "time"

// Config is the top-level configuration for the symborchd process.
type Config struct {
	Server        ServerConfig        `yaml:"server" toml:"server"`
	LLM           LLMConfig           `yaml:"llm" toml:"llm"`
	Editor        EditorConfig        `yaml:"editor" toml:"editor"`
	Plan          PlanConfig          `yaml:"plan" toml:"plan"`
	Rerank        RerankConfig        `yaml:"rerank" toml:"rerank"`
	Search        SearchConfig        `yaml:"search" toml:"search"`
	Observability ObservabilityConfig `yaml:"observability" toml:"observability"`
}

// ServerConfig configures the HTTP surface described in spec.md §6.3.
type ServerConfig struct {
	ListenAddr      string        `yaml:"listen_addr" toml:"listen_addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
}

// LLMProviderConfig carries one provider's default credentials and model,
// mirroring the teacher's internal/config.LLMProviderConfig.
type LLMProviderConfig struct {
	APIKey       string `yaml:"api_key" toml:"api_key"`
	DefaultModel string `yaml:"default_model" toml:"default_model"`
	BaseURL      string `yaml:"base_url" toml:"base_url"`
	AWSRegion    string `yaml:"aws_region" toml:"aws_region"`
}

// LLMConfig configures the broker (spec.md §4.A).
type LLMConfig struct {
	DefaultProvider string                       `yaml:"default_provider" toml:"default_provider"`
	Providers       map[string]LLMProviderConfig `yaml:"providers" toml:"providers"`
	FailoverPath    string                       `yaml:"failover_provider" toml:"failover_provider"`
	RateLimitRPS    float64                      `yaml:"rate_limit_rps" toml:"rate_limit_rps"`
	RateLimitBurst  int                          `yaml:"rate_limit_burst" toml:"rate_limit_burst"`
}

// EditorConfig configures the editor RPC client (spec.md §6.1).
type EditorConfig struct {
	BaseURL string        `yaml:"base_url" toml:"base_url"`
	Timeout time.Duration `yaml:"timeout" toml:"timeout"`
}

// PlanConfig configures plan persistence (spec.md §4.E, §6.4).
type PlanConfig struct {
	StorageDir            string `yaml:"storage_dir" toml:"storage_dir"`
	PrepareContextWorkers int    `yaml:"prepare_context_workers" toml:"prepare_context_workers"`
}

// RerankConfig configures the rerank/filter layer (spec.md §4.F).
type RerankConfig struct {
	TokenizerEncoding    string `yaml:"tokenizer_encoding" toml:"tokenizer_encoding"`
	ListwiseTokenBudget  int    `yaml:"listwise_token_budget" toml:"listwise_token_budget"`
	PointwiseConcurrency int    `yaml:"pointwise_concurrency" toml:"pointwise_concurrency"`
}

// SearchConfig configures the iterative search loop (spec.md §4.G).
type SearchConfig struct {
	MaxIterations int `yaml:"max_iterations" toml:"max_iterations"`
}

// ObservabilityConfig configures metrics and tracing export.
type ObservabilityConfig struct {
	MetricsAddr    string `yaml:"metrics_addr" toml:"metrics_addr"`
	OTLPEndpoint   string `yaml:"otlp_endpoint" toml:"otlp_endpoint"`
	TraceSampleOne int    `yaml:"trace_sample_one_in" toml:"trace_sample_one_in"`
}

// Default returns a Config with every field set to its production default.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:      ":7717",
			ShutdownTimeout: 10 * time.Second,
		},
		LLM: LLMConfig{
			RateLimitRPS:   5,
			RateLimitBurst: 10,
		},
		Editor: EditorConfig{
			Timeout: 30 * time.Second,
		},
		Plan: PlanConfig{
			StorageDir:            ".symborch/plans",
			PrepareContextWorkers: 3,
		},
		Rerank: RerankConfig{
			TokenizerEncoding:    "cl100k_base",
			ListwiseTokenBudget:  4000,
			PointwiseConcurrency: 25,
		},
		Search: SearchConfig{
			MaxIterations: 3,
		},
		Observability: ObservabilityConfig{
			MetricsAddr:    ":9090",
			TraceSampleOne: 1,
		},
	}
}

// sanitize fills zero-valued fields with their Default() counterpart, the
// way internal/agent.sanitizeLoopConfig does for LoopConfig.
func sanitize(cfg *Config) *Config {
	if cfg == nil {
		return Default()
	}
	out := *cfg
	defaults := Default()

	if out.Server.ListenAddr == "" {
		out.Server.ListenAddr = defaults.Server.ListenAddr
	}
	if out.Server.ShutdownTimeout <= 0 {
		out.Server.ShutdownTimeout = defaults.Server.ShutdownTimeout
	}
	if out.LLM.RateLimitRPS <= 0 {
		out.LLM.RateLimitRPS = defaults.LLM.RateLimitRPS
	}
	if out.LLM.RateLimitBurst <= 0 {
		out.LLM.RateLimitBurst = defaults.LLM.RateLimitBurst
	}
	if out.Editor.Timeout <= 0 {
		out.Editor.Timeout = defaults.Editor.Timeout
	}
	if out.Plan.StorageDir == "" {
		out.Plan.StorageDir = defaults.Plan.StorageDir
	}
	if out.Plan.PrepareContextWorkers <= 0 {
		out.Plan.PrepareContextWorkers = defaults.Plan.PrepareContextWorkers
	}
	if out.Rerank.TokenizerEncoding == "" {
		out.Rerank.TokenizerEncoding = defaults.Rerank.TokenizerEncoding
	}
	if out.Rerank.ListwiseTokenBudget <= 0 {
		out.Rerank.ListwiseTokenBudget = defaults.Rerank.ListwiseTokenBudget
	}
	if out.Rerank.PointwiseConcurrency <= 0 {
		out.Rerank.PointwiseConcurrency = defaults.Rerank.PointwiseConcurrency
	}
	if out.Search.MaxIterations <= 0 {
		out.Search.MaxIterations = defaults.Search.MaxIterations
	}
	if out.Observability.MetricsAddr == "" {
		out.Observability.MetricsAddr = defaults.Observability.MetricsAddr
	}
	if out.Observability.TraceSampleOne <= 0 {
		out.Observability.TraceSampleOne = defaults.Observability.TraceSampleOne
	}
	return &out
}
