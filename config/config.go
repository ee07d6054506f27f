// Package config loads the memory engine's configuration from layered
// defaults, an optional YAML file, and environment variable overrides.
package config

import "time"

// Config is the complete configuration structure for the memory engine.
type Config struct {
	// Working is the working-tier lifecycle configuration.
	Working WorkingConfig `yaml:"working" env:"WORKING"`

	// Retrieval holds the escalation-cascade thresholds and budgets.
	Retrieval RetrievalConfig `yaml:"retrieval" env:"RETRIEVAL"`

	// Confidence holds the sub-score weights used by the confidence scorer.
	Confidence ConfidenceConfig `yaml:"confidence" env:"CONFIDENCE"`

	// Consolidation configures the background consolidation pass.
	Consolidation ConsolidationConfig `yaml:"consolidation" env:"CONSOLIDATION"`

	// Archiver configures the hot-to-cold archival pass.
	Archiver ArchiverConfig `yaml:"archiver" env:"ARCHIVER"`

	// Rehydrator configures the cold-to-hot promotion pass.
	Rehydrator RehydratorConfig `yaml:"rehydrator" env:"REHYDRATOR"`

	// Compactor configures the TTL-based deletion pass.
	Compactor CompactorConfig `yaml:"compactor" env:"COMPACTOR"`

	// Embedding configures the fallback embedder.
	Embedding EmbeddingConfig `yaml:"embedding" env:"EMBEDDING"`

	// Storage holds local-disk paths for the reference backends.
	Storage StorageConfig `yaml:"storage" env:"STORAGE"`

	// Redis holds the optional Redis-backed metadata store settings.
	Redis RedisConfig `yaml:"redis" env:"REDIS"`

	// Database holds the optional GORM-backed metadata store settings.
	Database DatabaseConfig `yaml:"database" env:"DATABASE"`

	// Log holds structured-logging settings.
	Log LogConfig `yaml:"log" env:"LOG"`
}

// WorkingConfig controls the working memory tier.
type WorkingConfig struct {
	// DefaultTTLSeconds is applied to working-type items that omit a TTL.
	DefaultTTLSeconds int `yaml:"default_ttl_seconds" env:"DEFAULT_TTL_SECONDS"`
}

// RetrievalConfig holds the thresholds and budgets driving the
// confidence-gated escalation cascade.
type RetrievalConfig struct {
	// TopK is the TopK that System.RetrieveText sets on the queries it
	// builds; NewSystem also caps the retrieval plan's MaxResults at five
	// times TopK. The orchestrator does not truncate results to a query's
	// own TopK.
	TopK int `yaml:"top_k" env:"TOP_K"`
	// HotConfidence is the minimum confidence after the hot sweep below
	// which archive escalation is attempted.
	HotConfidence float64 `yaml:"hot_confidence" env:"HOT_CONFIDENCE"`
	// ColdFetchConfidence is the minimum confidence after archive
	// escalation below which cold hydration is attempted.
	ColdFetchConfidence float64 `yaml:"cold_fetch_confidence" env:"COLD_FETCH_CONFIDENCE"`
	// MaxColdFetches bounds how many cold objects one retrieve call may
	// hydrate.
	MaxColdFetches int `yaml:"max_cold_fetches" env:"MAX_COLD_FETCHES"`
	// TokenBudget is copied into the retrieval plan's MaxContextTokens.
	// Block assembly does not truncate blocks to it.
	TokenBudget int `yaml:"token_budget" env:"TOKEN_BUDGET"`
}

// ConfidenceConfig holds the five sub-score weights; they must sum to 1.0.
type ConfidenceConfig struct {
	SemanticRelevanceWeight float64 `yaml:"semantic_relevance_weight" env:"SEMANTIC_RELEVANCE_WEIGHT"`
	CoverageWeight          float64 `yaml:"coverage_weight" env:"COVERAGE_WEIGHT"`
	TemporalFitWeight       float64 `yaml:"temporal_fit_weight" env:"TEMPORAL_FIT_WEIGHT"`
	AuthorityWeight         float64 `yaml:"authority_weight" env:"AUTHORITY_WEIGHT"`
	ConsistencyWeight       float64 `yaml:"consistency_weight" env:"CONSISTENCY_WEIGHT"`
	// AcceptThreshold is not read by NewSystem. The scorer's
	// recommendation bands are fixed: "accept" at a total of 0.75 or more.
	AcceptThreshold float64 `yaml:"accept_threshold" env:"ACCEPT_THRESHOLD"`
}

// ConsolidationConfig controls the owner-scoped consolidation pass.
type ConsolidationConfig struct {
	// SemanticMinCount is the minimum tag repetition count before a
	// "recurring tag" semantic item is synthesized.
	SemanticMinCount int `yaml:"semantic_min_count" env:"SEMANTIC_MIN_COUNT"`
	// PerceptualSummaryLimit caps how many perceptual snippets are
	// joined into one "Perceptual highlights" episodic item.
	PerceptualSummaryLimit int `yaml:"perceptual_summary_limit" env:"PERCEPTUAL_SUMMARY_LIMIT"`
}

// ArchiverConfig controls the hot-to-cold archival pass.
type ArchiverConfig struct {
	// IdleSeconds is not read by the archiver, which archives every hot
	// non-working item of the owner regardless of how recently it was
	// accessed.
	IdleSeconds int `yaml:"idle_seconds" env:"IDLE_SECONDS"`
	// OnFlush controls whether Flush runs the archiver at all.
	OnFlush bool `yaml:"on_flush" env:"ON_FLUSH"`
}

// RehydratorConfig controls the cold-to-hot promotion pass.
type RehydratorConfig struct {
	// AccessThreshold is the access count at or above which a cold item
	// is promoted back to hot.
	AccessThreshold int `yaml:"access_threshold" env:"ACCESS_THRESHOLD"`
}

// CompactorConfig controls TTL-based deletion.
type CompactorConfig struct {
	// SweepIntervalSeconds documents the recommended caller-side cadence
	// for invoking the compactor pass; the compactor itself is a
	// synchronous call, not a timer.
	SweepIntervalSeconds int `yaml:"sweep_interval_seconds" env:"SWEEP_INTERVAL_SECONDS"`
}

// EmbeddingConfig controls the deterministic fallback embedder.
type EmbeddingConfig struct {
	Dimension int `yaml:"dimension" env:"DIMENSION"`
}

// StorageConfig holds local-disk paths used by the reference ObjectStore.
type StorageConfig struct {
	// ColdRoot is the directory object payloads are written under.
	ColdRoot string `yaml:"cold_root" env:"COLD_ROOT"`
	// DailyNotesRoot is not read by NewSystem or NewDefaultSystem; the
	// archiver's daily-notes files are written through the object store
	// under ColdRoot.
	DailyNotesRoot string `yaml:"daily_notes_root" env:"DAILY_NOTES_ROOT"`
}

// RedisConfig configures the optional Redis-backed MetadataStore.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled" env:"ENABLED"`
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
	KeyPrefix string `yaml:"key_prefix" env:"KEY_PREFIX"`
}

// DatabaseConfig configures the optional GORM-backed MetadataStore.
type DatabaseConfig struct {
	Enabled bool   `yaml:"enabled" env:"ENABLED"`
	DSN     string `yaml:"dsn" env:"DSN"`
}

// LogConfig configures the zap logger shared across components.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" env:"LEVEL"`
	// Encoding is json or console.
	Encoding string `yaml:"encoding" env:"ENCODING"`
	// Development wires zap.NewDevelopment semantics when true.
	Development bool `yaml:"development" env:"DEVELOPMENT"`
}

// RetrievalBudget returns a copy of the full RetrievalConfig, for callers
// that only want the cascade knobs.
func (c *Config) RetrievalBudget() RetrievalConfig {
	return c.Retrieval
}

// sumWeights is a helper for validators and tests.
func (c ConfidenceConfig) sumWeights() float64 {
	return c.SemanticRelevanceWeight + c.CoverageWeight + c.TemporalFitWeight +
		c.AuthorityWeight + c.ConsistencyWeight
}

// Duration is a small helper so YAML durations expressed in seconds read
// naturally at call sites that want a time.Duration.
func Duration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}
