package config

// DefaultConfig returns the configuration defaults described in the
// external interfaces table: conservative thresholds that favor the hot
// tier and only escalate when confidence genuinely warrants it.
func DefaultConfig() *Config {
	return &Config{
		Working: WorkingConfig{
			DefaultTTLSeconds: 3600,
		},
		Retrieval: RetrievalConfig{
			TopK:                10,
			HotConfidence:       0.62,
			ColdFetchConfidence: 0.58,
			MaxColdFetches:      20,
			TokenBudget:         600,
		},
		Confidence: ConfidenceConfig{
			SemanticRelevanceWeight: 0.35,
			CoverageWeight:          0.20,
			TemporalFitWeight:       0.20,
			AuthorityWeight:         0.15,
			ConsistencyWeight:       0.10,
			AcceptThreshold:         0.62,
		},
		Consolidation: ConsolidationConfig{
			SemanticMinCount:       2,
			PerceptualSummaryLimit: 5,
		},
		Archiver: ArchiverConfig{
			IdleSeconds: 86400,
			OnFlush:     true,
		},
		Rehydrator: RehydratorConfig{
			AccessThreshold: 3,
		},
		Compactor: CompactorConfig{
			SweepIntervalSeconds: 300,
		},
		Embedding: EmbeddingConfig{
			Dimension: 64,
		},
		Storage: StorageConfig{
			ColdRoot:       "./data/cold",
			DailyNotesRoot: "./data/daily_notes",
		},
		Redis: RedisConfig{
			Enabled:   false,
			Addr:      "localhost:6379",
			DB:        0,
			KeyPrefix: "memengine",
		},
		Database: DatabaseConfig{
			Enabled: false,
			DSN:     "file::memory:?cache=shared",
		},
		Log: LogConfig{
			Level:       "info",
			Encoding:    "console",
			Development: true,
		},
	}
}
