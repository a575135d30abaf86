package engine

// Scoring presets per test type. Abstract and spatial profiles weight
// difficulty more heavily than raw accuracy; the generic default covers
// any tag not listed here.
var presets = map[string]ScoringConfig{
	TestNumerical:   {TimeWeight: 0.30, DifficultyWeight: 0.40, AccuracyWeight: 1.00},
	TestVerbal:      {TimeWeight: 0.25, DifficultyWeight: 0.35, AccuracyWeight: 1.00},
	TestLogical:     {TimeWeight: 0.35, DifficultyWeight: 0.45, AccuracyWeight: 1.00},
	TestAbstract:    {TimeWeight: 0.30, DifficultyWeight: 0.60, AccuracyWeight: 0.90},
	TestSpatial:     {TimeWeight: 0.40, DifficultyWeight: 0.50, AccuracyWeight: 0.95},
	TestSituational: {TimeWeight: 0.15, DifficultyWeight: 0.30, AccuracyWeight: 1.00},
	TestTechnical:   {TimeWeight: 0.25, DifficultyWeight: 0.50, AccuracyWeight: 1.00},
}

// DefaultScoringConfig is the fallback for unknown test types.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{TimeWeight: 0.30, DifficultyWeight: 0.40, AccuracyWeight: 1.00}
}

// PresetFor returns the scoring preset for a test type, falling back to
// the generic default.
func PresetFor(testType string) ScoringConfig {
	if cfg, ok := presets[testType]; ok {
		return cfg
	}
	return DefaultScoringConfig()
}

// DefaultScoreWeight is applied when a raw question carries no weight
// information of its own.
func DefaultScoreWeight() ScoreWeight {
	return ScoreWeight{Base: 5, DifficultyBonus: 2, TimeFactor: 1}
}
