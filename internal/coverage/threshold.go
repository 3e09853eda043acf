package coverage

// Threshold is the minimum acceptable percentage per category.
type Threshold struct {
	Statements float64 `json:"statements" yaml:"statements" mapstructure:"statements"`
	Branches   float64 `json:"branches" yaml:"branches" mapstructure:"branches"`
	Functions  float64 `json:"functions" yaml:"functions" mapstructure:"functions"`
	Lines      float64 `json:"lines" yaml:"lines" mapstructure:"lines"`
}

// UniformThreshold returns a threshold with the same value for every category.
func UniformThreshold(pct float64) Threshold {
	return Threshold{Statements: pct, Branches: pct, Functions: pct, Lines: pct}
}

// MeetsThreshold reports whether every category of entry is at or above its
// threshold.
func MeetsThreshold(entry Entry, threshold Threshold) bool {
	return entry.Lines.Pct >= threshold.Lines &&
		entry.Functions.Pct >= threshold.Functions &&
		entry.Branches.Pct >= threshold.Branches &&
		entry.Statements.Pct >= threshold.Statements
}
