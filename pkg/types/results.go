package types

// ValidationResult is the outcome of validating a SQL string.
type ValidationResult struct {
	IsValid     bool     `json:"isValid"     yaml:"isValid"`
	Formatted   string   `json:"formatted"   yaml:"formatted"`
	Warnings    []string `json:"warnings"    yaml:"warnings"`
	Suggestions []string `json:"suggestions" yaml:"suggestions"`
}

// SchemaInfo describes the usual shape of a table type.
type SchemaInfo struct {
	CommonColumns []string `json:"commonColumns" yaml:"commonColumns"`
	Relationships []string `json:"relationships" yaml:"relationships"`
	Examples      []string `json:"examples"      yaml:"examples"`
}

// Clone returns a deep copy of the schema info.
func (s *SchemaInfo) Clone() *SchemaInfo {
	if s == nil {
		return nil
	}
	return &SchemaInfo{
		CommonColumns: append([]string(nil), s.CommonColumns...),
		Relationships: append([]string(nil), s.Relationships...),
		Examples:      append([]string(nil), s.Examples...),
	}
}

// Component is one recognised clause of an explained query.
type Component struct {
	Part        string `json:"part"        yaml:"part"`
	Description string `json:"description" yaml:"description"`
}

// ExplanationResult is a plain-language description of a SQL string.
type ExplanationResult struct {
	Explanation string      `json:"explanation" yaml:"explanation"`
	Components  []Component `json:"components"  yaml:"components"`
}

// Parts returns the clause names of the components in order.
func (e *ExplanationResult) Parts() []string {
	parts := make([]string, 0, len(e.Components))
	for _, c := range e.Components {
		parts = append(parts, c.Part)
	}
	return parts
}

// OptimizationResult holds optimization notes for a SQL string.
type OptimizationResult struct {
	Optimized    string   `json:"optimized"    yaml:"optimized"`
	Improvements []string `json:"improvements" yaml:"improvements"`
	Performance  string   `json:"performance"  yaml:"performance"`
}

// ScoreResult is the grade a scorer assigned to a response.
type ScoreResult struct {
	Scorer string  `json:"scorer" yaml:"scorer"`
	Score  float64 `json:"score"  yaml:"score"`
	Reason string  `json:"reason" yaml:"reason"`
}

// InjectionResult reports whether a string looks like a SQL injection payload.
type InjectionResult struct {
	IsSQLi      bool   `json:"isSQLi"                yaml:"isSQLi"`
	Fingerprint string `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
}

// Position represents a position in the source code
type Position struct {
	Line   int32 `json:"line"   yaml:"line"`
	Column int32 `json:"column" yaml:"column"`
}
