package assistant

import (
	"fmt"

	"github.com/nsxbet/sql-assistant/pkg/syntax"
	"github.com/nsxbet/sql-assistant/pkg/types"
)

// Result contains everything Ask learned about one request.
type Result struct {
	// ID identifies the request in logs.
	ID      string        `json:"id"      yaml:"id"`
	Request string        `json:"request" yaml:"request"`
	Dialect types.Dialect `json:"dialect" yaml:"dialect"`

	// Response is the raw model reply; SQL is what was extracted from it.
	Response string `json:"response" yaml:"response"`
	SQL      string `json:"sql"      yaml:"sql"`

	Validation   *types.ValidationResult   `json:"validation"          yaml:"validation"`
	Explanation  *types.ExplanationResult  `json:"explanation"         yaml:"explanation"`
	Optimization *types.OptimizationResult `json:"optimization"        yaml:"optimization"`
	Syntax       *syntax.Report            `json:"syntax,omitempty"    yaml:"syntax,omitempty"`
	Injection    *types.InjectionResult    `json:"injection,omitempty" yaml:"injection,omitempty"`

	// Scores holds the scorers that succeeded, in scorer name order.
	Scores      []*types.ScoreResult `json:"scores,omitempty"      yaml:"scores,omitempty"`
	ScoreErrors []ScoreError         `json:"scoreErrors,omitempty" yaml:"scoreErrors,omitempty"`

	Summary Summary `json:"summary" yaml:"summary"`
}

// ScoreError records a scorer that failed.
type ScoreError struct {
	Scorer  string `json:"scorer"  yaml:"scorer"`
	Message string `json:"message" yaml:"message"`
}

// Summary provides aggregate statistics about a result.
type Summary struct {
	// Valid is false when validation found no SQL keyword or the strict
	// syntax check failed.
	Valid        bool `json:"valid"        yaml:"valid"`
	Warnings     int  `json:"warnings"     yaml:"warnings"`
	Suggestions  int  `json:"suggestions"  yaml:"suggestions"`
	Improvements int  `json:"improvements" yaml:"improvements"`

	Scored      int     `json:"scored"      yaml:"scored"`
	ScoreErrors int     `json:"scoreErrors" yaml:"scoreErrors"`
	MeanScore   float64 `json:"meanScore"   yaml:"meanScore"`
}

// IsValid returns true if the generated SQL passed validation.
func (r *Result) IsValid() bool {
	return r.Summary.Valid
}

// HasWarnings returns true if validation produced any warnings.
func (r *Result) HasWarnings() bool {
	return r.Summary.Warnings > 0
}

// IsClean returns true if the SQL is valid, has no warnings and every
// requested scorer succeeded.
func (r *Result) IsClean() bool {
	return r.Summary.Valid && r.Summary.Warnings == 0 && r.Summary.ScoreErrors == 0
}

// Score returns the result of the named scorer, if it ran successfully.
func (r *Result) Score(name string) (*types.ScoreResult, bool) {
	for _, s := range r.Scores {
		if s.Scorer == name {
			return s, true
		}
	}
	return nil, false
}

// String returns a human-readable summary of the result.
//
// Example output:
//
//	Result: valid (1 warnings, 2 suggestions, 1 improvements) mean score 0.77 over 3 scorers
func (r *Result) String() string {
	status := "valid"
	if !r.Summary.Valid {
		status = "invalid"
	}
	s := fmt.Sprintf(
		"Result: %s (%d warnings, %d suggestions, %d improvements)",
		status,
		r.Summary.Warnings,
		r.Summary.Suggestions,
		r.Summary.Improvements,
	)
	if r.Summary.Scored > 0 {
		s += fmt.Sprintf(" mean score %.2f over %d scorers", r.Summary.MeanScore, r.Summary.Scored)
	}
	if r.Summary.ScoreErrors > 0 {
		s += fmt.Sprintf(", %d scorers failed", r.Summary.ScoreErrors)
	}
	return s
}
