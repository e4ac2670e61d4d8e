// Package scorer grades LLM-generated SQL with a judge model. Each scorer
// extracts the SQL from a response, asks the judge once for a verdict and maps
// the verdict to a score in [0,1] deterministically.
package scorer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sourcegraph/conc"

	"github.com/nsxbet/sql-assistant/pkg/llm"
	"github.com/nsxbet/sql-assistant/pkg/logger"
	"github.com/nsxbet/sql-assistant/pkg/types"
)

// Name identifies a scorer.
type Name string

const (
	Correctness Name = "correctness"
	IntentMatch Name = "intentMatch"
	Readability Name = "readability"
)

// Input is what a scorer grades.
type Input struct {
	// Response is the full LLM response; SQL is extracted from it.
	Response string
	// Request is the user's original natural-language request.
	Request string
}

// Scorer grades one response. Implementations call the judge at most once
// and never retry.
type Scorer interface {
	Score(ctx context.Context, judge llm.Judge, in Input) (*types.ScoreResult, error)
}

var (
	scorerMu sync.RWMutex
	scorers  = make(map[Name]Scorer)
)

// Register makes a scorer available by name.
// If Register is called twice with the same name or if s is nil, it panics.
func Register(name Name, s Scorer) {
	scorerMu.Lock()
	defer scorerMu.Unlock()
	if s == nil {
		panic("scorer: Register scorer is nil")
	}
	if _, dup := scorers[name]; dup {
		panic(fmt.Sprintf("scorer: Register called twice for scorer %v", name))
	}
	scorers[name] = s
}

// Get returns the scorer registered under name.
func Get(name Name) (Scorer, bool) {
	scorerMu.RLock()
	defer scorerMu.RUnlock()
	s, ok := scorers[name]
	return s, ok
}

// Names returns the registered scorer names in sorted order.
func Names() []Name {
	scorerMu.RLock()
	defer scorerMu.RUnlock()
	names := make([]Name, 0, len(scorers))
	for name := range scorers {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// ParseName resolves a scorer name case-insensitively.
func ParseName(s string) (Name, error) {
	for _, name := range Names() {
		if strings.EqualFold(string(name), s) {
			return name, nil
		}
	}
	return "", errors.Errorf("unknown scorer %q", s)
}

// Score runs the named scorer.
func Score(ctx context.Context, judge llm.Judge, name Name, in Input) (result *types.ScoreResult, err error) {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panicErr, ok := panicErr.(error)
			if !ok {
				panicErr = errors.Errorf("%v", panicErr)
			}
			err = errors.Errorf("scorer PANIC RECOVER, name: %v, err: %v", name, panicErr)
			slog.Error("scorer PANIC RECOVER", "scorer", name, logger.Error(panicErr), logger.Stack(string(debug.Stack())))
		}
	}()

	s, ok := Get(name)
	if !ok {
		return nil, errors.Errorf("scorer: unknown scorer %v", name)
	}
	if judge == nil {
		return nil, errors.New("scorer: judge is required")
	}
	return s.Score(ctx, judge, in)
}

// Outcome is one scorer's result within ScoreAll.
type Outcome struct {
	Scorer Name
	Result *types.ScoreResult
	Err    error
}

// ScoreAll runs every registered scorer concurrently. Outcomes follow Names()
// order and a failing scorer does not affect the others.
func ScoreAll(ctx context.Context, judge llm.Judge, in Input) []Outcome {
	names := Names()
	outcomes := make([]Outcome, len(names))

	var wg conc.WaitGroup
	for i, name := range names {
		wg.Go(func() {
			result, err := Score(ctx, judge, name, in)
			outcomes[i] = Outcome{Scorer: name, Result: result, Err: err}
		})
	}
	wg.Wait()

	return outcomes
}

// askJudge sends prompt to the judge once and decodes the verdict into V.
// Missing fields keep their zero values.
func askJudge[V any](ctx context.Context, judge llm.Judge, name Name, prompt string, schema llm.OutputSchema) (*V, error) {
	raw, err := judge.Judge(ctx, prompt, schema)
	if err != nil {
		return nil, errors.Wrapf(err, "%s judge call failed", name)
	}

	var verdict V
	if len(raw) == 0 {
		return &verdict, nil
	}
	if err := json.Unmarshal(raw, &verdict); err != nil {
		return nil, errors.Wrapf(err, "%s judge returned a malformed verdict", name)
	}
	return &verdict, nil
}

// confidenceOr returns the clamped confidence, or def when the judge omitted it.
func confidenceOr(confidence *float64, def float64) float64 {
	if confidence == nil {
		return def
	}
	return clamp(*confidence)
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// reason joins a lead sentence with optional details and free-text feedback.
func reason(lead string, details []string, feedback string) string {
	var b strings.Builder
	b.WriteString(lead)
	if len(details) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(details, "; "))
	}
	if feedback = strings.TrimSpace(feedback); feedback != "" {
		b.WriteString(". ")
		b.WriteString(feedback)
	}
	return b.String()
}
