package adaptive

import (
	"time"

	"github.com/fyrsmithlabs/mongotriage/internal/retriever"
)

// StrategyResult captures one strategy attempt within a run. Every attempt
// produces exactly one result, persisted as a metric record before the loop
// re-ranks strategies.
type StrategyResult struct {
	Strategy  retriever.Strategy
	Pass      int
	Score     float64
	Answer    string // empty when the strategy produced no answer
	Timestamp time.Time
}

// Outcome is the terminal result of a triage run. Found is false when no
// strategy produced a confident answer; the other fields are only meaningful
// when Found is true.
type Outcome struct {
	Strategy   retriever.Strategy
	Confidence float64
	Answer     string
	Found      bool
}
