// Package adaptive runs the strategy-selection loop that drives a triage
// run.
//
// A run executes every retrieval strategy in a fixed number of passes. Each
// attempt is synthesized into an answer, scored by the judge, and persisted
// as one metric record. Between passes the strategy order is re-ranked by
// best score so far, so later passes spend their budget on whatever worked.
// The winner is the strategy with the highest best score; ties fall back to
// the canonical plan order.
package adaptive

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/mongotriage/internal/atlas"
	"github.com/fyrsmithlabs/mongotriage/internal/diagnose"
	"github.com/fyrsmithlabs/mongotriage/internal/retriever"
)

// passCount is the fixed number of passes per run.
const passCount = 2

// Retriever runs one strategy and returns its ranked hits.
type Retriever interface {
	Retrieve(ctx context.Context, strategy retriever.Strategy, query string, k int) ([]atlas.Hit, error)
}

// MetricsSink persists strategy attempt records.
type MetricsSink interface {
	AppendMetric(ctx context.Context, record atlas.MetricRecord) error
}

// Engine owns one run of the adaptive loop.
type Engine struct {
	retriever Retriever
	metrics   MetricsSink
	logger    *zap.Logger
	tracer    trace.Tracer
	now       func() time.Time
	newRunID  func() string
}

// NewEngine creates an Engine.
func NewEngine(ret Retriever, metrics MetricsSink, logger *zap.Logger) (*Engine, error) {
	if ret == nil {
		return nil, errors.New("retriever is required")
	}
	if metrics == nil {
		return nil, errors.New("metrics sink is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		retriever: ret,
		metrics:   metrics,
		logger:    logger,
		tracer:    otel.Tracer("mongotriage/adaptive"),
		now:       time.Now,
		newRunID:  func() string { return uuid.New().String() },
	}, nil
}

// Run executes the adaptive loop for one query. Any retrieval or persistence
// failure aborts the run; there are no retries. A run that completes without
// a positive score returns Outcome{Found: false}.
func (e *Engine) Run(ctx context.Context, query string) (*Outcome, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.Run")
	defer span.End()

	runID := e.newRunID()
	span.SetAttributes(attribute.String("run_id", runID))

	plan := retriever.DefaultPlan()
	canonical := make([]retriever.Strategy, len(plan))
	for i, step := range plan {
		canonical[i] = step.Strategy
	}

	best := make(map[retriever.Strategy]float64, len(plan))
	answers := make(map[retriever.Strategy]string, len(plan))

	for pass := 0; pass < passCount; pass++ {
		e.logger.Info("starting pass",
			zap.Int("pass", pass),
			zap.String("run_id", runID))

		for _, step := range plan {
			hits, err := e.retriever.Retrieve(ctx, step.Strategy, query, step.TopK)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return nil, fmt.Errorf("strategy %s on pass %d: %w", step.Strategy, pass, err)
			}

			answer, ok := diagnose.Synthesize(query, hits)
			score := 0.0
			if ok {
				score = diagnose.Judge(answer)
			}

			result := StrategyResult{
				Strategy:  step.Strategy,
				Pass:      pass,
				Score:     score,
				Answer:    answer,
				Timestamp: e.now().UTC(),
			}
			if err := e.record(ctx, runID, query, result); err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return nil, err
			}

			// A strictly better score adopts this attempt's answer, so the
			// stored answer always matches the strategy's best score.
			if score > best[step.Strategy] {
				best[step.Strategy] = score
				answers[step.Strategy] = answer
			}

			e.logger.Info("strategy scored",
				zap.String("strategy", string(step.Strategy)),
				zap.Int("pass", pass),
				zap.Float64("score", score),
				zap.Int("hits", len(hits)))
		}

		resequence(plan, best)
	}

	winner := canonical[0]
	bestScore := -1.0
	for _, strategy := range canonical {
		if best[strategy] > bestScore {
			winner = strategy
			bestScore = best[strategy]
		}
	}

	answer, ok := answers[winner]
	if !ok || bestScore <= 0 {
		e.logger.Info("no confident answer", zap.String("run_id", runID))
		return &Outcome{Found: false}, nil
	}

	span.SetAttributes(
		attribute.String("winning_strategy", string(winner)),
		attribute.Float64("confidence", bestScore),
	)
	e.logger.Info("selected winning strategy",
		zap.String("strategy", string(winner)),
		zap.Float64("confidence", bestScore),
		zap.String("run_id", runID))

	return &Outcome{
		Strategy:   winner,
		Confidence: bestScore,
		Answer:     answer,
		Found:      true,
	}, nil
}

// record persists one attempt. Persistence happens before any re-ranking so
// the metrics log always reflects what the loop actually observed.
func (e *Engine) record(ctx context.Context, runID, query string, result StrategyResult) error {
	record := atlas.MetricRecord{
		RunID:     runID,
		Query:     query,
		Strategy:  string(result.Strategy),
		Score:     result.Score,
		Pass:      result.Pass,
		Timestamp: result.Timestamp,
	}
	if err := e.metrics.AppendMetric(ctx, record); err != nil {
		return fmt.Errorf("recording %s attempt: %w", result.Strategy, err)
	}
	return nil
}

// resequence stably sorts the plan by best score so far, descending. Ties
// keep their current relative order.
func resequence(plan []retriever.Step, best map[retriever.Strategy]float64) {
	sort.SliceStable(plan, func(i, j int) bool {
		return best[plan[i].Strategy] > best[plan[j].Strategy]
	})
}
