// Package retriever executes the named retrieval strategies against the
// Atlas store.
package retriever

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/mongotriage/internal/atlas"
)

// ErrUnknownStrategy indicates a strategy name outside the fixed set.
var ErrUnknownStrategy = errors.New("unknown strategy")

// SearchStore is the search surface the retriever needs.
type SearchStore interface {
	VectorSearch(ctx context.Context, collection string, vector []float64, k int) ([]atlas.Hit, error)
	KeywordSearch(ctx context.Context, collection, query string, k int) ([]atlas.Hit, error)
}

// Embedder generates one embedding per text. A nil vector with no error is
// the blank-input sentinel.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float64, error)
}

// Retriever dispatches strategies to the store.
type Retriever struct {
	store    SearchStore
	embedder Embedder
	logger   *zap.Logger
	tracer   trace.Tracer
}

// New creates a Retriever.
func New(store SearchStore, embedder Embedder, logger *zap.Logger) (*Retriever, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if embedder == nil {
		return nil, errors.New("embedder is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Retriever{
		store:    store,
		embedder: embedder,
		logger:   logger,
		tracer:   otel.Tracer("mongotriage/retriever"),
	}, nil
}

// Retrieve runs one strategy and returns its ranked hits.
func (r *Retriever) Retrieve(ctx context.Context, strategy Strategy, query string, k int) ([]atlas.Hit, error) {
	ctx, span := r.tracer.Start(ctx, "Retriever.Retrieve")
	defer span.End()
	span.SetAttributes(
		attribute.String("strategy", string(strategy)),
		attribute.Int("top_k", k),
	)

	hits, err := r.dispatch(ctx, strategy, query, k)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("hits", len(hits)))
	return hits, nil
}

func (r *Retriever) dispatch(ctx context.Context, strategy Strategy, query string, k int) ([]atlas.Hit, error) {
	switch strategy {
	case LogsVector:
		return r.vectorSearch(ctx, atlas.ErrorLogsCollection, query, k)
	case LogsHybrid:
		return r.hybridSearch(ctx, atlas.ErrorLogsCollection, query, k)
	case KnowledgeVector:
		return r.vectorSearch(ctx, atlas.KnowledgeCollection, query, k)
	case RewriteKnowledge:
		return r.vectorSearch(ctx, atlas.KnowledgeCollection, RewriteQuery(query), k)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
}

// vectorSearch embeds the query and searches the collection. A blank query
// produces the embedder's empty-vector sentinel; the search is skipped and
// zero hits are returned rather than handing the store an unusable vector.
func (r *Retriever) vectorSearch(ctx context.Context, collection, query string, k int) ([]atlas.Hit, error) {
	vector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vector) == 0 {
		r.logger.Debug("blank query, skipping vector search",
			zap.String("collection", collection))
		return nil, nil
	}
	return r.store.VectorSearch(ctx, collection, vector, k)
}

// hybridSearch merges vector hits with keyword hits. Vector hits enter the
// merge first, so on ID collisions the vector-scored copy is the one kept.
func (r *Retriever) hybridSearch(ctx context.Context, collection, query string, k int) ([]atlas.Hit, error) {
	vectorHits, err := r.vectorSearch(ctx, collection, query, k)
	if err != nil {
		return nil, err
	}

	// $text rejects empty search strings; a blank query has no keyword leg.
	if strings.TrimSpace(query) == "" {
		return vectorHits, nil
	}

	keywordHits, err := r.store.KeywordSearch(ctx, collection, query, k)
	if err != nil {
		return nil, err
	}

	return mergeHits(vectorHits, keywordHits), nil
}

// mergeHits concatenates hit groups, deduplicating by document ID with
// first-writer-wins: once an ID is present, later duplicates are dropped.
func mergeHits(groups ...[]atlas.Hit) []atlas.Hit {
	total := 0
	for _, group := range groups {
		total += len(group)
	}

	merged := make([]atlas.Hit, 0, total)
	seen := make(map[bson.ObjectID]struct{}, total)
	for _, group := range groups {
		for _, hit := range group {
			if _, dup := seen[hit.ID]; dup {
				continue
			}
			seen[hit.ID] = struct{}{}
			merged = append(merged, hit)
		}
	}
	return merged
}
