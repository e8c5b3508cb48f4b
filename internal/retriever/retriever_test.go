package retriever

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/fyrsmithlabs/mongotriage/internal/atlas"
)

type vectorCall struct {
	collection string
	vector     []float64
	k          int
}

type keywordCall struct {
	collection string
	query      string
	k          int
}

type fakeSearchStore struct {
	vectorHits   []atlas.Hit
	keywordHits  []atlas.Hit
	vectorErr    error
	keywordErr   error
	vectorCalls  []vectorCall
	keywordCalls []keywordCall
}

func (f *fakeSearchStore) VectorSearch(ctx context.Context, collection string, vector []float64, k int) ([]atlas.Hit, error) {
	f.vectorCalls = append(f.vectorCalls, vectorCall{collection, vector, k})
	if f.vectorErr != nil {
		return nil, f.vectorErr
	}
	return f.vectorHits, nil
}

func (f *fakeSearchStore) KeywordSearch(ctx context.Context, collection, query string, k int) ([]atlas.Hit, error) {
	f.keywordCalls = append(f.keywordCalls, keywordCall{collection, query, k})
	if f.keywordErr != nil {
		return nil, f.keywordErr
	}
	return f.keywordHits, nil
}

type fakeEmbedder struct {
	err   error
	calls []string
}

// EmbedQuery mirrors the real client's blank-input sentinel.
func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	f.calls = append(f.calls, text)
	if f.err != nil {
		return nil, f.err
	}
	if len(text) == 0 || text == "   " {
		return nil, nil
	}
	return []float64{float64(len(text))}, nil
}

func newTestRetriever(t *testing.T, store *fakeSearchStore, embedder *fakeEmbedder) *Retriever {
	t.Helper()
	r, err := New(store, embedder, nil)
	require.NoError(t, err)
	return r
}

func TestDefaultPlan(t *testing.T) {
	plan := DefaultPlan()

	require.Len(t, plan, 4)
	assert.Equal(t, Step{Strategy: LogsVector, TopK: 5}, plan[0])
	assert.Equal(t, Step{Strategy: LogsHybrid, TopK: 5}, plan[1])
	assert.Equal(t, Step{Strategy: KnowledgeVector, TopK: 5}, plan[2])
	assert.Equal(t, Step{Strategy: RewriteKnowledge, TopK: 10}, plan[3])
}

func TestRewriteQuery(t *testing.T) {
	assert.Equal(t, "timeout mongodb production error root cause", RewriteQuery("timeout"))
	assert.Equal(t, " mongodb production error root cause", RewriteQuery(""))

	// Deterministic: repeated calls yield the same text.
	assert.Equal(t, RewriteQuery("timeout"), RewriteQuery("timeout"))
}

func TestRetrieveDispatch(t *testing.T) {
	tests := []struct {
		name           string
		strategy       Strategy
		k              int
		wantCollection string
		wantEmbedText  string
	}{
		{
			name:           "logs vector",
			strategy:       LogsVector,
			k:              5,
			wantCollection: atlas.ErrorLogsCollection,
			wantEmbedText:  "pool timeout",
		},
		{
			name:           "knowledge vector",
			strategy:       KnowledgeVector,
			k:              5,
			wantCollection: atlas.KnowledgeCollection,
			wantEmbedText:  "pool timeout",
		},
		{
			name:           "rewrite knowledge embeds the rewritten query",
			strategy:       RewriteKnowledge,
			k:              10,
			wantCollection: atlas.KnowledgeCollection,
			wantEmbedText:  "pool timeout mongodb production error root cause",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeSearchStore{vectorHits: []atlas.Hit{{ID: bson.NewObjectID(), Score: 0.9}}}
			embedder := &fakeEmbedder{}
			r := newTestRetriever(t, store, embedder)

			hits, err := r.Retrieve(context.Background(), tt.strategy, "pool timeout", tt.k)
			require.NoError(t, err)
			assert.Len(t, hits, 1)

			require.Len(t, store.vectorCalls, 1)
			assert.Equal(t, tt.wantCollection, store.vectorCalls[0].collection)
			assert.Equal(t, tt.k, store.vectorCalls[0].k)

			require.Len(t, embedder.calls, 1)
			assert.Equal(t, tt.wantEmbedText, embedder.calls[0])
		})
	}
}

func TestRetrieveUnknownStrategy(t *testing.T) {
	r := newTestRetriever(t, &fakeSearchStore{}, &fakeEmbedder{})

	_, err := r.Retrieve(context.Background(), Strategy("grep_everything"), "q", 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestVectorSearchBlankQuerySkipsStore(t *testing.T) {
	store := &fakeSearchStore{}
	embedder := &fakeEmbedder{}
	r := newTestRetriever(t, store, embedder)

	for _, strategy := range []Strategy{LogsVector, KnowledgeVector} {
		hits, err := r.Retrieve(context.Background(), strategy, "", 5)
		require.NoError(t, err)
		assert.Empty(t, hits)
	}

	assert.Empty(t, store.vectorCalls, "empty vector must never reach the store")
}

func TestHybridMergesVectorFirst(t *testing.T) {
	shared := bson.NewObjectID()
	vectorOnly := bson.NewObjectID()
	keywordOnly := bson.NewObjectID()

	store := &fakeSearchStore{
		vectorHits: []atlas.Hit{
			{ID: vectorOnly, RawLog: "vec only", Score: 0.9},
			{ID: shared, RawLog: "from vector", Score: 0.8},
		},
		keywordHits: []atlas.Hit{
			{ID: shared, RawLog: "from keyword", Score: 3.1},
			{ID: keywordOnly, RawLog: "kw only", Score: 2.2},
		},
	}
	r := newTestRetriever(t, store, &fakeEmbedder{})

	hits, err := r.Retrieve(context.Background(), LogsHybrid, "duplicate key", 5)
	require.NoError(t, err)

	require.Len(t, hits, 3)
	assert.Equal(t, vectorOnly, hits[0].ID)
	assert.Equal(t, shared, hits[1].ID)
	assert.Equal(t, "from vector", hits[1].RawLog, "vector copy wins on collision")
	assert.InDelta(t, 0.8, hits[1].Score, 0.0001)
	assert.Equal(t, keywordOnly, hits[2].ID)

	require.Len(t, store.keywordCalls, 1)
	assert.Equal(t, atlas.ErrorLogsCollection, store.keywordCalls[0].collection)
	assert.Equal(t, "duplicate key", store.keywordCalls[0].query)
	assert.Equal(t, 5, store.keywordCalls[0].k)
}

func TestHybridBlankQuerySkipsKeywordLeg(t *testing.T) {
	store := &fakeSearchStore{}
	r := newTestRetriever(t, store, &fakeEmbedder{})

	hits, err := r.Retrieve(context.Background(), LogsHybrid, "   ", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.Empty(t, store.vectorCalls)
	assert.Empty(t, store.keywordCalls)
}

func TestRetrievePropagatesErrors(t *testing.T) {
	t.Run("embedder failure", func(t *testing.T) {
		embedder := &fakeEmbedder{err: errors.New("quota exceeded")}
		r := newTestRetriever(t, &fakeSearchStore{}, embedder)

		_, err := r.Retrieve(context.Background(), LogsVector, "q", 5)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "quota exceeded")
	})

	t.Run("vector store failure", func(t *testing.T) {
		store := &fakeSearchStore{vectorErr: errors.New("index not ready")}
		r := newTestRetriever(t, store, &fakeEmbedder{})

		_, err := r.Retrieve(context.Background(), KnowledgeVector, "q", 5)
		require.Error(t, err)
	})

	t.Run("keyword store failure", func(t *testing.T) {
		store := &fakeSearchStore{keywordErr: errors.New("no text index")}
		r := newTestRetriever(t, store, &fakeEmbedder{})

		_, err := r.Retrieve(context.Background(), LogsHybrid, "q", 5)
		require.Error(t, err)
	})
}

func TestMergeHits(t *testing.T) {
	a, b, c := bson.NewObjectID(), bson.NewObjectID(), bson.NewObjectID()

	first := []atlas.Hit{{ID: a, Score: 0.9}, {ID: b, Score: 0.8}}
	second := []atlas.Hit{{ID: b, Score: 5.0}, {ID: c, Score: 4.0}}

	merged := mergeHits(first, second)
	require.Len(t, merged, 3)
	assert.Equal(t, []bson.ObjectID{a, b, c}, []bson.ObjectID{merged[0].ID, merged[1].ID, merged[2].ID})
	assert.InDelta(t, 0.8, merged[1].Score, 0.0001, "first writer wins")

	// Idempotent: merging the merge changes nothing.
	assert.Equal(t, merged, mergeHits(merged, second))

	// Order-dependent: reversing the groups keeps the keyword copy instead.
	reversed := mergeHits(second, first)
	assert.InDelta(t, 5.0, reversed[0].Score, 0.0001)

	assert.Empty(t, mergeHits(nil, nil))
}
