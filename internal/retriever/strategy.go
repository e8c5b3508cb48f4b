package retriever

// Strategy names one retrieval approach. The names are persisted in metric
// records, so they are part of the stored data contract.
type Strategy string

const (
	// LogsVector is similarity search over raw error logs.
	LogsVector Strategy = "logs_vector"

	// LogsHybrid unions vector and keyword search over error logs.
	LogsHybrid Strategy = "logs_hybrid"

	// KnowledgeVector is similarity search over curated knowledge notes.
	KnowledgeVector Strategy = "knowledge_vector"

	// RewriteKnowledge expands the query with fixed diagnostic terms, then
	// searches knowledge notes with a larger result budget.
	RewriteKnowledge Strategy = "rewrite_knowledge"
)

// Step pairs a strategy with its result budget.
type Step struct {
	Strategy Strategy
	TopK     int
}

// DefaultPlan returns the canonical strategy order for the first pass.
// Later passes re-rank a copy of this plan by observed scores.
func DefaultPlan() []Step {
	return []Step{
		{Strategy: LogsVector, TopK: 5},
		{Strategy: LogsHybrid, TopK: 5},
		{Strategy: KnowledgeVector, TopK: 5},
		{Strategy: RewriteKnowledge, TopK: 10},
	}
}

const rewriteSuffix = " mongodb production error root cause"

// RewriteQuery appends fixed diagnostic terms that bias knowledge retrieval
// toward root-cause notes. The rewrite is deterministic.
func RewriteQuery(query string) string {
	return query + rewriteSuffix
}
