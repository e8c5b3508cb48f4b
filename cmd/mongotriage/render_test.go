package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fyrsmithlabs/mongotriage/internal/adaptive"
	"github.com/fyrsmithlabs/mongotriage/internal/retriever"
)

func TestRenderOutcome(t *testing.T) {
	t.Run("renders winning strategy and confidence", func(t *testing.T) {
		outcome := &adaptive.Outcome{
			Strategy:   retriever.KnowledgeVector,
			Confidence: 1.0,
			Answer:     "\nMongoDB Issue Detected\nComponent: replica_set\n",
			Found:      true,
		}

		result := renderOutcome(outcome)

		assert.Contains(t, result, "ADAPTIVE RETRIEVAL RESULT")
		assert.Contains(t, result, "Winning Strategy")
		assert.Contains(t, result, "knowledge_vector")
		assert.Contains(t, result, "1.00")
		assert.Contains(t, result, "Component: replica_set")
	})

	t.Run("trims surrounding whitespace from the answer", func(t *testing.T) {
		outcome := &adaptive.Outcome{
			Strategy:   retriever.LogsHybrid,
			Confidence: 0.7,
			Answer:     "\n\n  diagnosis body  \n\n",
			Found:      true,
		}

		result := renderOutcome(outcome)

		assert.Contains(t, result, "diagnosis body\n")
		assert.NotContains(t, result, "  diagnosis body")
		assert.Contains(t, result, "0.70")
	})

	t.Run("renders sentinel when nothing was found", func(t *testing.T) {
		outcome := &adaptive.Outcome{Found: false}

		result := renderOutcome(outcome)

		assert.Contains(t, result, "No confident answer found.")
		assert.NotContains(t, result, "ADAPTIVE RETRIEVAL RESULT")
		assert.NotContains(t, result, "Winning Strategy")
	})

	t.Run("renders sentinel for nil outcome", func(t *testing.T) {
		result := renderOutcome(nil)

		assert.Contains(t, result, "No confident answer found.")
	})

	t.Run("separator lines span the block width", func(t *testing.T) {
		outcome := &adaptive.Outcome{
			Strategy:   retriever.LogsVector,
			Confidence: 0.4,
			Answer:     "body",
			Found:      true,
		}

		result := renderOutcome(outcome)

		assert.Contains(t, result, strings.Repeat("=", resultWidth))
		assert.Contains(t, result, strings.Repeat("-", resultWidth))
	})
}
