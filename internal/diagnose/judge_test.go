package diagnose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/mongotriage/internal/atlas"
)

func TestJudgeMarkerWeights(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   float64
	}{
		{name: "empty", answer: "", want: 0.0},
		{name: "no markers", answer: "some unrelated text", want: 0.0},
		{name: "component only", answer: "Component: driver", want: 0.4},
		{name: "cause only", answer: "Likely Cause", want: 0.3},
		{name: "fix only", answer: "Suggested Fix", want: 0.3},
		{name: "component and cause", answer: "Component: x\nLikely Cause", want: 0.7},
		{name: "all markers", answer: "Component: x\nLikely Cause:\ny\nSuggested Fix:\nz", want: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Judge(tt.answer), 0.0001)
		})
	}
}

func TestJudgeDeterministic(t *testing.T) {
	answer := "Component: server\nLikely Cause:\nslow query\nSuggested Fix:\nadd index"
	first := Judge(answer)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Judge(answer))
	}
}

func TestJudgeScoresSynthesizedAnswerFull(t *testing.T) {
	answer, ok := Synthesize("q", []atlas.Hit{{RawLog: "any log line"}})
	require.True(t, ok)
	assert.InDelta(t, 1.0, Judge(answer), 0.0001)
}
