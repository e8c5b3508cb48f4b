package diagnose

import "strings"

// Report markers the judge looks for. The synthesizer emits all three, so a
// synthesized answer always scores 1.0.
const (
	componentMarker = "Component:"
	causeMarker     = "Likely Cause"
	fixMarker       = "Suggested Fix"
)

// Judge scores answer text by which report markers it contains: 0.4 for the
// component line, 0.3 each for the cause and fix sections. Deterministic,
// bounded to [0.0, 1.0]; empty text scores zero.
func Judge(answer string) float64 {
	score := 0.0
	if strings.Contains(answer, componentMarker) {
		score += 0.4
	}
	if strings.Contains(answer, causeMarker) {
		score += 0.3
	}
	if strings.Contains(answer, fixMarker) {
		score += 0.3
	}
	return score
}
