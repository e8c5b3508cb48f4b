// Package diagnose turns ranked retrieval hits into a scored diagnostic
// report.
package diagnose

import (
	"fmt"

	"github.com/fyrsmithlabs/mongotriage/internal/atlas"
)

const (
	componentFallback = "UNKNOWN"
	errorCodeFallback = "N/A"
	causeFallback     = "unknown"
)

// answerTemplate is the fixed report shape. Component, error code, and the
// cause line come from the top-ranked hit; the suggested fix is constant.
const answerTemplate = `
MongoDB Issue Detected
---------------------
Component: %s
Error Code: %v

Likely Cause:
%s

Suggested Fix:
Review connection pool, retry logic, and MongoDB Atlas configuration.
`

// Synthesize formats the diagnostic report from the top-ranked hit. It
// returns ok=false when there are no hits; the query itself does not shape
// the report. Deterministic: identical hits yield identical text.
func Synthesize(query string, hits []atlas.Hit) (answer string, ok bool) {
	if len(hits) == 0 {
		return "", false
	}

	top := hits[0]
	return fmt.Sprintf(answerTemplate, component(top), errorCode(top), likelyCause(top)), true
}

func component(hit atlas.Hit) string {
	if hit.Component == "" {
		return componentFallback
	}
	return hit.Component
}

func errorCode(hit atlas.Hit) any {
	if hit.ErrorCode == nil {
		return errorCodeFallback
	}
	return hit.ErrorCode
}

// likelyCause picks the first non-empty cause field, preferring the
// normalized message over the raw log over knowledge content.
func likelyCause(hit atlas.Hit) string {
	for _, candidate := range []string{hit.NormalizedMessage, hit.RawLog, hit.Content} {
		if candidate != "" {
			return candidate
		}
	}
	return causeFallback
}
