// Package atlas persists and searches triage data in MongoDB Atlas.
//
// The store owns three collections: raw production error logs
// (mongo_error_logs), curated troubleshooting notes (mongo_error_knowledge),
// and an append-only record of strategy attempts (retrieval_metrics).
// Vector search runs through the Atlas $vectorSearch aggregation stage;
// keyword search uses $text with textScore ranking.
//
// Store operations are single-attempt: failures are wrapped and returned to
// the caller rather than retried, so a triage run either completes fully or
// aborts with the underlying cause.
package atlas
