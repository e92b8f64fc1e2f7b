package core

// ResumeFacts is the structured candidate background record consumed by
// question generation and scoring. The shape is owned by the résumé store;
// the core treats it as an opaque document and extracts what it needs via
// the retrieval package helpers.
type ResumeFacts map[string]any
