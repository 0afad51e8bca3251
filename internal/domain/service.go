package domain

import "context"

// MemoryService wraps the long-term memory store.
type MemoryService interface {
	// Search returns up to a handful of free-text memories scoped to the
	// candidate, most relevant first. No results is an empty slice, not
	// an error.
	Search(ctx context.Context, candidateID string) ([]string, error)

	// AddSummary appends a structured session summary for the candidate.
	// The store owns versioning; this system never edits or deletes.
	AddSummary(ctx context.Context, candidateID string, summary SessionSummary) error
}

// VectorStore wraps the vector similarity store.
type VectorStore interface {
	// ResolveCollection returns the identifier of the named collection,
	// creating it if needed. Get-or-create semantics are delegated to the
	// store, so concurrent calls must not produce duplicates.
	ResolveCollection(ctx context.Context, name string) (string, error)

	// QuerySimilar looks up documents similar to queryText. Failures are
	// soft: the result is degraded to empty, never an error.
	QuerySimilar(ctx context.Context, collectionID, queryText string, n int) SimilarResult

	// Upsert stores or overwrites a single document keyed by id.
	Upsert(ctx context.Context, collectionID, id, document string, metadata map[string]interface{}) error
}

// QuizGenerator wraps the chat completion service.
type QuizGenerator interface {
	// Generate builds a prompt from the request plus retrieved context and
	// returns the model's JSON output. Output is validated only for being
	// parseable JSON, not for matching the quiz shape.
	Generate(ctx context.Context, req *GenerateRequest, memories, similarQuizzes []string) (*GeneratedQuiz, error)
}
