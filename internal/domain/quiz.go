package domain

import (
	"encoding/json"
	"time"
)

const (
	DefaultDifficulty   = "medium"
	DefaultNumQuestions = 8
)

// GenerateRequest is the normalized form of a quiz generation request.
// Immutable once built; CandidateID is an opaque partition key.
type GenerateRequest struct {
	CandidateID  string
	Role         string
	Skills       []string
	Difficulty   string
	NumQuestions int
}

// Normalize fills in the documented defaults for optional fields.
func (r *GenerateRequest) Normalize() {
	if r.Difficulty == "" {
		r.Difficulty = DefaultDifficulty
	}
	if r.NumQuestions <= 0 {
		r.NumQuestions = DefaultNumQuestions
	}
}

// GeneratedQuiz is the completion service's output. Raw is the model's
// JSON verbatim and is what callers persist and return; Title, Role and
// Difficulty are a best-effort secondary parse used only for the session
// summary and persistence metadata.
type GeneratedQuiz struct {
	Raw        json.RawMessage
	Title      string
	Role       string
	Difficulty string
}

// EffectiveRole prefers the model's role over the request's.
func (q *GeneratedQuiz) EffectiveRole(requested string) string {
	if q.Role != "" {
		return q.Role
	}
	return requested
}

// EffectiveDifficulty prefers the model's difficulty over the request's.
func (q *GeneratedQuiz) EffectiveDifficulty(requested string) string {
	if q.Difficulty != "" {
		return q.Difficulty
	}
	return requested
}

// SessionSummary is the structured record appended to the memory store
// after a successful generation.
type SessionSummary struct {
	CandidateID  string    `json:"candidate_id"`
	Role         string    `json:"role"`
	Difficulty   string    `json:"difficulty"`
	QuizTitle    string    `json:"quiz_title"`
	NumQuestions int       `json:"num_questions"`
	Skills       []string  `json:"skills,omitempty"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// SimilarResult is the outcome of a similarity query. The caller treats a
// degraded query the same as no matches, but the two are distinguishable:
// Degraded is set when the query errored and the result was soft-failed
// to empty rather than propagated.
type SimilarResult struct {
	Documents []string
	Degraded  bool
	Err       error
}
