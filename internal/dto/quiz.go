package dto

// GenerateQuizRequest is the body of POST /quiz/generate
// @Description Request body for generating a candidate quiz
type GenerateQuizRequest struct {
	CandidateID  string   `json:"candidate_id"`
	Role         string   `json:"role"`
	Skills       []string `json:"skills"`
	Difficulty   string   `json:"difficulty"`
	NumQuestions int      `json:"num_questions"`
}

// Quiz is the shape the completion service is asked to produce. The
// service returns the model's JSON verbatim, so this type documents the
// contract and backs tests rather than gating responses.
type Quiz struct {
	Title      string     `json:"title"`
	Role       string     `json:"role"`
	Difficulty string     `json:"difficulty"`
	Questions  []Question `json:"questions"`
}

// Question is a single quiz entry. Options is present only for
// multiple_choice questions.
type Question struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"` // "multiple_choice" or "short_answer"
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
	Answer   string   `json:"answer"`
	Rubric   string   `json:"rubric"`
}

// HealthResponse is the fixed liveness payload
type HealthResponse struct {
	Status string `json:"status"`
}
