// Package completion wraps an OpenAI-compatible chat completion service
// behind the quiz generator interface.
package completion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"quizforge/internal/config"
	"quizforge/internal/domain"
	"quizforge/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"
)

const (
	dependency  = "completion"
	temperature = 0.7

	systemPrompt = "You are a technical recruiter creating interview quizzes. " +
		"Respond with a single JSON object only, no markdown fences and no commentary."
)

// Generator generates quizzes through an OpenAI-compatible API.
type Generator struct {
	cfg        config.OpenAIConfig
	httpClient *http.Client
}

// NewGenerator creates a quiz generator. A missing API key is reported
// at call time, not here.
func NewGenerator(cfg config.OpenAIConfig) *Generator {
	return &Generator{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
			},
		},
	}
}

// Generate builds the prompt, submits a two-message exchange and parses
// the first choice's content as JSON. The output is not validated
// against the quiz shape beyond being parseable JSON.
func (g *Generator) Generate(ctx context.Context, req *domain.GenerateRequest, memories, similarQuizzes []string) (*domain.GeneratedQuiz, error) {
	if g.cfg.APIKey == "" {
		return nil, domain.NewMisconfiguredError("openai.api_key")
	}

	opts := []openai.Option{
		openai.WithToken(g.cfg.APIKey),
		openai.WithModel(g.cfg.Model),
		openai.WithHTTPClient(g.httpClient),
	}
	if g.cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(g.cfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, domain.NewUpstreamError(dependency, err.Error(), err)
	}

	prompt := buildPrompt(req, memories, similarQuizzes)
	logger.Get().Debug("Submitting quiz generation prompt",
		zap.String("model", g.cfg.Model),
		zap.Int("num_questions", req.NumQuestions),
	)

	resp, err := llm.GenerateContent(ctx,
		[]llms.MessageContent{
			llms.TextParts(schema.ChatMessageTypeSystem, systemPrompt),
			llms.TextParts(schema.ChatMessageTypeHuman, prompt),
		},
		llms.WithTemperature(temperature),
	)
	if err != nil {
		return nil, domain.NewUpstreamError(dependency, err.Error(), err)
	}
	if len(resp.Choices) == 0 {
		return nil, domain.NewUpstreamError(dependency, "completion returned no choices", nil)
	}

	content := cleanModelJSON(resp.Choices[0].Content)
	if !json.Valid([]byte(content)) {
		return nil, domain.NewInvalidModelOutputError(content)
	}

	quiz := &domain.GeneratedQuiz{Raw: json.RawMessage(content)}

	// Lenient secondary parse; only these fields feed the summary and
	// persistence metadata, so shape mismatches are ignored.
	var head struct {
		Title      string `json:"title"`
		Role       string `json:"role"`
		Difficulty string `json:"difficulty"`
	}
	if err := json.Unmarshal([]byte(content), &head); err == nil {
		quiz.Title = head.Title
		quiz.Role = head.Role
		quiz.Difficulty = head.Difficulty
	}
	return quiz, nil
}

func buildPrompt(req *domain.GenerateRequest, memories, similarQuizzes []string) string {
	return fmt.Sprintf(`Create a recruitment quiz as a single JSON object with the fields:
"title" (string), "role" (string), "difficulty" (string), and
"questions": an array of objects with "id" (string, unique), "type"
("multiple_choice" or "short_answer"), "question" (string), "options"
(array of strings, multiple_choice only), "answer" (string) and
"rubric" (string, how to grade the answer).

Target role: %s
Skills to cover: %s
Difficulty: %s
Number of questions: %d
What we remember about this candidate: %s
Previous quizzes for similar candidates: %s

Respond with the JSON object only.`,
		req.Role,
		strings.Join(req.Skills, ", "),
		req.Difficulty,
		req.NumQuestions,
		joinOrNone(memories),
		joinOrNone(similarQuizzes),
	)
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, " | ")
}

// cleanModelJSON strips the markdown fences and reasoning tags models
// sometimes wrap around their JSON.
func cleanModelJSON(content string) string {
	cleaned := strings.TrimSpace(content)
	if thinkStart := strings.Index(cleaned, "<think>"); thinkStart != -1 {
		if thinkEnd := strings.Index(cleaned, "</think>"); thinkEnd != -1 {
			cleaned = cleaned[thinkEnd+len("</think>"):]
		}
	}
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

var _ domain.QuizGenerator = (*Generator)(nil)
