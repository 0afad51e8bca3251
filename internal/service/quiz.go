package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"quizforge/internal/domain"
	"quizforge/internal/dto"
	"quizforge/internal/logger"

	"go.uber.org/zap"
)

const (
	docIDPrefix    = "quiz"
	similarResults = 3
)

// QuizService is the single entry point for quiz generation.
type QuizService interface {
	// GenerateQuiz runs the full pipeline and returns the generated quiz
	// JSON verbatim.
	GenerateQuiz(ctx context.Context, req *dto.GenerateQuizRequest) (json.RawMessage, error)
}

type quizService struct {
	memory         domain.MemoryService
	store          domain.VectorStore
	generator      domain.QuizGenerator
	collectionName string
}

// NewQuizService creates the orchestrator over the three upstream
// clients. collectionName names the vector store collection quizzes are
// persisted into.
func NewQuizService(memory domain.MemoryService, store domain.VectorStore, generator domain.QuizGenerator, collectionName string) QuizService {
	return &quizService{
		memory:         memory,
		store:          store,
		generator:      generator,
		collectionName: collectionName,
	}
}

// GenerateQuiz sequences the upstream calls: fetch memories, resolve the
// collection, query similar quizzes (soft), generate, append the session
// summary, persist the quiz. Any hard failure aborts the remaining steps
// with no rollback of earlier side effects.
func (s *quizService) GenerateQuiz(ctx context.Context, req *dto.GenerateQuizRequest) (json.RawMessage, error) {
	log := logger.Get()

	domReq := &domain.GenerateRequest{
		CandidateID:  req.CandidateID,
		Role:         req.Role,
		Skills:       req.Skills,
		Difficulty:   req.Difficulty,
		NumQuestions: req.NumQuestions,
	}
	domReq.Normalize()

	memories, err := s.memory.Search(ctx, domReq.CandidateID)
	if err != nil {
		return nil, err
	}

	collectionID, err := s.store.ResolveCollection(ctx, s.collectionName)
	if err != nil {
		return nil, err
	}

	similar := s.store.QuerySimilar(ctx, collectionID, similarQueryText(domReq), similarResults)
	if similar.Degraded {
		log.Warn("Similarity query degraded to empty result",
			zap.String("candidate_id", domReq.CandidateID),
			zap.Error(similar.Err),
		)
	}

	quiz, err := s.generator.Generate(ctx, domReq, memories, similar.Documents)
	if err != nil {
		return nil, err
	}

	role := quiz.EffectiveRole(domReq.Role)
	difficulty := quiz.EffectiveDifficulty(domReq.Difficulty)

	summary := domain.SessionSummary{
		CandidateID:  domReq.CandidateID,
		Role:         role,
		Difficulty:   difficulty,
		QuizTitle:    quiz.Title,
		NumQuestions: domReq.NumQuestions,
		Skills:       domReq.Skills,
		GeneratedAt:  time.Now().UTC(),
	}
	if err := s.memory.AddSummary(ctx, domReq.CandidateID, summary); err != nil {
		return nil, err
	}

	// Prefix + candidate + millisecond timestamp keeps ids practically
	// unique per request without coordination.
	docID := fmt.Sprintf("%s-%s-%d", docIDPrefix, domReq.CandidateID, time.Now().UnixMilli())
	metadata := map[string]interface{}{
		"candidate_id": domReq.CandidateID,
		"role":         role,
		"difficulty":   difficulty,
		"quiz_title":   quiz.Title,
	}
	if err := s.store.Upsert(ctx, collectionID, docID, string(quiz.Raw), metadata); err != nil {
		return nil, err
	}

	log.Info("Quiz generated and persisted",
		zap.String("candidate_id", domReq.CandidateID),
		zap.String("doc_id", docID),
		zap.String("quiz_title", quiz.Title),
	)
	return quiz.Raw, nil
}

func similarQueryText(req *domain.GenerateRequest) string {
	return strings.TrimSpace(fmt.Sprintf("%s %s %s", req.Role, strings.Join(req.Skills, " "), req.Difficulty))
}
