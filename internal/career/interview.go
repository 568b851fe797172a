package career

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/rizzrioo06/careermate/internal/db"
	"github.com/rizzrioo06/careermate/internal/llm"
	"github.com/rizzrioo06/careermate/internal/prompts"
	"github.com/rizzrioo06/careermate/internal/schemas"
	"github.com/rizzrioo06/careermate/internal/shape"
	"github.com/rizzrioo06/careermate/internal/types"
)

const defaultQuestionCount = 5

// GenerateInterview prepares mock interview questions and saves them with an
// empty conversation.
func (s *Service) GenerateInterview(ctx context.Context, userID uuid.UUID, req *types.InterviewRequest) (*db.Record, error) {
	settings := *req
	settings.ExperienceLevel = orDefault(req.ExperienceLevel, "mid")
	settings.InterviewType = orDefault(req.InterviewType, "mixed")
	if settings.QuestionCount == 0 {
		settings.QuestionCount = defaultQuestionCount
	}
	settings.Language = language(req.Language)

	content, err := s.generate(ctx, prompts.KeyInterviewQuestions, map[string]string{
		"JobRole":         settings.JobRole,
		"ExperienceLevel": settings.ExperienceLevel,
		"QuestionCount":   strconv.Itoa(settings.QuestionCount),
		"InterviewType":   settings.InterviewType,
		"Language":        settings.Language,
	}, llm.TierStandard, string(types.KindInterview))
	if err != nil {
		return nil, err
	}
	content["conversation"] = []any{}

	return s.store.CreateRecord(ctx, &db.CreateRecordInput{
		UserID:  userID,
		Kind:    types.KindInterview,
		Title:   fmt.Sprintf("Mock interview: %s", settings.JobRole),
		Profile: settings,
		Content: content,
	})
}

// AnswerInterview records an answer to one question together with the
// model's feedback, appending both turns to the conversation.
func (s *Service) AnswerInterview(ctx context.Context, userID, recordID uuid.UUID, req *types.AnswerRequest) (*db.Record, error) {
	rec, err := s.lookup(ctx, userID, recordID, string(types.KindInterview))
	if err != nil {
		return nil, err
	}

	questions, _ := shape.Sequence(nil)(rec.Content["questions"]).([]any)
	if req.QuestionIndex < 0 || req.QuestionIndex >= len(questions) {
		return nil, &InvalidInputError{
			Field:   "questionIndex",
			Message: fmt.Sprintf("must be between 0 and %d", len(questions)-1),
		}
	}
	question := questionText(questions[req.QuestionIndex])

	feedback, err := s.generate(ctx, prompts.KeyInterviewFeedback, map[string]string{
		"JobRole":  asString(rec.Profile["jobRole"]),
		"Question": question,
		"Answer":   req.Answer,
		"Language": language(asString(rec.Profile["language"])),
	}, llm.TierLite, schemas.SchemaFeedback)
	if err != nil {
		return nil, err
	}

	now := s.timestamp()
	prior, _ := shape.ConversationLog(rec.Content["conversation"]).([]any)
	conversation := make([]any, 0, len(prior)+2)
	conversation = append(conversation, prior...)
	conversation = append(conversation,
		map[string]any{
			"role":          "user",
			"questionIndex": req.QuestionIndex,
			"question":      question,
			"content":       req.Answer,
			"timestamp":     now,
		},
		map[string]any{
			"role":          "assistant",
			"questionIndex": req.QuestionIndex,
			"content":       asString(feedback["feedback"]),
			"score":         feedback["score"],
			"strengths":     shape.Sequence(nil)(feedback["strengths"]),
			"improvements":  shape.Sequence(nil)(feedback["improvements"]),
			"timestamp":     now,
		},
	)

	content := copyContent(rec.Content)
	content["conversation"] = conversation
	return s.replace(ctx, userID, recordID, content)
}

// questionText returns the question of a list entry, which the model may
// give as a bare string or as a record with a question field.
func questionText(q any) string {
	if m, ok := q.(map[string]any); ok {
		if text, ok := m["question"].(string); ok {
			return text
		}
	}
	return asString(q)
}
