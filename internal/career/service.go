// Package career turns user profiles into persisted career records: it renders
// a prompt, calls the LLM, extracts the JSON answer and hands it to the store,
// which normalizes it before writing.
package career

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/rizzrioo06/careermate/internal/db"
	"github.com/rizzrioo06/careermate/internal/llm"
	"github.com/rizzrioo06/careermate/internal/llmjson"
	"github.com/rizzrioo06/careermate/internal/prompts"
	"github.com/rizzrioo06/careermate/internal/schemas"
)

const defaultLanguage = "English"

// Store is the subset of db.DB the service writes through.
type Store interface {
	CreateRecord(ctx context.Context, in *db.CreateRecordInput) (*db.Record, error)
	GetRecord(ctx context.Context, userID, id uuid.UUID) (*db.Record, error)
	ReplaceRecordContent(ctx context.Context, userID, id uuid.UUID, content map[string]any) (*db.Record, error)
}

// Service generates and stores career records.
type Service struct {
	client    llm.Client
	store     Store
	extractor *llmjson.Extractor
	now       func() time.Time
}

// NewService creates a Service. A nil extractor uses the strict default.
func NewService(client llm.Client, store Store, extractor *llmjson.Extractor) *Service {
	if extractor == nil {
		extractor = llmjson.NewExtractor()
	}
	return &Service{
		client:    client,
		store:     store,
		extractor: extractor,
		now:       time.Now,
	}
}

// generate renders a prompt, calls the model in JSON mode and extracts the
// object it answered with. A schema mismatch is logged and not returned.
func (s *Service) generate(ctx context.Context, key string, data map[string]string, tier llm.ModelTier, schema string) (map[string]any, error) {
	prompt, err := prompts.Render(key, data)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s prompt: %w", key, err)
	}

	text, err := s.client.GenerateJSON(ctx, prompt, tier)
	if err != nil {
		return nil, &APICallError{Message: "failed to generate " + key, Cause: err}
	}

	obj, err := s.extractor.ExtractObject(text)
	if err != nil {
		log.Printf("[career] %s: %v", key, err)
		return nil, err
	}

	if schema != "" {
		if verr := schemas.Validate(schema, obj); verr != nil {
			log.Printf("[career] %s output does not match %s schema: %v", key, schema, verr)
		}
	}
	return obj, nil
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func (s *Service) lookup(ctx context.Context, userID, id uuid.UUID, kind string) (*db.Record, error) {
	rec, err := s.store.GetRecord(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if rec == nil || string(rec.Kind) != kind {
		return nil, ErrRecordNotFound
	}
	return rec, nil
}

func (s *Service) replace(ctx context.Context, userID, id uuid.UUID, content map[string]any) (*db.Record, error) {
	rec, err := s.store.ReplaceRecordContent(ctx, userID, id, content)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrRecordNotFound
	}
	return rec, nil
}

func toJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

func language(lang string) string {
	if lang == "" {
		return defaultLanguage
	}
	return lang
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return toJSON(t)
	}
}

// copyContent returns a shallow copy of content.
func copyContent(content map[string]any) map[string]any {
	out := make(map[string]any, len(content))
	for k, v := range content {
		out[k] = v
	}
	return out
}
