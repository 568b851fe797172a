package career

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rizzrioo06/careermate/internal/db"
	"github.com/rizzrioo06/careermate/internal/llm"
	"github.com/rizzrioo06/careermate/internal/prompts"
	"github.com/rizzrioo06/careermate/internal/types"
)

// GenerateGuidance asks for career paths and a learning roadmap and saves them.
func (s *Service) GenerateGuidance(ctx context.Context, userID uuid.UUID, req *types.GuidanceRequest) (*db.Record, error) {
	content, err := s.generate(ctx, prompts.KeyGuidance, map[string]string{
		"Profile":  toJSON(req.Profile),
		"Language": language(req.Profile.Language),
	}, llm.TierAdvanced, string(types.KindGuidance))
	if err != nil {
		return nil, err
	}

	title := "Career guidance"
	if req.Profile.CurrentRole != "" {
		title = fmt.Sprintf("Career guidance for %s", req.Profile.CurrentRole)
	}

	return s.store.CreateRecord(ctx, &db.CreateRecordInput{
		UserID:  userID,
		Kind:    types.KindGuidance,
		Title:   title,
		Profile: req.Profile,
		Content: content,
	})
}

// SuggestJobs asks for job openings that fit a profile and saves them.
func (s *Service) SuggestJobs(ctx context.Context, userID uuid.UUID, req *types.JobSuggestionsRequest) (*db.Record, error) {
	location := orDefault(req.PreferredLocation, orDefault(req.Profile.Location, "anywhere"))

	content, err := s.generate(ctx, prompts.KeyJobSuggestions, map[string]string{
		"Profile":  toJSON(req.Profile),
		"Location": location,
		"WorkType": orDefault(req.WorkType, "any"),
		"Language": language(req.Profile.Language),
	}, llm.TierStandard, string(types.KindJobs))
	if err != nil {
		return nil, err
	}

	return s.store.CreateRecord(ctx, &db.CreateRecordInput{
		UserID:  userID,
		Kind:    types.KindJobs,
		Title:   fmt.Sprintf("Job suggestions (%s)", location),
		Profile: req,
		Content: content,
	})
}

// Discover suggests careers from a set of discovery answers and saves them.
func (s *Service) Discover(ctx context.Context, userID uuid.UUID, req *types.DiscoveryRequest) (*db.Record, error) {
	var answers strings.Builder
	for i, a := range req.Answers {
		fmt.Fprintf(&answers, "%d. %s\n   %s\n", i+1, a.Question, a.Answer)
	}

	content, err := s.generate(ctx, prompts.KeyDiscovery, map[string]string{
		"Answers":  answers.String(),
		"Language": language(req.Language),
	}, llm.TierStandard, string(types.KindDiscovery))
	if err != nil {
		return nil, err
	}

	return s.store.CreateRecord(ctx, &db.CreateRecordInput{
		UserID:  userID,
		Kind:    types.KindDiscovery,
		Title:   "Career discovery",
		Profile: req,
		Content: content,
	})
}
