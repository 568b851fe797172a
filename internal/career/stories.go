package career

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/rizzrioo06/careermate/internal/db"
	"github.com/rizzrioo06/careermate/internal/llm"
	"github.com/rizzrioo06/careermate/internal/prompts"
	"github.com/rizzrioo06/careermate/internal/schemas"
	"github.com/rizzrioo06/careermate/internal/shape"
	"github.com/rizzrioo06/careermate/internal/types"
	"golang.org/x/sync/errgroup"
)

var storyGuides = map[types.StoryType]string{
	types.StoryJourney:     "Tell how the person got where they are: the turning points, the roles, and what each taught them.",
	types.StoryAchievement: "Tell the story of the person's proudest accomplishment: the situation, what they did, and the measurable result.",
	types.StoryChallenge:   "Tell the story of a hard obstacle the person faced and how they worked through it.",
	types.StoryVision:      "Tell where the person wants their career to go in the next five years and why.",
}

var storyTitles = map[types.StoryType]string{
	types.StoryJourney:     "My Career Journey",
	types.StoryAchievement: "A Defining Achievement",
	types.StoryChallenge:   "Overcoming a Challenge",
	types.StoryVision:      "Looking Ahead",
}

// GenerateStories writes one story per story type in parallel and saves the set.
// Any failed story fails the whole operation.
func (s *Service) GenerateStories(ctx context.Context, userID uuid.UUID, req *types.StoriesRequest) (*db.Record, error) {
	storyTypes := types.AllStoryTypes()
	stories := make([]any, len(storyTypes))

	g, gctx := errgroup.WithContext(ctx)
	for i, st := range storyTypes {
		g.Go(func() error {
			story, err := s.generateStory(gctx, st, req)
			if err != nil {
				return fmt.Errorf("%s story: %w", st, err)
			}
			stories[i] = story
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return s.store.CreateRecord(ctx, &db.CreateRecordInput{
		UserID:  userID,
		Kind:    types.KindStories,
		Title:   "Career stories",
		Profile: req,
		Content: map[string]any{"stories": stories},
	})
}

// RegenerateStory rewrites the story in the slot tagged with req.Type and
// leaves the other slots untouched.
func (s *Service) RegenerateStory(ctx context.Context, userID, recordID uuid.UUID, req *types.RegenerateStoryRequest) (*db.Record, error) {
	if !req.Type.Valid() {
		return nil, &InvalidInputError{Field: "type", Message: fmt.Sprintf("unknown story type %q", req.Type)}
	}

	rec, err := s.lookup(ctx, userID, recordID, string(types.KindStories))
	if err != nil {
		return nil, err
	}

	story, err := s.generateStory(ctx, req.Type, storiesRequestFrom(rec.Profile))
	if err != nil {
		return nil, err
	}

	prior, _ := shape.Sequence(nil)(rec.Content["stories"]).([]any)
	stories := make([]any, len(prior))
	copy(stories, prior)

	replaced := false
	for i, item := range stories {
		slot, ok := item.(map[string]any)
		if !ok || slot["type"] != string(req.Type) {
			continue
		}
		updated := copyContent(slot)
		updated["title"] = story["title"]
		updated["content"] = story["content"]
		updated["generatedAt"] = story["generatedAt"]
		stories[i] = updated
		replaced = true
		break
	}
	if !replaced {
		stories = append(stories, story)
	}

	content := copyContent(rec.Content)
	content["stories"] = stories
	return s.replace(ctx, userID, recordID, content)
}

func (s *Service) generateStory(ctx context.Context, st types.StoryType, req *types.StoriesRequest) (map[string]any, error) {
	achievements := req.Achievements
	if achievements == "" {
		achievements = "(none given)"
	}

	obj, err := s.generate(ctx, prompts.KeyStory, map[string]string{
		"Tone":         orDefault(req.Tone, "professional"),
		"StoryType":    string(st),
		"StoryGuide":   storyGuides[st],
		"Profile":      toJSON(req.Profile),
		"Achievements": achievements,
	}, llm.TierAdvanced, schemas.SchemaStory)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"type":        string(st),
		"title":       orDefault(asString(obj["title"]), storyTitles[st]),
		"content":     asString(obj["content"]),
		"generatedAt": s.timestamp(),
	}, nil
}

// storiesRequestFrom recovers the original request saved as the record profile.
func storiesRequestFrom(profile map[string]any) *types.StoriesRequest {
	var req types.StoriesRequest
	if profile == nil {
		return &req
	}
	data, err := json.Marshal(profile)
	if err == nil {
		err = json.Unmarshal(data, &req)
	}
	if err != nil {
		log.Printf("[career] stored story profile is unreadable, regenerating without it: %v", err)
	}
	return &req
}
