package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// RecordKind identifies what a saved career record holds.
type RecordKind string

// Record kinds persisted by the store.
const (
	KindGuidance  RecordKind = "guidance"
	KindInterview RecordKind = "interview"
	KindJobs      RecordKind = "jobs"
	KindDiscovery RecordKind = "discovery"
	KindStories   RecordKind = "stories"
)

// AllKinds lists every record kind in dashboard order.
func AllKinds() []RecordKind {
	return []RecordKind{KindGuidance, KindInterview, KindJobs, KindDiscovery, KindStories}
}

// ParseRecordKind converts a query value into a RecordKind.
func ParseRecordKind(s string) (RecordKind, error) {
	for _, k := range AllKinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown record kind: %q", s)
}

// StoryType is one slot of a career story set.
type StoryType string

// The fixed set of story slots.
const (
	StoryJourney     StoryType = "journey"
	StoryAchievement StoryType = "achievement"
	StoryChallenge   StoryType = "challenge"
	StoryVision      StoryType = "vision"
)

// AllStoryTypes lists the story slots in display order.
func AllStoryTypes() []StoryType {
	return []StoryType{StoryJourney, StoryAchievement, StoryChallenge, StoryVision}
}

// Valid reports whether t is one of the fixed story types.
func (t StoryType) Valid() bool {
	for _, st := range AllStoryTypes() {
		if st == t {
			return true
		}
	}
	return false
}

// CareerProfile is the career information a user fills in on the forms.
type CareerProfile struct {
	Name            string   `json:"name,omitempty"`
	CurrentRole     string   `json:"currentRole,omitempty"`
	ExperienceYears int      `json:"experienceYears" validate:"gte=0,lte=60"`
	Education       string   `json:"education,omitempty"`
	Skills          []string `json:"skills" validate:"required,min=1,dive,required"`
	Interests       []string `json:"interests,omitempty"`
	Goals           string   `json:"goals,omitempty"`
	Location        string   `json:"location,omitempty"`
	Language        string   `json:"language,omitempty"` // answer language, defaults to English
}

// GuidanceRequest asks for career paths and a learning roadmap.
type GuidanceRequest struct {
	Profile CareerProfile `json:"profile"`
}

// InterviewRequest asks for a set of mock interview questions.
type InterviewRequest struct {
	JobRole         string `json:"jobRole" validate:"required"`
	ExperienceLevel string `json:"experienceLevel,omitempty" validate:"omitempty,oneof=entry mid senior lead"`
	InterviewType   string `json:"interviewType,omitempty" validate:"omitempty,oneof=technical behavioral mixed"`
	QuestionCount   int    `json:"questionCount,omitempty" validate:"omitempty,min=1,max=20"`
	Language        string `json:"language,omitempty"`
}

// AnswerRequest submits an answer to one mock interview question.
type AnswerRequest struct {
	QuestionIndex int    `json:"questionIndex" validate:"gte=0"`
	Answer        string `json:"answer" validate:"required"`
}

// JobSuggestionsRequest asks for job openings that fit a profile.
type JobSuggestionsRequest struct {
	Profile           CareerProfile `json:"profile"`
	PreferredLocation string        `json:"preferredLocation,omitempty"`
	WorkType          string        `json:"workType,omitempty" validate:"omitempty,oneof=remote hybrid onsite any"`
}

// DiscoveryAnswer is one answered discovery question.
type DiscoveryAnswer struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
}

// DiscoveryRequest asks for careers suggested by a set of discovery answers.
type DiscoveryRequest struct {
	Answers  []DiscoveryAnswer `json:"answers" validate:"required,min=1,dive"`
	Language string            `json:"language,omitempty"`
}

// StoriesRequest asks for a full set of career stories.
type StoriesRequest struct {
	Profile      CareerProfile `json:"profile"`
	Achievements string        `json:"achievements,omitempty"`
	Tone         string        `json:"tone,omitempty" validate:"omitempty,oneof=professional conversational inspiring"`
}

// RegenerateStoryRequest replaces one story slot.
type RegenerateStoryRequest struct {
	Type StoryType `json:"type" validate:"required,oneof=journey achievement challenge vision"`
}

var validate = validator.New()

// Validate validates the GuidanceRequest using the validator.
func (r *GuidanceRequest) Validate() error { return validate.Struct(r) }

// Validate validates the InterviewRequest using the validator.
func (r *InterviewRequest) Validate() error { return validate.Struct(r) }

// Validate validates the AnswerRequest using the validator.
func (r *AnswerRequest) Validate() error { return validate.Struct(r) }

// Validate validates the JobSuggestionsRequest using the validator.
func (r *JobSuggestionsRequest) Validate() error { return validate.Struct(r) }

// Validate validates the DiscoveryRequest using the validator.
func (r *DiscoveryRequest) Validate() error { return validate.Struct(r) }

// Validate validates the StoriesRequest using the validator.
func (r *StoriesRequest) Validate() error { return validate.Struct(r) }

// Validate validates the RegenerateStoryRequest using the validator.
func (r *RegenerateStoryRequest) Validate() error { return validate.Struct(r) }
