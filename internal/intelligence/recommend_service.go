package intelligence

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/famcoord/famcoord/internal/domain"
	"github.com/famcoord/famcoord/internal/llm"
)

const maxRecommendations = 8

var (
	// ErrLocationRequired is returned when no location is given.
	ErrLocationRequired = errors.New("location is required")

	// ErrNoRecommendations is returned when the model suggests nothing usable.
	ErrNoRecommendations = errors.New("no recommendations returned")

	// ErrFeatureDisabled is returned when recommendations are switched off.
	ErrFeatureDisabled = errors.New("feature disabled")
)

// RecommendRequest describes who the recommendations are for.
type RecommendRequest struct {
	Location    string
	MemberNames []string
	Preferences string
}

// Recommendation is one suggested activity with a venue.
type Recommendation struct {
	Title          string              `json:"title"`
	Venue          string              `json:"venue"`
	Type           domain.ActivityType `json:"type"`
	DurationMin    int                 `json:"durationMin"`
	AgeAppropriate string              `json:"ageAppropriate,omitempty"`
	BestTime       string              `json:"bestTime,omitempty"`
	Notes          string              `json:"notes,omitempty"`
}

// RecommendService suggests activities near a location.
type RecommendService interface {
	Recommend(ctx context.Context, req RecommendRequest) ([]Recommendation, error)
}

type recommendService struct {
	client  llm.LLMClient
	enabled bool
}

// NewRecommendService creates a RecommendService backed by an LLM client.
func NewRecommendService(client llm.LLMClient, enabled bool) RecommendService {
	return &recommendService{client: client, enabled: enabled}
}

type recommendationOutput struct {
	Title          looseString `json:"title"`
	Venue          looseString `json:"venue"`
	Type           looseString `json:"type"`
	DurationMin    looseString `json:"durationMin"`
	Duration       looseString `json:"duration"`
	AgeAppropriate looseString `json:"ageAppropriate"`
	BestTime       looseString `json:"bestTime"`
	Notes          looseString `json:"notes"`
}

func (s *recommendService) Recommend(ctx context.Context, req RecommendRequest) ([]Recommendation, error) {
	req.Location = strings.TrimSpace(req.Location)
	if req.Location == "" {
		return nil, ErrLocationRequired
	}
	if !s.enabled {
		return nil, ErrFeatureDisabled
	}

	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskRecommend,
		SystemPrompt: recommendSystemPrompt,
		UserPrompt:   buildRecommendUserPrompt(req),
	})
	if err != nil {
		return nil, fmt.Errorf("llm recommend failed: %w", err)
	}

	raw, err := llm.ExtractJSONArray[recommendationOutput](resp.Text, nil)
	if err != nil {
		return nil, fmt.Errorf("could not parse recommendations: %w", err)
	}

	recs := make([]Recommendation, 0, len(raw))
	for _, r := range raw {
		title := r.Title.String()
		if title == "" {
			continue
		}
		typ, ok := domain.ParseActivityType(r.Type.String())
		if !ok {
			typ = domain.TypeOther
		}
		recs = append(recs, Recommendation{
			Title:          title,
			Venue:          r.Venue.String(),
			Type:           typ,
			DurationMin:    parseMinutes(firstNonEmpty(r.DurationMin.String(), r.Duration.String())),
			AgeAppropriate: r.AgeAppropriate.String(),
			BestTime:       r.BestTime.String(),
			Notes:          r.Notes.String(),
		})
		if len(recs) == maxRecommendations {
			break
		}
	}
	if len(recs) == 0 {
		return nil, ErrNoRecommendations
	}
	return recs, nil
}

var durationPart = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(hours?|hrs?|h|minutes?|mins?|m)?\b`)

// parseMinutes reads a duration such as "90", "90 minutes", "1.5 hours" or
// "1 hour 30 minutes". Parts with a unit are summed; without any, the first
// bare number counts as hours when the text mentions hours and minutes
// otherwise. Anything unreadable gets the default activity length.
func parseMinutes(s string) int {
	s = strings.ToLower(s)
	total, bare := 0.0, -1.0
	for _, m := range durationPart.FindAllStringSubmatch(s, -1) {
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		switch {
		case m[2] == "":
			if bare < 0 {
				bare = n
			}
		case strings.HasPrefix(m[2], "h"):
			total += n * 60
		default:
			total += n
		}
	}
	if total == 0 && bare > 0 {
		total = bare
		if strings.Contains(s, "hour") {
			total *= 60
		}
	}
	if minutes := int(math.Round(total)); minutes > 0 {
		return minutes
	}
	return domain.DefaultDurationMin
}
