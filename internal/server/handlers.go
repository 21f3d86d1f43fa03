package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/famcoord/famcoord/internal/domain"
	"github.com/famcoord/famcoord/internal/intelligence"
	"github.com/famcoord/famcoord/internal/repository"
	"github.com/famcoord/famcoord/internal/service"
	"github.com/gin-gonic/gin"
)

type ParseActivityRequest struct {
	Text string `json:"text"`
	// Members and Activities replace the stored snapshot when present.
	Members    []domain.Member   `json:"members"`
	Activities []domain.Activity `json:"activities"`
	Today      string            `json:"today"`
	// Apply writes the command when it does not need clarification.
	Apply bool `json:"apply"`
}

type ParseActivityResponse struct {
	Action     intelligence.Action         `json:"action"`
	Data       any                         `json:"data"`
	Confidence intelligence.Confidence     `json:"confidence"`
	State      intelligence.ExecutionState `json:"state"`
	Applied    *service.ApplyResult        `json:"applied,omitempty"`
}

func (s *Server) ParseActivity(c *gin.Context) {
	if s.deps.Commands == nil {
		s.writeError(c, service.ErrNaturalLanguageDisabled)
		return
	}
	var req ParseActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		badRequest(c, "text is required")
		return
	}

	// A caller's snapshot may name ids the store does not have, so only
	// commands resolved against the stored snapshot are written back.
	if req.Apply && (req.Members != nil || req.Activities != nil) {
		badRequest(c, "apply requires the stored snapshot")
		return
	}

	var today time.Time
	if req.Today != "" {
		t, err := time.Parse(domain.DateLayout, req.Today)
		if err != nil {
			badRequest(c, "today must be YYYY-MM-DD")
			return
		}
		today = t
	}

	ctx := c.Request.Context()
	outcome, err := s.deps.Commands.Interpret(ctx, service.InterpretRequest{
		Text:       req.Text,
		Today:      today,
		Members:    req.Members,
		Activities: req.Activities,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	cmd := outcome.Command
	resp := ParseActivityResponse{
		Action:     cmd.Action,
		Data:       cmd.Data(),
		Confidence: cmd.Confidence,
		State:      outcome.State,
	}
	if req.Apply && intelligence.IsWriteAction(cmd.Action) && outcome.State != intelligence.StateNeedsClarification {
		applied, err := s.deps.Commands.Apply(ctx, cmd)
		if err != nil {
			s.writeError(c, err)
			return
		}
		resp.Applied = applied
		resp.State = intelligence.StateExecuted
	}
	c.JSON(http.StatusOK, resp)
}

type prepTasksRequest struct {
	ActivityTitle string `json:"activityTitle"`
}

func (s *Server) SuggestPrepTasks(c *gin.Context) {
	var req prepTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if s.deps.PrepTasks == nil {
		s.writeError(c, intelligence.ErrFeatureDisabled)
		return
	}
	tasks, err := s.deps.PrepTasks.Suggest(c.Request.Context(), req.ActivityTitle)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if tasks == nil {
		tasks = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

type namedPerson struct {
	Name string `json:"name"`
}

type recommendRequest struct {
	Location    string        `json:"location"`
	Members     []namedPerson `json:"members"`
	Kids        []namedPerson `json:"kids"`
	Preferences string        `json:"preferences"`
}

func (s *Server) RecommendActivities(c *gin.Context) {
	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if s.deps.Recommend == nil {
		s.writeError(c, intelligence.ErrFeatureDisabled)
		return
	}
	var names []string
	for _, p := range append(req.Members, req.Kids...) {
		if n := strings.TrimSpace(p.Name); n != "" {
			names = append(names, n)
		}
	}
	recs, err := s.deps.Recommend.Recommend(c.Request.Context(), intelligence.RecommendRequest{
		Location:    req.Location,
		MemberNames: names,
		Preferences: req.Preferences,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}

type createMemberRequest struct {
	Name  string `json:"name"`
	Age   *int   `json:"age"`
	Color string `json:"color"`
}

func (s *Server) ListMembers(c *gin.Context) {
	members, err := s.deps.Members.List(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

func (s *Server) CreateMember(c *gin.Context) {
	var req createMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	m := &domain.Member{Name: req.Name, Age: req.Age, Color: req.Color}
	if err := s.deps.Members.Add(c.Request.Context(), m); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (s *Server) DeleteMember(c *gin.Context) {
	m, err := s.deps.Members.Remove(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (s *Server) ListActivities(c *gin.Context) {
	filter := repository.ActivityFilter{
		MemberID: c.Query("member"),
		From:     c.Query("from"),
		To:       c.Query("to"),
	}
	for _, d := range []string{filter.From, filter.To} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(domain.DateLayout, d); err != nil {
			badRequest(c, "from and to must be YYYY-MM-DD")
			return
		}
	}
	activities, err := s.deps.Activities.List(c.Request.Context(), filter)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activities": activities, "count": len(activities)})
}

func (s *Server) GetActivity(c *gin.Context) {
	a, err := s.deps.Activities.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *Server) DeleteActivity(c *gin.Context) {
	if err := s.deps.Activities.Remove(c.Request.Context(), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) Health(c *gin.Context) {
	body := gin.H{"status": "ok", "llmAvailable": false}
	if s.deps.LLM != nil {
		body["llmAvailable"] = s.deps.LLM.Available(c.Request.Context())
	}
	c.JSON(http.StatusOK, body)
}
