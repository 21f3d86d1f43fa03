// Package server exposes the command interpreter and the household store
// over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/famcoord/famcoord/internal/intelligence"
	"github.com/famcoord/famcoord/internal/llm"
	"github.com/famcoord/famcoord/internal/service"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

// Deps are the services the handlers call. LLM is only used for the health
// check and may be nil.
type Deps struct {
	Commands   service.CommandService
	Members    service.MemberService
	Activities service.ActivityService
	PrepTasks  intelligence.PrepTaskService
	Recommend  intelligence.RecommendService
	LLM        llm.LLMClient
	Logger     *slog.Logger
	// CORSOrigins lists allowed origins; empty or "*" allows any.
	CORSOrigins []string
}

type Server struct {
	deps   Deps
	logger *slog.Logger
}

func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{deps: deps, logger: logger}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger), cors(s.deps.CORSOrigins))

	r.GET("/healthz", s.Health)

	api := r.Group("/api")
	api.POST("/parse-activity", s.ParseActivity)
	api.POST("/suggest-prep-tasks", s.SuggestPrepTasks)
	api.POST("/recommend-activities", s.RecommendActivities)

	api.GET("/members", s.ListMembers)
	api.POST("/members", s.CreateMember)
	api.DELETE("/members/:id", s.DeleteMember)

	api.GET("/activities", s.ListActivities)
	api.GET("/activities/:id", s.GetActivity)
	api.DELETE("/activities/:id", s.DeleteActivity)

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
