package server

import (
	"errors"
	"net/http"

	"github.com/famcoord/famcoord/internal/intelligence"
	"github.com/famcoord/famcoord/internal/llm"
	"github.com/famcoord/famcoord/internal/repository"
	"github.com/famcoord/famcoord/internal/service"
	"github.com/gin-gonic/gin"
)

// writeError maps service and interpreter errors onto status codes.
func (s *Server) writeError(c *gin.Context, err error) {
	if ie, ok := intelligence.AsInterpretError(err); ok {
		body := gin.H{"error": ie.Message, "code": ie.Code}
		switch ie.Code {
		case intelligence.CodeMemberNotFound:
			body["attemptedName"] = ie.AttemptedName
			body["availableMembers"] = ie.Roster
			c.JSON(http.StatusBadRequest, body)
		case intelligence.CodeActivityNotFound:
			body["suggestion"] = ie.Suggestion
			c.JSON(http.StatusNotFound, body)
		default:
			c.JSON(http.StatusUnprocessableEntity, body)
		}
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrMemberExists):
		status = http.StatusConflict
	case errors.Is(err, service.ErrMemberNameRequired),
		errors.Is(err, intelligence.ErrTitleRequired),
		errors.Is(err, intelligence.ErrLocationRequired),
		errors.Is(err, service.ErrNothingToApply):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrNaturalLanguageDisabled),
		errors.Is(err, intelligence.ErrFeatureDisabled):
		status = http.StatusForbidden
	case errors.Is(err, llm.ErrTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, llm.ErrProviderUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, llm.ErrInvalidOutput), errors.Is(err, llm.ErrRetryExhausted):
		status = http.StatusBadGateway
	}
	body := gin.H{"error": err.Error()}
	if code := llm.ErrorCode(err); code != "UNKNOWN" {
		body["code"] = code
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
