package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"spaces/internal/auth"
)

// handleSync merges the caller's local task list into the remote store and
// swaps the local cache for the reconciled set. The cache is only replaced
// after the whole sync succeeds, so a failed sync leaves local edits intact
// for the next attempt.
func (s *Server) handleSync(c *gin.Context) {
	userID := auth.UserID(c)
	ctx := c.Request.Context()

	local, err := s.local.ListTasks(ctx, userID)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}

	merged, err := s.reconciler.Sync(ctx, userID, local)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}

	if err := s.local.ReplaceAll(ctx, userID, merged); err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"tasks": merged})
}
