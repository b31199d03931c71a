package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"spaces/internal/auth"
	"spaces/internal/models"
)

type teamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	AvatarURL   string `json:"avatar_url"`
	MaxMembers  int    `json:"max_members"`
}

type joinRequest struct {
	Code string `json:"code"`
}

type inviteRequest struct {
	UserID string `json:"user_id"`
}

type roleRequest struct {
	Role string `json:"role"`
}

// handleCreateTeam creates a new team owned by the caller.
func (s *Server) handleCreateTeam(c *gin.Context) {
	var req teamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	team, err := s.teams.CreateTeam(c.Request.Context(), auth.UserID(c), req.Name, req.Description, req.MaxMembers)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"team": team})
}

// handleJoinTeam adds the caller to the team behind a join code.
func (s *Server) handleJoinTeam(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	team, err := s.teams.JoinByCode(c.Request.Context(), auth.UserID(c), req.Code)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"team": team})
}

// handleUpdateTeam renames a team or changes its description and avatar.
func (s *Server) handleUpdateTeam(c *gin.Context) {
	var req teamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	team, err := s.teams.UpdateTeam(c.Request.Context(), auth.UserID(c), c.Param("id"), req.Name, req.Description, req.AvatarURL)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"team": team})
}

// handleDeleteTeam removes a team and, by remote-side cascade, its members
// and tasks.
func (s *Server) handleDeleteTeam(c *gin.Context) {
	if err := s.teams.DeleteTeam(c.Request.Context(), auth.UserID(c), c.Param("id")); err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}

// handleListMembers returns the team's member list.
func (s *Server) handleListMembers(c *gin.Context) {
	members, err := s.teams.Members(c.Request.Context(), auth.UserID(c), c.Param("id"))
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"members": members})
}

// handleInviteMember adds a user to the team directly.
func (s *Server) handleInviteMember(c *gin.Context) {
	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	member, err := s.teams.InviteMember(c.Request.Context(), auth.UserID(c), c.Param("id"), req.UserID)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"member": member})
}

// handleRemoveMember removes one member from the team.
func (s *Server) handleRemoveMember(c *gin.Context) {
	err := s.teams.RemoveMember(c.Request.Context(), auth.UserID(c), c.Param("id"), c.Param("userId"))
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "removed"})
}

// handleUpdateMemberRole changes one member's role.
func (s *Server) handleUpdateMemberRole(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	member, err := s.teams.UpdateMemberRole(c.Request.Context(), auth.UserID(c), c.Param("id"), c.Param("userId"), models.Role(req.Role))
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"member": member})
}

// handleLeaveTeam drops the caller's own membership.
func (s *Server) handleLeaveTeam(c *gin.Context) {
	if err := s.teams.LeaveTeam(c.Request.Context(), auth.UserID(c), c.Param("id")); err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "left"})
}
