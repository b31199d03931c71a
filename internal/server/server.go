package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"spaces/internal/auth"
	"spaces/internal/reconcile"
	"spaces/internal/remote"
	"spaces/internal/storage/sqlite"
	"spaces/internal/teams"
)

// Server provides HTTP handlers for the Spaces backend.
type Server struct {
	engine     *gin.Engine
	remote     remote.Store
	local      *sqlite.Store
	teams      *teams.Service
	sessions   *auth.Manager
	reconciler *reconcile.Reconciler
	logger     *slog.Logger
	staticDir  string
}

// New constructs the HTTP server with routes and middleware configured.
func New(store remote.Store, local *sqlite.Store, sessions *auth.Manager, logger *slog.Logger, staticDir string) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/api"))

	srv := &Server{
		engine:     router,
		remote:     store,
		local:      local,
		teams:      teams.NewService(store, logger),
		sessions:   sessions,
		reconciler: reconcile.New(store, logger),
		logger:     logger,
		staticDir:  staticDir,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API and static handlers together.
func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)
		api.POST("/session/guest", s.handleGuestSession)

		authed := api.Group("", s.sessions.Middleware())
		{
			authed.GET("/tasks", s.handleListTasks)
			authed.POST("/tasks", s.handleCreateTask)
			authed.PUT("/tasks/:id", s.handleUpdateTask)
			authed.DELETE("/tasks/:id", s.handleDeleteTask)
			authed.POST("/sync", s.handleSync)

			teamsGroup := authed.Group("/teams")
			{
				teamsGroup.POST("", s.handleCreateTeam)
				teamsGroup.POST("/join", s.handleJoinTeam)
				teamsGroup.PUT(":id", s.handleUpdateTeam)
				teamsGroup.DELETE(":id", s.handleDeleteTeam)
				teamsGroup.GET(":id/members", s.handleListMembers)
				teamsGroup.POST(":id/members", s.handleInviteMember)
				teamsGroup.DELETE(":id/members/:userId", s.handleRemoveMember)
				teamsGroup.PUT(":id/members/:userId/role", s.handleUpdateMemberRole)
				teamsGroup.POST(":id/leave", s.handleLeaveTeam)
			}
		}
	}

	s.mountStatic()
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleGuestSession mints a token for a fresh non-durable identity.
func (s *Server) handleGuestSession(c *gin.Context) {
	userID := auth.NewGuestID()
	token, err := s.sessions.Issue(userID)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"token": token, "user_id": userID})
}

// parseID converts a path parameter to int64 with error handling.
func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid identifier"})
		return 0, false
	}
	return id, true
}

// respondError logs the error and returns a JSON payload.
func (s *Server) respondError(c *gin.Context, status int, err error) {
	if err != nil {
		s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// respondServiceError maps the error taxonomy to HTTP statuses.
func (s *Server) respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, teams.ErrValidation):
		s.respondError(c, http.StatusBadRequest, err)
	case errors.Is(err, teams.ErrPermissionDenied):
		s.respondError(c, http.StatusForbidden, err)
	case errors.Is(err, remote.ErrNotFound):
		s.respondError(c, http.StatusNotFound, err)
	default:
		s.respondError(c, http.StatusBadGateway, err)
	}
}

// respondSuccess wraps a payload in a JSON envelope for consistency.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}
