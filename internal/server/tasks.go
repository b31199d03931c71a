package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"spaces/internal/auth"
	"spaces/internal/models"
	"spaces/internal/permissions"
	"spaces/internal/remote"
)

type taskRequest struct {
	Title       *string                  `json:"title"`
	Description *string                  `json:"description"`
	Category    *string                  `json:"category"`
	Completed   *bool                    `json:"completed"`
	Checklist   []models.ChecklistItem   `json:"checklist"`
	DueDate     *time.Time               `json:"due_date"`
	Reminder    *models.ReminderSettings `json:"reminder"`
	TeamID      *string                  `json:"team_id"`
	IsTeamTask  *bool                    `json:"is_team_task"`
	AssignedTo  *string                  `json:"assigned_to"`
}

// handleListTasks fetches the caller's tasks from the remote store.
func (s *Server) handleListTasks(c *gin.Context) {
	userID := auth.UserID(c)

	tasks, err := s.remote.ListTasks(c.Request.Context(), userID)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"tasks": tasks})
}

// handleCreateTask inserts a new task for the caller.
func (s *Server) handleCreateTask(c *gin.Context) {
	userID := auth.UserID(c)

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Title == nil || *req.Title == "" {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("title is required"))
		return
	}

	task := models.Task{
		Title:       *req.Title,
		Description: getString(req.Description),
		Category:    getString(req.Category),
		Checklist:   req.Checklist,
		DueDate:     req.DueDate,
		TeamID:      getString(req.TeamID),
		AssignedTo:  getString(req.AssignedTo),
	}
	if req.Reminder != nil {
		task.Reminder = *req.Reminder
	}
	if req.IsTeamTask != nil {
		task.IsTeamTask = *req.IsTeamTask
	}
	if err := task.Validate(); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	if task.IsTeamTask {
		pc, err := s.taskContext(c, userID, task)
		if err != nil {
			s.respondServiceError(c, err)
			return
		}
		if !pc.CanViewTeam() {
			s.respondError(c, http.StatusForbidden, fmt.Errorf("not a member of team %s", task.TeamID))
			return
		}
		if task.AssignedTo != "" && !pc.CanAssignTask(task) {
			s.respondError(c, http.StatusForbidden, fmt.Errorf("only owners and admins assign tasks"))
			return
		}
	}

	created, err := s.remote.CreateTask(c.Request.Context(), task, userID)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	s.mirrorTask(c, userID, created)
	respondSuccess(c, http.StatusCreated, gin.H{"task": created})
}

// handleUpdateTask updates task fields, gated by the caller's permissions on
// team tasks.
func (s *Server) handleUpdateTask(c *gin.Context) {
	userID := auth.UserID(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	task, err := s.findTask(c, userID, id)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}

	pc, err := s.taskContext(c, userID, task)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}

	// Apply the requested fields to a copy so the merged result can be
	// validated as a whole before anything reaches the remote store.
	merged := task
	fields := remote.TaskFields{}
	if req.Title != nil {
		fields["title"] = *req.Title
		merged.Title = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
		merged.Description = *req.Description
	}
	if req.Category != nil {
		fields["category"] = *req.Category
		merged.Category = *req.Category
	}
	if req.Checklist != nil {
		fields["checklist"] = req.Checklist
		merged.Checklist = req.Checklist
	}
	if req.DueDate != nil {
		fields["due_date"] = req.DueDate
		merged.DueDate = req.DueDate
	}
	if req.Reminder != nil {
		fields["reminder"] = *req.Reminder
		merged.Reminder = *req.Reminder
	}
	if req.Completed != nil {
		fields["completed"] = *req.Completed
		merged.Completed = *req.Completed
	}
	if req.AssignedTo != nil {
		fields["assigned_to"] = *req.AssignedTo
		merged.AssignedTo = *req.AssignedTo
	}
	if err := merged.Validate(); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Completed != nil && !pc.CanCompleteTask(task) {
		s.respondError(c, http.StatusForbidden, fmt.Errorf("not allowed to complete this task"))
		return
	}
	if req.AssignedTo != nil && !pc.CanAssignTask(task) {
		s.respondError(c, http.StatusForbidden, fmt.Errorf("only owners and admins assign tasks"))
		return
	}
	if !pc.CanEditTask(task) {
		s.respondError(c, http.StatusForbidden, fmt.Errorf("not allowed to edit this task"))
		return
	}

	updated, err := s.remote.UpdateTask(c.Request.Context(), id, fields, userID)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	s.mirrorTask(c, userID, updated)
	respondSuccess(c, http.StatusOK, gin.H{"task": updated})
}

// handleDeleteTask removes a task completely.
func (s *Server) handleDeleteTask(c *gin.Context) {
	userID := auth.UserID(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	task, err := s.findTask(c, userID, id)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}

	pc, err := s.taskContext(c, userID, task)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	if !pc.CanDeleteTask(task) {
		s.respondError(c, http.StatusForbidden, fmt.Errorf("not allowed to delete this task"))
		return
	}

	if err := s.remote.DeleteTask(c.Request.Context(), id, userID); err != nil {
		s.respondServiceError(c, err)
		return
	}
	if err := s.local.DeleteTask(c.Request.Context(), userID, id); err != nil {
		s.logger.Warn("local cache delete failed", "task", id, "error", err)
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}

// mirrorTask keeps the local cache in step with a confirmed remote write. A
// cache failure is logged, not surfaced; the next sync repairs it.
func (s *Server) mirrorTask(c *gin.Context, userID string, task models.Task) {
	if err := s.local.UpsertTask(c.Request.Context(), userID, task); err != nil {
		s.logger.Warn("local cache write failed", "task", task.ID, "error", err)
	}
}

// findTask locates one of the caller's tasks in the remote store.
func (s *Server) findTask(c *gin.Context, userID string, id int64) (models.Task, error) {
	tasks, err := s.remote.ListTasks(c.Request.Context(), userID)
	if err != nil {
		return models.Task{}, err
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return models.Task{}, fmt.Errorf("%w: task %d", remote.ErrNotFound, id)
}

// taskContext assembles the caller's permission context for a task. Personal
// tasks need no member list; team tasks resolve the caller's role from the
// team's current membership.
func (s *Server) taskContext(c *gin.Context, userID string, task models.Task) (permissions.Context, error) {
	if !task.IsTeamTask {
		return permissions.Context{UserID: userID}, nil
	}

	team, err := s.remote.GetTeam(c.Request.Context(), task.TeamID)
	if err != nil {
		return permissions.Context{}, err
	}
	members, err := s.remote.ListTeamMembers(c.Request.Context(), task.TeamID)
	if err != nil {
		return permissions.Context{}, err
	}
	return permissions.NewContext(userID, &team, members), nil
}

func getString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
