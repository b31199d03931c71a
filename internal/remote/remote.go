// Package remote talks to the hosted data service. The rest of the code
// depends on the TaskStore and TeamStore interfaces so tests can substitute
// the mock client.
package remote

import (
	"context"

	"spaces/internal/models"
)

// TaskFields is a partial update for a task, keyed by column name.
type TaskFields map[string]any

// TaskStore is the task half of the hosted service API.
type TaskStore interface {
	ListTasks(ctx context.Context, userID string) ([]models.Task, error)
	CreateTask(ctx context.Context, t models.Task, userID string) (models.Task, error)
	UpdateTask(ctx context.Context, id int64, fields TaskFields, userID string) (models.Task, error)
	DeleteTask(ctx context.Context, id int64, userID string) error
}

// TeamStore is the team and membership half of the hosted service API.
type TeamStore interface {
	GetTeam(ctx context.Context, teamID string) (models.Team, error)
	GetTeamByJoinCode(ctx context.Context, code string) (models.Team, error)
	CreateTeam(ctx context.Context, team models.Team) (models.Team, error)
	UpdateTeam(ctx context.Context, teamID string, name, description, avatarURL string) (models.Team, error)
	DeleteTeam(ctx context.Context, teamID string) error

	ListTeamMembers(ctx context.Context, teamID string) ([]models.TeamMember, error)
	AddTeamMember(ctx context.Context, m models.TeamMember) (models.TeamMember, error)
	RemoveTeamMember(ctx context.Context, teamID, userID string) error
	UpdateTeamMemberRole(ctx context.Context, teamID, userID string, role models.Role) (models.TeamMember, error)
}

// Store is the full remote API surface.
type Store interface {
	TaskStore
	TeamStore
}
