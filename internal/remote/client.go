package remote

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-resty/resty/v2"

	"spaces/internal/models"
)

// Client calls the hosted service's REST API. The service speaks a
// PostgREST-style dialect: table endpoints under /rest/v1, column filters as
// query parameters, mutated rows echoed back when asked for.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// NewClient builds a client for the service at baseURL authenticated with the
// project API key.
func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	http := resty.New().
		SetBaseURL(baseURL).
		SetHeader("apikey", apiKey).
		SetHeader("Authorization", "Bearer "+apiKey).
		SetHeader("Content-Type", "application/json")

	return &Client{http: http, logger: logger}
}

// single asks the service to return exactly one mutated/selected row as an
// object instead of a one-element array.
func single(req *resty.Request) *resty.Request {
	return req.
		SetHeader("Accept", "application/vnd.pgrst.object+json").
		SetHeader("Prefer", "return=representation")
}

// ListTasks fetches every task visible to the user, oldest first.
func (c *Client) ListTasks(ctx context.Context, userID string) ([]models.Task, error) {
	var tasks []models.Task
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("user_id", "eq."+userID).
		SetQueryParam("order", "created_at.asc").
		SetResult(&tasks).
		Get("/rest/v1/tasks")
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if resp.IsError() {
		return nil, toErrorFromResponse(resp)
	}
	return tasks, nil
}

// CreateTask inserts a task for the user and returns the stored row with the
// server-assigned id and timestamps.
func (c *Client) CreateTask(ctx context.Context, t models.Task, userID string) (models.Task, error) {
	var created models.Task
	resp, err := single(c.http.R()).
		SetContext(ctx).
		SetQueryParam("user_id", "eq."+userID).
		SetBody(t).
		SetResult(&created).
		Post("/rest/v1/tasks")
	if err != nil {
		return models.Task{}, fmt.Errorf("create task: %w", err)
	}
	if resp.IsError() {
		return models.Task{}, toErrorFromResponse(resp)
	}
	return created, nil
}

// UpdateTask patches the given columns of a task and returns the stored row.
func (c *Client) UpdateTask(ctx context.Context, id int64, fields TaskFields, userID string) (models.Task, error) {
	var updated models.Task
	resp, err := single(c.http.R()).
		SetContext(ctx).
		SetQueryParam("id", fmt.Sprintf("eq.%d", id)).
		SetQueryParam("user_id", "eq."+userID).
		SetBody(fields).
		SetResult(&updated).
		Patch("/rest/v1/tasks")
	if err != nil {
		return models.Task{}, fmt.Errorf("update task %d: %w", id, err)
	}
	if resp.IsError() {
		return models.Task{}, toErrorFromResponse(resp)
	}
	return updated, nil
}

// DeleteTask removes a task owned by the user.
func (c *Client) DeleteTask(ctx context.Context, id int64, userID string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("id", fmt.Sprintf("eq.%d", id)).
		SetQueryParam("user_id", "eq."+userID).
		Delete("/rest/v1/tasks")
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	if resp.IsError() {
		return toErrorFromResponse(resp)
	}
	return nil
}

// GetTeam fetches one team by id.
func (c *Client) GetTeam(ctx context.Context, teamID string) (models.Team, error) {
	var team models.Team
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/vnd.pgrst.object+json").
		SetQueryParam("id", "eq."+teamID).
		SetResult(&team).
		Get("/rest/v1/teams")
	if err != nil {
		return models.Team{}, fmt.Errorf("get team %s: %w", teamID, err)
	}
	if resp.IsError() {
		return models.Team{}, toErrorFromResponse(resp)
	}
	return team, nil
}

// GetTeamByJoinCode resolves an invitation code to its team.
func (c *Client) GetTeamByJoinCode(ctx context.Context, code string) (models.Team, error) {
	var team models.Team
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/vnd.pgrst.object+json").
		SetQueryParam("join_code", "eq."+code).
		SetResult(&team).
		Get("/rest/v1/teams")
	if err != nil {
		return models.Team{}, fmt.Errorf("get team by join code: %w", err)
	}
	if resp.IsError() {
		return models.Team{}, toErrorFromResponse(resp)
	}
	return team, nil
}

// CreateTeam inserts a team row.
func (c *Client) CreateTeam(ctx context.Context, team models.Team) (models.Team, error) {
	var created models.Team
	resp, err := single(c.http.R()).
		SetContext(ctx).
		SetBody(team).
		SetResult(&created).
		Post("/rest/v1/teams")
	if err != nil {
		return models.Team{}, fmt.Errorf("create team: %w", err)
	}
	if resp.IsError() {
		return models.Team{}, toErrorFromResponse(resp)
	}
	return created, nil
}

// UpdateTeam changes a team's name, description and avatar.
func (c *Client) UpdateTeam(ctx context.Context, teamID string, name, description, avatarURL string) (models.Team, error) {
	var updated models.Team
	resp, err := single(c.http.R()).
		SetContext(ctx).
		SetQueryParam("id", "eq."+teamID).
		SetBody(map[string]any{
			"name":        name,
			"description": description,
			"avatar_url":  avatarURL,
		}).
		SetResult(&updated).
		Patch("/rest/v1/teams")
	if err != nil {
		return models.Team{}, fmt.Errorf("update team %s: %w", teamID, err)
	}
	if resp.IsError() {
		return models.Team{}, toErrorFromResponse(resp)
	}
	return updated, nil
}

// DeleteTeam removes a team; members and team tasks cascade on the service
// side.
func (c *Client) DeleteTeam(ctx context.Context, teamID string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("id", "eq."+teamID).
		Delete("/rest/v1/teams")
	if err != nil {
		return fmt.Errorf("delete team %s: %w", teamID, err)
	}
	if resp.IsError() {
		return toErrorFromResponse(resp)
	}
	return nil
}

// ListTeamMembers fetches the member rows of a team ordered by join date.
func (c *Client) ListTeamMembers(ctx context.Context, teamID string) ([]models.TeamMember, error) {
	var members []models.TeamMember
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("team_id", "eq."+teamID).
		SetQueryParam("order", "joined_at.asc").
		SetResult(&members).
		Get("/rest/v1/team_members")
	if err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}
	if resp.IsError() {
		return nil, toErrorFromResponse(resp)
	}
	return members, nil
}

// AddTeamMember inserts a membership row.
func (c *Client) AddTeamMember(ctx context.Context, m models.TeamMember) (models.TeamMember, error) {
	var created models.TeamMember
	resp, err := single(c.http.R()).
		SetContext(ctx).
		SetBody(m).
		SetResult(&created).
		Post("/rest/v1/team_members")
	if err != nil {
		return models.TeamMember{}, fmt.Errorf("add team member: %w", err)
	}
	if resp.IsError() {
		return models.TeamMember{}, toErrorFromResponse(resp)
	}
	return created, nil
}

// RemoveTeamMember deletes a membership row.
func (c *Client) RemoveTeamMember(ctx context.Context, teamID, userID string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("team_id", "eq."+teamID).
		SetQueryParam("user_id", "eq."+userID).
		Delete("/rest/v1/team_members")
	if err != nil {
		return fmt.Errorf("remove team member: %w", err)
	}
	if resp.IsError() {
		return toErrorFromResponse(resp)
	}
	return nil
}

// UpdateTeamMemberRole changes one member's role.
func (c *Client) UpdateTeamMemberRole(ctx context.Context, teamID, userID string, role models.Role) (models.TeamMember, error) {
	var updated models.TeamMember
	resp, err := single(c.http.R()).
		SetContext(ctx).
		SetQueryParam("team_id", "eq."+teamID).
		SetQueryParam("user_id", "eq."+userID).
		SetBody(map[string]any{"role": role}).
		SetResult(&updated).
		Patch("/rest/v1/team_members")
	if err != nil {
		return models.TeamMember{}, fmt.Errorf("update member role: %w", err)
	}
	if resp.IsError() {
		return models.TeamMember{}, toErrorFromResponse(resp)
	}
	return updated, nil
}
