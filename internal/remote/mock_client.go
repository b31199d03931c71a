package remote

import (
	"context"
	"fmt"
	"time"

	"spaces/internal/models"
)

// MockClient is an in-memory Store for tests. It hands out sequential task
// ids, stamps timestamps from a controllable clock and records mutating calls
// in order.
type MockClient struct {
	err       error
	createErr error
	updateErr error

	nextTaskID int64
	now        time.Time

	tasks   map[int64]models.Task
	teams   map[string]models.Team
	members map[string][]models.TeamMember

	CreatedTasks []models.Task
	UpdatedTasks []int64
	DeletedTasks []int64
}

// NewMockClient returns an empty mock with the clock set to a fixed instant.
func NewMockClient() *MockClient {
	return &MockClient{
		nextTaskID: 1000,
		now:        time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		tasks:      make(map[int64]models.Task),
		teams:      make(map[string]models.Team),
		members:    make(map[string][]models.TeamMember),
	}
}

// SetError makes every call fail with err until cleared.
func (c *MockClient) SetError(err error) { c.err = err }

// SetCreateTaskError makes only CreateTask fail.
func (c *MockClient) SetCreateTaskError(err error) { c.createErr = err }

// SetUpdateTaskError makes only UpdateTask fail.
func (c *MockClient) SetUpdateTaskError(err error) { c.updateErr = err }

// SetNow moves the mock's clock.
func (c *MockClient) SetNow(now time.Time) { c.now = now }

// SeedTask places a task into the remote set as-is.
func (c *MockClient) SeedTask(t models.Task) { c.tasks[t.ID] = t }

// SeedTeam places a team and its members into the remote set as-is.
func (c *MockClient) SeedTeam(team models.Team, members []models.TeamMember) {
	c.teams[team.ID] = team
	c.members[team.ID] = members
}

// Members exposes the stored member rows of a team.
func (c *MockClient) Members(teamID string) []models.TeamMember { return c.members[teamID] }

func (c *MockClient) ListTasks(ctx context.Context, userID string) ([]models.Task, error) {
	if c.err != nil {
		return nil, c.err
	}
	var out []models.Task
	for _, t := range c.tasks {
		out = append(out, t)
	}
	return out, nil
}

func (c *MockClient) CreateTask(ctx context.Context, t models.Task, userID string) (models.Task, error) {
	if c.err != nil {
		return models.Task{}, c.err
	}
	if c.createErr != nil {
		return models.Task{}, c.createErr
	}
	c.nextTaskID++
	t.ID = c.nextTaskID
	t.CreatedAt = c.now
	t.UpdatedAt = c.now
	c.tasks[t.ID] = t
	c.CreatedTasks = append(c.CreatedTasks, t)
	return t, nil
}

func (c *MockClient) UpdateTask(ctx context.Context, id int64, fields TaskFields, userID string) (models.Task, error) {
	if c.err != nil {
		return models.Task{}, c.err
	}
	if c.updateErr != nil {
		return models.Task{}, c.updateErr
	}
	t, ok := c.tasks[id]
	if !ok {
		return models.Task{}, fmt.Errorf("%w: task %d", ErrNotFound, id)
	}
	applyTaskFields(&t, fields)
	t.UpdatedAt = c.now
	c.tasks[id] = t
	c.UpdatedTasks = append(c.UpdatedTasks, id)
	return t, nil
}

func (c *MockClient) DeleteTask(ctx context.Context, id int64, userID string) error {
	if c.err != nil {
		return c.err
	}
	delete(c.tasks, id)
	c.DeletedTasks = append(c.DeletedTasks, id)
	return nil
}

func (c *MockClient) GetTeam(ctx context.Context, teamID string) (models.Team, error) {
	if c.err != nil {
		return models.Team{}, c.err
	}
	team, ok := c.teams[teamID]
	if !ok {
		return models.Team{}, fmt.Errorf("%w: team %s", ErrNotFound, teamID)
	}
	return team, nil
}

func (c *MockClient) GetTeamByJoinCode(ctx context.Context, code string) (models.Team, error) {
	if c.err != nil {
		return models.Team{}, c.err
	}
	for _, team := range c.teams {
		if team.JoinCode == code {
			return team, nil
		}
	}
	return models.Team{}, fmt.Errorf("%w: join code %s", ErrNotFound, code)
}

func (c *MockClient) CreateTeam(ctx context.Context, team models.Team) (models.Team, error) {
	if c.err != nil {
		return models.Team{}, c.err
	}
	team.CreatedAt = c.now
	team.UpdatedAt = c.now
	c.teams[team.ID] = team
	return team, nil
}

func (c *MockClient) UpdateTeam(ctx context.Context, teamID string, name, description, avatarURL string) (models.Team, error) {
	if c.err != nil {
		return models.Team{}, c.err
	}
	team, ok := c.teams[teamID]
	if !ok {
		return models.Team{}, fmt.Errorf("%w: team %s", ErrNotFound, teamID)
	}
	team.Name = name
	team.Description = description
	team.AvatarURL = avatarURL
	team.UpdatedAt = c.now
	c.teams[teamID] = team
	return team, nil
}

func (c *MockClient) DeleteTeam(ctx context.Context, teamID string) error {
	if c.err != nil {
		return c.err
	}
	delete(c.teams, teamID)
	delete(c.members, teamID)
	return nil
}

func (c *MockClient) ListTeamMembers(ctx context.Context, teamID string) ([]models.TeamMember, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.members[teamID], nil
}

func (c *MockClient) AddTeamMember(ctx context.Context, m models.TeamMember) (models.TeamMember, error) {
	if c.err != nil {
		return models.TeamMember{}, c.err
	}
	m.JoinedAt = c.now
	c.members[m.TeamID] = append(c.members[m.TeamID], m)
	return m, nil
}

func (c *MockClient) RemoveTeamMember(ctx context.Context, teamID, userID string) error {
	if c.err != nil {
		return c.err
	}
	kept := c.members[teamID][:0]
	for _, m := range c.members[teamID] {
		if m.UserID != userID {
			kept = append(kept, m)
		}
	}
	c.members[teamID] = kept
	return nil
}

func (c *MockClient) UpdateTeamMemberRole(ctx context.Context, teamID, userID string, role models.Role) (models.TeamMember, error) {
	if c.err != nil {
		return models.TeamMember{}, c.err
	}
	for i, m := range c.members[teamID] {
		if m.UserID == userID {
			c.members[teamID][i].Role = role
			return c.members[teamID][i], nil
		}
	}
	return models.TeamMember{}, fmt.Errorf("%w: member %s in team %s", ErrNotFound, userID, teamID)
}

// applyTaskFields merges a partial update into a task the same way the
// service applies a PATCH.
func applyTaskFields(t *models.Task, fields TaskFields) {
	if v, ok := fields["title"].(string); ok {
		t.Title = v
	}
	if v, ok := fields["description"].(string); ok {
		t.Description = v
	}
	if v, ok := fields["category"].(string); ok {
		t.Category = v
	}
	if v, ok := fields["completed"].(bool); ok {
		t.Completed = v
	}
	if v, ok := fields["checklist"].([]models.ChecklistItem); ok {
		t.Checklist = v
	}
	if v, ok := fields["due_date"].(*time.Time); ok {
		t.DueDate = v
	}
	if v, ok := fields["reminder"].(models.ReminderSettings); ok {
		t.Reminder = v
	}
	if v, ok := fields["assigned_to"].(string); ok {
		t.AssignedTo = v
	}
}
