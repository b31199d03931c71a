package models

import (
	"fmt"
	"strings"
	"time"
)

// Role is a team member's role. Roles are ordered: owner > admin > member.
// The zero value means the caller has no role in the team.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Rank maps a role to its numeric position in the hierarchy. An empty or
// unknown role ranks zero, below every real role.
func (r Role) Rank() int {
	switch r {
	case RoleOwner:
		return 3
	case RoleAdmin:
		return 2
	case RoleMember:
		return 1
	default:
		return 0
	}
}

// Defined reports whether the role is one of the known roles.
func (r Role) Defined() bool {
	return r.Rank() > 0
}

// ParseRole validates a role string coming from a request or the remote store.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Defined() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// GuestPrefix marks non-durable user identities minted for anonymous
// sessions. Guest accounts never become rows in the remote store.
const GuestPrefix = "guest-"

// IsGuest reports whether the user id belongs to a guest session.
func IsGuest(userID string) bool {
	return strings.HasPrefix(userID, GuestPrefix)
}

// ChecklistItem is a single entry of a task checklist.
type ChecklistItem struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// ReminderSettings controls the optional reminder attached to a task.
type ReminderSettings struct {
	Enabled bool       `json:"enabled"`
	At      *time.Time `json:"at,omitempty"`
	Sent    bool       `json:"sent"`
}

// Task is a single to-do item, personal or shared with a team.
type Task struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Category    string           `json:"category"`
	Completed   bool             `json:"completed"`
	Checklist   []ChecklistItem  `json:"checklist,omitempty"`
	DueDate     *time.Time       `json:"due_date,omitempty"`
	Reminder    ReminderSettings `json:"reminder"`
	TeamID      string           `json:"team_id,omitempty"`
	IsTeamTask  bool             `json:"is_team_task"`
	AssignedTo  string           `json:"assigned_to,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// ValidCategories enumerates the closed category set.
var ValidCategories = map[string]struct{}{
	"personal": {},
	"work":     {},
	"shopping": {},
	"health":   {},
	"finance":  {},
	"other":    {},
}

// Validate checks the task invariants that hold regardless of storage.
func (t Task) Validate() error {
	if t.Title == "" {
		return fmt.Errorf("task title must not be empty")
	}
	if t.Category != "" {
		if _, ok := ValidCategories[t.Category]; !ok {
			return fmt.Errorf("unknown category %q", t.Category)
		}
	}
	if t.TeamID == "" {
		if t.IsTeamTask {
			return fmt.Errorf("task without a team cannot be a team task")
		}
		if t.AssignedTo != "" {
			return fmt.Errorf("task without a team cannot have an assignee")
		}
	}
	return nil
}

// TeamStatusActive is the status every freshly created team starts in.
const TeamStatusActive = "active"

// Team groups tasks and members behind a shared join code.
type Team struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	JoinCode    string    `json:"join_code"`
	Status      string    `json:"status"`
	MaxMembers  int       `json:"max_members"`
	CreatedBy   *string   `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TeamMember is one (team, user) membership with its role.
type TeamMember struct {
	TeamID    string    `json:"team_id"`
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
	InvitedBy string    `json:"invited_by,omitempty"`
}
