// Package permissions decides whether an actor may perform team and task
// operations. Every check is a pure function of the supplied context; the
// caller assembles the context fresh from session state whenever the current
// user, team or member list changes.
package permissions

import (
	"spaces/internal/models"
)

// Context carries everything a permission check may look at. Role is the
// caller's role in Team; the zero value means the caller has no role, which
// denies every team-level check.
type Context struct {
	UserID  string
	Role    models.Role
	Team    *models.Team
	Members []models.TeamMember
}

// CanUpdateTeam reports whether the caller may change team name, description
// or avatar.
func (c Context) CanUpdateTeam() bool {
	return c.Role.Rank() >= models.RoleAdmin.Rank()
}

// CanManageSettings mirrors CanUpdateTeam for the settings surface.
func (c Context) CanManageSettings() bool {
	return c.CanUpdateTeam()
}

// CanDeleteTeam is reserved for the owner.
func (c Context) CanDeleteTeam() bool {
	return c.Role == models.RoleOwner
}

// CanInviteMembers reports whether the caller may invite new members.
func (c Context) CanInviteMembers() bool {
	return c.Role.Rank() >= models.RoleAdmin.Rank()
}

// CanRemoveMembers reports whether the caller may remove members at all.
// Per-target restrictions live in CanRemoveMember.
func (c Context) CanRemoveMembers() bool {
	return c.Role.Rank() >= models.RoleAdmin.Rank()
}

// CanUpdateMemberRoles reports whether the caller may change roles at all.
// Per-target restrictions live in CanUpdateMemberRole.
func (c Context) CanUpdateMemberRoles() bool {
	return c.Role.Rank() >= models.RoleAdmin.Rank()
}

// CanRemoveMember decides removal of one specific member. An owner cannot
// remove themselves (they must transfer ownership or delete the team), and an
// admin can never remove an owner.
func (c Context) CanRemoveMember(target models.TeamMember) bool {
	if !c.CanRemoveMembers() {
		return false
	}
	if target.UserID == c.UserID && c.Role == models.RoleOwner {
		return false
	}
	if c.Role == models.RoleAdmin && target.Role == models.RoleOwner {
		return false
	}
	return true
}

// CanUpdateMemberRole decides a role change for one specific member. An owner
// cannot change their own role here, and an admin can neither touch an owner
// nor promote anyone to owner.
func (c Context) CanUpdateMemberRole(target models.TeamMember, newRole models.Role) bool {
	if !c.CanUpdateMemberRoles() {
		return false
	}
	if target.UserID == c.UserID && c.Role == models.RoleOwner {
		return false
	}
	if c.Role == models.RoleAdmin && (target.Role == models.RoleOwner || newRole == models.RoleOwner) {
		return false
	}
	return true
}

// CanViewTeam is true for any member, whatever the role.
func (c Context) CanViewTeam() bool {
	return c.Role.Defined()
}

// CanLeaveTeam is true for everyone but the owner; the owner has to transfer
// ownership or delete the team instead.
func (c Context) CanLeaveTeam() bool {
	return c.Role.Defined() && c.Role != models.RoleOwner
}

// CanViewTask reports whether the caller may see the task. Personal tasks are
// pre-filtered by the data layer's row scoping, so they are always visible
// here; team tasks require a role.
func (c Context) CanViewTask(t models.Task) bool {
	if !t.IsTeamTask {
		return true
	}
	return c.Role.Defined()
}

// CanEditTask reports whether the caller may modify the task's fields. An
// unassigned team task is only editable by admins and owners; the assignee
// clause must not match empty-against-empty.
func (c Context) CanEditTask(t models.Task) bool {
	if !t.IsTeamTask {
		return true
	}
	if t.AssignedTo != "" && t.AssignedTo == c.UserID {
		return true
	}
	return c.Role.Rank() >= models.RoleAdmin.Rank()
}

// CanDeleteTask follows the same rule as editing.
func (c Context) CanDeleteTask(t models.Task) bool {
	return c.CanEditTask(t)
}

// CanCompleteTask follows the same rule as editing.
func (c Context) CanCompleteTask(t models.Task) bool {
	return c.CanEditTask(t)
}

// CanAssignTask reports whether the caller may change the task's assignee.
// Assignment only exists on team tasks.
func (c Context) CanAssignTask(t models.Task) bool {
	if !t.IsTeamTask {
		return false
	}
	return c.Role.Rank() >= models.RoleAdmin.Rank()
}

// ShowTeamSettings gates the team settings panel.
func (c Context) ShowTeamSettings() bool {
	return c.CanManageSettings()
}

// ShowMemberManagement gates the member management panel.
func (c Context) ShowMemberManagement() bool {
	return c.CanInviteMembers() || c.CanRemoveMembers() || c.CanUpdateMemberRoles()
}

// ShowDeleteTeamButton gates the delete-team control.
func (c Context) ShowDeleteTeamButton() bool {
	return c.CanDeleteTeam()
}

// ShowTaskActions gates the edit/delete/complete controls for a task.
func (c Context) ShowTaskActions(t models.Task) bool {
	return c.CanEditTask(t) || c.CanDeleteTask(t) || c.CanCompleteTask(t)
}

// ShowAssignmentControls gates the assignee picker for a task.
func (c Context) ShowAssignmentControls(t models.Task) bool {
	return c.CanAssignTask(t)
}

// RoleOf looks up the role of a user in a member list; it returns the zero
// role when the user is not a member.
func RoleOf(userID string, members []models.TeamMember) models.Role {
	for _, m := range members {
		if m.UserID == userID {
			return m.Role
		}
	}
	return ""
}

// NewContext assembles a context for a user against a team and its member
// list, resolving the user's role from the list.
func NewContext(userID string, team *models.Team, members []models.TeamMember) Context {
	return Context{
		UserID:  userID,
		Role:    RoleOf(userID, members),
		Team:    team,
		Members: members,
	}
}
