package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"spaces/internal/models"
)

func ctxWithRole(userID string, role models.Role) Context {
	return Context{UserID: userID, Role: role}
}

func TestTeamChecksDenyWithoutRole(t *testing.T) {
	c := Context{UserID: "u1"}

	assert.False(t, c.CanUpdateTeam())
	assert.False(t, c.CanManageSettings())
	assert.False(t, c.CanDeleteTeam())
	assert.False(t, c.CanInviteMembers())
	assert.False(t, c.CanRemoveMembers())
	assert.False(t, c.CanUpdateMemberRoles())
	assert.False(t, c.CanViewTeam())
	assert.False(t, c.CanLeaveTeam())
	assert.False(t, c.CanRemoveMember(models.TeamMember{UserID: "u2", Role: models.RoleMember}))
	assert.False(t, c.CanUpdateMemberRole(models.TeamMember{UserID: "u2", Role: models.RoleMember}, models.RoleAdmin))
}

func TestTeamLevelChecksByRole(t *testing.T) {
	tests := []struct {
		role   models.Role
		update bool
		del    bool
		invite bool
		view   bool
		leave  bool
	}{
		{role: models.RoleOwner, update: true, del: true, invite: true, view: true, leave: false},
		{role: models.RoleAdmin, update: true, del: false, invite: true, view: true, leave: true},
		{role: models.RoleMember, update: false, del: false, invite: false, view: true, leave: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			c := ctxWithRole("u1", tt.role)
			assert.Equal(t, tt.update, c.CanUpdateTeam())
			assert.Equal(t, tt.update, c.CanManageSettings())
			assert.Equal(t, tt.del, c.CanDeleteTeam())
			assert.Equal(t, tt.invite, c.CanInviteMembers())
			assert.Equal(t, tt.invite, c.CanRemoveMembers())
			assert.Equal(t, tt.invite, c.CanUpdateMemberRoles())
			assert.Equal(t, tt.view, c.CanViewTeam())
			assert.Equal(t, tt.leave, c.CanLeaveTeam())
		})
	}
}

func TestCanRemoveMember(t *testing.T) {
	owner := models.TeamMember{UserID: "owner", Role: models.RoleOwner}
	admin := models.TeamMember{UserID: "admin", Role: models.RoleAdmin}
	member := models.TeamMember{UserID: "member", Role: models.RoleMember}

	tests := []struct {
		name   string
		ctx    Context
		target models.TeamMember
		want   bool
	}{
		{name: "owner removes member", ctx: ctxWithRole("owner", models.RoleOwner), target: member, want: true},
		{name: "owner removes admin", ctx: ctxWithRole("owner", models.RoleOwner), target: admin, want: true},
		{name: "owner cannot remove self", ctx: ctxWithRole("owner", models.RoleOwner), target: owner, want: false},
		{name: "admin removes member", ctx: ctxWithRole("admin", models.RoleAdmin), target: member, want: true},
		{name: "admin cannot remove owner", ctx: ctxWithRole("admin", models.RoleAdmin), target: owner, want: false},
		{name: "admin can remove self", ctx: ctxWithRole("admin", models.RoleAdmin), target: admin, want: true},
		{name: "member cannot remove anyone", ctx: ctxWithRole("member", models.RoleMember), target: member, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ctx.CanRemoveMember(tt.target))
		})
	}
}

func TestCanUpdateMemberRole(t *testing.T) {
	owner := models.TeamMember{UserID: "owner", Role: models.RoleOwner}
	admin := models.TeamMember{UserID: "admin", Role: models.RoleAdmin}
	member := models.TeamMember{UserID: "member", Role: models.RoleMember}

	tests := []struct {
		name    string
		ctx     Context
		target  models.TeamMember
		newRole models.Role
		want    bool
	}{
		{name: "owner promotes member to admin", ctx: ctxWithRole("owner", models.RoleOwner), target: member, newRole: models.RoleAdmin, want: true},
		{name: "owner transfers ownership", ctx: ctxWithRole("owner", models.RoleOwner), target: admin, newRole: models.RoleOwner, want: true},
		{name: "owner cannot change own role", ctx: ctxWithRole("owner", models.RoleOwner), target: owner, newRole: models.RoleMember, want: false},
		{name: "admin promotes member to admin", ctx: ctxWithRole("admin", models.RoleAdmin), target: member, newRole: models.RoleAdmin, want: true},
		{name: "admin cannot promote to owner", ctx: ctxWithRole("admin", models.RoleAdmin), target: member, newRole: models.RoleOwner, want: false},
		{name: "admin cannot demote owner", ctx: ctxWithRole("admin", models.RoleAdmin), target: owner, newRole: models.RoleMember, want: false},
		{name: "member cannot change roles", ctx: ctxWithRole("member", models.RoleMember), target: member, newRole: models.RoleAdmin, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ctx.CanUpdateMemberRole(tt.target, tt.newRole))
		})
	}
}

func TestPersonalTaskAlwaysActionable(t *testing.T) {
	task := models.Task{ID: 1, Title: "buy milk"}

	for _, role := range []models.Role{"", models.RoleMember, models.RoleAdmin, models.RoleOwner} {
		c := ctxWithRole("u1", role)
		assert.True(t, c.CanViewTask(task), "role %q", role)
		assert.True(t, c.CanEditTask(task), "role %q", role)
		assert.True(t, c.CanDeleteTask(task), "role %q", role)
		assert.True(t, c.CanCompleteTask(task), "role %q", role)
		assert.False(t, c.CanAssignTask(task), "role %q", role)
	}
}

func TestTeamTaskChecks(t *testing.T) {
	task := models.Task{ID: 1, Title: "ship release", TeamID: "t1", IsTeamTask: true, AssignedTo: "assignee"}

	tests := []struct {
		name   string
		ctx    Context
		edit   bool
		assign bool
	}{
		{name: "no role", ctx: Context{UserID: "stranger"}, edit: false, assign: false},
		{name: "member not assigned", ctx: ctxWithRole("u1", models.RoleMember), edit: false, assign: false},
		{name: "assigned member", ctx: ctxWithRole("assignee", models.RoleMember), edit: true, assign: false},
		{name: "admin", ctx: ctxWithRole("u1", models.RoleAdmin), edit: true, assign: true},
		{name: "owner", ctx: ctxWithRole("u1", models.RoleOwner), edit: true, assign: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ctx.Role.Defined(), tt.ctx.CanViewTask(task))
			assert.Equal(t, tt.edit, tt.ctx.CanEditTask(task))
			assert.Equal(t, tt.edit, tt.ctx.CanDeleteTask(task))
			assert.Equal(t, tt.edit, tt.ctx.CanCompleteTask(task))
			assert.Equal(t, tt.assign, tt.ctx.CanAssignTask(task))
		})
	}
}

func TestUnassignedTeamTaskRequiresRole(t *testing.T) {
	task := models.Task{ID: 2, Title: "triage inbox", TeamID: "t1", IsTeamTask: true}

	// A context with neither a user id nor a role must be denied; the empty
	// assignee must not match the empty caller id.
	anon := Context{}
	assert.False(t, anon.CanEditTask(task))
	assert.False(t, anon.CanDeleteTask(task))
	assert.False(t, anon.CanCompleteTask(task))
	assert.False(t, anon.CanViewTask(task))

	member := ctxWithRole("u1", models.RoleMember)
	assert.False(t, member.CanEditTask(task))
	assert.False(t, member.CanCompleteTask(task))

	admin := ctxWithRole("u1", models.RoleAdmin)
	assert.True(t, admin.CanEditTask(task))
	assert.True(t, admin.CanCompleteTask(task))
}

func TestUIGates(t *testing.T) {
	teamTask := models.Task{ID: 1, Title: "t", TeamID: "t1", IsTeamTask: true}

	owner := ctxWithRole("u1", models.RoleOwner)
	assert.True(t, owner.ShowTeamSettings())
	assert.True(t, owner.ShowMemberManagement())
	assert.True(t, owner.ShowDeleteTeamButton())
	assert.True(t, owner.ShowTaskActions(teamTask))
	assert.True(t, owner.ShowAssignmentControls(teamTask))

	member := ctxWithRole("u1", models.RoleMember)
	assert.False(t, member.ShowTeamSettings())
	assert.False(t, member.ShowMemberManagement())
	assert.False(t, member.ShowDeleteTeamButton())
	assert.False(t, member.ShowTaskActions(teamTask))
	assert.False(t, member.ShowAssignmentControls(teamTask))
}

func TestNewContextResolvesRole(t *testing.T) {
	members := []models.TeamMember{
		{TeamID: "t1", UserID: "u1", Role: models.RoleOwner},
		{TeamID: "t1", UserID: "u2", Role: models.RoleMember},
	}
	team := &models.Team{ID: "t1", Name: "Team"}

	assert.Equal(t, models.RoleOwner, NewContext("u1", team, members).Role)
	assert.Equal(t, models.RoleMember, NewContext("u2", team, members).Role)
	assert.False(t, NewContext("u3", team, members).Role.Defined())
}
