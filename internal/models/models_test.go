package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleRank(t *testing.T) {
	assert.Equal(t, 3, RoleOwner.Rank())
	assert.Equal(t, 2, RoleAdmin.Rank())
	assert.Equal(t, 1, RoleMember.Rank())
	assert.Equal(t, 0, Role("").Rank())
	assert.Equal(t, 0, Role("superuser").Rank())
}

func TestRoleDefined(t *testing.T) {
	assert.True(t, RoleOwner.Defined())
	assert.True(t, RoleAdmin.Defined())
	assert.True(t, RoleMember.Defined())
	assert.False(t, Role("").Defined())
	assert.False(t, Role("viewer").Defined())
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	_, err = ParseRole("manager")
	assert.Error(t, err)

	_, err = ParseRole("")
	assert.Error(t, err)
}

func TestIsGuest(t *testing.T) {
	assert.True(t, IsGuest("guest-1f6c"))
	assert.False(t, IsGuest("user-42"))
	assert.False(t, IsGuest(""))
}

func TestTaskValidate(t *testing.T) {
	due := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	valid := Task{
		Title:    "buy milk",
		Category: "shopping",
		DueDate:  &due,
	}
	require.NoError(t, valid.Validate())

	// An empty category is fine; an unknown one is not.
	valid.Category = ""
	require.NoError(t, valid.Validate())
	valid.Category = "chores"
	assert.Error(t, valid.Validate())

	empty := Task{}
	assert.Error(t, empty.Validate())

	teamless := Task{Title: "x", IsTeamTask: true}
	assert.Error(t, teamless.Validate())

	assigned := Task{Title: "x", AssignedTo: "user-2"}
	assert.Error(t, assigned.Validate())

	team := Task{Title: "x", TeamID: "team-1", IsTeamTask: true, AssignedTo: "user-2"}
	assert.NoError(t, team.Validate())
}
