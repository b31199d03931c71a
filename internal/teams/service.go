// Package teams implements the team lifecycle: creation with join codes,
// joining, member management and deletion. Every mutating operation re-checks
// the caller's permissions even though the UI gates them too.
package teams

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/google/uuid"

	"spaces/internal/models"
	"spaces/internal/permissions"
	"spaces/internal/remote"
)

var (
	// ErrValidation marks input rejected before any remote call.
	ErrValidation = errors.New("validation")
	// ErrPermissionDenied marks an action the permission engine refused.
	ErrPermissionDenied = errors.New("permission denied")
)

const (
	maxNameLen        = 100
	maxDescriptionLen = 500
	minMembers        = 2
	maxMembers        = 100
	defaultMembers    = 10

	joinCodeLen      = 8
	joinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	joinCodeRetries  = 5
)

// Service owns team operations against the remote store.
type Service struct {
	store  remote.TeamStore
	logger *slog.Logger
}

// NewService builds a team service.
func NewService(store remote.TeamStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// context assembles a fresh permission context for userID against the team's
// current member list.
func (s *Service) context(ctx context.Context, userID, teamID string) (permissions.Context, error) {
	team, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		return permissions.Context{}, err
	}
	members, err := s.store.ListTeamMembers(ctx, teamID)
	if err != nil {
		return permissions.Context{}, err
	}
	return permissions.NewContext(userID, &team, members), nil
}

// CreateTeam validates the input, generates a unique join code and creates
// the team. A durable creator becomes the team's sole owner; a guest creator
// is not persisted as a member.
func (s *Service) CreateTeam(ctx context.Context, userID, name, description string, maxMemberCount int) (models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxNameLen {
		return models.Team{}, fmt.Errorf("%w: team name must be 1-%d characters", ErrValidation, maxNameLen)
	}
	if len(description) > maxDescriptionLen {
		return models.Team{}, fmt.Errorf("%w: description must be at most %d characters", ErrValidation, maxDescriptionLen)
	}
	if maxMemberCount == 0 {
		maxMemberCount = defaultMembers
	}
	if maxMemberCount < minMembers || maxMemberCount > maxMembers {
		return models.Team{}, fmt.Errorf("%w: max members must be between %d and %d", ErrValidation, minMembers, maxMembers)
	}

	code, err := s.uniqueJoinCode(ctx)
	if err != nil {
		return models.Team{}, err
	}

	team := models.Team{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		JoinCode:    code,
		Status:      models.TeamStatusActive,
		MaxMembers:  maxMemberCount,
	}
	if !models.IsGuest(userID) {
		team.CreatedBy = &userID
	}

	created, err := s.store.CreateTeam(ctx, team)
	if err != nil {
		return models.Team{}, fmt.Errorf("create team: %w", err)
	}

	if !models.IsGuest(userID) {
		owner := models.TeamMember{
			TeamID:    created.ID,
			UserID:    userID,
			Role:      models.RoleOwner,
			InvitedBy: userID,
		}
		if _, err := s.store.AddTeamMember(ctx, owner); err != nil {
			return models.Team{}, fmt.Errorf("add team owner: %w", err)
		}
	}

	s.logger.Info("team created",
		slog.String("team", created.ID),
		slog.String("user", userID),
		slog.Bool("guest", models.IsGuest(userID)))

	return created, nil
}

// JoinByCode adds the user to the team behind an invitation code.
func (s *Service) JoinByCode(ctx context.Context, userID, code string) (models.Team, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != joinCodeLen {
		return models.Team{}, fmt.Errorf("%w: join code must be %d characters", ErrValidation, joinCodeLen)
	}

	team, err := s.store.GetTeamByJoinCode(ctx, code)
	if err != nil {
		return models.Team{}, fmt.Errorf("join team: %w", err)
	}

	members, err := s.store.ListTeamMembers(ctx, team.ID)
	if err != nil {
		return models.Team{}, fmt.Errorf("join team: %w", err)
	}
	for _, m := range members {
		if m.UserID == userID {
			return models.Team{}, fmt.Errorf("%w: already a member of %s", ErrValidation, team.Name)
		}
	}
	if len(members) >= team.MaxMembers {
		return models.Team{}, fmt.Errorf("%w: team %s is full", ErrValidation, team.Name)
	}

	_, err = s.store.AddTeamMember(ctx, models.TeamMember{
		TeamID: team.ID,
		UserID: userID,
		Role:   models.RoleMember,
	})
	if err != nil {
		return models.Team{}, fmt.Errorf("join team: %w", err)
	}

	s.logger.Info("member joined", slog.String("team", team.ID), slog.String("user", userID))
	return team, nil
}

// UpdateTeam changes team name, description and avatar, owner/admin only.
func (s *Service) UpdateTeam(ctx context.Context, userID, teamID, name, description, avatarURL string) (models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxNameLen {
		return models.Team{}, fmt.Errorf("%w: team name must be 1-%d characters", ErrValidation, maxNameLen)
	}
	if len(description) > maxDescriptionLen {
		return models.Team{}, fmt.Errorf("%w: description must be at most %d characters", ErrValidation, maxDescriptionLen)
	}

	pc, err := s.context(ctx, userID, teamID)
	if err != nil {
		return models.Team{}, err
	}
	if !pc.CanUpdateTeam() {
		return models.Team{}, fmt.Errorf("%w: update team", ErrPermissionDenied)
	}

	return s.store.UpdateTeam(ctx, teamID, name, description, avatarURL)
}

// DeleteTeam removes the team entirely, owner only. Members and team tasks
// cascade on the service side.
func (s *Service) DeleteTeam(ctx context.Context, userID, teamID string) error {
	pc, err := s.context(ctx, userID, teamID)
	if err != nil {
		return err
	}
	if !pc.CanDeleteTeam() {
		return fmt.Errorf("%w: delete team", ErrPermissionDenied)
	}

	if err := s.store.DeleteTeam(ctx, teamID); err != nil {
		return fmt.Errorf("delete team: %w", err)
	}
	s.logger.Info("team deleted", slog.String("team", teamID), slog.String("user", userID))
	return nil
}

// InviteMember adds a user directly, owner/admin only.
func (s *Service) InviteMember(ctx context.Context, userID, teamID, inviteeID string) (models.TeamMember, error) {
	pc, err := s.context(ctx, userID, teamID)
	if err != nil {
		return models.TeamMember{}, err
	}
	if !pc.CanInviteMembers() {
		return models.TeamMember{}, fmt.Errorf("%w: invite members", ErrPermissionDenied)
	}
	for _, m := range pc.Members {
		if m.UserID == inviteeID {
			return models.TeamMember{}, fmt.Errorf("%w: user is already a member", ErrValidation)
		}
	}
	if pc.Team != nil && len(pc.Members) >= pc.Team.MaxMembers {
		return models.TeamMember{}, fmt.Errorf("%w: team is full", ErrValidation)
	}

	return s.store.AddTeamMember(ctx, models.TeamMember{
		TeamID:    teamID,
		UserID:    inviteeID,
		Role:      models.RoleMember,
		InvitedBy: userID,
	})
}

// RemoveMember removes a specific member subject to the per-target rules.
func (s *Service) RemoveMember(ctx context.Context, userID, teamID, targetID string) error {
	pc, err := s.context(ctx, userID, teamID)
	if err != nil {
		return err
	}

	target, ok := findMember(pc.Members, targetID)
	if !ok {
		return fmt.Errorf("%w: user is not a member", ErrValidation)
	}
	if !pc.CanRemoveMember(target) {
		return fmt.Errorf("%w: remove member", ErrPermissionDenied)
	}

	if err := s.store.RemoveTeamMember(ctx, teamID, targetID); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	s.logger.Info("member removed",
		slog.String("team", teamID), slog.String("user", targetID), slog.String("by", userID))
	return nil
}

// UpdateMemberRole changes a member's role subject to the per-target rules.
func (s *Service) UpdateMemberRole(ctx context.Context, userID, teamID, targetID string, newRole models.Role) (models.TeamMember, error) {
	if !newRole.Defined() {
		return models.TeamMember{}, fmt.Errorf("%w: unknown role %q", ErrValidation, newRole)
	}

	pc, err := s.context(ctx, userID, teamID)
	if err != nil {
		return models.TeamMember{}, err
	}

	target, ok := findMember(pc.Members, targetID)
	if !ok {
		return models.TeamMember{}, fmt.Errorf("%w: user is not a member", ErrValidation)
	}
	if !pc.CanUpdateMemberRole(target, newRole) {
		return models.TeamMember{}, fmt.Errorf("%w: update member role", ErrPermissionDenied)
	}

	return s.store.UpdateTeamMemberRole(ctx, teamID, targetID, newRole)
}

// LeaveTeam removes the caller's own membership. Owners cannot leave; they
// transfer ownership or delete the team instead.
func (s *Service) LeaveTeam(ctx context.Context, userID, teamID string) error {
	pc, err := s.context(ctx, userID, teamID)
	if err != nil {
		return err
	}
	if !pc.CanLeaveTeam() {
		return fmt.Errorf("%w: leave team", ErrPermissionDenied)
	}

	if err := s.store.RemoveTeamMember(ctx, teamID, userID); err != nil {
		return fmt.Errorf("leave team: %w", err)
	}
	s.logger.Info("member left", slog.String("team", teamID), slog.String("user", userID))
	return nil
}

// Members returns the current member list of a team visible to the caller.
func (s *Service) Members(ctx context.Context, userID, teamID string) ([]models.TeamMember, error) {
	pc, err := s.context(ctx, userID, teamID)
	if err != nil {
		return nil, err
	}
	if !pc.CanViewTeam() {
		return nil, fmt.Errorf("%w: view team", ErrPermissionDenied)
	}
	return pc.Members, nil
}

func findMember(members []models.TeamMember, userID string) (models.TeamMember, bool) {
	for _, m := range members {
		if m.UserID == userID {
			return m, true
		}
	}
	return models.TeamMember{}, false
}

// uniqueJoinCode generates a short code and retries on the unlikely collision
// with an existing team.
func (s *Service) uniqueJoinCode(ctx context.Context) (string, error) {
	for i := 0; i < joinCodeRetries; i++ {
		code, err := randomJoinCode()
		if err != nil {
			return "", err
		}
		_, err = s.store.GetTeamByJoinCode(ctx, code)
		if errors.Is(err, remote.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("check join code: %w", err)
		}
	}
	return "", fmt.Errorf("unable to generate a unique join code")
}

func randomJoinCode() (string, error) {
	b := make([]byte, joinCodeLen)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(joinCodeAlphabet))))
		if err != nil {
			return "", fmt.Errorf("join code: %w", err)
		}
		b[i] = joinCodeAlphabet[n.Int64()]
	}
	return string(b), nil
}
