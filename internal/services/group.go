package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"photo-gallery-backend/internal/apperr"
	"photo-gallery-backend/internal/models"
	"photo-gallery-backend/internal/repository"

	"github.com/google/uuid"
)

// Membership mutations retry this many times on a version conflict before
// giving up.
const maxMembershipRetries = 3

const minSearchQueryLen = 2

// GroupService owns the group lifecycle and the invitation state machine.
// Every mutation runs as a read-modify-write conditional on the group
// version, so concurrent requests on the same group can never interleave
// into a state where a user is both a member and a pending invitee.
type GroupService struct {
	groups GroupStore
	users  UserStore
}

// NewGroupService creates a new group service
func NewGroupService(groups GroupStore, users UserStore) *GroupService {
	return &GroupService{
		groups: groups,
		users:  users,
	}
}

// CreateGroup creates a group owned by ownerID, who becomes its sole member.
func (s *GroupService) CreateGroup(ctx context.Context, ownerID, name, description string) (*models.Group, error) {
	if name == "" {
		return nil, apperr.Validation("group name is required")
	}

	group := &models.Group{
		ID:             uuid.New().String(),
		Name:           name,
		Description:    description,
		OwnerID:        ownerID,
		Members:        []string{ownerID},
		PendingInvites: []string{},
		Version:        1,
		CreatedAt:      time.Now(),
	}

	if err := s.groups.Create(ctx, group); err != nil {
		return nil, apperr.Internal(err)
	}
	return group, nil
}

// ListGroupsForUser returns the groups where the user is a member. Groups
// where the user only has a pending invite are not included.
func (s *GroupService) ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	groups, err := s.groups.ListByMember(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return groups, nil
}

// GetGroupDetails returns a group with its owner and members resolved to
// id+login projections.
func (s *GroupService) GetGroupDetails(ctx context.Context, groupID string) (*models.GroupDetails, error) {
	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	refs, err := s.users.GetRefsByIDs(ctx, append([]string{group.OwnerID}, group.Members...))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	byID := make(map[string]models.UserRef, len(refs))
	for _, ref := range refs {
		byID[ref.ID] = ref
	}

	details := &models.GroupDetails{
		ID:             group.ID,
		Name:           group.Name,
		Description:    group.Description,
		Owner:          byID[group.OwnerID],
		Members:        make([]models.UserRef, 0, len(group.Members)),
		PendingInvites: group.PendingInvites,
		CreatedAt:      group.CreatedAt,
	}
	for _, id := range group.Members {
		if ref, ok := byID[id]; ok {
			details.Members = append(details.Members, ref)
		}
	}
	return details, nil
}

// InviteMember adds targetUserID to the group's pending invites. Only the
// owner may invite; inviting a current member is a conflict; inviting an
// already-invited user is a no-op.
func (s *GroupService) InviteMember(ctx context.Context, requesterID, groupID, targetUserID string) error {
	if targetUserID == "" {
		return apperr.Validation("userId is required")
	}
	return s.mutate(ctx, groupID, func(g *models.Group) (bool, error) {
		if g.OwnerID != requesterID {
			return false, apperr.Forbidden("only the group owner may invite")
		}
		if g.IsMember(targetUserID) {
			return false, apperr.Conflict("user is already a member")
		}
		if g.IsInvited(targetUserID) {
			return false, nil
		}
		g.PendingInvites = append(g.PendingInvites, targetUserID)
		return true, nil
	})
}

// AcceptInvite moves userID from pending invites to members. This is the
// only transition from invited to member.
func (s *GroupService) AcceptInvite(ctx context.Context, userID, groupID string) error {
	return s.mutate(ctx, groupID, func(g *models.Group) (bool, error) {
		if !g.IsInvited(userID) {
			return false, apperr.Forbidden("no invitation for this group")
		}
		g.PendingInvites = remove(g.PendingInvites, userID)
		g.Members = append(g.Members, userID)
		return true, nil
	})
}

// RejectInvite removes userID from pending invites. Rejecting an absent
// invite succeeds as a no-op.
func (s *GroupService) RejectInvite(ctx context.Context, userID, groupID string) error {
	return s.mutate(ctx, groupID, func(g *models.Group) (bool, error) {
		if !g.IsInvited(userID) {
			return false, nil
		}
		g.PendingInvites = remove(g.PendingInvites, userID)
		return true, nil
	})
}

// LeaveGroup removes userID from the member set. The owner can never
// leave; without that check the group would be orphaned.
func (s *GroupService) LeaveGroup(ctx context.Context, userID, groupID string) error {
	return s.mutate(ctx, groupID, func(g *models.Group) (bool, error) {
		if g.OwnerID == userID {
			return false, apperr.Forbidden("owner cannot leave the group; transfer ownership first")
		}
		if !g.IsMember(userID) {
			return false, nil
		}
		g.Members = remove(g.Members, userID)
		return true, nil
	})
}

// RemoveMember removes targetUserID from the member set. Allowed for the
// owner (removing anyone but themselves) and for self-removal. The owner
// can never be removed, not even by themselves.
func (s *GroupService) RemoveMember(ctx context.Context, requesterID, groupID, targetUserID string) error {
	if targetUserID == "" {
		return apperr.Validation("userId is required")
	}
	return s.mutate(ctx, groupID, func(g *models.Group) (bool, error) {
		isOwner := g.OwnerID == requesterID
		isSelfRemoval := targetUserID == requesterID
		if !isOwner && !isSelfRemoval {
			return false, apperr.Forbidden("only the group owner may remove other members")
		}
		if g.OwnerID == targetUserID {
			return false, apperr.Forbidden("owner cannot be removed; transfer ownership first")
		}
		if !g.IsMember(targetUserID) {
			return false, nil
		}
		g.Members = remove(g.Members, targetUserID)
		return true, nil
	})
}

// GetUserInvitations returns the user's pending invitations with the
// inviting group's owner resolved. This is the polling substitute for push
// notification delivery.
func (s *GroupService) GetUserInvitations(ctx context.Context, userID string) ([]models.Invitation, error) {
	groups, err := s.groups.ListByInvitee(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	ownerIDs := make([]string, 0, len(groups))
	for _, g := range groups {
		ownerIDs = append(ownerIDs, g.OwnerID)
	}
	refs, err := s.users.GetRefsByIDs(ctx, ownerIDs)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	byID := make(map[string]models.UserRef, len(refs))
	for _, ref := range refs {
		byID[ref.ID] = ref
	}

	invitations := make([]models.Invitation, 0, len(groups))
	for _, g := range groups {
		invitations = append(invitations, models.Invitation{
			Group: models.GroupSummary{ID: g.ID, Name: g.Name, Description: g.Description},
			Owner: byID[g.OwnerID],
		})
	}
	return invitations, nil
}

// SearchUsers finds users by case-insensitive substring match on login.
// Only id and login are ever returned.
func (s *GroupService) SearchUsers(ctx context.Context, query string) ([]models.UserRef, error) {
	if utf8.RuneCountInString(query) < minSearchQueryLen {
		return nil, apperr.Validation("query must be at least 2 characters long")
	}
	refs, err := s.users.SearchByLogin(ctx, query)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return refs, nil
}

// RequireMember returns the group if userID is a member, Forbidden
// otherwise. Photo listing uses this as the group-scope gate.
func (s *GroupService) RequireMember(ctx context.Context, groupID, userID string) (*models.Group, error) {
	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsMember(userID) {
		return nil, apperr.Forbidden("not a member of this group")
	}
	return group, nil
}

func (s *GroupService) getGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("group not found")
		}
		return nil, apperr.Internal(err)
	}
	return group, nil
}

// mutate applies fn to a fresh read of the group and writes the result
// conditionally on the version read. Preconditions inside fn are
// re-evaluated on every retry, so the first failing check always reflects
// current state and no partial mutation is ever persisted.
func (s *GroupService) mutate(ctx context.Context, groupID string, fn func(g *models.Group) (bool, error)) error {
	for attempt := 0; attempt < maxMembershipRetries; attempt++ {
		group, err := s.getGroup(ctx, groupID)
		if err != nil {
			return err
		}

		changed, err := fn(group)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}

		err = s.groups.UpdateMembership(ctx, group.ID, group.Members, group.PendingInvites, group.Version)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return apperr.Internal(err)
		}
	}
	return apperr.Internal(fmt.Errorf("group %s: gave up after %d conflicting updates", groupID, maxMembershipRetries))
}

func remove(set []string, id string) []string {
	out := set[:0]
	for _, s := range set {
		if s != id {
			out = append(out, s)
		}
	}
	return out
}
