package repository

import (
	"context"
	"fmt"

	"photo-gallery-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GroupRepository handles database operations for groups
type GroupRepository struct {
	db *pgxpool.Pool
}

// NewGroupRepository creates a new group repository
func NewGroupRepository(db *pgxpool.Pool) *GroupRepository {
	return &GroupRepository{db: db}
}

// Create creates a new group
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	query := `
		INSERT INTO groups (id, name, description, owner_id, members, pending_invites, version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		group.ID, group.Name, group.Description, group.OwnerID,
		group.Members, group.PendingInvites, group.Version, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}
	return nil
}

// GetByID retrieves a group by ID
func (r *GroupRepository) GetByID(ctx context.Context, id string) (*models.Group, error) {
	query := `
		SELECT id, name, description, owner_id, members, pending_invites, version, created_at
		FROM groups
		WHERE id = $1
	`
	var group models.Group
	err := r.db.QueryRow(ctx, query, id).Scan(
		&group.ID, &group.Name, &group.Description, &group.OwnerID,
		&group.Members, &group.PendingInvites, &group.Version, &group.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return &group, nil
}

// ListByMember retrieves all groups where the user is a member
func (r *GroupRepository) ListByMember(ctx context.Context, userID string) ([]*models.Group, error) {
	query := `
		SELECT id, name, description, owner_id, members, pending_invites, version, created_at
		FROM groups
		WHERE $1 = ANY(members)
		ORDER BY created_at
	`
	return r.list(ctx, query, userID)
}

// ListByInvitee retrieves all groups where the user has a pending invite
func (r *GroupRepository) ListByInvitee(ctx context.Context, userID string) ([]*models.Group, error) {
	query := `
		SELECT id, name, description, owner_id, members, pending_invites, version, created_at
		FROM groups
		WHERE $1 = ANY(pending_invites)
		ORDER BY created_at
	`
	return r.list(ctx, query, userID)
}

func (r *GroupRepository) list(ctx context.Context, query, userID string) ([]*models.Group, error) {
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		var group models.Group
		err := rows.Scan(
			&group.ID, &group.Name, &group.Description, &group.OwnerID,
			&group.Members, &group.PendingInvites, &group.Version, &group.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, &group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating groups: %w", err)
	}
	return groups, nil
}

// UpdateMembership writes new membership sets conditionally on the version
// the caller read. If another writer got there first no row matches and
// ErrVersionConflict is returned; the caller re-reads and retries.
func (r *GroupRepository) UpdateMembership(ctx context.Context, id string, members, pendingInvites []string, version int) error {
	query := `
		UPDATE groups
		SET members = $2, pending_invites = $3, version = version + 1
		WHERE id = $1 AND version = $4
	`
	result, err := r.db.Exec(ctx, query, id, members, pendingInvites, version)
	if err != nil {
		return fmt.Errorf("failed to update group membership: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	return nil
}
