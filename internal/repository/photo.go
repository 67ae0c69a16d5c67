package repository

import (
	"context"
	"fmt"

	"photo-gallery-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PhotoRepository handles database operations for photo metadata
type PhotoRepository struct {
	db *pgxpool.Pool
}

// NewPhotoRepository creates a new photo repository
func NewPhotoRepository(db *pgxpool.Pool) *PhotoRepository {
	return &PhotoRepository{db: db}
}

// Create creates a new photo record
func (r *PhotoRepository) Create(ctx context.Context, photo *models.Photo) error {
	query := `
		INSERT INTO photos (id, owner_id, filename, path, tags, shared_with_groups, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		photo.ID, photo.OwnerID, photo.Filename, photo.Path,
		photo.Tags, photo.SharedWithGroups, photo.CreatedAt, photo.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create photo: %w", err)
	}
	return nil
}

// GetByID retrieves a photo by ID
func (r *PhotoRepository) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	query := `
		SELECT id, owner_id, filename, path, tags, shared_with_groups, created_at, updated_at
		FROM photos
		WHERE id = $1
	`
	var photo models.Photo
	err := r.db.QueryRow(ctx, query, id).Scan(
		&photo.ID, &photo.OwnerID, &photo.Filename, &photo.Path,
		&photo.Tags, &photo.SharedWithGroups, &photo.CreatedAt, &photo.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	return &photo, nil
}

// ListByOwner retrieves all photos owned by a user
func (r *PhotoRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Photo, error) {
	query := `
		SELECT id, owner_id, filename, path, tags, shared_with_groups, created_at, updated_at
		FROM photos
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, ownerID)
}

// ListSharedWithGroup retrieves photos shared with a group. Photos whose
// owner is no longer a member of the group are filtered out, so stale
// shared_with_groups entries never leak photos.
func (r *PhotoRepository) ListSharedWithGroup(ctx context.Context, groupID string) ([]*models.Photo, error) {
	query := `
		SELECT p.id, p.owner_id, p.filename, p.path, p.tags, p.shared_with_groups, p.created_at, p.updated_at
		FROM photos p
		JOIN groups g ON g.id = $1
		WHERE $1 = ANY(p.shared_with_groups)
		  AND p.owner_id = ANY(g.members)
		ORDER BY p.created_at DESC
	`
	return r.list(ctx, query, groupID)
}

func (r *PhotoRepository) list(ctx context.Context, query string, arg any) ([]*models.Photo, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	defer rows.Close()

	var photos []*models.Photo
	for rows.Next() {
		var photo models.Photo
		err := rows.Scan(
			&photo.ID, &photo.OwnerID, &photo.Filename, &photo.Path,
			&photo.Tags, &photo.SharedWithGroups, &photo.CreatedAt, &photo.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, &photo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", err)
	}
	return photos, nil
}

// Update writes filename, tags, sharing list and updated_at for a photo
func (r *PhotoRepository) Update(ctx context.Context, photo *models.Photo) error {
	query := `
		UPDATE photos
		SET filename = $2, tags = $3, shared_with_groups = $4, updated_at = $5
		WHERE id = $1
	`
	result, err := r.db.Exec(ctx, query,
		photo.ID, photo.Filename, photo.Tags, photo.SharedWithGroups, photo.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update photo: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete deletes a photo record by ID
func (r *PhotoRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM photos WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// FilenamesOwned returns the subset of filenames the owner already has.
// Used by the duplicate-upload advisory check.
func (r *PhotoRepository) FilenamesOwned(ctx context.Context, ownerID string, filenames []string) ([]string, error) {
	if len(filenames) == 0 {
		return nil, nil
	}
	query := `
		SELECT filename
		FROM photos
		WHERE owner_id = $1 AND filename = ANY($2)
	`
	rows, err := r.db.Query(ctx, query, ownerID, filenames)
	if err != nil {
		return nil, fmt.Errorf("failed to check duplicate filenames: %w", err)
	}
	defer rows.Close()

	var found []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan filename: %w", err)
		}
		found = append(found, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating filenames: %w", err)
	}
	return found, nil
}
