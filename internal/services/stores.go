package services

import (
	"context"

	"photo-gallery-backend/internal/models"
)

// Store contracts implemented by internal/repository. Services depend on
// these so the membership and visibility logic can be tested against
// in-memory fakes.

// UserStore persists users.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	GetRefsByIDs(ctx context.Context, ids []string) ([]models.UserRef, error)
	SearchByLogin(ctx context.Context, search string) ([]models.UserRef, error)
}

// GroupStore persists groups. UpdateMembership is a conditional write
// keyed on the version read with GetByID; it returns
// repository.ErrVersionConflict when a concurrent writer won.
type GroupStore interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id string) (*models.Group, error)
	ListByMember(ctx context.Context, userID string) ([]*models.Group, error)
	ListByInvitee(ctx context.Context, userID string) ([]*models.Group, error)
	UpdateMembership(ctx context.Context, id string, members, pendingInvites []string, version int) error
}

// PhotoStore persists photo metadata.
type PhotoStore interface {
	Create(ctx context.Context, photo *models.Photo) error
	GetByID(ctx context.Context, id string) (*models.Photo, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Photo, error)
	ListSharedWithGroup(ctx context.Context, groupID string) ([]*models.Photo, error)
	Update(ctx context.Context, photo *models.Photo) error
	Delete(ctx context.Context, id string) error
	FilenamesOwned(ctx context.Context, ownerID string, filenames []string) ([]string, error)
}
