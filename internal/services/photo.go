package services

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"photo-gallery-backend/internal/apperr"
	"photo-gallery-backend/internal/models"
	"photo-gallery-backend/internal/repository"
	"photo-gallery-backend/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// PhotoService handles photo metadata, blob coordination and visibility.
type PhotoService struct {
	photos PhotoStore
	groups *GroupService
	blobs  storage.BlobStore
}

// NewPhotoService creates a new photo service
func NewPhotoService(photos PhotoStore, groups *GroupService, blobs storage.BlobStore) *PhotoService {
	return &PhotoService{
		photos: photos,
		groups: groups,
		blobs:  blobs,
	}
}

// ListPhotos lists photos visible to the user. With an empty groupID the
// scope is "mine" (photos the user owns); with a groupID the user must be
// a member and gets the photos shared with that group.
func (s *PhotoService) ListPhotos(ctx context.Context, userID, groupID string) ([]*models.Photo, error) {
	if groupID == "" {
		photos, err := s.photos.ListByOwner(ctx, userID)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		return photos, nil
	}

	if _, err := s.groups.RequireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}
	photos, err := s.photos.ListSharedWithGroup(ctx, groupID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return photos, nil
}

// UploadPhoto stores a photo blob under the owner's namespace and then
// persists its metadata. If the metadata insert fails the blob is removed
// again, so the store never holds orphaned metadata for a failed write.
func (s *PhotoService) UploadPhoto(ctx context.Context, ident Identity, filename, contentType string, r io.Reader, tags []string) (*models.Photo, error) {
	if err := validateFilename(filename); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, apperr.Validation("only image files are allowed")
	}
	if tags == nil {
		tags = []string{}
	}

	key := ident.Login + "/" + filename
	if err := s.blobs.Save(ctx, key, r, contentType); err != nil {
		return nil, apperr.Internal(err)
	}

	now := time.Now()
	photo := &models.Photo{
		ID:               uuid.New().String(),
		OwnerID:          ident.UserID,
		Filename:         filename,
		Path:             ident.Login,
		Tags:             tags,
		SharedWithGroups: []string{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.photos.Create(ctx, photo); err != nil {
		if rmErr := s.blobs.Delete(ctx, key); rmErr != nil {
			log.Error().Err(rmErr).Str("key", key).Msg("Failed to remove blob after metadata failure")
		}
		return nil, apperr.Internal(err)
	}
	return photo, nil
}

// UpdatePhotoInput carries the mutable photo fields. Nil pointers and nil
// slices leave the corresponding field unchanged.
type UpdatePhotoInput struct {
	// Filename is the new name without extension; the current extension
	// is preserved.
	Filename         *string
	Tags             []string
	SharedWithGroups []string
}

// UpdatePhoto renames a photo and/or replaces its tags and sharing list.
// Only the owner may update. A rename moves the backing blob; sharing a
// photo with a group requires the owner to be a member of that group.
// Every input is validated before any side effect, and the blob move is
// rolled back if the metadata write fails, so a rejected or failed update
// never leaves metadata pointing at a moved blob.
func (s *PhotoService) UpdatePhoto(ctx context.Context, userID, photoID string, input UpdatePhotoInput) (*models.Photo, error) {
	photo, err := s.getOwnedPhoto(ctx, userID, photoID)
	if err != nil {
		return nil, err
	}

	var newFilename string
	if input.Filename != nil {
		if *input.Filename == "" {
			return nil, apperr.Validation("filename is required")
		}
		newFilename = *input.Filename + path.Ext(photo.Filename)
		if err := validateFilename(newFilename); err != nil {
			return nil, err
		}
	}

	if input.SharedWithGroups != nil {
		for _, groupID := range input.SharedWithGroups {
			if _, err := s.groups.RequireMember(ctx, groupID, userID); err != nil {
				return nil, err
			}
		}
	}

	oldKey := photo.StorageKey()
	renamed := false
	if newFilename != "" && newFilename != photo.Filename {
		if err := s.renameBlob(ctx, photo, newFilename); err != nil {
			return nil, err
		}
		photo.Filename = newFilename
		renamed = true
	}

	if input.Tags != nil {
		photo.Tags = input.Tags
	}
	if input.SharedWithGroups != nil {
		photo.SharedWithGroups = dedupe(input.SharedWithGroups)
	}

	photo.UpdatedAt = time.Now()
	if err := s.photos.Update(ctx, photo); err != nil {
		if renamed {
			if rbErr := s.blobs.Rename(ctx, photo.StorageKey(), oldKey); rbErr != nil {
				log.Error().Err(rbErr).Str("key", photo.StorageKey()).Msg("Failed to move blob back after metadata failure")
			}
		}
		return nil, apperr.Internal(err)
	}
	return photo, nil
}

func (s *PhotoService) renameBlob(ctx context.Context, photo *models.Photo, newFilename string) error {
	oldKey := photo.StorageKey()
	newKey := photo.Path + "/" + newFilename

	exists, err := s.blobs.Exists(ctx, oldKey)
	if err != nil {
		return apperr.Internal(err)
	}
	if !exists {
		return apperr.NotFound("original file not found in storage")
	}

	if err := s.blobs.Rename(ctx, oldKey, newKey); err != nil {
		if errors.Is(err, storage.ErrExists) {
			return apperr.Conflict("a file with that name already exists")
		}
		return apperr.Internal(err)
	}
	return nil
}

// DeletePhoto removes the blob and then the metadata. A blob already gone
// from storage is logged and the metadata is removed anyway.
func (s *PhotoService) DeletePhoto(ctx context.Context, userID, photoID string) error {
	photo, err := s.getOwnedPhoto(ctx, userID, photoID)
	if err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, photo.StorageKey()); err != nil {
		return apperr.Internal(err)
	}

	if err := s.photos.Delete(ctx, photo.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("photo not found")
		}
		return apperr.Internal(err)
	}
	return nil
}

// CheckDuplicates returns the subset of filenames the user already owns.
// Advisory only; uploads with a duplicate name still succeed.
func (s *PhotoService) CheckDuplicates(ctx context.Context, userID string, filenames []string) ([]string, error) {
	found, err := s.photos.FilenamesOwned(ctx, userID, filenames)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if found == nil {
		found = []string{}
	}
	return found, nil
}

func (s *PhotoService) getOwnedPhoto(ctx context.Context, userID, photoID string) (*models.Photo, error) {
	photo, err := s.photos.GetByID(ctx, photoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("photo not found")
		}
		return nil, apperr.Internal(err)
	}
	if photo.OwnerID != userID {
		return nil, apperr.Forbidden("not the owner of this photo")
	}
	return photo, nil
}

func validateFilename(filename string) error {
	if filename == "" {
		return apperr.Validation("filename is required")
	}
	if strings.ContainsAny(filename, "/\\") || filename == "." || filename == ".." {
		return apperr.Validation("invalid filename")
	}
	return nil
}

func dedupe(set []string) []string {
	seen := make(map[string]struct{}, len(set))
	out := make([]string, 0, len(set))
	for _, s := range set {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
