package services

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"

	"photo-gallery-backend/internal/models"
	"photo-gallery-backend/internal/repository"
	"photo-gallery-backend/internal/storage"
)

// In-memory store fakes matching the repository semantics, including the
// version-conditional group update.

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*models.User)}
}

func (f *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Login == user.Login {
			return repository.ErrDuplicateLogin
		}
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Login == login {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserStore) GetRefsByIDs(ctx context.Context, ids []string) ([]models.UserRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var refs []models.UserRef
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			refs = append(refs, u.Ref())
		}
	}
	return refs, nil
}

func (f *fakeUserStore) SearchByLogin(ctx context.Context, search string) ([]models.UserRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var refs []models.UserRef
	for _, u := range f.users {
		if strings.Contains(strings.ToLower(u.Login), strings.ToLower(search)) {
			refs = append(refs, u.Ref())
		}
	}
	return refs, nil
}

type fakeGroupStore struct {
	mu     sync.Mutex
	groups map[string]*models.Group
	// conflictOnce makes the next UpdateMembership lose the race.
	conflictOnce bool
}

func newFakeGroupStore() *fakeGroupStore {
	return &fakeGroupStore{groups: make(map[string]*models.Group)}
}

func copyGroup(g *models.Group) *models.Group {
	cp := *g
	cp.Members = append([]string(nil), g.Members...)
	cp.PendingInvites = append([]string(nil), g.PendingInvites...)
	return &cp
}

func (f *fakeGroupStore) Create(ctx context.Context, group *models.Group) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.groups[group.ID] = copyGroup(group)
	return nil
}

func (f *fakeGroupStore) GetByID(ctx context.Context, id string) (*models.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.groups[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyGroup(g), nil
}

func (f *fakeGroupStore) ListByMember(ctx context.Context, userID string) ([]*models.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Group
	for _, g := range f.groups {
		if g.IsMember(userID) {
			out = append(out, copyGroup(g))
		}
	}
	return out, nil
}

func (f *fakeGroupStore) ListByInvitee(ctx context.Context, userID string) ([]*models.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Group
	for _, g := range f.groups {
		if g.IsInvited(userID) {
			out = append(out, copyGroup(g))
		}
	}
	return out, nil
}

func (f *fakeGroupStore) UpdateMembership(ctx context.Context, id string, members, pendingInvites []string, version int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conflictOnce {
		f.conflictOnce = false
		if g, ok := f.groups[id]; ok {
			g.Version++
		}
		return repository.ErrVersionConflict
	}
	g, ok := f.groups[id]
	if !ok || g.Version != version {
		return repository.ErrVersionConflict
	}
	g.Members = append([]string(nil), members...)
	g.PendingInvites = append([]string(nil), pendingInvites...)
	g.Version++
	return nil
}

type fakePhotoStore struct {
	mu     sync.Mutex
	photos map[string]*models.Photo
	// createErr forces the next Create to fail, for compensation tests.
	createErr error
	// updateErr does the same for Update.
	updateErr error
	// memberCheck mirrors the SQL owner-in-members re-check when set.
	memberCheck func(groupID, ownerID string) bool
}

func newFakePhotoStore() *fakePhotoStore {
	return &fakePhotoStore{photos: make(map[string]*models.Photo)}
}

func copyPhoto(p *models.Photo) *models.Photo {
	cp := *p
	cp.Tags = append([]string(nil), p.Tags...)
	cp.SharedWithGroups = append([]string(nil), p.SharedWithGroups...)
	return &cp
}

func (f *fakePhotoStore) Create(ctx context.Context, photo *models.Photo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		err := f.createErr
		f.createErr = nil
		return err
	}
	f.photos[photo.ID] = copyPhoto(photo)
	return nil
}

func (f *fakePhotoStore) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.photos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyPhoto(p), nil
}

func (f *fakePhotoStore) ListByOwner(ctx context.Context, ownerID string) ([]*models.Photo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Photo
	for _, p := range f.photos {
		if p.OwnerID == ownerID {
			out = append(out, copyPhoto(p))
		}
	}
	return out, nil
}

// ListSharedWithGroup is given the member filter by the test setup: the
// fake keeps a reference to the group store so it can mirror the SQL
// owner-in-members re-check.
func (f *fakePhotoStore) ListSharedWithGroup(ctx context.Context, groupID string) ([]*models.Photo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Photo
	for _, p := range f.photos {
		if !containsID(p.SharedWithGroups, groupID) {
			continue
		}
		if f.memberCheck != nil && !f.memberCheck(groupID, p.OwnerID) {
			continue
		}
		out = append(out, copyPhoto(p))
	}
	return out, nil
}

func (f *fakePhotoStore) Update(ctx context.Context, photo *models.Photo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		err := f.updateErr
		f.updateErr = nil
		return err
	}
	if _, ok := f.photos[photo.ID]; !ok {
		return repository.ErrNotFound
	}
	f.photos[photo.ID] = copyPhoto(photo)
	return nil
}

func (f *fakePhotoStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.photos[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.photos, id)
	return nil
}

func (f *fakePhotoStore) FilenamesOwned(ctx context.Context, ownerID string, filenames []string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var found []string
	for _, p := range f.photos {
		if p.OwnerID == ownerID && containsID(filenames, p.Filename) {
			found = append(found, p.Filename)
		}
	}
	return found, nil
}

func containsID(set []string, id string) bool {
	for _, s := range set {
		if s == id {
			return true
		}
	}
	return false
}

// fakeBlobStore keeps blobs in a map.
type fakeBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
	// saveErr forces the next Save to fail.
	saveErr error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: make(map[string][]byte)}
}

func (f *fakeBlobStore) Save(ctx context.Context, key string, r io.Reader, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		err := f.saveErr
		f.saveErr = nil
		return err
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return err
	}
	f.blobs[key] = buf.Bytes()
	return nil
}

func (f *fakeBlobStore) Rename(ctx context.Context, oldKey, newKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.blobs[newKey]; ok {
		return storage.ErrExists
	}
	f.blobs[newKey] = f.blobs[oldKey]
	delete(f.blobs, oldKey)
	return nil
}

func (f *fakeBlobStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.blobs, key)
	return nil
}

func (f *fakeBlobStore) Exists(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.blobs[key]
	return ok, nil
}
