package models

import "time"

// User represents a registered account. PasswordHash is never serialized.
type User struct {
	ID           string    `json:"id"`
	Login        string    `json:"login"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserRef is the public projection of a user (id + login only).
type UserRef struct {
	ID    string `json:"id"`
	Login string `json:"login"`
}

// Ref returns the public projection of the user.
func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Login: u.Login}
}

// Group represents a sharing group. Members and PendingInvites hold user IDs
// with set semantics; the two sets are always disjoint and the owner is
// always a member. Version increments on every membership change.
type Group struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	OwnerID        string    `json:"owner_id"`
	Members        []string  `json:"members"`
	PendingInvites []string  `json:"pending_invites"`
	Version        int       `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// IsMember reports whether userID is in the group's member set.
func (g *Group) IsMember(userID string) bool {
	return contains(g.Members, userID)
}

// IsInvited reports whether userID has a pending invitation.
func (g *Group) IsInvited(userID string) bool {
	return contains(g.PendingInvites, userID)
}

// GroupDetails is a group with owner and members resolved to id+login.
type GroupDetails struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Owner          UserRef   `json:"owner"`
	Members        []UserRef `json:"members"`
	PendingInvites []string  `json:"pending_invites"`
	CreatedAt      time.Time `json:"created_at"`
}

// Invitation is one pending invitation as seen by the invited user.
type Invitation struct {
	Group GroupSummary `json:"group"`
	Owner UserRef      `json:"owner"`
}

// GroupSummary is the short form of a group used in invitation listings.
type GroupSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Photo represents photo metadata. The blob lives in a BlobStore under
// StorageKey(); SharedWithGroups lists group IDs whose members may view it.
type Photo struct {
	ID               string    `json:"id"`
	OwnerID          string    `json:"owner_id"`
	Filename         string    `json:"filename"`
	Path             string    `json:"path"`
	Tags             []string  `json:"tags"`
	SharedWithGroups []string  `json:"shared_with_groups"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// StorageKey returns the blob key for the photo: "<path>/<filename>".
func (p *Photo) StorageKey() string {
	return p.Path + "/" + p.Filename
}

func contains(set []string, id string) bool {
	for _, s := range set {
		if s == id {
			return true
		}
	}
	return false
}
