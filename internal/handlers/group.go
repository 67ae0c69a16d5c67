package handlers

import (
	"encoding/json"
	"net/http"

	"photo-gallery-backend/internal/middleware"
	"photo-gallery-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// GroupHandler handles group-related HTTP requests
type GroupHandler struct {
	groupService *services.GroupService
}

// NewGroupHandler creates a new group handler
func NewGroupHandler(groupService *services.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

// CreateGroupRequest represents the request body for creating a group
type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// memberRequest carries the target user of invite/remove operations
type memberRequest struct {
	UserID string `json:"userId"`
}

// CreateGroup handles POST /api/groups
func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())

	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	group, err := h.groupService.CreateGroup(r.Context(), ident.UserID, req.Name, req.Description)
	if err != nil {
		respondAppError(w, err)
		return
	}

	log.Info().Str("group_id", group.ID).Str("owner_id", ident.UserID).Msg("Group created")
	respondData(w, http.StatusCreated, group)
}

// ListGroups handles GET /api/groups
func (h *GroupHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())

	groups, err := h.groupService.ListGroupsForUser(r.Context(), ident.UserID)
	if err != nil {
		log.Error().Err(err).Str("user_id", ident.UserID).Msg("Failed to list groups")
		respondAppError(w, err)
		return
	}
	respondData(w, http.StatusOK, groups)
}

// GetGroup handles GET /api/groups/{groupId}
func (h *GroupHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupId")

	details, err := h.groupService.GetGroupDetails(r.Context(), groupID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondData(w, http.StatusOK, details)
}

// InviteMember handles POST /api/groups/{groupId}/invite
func (h *GroupHandler) InviteMember(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())
	groupID := chi.URLParam(r, "groupId")

	var req memberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.groupService.InviteMember(r.Context(), ident.UserID, groupID, req.UserID); err != nil {
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("group_id", groupID).
		Str("requester_id", ident.UserID).
		Str("target_id", req.UserID).
		Msg("Member invited")
	respondMessage(w, http.StatusOK, "invitation sent")
}

// AcceptInvite handles POST /api/groups/{groupId}/accept-invite
func (h *GroupHandler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())
	groupID := chi.URLParam(r, "groupId")

	if err := h.groupService.AcceptInvite(r.Context(), ident.UserID, groupID); err != nil {
		respondAppError(w, err)
		return
	}

	log.Info().Str("group_id", groupID).Str("user_id", ident.UserID).Msg("Invitation accepted")
	respondMessage(w, http.StatusOK, "joined the group")
}

// RejectInvite handles POST /api/groups/{groupId}/reject-invite
func (h *GroupHandler) RejectInvite(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())
	groupID := chi.URLParam(r, "groupId")

	if err := h.groupService.RejectInvite(r.Context(), ident.UserID, groupID); err != nil {
		respondAppError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "invitation rejected")
}

// LeaveGroup handles POST /api/groups/{groupId}/leave
func (h *GroupHandler) LeaveGroup(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())
	groupID := chi.URLParam(r, "groupId")

	if err := h.groupService.LeaveGroup(r.Context(), ident.UserID, groupID); err != nil {
		respondAppError(w, err)
		return
	}

	log.Info().Str("group_id", groupID).Str("user_id", ident.UserID).Msg("Member left group")
	respondMessage(w, http.StatusOK, "left the group")
}

// RemoveMember handles POST /api/groups/{groupId}/remove
func (h *GroupHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())
	groupID := chi.URLParam(r, "groupId")

	var req memberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.groupService.RemoveMember(r.Context(), ident.UserID, groupID, req.UserID); err != nil {
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("group_id", groupID).
		Str("requester_id", ident.UserID).
		Str("target_id", req.UserID).
		Msg("Member removed")
	respondMessage(w, http.StatusOK, "member removed")
}
