package handlers

import (
	"encoding/json"
	"net/http"

	"photo-gallery-backend/internal/apperr"
	"photo-gallery-backend/internal/middleware"
	"photo-gallery-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles registration, login, user search and invitation polling
type AuthHandler struct {
	authService  *services.AuthService
	groupService *services.GroupService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, groupService *services.GroupService) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		groupService: groupService,
	}
}

type credentialsRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.authService.Register(r.Context(), req.Login, req.Password)
	if err != nil {
		if apperr.Status(err) == http.StatusInternalServerError {
			log.Error().Err(err).Str("login", req.Login).Msg("Failed to register user")
		}
		respondAppError(w, err)
		return
	}

	log.Info().Str("user_id", user.ID).Str("login", user.Login).Msg("User registered")
	respondMessage(w, http.StatusCreated, "account created")
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, user, err := h.authService.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]string{
		"token": token,
		"login": user.Login,
	})
}

// SearchUsers handles GET /api/auth/search?query=
func (h *AuthHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")

	users, err := h.groupService.SearchUsers(r.Context(), query)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondData(w, http.StatusOK, users)
}

// GetInvitations handles GET /api/auth/{userId}/invitations. Invitations
// are private to the invitee, so the path userId must match the caller.
func (h *AuthHandler) GetInvitations(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		respondError(w, "userId is required", http.StatusBadRequest)
		return
	}
	if userID != ident.UserID {
		respondError(w, "you can only view your own invitations", http.StatusForbidden)
		return
	}

	invitations, err := h.groupService.GetUserInvitations(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list invitations")
		respondAppError(w, err)
		return
	}
	respondData(w, http.StatusOK, invitations)
}
