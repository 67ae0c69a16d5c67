package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"photo-gallery-backend/internal/middleware"
	"photo-gallery-backend/internal/models"
	"photo-gallery-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// PhotoHandler handles photo-related HTTP requests
type PhotoHandler struct {
	photoService *services.PhotoService
	maxFileSize  int64
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(photoService *services.PhotoService, maxFileSize int64) *PhotoHandler {
	return &PhotoHandler{
		photoService: photoService,
		maxFileSize:  maxFileSize,
	}
}

// ListPhotos handles GET /api/photos with an optional ?group= scope
func (h *PhotoHandler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())
	groupID := r.URL.Query().Get("group")

	photos, err := h.photoService.ListPhotos(r.Context(), ident.UserID, groupID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	if photos == nil {
		photos = []*models.Photo{}
	}
	respondData(w, http.StatusOK, photos)
}

// UploadPhotos handles POST /api/photos. The multipart form carries one or
// more files in the "photos" field and an optional JSON array of tags.
func (h *PhotoHandler) UploadPhotos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident := middleware.GetIdentity(ctx)

	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		respondError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}
	files := r.MultipartForm.File["photos"]
	if len(files) == 0 {
		respondError(w, "No files uploaded", http.StatusBadRequest)
		return
	}

	var tags []string
	if raw := r.FormValue("tags"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &tags); err != nil {
			respondError(w, "tags must be a JSON array of strings", http.StatusBadRequest)
			return
		}
	}

	var uploaded []*models.Photo
	for _, header := range files {
		if header.Size > h.maxFileSize {
			respondError(w, fmt.Sprintf("file %s exceeds the size limit", header.Filename), http.StatusBadRequest)
			return
		}

		file, err := header.Open()
		if err != nil {
			respondError(w, "Failed to read uploaded file", http.StatusBadRequest)
			return
		}

		photo, err := h.photoService.UploadPhoto(ctx, ident, header.Filename, header.Header.Get("Content-Type"), file, tags)
		file.Close()
		if err != nil {
			log.Error().
				Err(err).
				Str("user_id", ident.UserID).
				Str("filename", header.Filename).
				Msg("Failed to upload photo")
			respondAppError(w, err)
			return
		}
		uploaded = append(uploaded, photo)
	}

	log.Info().Str("user_id", ident.UserID).Int("count", len(uploaded)).Msg("Photos uploaded")
	respondData(w, http.StatusCreated, uploaded)
}

// UpdatePhotoRequest represents the mutable photo fields. Absent fields
// are left unchanged.
type UpdatePhotoRequest struct {
	Filename         *string  `json:"filename"`
	Tags             []string `json:"tags"`
	SharedWithGroups []string `json:"shared_with_groups"`
}

// UpdatePhoto handles PUT /api/photos/{photoId}
func (h *PhotoHandler) UpdatePhoto(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())
	photoID := chi.URLParam(r, "photoId")

	var req UpdatePhotoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	photo, err := h.photoService.UpdatePhoto(r.Context(), ident.UserID, photoID, services.UpdatePhotoInput{
		Filename:         req.Filename,
		Tags:             req.Tags,
		SharedWithGroups: req.SharedWithGroups,
	})
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondData(w, http.StatusOK, photo)
}

// DeletePhoto handles DELETE /api/photos/{photoId}
func (h *PhotoHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())
	photoID := chi.URLParam(r, "photoId")

	if err := h.photoService.DeletePhoto(r.Context(), ident.UserID, photoID); err != nil {
		log.Error().
			Err(err).
			Str("user_id", ident.UserID).
			Str("photo_id", photoID).
			Msg("Failed to delete photo")
		respondAppError(w, err)
		return
	}

	log.Info().Str("user_id", ident.UserID).Str("photo_id", photoID).Msg("Photo deleted")
	respondMessage(w, http.StatusOK, "photo deleted")
}

// CheckDuplicatesRequest carries the filenames to check
type CheckDuplicatesRequest struct {
	Filenames []string `json:"filenames"`
}

// CheckDuplicates handles POST /api/photos/check-duplicates
func (h *PhotoHandler) CheckDuplicates(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())

	var req CheckDuplicatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	duplicates, err := h.photoService.CheckDuplicates(r.Context(), ident.UserID, req.Filenames)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string][]string{"duplicates": duplicates})
}
