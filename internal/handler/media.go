package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"novara/internal/httputil"
	"novara/internal/model"
	"novara/internal/service"
)

// MediaHandler accepts image uploads. mediaService is nil when R2 is not configured.
type MediaHandler struct {
	mediaService *service.MediaService
	logger       zerolog.Logger
}

func NewMediaHandler(mediaService *service.MediaService, logger zerolog.Logger) *MediaHandler {
	return &MediaHandler{
		mediaService: mediaService,
		logger:       logger.With().Str("component", "media_handler").Logger(),
	}
}

// UploadImage handles POST /api/media/images
// Multipart form: "kind" (cover|avatar) and "file".
func (h *MediaHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	if h.mediaService == nil {
		httputil.WriteServiceUnavailable(w, model.CodeMediaDisabled, "Image uploads are not configured")
		return
	}

	maxFormSize := int64(model.MaxImageSizeBytes) + 1024*1024 // allow form overhead
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			httputil.WriteBadRequest(w, "Content-Type must be multipart/form-data")
			return
		}
		if strings.Contains(err.Error(), "request body too large") {
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Image exceeds 5MB limit")
			return
		}
		httputil.WriteBadRequest(w, "Invalid form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteBadRequest(w, "file is required")
		return
	}
	defer file.Close()

	result, err := h.mediaService.UploadImage(r.Context(), r.FormValue("kind"), file, header)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidImageKind):
			httputil.WriteBadRequest(w, "kind must be cover or avatar")
		case errors.Is(err, model.ErrFileTooLarge):
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Image exceeds 5MB limit")
		case errors.Is(err, model.ErrInvalidImageType):
			httputil.WriteBadRequestWithCode(w, model.CodeInvalidImageType, "Unsupported image type. Allowed: jpeg, png, gif, webp")
		default:
			h.logger.Error().Err(err).Int64("user_id", userID).Msg("image upload failed")
			httputil.WriteInternalError(w, "Failed to upload image")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, result)
}
