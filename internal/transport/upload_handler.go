package transport

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"listing-review/internal/authz"
	"listing-review/internal/middleware"
	"listing-review/internal/storage"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MaxImageSize bounds a single uploaded image
const MaxImageSize = 10 << 20

// UploadResponse carries the public URL of a stored image
type UploadResponse struct {
	ImageURL string `json:"imageUrl"`
}

// UploadHandler stores product images
type UploadHandler struct {
	images storage.ImageStore
	logger *zap.Logger
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(images storage.ImageStore, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{images: images, logger: logger}
}

// RegisterRoutes registers the upload route
func (h *UploadHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.With(
		authMiddleware,
		middleware.RequireCapability(authz.UploadImage, h.logger),
	).Post("/api/uploads", h.Upload)
}

// Upload reads the multipart "image" field and returns where it was stored.
// The content type is sniffed from the bytes, not taken from the client.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxImageSize+1<<20)
	if err := r.ParseMultipartForm(MaxImageSize); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "missing image field")
		return
	}
	defer file.Close()

	if header.Size > MaxImageSize {
		middleware.RespondWithError(w, http.StatusBadRequest, "image too large")
		return
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		middleware.RespondWithError(w, http.StatusBadRequest, "unreadable image")
		return
	}
	head = head[:n]
	contentType := http.DetectContentType(head)

	url, err := h.images.Put(r.Context(), io.MultiReader(bytes.NewReader(head), file), header.Size, contentType)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedImage) {
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Image upload failed", zap.String("filename", header.Filename), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to store image")
		return
	}

	identity, _ := middleware.GetIdentity(r.Context())
	h.logger.Info("Image uploaded",
		zap.String("user_id", identity.ID),
		zap.String("url", url),
		zap.Int64("size", header.Size),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, UploadResponse{ImageURL: url})
}
