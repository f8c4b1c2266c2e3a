package gallery

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"imagegallery/internal/pkg/response"
	"imagegallery/internal/pkg/validator"
)

// Handler exposes a Store over HTTP.
type Handler struct {
	store       *Store
	maxFileSize int64
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store, maxFileSize: store.maxFileSize}
}

// GetGallery returns the full session state.
// GET /gallery
func (h *Handler) GetGallery(c *gin.Context) {
	response.Success(c, http.StatusOK, h.store.Snapshot())
}

// ListImages returns every image, or only matching ones when q is set.
// GET /images?q=
func (h *Handler) ListImages(c *gin.Context) {
	images := h.store.Images()
	if q, ok := c.GetQuery("q"); ok {
		images = Filter(images, q)
	}
	response.Success(c, http.StatusOK, images)
}

// GET /images/:id
func (h *Handler) GetImage(c *gin.Context) {
	img, err := h.store.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, img)
}

// Upload accepts one or more "files" parts with optional "names" parts
// matched by position.
// POST /images
func (h *Handler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "multipart form expected")
		return
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", ErrNoFiles.Error())
		return
	}
	names := form.Value["names"]

	inputs := make([]FileInput, 0, len(headers))
	for i, fh := range headers {
		content, err := h.readFile(fh)
		if err != nil {
			writeError(c, err)
			return
		}
		in := FileInput{Filename: fh.Filename, Content: content}
		if i < len(names) {
			in.Name = names[i]
		}
		inputs = append(inputs, in)
	}

	created, err := h.store.UploadBatch(c.Request.Context(), inputs)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, UploadResponse{Images: created})
}

func (h *Handler) readFile(fh *multipart.FileHeader) ([]byte, error) {
	if h.maxFileSize > 0 && fh.Size > h.maxFileSize {
		return nil, fmt.Errorf("%w: %s: %w", ErrValidation, fh.Filename, ErrFileTooLarge)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

// Rename changes an image's display name.
// PATCH /images/:id
func (h *Handler) Rename(c *gin.Context) {
	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "name must not be empty", fields)
		return
	}

	img, err := h.store.Rename(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, img)
}

// DELETE /images/:id
func (h *Handler) Delete(c *gin.Context) {
	if err := h.store.Remove(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": c.Param("id")})
}

// PUT /search
func (h *Handler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid search term", fields)
		return
	}
	h.store.Search(req.Term)
	response.Success(c, http.StatusOK, gin.H{
		"search_term":     h.store.SearchTerm(),
		"filtered_images": h.store.Filtered(),
	})
}

// DELETE /search
func (h *Handler) ClearSearch(c *gin.Context) {
	h.store.ClearSearch()
	response.Success(c, http.StatusOK, gin.H{"search_term": ""})
}

// Blob serves the payload behind a live display handle.
// GET /blobs/:handle
func (h *Handler) Blob(c *gin.Context) {
	payload, ok := h.store.Handles().Resolve(c.Param("handle"))
	if !ok {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "display handle not found")
		return
	}
	c.Data(http.StatusOK, http.DetectContentType(payload), payload)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrFileTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", err.Error())
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNoFiles):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", ErrNotFound.Error())
	case errors.Is(err, ErrStoreClosed):
		response.Error(c, http.StatusServiceUnavailable, "STORE_CLOSED", err.Error())
	case errors.Is(err, ErrBackend):
		_ = c.Error(err)
		response.Error(c, http.StatusBadGateway, "BACKEND_ERROR", "backend operation failed")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
	}
}
