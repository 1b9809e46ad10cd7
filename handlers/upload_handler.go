package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"travel-blog-server/models"
	"travel-blog-server/services"
	"travel-blog-server/utils/errors"
)

type UploadHandler struct {
	imageService *services.ImageService
}

func NewUploadHandler(imageService *services.ImageService) *UploadHandler {
	return &UploadHandler{imageService: imageService}
}

type uploadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	URL     string `json:"url"`
}

// UploadImage stores a single image and returns its public URL. The kind in
// the path only selects the storage key prefix; nothing else is updated.
func (h *UploadHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	kind, ok := models.ParseImageKind(mux.Vars(r)["type"])
	if !ok {
		fail(w, r, errors.Invalid("INVALID_UPLOAD_TYPE", "Unknown upload type"))
		return
	}
	cleanup, err := parseMultipart(w, r, h.imageService.MaxBytes())
	if err != nil {
		fail(w, r, err)
		return
	}
	defer cleanup()

	image, closeImage, err := formAttachment(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	defer closeImage()

	url, err := h.imageService.Upload(r.Context(), caller, kind, image)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, uploadResponse{Success: true, Message: "File uploaded successfully", URL: url})
}
