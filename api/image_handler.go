package api

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/raushankrgupta/fragrance-collection/utils"
)

// multipart overhead allowed on top of the image itself
const uploadSlack = 1 << 20

type importImageRequest struct {
	URL string `json:"url"`
}

// UploadImage attaches an image from a multipart "image" field, or from a
// JSON {"url": ...} body that is downloaded server side.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(h.logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Upload Image API]")

	id, err := objectIDParam(r, "id")
	if err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req importImageRequest
		if err := decodeBody(r, &req); err != nil {
			respondServiceError(w, &logMessageBuilder, err)
			return
		}
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Importing image from %s", req.URL))
		fragrance, err := h.images.Import(r.Context(), id, req.URL)
		if err != nil {
			respondServiceError(w, &logMessageBuilder, err)
			return
		}
		utils.RespondSuccess(w, http.StatusCreated, map[string]interface{}{"fragrance": fragrance})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, utils.MaxUploadBytes+uploadSlack)
	if err := r.ParseMultipartForm(utils.MaxUploadBytes + uploadSlack); err != nil {
		utils.RespondError(w, &logMessageBuilder, "No image file provided or file too large", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "No image file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, fmt.Sprintf("Failed to read image: %v", err), http.StatusBadRequest)
		return
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Uploading %s (%d bytes, %s)", header.Filename, len(data), contentType))
	fragrance, err := h.images.Upload(r.Context(), id, header.Filename, contentType, data)
	if err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}
	utils.RespondSuccess(w, http.StatusCreated, map[string]interface{}{"fragrance": fragrance})
}

// DeleteImage removes one image from a fragrance and from storage
func (h *Handler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(h.logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Delete Image API]")

	id, err := objectIDParam(r, "id")
	if err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}
	imageID, err := objectIDParam(r, "imageId")
	if err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}

	if err := h.images.Delete(r.Context(), id, imageID); err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Deleted image %s of %s", imageID.Hex(), id.Hex()))
	utils.RespondMessage(w, http.StatusOK, "Image deleted successfully")
}

