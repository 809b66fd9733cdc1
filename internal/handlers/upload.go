package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Marshflair1988/ServiceIndustryApplication/internal/config"
	"github.com/Marshflair1988/ServiceIndustryApplication/internal/services"
)

const maxUploadSize = 10 << 20 // 10 MB

var cloudinaryService *services.CloudinaryService

// InitCloudinaryService wires the shared Cloudinary client. Uploads return
// 503 until this succeeds, the rest of the API works without it.
func InitCloudinaryService(cfg *config.Config) error {
	svc, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return err
	}
	cloudinaryService = svc
	return nil
}

var uploadFolders = map[string]bool{
	"profiles": true,
	"services": true,
}

// UploadImage accepts a multipart image and stores it in Cloudinary.
func UploadImage(w http.ResponseWriter, r *http.Request) {
	if cloudinaryService == nil {
		writeError(w, http.StatusServiceUnavailable, "Image uploads are not configured")
		return
	}

	folder := r.URL.Query().Get("folder")
	if folder == "" {
		folder = "services"
	}
	if !uploadFolders[folder] {
		writeError(w, http.StatusBadRequest, "Invalid upload folder")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	_, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}

	if header.Size > maxUploadSize {
		writeError(w, http.StatusBadRequest, "File too large, maximum size is 10MB")
		return
	}
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		writeError(w, http.StatusBadRequest, "Only image files are allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	url, err := cloudinaryService.UploadImageFromHeader(ctx, header, folder)
	if err != nil {
		writeServerError(w, "Upload error", err)
		return
	}

	writeData(w, http.StatusOK, "Image uploaded successfully", map[string]interface{}{"url": url})
}
