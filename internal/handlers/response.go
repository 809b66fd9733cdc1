package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/Marshflair1988/ServiceIndustryApplication/internal/config"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// updateReturnAfter makes FindOneAndUpdate return the post-update document.
func updateReturnAfter() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

// FieldError reports a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Pagination is the metadata returned by every list endpoint.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	Total       int64 `json:"total"`
	HasNext     bool  `json:"hasNext"`
	HasPrev     bool  `json:"hasPrev"`
}

// paginationMeta computes totalPages as ceil(total/limit).
func paginationMeta(page, limit int, total int64) Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		Total:       total,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}
}

type apiResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    interface{}  `json:"data,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

var devMode bool

// Configure sets handler-level options from the loaded config.
func Configure(cfg *config.Config) {
	devMode = cfg.IsDevelopment()
}

func writeJSON(w http.ResponseWriter, status int, resp apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func writeData(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, apiResponse{Success: true, Message: message, Data: data})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, apiResponse{Success: true, Message: message})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, apiResponse{Success: false, Message: message})
}

func writeValidationErrors(w http.ResponseWriter, errs []FieldError) {
	writeJSON(w, http.StatusBadRequest, apiResponse{
		Success: false,
		Message: "Validation failed",
		Errors:  errs,
	})
}

// writeServerError logs the failure and returns a 500. Detail is suppressed
// outside development mode.
func writeServerError(w http.ResponseWriter, context string, err error) {
	log.Printf("%s: %v", context, err)
	message := "Internal server error"
	if devMode && err != nil {
		message = err.Error()
	}
	writeError(w, http.StatusInternalServerError, message)
}
