package httpapi

import (
	"encoding/json"
	"net/http"
)

const (
	msgMissingOrInvalid = "Missing or invalid gif_name parameter"
	msgMissingParam     = "Missing gif_name parameter"
	msgInvalidParam     = "Invalid gif_name parameter"
	msgMissingField     = "Missing gif_name"
	msgInvalidField     = "Invalid gif_name"
	msgGifNotFound      = "GIF not found"
	msgInvalidJSON      = "Invalid JSON"
	msgBodyTooLarge     = "Request body too large"
	msgServerError      = "Server error"
	msgInternal         = "Internal server error"
	msgMethodNotAllowed = "Method Not Allowed"
	msgNotFound         = "Not found"

	msgLogRecorded  = "Log recorded"
	msgCountUpdated = "Download count updated"
)

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
	Count   *int64 `json:"count,omitempty"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
