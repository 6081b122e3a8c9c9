// Package response provides shared JSON response helpers for HTTP handlers.
package response

import (
	"encoding/json"
	"net/http"
)

// Messages used in the fixed response bodies.
const (
	MsgUploaded      = "File uploaded successfully!"
	MsgNoFile        = "No file uploaded."
	MsgInternalError = "Internal Server Error"
)

// Body is the response body shared by every endpoint.
// Message is always present; the other fields only when they apply.
type Body struct {
	Message string `json:"message"`
	FileURL string `json:"fileUrl,omitempty"`
	Error   string `json:"error,omitempty"`
}

// JSON writes a JSON-encoded payload with the given HTTP status code.
func JSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Uploaded writes the 200 response pointing at the stored asset.
func Uploaded(w http.ResponseWriter, fileURL string) {
	JSON(w, http.StatusOK, Body{Message: MsgUploaded, FileURL: fileURL})
}

// BadRequest writes a 400 response.
func BadRequest(w http.ResponseWriter, message string) {
	JSON(w, http.StatusBadRequest, Body{Message: message})
}

// NotFound writes a 404 response.
func NotFound(w http.ResponseWriter) {
	JSON(w, http.StatusNotFound, Body{Message: http.StatusText(http.StatusNotFound)})
}

// MethodNotAllowed writes a 405 response.
func MethodNotAllowed(w http.ResponseWriter) {
	JSON(w, http.StatusMethodNotAllowed, Body{Message: http.StatusText(http.StatusMethodNotAllowed)})
}

// InternalError writes a 500 response carrying the error detail.
func InternalError(w http.ResponseWriter, err error) {
	body := Body{Message: MsgInternalError}
	if err != nil {
		body.Error = err.Error()
	}
	JSON(w, http.StatusInternalServerError, body)
}
