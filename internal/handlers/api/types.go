package api

import (
	"github.com/pavitra297/Doc-Repo-Service-FP/internal/registry"
)

// UploadResponse is returned by the upload endpoint and carries the
// records created for every file that made it into the registry.
type UploadResponse struct {
	Message string                `json:"message"`
	Files   []registry.FileRecord `json:"files"`
}

// MessageResponse is the generic success body for mutating endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the JSON error shape the web console expects on every
// non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse reports server liveness to the web console.
type HealthResponse struct {
	Status string `json:"status"`
	Files  int    `json:"files"`
	Uptime string `json:"uptime"`
}
