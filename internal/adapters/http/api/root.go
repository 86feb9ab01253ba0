package api

import (
	"net/http"

	service "github.com/okian/homeval/internal/app"
)

// RootDependencies defines what the metadata endpoints need.
type RootDependencies interface {
	Info() service.Info
	Model() service.ModelInfo
}

// RootHandler serves the liveness payload and the model description.
type RootHandler struct {
	deps RootDependencies
}

// NewRootHandler creates a new root handler.
func NewRootHandler(deps RootDependencies) *RootHandler {
	return &RootHandler{deps: deps}
}

// HandleRoot handles GET / requests.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w, http.MethodGet, http.MethodHead)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Info())
}

// HandleModel handles GET /model requests.
func (h *RootHandler) HandleModel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Model())
}
