package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/nikbrunner/bmsort/internal/logger"
	"github.com/nikbrunner/bmsort/internal/model"
	"github.com/nikbrunner/bmsort/internal/reconcile"
)

// MaxBodyBytes caps request bodies; bookmark exports with inline icons can be large.
const MaxBodyBytes = 32 << 20

// Suggester proposes a reorganization of a library.
type Suggester interface {
	SuggestStructure(ctx context.Context, lib *model.Library, prompt string) (*model.Proposal, error)
}

// Deps are shared by all handlers.
type Deps struct {
	Logger     logger.Logger
	Reconciler *reconcile.Reconciler
	Suggester  Suggester // nil when no API key is configured
	StartTime  time.Time
	Version    string
	// CORSOrigins may call the API from a browser; empty disables CORS.
	CORSOrigins []string
}

type errorResponse struct {
	Error string `json:"error"`
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

// decodeLibrary fills nil slices so handlers can rely on them.
func decodeLibrary(lib *model.Library) *model.Library {
	if lib == nil {
		return model.NewLibrary()
	}
	if lib.Folders == nil {
		lib.Folders = []model.Folder{}
	}
	if lib.Bookmarks == nil {
		lib.Bookmarks = []model.Bookmark{}
	}
	return lib
}
