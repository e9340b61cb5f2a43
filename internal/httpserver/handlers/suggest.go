package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/nikbrunner/bmsort/internal/logger"
	"github.com/nikbrunner/bmsort/internal/model"
)

type suggestRequest struct {
	Library *model.Library `json:"library"`
	Prompt  string         `json:"prompt"`
}

// Suggest asks the suggestion service for a proposal. The proposal is not
// applied; post it to /api/proposal once accepted.
func Suggest(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Suggester == nil {
			writeError(w, http.StatusServiceUnavailable, "suggestions are not configured")
			return
		}

		var req suggestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid suggest request json")
			return
		}

		proposal, err := d.Suggester.SuggestStructure(r.Context(), decodeLibrary(req.Library), req.Prompt)
		if err != nil {
			d.Logger.Error("suggestion failed", logger.Error(err))
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, proposal)
	}
}
