package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/nikbrunner/bmsort/internal/logger"
	"github.com/nikbrunner/bmsort/internal/model"
	"github.com/nikbrunner/bmsort/internal/reconcile"
)

type proposalRequest struct {
	Library  *model.Library `json:"library"`
	Proposal model.Proposal `json:"proposal"`
}

type reportResponse struct {
	FoldersCreated int                    `json:"foldersCreated"`
	Assigned       int                    `json:"assigned"`
	Skipped        int                    `json:"skipped"`
	Diagnostics    []reconcile.Diagnostic `json:"diagnostics"`
}

type proposalResponse struct {
	Library *model.Library `json:"library"`
	Report  reportResponse `json:"report"`
}

// ApplyProposal applies a complete proposal to the posted library.
func ApplyProposal(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req proposalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid proposal request json")
			return
		}

		lib, report := d.Reconciler.ApplyProposal(decodeLibrary(req.Library), req.Proposal)
		writeJSON(w, http.StatusOK, proposalResponse{
			Library: lib,
			Report: reportResponse{
				FoldersCreated: report.FoldersCreated,
				Assigned:       report.Assigned,
				Skipped:        report.Skipped,
				Diagnostics:    nonNil(report.Diagnostics),
			},
		})
	}
}

type actionsRequest struct {
	Library *model.Library    `json:"library"`
	Actions []json.RawMessage `json:"actions"`
}

type effectResponse struct {
	Type            model.ActionType       `json:"type,omitempty"`
	CreatedFolderID string                 `json:"createdFolderId,omitempty"`
	TargetFolderID  string                 `json:"targetFolderId,omitempty"`
	Moved           []string               `json:"moved"`
	Aborted         bool                   `json:"aborted"`
	Diagnostics     []reconcile.Diagnostic `json:"diagnostics"`
}

type actionsResponse struct {
	Library *model.Library   `json:"library"`
	Effects []effectResponse `json:"effects"`
}

// ApplyActions applies a batch of tagged actions in order against the posted
// library. Payloads that fail to decode are reported and skipped.
func ApplyActions(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req actionsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid actions request json")
			return
		}

		lib := decodeLibrary(req.Library)
		session := d.Reconciler.SessionFor(lib)
		effects := make([]effectResponse, 0, len(req.Actions))

		for _, raw := range req.Actions {
			action, err := model.DecodeAction(raw)
			if err != nil {
				d.Logger.Warn("skipping action", logger.Error(err))
				effects = append(effects, rejected(err))
				continue
			}

			var effect reconcile.Effect
			lib, effect = session.Apply(lib, action)
			effects = append(effects, effectResponse{
				Type:            action.Type(),
				CreatedFolderID: effect.CreatedFolderID,
				TargetFolderID:  effect.TargetFolderID,
				Moved:           nonNil(effect.Moved),
				Aborted:         effect.Aborted,
				Diagnostics:     nonNil(effect.Diagnostics),
			})
		}

		writeJSON(w, http.StatusOK, actionsResponse{Library: lib, Effects: effects})
	}
}

// rejected reports an action payload that never reached the reconciler.
func rejected(err error) effectResponse {
	return effectResponse{
		Moved:       []string{},
		Aborted:     true,
		Diagnostics: []reconcile.Diagnostic{{Kind: reconcile.KindUnsupportedAction, Message: err.Error()}},
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
