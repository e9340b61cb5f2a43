package reconcile

import (
	"github.com/nikbrunner/bmsort/internal/logger"
	"github.com/nikbrunner/bmsort/internal/model"
)

// Session carries the name indexes for one batch of incremental actions.
// It is not safe for concurrent use; batches are applied sequentially.
type Session struct {
	index   NameIndex
	created map[string]string
	log     logger.Logger
}

// NewSession starts a batch against a live folder tree described by index.
func (r *Reconciler) NewSession(index NameIndex) *Session {
	if index == nil {
		index = make(NameIndex)
	}
	return &Session{
		index:   index,
		created: make(map[string]string),
		log:     r.log,
	}
}

// SessionFor starts a batch against lib's current folder tree.
func (r *Reconciler) SessionFor(lib *model.Library) *Session {
	return r.NewSession(BuildNameIndex(lib))
}

// Apply applies one action and returns the new library.
func (s *Session) Apply(lib *model.Library, action model.Action) (*model.Library, Effect) {
	out, effect := ApplyAction(lib, action, s.index, s.created)
	logDiagnostics(s.log, effect.Diagnostics)
	if effect.CreatedFolderID != "" {
		s.log.Debug("folder created",
			logger.String("id", effect.CreatedFolderID),
			logger.String("action", string(action.Type())))
	}
	if len(effect.Moved) > 0 {
		s.log.Debug("bookmarks moved",
			logger.String("target", effect.TargetFolderID),
			logger.Strings("bookmarks", effect.Moved))
	}
	return out, effect
}

// ApplyAll applies actions in order. An aborted action never stops the rest.
func (s *Session) ApplyAll(lib *model.Library, actions []model.Action) (*model.Library, []Effect) {
	effects := make([]Effect, 0, len(actions))
	for _, a := range actions {
		var effect Effect
		lib, effect = s.Apply(lib, a)
		effects = append(effects, effect)
	}
	return lib, effects
}

// Resolve resolves a folder reference the same way MoveBookmarks does.
func (s *Session) Resolve(ref string) (string, []Diagnostic) {
	id, diags := resolveRef(ref, s.index, s.created)
	logDiagnostics(s.log, diags)
	return id, diags
}

// RecordCreated registers a folder created outside Apply, for example in a
// host bookmark store, so later actions in the batch can name it.
func (s *Session) RecordCreated(name, id string) {
	s.created[name] = id
}

// Created returns a copy of the names created in this batch.
func (s *Session) Created() map[string]string {
	out := make(map[string]string, len(s.created))
	for k, v := range s.created {
		out[k] = v
	}
	return out
}
