package reconcile

import (
	"fmt"

	"github.com/nikbrunner/bmsort/internal/logger"
)

// Kind classifies a non-fatal reconciliation problem.
type Kind string

const (
	KindUnresolvedPath    Kind = "unresolved_path"
	KindInvalidAssignment Kind = "invalid_assignment"
	KindUnknownBookmark   Kind = "unknown_bookmark"
	KindAmbiguousName     Kind = "ambiguous_name"
	KindEmptyTarget       Kind = "empty_target"
	KindUnknownTarget     Kind = "unknown_target"
	KindUnknownParent     Kind = "unknown_parent"
	KindUnsupportedAction Kind = "unsupported_action"
)

// Diagnostic describes something the reconciler skipped or guessed at.
// Diagnostics never abort the surrounding batch.
type Diagnostic struct {
	Kind    Kind   `json:"kind"`
	Subject string `json:"subject"` // the bookmark ID, path or folder reference concerned
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s (%s)", d.Kind, d.Message, d.Subject)
}

func diag(kind Kind, subject, format string, args ...any) Diagnostic {
	return Diagnostic{Kind: kind, Subject: subject, Message: fmt.Sprintf(format, args...)}
}

func logDiagnostics(log logger.Logger, diags []Diagnostic) {
	for _, d := range diags {
		log.Warn(d.Message,
			logger.String("kind", string(d.Kind)),
			logger.String("subject", d.Subject),
		)
	}
}
