// Package review routes records needing human attention out of the
// automated classification path.
package review

import (
	"log/slog"

	"github.com/google/uuid"
)

// Reason identifies why a record was flagged for review.
type Reason string

const (
	ReasonLowConfidence Reason = "low_confidence"
	ReasonMissingText   Reason = "missing_text"
	ReasonNoSignal      Reason = "no_signal"
)

// Signal is one review flag raised during classification.
type Signal struct {
	AwardID        uuid.UUID
	CatalogVersion string
	Reason         Reason
	Score          float64
	Detail         string
}

// Emitter receives review signals. Implementations must be safe for
// concurrent use; the engine emits from parallel workers.
type Emitter interface {
	Emit(sig Signal)
}

// LogEmitter writes review signals to the structured log.
type LogEmitter struct {
	logger *slog.Logger
}

// NewLogEmitter creates a LogEmitter.
func NewLogEmitter(logger *slog.Logger) *LogEmitter {
	return &LogEmitter{logger: logger.With("system", "review")}
}

func (e *LogEmitter) Emit(sig Signal) {
	e.logger.Warn("record flagged for review",
		"award_id", sig.AwardID,
		"catalog_version", sig.CatalogVersion,
		"reason", string(sig.Reason),
		"score", sig.Score,
		"detail", sig.Detail,
	)
}
