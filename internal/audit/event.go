// Package audit ingests the external classifier's per-chapter verdicts
// and applies them to the thread snapshot. This is the one place where
// the classifier's stringly-typed output is normalized into closed
// enumerations; everything downstream operates on exhaustively matched
// types. Classifier noise is never fatal here: unknown values degrade to
// safe defaults and every soft failure rides the report's warning list.
package audit

import (
	"strings"

	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/thread"
)

// Action is what the classifier asked the engine to do with a thread.
type Action string

const (
	ActionCreate  Action = "CREATE"
	ActionUpdate  Action = "UPDATE"
	ActionResolve Action = "RESOLVE"
	ActionStall   Action = "STALL"
)

// ParseAction normalizes a classifier-supplied action string. Unknown
// values degrade to UPDATE, the least destructive interpretation.
func ParseAction(s string) Action {
	switch Action(strings.ToUpper(strings.TrimSpace(s))) {
	case ActionCreate, ActionUpdate, ActionResolve, ActionStall:
		return Action(strings.ToUpper(strings.TrimSpace(s)))
	}
	return ActionUpdate
}

// RawEvent is one classifier verdict as it arrives off the wire. Every
// field may be missing or garbage; Normalize absorbs that.
type RawEvent struct {
	Signature          string   `json:"signature"`
	Title              string   `json:"title,omitempty"`
	Action             string   `json:"action"`
	Category           string   `json:"category"`
	ProgressType       string   `json:"progress_type"`
	SummaryDelta       string   `json:"summary_delta"`
	Participants       []string `json:"participants,omitempty"`
	ResolutionCriteria string   `json:"resolution_criteria,omitempty"`
	UrgencyHint        string   `json:"urgency_hint,omitempty"`
	Justification      string   `json:"justification,omitempty"`
}

// Event is a normalized classifier verdict.
type Event struct {
	Signature          string
	Title              string
	Action             Action
	Category           thread.Category
	Progress           thread.ProgressType
	SummaryDelta       string
	Participants       []string
	ResolutionCriteria string
	UrgencyHint        string
	Justification      string
}

// Normalize converts a raw classifier event into a typed one. A RESOLVE
// carries RESOLUTION progress by definition, whatever the classifier
// labeled it.
func Normalize(raw RawEvent) Event {
	e := Event{
		Signature:          strings.TrimSpace(raw.Signature),
		Title:              strings.TrimSpace(raw.Title),
		Action:             ParseAction(raw.Action),
		Category:           thread.ParseCategory(strings.ToUpper(strings.TrimSpace(raw.Category))),
		Progress:           thread.ParseProgressType(strings.ToUpper(strings.TrimSpace(raw.ProgressType))),
		SummaryDelta:       strings.TrimSpace(raw.SummaryDelta),
		Participants:       raw.Participants,
		ResolutionCriteria: strings.TrimSpace(raw.ResolutionCriteria),
		UrgencyHint:        strings.TrimSpace(raw.UrgencyHint),
		Justification:      strings.TrimSpace(raw.Justification),
	}
	if e.Action == ActionResolve {
		e.Progress = thread.ProgressResolution
	}
	return e
}

// addressesCriteria reports whether a RESOLVE justification engages with
// the thread's resolution criteria at all. This is deliberately shallow:
// the classifier certifies, the engine only checks that it said so.
func addressesCriteria(justification string) bool {
	return strings.Contains(strings.ToLower(justification), "criteria")
}
