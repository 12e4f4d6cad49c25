// Package thread defines the narrative thread model for the Hall of Jade
// Manuscripts drafting engine. A thread is an open story obligation (a
// promise, conflict, or mystery) tracked across chapters. Threads are
// created and mutated only by the audit applier; the rest of the engine
// treats them as values.
package thread

import (
	"time"
)

// =============================================================================
// CATEGORY
// =============================================================================

// Category is the importance tier of a thread, fixed at creation.
// A thread may later be promoted to a higher tier but is never demoted.
type Category string

const (
	CategorySovereign Category = "SOVEREIGN" // novel-defining arcs
	CategoryMajor     Category = "MAJOR"     // book-level arcs
	CategoryMinor     Category = "MINOR"     // local conflicts, side plots
	CategorySeed      Category = "SEED"      // planted foreshadowing
)

// categoryKarma maps each tier to its base karma weight.
var categoryKarma = map[Category]int{
	CategorySovereign: 90,
	CategoryMajor:     70,
	CategoryMinor:     40,
	CategorySeed:      20,
}

// categoryRank orders tiers for promotion checks. Higher outranks lower.
var categoryRank = map[Category]int{
	CategorySovereign: 4,
	CategoryMajor:     3,
	CategoryMinor:     2,
	CategorySeed:      1,
}

// BaseKarma returns the karma weight a thread of this category starts with.
func (c Category) BaseKarma() int {
	if k, ok := categoryKarma[c]; ok {
		return k
	}
	return categoryKarma[CategoryMinor]
}

// Outranks reports whether c is a strictly higher tier than other.
func (c Category) Outranks(other Category) bool {
	return categoryRank[c] > categoryRank[other]
}

// ParseCategory normalizes a classifier-supplied category string.
// Unknown values fall back to MINOR rather than failing; the classifier
// is noisy by contract.
func ParseCategory(s string) Category {
	switch Category(s) {
	case CategorySovereign, CategoryMajor, CategoryMinor, CategorySeed:
		return Category(s)
	}
	return CategoryMinor
}

// =============================================================================
// STATUS
// =============================================================================

// Status is the lifecycle state of a thread.
type Status string

const (
	StatusSeed      Status = "SEED"      // planted, not yet active
	StatusOpen      Status = "OPEN"      // active obligation
	StatusBlooming  Status = "BLOOMING"  // being driven toward resolution
	StatusStalled   Status = "STALLED"   // neglected or deliberately paused
	StatusClosed    Status = "CLOSED"    // resolved; terminal
	StatusAbandoned Status = "ABANDONED" // dropped on purpose; terminal
)

// Terminal reports whether the status admits no further mutation.
func (s Status) Terminal() bool {
	return s == StatusClosed || s == StatusAbandoned
}

// allowedEdges is the thread state graph. Transitions not listed here
// never occur, no matter what the classifier claims.
var allowedEdges = map[Status][]Status{
	StatusSeed:     {StatusOpen, StatusStalled, StatusAbandoned, StatusClosed},
	StatusOpen:     {StatusBlooming, StatusStalled, StatusClosed, StatusAbandoned},
	StatusBlooming: {StatusClosed, StatusStalled, StatusAbandoned},
	StatusStalled:  {StatusOpen, StatusClosed, StatusAbandoned},
}

// CanTransition reports whether the state graph has an edge from s to next.
// A self-transition is always allowed (staying put is not a transition).
func (s Status) CanTransition(next Status) bool {
	if s == next {
		return true
	}
	for _, t := range allowedEdges[s] {
		if t == next {
			return true
		}
	}
	return false
}

// =============================================================================
// PROGRESS TYPE
// =============================================================================

// ProgressType classifies what the most recent touch did to a thread.
type ProgressType string

const (
	ProgressNone       ProgressType = "NONE"       // not touched
	ProgressInfo       ProgressType = "INFO"       // mentioned, no material change
	ProgressEscalation ProgressType = "ESCALATION" // stakes raised, real movement
	ProgressResolution ProgressType = "RESOLUTION" // obligation paid off
)

// Real reports whether the progress type counts as material progress.
func (p ProgressType) Real() bool {
	return p == ProgressEscalation || p == ProgressResolution
}

// ParseProgressType normalizes a classifier-supplied progress string.
// Unknown values degrade to INFO.
func ParseProgressType(s string) ProgressType {
	switch ProgressType(s) {
	case ProgressNone, ProgressInfo, ProgressEscalation, ProgressResolution:
		return ProgressType(s)
	}
	return ProgressInfo
}

// =============================================================================
// THREAD
// =============================================================================

// SummaryEntry is one line of a thread's append-only history, tagged with
// the chapter that produced it.
type SummaryEntry struct {
	Chapter int    `json:"chapter"`
	Text    string `json:"text"`
}

// Thread is one tracked narrative obligation.
//
// UrgencyScore is derived: it is recomputed from the other fields plus the
// current chapter number and config, and is stored only as a convenience
// for display. Nothing ranks off the stored value without recomputing.
type Thread struct {
	ID        string `json:"id"`
	NovelID   string `json:"novel_id"`
	Signature string `json:"signature"` // normalized key, stable across chapters
	Title     string `json:"title"`

	Category Category `json:"category"`
	Status   Status   `json:"status"`

	KarmaWeight  int     `json:"karma_weight"`  // 1..100
	PayoffDebt   float64 `json:"payoff_debt"`   // >= 0
	Entropy      float64 `json:"entropy"`       // >= 0
	Velocity     float64 `json:"velocity"`      // signed recent progress rate
	UrgencyScore float64 `json:"urgency_score"` // derived, 0..1000

	FirstChapter         int `json:"first_chapter"`
	LastMentionedChapter int `json:"last_mentioned_chapter"`
	BloomingChapter      int `json:"blooming_chapter"` // 0 = never bloomed

	MentionCount     int          `json:"mention_count"`
	ProgressCount    int          `json:"progress_count"`
	LastProgressType ProgressType `json:"last_progress_type"`

	ResolutionCriteria string         `json:"resolution_criteria,omitempty"`
	Participants       []string       `json:"participants,omitempty"`
	Summary            []SummaryEntry `json:"summary,omitempty"`

	DirectorAttentionForced bool   `json:"director_attention_forced"`
	IntentionalAbandonment  bool   `json:"intentional_abandonment"`
	AbandonmentReason       string `json:"abandonment_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChaptersSinceMention returns how many chapters have passed since the
// thread was last touched, never negative.
func (t *Thread) ChaptersSinceMention(currentChapter int) int {
	gap := currentChapter - t.LastMentionedChapter
	if gap < 0 {
		return 0
	}
	return gap
}

// ClampKarma bounds a karma weight to the legal 1..100 range.
func ClampKarma(k int) int {
	if k < 1 {
		return 1
	}
	if k > 100 {
		return 100
	}
	return k
}

// Clone returns a deep copy of the thread. Slices are copied so the clone
// shares no mutable state with the original.
func (t *Thread) Clone() Thread {
	c := *t
	if t.Participants != nil {
		c.Participants = append([]string(nil), t.Participants...)
	}
	if t.Summary != nil {
		c.Summary = append([]SummaryEntry(nil), t.Summary...)
	}
	return c
}

// AddParticipants unions the given character identifiers into the
// participant set, preserving first-seen order.
func (t *Thread) AddParticipants(names []string) {
	seen := make(map[string]bool, len(t.Participants))
	for _, p := range t.Participants {
		seen[p] = true
	}
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		t.Participants = append(t.Participants, n)
		seen[n] = true
	}
}

// AppendSummary appends one history line for the given chapter.
func (t *Thread) AppendSummary(chapter int, text string) {
	if text == "" {
		return
	}
	t.Summary = append(t.Summary, SummaryEntry{Chapter: chapter, Text: text})
}
