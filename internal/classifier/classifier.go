// Package classifier is the engine's boundary with the external semantic
// classifier: the LLM call that reads a chapter and labels how it
// touched each open thread, and the call that narrates the next
// chapter's directive. Both calls are network-bound, bounded by the
// configured timeout, and never trusted blindly; the pipeline degrades
// to physics-only behavior when either fails.
package classifier

import (
	"context"
	"fmt"

	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/audit"
	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/directive"
	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/director"
	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/thread"
)

// ThreadDigest is the compressed view of one open thread that the
// classifier sees alongside the chapter text.
type ThreadDigest struct {
	Signature          string  `json:"signature"`
	Title              string  `json:"title,omitempty"`
	Category           string  `json:"category"`
	Status             string  `json:"status"`
	Karma              int     `json:"karma"`
	PayoffDebt         float64 `json:"payoff_debt"`
	ResolutionCriteria string  `json:"resolution_criteria,omitempty"`
	LastSummary        string  `json:"last_summary,omitempty"`
}

// AuditRequest carries one chapter to the classifier.
type AuditRequest struct {
	NovelID     string         `json:"novel_id"`
	Chapter     int            `json:"chapter"`
	ChapterText string         `json:"chapter_text"`
	Threads     []ThreadDigest `json:"threads"`
}

// AuditResult is the classifier's verdict batch for one chapter, plus
// any free-text consistency warnings it volunteered.
type AuditResult struct {
	Events              []audit.RawEvent `json:"events"`
	ConsistencyWarnings []string         `json:"consistency_warnings,omitempty"`
}

// NarrateRequest asks the classifier to color the directive for the
// chapter the director just planned.
type NarrateRequest struct {
	NovelID   string             `json:"novel_id"`
	Chapter   int                `json:"chapter"`
	Selection director.Selection `json:"selection"`
}

// ChapterAuditor classifies chapter text into thread events.
type ChapterAuditor interface {
	AuditChapter(ctx context.Context, req AuditRequest) (*AuditResult, error)
}

// DirectiveNarrator proposes free-form guidance for an upcoming chapter.
type DirectiveNarrator interface {
	NarrateDirective(ctx context.Context, req NarrateRequest) (*directive.Proposal, error)
}

// Digests builds the classifier's view of every non-terminal thread in
// the snapshot.
func Digests(snap thread.Snapshot) []ThreadDigest {
	var out []ThreadDigest
	for _, i := range snap.NonTerminal() {
		t := snap.Threads[i]
		d := ThreadDigest{
			Signature:          t.Signature,
			Title:              t.Title,
			Category:           string(t.Category),
			Status:             string(t.Status),
			Karma:              t.KarmaWeight,
			PayoffDebt:         t.PayoffDebt,
			ResolutionCriteria: t.ResolutionCriteria,
		}
		if n := len(t.Summary); n > 0 {
			d.LastSummary = fmt.Sprintf("ch%d: %s", t.Summary[n-1].Chapter, t.Summary[n-1].Text)
		}
		out = append(out, d)
	}
	return out
}
