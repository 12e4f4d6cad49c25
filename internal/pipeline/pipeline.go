// Package pipeline runs the per-chapter control flow: apply the audit of
// the chapter just written, recompute thread physics, plan the next
// chapter's selection, and assemble its directive. Processing is
// synchronous and strictly sequential per novel; different novels can
// run in parallel because no state is shared between snapshots.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/audit"
	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/classifier"
	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/config"
	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/directive"
	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/director"
	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/logging"
	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/thread"
)

// ErrChapterOutOfOrder is returned when a chapter is processed out of
// sequence. The engine is exactly-once per chapter by caller contract:
// chapter numbers must be monotonically increasing and gap-free, because
// cumulative counters (mentions, debt, entropy) would double-count on a
// replay.
var ErrChapterOutOfOrder = errors.New("chapter out of order")

// Engine wires the pipeline stages together. The classifier endpoints
// are optional: without them the engine runs physics-only, which is also
// the degradation path when a call fails or times out.
type Engine struct {
	cfg      *config.Config
	auditor  classifier.ChapterAuditor
	narrator classifier.DirectiveNarrator
}

// Option configures an Engine.
type Option func(*Engine)

// WithAuditor attaches the chapter audit classifier.
func WithAuditor(a classifier.ChapterAuditor) Option {
	return func(e *Engine) { e.auditor = a }
}

// WithNarrator attaches the directive narration classifier.
func WithNarrator(n classifier.DirectiveNarrator) Option {
	return func(e *Engine) { e.narrator = n }
}

// New creates a pipeline engine. The config must already be validated.
func New(cfg *config.Config, opts ...Option) *Engine {
	e := &Engine{cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is everything one chapter's processing produced.
type Result struct {
	Snapshot            thread.Snapshot     `json:"snapshot"`
	Report              audit.Report        `json:"report"`
	Selection           director.Selection  `json:"selection"`
	Directive           directive.Directive `json:"directive"`
	Health              int                 `json:"health"`
	ConsistencyWarnings []string            `json:"consistency_warnings,omitempty"`
	Warnings            []string            `json:"warnings,omitempty"`
}

// Chapter processes one finished chapter: its text is audited, the
// snapshot updated, and the plan plus directive for the following
// chapter emitted. The input snapshot is never mutated; on error the
// caller keeps its snapshot untouched.
func (e *Engine) Chapter(ctx context.Context, snap thread.Snapshot, chapterText string, chapter int) (*Result, error) {
	log := logging.Get(logging.CategoryPipeline)

	if chapter != snap.Chapter+1 {
		return nil, fmt.Errorf("%w: snapshot is at chapter %d, got chapter %d", ErrChapterOutOfOrder, snap.Chapter, chapter)
	}

	result := &Result{}

	// Stage 1: semantic audit of the finished chapter. The snapshot is
	// only touched after the call fully returns or the fallback is
	// chosen; a cancelled call never leaves a half-applied batch.
	var events []audit.RawEvent
	if e.auditor != nil {
		callCtx, cancel := context.WithTimeout(ctx, e.cfg.ClassifierTimeout())
		verdict, err := e.auditor.AuditChapter(callCtx, classifier.AuditRequest{
			NovelID:     snap.NovelID,
			Chapter:     chapter,
			ChapterText: chapterText,
			Threads:     classifier.Digests(snap),
		})
		cancel()
		if err != nil {
			log.Warn("chapter %d audit call failed, continuing physics-only: %v", chapter, err)
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("classifier audit failed (%v); no new events this chapter, aging still applied", err))
		} else {
			events = verdict.Events
			result.ConsistencyWarnings = verdict.ConsistencyWarnings
		}
	}

	// Stage 2: deterministic application plus physics recompute.
	updated, report := audit.Apply(snap, events, chapter, e.cfg)
	result.Snapshot = updated
	result.Report = report

	// Stage 3: plan the next chapter.
	next := chapter + 1
	result.Selection = director.Select(updated, next, e.cfg)
	result.Health = director.Health(updated, next, e.cfg)

	// Stage 4: directive narration, advisory only.
	var proposal *directive.Proposal
	if e.narrator != nil {
		callCtx, cancel := context.WithTimeout(ctx, e.cfg.ClassifierTimeout())
		p, err := e.narrator.NarrateDirective(callCtx, classifier.NarrateRequest{
			NovelID:   snap.NovelID,
			Chapter:   next,
			Selection: result.Selection,
		})
		cancel()
		if err != nil {
			log.Warn("chapter %d directive narration failed, using physics-only directive: %v", next, err)
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("directive narration failed (%v); directive assembled from physics alone", err))
		} else {
			proposal = p
		}
	}

	result.Directive = directive.Assemble(result.Selection, proposal, e.cfg)

	log.Info("chapter %d processed: version %d, %d threads, health %d",
		chapter, updated.Version, len(updated.Threads), result.Health)

	return result, nil
}

// Plan previews the selection and directive for the chapter after the
// snapshot's watermark without mutating anything. The narrator is
// consulted when attached, with the same fallback as Chapter.
func (e *Engine) Plan(ctx context.Context, snap thread.Snapshot) (*Result, error) {
	next := snap.Chapter + 1

	result := &Result{
		Snapshot:  snap,
		Selection: director.Select(snap, next, e.cfg),
		Health:    director.Health(snap, next, e.cfg),
	}

	var proposal *directive.Proposal
	if e.narrator != nil {
		callCtx, cancel := context.WithTimeout(ctx, e.cfg.ClassifierTimeout())
		p, err := e.narrator.NarrateDirective(callCtx, classifier.NarrateRequest{
			NovelID:   snap.NovelID,
			Chapter:   next,
			Selection: result.Selection,
		})
		cancel()
		if err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("directive narration failed (%v); directive assembled from physics alone", err))
		} else {
			proposal = p
		}
	}

	result.Directive = directive.Assemble(result.Selection, proposal, e.cfg)
	return result, nil
}
