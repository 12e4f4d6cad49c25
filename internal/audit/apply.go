package audit

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/config"
	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/logging"
	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/physics"
	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/thread"
)

// Report is the outcome of applying one chapter's event batch. All soft
// failures surface here; Apply itself never errors on classifier noise.
type Report struct {
	Chapter        int      `json:"chapter"`
	Created        []string `json:"created,omitempty"`
	Updated        []string `json:"updated,omitempty"`
	Resolved       []string `json:"resolved,omitempty"`
	Stalled        []string `json:"stalled,omitempty"`
	DroppedCreates []string `json:"dropped_creates,omitempty"`
	Warnings       []string `json:"warnings,omitempty"`
}

func (r *Report) warnf(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Apply folds a batch of classifier events for the given chapter into
// the snapshot and then ages every untouched thread by one chapter.
// Mutation is all-or-nothing per batch at the caller's discretion: the
// input snapshot is never modified, the updated one is returned.
//
// Callers must feed chapters in order, exactly once each; the engine
// keeps no idempotency key and re-applying a chapter double-counts.
func Apply(snap thread.Snapshot, events []RawEvent, chapter int, cfg *config.Config) (thread.Snapshot, Report) {
	log := logging.Get(logging.CategoryAudit)

	out := snap.Clone()
	report := Report{Chapter: chapter}
	now := time.Now()

	createsAccepted := 0
	touched := make(map[string]bool)

	for _, raw := range events {
		e := Normalize(raw)
		if e.Signature == "" {
			report.warnf("event with empty signature dropped (action %q)", raw.Action)
			continue
		}

		idx := out.FindBySignature(e.Signature)

		// Creation is idempotent by signature, and an update for a
		// thread we have never seen is a creation the classifier
		// derived from text before we did.
		action := e.Action
		if action == ActionCreate && idx >= 0 {
			action = ActionUpdate
		}
		if action == ActionUpdate && idx < 0 {
			action = ActionCreate
			report.warnf("update for unknown thread %q treated as create", e.Signature)
		}

		switch action {
		case ActionCreate:
			if createsAccepted >= cfg.Audit.MaxNewThreadsPerChapter {
				report.DroppedCreates = append(report.DroppedCreates, e.Signature)
				report.warnf("create for %q dropped: chapter budget of %d new threads exhausted", e.Signature, cfg.Audit.MaxNewThreadsPerChapter)
				continue
			}
			out.Threads = append(out.Threads, newThread(e, out.NovelID, chapter, now, cfg))
			createsAccepted++
			touched[e.Signature] = true
			report.Created = append(report.Created, e.Signature)

		case ActionUpdate:
			t := &out.Threads[idx]
			if t.Status.Terminal() {
				report.warnf("update for %q ignored: thread is %s", e.Signature, t.Status)
				continue
			}
			applyTouch(t, e, chapter, now, cfg)
			touched[e.Signature] = true
			report.Updated = append(report.Updated, e.Signature)

		case ActionResolve:
			if idx < 0 {
				report.warnf("resolve for unknown thread %q ignored", e.Signature)
				continue
			}
			t := &out.Threads[idx]
			if t.Status.Terminal() {
				report.warnf("resolve for %q ignored: thread is already %s", e.Signature, t.Status)
				continue
			}
			if t.ResolutionCriteria != "" && !addressesCriteria(e.Justification) {
				if cfg.Resolution.HardBlockUnmetCriteria {
					report.warnf("resolve for %q blocked: justification does not address resolution criteria %q; applied as update", e.Signature, t.ResolutionCriteria)
					e.Progress = thread.ProgressEscalation
					applyTouch(t, e, chapter, now, cfg)
					touched[e.Signature] = true
					report.Updated = append(report.Updated, e.Signature)
					continue
				}
				report.warnf("resolve for %q applied, but justification does not address resolution criteria %q", e.Signature, t.ResolutionCriteria)
			}
			applyTouch(t, e, chapter, now, cfg)
			*t = physics.Transition(*t, thread.StatusClosed, chapter)
			t.UrgencyScore = 0
			touched[e.Signature] = true
			report.Resolved = append(report.Resolved, e.Signature)

		case ActionStall:
			if idx < 0 {
				report.warnf("stall for unknown thread %q ignored", e.Signature)
				continue
			}
			t := &out.Threads[idx]
			if t.Status.Terminal() {
				report.warnf("stall for %q ignored: thread is %s", e.Signature, t.Status)
				continue
			}
			// A deliberate pause, distinct from organic staleness: the
			// thread is mentioned but explicitly shelved.
			mergeMention(t, e, chapter, now)
			*t = physics.ApplyDebt(*t, e.Progress, cfg)
			*t = physics.Transition(*t, thread.StatusStalled, chapter)
			t.UrgencyScore = physics.Urgency(*t, chapter, cfg)
			touched[e.Signature] = true
			report.Stalled = append(report.Stalled, e.Signature)
		}
	}

	// Everything the chapter did not touch ages by one chapter.
	for _, i := range out.NonTerminal() {
		if touched[out.Threads[i].Signature] {
			continue
		}
		out.Threads[i] = physics.Age(out.Threads[i], chapter, cfg)
	}

	out.Chapter = chapter
	out.Version++

	log.Info("chapter %d: %d created, %d updated, %d resolved, %d stalled, %d dropped, %d warnings",
		chapter, len(report.Created), len(report.Updated), len(report.Resolved),
		len(report.Stalled), len(report.DroppedCreates), len(report.Warnings))

	return out, report
}

// newThread builds a thread from a CREATE event. New threads start in
// SEED for the SEED tier and OPEN otherwise, carrying the category's
// base karma with zero debt and entropy.
func newThread(e Event, novelID string, chapter int, now time.Time, cfg *config.Config) thread.Thread {
	status := thread.StatusOpen
	if e.Category == thread.CategorySeed {
		status = thread.StatusSeed
	}

	t := thread.Thread{
		ID:                   uuid.NewString(),
		NovelID:              novelID,
		Signature:            e.Signature,
		Title:                e.Title,
		Category:             e.Category,
		Status:               status,
		KarmaWeight:          e.Category.BaseKarma(),
		FirstChapter:         chapter,
		LastMentionedChapter: chapter,
		MentionCount:         1,
		LastProgressType:     e.Progress,
		ResolutionCriteria:   e.ResolutionCriteria,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if e.Progress.Real() {
		t.ProgressCount = 1
	}
	t.AddParticipants(e.Participants)
	t.AppendSummary(chapter, e.SummaryDelta)
	t = physics.ApplyVelocity(t, e.Progress)
	t.UrgencyScore = physics.Urgency(t, chapter, cfg)
	return t
}

// mergeMention folds the bookkeeping part of a touch into the thread:
// history, participants, counters, and the mention watermark.
func mergeMention(t *thread.Thread, e Event, chapter int, now time.Time) {
	t.AppendSummary(chapter, e.SummaryDelta)
	t.AddParticipants(e.Participants)
	t.MentionCount++
	if e.Progress.Real() {
		t.ProgressCount++
	}
	if t.ResolutionCriteria == "" && e.ResolutionCriteria != "" {
		t.ResolutionCriteria = e.ResolutionCriteria
	}
	if t.Title == "" && e.Title != "" {
		t.Title = e.Title
	}
	t.UpdatedAt = now
}

// applyTouch runs the full update path for a mentioned thread: merge,
// physics, automatic transitions, urgency refresh. Entropy is applied
// before the mention watermark moves because its growth depends on the
// neglect gap being closed by this touch.
func applyTouch(t *thread.Thread, e Event, chapter int, now time.Time, cfg *config.Config) {
	mergeMention(t, e, chapter, now)

	*t = physics.ApplyDebt(*t, e.Progress, cfg)
	*t = physics.ApplyEntropy(*t, chapter, e.Progress.Real(), cfg)
	*t = physics.ApplyVelocity(*t, e.Progress)

	// Category promotion: the classifier may recognize that a thread
	// outgrew its tier. Demotion never happens silently.
	if e.Category.Outranks(t.Category) {
		t.Category = e.Category
		if base := e.Category.BaseKarma(); base > t.KarmaWeight {
			t.KarmaWeight = thread.ClampKarma(base)
		}
	}

	t.LastMentionedChapter = chapter
	t.LastProgressType = e.Progress

	next := physics.NextStatus(*t, chapter, cfg)
	if t.Status.CanTransition(next) {
		*t = physics.Transition(*t, next, chapter)
	}

	t.UrgencyScore = physics.Urgency(*t, chapter, cfg)
}
