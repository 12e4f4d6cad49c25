package thread

import (
	"fmt"
	"time"
)

// Snapshot is the full thread set for one novel at a point in time.
// The engine is snapshot-in/snapshot-out: each pipeline stage takes a
// snapshot by value and returns an updated copy; callers own persistence
// between chapters. Chapter is the watermark of the last chapter whose
// audit has been applied.
type Snapshot struct {
	NovelID string   `json:"novel_id"`
	Version int      `json:"version"`
	Chapter int      `json:"chapter"`
	Threads []Thread `json:"threads"`
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	c := s
	c.Threads = make([]Thread, len(s.Threads))
	for i := range s.Threads {
		c.Threads[i] = s.Threads[i].Clone()
	}
	return c
}

// FindBySignature returns the index of the non-ABANDONED thread carrying
// the given signature, or -1. Abandoned threads release their signature
// so a new thread may legitimately reuse it.
func (s Snapshot) FindBySignature(signature string) int {
	for i := range s.Threads {
		if s.Threads[i].Signature == signature && s.Threads[i].Status != StatusAbandoned {
			return i
		}
	}
	return -1
}

// FindByID returns the index of the thread with the given ID, or -1.
func (s Snapshot) FindByID(id string) int {
	for i := range s.Threads {
		if s.Threads[i].ID == id {
			return i
		}
	}
	return -1
}

// NonTerminal returns the indices of threads still in play.
func (s Snapshot) NonTerminal() []int {
	var out []int
	for i := range s.Threads {
		if !s.Threads[i].Status.Terminal() {
			out = append(out, i)
		}
	}
	return out
}

// =============================================================================
// MANUAL DIRECTOR CONTROLS
// =============================================================================
//
// These are author-facing overrides, applied outside the audit pipeline.
// They operate on a clone and return it, keeping value semantics.

// SetPin sets or clears directorAttentionForced on the thread with the
// given signature.
func (s Snapshot) SetPin(signature string, pinned bool) (Snapshot, error) {
	c := s.Clone()
	i := c.FindBySignature(signature)
	if i < 0 {
		return s, fmt.Errorf("thread %q not found", signature)
	}
	t := &c.Threads[i]
	if t.Status.Terminal() {
		return s, fmt.Errorf("thread %q is %s and cannot be pinned", signature, t.Status)
	}
	t.DirectorAttentionForced = pinned
	t.UpdatedAt = time.Now()
	c.Version++
	return c, nil
}

// BoostKarma raises the karma weight of the thread with the given
// signature. Karma never drops through this path and stays within 1..100.
func (s Snapshot) BoostKarma(signature string, delta int) (Snapshot, error) {
	if delta < 0 {
		return s, fmt.Errorf("karma boost must be positive, got %d", delta)
	}
	c := s.Clone()
	i := c.FindBySignature(signature)
	if i < 0 {
		return s, fmt.Errorf("thread %q not found", signature)
	}
	t := &c.Threads[i]
	if t.Status.Terminal() {
		return s, fmt.Errorf("thread %q is %s and cannot be boosted", signature, t.Status)
	}
	t.KarmaWeight = ClampKarma(t.KarmaWeight + delta)
	t.UpdatedAt = time.Now()
	c.Version++
	return c, nil
}

// Abandon marks the thread with the given signature as intentionally
// abandoned. This is the only path into ABANDONED: the engine never
// abandons a thread on its own.
func (s Snapshot) Abandon(signature, reason string) (Snapshot, error) {
	c := s.Clone()
	i := c.FindBySignature(signature)
	if i < 0 {
		return s, fmt.Errorf("thread %q not found", signature)
	}
	t := &c.Threads[i]
	if t.Status.Terminal() {
		return s, fmt.Errorf("thread %q is already %s", signature, t.Status)
	}
	t.Status = StatusAbandoned
	t.IntentionalAbandonment = true
	t.AbandonmentReason = reason
	t.DirectorAttentionForced = false
	t.UpdatedAt = time.Now()
	c.Version++
	return c, nil
}
