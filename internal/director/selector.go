// Package director implements per-chapter thread selection: given the
// full thread set it decides which threads the next chapter must address
// under a fixed constraint budget, which threads are forbidden from
// resolving, and which stalled threads deserve a visibility warning.
package director

import (
	"fmt"
	"sort"

	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/config"
	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/logging"
	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/physics"
	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/thread"
)

// Candidate is one thread as the director sees it: identity plus the
// freshly recomputed ranking inputs.
type Candidate struct {
	Signature string               `json:"signature"`
	Title     string               `json:"title"`
	Category  thread.Category      `json:"category"`
	Status    thread.Status        `json:"status"`
	Karma     int                  `json:"karma"`
	Urgency   float64              `json:"urgency"`
	Gap       int                  `json:"gap"` // chapters since last mention
	Pinned    bool                 `json:"pinned"`
	Horizon   physics.HorizonState `json:"horizon"`
}

// Forbidden marks a thread whose payoff window has not opened yet.
type Forbidden struct {
	Signature string `json:"signature"`
	OpensAt   int    `json:"opens_at"` // first chapter resolution is earned
	Reason    string `json:"reason"`
}

// Selection is the director's plan for one upcoming chapter.
type Selection struct {
	Chapter              int         `json:"chapter"` // the chapter being planned
	Primary              []Candidate `json:"primary"`
	ForbiddenResolutions []Forbidden `json:"forbidden_resolutions"`
	StaleWarnings        []Candidate `json:"stale_warnings"`
	Reasoning            []string    `json:"reasoning"`
}

// Select plans the given chapter from the snapshot. Ranking is by
// recomputed urgency, ties broken by karma weight, then by longest
// neglect, then by signature so the result is deterministic. Pinned
// threads are always primary; the constraint budget is a floor, not a
// ceiling, for pins.
func Select(snap thread.Snapshot, currentChapter int, cfg *config.Config) Selection {
	log := logging.Get(logging.CategoryDirector)

	sel := Selection{Chapter: currentChapter}

	candidates := make([]Candidate, 0, len(snap.Threads))
	for _, i := range snap.NonTerminal() {
		t := snap.Threads[i]
		candidates = append(candidates, Candidate{
			Signature: t.Signature,
			Title:     t.Title,
			Category:  t.Category,
			Status:    t.Status,
			Karma:     t.KarmaWeight,
			Urgency:   physics.Urgency(t, currentChapter, cfg),
			Gap:       t.ChaptersSinceMention(currentChapter),
			Pinned:    t.DirectorAttentionForced,
			Horizon:   physics.Horizon(t, currentChapter, cfg),
		})
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		ca, cb := candidates[a], candidates[b]
		if ca.Urgency != cb.Urgency {
			return ca.Urgency > cb.Urgency
		}
		if ca.Karma != cb.Karma {
			return ca.Karma > cb.Karma
		}
		if ca.Gap != cb.Gap {
			return ca.Gap > cb.Gap
		}
		return ca.Signature < cb.Signature
	})

	// Pins first, regardless of rank.
	budget := cfg.Director.ConstraintsPerChapter
	taken := make(map[string]bool)
	for _, c := range candidates {
		if !c.Pinned {
			continue
		}
		sel.Primary = append(sel.Primary, c)
		taken[c.Signature] = true
		sel.Reasoning = append(sel.Reasoning,
			fmt.Sprintf("%s: pinned by the author, selected regardless of rank (urgency %.0f)", c.Signature, c.Urgency))
	}
	if len(sel.Primary) > budget {
		sel.Reasoning = append(sel.Reasoning,
			fmt.Sprintf("pins exceed the per-chapter budget of %d; budget raised to pin count %d", budget, len(sel.Primary)))
		budget = len(sel.Primary)
	}

	// Fill the remaining budget by rank.
	for _, c := range candidates {
		if len(sel.Primary) >= budget {
			break
		}
		if taken[c.Signature] {
			continue
		}
		sel.Primary = append(sel.Primary, c)
		taken[c.Signature] = true
		sel.Reasoning = append(sel.Reasoning,
			fmt.Sprintf("%s: ranked in by urgency %.0f (karma %d, %d chapters since mention)", c.Signature, c.Urgency, c.Karma, c.Gap))
	}

	// Guard every slow build, selected or not: a thread before its
	// payoff window must not resolve even if the classifier tries.
	for _, c := range candidates {
		if c.Horizon != physics.HorizonTooEarly {
			continue
		}
		i := snap.FindBySignature(c.Signature)
		w := cfg.HorizonFor(string(c.Category))
		opensAt := snap.Threads[i].BloomingChapter + w.MinDelay
		sel.ForbiddenResolutions = append(sel.ForbiddenResolutions, Forbidden{
			Signature: c.Signature,
			OpensAt:   opensAt,
			Reason:    fmt.Sprintf("payoff window opens at chapter %d; resolving now would collapse the build-up", opensAt),
		})
	}

	// Surface stalled threads that did not make the cut, so neglect
	// never becomes invisible.
	for _, c := range candidates {
		if c.Status == thread.StatusStalled && !taken[c.Signature] {
			sel.StaleWarnings = append(sel.StaleWarnings, c)
			sel.Reasoning = append(sel.Reasoning,
				fmt.Sprintf("%s: stalled for %d chapters, not selected this chapter", c.Signature, c.Gap))
		}
	}

	log.Info("chapter %d: %d primary, %d forbidden, %d stale of %d candidates",
		currentChapter, len(sel.Primary), len(sel.ForbiddenResolutions), len(sel.StaleWarnings), len(candidates))

	return sel
}

// PinnedCount returns how many of the selection's primary threads are pins.
func (s Selection) PinnedCount() int {
	n := 0
	for _, c := range s.Primary {
		if c.Pinned {
			n++
		}
	}
	return n
}

// IsForbidden reports whether the signature is in the forbidden set.
func (s Selection) IsForbidden(signature string) bool {
	for _, f := range s.ForbiddenResolutions {
		if f.Signature == signature {
			return true
		}
	}
	return false
}
