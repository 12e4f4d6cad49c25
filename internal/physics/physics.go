// Package physics implements the pure scoring and lifecycle functions of
// the thread engine: urgency, payoff debt, entropy, automatic status
// transitions, and the payoff horizon. Every function here is
// deterministic and free of I/O; threads go in and come out by value.
package physics

import (
	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/config"
	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/thread"
)

// UrgencyCeiling bounds urgency so ranking stays stable no matter how
// much debt and entropy a neglected thread piles up.
const UrgencyCeiling = 1000.0

// =============================================================================
// URGENCY
// =============================================================================

// Urgency computes the priority score of a thread at the given chapter.
// It grows with karma weight, payoff debt, entropy, and chapters since
// the last mention; positive velocity (recent real progress) relieves it.
// Terminal threads score zero. The result is clamped to 0..UrgencyCeiling.
//
// A pinned thread does not score higher: the pin is honored by the
// director's selection, not by the number.
func Urgency(t thread.Thread, currentChapter int, cfg *config.Config) float64 {
	if t.Status.Terminal() {
		return 0
	}

	p := cfg.Physics
	score := float64(t.KarmaWeight)*p.KarmaFactor +
		t.PayoffDebt*p.DebtFactor +
		t.Entropy*p.EntropyFactor +
		float64(t.ChaptersSinceMention(currentChapter))*p.NeglectFactor

	if t.Velocity > 0 {
		score -= t.Velocity * p.VelocityBrake
	}

	if score < 0 {
		return 0
	}
	if score > UrgencyCeiling {
		return UrgencyCeiling
	}
	return score
}

// bloomTrigger maps the karma-scale bloom threshold onto the urgency
// scale. Karma runs 1..100, urgency 0..1000.
func bloomTrigger(cfg *config.Config) float64 {
	return float64(cfg.Physics.BloomThresholdKarma) * 10
}

// =============================================================================
// DEBT
// =============================================================================

// ApplyDebt returns the thread with payoff debt adjusted for the kind of
// touch it just received. A mention without material change (NONE/INFO)
// grows debt proportionally to karma weight: the bigger the promise, the
// faster unpaid expectation accrues. An escalation pays part of it down;
// a resolution clears it.
func ApplyDebt(t thread.Thread, progress thread.ProgressType, cfg *config.Config) thread.Thread {
	p := cfg.Physics
	switch progress {
	case thread.ProgressEscalation:
		t.PayoffDebt *= p.DebtDecayRate
	case thread.ProgressResolution:
		t.PayoffDebt = 0
	default: // NONE, INFO
		t.PayoffDebt += float64(t.KarmaWeight) * p.DebtGrowthRate
	}
	if t.PayoffDebt < 0 {
		t.PayoffDebt = 0
	}
	return t
}

// =============================================================================
// ENTROPY
// =============================================================================

// ApplyEntropy returns the thread with its staleness measure updated.
// Without real progress entropy grows with the neglect gap; real
// progress (ESCALATION/RESOLUTION) resets it sharply.
func ApplyEntropy(t thread.Thread, currentChapter int, hadRealProgress bool, cfg *config.Config) thread.Thread {
	if hadRealProgress {
		t.Entropy = 0
		return t
	}
	gap := t.ChaptersSinceMention(currentChapter)
	if gap < 1 {
		gap = 1
	}
	t.Entropy += cfg.Physics.EntropyPerChapter * float64(gap)
	return t
}

// =============================================================================
// VELOCITY
// =============================================================================

// velocityGain is the per-touch contribution of each progress type.
var velocityGain = map[thread.ProgressType]float64{
	thread.ProgressResolution: 3,
	thread.ProgressEscalation: 2,
	thread.ProgressInfo:       -0.5,
	thread.ProgressNone:       -1,
}

// ApplyVelocity folds one touch into the thread's progress rate with an
// exponential half-life, so only recent chapters matter.
func ApplyVelocity(t thread.Thread, progress thread.ProgressType) thread.Thread {
	t.Velocity = t.Velocity*0.5 + velocityGain[progress]
	return t
}

// =============================================================================
// AUTOMATIC STATUS TRANSITIONS
// =============================================================================

// NextStatus evaluates the automatic transition rules for a thread at
// the given chapter. It never returns CLOSED or ABANDONED: all terminal
// transitions are explicit-only and flow through the audit applier or
// the author's manual controls.
func NextStatus(t thread.Thread, currentChapter int, cfg *config.Config) thread.Status {
	p := cfg.Physics

	switch t.Status {
	case thread.StatusClosed, thread.StatusAbandoned:
		return t.Status

	case thread.StatusSeed:
		// A seed sprouts on its first escalation or by simply aging out
		// of the foreshadowing phase.
		if t.LastProgressType == thread.ProgressEscalation {
			return thread.StatusOpen
		}
		if currentChapter-t.FirstChapter >= p.SeedPromotionChapters {
			return thread.StatusOpen
		}
		return thread.StatusSeed

	case thread.StatusOpen:
		if t.ChaptersSinceMention(currentChapter) >= p.StallThresholdChapters && !t.DirectorAttentionForced {
			return thread.StatusStalled
		}
		if Urgency(t, currentChapter, cfg) >= bloomTrigger(cfg) {
			return thread.StatusBlooming
		}
		return thread.StatusOpen

	case thread.StatusBlooming:
		if t.ChaptersSinceMention(currentChapter) >= p.StallThresholdChapters && !t.DirectorAttentionForced {
			return thread.StatusStalled
		}
		return thread.StatusBlooming

	case thread.StatusStalled:
		// Any fresh mention recovers a stalled thread.
		if t.LastMentionedChapter == currentChapter {
			return thread.StatusOpen
		}
		return thread.StatusStalled
	}

	return t.Status
}

// Transition applies a status change to the thread, recording the
// blooming chapter the first time it enters BLOOMING. The blooming
// anchor is never overwritten: the payoff window stays pinned to the
// first bloom even if the thread later stalls and recovers.
func Transition(t thread.Thread, next thread.Status, currentChapter int) thread.Thread {
	if next == thread.StatusBlooming && t.BloomingChapter == 0 {
		t.BloomingChapter = currentChapter
	}
	t.Status = next
	return t
}

// =============================================================================
// PAYOFF HORIZON
// =============================================================================

// HorizonState places a blooming thread relative to its payoff window.
type HorizonState string

const (
	// HorizonNone means the thread has never bloomed, so no window exists.
	HorizonNone HorizonState = "none"
	// HorizonTooEarly means resolving now would collapse a slow build.
	HorizonTooEarly HorizonState = "too_early"
	// HorizonPerfectWindow means resolution is narratively earned.
	HorizonPerfectWindow HorizonState = "perfect_window"
	// HorizonOverdue means the window has passed; resolution is permitted
	// and increasingly urgent.
	HorizonOverdue HorizonState = "overdue"
)

// Horizon places the thread relative to its category's payoff window
// [bloomingChapter+minDelay, bloomingChapter+maxDelay]. Threads that
// never bloomed have no horizon.
func Horizon(t thread.Thread, currentChapter int, cfg *config.Config) HorizonState {
	if t.BloomingChapter == 0 {
		return HorizonNone
	}
	w := cfg.HorizonFor(string(t.Category))
	switch {
	case currentChapter < t.BloomingChapter+w.MinDelay:
		return HorizonTooEarly
	case currentChapter <= t.BloomingChapter+w.MaxDelay:
		return HorizonPerfectWindow
	default:
		return HorizonOverdue
	}
}

// =============================================================================
// PER-CHAPTER AGING
// =============================================================================

// Age advances an untouched, non-terminal thread by one chapter: entropy
// accrues, velocity decays, automatic transitions fire, and the stored
// urgency is refreshed. Touched threads take the ApplyDebt/ApplyEntropy
// path in the audit applier instead.
func Age(t thread.Thread, currentChapter int, cfg *config.Config) thread.Thread {
	if t.Status.Terminal() {
		return t
	}

	t = ApplyEntropy(t, currentChapter, false, cfg)
	t.Velocity *= 0.5

	next := NextStatus(t, currentChapter, cfg)
	if t.Status.CanTransition(next) {
		t = Transition(t, next, currentChapter)
	}

	t.UrgencyScore = Urgency(t, currentChapter, cfg)
	return t
}
