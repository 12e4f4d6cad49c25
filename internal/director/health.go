package director

import (
	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/config"
	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/physics"
	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/thread"
)

// Health scores overall pacing 0..100: the karma-weighted fraction of
// non-terminal threads that are neither stalled nor past the high
// entropy line. An empty thread set is healthy by definition.
func Health(snap thread.Snapshot, currentChapter int, cfg *config.Config) int {
	var total, healthy float64
	for _, i := range snap.NonTerminal() {
		t := snap.Threads[i]
		w := float64(t.KarmaWeight)
		total += w
		if t.Status != thread.StatusStalled && t.Entropy < cfg.Physics.HighEntropy {
			healthy += w
		}
	}
	if total == 0 {
		return 100
	}
	return int(healthy / total * 100)
}

// PacingReport is the per-chapter health digest consumed by the CLI.
type PacingReport struct {
	Chapter      int            `json:"chapter"`
	Health       int            `json:"health"`
	StatusCounts map[string]int `json:"status_counts"`
	TotalDebt    float64        `json:"total_debt"`
	Overdue      []string       `json:"overdue"` // signatures past their payoff window
}

// Report summarizes the snapshot's pacing state at the given chapter.
func Report(snap thread.Snapshot, currentChapter int, cfg *config.Config) PacingReport {
	r := PacingReport{
		Chapter:      currentChapter,
		Health:       Health(snap, currentChapter, cfg),
		StatusCounts: make(map[string]int),
	}
	for i := range snap.Threads {
		t := snap.Threads[i]
		r.StatusCounts[string(t.Status)]++
		if t.Status.Terminal() {
			continue
		}
		r.TotalDebt += t.PayoffDebt
		if physics.Horizon(t, currentChapter, cfg) == physics.HorizonOverdue {
			r.Overdue = append(r.Overdue, t.Signature)
		}
	}
	return r
}
