// Package directive turns the director's selection into the structured,
// enforceable contract handed to prose generation. The engine never
// edits prose; this output is its only channel of influence.
package directive

import (
	"fmt"
	"strings"

	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/config"
	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/director"
	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/physics"
	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/thread"
)

// RequiredAction is what the next chapter must do with a thread.
type RequiredAction string

const (
	ActionProgress   RequiredAction = "PROGRESS"   // move the thread materially
	ActionEscalate   RequiredAction = "ESCALATE"   // raise the stakes
	ActionResolve    RequiredAction = "RESOLVE"    // pay the thread off
	ActionForeshadow RequiredAction = "FORESHADOW" // plant without advancing
	ActionTouch      RequiredAction = "TOUCH"      // keep alive with a mention
)

// ParseRequiredAction normalizes a classifier-proposed action. Unknown
// values degrade to PROGRESS.
func ParseRequiredAction(s string) RequiredAction {
	switch RequiredAction(strings.ToUpper(strings.TrimSpace(s))) {
	case ActionProgress, ActionEscalate, ActionResolve, ActionForeshadow, ActionTouch:
		return RequiredAction(strings.ToUpper(strings.TrimSpace(s)))
	}
	return ActionProgress
}

// ThreadAnchor binds one thread into the next chapter.
type ThreadAnchor struct {
	Signature       string         `json:"signature"`
	RequiredAction  RequiredAction `json:"required_action"`
	MandatoryDetail string         `json:"mandatory_detail,omitempty"`
}

// Pacing carries the chapter-level rhythm targets.
type Pacing struct {
	Intensity       string `json:"intensity"` // calm, building, intense, climactic
	WordCountTarget int    `json:"word_count_target"`
	TensionCurve    string `json:"tension_curve"`
}

// Directive is the per-chapter contract consumed by prose generation.
type Directive struct {
	ChapterNumber     int            `json:"chapter_number"`
	PrimaryGoal       string         `json:"primary_goal"`
	ThreadAnchors     []ThreadAnchor `json:"thread_anchors"`
	ForbiddenOutcomes []string       `json:"forbidden_outcomes,omitempty"`
	Pacing            Pacing         `json:"pacing"`
	Reasoning         []string       `json:"reasoning,omitempty"`
}

// Proposal is the classifier's free-form guidance, already parsed.
// Everything in it is advisory; the engine's guardrails win on conflict.
type Proposal struct {
	PrimaryGoal  string           `json:"primary_goal,omitempty"`
	Anchors      []ProposedAnchor `json:"anchors,omitempty"`
	Intensity    string           `json:"intensity,omitempty"`
	TensionCurve string           `json:"tension_curve,omitempty"`
}

// ProposedAnchor is one classifier-suggested thread binding.
type ProposedAnchor struct {
	Signature       string `json:"signature"`
	RequiredAction  string `json:"required_action"`
	MandatoryDetail string `json:"mandatory_detail,omitempty"`
}

// ActionFor maps a thread's state to the single action the next chapter
// owes it. The mapping is total over (status, horizon, urgency): every
// combination resolves to exactly one action.
func ActionFor(status thread.Status, horizon physics.HorizonState, urgency float64, cfg *config.Config) RequiredAction {
	switch status {
	case thread.StatusSeed:
		return ActionForeshadow
	case thread.StatusStalled:
		return ActionProgress
	case thread.StatusClosed, thread.StatusAbandoned:
		// Terminal threads are never selected; a mention is all a
		// flashback chapter could owe them.
		return ActionTouch
	}

	// OPEN or BLOOMING from here.
	switch horizon {
	case physics.HorizonPerfectWindow, physics.HorizonOverdue:
		return ActionResolve
	case physics.HorizonTooEarly:
		return ActionEscalate
	}

	// No horizon recorded: the thread has never bloomed.
	if urgency >= cfg.Director.EscalateUrgency {
		return ActionEscalate
	}
	if urgency < cfg.Director.TouchUrgency {
		return ActionTouch
	}
	return ActionProgress
}

// Assemble builds the chapter directive from the director's selection
// and the classifier's proposal. Engine-derived anchors always win on
// the action; the proposal contributes detail, extra anchors up to the
// budget, and pacing color. proposal may be nil (physics-only fallback).
func Assemble(sel director.Selection, proposal *Proposal, cfg *config.Config) Directive {
	d := Directive{
		ChapterNumber: sel.Chapter,
		Reasoning:     sel.Reasoning,
	}

	budget := cfg.Director.ConstraintsPerChapter
	if n := len(sel.Primary); n > budget {
		budget = n // pins already stretched the budget upstream
	}

	anchorIdx := make(map[string]int)
	resolveCount := 0
	var maxUrgency float64

	for _, c := range sel.Primary {
		action := ActionFor(c.Status, c.Horizon, c.Urgency, cfg)
		if action == ActionResolve && sel.IsForbidden(c.Signature) {
			// Belt and braces: a forbidden thread never receives a
			// RESOLVE anchor even if horizon math said otherwise.
			action = ActionEscalate
		}
		if action == ActionResolve {
			resolveCount++
		}
		if c.Urgency > maxUrgency {
			maxUrgency = c.Urgency
		}
		anchorIdx[c.Signature] = len(d.ThreadAnchors)
		d.ThreadAnchors = append(d.ThreadAnchors, ThreadAnchor{
			Signature:       c.Signature,
			RequiredAction:  action,
			MandatoryDetail: detailFor(c, action),
		})
	}

	// Merge the classifier proposal: detail for known anchors, extra
	// anchors while the budget lasts, never a forbidden resolution.
	if proposal != nil {
		for _, p := range proposal.Anchors {
			sig := strings.TrimSpace(p.Signature)
			if sig == "" {
				continue
			}
			if i, ok := anchorIdx[sig]; ok {
				if d.ThreadAnchors[i].MandatoryDetail == "" && p.MandatoryDetail != "" {
					d.ThreadAnchors[i].MandatoryDetail = p.MandatoryDetail
				}
				continue
			}
			if len(d.ThreadAnchors) >= budget {
				continue
			}
			action := ParseRequiredAction(p.RequiredAction)
			if action == ActionResolve && sel.IsForbidden(sig) {
				action = ActionEscalate
				d.Reasoning = append(d.Reasoning,
					fmt.Sprintf("%s: classifier proposed resolution before the payoff window; downgraded to escalation", sig))
			}
			anchorIdx[sig] = len(d.ThreadAnchors)
			d.ThreadAnchors = append(d.ThreadAnchors, ThreadAnchor{
				Signature:       sig,
				RequiredAction:  action,
				MandatoryDetail: p.MandatoryDetail,
			})
		}
	}

	for _, f := range sel.ForbiddenResolutions {
		d.ForbiddenOutcomes = append(d.ForbiddenOutcomes,
			fmt.Sprintf("Do not resolve %q: %s", f.Signature, f.Reason))
	}

	d.PrimaryGoal = primaryGoal(d.ThreadAnchors, proposal)
	d.Pacing = pacing(maxUrgency, resolveCount, proposal, cfg)

	return d
}

// detailFor renders the engine's own mandatory detail for an anchor.
func detailFor(c director.Candidate, action RequiredAction) string {
	switch action {
	case ActionResolve:
		return fmt.Sprintf("Pay off %q within this chapter; the window is open", c.Signature)
	case ActionEscalate:
		return fmt.Sprintf("Raise the stakes of %q without resolving it", c.Signature)
	case ActionForeshadow:
		return fmt.Sprintf("Deepen the groundwork for %q without advancing it openly", c.Signature)
	case ActionTouch:
		return fmt.Sprintf("Keep %q present with at least one concrete mention", c.Signature)
	default:
		if c.Gap > 0 {
			return fmt.Sprintf("Advance %q materially; it has been quiet for %d chapters", c.Signature, c.Gap)
		}
		return fmt.Sprintf("Advance %q materially", c.Signature)
	}
}

func primaryGoal(anchors []ThreadAnchor, proposal *Proposal) string {
	if proposal != nil && strings.TrimSpace(proposal.PrimaryGoal) != "" {
		return strings.TrimSpace(proposal.PrimaryGoal)
	}
	if len(anchors) == 0 {
		return "Maintain narrative momentum; no open threads demand attention"
	}
	a := anchors[0]
	return fmt.Sprintf("%s %q", strings.ToLower(string(a.RequiredAction)), a.Signature)
}

func pacing(maxUrgency float64, resolveCount int, proposal *Proposal, cfg *config.Config) Pacing {
	p := Pacing{WordCountTarget: cfg.Director.WordCountTarget}

	switch {
	case resolveCount > 0:
		p.Intensity = "climactic"
	case maxUrgency >= cfg.Director.EscalateUrgency:
		p.Intensity = "intense"
	case maxUrgency >= cfg.Director.TouchUrgency:
		p.Intensity = "building"
	default:
		p.Intensity = "calm"
	}

	if resolveCount > 0 {
		p.TensionCurve = "rise to a peak, then release"
	} else {
		p.TensionCurve = "steady rise"
	}

	// The proposal may color pacing but never the word budget.
	if proposal != nil {
		if v := strings.TrimSpace(proposal.Intensity); v != "" {
			p.Intensity = v
		}
		if v := strings.TrimSpace(proposal.TensionCurve); v != "" {
			p.TensionCurve = v
		}
	}

	return p
}
