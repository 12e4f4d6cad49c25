package directive

import (
	"strings"
	"testing"

	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/config"
	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/director"
	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/physics"
	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/thread"
)

// =============================================================================
// ACTION MAPPING
// =============================================================================

func TestActionFor_TotalMapping(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()

	tests := []struct {
		name    string
		status  thread.Status
		horizon physics.HorizonState
		urgency float64
		want    RequiredAction
	}{
		{"seed foreshadows regardless of horizon", thread.StatusSeed, physics.HorizonPerfectWindow, 900, ActionForeshadow},
		{"stalled needs real progress", thread.StatusStalled, physics.HorizonNone, 50, ActionProgress},
		{"closed gets at most a mention", thread.StatusClosed, physics.HorizonNone, 999, ActionTouch},
		{"abandoned gets at most a mention", thread.StatusAbandoned, physics.HorizonNone, 999, ActionTouch},
		{"open in window resolves", thread.StatusOpen, physics.HorizonPerfectWindow, 100, ActionResolve},
		{"blooming overdue resolves", thread.StatusBlooming, physics.HorizonOverdue, 100, ActionResolve},
		{"open too early escalates", thread.StatusOpen, physics.HorizonTooEarly, 100, ActionEscalate},
		{"open hot without horizon escalates", thread.StatusOpen, physics.HorizonNone, 600, ActionEscalate},
		{"open cold without horizon touches", thread.StatusOpen, physics.HorizonNone, 150, ActionTouch},
		{"open mid-band progresses", thread.StatusOpen, physics.HorizonNone, 350, ActionProgress},
		{"blooming mid-band progresses", thread.StatusBlooming, physics.HorizonNone, 350, ActionProgress},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ActionFor(tt.status, tt.horizon, tt.urgency, cfg); got != tt.want {
				t.Errorf("ActionFor(%s, %s, %.0f) = %s, want %s", tt.status, tt.horizon, tt.urgency, got, tt.want)
			}
		})
	}
}

func TestParseRequiredAction_UnknownDegrades(t *testing.T) {
	t.Parallel()

	if got := ParseRequiredAction("  resolve "); got != ActionResolve {
		t.Errorf("got %s, want RESOLVE", got)
	}
	if got := ParseRequiredAction("DEMOLISH"); got != ActionProgress {
		t.Errorf("got %s, want PROGRESS fallback", got)
	}
}

// =============================================================================
// ASSEMBLY
// =============================================================================

func selection() director.Selection {
	return director.Selection{
		Chapter: 12,
		Primary: []director.Candidate{
			{Signature: "jade_bell_curse", Status: thread.StatusBlooming, Horizon: physics.HorizonPerfectWindow, Urgency: 720, Karma: 80},
			{Signature: "sect_betrayal", Status: thread.StatusOpen, Horizon: physics.HorizonNone, Urgency: 400, Karma: 70, Gap: 3},
			{Signature: "hidden_seed", Status: thread.StatusSeed, Horizon: physics.HorizonNone, Urgency: 120, Karma: 20},
		},
		ForbiddenResolutions: []director.Forbidden{
			{Signature: "sealed_tomb", OpensAt: 15, Reason: "payoff window opens at chapter 15"},
		},
		Reasoning: []string{"jade_bell_curse: urgency 720"},
	}
}

func TestAssemble_EngineAnchors(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	d := Assemble(selection(), nil, cfg)

	if d.ChapterNumber != 12 {
		t.Errorf("chapter = %d, want 12", d.ChapterNumber)
	}
	if len(d.ThreadAnchors) != 3 {
		t.Fatalf("anchors = %d, want 3", len(d.ThreadAnchors))
	}

	wantActions := map[string]RequiredAction{
		"jade_bell_curse": ActionResolve,
		"sect_betrayal":   ActionProgress,
		"hidden_seed":     ActionForeshadow,
	}
	for _, a := range d.ThreadAnchors {
		if a.RequiredAction != wantActions[a.Signature] {
			t.Errorf("%s: action = %s, want %s", a.Signature, a.RequiredAction, wantActions[a.Signature])
		}
		if a.MandatoryDetail == "" {
			t.Errorf("%s: empty mandatory detail", a.Signature)
		}
	}

	if len(d.ForbiddenOutcomes) != 1 || !strings.Contains(d.ForbiddenOutcomes[0], "sealed_tomb") {
		t.Errorf("forbidden outcomes = %v", d.ForbiddenOutcomes)
	}
	if d.PrimaryGoal == "" {
		t.Error("empty primary goal")
	}
}

func TestAssemble_ForbiddenResolveDowngraded(t *testing.T) {
	t.Parallel()

	// Even a primary anchor never receives RESOLVE while its window is
	// shut, whatever the horizon math said.
	cfg := config.DefaultConfig()
	sel := director.Selection{
		Chapter: 8,
		Primary: []director.Candidate{
			{Signature: "sealed_tomb", Status: thread.StatusBlooming, Horizon: physics.HorizonPerfectWindow, Urgency: 800},
		},
		ForbiddenResolutions: []director.Forbidden{
			{Signature: "sealed_tomb", OpensAt: 15, Reason: "too early"},
		},
	}

	d := Assemble(sel, nil, cfg)
	if d.ThreadAnchors[0].RequiredAction != ActionEscalate {
		t.Errorf("action = %s, want ESCALATE", d.ThreadAnchors[0].RequiredAction)
	}
}

func TestAssemble_ProposalMerging(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Director.ConstraintsPerChapter = 4

	prop := &Proposal{
		PrimaryGoal: "The bell shatters at the tournament's climax",
		Anchors: []ProposedAnchor{
			// Known anchor: contributes detail only, never flips the action.
			{Signature: "jade_bell_curse", RequiredAction: "TOUCH", MandatoryDetail: "the bell cracks as Wei Lin bleeds"},
			// New anchor: fills the remaining budget slot.
			{Signature: "rival_romance", RequiredAction: "PROGRESS", MandatoryDetail: "a stolen glance"},
			// Over budget: silently dropped.
			{Signature: "overflow_thread", RequiredAction: "PROGRESS"},
			// Forbidden resolve proposal: downgraded with a reasoning note.
			{Signature: "sealed_tomb", RequiredAction: "RESOLVE"},
		},
		Intensity:    "intense",
		TensionCurve: "slow burn",
	}

	d := Assemble(selection(), prop, cfg)

	if len(d.ThreadAnchors) != 4 {
		t.Fatalf("anchors = %d, want 4", len(d.ThreadAnchors))
	}

	bell := d.ThreadAnchors[0]
	if bell.RequiredAction != ActionResolve {
		t.Errorf("proposal overrode the engine action: %s", bell.RequiredAction)
	}
	if bell.MandatoryDetail == "the bell cracks as Wei Lin bleeds" {
		t.Error("proposal detail replaced engine detail for a resolve anchor")
	}

	if d.ThreadAnchors[3].Signature != "rival_romance" {
		t.Errorf("fourth anchor = %s, want rival_romance", d.ThreadAnchors[3].Signature)
	}

	for _, a := range d.ThreadAnchors {
		if a.Signature == "overflow_thread" {
			t.Error("over-budget proposal anchor admitted")
		}
		if a.Signature == "sealed_tomb" {
			t.Error("forbidden proposal anchor admitted past the budget")
		}
	}

	if d.PrimaryGoal != "The bell shatters at the tournament's climax" {
		t.Errorf("primary goal = %q", d.PrimaryGoal)
	}
	if d.Pacing.Intensity != "intense" || d.Pacing.TensionCurve != "slow burn" {
		t.Errorf("pacing = %+v, proposal color not applied", d.Pacing)
	}
	if d.Pacing.WordCountTarget != cfg.Director.WordCountTarget {
		t.Error("proposal must never change the word budget")
	}
}

func TestAssemble_ProposalFillsMissingDetail(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	sel := selection()

	prop := &Proposal{Anchors: []ProposedAnchor{
		{Signature: "sect_betrayal", RequiredAction: "PROGRESS", MandatoryDetail: "the elder's seal is found in the wrong hands"},
	}}

	d := Assemble(sel, prop, cfg)
	for _, a := range d.ThreadAnchors {
		if a.Signature == "sect_betrayal" && a.MandatoryDetail == "" {
			t.Error("known anchor left without detail")
		}
	}
}

func TestAssemble_DuplicateProposalAnchorsDeduped(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Director.ConstraintsPerChapter = 6

	prop := &Proposal{Anchors: []ProposedAnchor{
		{Signature: "rival_romance", RequiredAction: "PROGRESS"},
		{Signature: "rival_romance", RequiredAction: "ESCALATE"},
	}}

	d := Assemble(selection(), prop, cfg)

	count := 0
	for _, a := range d.ThreadAnchors {
		if a.Signature == "rival_romance" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("rival_romance anchors = %d, want 1", count)
	}
}

func TestAssemble_EmptySelection(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	d := Assemble(director.Selection{Chapter: 1}, nil, cfg)

	if len(d.ThreadAnchors) != 0 {
		t.Errorf("anchors = %v", d.ThreadAnchors)
	}
	if d.PrimaryGoal == "" {
		t.Error("empty selection still needs a primary goal")
	}
	if d.Pacing.Intensity != "calm" {
		t.Errorf("intensity = %s, want calm", d.Pacing.Intensity)
	}
}

// =============================================================================
// PACING
// =============================================================================

func TestAssemble_PacingBands(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()

	tests := []struct {
		name    string
		primary []director.Candidate
		want    string
	}{
		{
			"resolution present is climactic",
			[]director.Candidate{{Signature: "a", Status: thread.StatusBlooming, Horizon: physics.HorizonOverdue, Urgency: 300}},
			"climactic",
		},
		{
			"hot chapter without payoff is intense",
			[]director.Candidate{{Signature: "a", Status: thread.StatusOpen, Horizon: physics.HorizonTooEarly, Urgency: 700}},
			"intense",
		},
		{
			"mid urgency is building",
			[]director.Candidate{{Signature: "a", Status: thread.StatusOpen, Horizon: physics.HorizonNone, Urgency: 300}},
			"building",
		},
		{
			"low urgency is calm",
			[]director.Candidate{{Signature: "a", Status: thread.StatusOpen, Horizon: physics.HorizonNone, Urgency: 100}},
			"calm",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := Assemble(director.Selection{Chapter: 5, Primary: tt.primary}, nil, cfg)
			if d.Pacing.Intensity != tt.want {
				t.Errorf("intensity = %s, want %s", d.Pacing.Intensity, tt.want)
			}
			if d.Pacing.WordCountTarget != cfg.Director.WordCountTarget {
				t.Error("word count target not carried")
			}
		})
	}
}
