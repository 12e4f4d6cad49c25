package thread

import (
	"testing"
)

// =============================================================================
// ENUM NORMALIZATION TESTS
// =============================================================================

func TestParseCategory_UnknownFallsBackToMinor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Category
	}{
		{"SOVEREIGN", CategorySovereign},
		{"MAJOR", CategoryMajor},
		{"MINOR", CategoryMinor},
		{"SEED", CategorySeed},
		{"weird_value", CategoryMinor},
		{"", CategoryMinor},
	}

	for _, tt := range tests {
		if got := ParseCategory(tt.in); got != tt.want {
			t.Errorf("ParseCategory(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseProgressType_UnknownFallsBackToInfo(t *testing.T) {
	t.Parallel()

	if got := ParseProgressType("EXPLOSION"); got != ProgressInfo {
		t.Errorf("ParseProgressType(EXPLOSION) = %v, want INFO", got)
	}
	if got := ParseProgressType("RESOLUTION"); got != ProgressResolution {
		t.Errorf("ParseProgressType(RESOLUTION) = %v, want RESOLUTION", got)
	}
}

func TestCategoryBaseKarma(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cat  Category
		want int
	}{
		{CategorySovereign, 90},
		{CategoryMajor, 70},
		{CategoryMinor, 40},
		{CategorySeed, 20},
	}
	for _, tt := range tests {
		if got := tt.cat.BaseKarma(); got != tt.want {
			t.Errorf("%s.BaseKarma() = %d, want %d", tt.cat, got, tt.want)
		}
	}
}

func TestCategoryOutranks(t *testing.T) {
	t.Parallel()

	if !CategorySovereign.Outranks(CategoryMajor) {
		t.Error("SOVEREIGN should outrank MAJOR")
	}
	if CategorySeed.Outranks(CategoryMinor) {
		t.Error("SEED should not outrank MINOR")
	}
	if CategoryMajor.Outranks(CategoryMajor) {
		t.Error("a category should not outrank itself")
	}
}

// =============================================================================
// STATE GRAPH TESTS
// =============================================================================

func TestStatusCanTransition(t *testing.T) {
	t.Parallel()

	allowed := []struct{ from, to Status }{
		{StatusSeed, StatusOpen},
		{StatusOpen, StatusBlooming},
		{StatusBlooming, StatusClosed},
		{StatusOpen, StatusStalled},
		{StatusBlooming, StatusStalled},
		{StatusStalled, StatusOpen},
		{StatusSeed, StatusAbandoned},
		{StatusOpen, StatusAbandoned},
		{StatusStalled, StatusClosed},
	}
	for _, e := range allowed {
		if !e.from.CanTransition(e.to) {
			t.Errorf("expected %s -> %s to be allowed", e.from, e.to)
		}
	}

	forbidden := []struct{ from, to Status }{
		{StatusClosed, StatusOpen},
		{StatusAbandoned, StatusOpen},
		{StatusClosed, StatusBlooming},
		{StatusBlooming, StatusSeed},
		{StatusOpen, StatusSeed},
		{StatusStalled, StatusBlooming},
	}
	for _, e := range forbidden {
		if e.from.CanTransition(e.to) {
			t.Errorf("expected %s -> %s to be forbidden", e.from, e.to)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	t.Parallel()

	if !StatusClosed.Terminal() || !StatusAbandoned.Terminal() {
		t.Error("CLOSED and ABANDONED must be terminal")
	}
	for _, s := range []Status{StatusSeed, StatusOpen, StatusBlooming, StatusStalled} {
		if s.Terminal() {
			t.Errorf("%s must not be terminal", s)
		}
	}
}

// =============================================================================
// THREAD HELPERS
// =============================================================================

func TestClampKarma(t *testing.T) {
	t.Parallel()

	if got := ClampKarma(0); got != 1 {
		t.Errorf("ClampKarma(0) = %d, want 1", got)
	}
	if got := ClampKarma(150); got != 100 {
		t.Errorf("ClampKarma(150) = %d, want 100", got)
	}
	if got := ClampKarma(55); got != 55 {
		t.Errorf("ClampKarma(55) = %d, want 55", got)
	}
}

func TestThreadClone_IsolatesSlices(t *testing.T) {
	t.Parallel()

	orig := Thread{
		Signature:    "jade_bell_curse",
		Participants: []string{"Wei Lin"},
		Summary:      []SummaryEntry{{Chapter: 3, Text: "the bell tolls"}},
	}
	clone := orig.Clone()
	clone.Participants[0] = "changed"
	clone.Summary[0].Text = "changed"

	if orig.Participants[0] != "Wei Lin" {
		t.Error("clone shares participants slice with original")
	}
	if orig.Summary[0].Text != "the bell tolls" {
		t.Error("clone shares summary slice with original")
	}
}

func TestAddParticipants_UnionPreservesOrder(t *testing.T) {
	t.Parallel()

	tr := Thread{Participants: []string{"Wei Lin"}}
	tr.AddParticipants([]string{"Mo Yan", "Wei Lin", "", "Mo Yan"})

	want := []string{"Wei Lin", "Mo Yan"}
	if len(tr.Participants) != len(want) {
		t.Fatalf("got %v, want %v", tr.Participants, want)
	}
	for i := range want {
		if tr.Participants[i] != want[i] {
			t.Errorf("participant[%d] = %q, want %q", i, tr.Participants[i], want[i])
		}
	}
}

func TestChaptersSinceMention_NeverNegative(t *testing.T) {
	t.Parallel()

	tr := Thread{LastMentionedChapter: 10}
	if got := tr.ChaptersSinceMention(7); got != 0 {
		t.Errorf("gap = %d, want 0", got)
	}
	if got := tr.ChaptersSinceMention(15); got != 5 {
		t.Errorf("gap = %d, want 5", got)
	}
}
