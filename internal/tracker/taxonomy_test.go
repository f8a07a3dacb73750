package tracker_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"jobtracker/internal/tracker"
)

// ── ParseStatus ────────────────────────────────────────────────────────────

func TestParseStatus_ValidValues(t *testing.T) {
	for _, s := range tracker.Statuses() {
		got, err := tracker.ParseStatus(string(s))
		if err != nil {
			t.Errorf("ParseStatus(%q) returned unexpected error: %v", s, err)
		}
		if got != s {
			t.Errorf("ParseStatus(%q) = %q, want %q", s, got, s)
		}
	}
}

func TestParseStatus_InvalidValues(t *testing.T) {
	for _, s := range []string{"", "applied", "APPLIED", "Applied ", "Interviewing", "Hired"} {
		if _, err := tracker.ParseStatus(s); err == nil {
			t.Errorf("ParseStatus(%q) expected error, got nil", s)
		}
	}
}

func TestStatuses_DeclarationOrder(t *testing.T) {
	want := []tracker.Status{
		"Preparing Application", "Applied", "Ghosted", "Avoid",
		"Rejected", "Technical Interview", "HR Interview", "Offer",
	}
	if diff := cmp.Diff(want, tracker.Statuses()); diff != "" {
		t.Errorf("Statuses() mismatch (-want +got):\n%s", diff)
	}
}

func TestStatuses_ReturnsCopy(t *testing.T) {
	s := tracker.Statuses()
	s[0] = "mutated"
	if tracker.Statuses()[0] != tracker.StatusPreparing {
		t.Error("mutating the returned slice changed the taxonomy")
	}
}

// ── PriorityRank / CategoryOf ──────────────────────────────────────────────

func TestPriorityRank(t *testing.T) {
	cases := []struct {
		status tracker.Status
		rank   int
	}{
		{tracker.StatusOffer, 1},
		{tracker.StatusTechnicalInterview, 2},
		{tracker.StatusHRInterview, 3},
		{tracker.StatusPreparing, 4},
		{tracker.StatusApplied, 5},
		{tracker.StatusGhosted, 6},
		{tracker.StatusRejected, 7},
		{tracker.StatusAvoid, 8},
	}
	for _, tc := range cases {
		if got := tracker.PriorityRank(tc.status); got != tc.rank {
			t.Errorf("PriorityRank(%s) = %d, want %d", tc.status, got, tc.rank)
		}
	}
}

func TestPriorityRank_IsBijection(t *testing.T) {
	seen := make(map[int]tracker.Status)
	for _, s := range tracker.Statuses() {
		r := tracker.PriorityRank(s)
		if r < 1 || r > 8 {
			t.Errorf("PriorityRank(%s) = %d, outside 1..8", s, r)
		}
		if prev, dup := seen[r]; dup {
			t.Errorf("rank %d shared by %s and %s", r, prev, s)
		}
		seen[r] = s
	}
	if len(seen) != 8 {
		t.Errorf("got %d distinct ranks, want 8", len(seen))
	}
}

func TestPriorityRank_UnknownSortsLast(t *testing.T) {
	if got := tracker.PriorityRank("Unknown"); got <= tracker.PriorityRank(tracker.StatusAvoid) {
		t.Errorf("PriorityRank(Unknown) = %d, want after every known status", got)
	}
}

func TestCategoryOf(t *testing.T) {
	cases := []struct {
		status   tracker.Status
		category tracker.Category
	}{
		{tracker.StatusPreparing, tracker.CategoryPreparing},
		{tracker.StatusApplied, tracker.CategoryApplied},
		{tracker.StatusTechnicalInterview, tracker.CategoryInProgress},
		{tracker.StatusHRInterview, tracker.CategoryInProgress},
		{tracker.StatusGhosted, tracker.CategoryNegative},
		{tracker.StatusRejected, tracker.CategoryNegative},
		{tracker.StatusAvoid, tracker.CategoryNegative},
		{tracker.StatusOffer, tracker.CategoryOffer},
	}
	for _, tc := range cases {
		got, ok := tracker.CategoryOf(tc.status)
		if !ok || got != tc.category {
			t.Errorf("CategoryOf(%s) = %q, %v; want %q, true", tc.status, got, ok, tc.category)
		}
	}
}

func TestCategoryOf_EveryStatusMapped(t *testing.T) {
	valid := make(map[tracker.Category]bool)
	for _, c := range tracker.Categories() {
		valid[c] = true
	}
	for _, s := range tracker.Statuses() {
		c, ok := tracker.CategoryOf(s)
		if !ok || !valid[c] {
			t.Errorf("CategoryOf(%s) = %q, %v; want a known category", s, c, ok)
		}
	}
	if _, ok := tracker.CategoryOf("Unknown"); ok {
		t.Error("CategoryOf(Unknown) should report false")
	}
}

// ── Sources / research categories ──────────────────────────────────────────

func TestParseSource(t *testing.T) {
	for _, s := range tracker.Sources() {
		if _, err := tracker.ParseSource(string(s)); err != nil {
			t.Errorf("ParseSource(%q) returned unexpected error: %v", s, err)
		}
	}
	for _, s := range []string{"", "linkedin", "Indeed"} {
		if _, err := tracker.ParseSource(s); err == nil {
			t.Errorf("ParseSource(%q) expected error, got nil", s)
		}
	}
}

func TestParseResearchCategory(t *testing.T) {
	for code := 1; code <= 4; code++ {
		if _, err := tracker.ParseResearchCategory(code); err != nil {
			t.Errorf("ParseResearchCategory(%d) returned unexpected error: %v", code, err)
		}
	}
	for _, code := range []int{0, 5, -1} {
		if _, err := tracker.ParseResearchCategory(code); err == nil {
			t.Errorf("ParseResearchCategory(%d) expected error, got nil", code)
		}
	}
}
