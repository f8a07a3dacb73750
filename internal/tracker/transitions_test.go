package tracker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"jobtracker/internal/store/memstore"
	"jobtracker/internal/tracker"
)

var t0 = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

// fakeClock is a settable clock for tracker.WithClock.
type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newService(t *testing.T) (*tracker.Service, *memstore.Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: t0}
	store := memstore.New()
	svc := tracker.NewService(store, tracker.Settings{DailyGoal: 3, Location: time.UTC}, tracker.WithClock(clock.Now))
	return svc, store, clock
}

func addJob(t *testing.T, svc *tracker.Service, title string) *tracker.Application {
	t.Helper()
	app, err := svc.AddJob(context.Background(), tracker.NewApplication{
		JobTitle:       title,
		CompanyName:    "Acme",
		CompanyURL:     "https://acme.example",
		JobDescription: "Build things",
	})
	if err != nil {
		t.Fatalf("AddJob(%q): %v", title, err)
	}
	return app
}

func stepsOf(t *testing.T, store *memstore.Store, id int64) []tracker.Step {
	t.Helper()
	steps, err := store.ListSteps(context.Background(), id)
	if err != nil {
		t.Fatalf("ListSteps: %v", err)
	}
	return steps
}

// ── ParseField / ParseFieldUpdate ──────────────────────────────────────────

func TestParseField(t *testing.T) {
	for _, name := range []string{"status", "source", "salary", "cover_letter", "resume_version"} {
		if _, err := tracker.ParseField(name); err != nil {
			t.Errorf("ParseField(%q) returned unexpected error: %v", name, err)
		}
	}
	for _, name := range []string{"", "id", "created_at", "company_name", "Status"} {
		_, err := tracker.ParseField(name)
		if tracker.KindOf(err) != tracker.KindInvalidValue {
			t.Errorf("ParseField(%q) kind = %v, want InvalidValue", name, tracker.KindOf(err))
		}
	}
}

func TestParseFieldUpdate_Valid(t *testing.T) {
	f, v, err := tracker.ParseFieldUpdate([]byte(`{"salary": "120k"}`))
	if err != nil {
		t.Fatalf("ParseFieldUpdate: %v", err)
	}
	if f != tracker.FieldSalary || v != "120k" {
		t.Errorf("got (%q, %q), want (salary, 120k)", f, v)
	}
}

func TestParseFieldUpdate_EmptyStringIsAValue(t *testing.T) {
	_, v, err := tracker.ParseFieldUpdate([]byte(`{"cover_letter": ""}`))
	if err != nil || v != "" {
		t.Errorf("got (%q, %v), want empty value and no error", v, err)
	}
}

func TestParseFieldUpdate_Malformed(t *testing.T) {
	bodies := []string{
		``,
		`not json`,
		`[]`,
		`null`,
		`{}`,
		`{"status": "Applied", "salary": "1"}`,
		`{"salary": 120000}`,
		`{"salary": null}`,
		`{"salary": ["a"]}`,
	}
	for _, b := range bodies {
		_, _, err := tracker.ParseFieldUpdate([]byte(b))
		if tracker.KindOf(err) != tracker.KindMalformedRequest {
			t.Errorf("ParseFieldUpdate(%q) kind = %v, want MalformedRequest", b, tracker.KindOf(err))
		}
	}
}

func TestParseFieldUpdate_UnknownField(t *testing.T) {
	_, _, err := tracker.ParseFieldUpdate([]byte(`{"company_name": "Evil"}`))
	if tracker.KindOf(err) != tracker.KindInvalidValue {
		t.Errorf("kind = %v, want InvalidValue", tracker.KindOf(err))
	}
}

// ── CreatesAppliedStep ─────────────────────────────────────────────────────

func TestCreatesAppliedStep(t *testing.T) {
	for _, from := range tracker.Statuses() {
		for _, to := range tracker.Statuses() {
			want := from == tracker.StatusPreparing && to == tracker.StatusApplied
			if got := tracker.CreatesAppliedStep(from, to); got != want {
				t.Errorf("CreatesAppliedStep(%s → %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

// ── UpdateField ────────────────────────────────────────────────────────────

func TestUpdateField_PreparingToAppliedCreatesOneStep(t *testing.T) {
	ctx := context.Background()
	svc, store, clock := newService(t)
	app := addJob(t, svc, "Backend Engineer")

	clock.Advance(time.Hour)
	got, err := svc.UpdateField(ctx, app.ID, "status", "Applied")
	if err != nil {
		t.Fatalf("UpdateField: %v", err)
	}
	if got.Status != tracker.StatusApplied {
		t.Errorf("status = %s, want Applied", got.Status)
	}
	if !got.UpdatedAt.Equal(clock.now) {
		t.Errorf("updated_at = %v, want %v", got.UpdatedAt, clock.now)
	}

	steps := stepsOf(t, store, app.ID)
	if len(steps) != 1 {
		t.Fatalf("got %d steps, want 1", len(steps))
	}
	if steps[0].Title != tracker.AppliedStepTitle || steps[0].Description != tracker.AppliedStepDescription {
		t.Errorf("step = %q/%q, want %q/%q", steps[0].Title, steps[0].Description,
			tracker.AppliedStepTitle, tracker.AppliedStepDescription)
	}
	if steps[0].CreatedAt.Before(app.CreatedAt) {
		t.Errorf("step created_at %v is before application created_at %v", steps[0].CreatedAt, app.CreatedAt)
	}
}

func TestUpdateField_AppliedToAppliedIsNoOp(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService(t)
	app := addJob(t, svc, "Backend Engineer")

	if _, err := svc.UpdateField(ctx, app.ID, "status", "Applied"); err != nil {
		t.Fatalf("first UpdateField: %v", err)
	}
	got, err := svc.UpdateField(ctx, app.ID, "status", "Applied")
	if err != nil {
		t.Fatalf("second UpdateField: %v", err)
	}
	if got.Status != tracker.StatusApplied {
		t.Errorf("status = %s, want Applied", got.Status)
	}
	if n := len(stepsOf(t, store, app.ID)); n != 1 {
		t.Errorf("got %d steps, want 1", n)
	}
}

func TestUpdateField_OtherTransitionsCreateNoStep(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name string
		path []string
	}{
		{"preparing to rejected", []string{"Rejected"}},
		{"preparing to offer", []string{"Offer"}},
		{"applied onwards", []string{"Applied", "HR Interview", "Technical Interview", "Offer"}},
		{"ghosted back to preparing", []string{"Ghosted", "Preparing Application"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, store, _ := newService(t)
			app := addJob(t, svc, "Backend Engineer")
			want := 0
			prev := tracker.InitialStatus
			for _, st := range tc.path {
				if _, err := svc.UpdateField(ctx, app.ID, "status", st); err != nil {
					t.Fatalf("UpdateField(%s): %v", st, err)
				}
				if tracker.CreatesAppliedStep(prev, tracker.Status(st)) {
					want++
				}
				prev = tracker.Status(st)
			}
			if got := len(stepsOf(t, store, app.ID)); got != want {
				t.Errorf("got %d steps, want %d", got, want)
			}
		})
	}
}

func TestUpdateField_InvalidStatusLeavesRecordUnchanged(t *testing.T) {
	ctx := context.Background()
	svc, store, clock := newService(t)
	app := addJob(t, svc, "Backend Engineer")

	clock.Advance(time.Minute)
	_, err := svc.UpdateField(ctx, app.ID, "status", "Interviewing")
	var ve *tracker.ValidationError
	if !errors.As(err, &ve) || ve.Msg != "Invalid status" {
		t.Fatalf("err = %v, want ValidationError \"Invalid status\"", err)
	}

	got, err := svc.GetApplication(ctx, app.ID)
	if err != nil {
		t.Fatalf("GetApplication: %v", err)
	}
	if got.Status != tracker.StatusPreparing || !got.UpdatedAt.Equal(app.UpdatedAt) {
		t.Errorf("record changed: status=%s updated_at=%v", got.Status, got.UpdatedAt)
	}
	if n := len(stepsOf(t, store, app.ID)); n != 0 {
		t.Errorf("got %d steps, want 0", n)
	}
}

func TestUpdateField_InvalidSource(t *testing.T) {
	svc, _, _ := newService(t)
	app := addJob(t, svc, "Backend Engineer")
	_, err := svc.UpdateField(context.Background(), app.ID, "source", "Indeed")
	var ve *tracker.ValidationError
	if !errors.As(err, &ve) || ve.Msg != "Invalid source" {
		t.Fatalf("err = %v, want ValidationError \"Invalid source\"", err)
	}
}

func TestUpdateField_FreeTextIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService(t)
	app := addJob(t, svc, "Backend Engineer")

	for i := 0; i < 2; i++ {
		got, err := svc.UpdateField(ctx, app.ID, "salary", "120k")
		if err != nil {
			t.Fatalf("UpdateField #%d: %v", i, err)
		}
		if got.Salary != "120k" {
			t.Errorf("salary = %q, want 120k", got.Salary)
		}
	}
	got, _ := svc.UpdateField(ctx, app.ID, "cover_letter", "Dear team")
	if got.CoverLetter != "Dear team" || got.Salary != "120k" {
		t.Errorf("got cover_letter=%q salary=%q", got.CoverLetter, got.Salary)
	}
	if n := len(stepsOf(t, store, app.ID)); n != 0 {
		t.Errorf("got %d steps, want 0", n)
	}
}

func TestUpdateField_UnknownFieldRejectedBeforeLookup(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.UpdateField(context.Background(), 999, "company_name", "x")
	if tracker.KindOf(err) != tracker.KindInvalidValue {
		t.Errorf("kind = %v, want InvalidValue", tracker.KindOf(err))
	}
}

func TestUpdateField_NotFound(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.UpdateField(context.Background(), 999, "status", "Applied")
	if !errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// ── AddStep ────────────────────────────────────────────────────────────────

func TestAddStep(t *testing.T) {
	ctx := context.Background()
	svc, store, clock := newService(t)
	app := addJob(t, svc, "Backend Engineer")

	clock.Advance(time.Hour)
	step, err := svc.AddStep(ctx, app.ID, "Phone screen", "30 minutes with HR")
	if err != nil {
		t.Fatalf("AddStep: %v", err)
	}
	if step.ID == 0 || step.ApplicationID != app.ID || !step.CreatedAt.Equal(clock.now) {
		t.Errorf("unexpected step %+v", step)
	}
	if n := len(stepsOf(t, store, app.ID)); n != 1 {
		t.Errorf("got %d steps, want 1", n)
	}
}

func TestAddStep_RequiresTitleAndDescription(t *testing.T) {
	svc, _, _ := newService(t)
	app := addJob(t, svc, "Backend Engineer")
	for _, tc := range [][2]string{{"", "d"}, {"t", ""}, {"  ", "d"}} {
		_, err := svc.AddStep(context.Background(), app.ID, tc[0], tc[1])
		if tracker.KindOf(err) != tracker.KindInvalidValue {
			t.Errorf("AddStep(%q, %q) kind = %v, want InvalidValue", tc[0], tc[1], tracker.KindOf(err))
		}
	}
}

func TestAddStep_NotFound(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.AddStep(context.Background(), 42, "t", "d")
	if !errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// ── AddJob ─────────────────────────────────────────────────────────────────

func TestAddJob_Defaults(t *testing.T) {
	svc, _, _ := newService(t)
	app := addJob(t, svc, "Backend Engineer")
	if app.Status != tracker.InitialStatus || app.Source != tracker.DefaultSource {
		t.Errorf("status=%s source=%s, want defaults", app.Status, app.Source)
	}
	if !app.CreatedAt.Equal(t0) || !app.UpdatedAt.Equal(t0) {
		t.Errorf("timestamps = %v/%v, want %v", app.CreatedAt, app.UpdatedAt, t0)
	}
}

func TestAddJob_Validation(t *testing.T) {
	svc, _, _ := newService(t)
	cases := []tracker.NewApplication{
		{CompanyName: "a", CompanyURL: "b", JobDescription: "c"},
		{JobTitle: "t", CompanyName: "a", CompanyURL: "b", JobDescription: "c", Status: "Hired"},
		{JobTitle: "t", CompanyName: "a", CompanyURL: "b", JobDescription: "c", Source: "Indeed"},
	}
	for _, in := range cases {
		if _, err := svc.AddJob(context.Background(), in); tracker.KindOf(err) != tracker.KindInvalidValue {
			t.Errorf("AddJob(%+v) kind = %v, want InvalidValue", in, tracker.KindOf(err))
		}
	}
}
