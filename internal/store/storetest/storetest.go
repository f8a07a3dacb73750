// Package storetest holds behaviour checks shared by every tracker.Store
// implementation.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"jobtracker/internal/tracker"
)

// Store is a tracker.Store that can also seed workflows.
type Store interface {
	tracker.Store
	CreateWorkflow(ctx context.Context, w *tracker.Workflow, applicationIDs ...int64) error
}

var base = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

// Run runs every check against fresh stores built by open.
func Run(t *testing.T, open func(t *testing.T) Store) {
	t.Run("Applications", func(t *testing.T) { testApplications(t, open(t)) })
	t.Run("UpdateApplication", func(t *testing.T) { testUpdateApplication(t, open(t)) })
	t.Run("UpdateApplicationAbort", func(t *testing.T) { testUpdateApplicationAbort(t, open(t)) })
	t.Run("Steps", func(t *testing.T) { testSteps(t, open(t)) })
	t.Run("ResearchData", func(t *testing.T) { testResearchData(t, open(t)) })
	t.Run("Workflows", func(t *testing.T) { testWorkflows(t, open(t)) })
	t.Run("JobBoards", func(t *testing.T) { testJobBoards(t, open(t)) })
	t.Run("WorkHistory", func(t *testing.T) { testWorkHistory(t, open(t)) })
}

func newApp(t *testing.T, s Store, title string, created time.Time) *tracker.Application {
	t.Helper()
	app := &tracker.Application{
		JobTitle:       title,
		CompanyName:    "Acme",
		CompanyURL:     "https://acme.example",
		JobDescription: "Build things",
		Status:         tracker.InitialStatus,
		Source:         tracker.DefaultSource,
		CreatedAt:      created,
		UpdatedAt:      created,
	}
	if err := s.CreateApplication(context.Background(), app); err != nil {
		t.Fatalf("CreateApplication: %v", err)
	}
	if app.ID == 0 {
		t.Fatal("CreateApplication did not assign an id")
	}
	return app
}

// ── Applications ───────────────────────────────────────────────────────────

func testApplications(t *testing.T, s Store) {
	ctx := context.Background()
	a := newApp(t, s, "Backend Engineer", base)
	b := newApp(t, s, "SRE", base.Add(24*time.Hour))

	got, err := s.GetApplication(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetApplication: %v", err)
	}
	if diff := cmp.Diff(a, got); diff != "" {
		t.Errorf("GetApplication mismatch (-want +got):\n%s", diff)
	}
	if _, err := s.GetApplication(ctx, b.ID+100); !errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("GetApplication(unknown) err = %v, want ErrNotFound", err)
	}

	all, err := s.ListApplications(ctx, tracker.ApplicationFilter{})
	if err != nil {
		t.Fatalf("ListApplications: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("got %d applications, want 2", len(all))
	}

	day1, err := s.ListApplications(ctx, tracker.ApplicationFilter{CreatedTo: base.Add(time.Hour)})
	if err != nil {
		t.Fatalf("ListApplications(filter): %v", err)
	}
	if len(day1) != 1 || day1[0].ID != a.ID {
		t.Errorf("CreatedTo filter returned %+v, want only %d", day1, a.ID)
	}
	day2, _ := s.ListApplications(ctx, tracker.ApplicationFilter{CreatedFrom: base.Add(24 * time.Hour)})
	if len(day2) != 1 || day2[0].ID != b.ID {
		t.Errorf("CreatedFrom filter returned %+v, want only %d", day2, b.ID)
	}
}

func testUpdateApplication(t *testing.T, s Store) {
	ctx := context.Background()
	a := newApp(t, s, "Backend Engineer", base)
	later := base.Add(time.Hour)

	got, err := s.UpdateApplication(ctx, a.ID, func(app *tracker.Application) (*tracker.Step, error) {
		app.Status = tracker.StatusApplied
		app.Salary = "120k"
		app.UpdatedAt = later
		return &tracker.Step{Title: "Applied", Description: "Application sent", CreatedAt: later}, nil
	})
	if err != nil {
		t.Fatalf("UpdateApplication: %v", err)
	}
	if got.ID != a.ID || got.Status != tracker.StatusApplied || got.Salary != "120k" {
		t.Errorf("unexpected result %+v", got)
	}

	reread, _ := s.GetApplication(ctx, a.ID)
	if reread.Status != tracker.StatusApplied || !reread.UpdatedAt.Equal(later) || !reread.CreatedAt.Equal(base) {
		t.Errorf("stored record %+v", reread)
	}
	steps, _ := s.ListSteps(ctx, a.ID)
	if len(steps) != 1 || steps[0].ApplicationID != a.ID || steps[0].ID == 0 {
		t.Errorf("steps = %+v, want one step for %d", steps, a.ID)
	}

	_, err = s.UpdateApplication(ctx, a.ID+100, func(*tracker.Application) (*tracker.Step, error) {
		t.Error("mutate called for a missing application")
		return nil, nil
	})
	if !errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("UpdateApplication(unknown) err = %v, want ErrNotFound", err)
	}
}

func testUpdateApplicationAbort(t *testing.T, s Store) {
	ctx := context.Background()
	a := newApp(t, s, "Backend Engineer", base)
	abort := &tracker.ValidationError{Msg: "Invalid status"}

	_, err := s.UpdateApplication(ctx, a.ID, func(app *tracker.Application) (*tracker.Step, error) {
		app.Salary = "should not persist"
		return nil, abort
	})
	if !errors.Is(err, abort) {
		t.Fatalf("err = %v, want the mutate error", err)
	}
	got, _ := s.GetApplication(ctx, a.ID)
	if got.Salary != "" {
		t.Errorf("salary = %q, want unchanged", got.Salary)
	}
}

// ── Steps ──────────────────────────────────────────────────────────────────

func testSteps(t *testing.T, s Store) {
	ctx := context.Background()
	a := newApp(t, s, "Backend Engineer", base)
	b := newApp(t, s, "SRE", base)

	for i, appID := range []int64{a.ID, b.ID, a.ID} {
		st := &tracker.Step{
			ApplicationID: appID,
			Title:         "Step",
			Description:   "d",
			CreatedAt:     base.Add(time.Duration(3-i) * time.Minute),
		}
		if err := s.CreateStep(ctx, st); err != nil {
			t.Fatalf("CreateStep: %v", err)
		}
	}
	if err := s.CreateStep(ctx, &tracker.Step{ApplicationID: b.ID + 100, Title: "x", Description: "y", CreatedAt: base}); !errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("CreateStep(unknown app) err = %v, want ErrNotFound", err)
	}

	steps, err := s.ListSteps(ctx, a.ID)
	if err != nil {
		t.Fatalf("ListSteps: %v", err)
	}
	if len(steps) != 2 || !steps[0].CreatedAt.Before(steps[1].CreatedAt) {
		t.Errorf("steps for %d = %+v, want 2 oldest first", a.ID, steps)
	}
	all, _ := s.ListSteps(ctx)
	if len(all) != 3 {
		t.Errorf("got %d steps overall, want 3", len(all))
	}
}

// ── Research data ──────────────────────────────────────────────────────────

func testResearchData(t *testing.T, s Store) {
	ctx := context.Background()
	a := newApp(t, s, "Backend Engineer", base)

	rd := &tracker.ResearchData{
		ApplicationID: a.ID,
		Category:      tracker.ResearchCompanyResearch,
		Info:          "Series B",
		CreatedAt:     base,
		UpdatedAt:     base,
	}
	if err := s.CreateResearchData(ctx, rd); err != nil {
		t.Fatalf("CreateResearchData: %v", err)
	}
	if err := s.CreateResearchData(ctx, &tracker.ResearchData{ApplicationID: a.ID + 100, Category: 1, Info: "x"}); !errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("CreateResearchData(unknown app) err = %v, want ErrNotFound", err)
	}

	cat := tracker.ResearchRoleResearch
	later := base.Add(time.Hour)
	got, err := s.UpdateResearchData(ctx, rd.ID, tracker.ResearchUpdate{Category: &cat, UpdatedAt: later})
	if err != nil {
		t.Fatalf("UpdateResearchData: %v", err)
	}
	if got.Category != cat || got.Info != "Series B" || !got.UpdatedAt.Equal(later) {
		t.Errorf("unexpected update result %+v", got)
	}
	if _, err := s.UpdateResearchData(ctx, rd.ID+100, tracker.ResearchUpdate{UpdatedAt: later}); !errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("UpdateResearchData(unknown) err = %v, want ErrNotFound", err)
	}

	list, _ := s.ListResearchData(ctx, a.ID)
	if len(list) != 1 || list[0].Category != cat {
		t.Errorf("ListResearchData = %+v", list)
	}
}

// ── Workflows ──────────────────────────────────────────────────────────────

func testWorkflows(t *testing.T, s Store) {
	ctx := context.Background()
	a := newApp(t, s, "Backend Engineer", base)
	b := newApp(t, s, "SRE", base)

	shared := &tracker.Workflow{Name: tracker.WorkflowExtractRoleDetails, CreatedAt: base, Output: "[]"}
	if err := s.CreateWorkflow(ctx, shared, a.ID, b.ID); err != nil {
		t.Fatalf("CreateWorkflow: %v", err)
	}
	letter := &tracker.Workflow{Name: tracker.WorkflowGenerateCoverLetter, CreatedAt: base, Output: "Dear Acme"}
	if err := s.CreateWorkflow(ctx, letter, a.ID); err != nil {
		t.Fatalf("CreateWorkflow: %v", err)
	}

	got, err := s.ListWorkflows(ctx)
	if err != nil {
		t.Fatalf("ListWorkflows: %v", err)
	}
	if len(got[a.ID]) != 2 || len(got[b.ID]) != 1 {
		t.Errorf("workflows per application: %d for %d, %d for %d; want 2 and 1",
			len(got[a.ID]), a.ID, len(got[b.ID]), b.ID)
	}
	only, _ := s.ListWorkflows(ctx, b.ID)
	if len(only) != 1 || only[b.ID][0].Name != tracker.WorkflowExtractRoleDetails {
		t.Errorf("ListWorkflows(%d) = %+v", b.ID, only)
	}
}

// ── Job boards ─────────────────────────────────────────────────────────────

func testJobBoards(t *testing.T, s Store) {
	ctx := context.Background()
	var ids []int64
	for _, name := range []string{"LinkedIn", "WTTJ", "HN"} {
		b := &tracker.JobBoard{Name: name, URL: "https://" + name + ".example", CreatedAt: base, UpdatedAt: base}
		if err := s.CreateJobBoard(ctx, b); err != nil {
			t.Fatalf("CreateJobBoard: %v", err)
		}
		ids = append(ids, b.ID)
	}

	visit := base.Add(2 * time.Hour)
	touched, err := s.TouchJobBoard(ctx, ids[0], visit)
	if err != nil {
		t.Fatalf("TouchJobBoard: %v", err)
	}
	if touched.LastVisited == nil || !touched.LastVisited.Equal(visit) {
		t.Errorf("last_visited = %v, want %v", touched.LastVisited, visit)
	}
	if _, err := s.TouchJobBoard(ctx, ids[1], base.Add(time.Hour)); err != nil {
		t.Fatalf("TouchJobBoard: %v", err)
	}
	if _, err := s.TouchJobBoard(ctx, ids[2]+100, visit); !errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("TouchJobBoard(unknown) err = %v, want ErrNotFound", err)
	}

	boards, err := s.ListJobBoards(ctx)
	if err != nil {
		t.Fatalf("ListJobBoards: %v", err)
	}
	var order []int64
	for _, b := range boards {
		order = append(order, b.ID)
	}
	if diff := cmp.Diff([]int64{ids[2], ids[1], ids[0]}, order); diff != "" {
		t.Errorf("board order mismatch (-want +got):\n%s", diff)
	}
	if boards[0].LastVisited != nil {
		t.Errorf("unvisited board has last_visited %v", boards[0].LastVisited)
	}
}

// ── Work history ───────────────────────────────────────────────────────────

func testWorkHistory(t *testing.T, s Store) {
	ctx := context.Background()
	date := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	older := &tracker.WorkExperience{
		JobTitle: "Engineer", CompanyName: "Old Co", CompanyURL: "https://old.example",
		StartDate: date(2019, 1, 1), EndDate: date(2021, 6, 30), CreatedAt: base, UpdatedAt: base,
	}
	newer := &tracker.WorkExperience{
		JobTitle: "Senior Engineer", CompanyName: "New Co", CompanyURL: "https://new.example",
		StartDate: date(2021, 7, 1), EndDate: date(2025, 1, 31), CreatedAt: base, UpdatedAt: base,
	}
	for _, e := range []*tracker.WorkExperience{older, newer} {
		if err := s.CreateWorkExperience(ctx, e); err != nil {
			t.Fatalf("CreateWorkExperience: %v", err)
		}
	}

	ach := &tracker.WorkAchievement{WorkExperienceID: older.ID, Description: "Shipped v2", CreatedAt: base, UpdatedAt: base}
	if err := s.CreateWorkAchievement(ctx, ach); err != nil {
		t.Fatalf("CreateWorkAchievement: %v", err)
	}
	if err := s.CreateWorkAchievement(ctx, &tracker.WorkAchievement{WorkExperienceID: newer.ID + 100, Description: "x"}); !errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("CreateWorkAchievement(unknown) err = %v, want ErrNotFound", err)
	}
	updated, err := s.UpdateWorkAchievement(ctx, ach.ID, "Shipped v2 and v3", base.Add(time.Hour))
	if err != nil {
		t.Fatalf("UpdateWorkAchievement: %v", err)
	}
	if updated.Description != "Shipped v2 and v3" || updated.WorkExperienceID != older.ID {
		t.Errorf("unexpected achievement %+v", updated)
	}
	if _, err := s.UpdateWorkAchievement(ctx, ach.ID+100, "x", base); !errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("UpdateWorkAchievement(unknown) err = %v, want ErrNotFound", err)
	}

	exps, err := s.ListWorkExperiences(ctx)
	if err != nil {
		t.Fatalf("ListWorkExperiences: %v", err)
	}
	if len(exps) != 2 || exps[0].ID != newer.ID || exps[1].ID != older.ID {
		t.Fatalf("unexpected order %+v", exps)
	}
	if !exps[1].StartDate.Equal(older.StartDate) || !exps[1].EndDate.Equal(older.EndDate) {
		t.Errorf("dates = %v..%v, want %v..%v", exps[1].StartDate, exps[1].EndDate, older.StartDate, older.EndDate)
	}
	if len(exps[0].Achievements) != 0 || len(exps[1].Achievements) != 1 {
		t.Errorf("achievements: %d and %d, want 0 and 1", len(exps[0].Achievements), len(exps[1].Achievements))
	}
}
