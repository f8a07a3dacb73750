package tracker

import (
	"context"
	"time"
)

// ApplicationFilter restricts ListApplications by creation time. Zero
// bounds are open.
type ApplicationFilter struct {
	CreatedFrom time.Time // inclusive
	CreatedTo   time.Time // inclusive
}

// Match reports whether a falls inside the filter.
func (f ApplicationFilter) Match(a *Application) bool {
	if !f.CreatedFrom.IsZero() && a.CreatedAt.Before(f.CreatedFrom) {
		return false
	}
	if !f.CreatedTo.IsZero() && a.CreatedAt.After(f.CreatedTo) {
		return false
	}
	return true
}

// MutateFunc edits the loaded application in place and may return a Step
// to persist with it. Returning an error aborts the update with nothing
// written.
type MutateFunc func(app *Application) (*Step, error)

// ResearchUpdate is a partial update of a research note. Nil fields are
// left unchanged.
type ResearchUpdate struct {
	Category  *ResearchCategory
	Info      *string
	UpdatedAt time.Time
}

// Store is the record store the tracker runs on. Implementations return
// errors wrapping ErrNotFound for missing records and must apply each
// call atomically.
type Store interface {
	CreateApplication(ctx context.Context, app *Application) error
	GetApplication(ctx context.Context, id int64) (*Application, error)
	ListApplications(ctx context.Context, filter ApplicationFilter) ([]Application, error)
	// UpdateApplication loads the application, runs mutate against it and
	// writes the result together with the returned step, if any.
	UpdateApplication(ctx context.Context, id int64, mutate MutateFunc) (*Application, error)

	CreateStep(ctx context.Context, step *Step) error
	// ListSteps returns steps of the given applications, or of all
	// applications when none are given, oldest first.
	ListSteps(ctx context.Context, applicationIDs ...int64) ([]Step, error)

	CreateResearchData(ctx context.Context, rd *ResearchData) error
	UpdateResearchData(ctx context.Context, id int64, upd ResearchUpdate) (*ResearchData, error)
	ListResearchData(ctx context.Context, applicationIDs ...int64) ([]ResearchData, error)

	// ListWorkflows returns the workflows linked to each application.
	ListWorkflows(ctx context.Context, applicationIDs ...int64) (map[int64][]Workflow, error)

	CreateJobBoard(ctx context.Context, board *JobBoard) error
	TouchJobBoard(ctx context.Context, id int64, at time.Time) (*JobBoard, error)
	ListJobBoards(ctx context.Context) ([]JobBoard, error)

	CreateWorkExperience(ctx context.Context, exp *WorkExperience) error
	CreateWorkAchievement(ctx context.Context, ach *WorkAchievement) error
	UpdateWorkAchievement(ctx context.Context, id int64, description string, at time.Time) (*WorkAchievement, error)
	// ListWorkExperiences returns entries with achievements, latest start
	// date first.
	ListWorkExperiences(ctx context.Context) ([]WorkExperience, error)
}
