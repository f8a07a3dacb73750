package tracker

import (
	"context"
	"fmt"
	"time"
)

// ApplicationView is an application with everything the dashboard shows
// alongside it.
type ApplicationView struct {
	Application
	Steps        []Step         `json:"steps"`
	Workflows    []WorkflowView `json:"workflows"`
	ResearchData []ResearchData `json:"research_data"`
}

// Dashboard is the payload behind the main page.
type Dashboard struct {
	Jobs []ApplicationView `json:"jobs"`
	Progress
	StatusSummary []CategoryCount `json:"status_summary"`
	DailyStats    []DayCount      `json:"daily_stats"`
	StatusChoices []Status        `json:"status_choices"`
}

// Dashboard assembles the ordered application list and every aggregate
// from one read of the store. Nothing is cached between calls.
func (s *Service) Dashboard(ctx context.Context, now time.Time) (*Dashboard, error) {
	now = now.In(s.loc)

	apps, err := s.store.ListApplications(ctx, ApplicationFilter{})
	if err != nil {
		return nil, fmt.Errorf("dashboard applications: %w", err)
	}
	steps, err := s.store.ListSteps(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard steps: %w", err)
	}
	research, err := s.store.ListResearchData(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard research data: %w", err)
	}
	workflows, err := s.store.ListWorkflows(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard workflows: %w", err)
	}

	stepsByApp := make(map[int64][]Step)
	for _, st := range steps {
		stepsByApp[st.ApplicationID] = append(stepsByApp[st.ApplicationID], st)
	}
	researchByApp := make(map[int64][]ResearchData)
	for _, rd := range research {
		researchByApp[rd.ApplicationID] = append(researchByApp[rd.ApplicationID], rd)
	}

	d := &Dashboard{
		Progress:      DailyProgress(apps, now, s.goal),
		StatusSummary: CategorySummary(apps),
		DailyStats:    DailyTimeline(apps, s.loc),
		StatusChoices: Statuses(),
	}

	SortForDisplay(apps)
	d.Jobs = make([]ApplicationView, 0, len(apps))
	for _, app := range apps {
		views, errs := WorkflowViews(app.ID, workflows[app.ID])
		for _, err := range errs {
			s.log.Warn("skipping unreadable workflow output", "applicationId", app.ID, "err", err)
		}
		d.Jobs = append(d.Jobs, ApplicationView{
			Application:  app,
			Steps:        nonNil(stepsByApp[app.ID]),
			Workflows:    views,
			ResearchData: nonNil(researchByApp[app.ID]),
		})
	}
	return d, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
