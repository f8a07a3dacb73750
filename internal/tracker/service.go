package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ─── Service ─────────────────────────────────────────────────────────────────

// DefaultDailyGoal is the number of applications to send per day.
const DefaultDailyGoal = 5

// Observer receives notifications about successful mutations. It must not
// block.
type Observer interface {
	ApplicationCreated()
	FieldUpdated(field Field)
	StepCreated(automatic bool)
	JobBoardVisited()
}

type nopObserver struct{}

func (nopObserver) ApplicationCreated() {}
func (nopObserver) FieldUpdated(Field) {}
func (nopObserver) StepCreated(bool) {}
func (nopObserver) JobBoardVisited() {}

// Settings are the process-wide values the service is built with.
type Settings struct {
	DailyGoal int
	// Location defines calendar-day boundaries. Nil means time.Local.
	Location *time.Location
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.clock = now }
}

// WithObserver registers o for mutation notifications.
func WithObserver(o Observer) Option {
	return func(s *Service) { s.obs = o }
}

// WithLogger sets the logger used for best-effort warnings.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// Service encapsulates the tracker's business logic.
// It has no dependency on a transport; HTTP and gRPC both call it.
type Service struct {
	store Store
	goal  int
	loc   *time.Location
	clock func() time.Time
	obs   Observer
	log   *slog.Logger
}

// NewService returns a configured Service.
func NewService(store Store, settings Settings, opts ...Option) *Service {
	s := &Service{
		store: store,
		goal:  settings.DailyGoal,
		loc:   settings.Location,
		clock: time.Now,
		obs:   nopObserver{},
		log:   slog.Default(),
	}
	if s.goal <= 0 {
		s.goal = DefaultDailyGoal
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DailyGoal returns the configured goal.
func (s *Service) DailyGoal() int { return s.goal }

// Location returns the zone used for calendar days.
func (s *Service) Location() *time.Location { return s.loc }

// Now returns the current time in the service's zone.
func (s *Service) Now() time.Time { return s.clock().In(s.loc) }

// ─── Applications ────────────────────────────────────────────────────────────

// AddJob creates an application from the minimal required fields.
func (s *Service) AddJob(ctx context.Context, in NewApplication) (*Application, error) {
	if blank(in.JobTitle) || blank(in.CompanyName) || blank(in.CompanyURL) || blank(in.JobDescription) {
		return nil, invalidf("job_title, company_name, company_url, and job_description are required")
	}

	status := InitialStatus
	if in.Status != "" {
		st, err := ParseStatus(in.Status)
		if err != nil {
			return nil, invalidf("Invalid status")
		}
		status = st
	}
	source := DefaultSource
	if in.Source != "" {
		src, err := ParseSource(in.Source)
		if err != nil {
			return nil, invalidf("Invalid source")
		}
		source = src
	}

	now := s.Now()
	app := &Application{
		JobTitle:       in.JobTitle,
		CompanyName:    in.CompanyName,
		CompanyURL:     in.CompanyURL,
		JobDescription: in.JobDescription,
		ResumeVersion:  in.ResumeVersion,
		Salary:         in.Salary,
		Status:         status,
		Source:         source,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.CreateApplication(ctx, app); err != nil {
		return nil, fmt.Errorf("addJob: %w", err)
	}
	s.obs.ApplicationCreated()
	return app, nil
}

// GetApplication returns one application.
func (s *Service) GetApplication(ctx context.Context, id int64) (*Application, error) {
	return s.store.GetApplication(ctx, id)
}

// UpdateField writes one field of an application. Status and source values
// must belong to the taxonomy; free-text fields are written as given.
// Moving from the initial status to Applied also records an "Applied"
// step in the same write. Nothing is written when validation fails.
func (s *Service) UpdateField(ctx context.Context, id int64, fieldName, value string) (*Application, error) {
	field, err := ParseField(fieldName)
	if err != nil {
		return nil, err
	}

	var autoStep bool
	app, err := s.store.UpdateApplication(ctx, id, func(app *Application) (*Step, error) {
		step, err := applyField(app, field, value)
		if err != nil {
			return nil, err
		}
		now := s.Now()
		app.UpdatedAt = now
		if step != nil {
			step.CreatedAt = notBefore(now, app.CreatedAt)
			autoStep = true
		}
		return step, nil
	})
	if err != nil {
		return nil, err
	}

	s.obs.FieldUpdated(field)
	if autoStep {
		s.obs.StepCreated(true)
	}
	return app, nil
}

// AddStep appends a timeline entry to an application.
func (s *Service) AddStep(ctx context.Context, appID int64, title, description string) (*Step, error) {
	if blank(title) || blank(description) {
		return nil, invalidf("Title and description are required")
	}
	app, err := s.store.GetApplication(ctx, appID)
	if err != nil {
		return nil, err
	}
	step := &Step{
		ApplicationID: app.ID,
		Title:         title,
		Description:   description,
		CreatedAt:     notBefore(s.Now(), app.CreatedAt),
	}
	if err := s.store.CreateStep(ctx, step); err != nil {
		return nil, fmt.Errorf("addStep: %w", err)
	}
	s.obs.StepCreated(false)
	return step, nil
}

// OrderedList returns every application in display order.
func (s *Service) OrderedList(ctx context.Context) ([]Application, error) {
	apps, err := s.store.ListApplications(ctx, ApplicationFilter{})
	if err != nil {
		return nil, fmt.Errorf("orderedList: %w", err)
	}
	SortForDisplay(apps)
	return apps, nil
}

// ─── Aggregates ──────────────────────────────────────────────────────────────

// DailyProgress counts applications created between the start of now's
// calendar day and now.
func (s *Service) DailyProgress(ctx context.Context, now time.Time) (Progress, error) {
	now = now.In(s.loc)
	apps, err := s.store.ListApplications(ctx, ApplicationFilter{CreatedTo: now})
	if err != nil {
		return Progress{}, fmt.Errorf("dailyProgress: %w", err)
	}
	return DailyProgress(apps, now, s.goal), nil
}

// CategorySummary counts applications per dashboard category.
func (s *Service) CategorySummary(ctx context.Context) ([]CategoryCount, error) {
	apps, err := s.store.ListApplications(ctx, ApplicationFilter{})
	if err != nil {
		return nil, fmt.Errorf("categorySummary: %w", err)
	}
	return CategorySummary(apps), nil
}

// DailyTimeline counts applications per creation date.
func (s *Service) DailyTimeline(ctx context.Context) ([]DayCount, error) {
	apps, err := s.store.ListApplications(ctx, ApplicationFilter{})
	if err != nil {
		return nil, fmt.Errorf("dailyTimeline: %w", err)
	}
	return DailyTimeline(apps, s.loc), nil
}

// ─── Research data ───────────────────────────────────────────────────────────

// AddResearchData attaches a categorised note to an application.
func (s *Service) AddResearchData(ctx context.Context, appID int64, category *int, info string) (*ResearchData, error) {
	if category == nil || blank(info) {
		return nil, invalidf("Category and info are required")
	}
	cat, err := ParseResearchCategory(*category)
	if err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}
	if _, err := s.store.GetApplication(ctx, appID); err != nil {
		return nil, err
	}
	now := s.Now()
	rd := &ResearchData{
		ApplicationID: appID,
		Category:      cat,
		Info:          info,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.CreateResearchData(ctx, rd); err != nil {
		return nil, fmt.Errorf("addResearchData: %w", err)
	}
	return rd, nil
}

// UpdateResearchData changes the category, the info, or both.
func (s *Service) UpdateResearchData(ctx context.Context, id int64, category *int, info string) (*ResearchData, error) {
	if category == nil && blank(info) {
		return nil, invalidf("Category or info is required")
	}
	upd := ResearchUpdate{UpdatedAt: s.Now()}
	if category != nil {
		cat, err := ParseResearchCategory(*category)
		if err != nil {
			return nil, &ValidationError{Msg: err.Error()}
		}
		upd.Category = &cat
	}
	if !blank(info) {
		upd.Info = &info
	}
	return s.store.UpdateResearchData(ctx, id, upd)
}

// ─── Job boards ──────────────────────────────────────────────────────────────

// JobBoardView is a job board with its visited-today flag.
type JobBoardView struct {
	JobBoard
	VisitedToday bool `json:"visited_today"`
}

// AddJobBoard registers a job board.
func (s *Service) AddJobBoard(ctx context.Context, name, url string) (*JobBoard, error) {
	if blank(name) || blank(url) {
		return nil, invalidf("Name and URL are required")
	}
	now := s.Now()
	board := &JobBoard{Name: name, URL: url, CreatedAt: now, UpdatedAt: now}
	if err := s.store.CreateJobBoard(ctx, board); err != nil {
		return nil, fmt.Errorf("addJobBoard: %w", err)
	}
	return board, nil
}

// VisitJobBoard records that the user just checked a board.
func (s *Service) VisitJobBoard(ctx context.Context, id int64) (*JobBoard, error) {
	board, err := s.store.TouchJobBoard(ctx, id, s.Now())
	if err != nil {
		return nil, err
	}
	s.obs.JobBoardVisited()
	return board, nil
}

// ListJobBoards returns boards least recently visited first, with boards
// never visited at the top.
func (s *Service) ListJobBoards(ctx context.Context, now time.Time) ([]JobBoardView, error) {
	boards, err := s.store.ListJobBoards(ctx)
	if err != nil {
		return nil, fmt.Errorf("listJobBoards: %w", err)
	}
	SortJobBoards(boards)
	today := StartOfDay(now.In(s.loc))
	tomorrow := today.AddDate(0, 0, 1)
	out := make([]JobBoardView, 0, len(boards))
	for _, b := range boards {
		v := JobBoardView{JobBoard: b}
		if b.LastVisited != nil {
			lv := b.LastVisited.In(s.loc)
			v.VisitedToday = !lv.Before(today) && lv.Before(tomorrow)
		}
		out = append(out, v)
	}
	return out, nil
}

// ─── Work history ────────────────────────────────────────────────────────────

// NewWorkExperience carries the fields accepted by AddWorkExperience.
// Dates use DateLayout.
type NewWorkExperience struct {
	JobTitle    string `json:"job_title"`
	CompanyName string `json:"company_name"`
	CompanyURL  string `json:"company_url"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

// AddWorkExperience creates a work history entry.
func (s *Service) AddWorkExperience(ctx context.Context, in NewWorkExperience) (*WorkExperience, error) {
	if blank(in.JobTitle) || blank(in.CompanyName) || blank(in.CompanyURL) || blank(in.StartDate) || blank(in.EndDate) {
		return nil, invalidf("All fields are required")
	}
	start, err := time.ParseInLocation(DateLayout, in.StartDate, time.UTC)
	if err != nil {
		return nil, invalidf("start_date must be formatted as YYYY-MM-DD")
	}
	end, err := time.ParseInLocation(DateLayout, in.EndDate, time.UTC)
	if err != nil {
		return nil, invalidf("end_date must be formatted as YYYY-MM-DD")
	}
	if end.Before(start) {
		return nil, invalidf("end_date must not be before start_date")
	}
	now := s.Now()
	exp := &WorkExperience{
		JobTitle:     in.JobTitle,
		CompanyName:  in.CompanyName,
		CompanyURL:   in.CompanyURL,
		StartDate:    start,
		EndDate:      end,
		Achievements: []WorkAchievement{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateWorkExperience(ctx, exp); err != nil {
		return nil, fmt.Errorf("addWorkExperience: %w", err)
	}
	return exp, nil
}

// AddWorkAchievement attaches an achievement to a work history entry.
func (s *Service) AddWorkAchievement(ctx context.Context, experienceID int64, description string) (*WorkAchievement, error) {
	if blank(description) {
		return nil, invalidf("Description is required")
	}
	now := s.Now()
	ach := &WorkAchievement{
		WorkExperienceID: experienceID,
		Description:      description,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.store.CreateWorkAchievement(ctx, ach); err != nil {
		return nil, err
	}
	return ach, nil
}

// UpdateWorkAchievement rewrites an achievement's description.
func (s *Service) UpdateWorkAchievement(ctx context.Context, id int64, description string) (*WorkAchievement, error) {
	if blank(description) {
		return nil, invalidf("Description is required")
	}
	return s.store.UpdateWorkAchievement(ctx, id, description, s.Now())
}

// ListWorkExperiences returns the work history, latest first.
func (s *Service) ListWorkExperiences(ctx context.Context) ([]WorkExperience, error) {
	exps, err := s.store.ListWorkExperiences(ctx)
	if err != nil {
		return nil, fmt.Errorf("listWorkExperiences: %w", err)
	}
	return exps, nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func notBefore(t, floor time.Time) time.Time {
	if t.Before(floor) {
		return floor
	}
	return t
}
