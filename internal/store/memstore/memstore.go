// Package memstore is an in-memory tracker.Store. Every call holds one
// mutex, so each call is atomic. Data does not survive a restart.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"jobtracker/internal/tracker"
)

// Store implements tracker.Store in memory.
type Store struct {
	mu sync.Mutex

	nextID int64

	apps         map[int64]tracker.Application
	steps        []tracker.Step
	research     map[int64]tracker.ResearchData
	workflows    map[int64]tracker.Workflow
	links        map[int64][]int64 // application id → workflow ids
	boards       map[int64]tracker.JobBoard
	experiences  map[int64]tracker.WorkExperience
	achievements map[int64]tracker.WorkAchievement
}

var _ tracker.Store = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	return &Store{
		apps:         make(map[int64]tracker.Application),
		research:     make(map[int64]tracker.ResearchData),
		workflows:    make(map[int64]tracker.Workflow),
		links:        make(map[int64][]int64),
		boards:       make(map[int64]tracker.JobBoard),
		experiences:  make(map[int64]tracker.WorkExperience),
		achievements: make(map[int64]tracker.WorkAchievement),
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func notFound(kind string, id int64) error {
	return fmt.Errorf("%s %d: %w", kind, id, tracker.ErrNotFound)
}

// ─── Applications ────────────────────────────────────────────────────────────

func (s *Store) CreateApplication(_ context.Context, app *tracker.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	app.ID = s.id()
	s.apps[app.ID] = *app
	return nil
}

func (s *Store) GetApplication(_ context.Context, id int64) (*tracker.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[id]
	if !ok {
		return nil, notFound("application", id)
	}
	return &app, nil
}

func (s *Store) ListApplications(_ context.Context, filter tracker.ApplicationFilter) ([]tracker.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]tracker.Application, 0, len(s.apps))
	for _, app := range s.apps {
		if filter.Match(&app) {
			out = append(out, app)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateApplication(_ context.Context, id int64, mutate tracker.MutateFunc) (*tracker.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[id]
	if !ok {
		return nil, notFound("application", id)
	}
	// mutate works on a copy so a failed validation leaves the table as is.
	step, err := mutate(&app)
	if err != nil {
		return nil, err
	}
	app.ID = id
	s.apps[id] = app
	if step != nil {
		step.ApplicationID = id
		step.ID = s.id()
		s.steps = append(s.steps, *step)
	}
	return &app, nil
}

// ─── Steps ───────────────────────────────────────────────────────────────────

func (s *Store) CreateStep(_ context.Context, step *tracker.Step) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.apps[step.ApplicationID]; !ok {
		return notFound("application", step.ApplicationID)
	}
	step.ID = s.id()
	s.steps = append(s.steps, *step)
	return nil
}

func (s *Store) ListSteps(_ context.Context, applicationIDs ...int64) ([]tracker.Step, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := idSet(applicationIDs)
	out := make([]tracker.Step, 0)
	for _, st := range s.steps {
		if want == nil || want[st.ApplicationID] {
			out = append(out, st)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ─── Research data ───────────────────────────────────────────────────────────

func (s *Store) CreateResearchData(_ context.Context, rd *tracker.ResearchData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.apps[rd.ApplicationID]; !ok {
		return notFound("application", rd.ApplicationID)
	}
	rd.ID = s.id()
	s.research[rd.ID] = *rd
	return nil
}

func (s *Store) UpdateResearchData(_ context.Context, id int64, upd tracker.ResearchUpdate) (*tracker.ResearchData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rd, ok := s.research[id]
	if !ok {
		return nil, notFound("research data", id)
	}
	if upd.Category != nil {
		rd.Category = *upd.Category
	}
	if upd.Info != nil {
		rd.Info = *upd.Info
	}
	rd.UpdatedAt = upd.UpdatedAt
	s.research[id] = rd
	return &rd, nil
}

func (s *Store) ListResearchData(_ context.Context, applicationIDs ...int64) ([]tracker.ResearchData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := idSet(applicationIDs)
	out := make([]tracker.ResearchData, 0)
	for _, rd := range s.research {
		if want == nil || want[rd.ApplicationID] {
			out = append(out, rd)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ─── Workflows ───────────────────────────────────────────────────────────────

// CreateWorkflow stores an externally produced workflow and links it to
// the given applications.
func (s *Store) CreateWorkflow(_ context.Context, w *tracker.Workflow, applicationIDs ...int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, appID := range applicationIDs {
		if _, ok := s.apps[appID]; !ok {
			return notFound("application", appID)
		}
	}
	w.ID = s.id()
	s.workflows[w.ID] = *w
	for _, appID := range applicationIDs {
		s.links[appID] = append(s.links[appID], w.ID)
	}
	return nil
}

func (s *Store) ListWorkflows(_ context.Context, applicationIDs ...int64) (map[int64][]tracker.Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := idSet(applicationIDs)
	out := make(map[int64][]tracker.Workflow)
	for appID, ids := range s.links {
		if want != nil && !want[appID] {
			continue
		}
		for _, wid := range ids {
			out[appID] = append(out[appID], s.workflows[wid])
		}
	}
	return out, nil
}

// ─── Job boards ──────────────────────────────────────────────────────────────

func (s *Store) CreateJobBoard(_ context.Context, board *tracker.JobBoard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	board.ID = s.id()
	s.boards[board.ID] = *board
	return nil
}

func (s *Store) TouchJobBoard(_ context.Context, id int64, at time.Time) (*tracker.JobBoard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	board, ok := s.boards[id]
	if !ok {
		return nil, notFound("job board", id)
	}
	board.LastVisited = &at
	board.UpdatedAt = at
	s.boards[id] = board
	return &board, nil
}

func (s *Store) ListJobBoards(_ context.Context) ([]tracker.JobBoard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]tracker.JobBoard, 0, len(s.boards))
	for _, b := range s.boards {
		out = append(out, b)
	}
	tracker.SortJobBoards(out)
	return out, nil
}

// ─── Work history ────────────────────────────────────────────────────────────

func (s *Store) CreateWorkExperience(_ context.Context, exp *tracker.WorkExperience) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp.ID = s.id()
	stored := *exp
	stored.Achievements = nil
	s.experiences[exp.ID] = stored
	return nil
}

func (s *Store) CreateWorkAchievement(_ context.Context, ach *tracker.WorkAchievement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.experiences[ach.WorkExperienceID]; !ok {
		return notFound("work experience", ach.WorkExperienceID)
	}
	ach.ID = s.id()
	s.achievements[ach.ID] = *ach
	return nil
}

func (s *Store) UpdateWorkAchievement(_ context.Context, id int64, description string, at time.Time) (*tracker.WorkAchievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ach, ok := s.achievements[id]
	if !ok {
		return nil, notFound("work achievement", id)
	}
	ach.Description = description
	ach.UpdatedAt = at
	s.achievements[id] = ach
	return &ach, nil
}

func (s *Store) ListWorkExperiences(_ context.Context) ([]tracker.WorkExperience, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byExp := make(map[int64][]tracker.WorkAchievement)
	for _, ach := range s.achievements {
		byExp[ach.WorkExperienceID] = append(byExp[ach.WorkExperienceID], ach)
	}
	out := make([]tracker.WorkExperience, 0, len(s.experiences))
	for _, exp := range s.experiences {
		achs := byExp[exp.ID]
		sort.Slice(achs, func(i, j int) bool { return achs[i].ID < achs[j].ID })
		if achs == nil {
			achs = []tracker.WorkAchievement{}
		}
		exp.Achievements = achs
		out = append(out, exp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.After(out[j].StartDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func idSet(ids []int64) map[int64]bool {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
