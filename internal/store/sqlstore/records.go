package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"jobtracker/internal/tracker"
)

// ─── Research data ───────────────────────────────────────────────────────────

const researchColumns = `id, job_application_id, category, info, created_at, updated_at`

func scanResearch(row rowScanner, rd *tracker.ResearchData) error {
	return row.Scan(&rd.ID, &rd.ApplicationID, &rd.Category, &rd.Info,
		timeCol(&rd.CreatedAt), timeCol(&rd.UpdatedAt))
}

func (s *Store) CreateResearchData(ctx context.Context, rd *tracker.ResearchData) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.exists(ctx, tx, "job_applications", "application", rd.ApplicationID); err != nil {
			return err
		}
		err := s.queryRow(ctx, tx,
			`INSERT INTO research_data (job_application_id, category, info, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?)
			 RETURNING id`,
			rd.ApplicationID, int(rd.Category), rd.Info,
			s.dialect.timeArg(rd.CreatedAt), s.dialect.timeArg(rd.UpdatedAt),
		).Scan(&rd.ID)
		if err != nil {
			return fmt.Errorf("createResearchData: %w", err)
		}
		return nil
	})
}

func (s *Store) UpdateResearchData(ctx context.Context, id int64, upd tracker.ResearchUpdate) (*tracker.ResearchData, error) {
	var rd tracker.ResearchData
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		err := scanResearch(s.queryRow(ctx, tx,
			`SELECT `+researchColumns+` FROM research_data WHERE id = ?`+s.dialect.forUpdate(), id), &rd)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("research data", id)
		}
		if err != nil {
			return fmt.Errorf("updateResearchData load: %w", err)
		}
		if upd.Category != nil {
			rd.Category = *upd.Category
		}
		if upd.Info != nil {
			rd.Info = *upd.Info
		}
		rd.UpdatedAt = upd.UpdatedAt
		err = s.exec(ctx, tx,
			`UPDATE research_data SET category = ?, info = ?, updated_at = ? WHERE id = ?`,
			int(rd.Category), rd.Info, s.dialect.timeArg(rd.UpdatedAt), id)
		if err != nil {
			return fmt.Errorf("updateResearchData: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rd, nil
}

func (s *Store) ListResearchData(ctx context.Context, applicationIDs ...int64) ([]tracker.ResearchData, error) {
	where, args := inClause("job_application_id", applicationIDs)
	rows, err := s.query(ctx, s.db,
		`SELECT `+researchColumns+` FROM research_data WHERE `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("listResearchData query: %w", err)
	}
	defer rows.Close()

	out := make([]tracker.ResearchData, 0)
	for rows.Next() {
		var rd tracker.ResearchData
		if err := scanResearch(rows, &rd); err != nil {
			return nil, fmt.Errorf("listResearchData scan: %w", err)
		}
		out = append(out, rd)
	}
	return out, rows.Err()
}

// ─── Workflows ───────────────────────────────────────────────────────────────

// CreateWorkflow stores an externally produced workflow and links it to
// the given applications.
func (s *Store) CreateWorkflow(ctx context.Context, w *tracker.Workflow, applicationIDs ...int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		err := s.queryRow(ctx, tx,
			`INSERT INTO workflows (workflow_name, created_at, prompt, agent_model, output, parameters)
			 VALUES (?, ?, ?, ?, ?, ?)
			 RETURNING workflow_id`,
			w.Name, s.dialect.timeArg(w.CreatedAt), w.Prompt, w.AgentModel, w.Output, w.Parameters,
		).Scan(&w.ID)
		if err != nil {
			return fmt.Errorf("createWorkflow: %w", err)
		}
		for _, appID := range applicationIDs {
			if err := s.exists(ctx, tx, "job_applications", "application", appID); err != nil {
				return err
			}
			err := s.exec(ctx, tx,
				`INSERT INTO job_application_workflows (job_application_id, workflow_id) VALUES (?, ?)`,
				appID, w.ID)
			if err != nil {
				return fmt.Errorf("linkWorkflow: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) ListWorkflows(ctx context.Context, applicationIDs ...int64) (map[int64][]tracker.Workflow, error) {
	where, args := inClause("l.job_application_id", applicationIDs)
	rows, err := s.query(ctx, s.db,
		`SELECT l.job_application_id, w.workflow_id, w.workflow_name, w.created_at,
		        w.prompt, w.agent_model, w.output, w.parameters
		 FROM job_application_workflows l
		 JOIN workflows w ON w.workflow_id = l.workflow_id
		 WHERE `+where+`
		 ORDER BY l.job_application_id, w.workflow_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("listWorkflows query: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]tracker.Workflow)
	for rows.Next() {
		var (
			appID int64
			w     tracker.Workflow
		)
		if err := rows.Scan(&appID, &w.ID, &w.Name, timeCol(&w.CreatedAt),
			&w.Prompt, &w.AgentModel, &w.Output, &w.Parameters); err != nil {
			return nil, fmt.Errorf("listWorkflows scan: %w", err)
		}
		out[appID] = append(out[appID], w)
	}
	return out, rows.Err()
}

// ─── Job boards ──────────────────────────────────────────────────────────────

const boardColumns = `id, name, url, last_visited, created_at, updated_at`

func scanBoard(row rowScanner, b *tracker.JobBoard) error {
	return row.Scan(&b.ID, &b.Name, &b.URL, nullTimeCol{&b.LastVisited},
		timeCol(&b.CreatedAt), timeCol(&b.UpdatedAt))
}

func (s *Store) CreateJobBoard(ctx context.Context, b *tracker.JobBoard) error {
	err := s.queryRow(ctx, s.db,
		`INSERT INTO job_boards (name, url, last_visited, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 RETURNING id`,
		b.Name, b.URL, s.dialect.nullTimeArg(b.LastVisited),
		s.dialect.timeArg(b.CreatedAt), s.dialect.timeArg(b.UpdatedAt),
	).Scan(&b.ID)
	if err != nil {
		return fmt.Errorf("createJobBoard: %w", err)
	}
	return nil
}

func (s *Store) TouchJobBoard(ctx context.Context, id int64, at time.Time) (*tracker.JobBoard, error) {
	var b tracker.JobBoard
	err := scanBoard(s.queryRow(ctx, s.db,
		`UPDATE job_boards SET last_visited = ?, updated_at = ?
		 WHERE id = ?
		 RETURNING `+boardColumns,
		s.dialect.timeArg(at), s.dialect.timeArg(at), id), &b)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("job board", id)
	}
	if err != nil {
		return nil, fmt.Errorf("touchJobBoard: %w", err)
	}
	return &b, nil
}

func (s *Store) ListJobBoards(ctx context.Context) ([]tracker.JobBoard, error) {
	rows, err := s.query(ctx, s.db, `SELECT `+boardColumns+` FROM job_boards ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listJobBoards query: %w", err)
	}
	defer rows.Close()

	out := make([]tracker.JobBoard, 0)
	for rows.Next() {
		var b tracker.JobBoard
		if err := scanBoard(rows, &b); err != nil {
			return nil, fmt.Errorf("listJobBoards scan: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listJobBoards rows: %w", err)
	}
	tracker.SortJobBoards(out)
	return out, nil
}

// ─── Work history ────────────────────────────────────────────────────────────

func (s *Store) CreateWorkExperience(ctx context.Context, exp *tracker.WorkExperience) error {
	err := s.queryRow(ctx, s.db,
		`INSERT INTO work_experiences (job_title, company_name, company_url, start_date, end_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`,
		exp.JobTitle, exp.CompanyName, exp.CompanyURL,
		s.dialect.dateArg(exp.StartDate), s.dialect.dateArg(exp.EndDate),
		s.dialect.timeArg(exp.CreatedAt), s.dialect.timeArg(exp.UpdatedAt),
	).Scan(&exp.ID)
	if err != nil {
		return fmt.Errorf("createWorkExperience: %w", err)
	}
	return nil
}

func (s *Store) CreateWorkAchievement(ctx context.Context, ach *tracker.WorkAchievement) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.exists(ctx, tx, "work_experiences", "work experience", ach.WorkExperienceID); err != nil {
			return err
		}
		err := s.queryRow(ctx, tx,
			`INSERT INTO work_achievements (work_experience_id, description, created_at, updated_at)
			 VALUES (?, ?, ?, ?)
			 RETURNING id`,
			ach.WorkExperienceID, ach.Description,
			s.dialect.timeArg(ach.CreatedAt), s.dialect.timeArg(ach.UpdatedAt),
		).Scan(&ach.ID)
		if err != nil {
			return fmt.Errorf("createWorkAchievement: %w", err)
		}
		return nil
	})
}

func (s *Store) UpdateWorkAchievement(ctx context.Context, id int64, description string, at time.Time) (*tracker.WorkAchievement, error) {
	var a tracker.WorkAchievement
	err := s.queryRow(ctx, s.db,
		`UPDATE work_achievements SET description = ?, updated_at = ?
		 WHERE id = ?
		 RETURNING id, work_experience_id, description, created_at, updated_at`,
		description, s.dialect.timeArg(at), id,
	).Scan(&a.ID, &a.WorkExperienceID, &a.Description, timeCol(&a.CreatedAt), timeCol(&a.UpdatedAt))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("work achievement", id)
	}
	if err != nil {
		return nil, fmt.Errorf("updateWorkAchievement: %w", err)
	}
	return &a, nil
}

func (s *Store) ListWorkExperiences(ctx context.Context) ([]tracker.WorkExperience, error) {
	rows, err := s.query(ctx, s.db,
		`SELECT id, job_title, company_name, company_url, start_date, end_date, created_at, updated_at
		 FROM work_experiences ORDER BY start_date DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("listWorkExperiences query: %w", err)
	}
	exps := make([]tracker.WorkExperience, 0)
	index := make(map[int64]int)
	for rows.Next() {
		var e tracker.WorkExperience
		if err := rows.Scan(&e.ID, &e.JobTitle, &e.CompanyName, &e.CompanyURL,
			timeCol(&e.StartDate), timeCol(&e.EndDate), timeCol(&e.CreatedAt), timeCol(&e.UpdatedAt)); err != nil {
			rows.Close()
			return nil, fmt.Errorf("listWorkExperiences scan: %w", err)
		}
		e.Achievements = []tracker.WorkAchievement{}
		index[e.ID] = len(exps)
		exps = append(exps, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listWorkExperiences rows: %w", err)
	}

	achRows, err := s.query(ctx, s.db,
		`SELECT id, work_experience_id, description, created_at, updated_at
		 FROM work_achievements ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listWorkAchievements query: %w", err)
	}
	defer achRows.Close()
	for achRows.Next() {
		var a tracker.WorkAchievement
		if err := achRows.Scan(&a.ID, &a.WorkExperienceID, &a.Description,
			timeCol(&a.CreatedAt), timeCol(&a.UpdatedAt)); err != nil {
			return nil, fmt.Errorf("listWorkAchievements scan: %w", err)
		}
		if i, ok := index[a.WorkExperienceID]; ok {
			exps[i].Achievements = append(exps[i].Achievements, a)
		}
	}
	return exps, achRows.Err()
}
