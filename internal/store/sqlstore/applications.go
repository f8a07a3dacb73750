package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"jobtracker/internal/tracker"
)

const applicationColumns = `id, job_title, company_name, company_url, job_description,
	resume_version, salary, cover_letter, status, source, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner, a *tracker.Application) error {
	return row.Scan(
		&a.ID, &a.JobTitle, &a.CompanyName, &a.CompanyURL, &a.JobDescription,
		&a.ResumeVersion, &a.Salary, &a.CoverLetter, &a.Status, &a.Source,
		timeCol(&a.CreatedAt), timeCol(&a.UpdatedAt),
	)
}

func (s *Store) CreateApplication(ctx context.Context, app *tracker.Application) error {
	err := s.queryRow(ctx, s.db,
		`INSERT INTO job_applications (job_title, company_name, company_url, job_description,
		        resume_version, salary, cover_letter, status, source, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`,
		app.JobTitle, app.CompanyName, app.CompanyURL, app.JobDescription,
		app.ResumeVersion, app.Salary, app.CoverLetter, string(app.Status), string(app.Source),
		s.dialect.timeArg(app.CreatedAt), s.dialect.timeArg(app.UpdatedAt),
	).Scan(&app.ID)
	if err != nil {
		return fmt.Errorf("createApplication: %w", err)
	}
	return nil
}

func (s *Store) GetApplication(ctx context.Context, id int64) (*tracker.Application, error) {
	return s.getApplication(ctx, s.db, id, "")
}

func (s *Store) getApplication(ctx context.Context, q queryer, id int64, suffix string) (*tracker.Application, error) {
	var a tracker.Application
	err := scanApplication(s.queryRow(ctx, q,
		`SELECT `+applicationColumns+` FROM job_applications WHERE id = ?`+suffix, id), &a)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("application", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getApplication: %w", err)
	}
	return &a, nil
}

func (s *Store) ListApplications(ctx context.Context, filter tracker.ApplicationFilter) ([]tracker.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM job_applications WHERE 1=1`
	var args []any
	if !filter.CreatedFrom.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, s.dialect.timeArg(filter.CreatedFrom))
	}
	if !filter.CreatedTo.IsZero() {
		query += ` AND created_at <= ?`
		args = append(args, s.dialect.timeArg(filter.CreatedTo))
	}
	query += ` ORDER BY id`

	rows, err := s.query(ctx, s.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listApplications query: %w", err)
	}
	defer rows.Close()

	apps := make([]tracker.Application, 0)
	for rows.Next() {
		var a tracker.Application
		if err := scanApplication(rows, &a); err != nil {
			return nil, fmt.Errorf("listApplications scan: %w", err)
		}
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listApplications rows: %w", err)
	}
	return apps, nil
}

func (s *Store) UpdateApplication(ctx context.Context, id int64, mutate tracker.MutateFunc) (*tracker.Application, error) {
	var out *tracker.Application
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		app, err := s.getApplication(ctx, tx, id, s.dialect.forUpdate())
		if err != nil {
			return err
		}
		step, err := mutate(app)
		if err != nil {
			return err
		}

		err = s.exec(ctx, tx,
			`UPDATE job_applications
			 SET resume_version = ?, salary = ?, cover_letter = ?,
			     status = ?, source = ?, updated_at = ?
			 WHERE id = ?`,
			app.ResumeVersion, app.Salary, app.CoverLetter,
			string(app.Status), string(app.Source), s.dialect.timeArg(app.UpdatedAt),
			id,
		)
		if err != nil {
			return fmt.Errorf("updateApplication: %w", err)
		}

		if step != nil {
			step.ApplicationID = id
			if err := s.insertStep(ctx, tx, step); err != nil {
				return err
			}
		}
		app.ID = id
		out = app
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ─── Steps ───────────────────────────────────────────────────────────────────

func (s *Store) insertStep(ctx context.Context, q queryer, step *tracker.Step) error {
	err := s.queryRow(ctx, q,
		`INSERT INTO steps (job_application_id, title, description, created_at)
		 VALUES (?, ?, ?, ?)
		 RETURNING id`,
		step.ApplicationID, step.Title, step.Description, s.dialect.timeArg(step.CreatedAt),
	).Scan(&step.ID)
	if err != nil {
		return fmt.Errorf("insertStep: %w", err)
	}
	return nil
}

func (s *Store) CreateStep(ctx context.Context, step *tracker.Step) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.exists(ctx, tx, "job_applications", "application", step.ApplicationID); err != nil {
			return err
		}
		return s.insertStep(ctx, tx, step)
	})
}

func (s *Store) ListSteps(ctx context.Context, applicationIDs ...int64) ([]tracker.Step, error) {
	where, args := inClause("job_application_id", applicationIDs)
	rows, err := s.query(ctx, s.db,
		`SELECT id, job_application_id, title, description, created_at
		 FROM steps WHERE `+where+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("listSteps query: %w", err)
	}
	defer rows.Close()

	steps := make([]tracker.Step, 0)
	for rows.Next() {
		var st tracker.Step
		if err := rows.Scan(&st.ID, &st.ApplicationID, &st.Title, &st.Description, timeCol(&st.CreatedAt)); err != nil {
			return nil, fmt.Errorf("listSteps scan: %w", err)
		}
		steps = append(steps, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listSteps rows: %w", err)
	}
	return steps, nil
}
