package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"talentlink/internal/model"
	"talentlink/internal/service/lifecycle"
	"talentlink/pkg/outbox"
)

const projectColumns = `
	id, client_id, freelancer_id, title, description, budget, duration, skills,
	status, progress, start_date, end_date, version, created_at, updated_at`

// ProjectRepository persists projects in Postgres. Mutations and their outbox
// events commit in one transaction; Update enforces the optimistic version.
type ProjectRepository struct {
	db     *pgxpool.Pool
	events *outbox.Repository
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, events *outbox.Repository, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{
		db:     db,
		events: events,
		logger: logger,
	}
}

func (r *ProjectRepository) Insert(ctx context.Context, p *model.Project, events ...outbox.Pending) error {
	r.logger.Debug("Inserting project",
		zap.Int("client_id", p.ClientID),
		zap.String("title", p.Title),
	)

	return r.inTx(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO projects (client_id, title, description, budget, duration, skills,
			                      status, progress, version, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING id
		`
		err := tx.QueryRow(ctx, query,
			p.ClientID, p.Title, p.Description, p.Budget, p.Duration, p.Skills,
			p.Status, p.Progress, p.Version, p.CreatedAt, p.UpdatedAt,
		).Scan(&p.ID)
		if err != nil {
			return fmt.Errorf("failed to insert project: %w", err)
		}

		return r.insertEvents(ctx, tx, int64(p.ID), events)
	})
}

func (r *ProjectRepository) Update(ctx context.Context, p *model.Project, events ...outbox.Pending) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		query := `
			UPDATE projects
			SET title = $1, description = $2, budget = $3, duration = $4, skills = $5,
			    status = $6, progress = $7, freelancer_id = $8,
			    start_date = $9, end_date = $10, updated_at = $11,
			    version = version + 1
			WHERE id = $12 AND version = $13
		`
		tag, err := tx.Exec(ctx, query,
			p.Title, p.Description, p.Budget, p.Duration, p.Skills,
			p.Status, p.Progress, p.FreelancerID,
			p.StartDate, p.EndDate, p.UpdatedAt,
			p.ID, p.Version,
		)
		if err != nil {
			return fmt.Errorf("failed to update project: %w", err)
		}
		if tag.RowsAffected() == 0 {
			// either the row is gone or someone wrote a newer version
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM projects WHERE id = $1)`, p.ID).Scan(&exists); err != nil {
				return fmt.Errorf("failed to check project existence: %w", err)
			}
			if !exists {
				return fmt.Errorf("project %d: %w", p.ID, lifecycle.ErrNotFound)
			}
			return fmt.Errorf("project %d at version %d: %w", p.ID, p.Version, lifecycle.ErrVersionConflict)
		}
		p.Version++

		return r.insertEvents(ctx, tx, int64(p.ID), events)
	})
}

func (r *ProjectRepository) Delete(ctx context.Context, projectID int, events ...outbox.Pending) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM applications WHERE project_id = $1`, projectID); err != nil {
			return fmt.Errorf("failed to delete project applications: %w", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM projects WHERE id = $1`, projectID)
		if err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("project %d: %w", projectID, lifecycle.ErrNotFound)
		}

		return r.insertEvents(ctx, tx, int64(projectID), events)
	})
}

func (r *ProjectRepository) DeleteByClient(ctx context.Context, clientID int) (int, error) {
	var n int
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			DELETE FROM applications
			WHERE project_id IN (SELECT id FROM projects WHERE client_id = $1)
		`, clientID); err != nil {
			return fmt.Errorf("failed to delete client applications: %w", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM projects WHERE client_id = $1`, clientID)
		if err != nil {
			return fmt.Errorf("failed to delete client projects: %w", err)
		}
		n = int(tag.RowsAffected())
		return nil
	})
	return n, err
}

func (r *ProjectRepository) GetByID(ctx context.Context, projectID int) (*model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	var p model.Project
	err := r.db.QueryRow(ctx, query, projectID).Scan(
		&p.ID, &p.ClientID, &p.FreelancerID, &p.Title, &p.Description,
		&p.Budget, &p.Duration, &p.Skills, &p.Status, &p.Progress,
		&p.StartDate, &p.EndDate, &p.Version, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("project %d: %w", projectID, lifecycle.ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) List(ctx context.Context, f lifecycle.ProjectFilter) ([]model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE 1=1`
	args := []any{}

	if f.Skill != "" {
		args = append(args, "%"+f.Skill+"%")
		query += fmt.Sprintf(" AND skills ILIKE $%d", len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.ClientID != 0 {
		args = append(args, f.ClientID)
		query += fmt.Sprintf(" AND client_id = $%d", len(args))
	}
	if f.FreelancerID != 0 {
		args = append(args, f.FreelancerID)
		query += fmt.Sprintf(" AND freelancer_id = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var p model.Project
		err := rows.Scan(
			&p.ID, &p.ClientID, &p.FreelancerID, &p.Title, &p.Description,
			&p.Budget, &p.Duration, &p.Skills, &p.Status, &p.Progress,
			&p.StartDate, &p.EndDate, &p.Version, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}

	return projects, rows.Err()
}

func (r *ProjectRepository) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *ProjectRepository) insertEvents(ctx context.Context, tx pgx.Tx, aggregateID int64, events []outbox.Pending) error {
	for _, e := range events {
		if e.AggregateID == 0 {
			e.AggregateID = aggregateID
		}
		if err := r.events.InsertPending(ctx, tx, e); err != nil {
			return err
		}
	}
	return nil
}
