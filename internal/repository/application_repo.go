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

const applicationColumns = `
	id, project_id, freelancer_id, name, email, bid_budget, proposed_deadline, reason,
	status, proposed_status, awaiting_approval, proposed_at, applied_at, updated_at`

// ApplicationRepository persists bids and their propose/approve state.
type ApplicationRepository struct {
	db     *pgxpool.Pool
	events *outbox.Repository
	logger *zap.Logger
}

func NewApplicationRepository(db *pgxpool.Pool, events *outbox.Repository, logger *zap.Logger) *ApplicationRepository {
	return &ApplicationRepository{
		db:     db,
		events: events,
		logger: logger,
	}
}

func (r *ApplicationRepository) Insert(ctx context.Context, a *model.Application, events ...outbox.Pending) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO applications (project_id, freelancer_id, name, email, bid_budget,
			                          proposed_deadline, reason, status, applied_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id
		`
		err := tx.QueryRow(ctx, query,
			a.ProjectID, a.FreelancerID, a.Name, a.Email, a.BidBudget,
			a.ProposedDeadline, a.Reason, a.Status, a.AppliedAt, a.UpdatedAt,
		).Scan(&a.ID)
		if err != nil {
			return fmt.Errorf("failed to insert application: %w", err)
		}

		return r.insertEvents(ctx, tx, int64(a.ID), events)
	})
}

func (r *ApplicationRepository) Update(ctx context.Context, a *model.Application, events ...outbox.Pending) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		if err := r.updateRow(ctx, tx, a); err != nil {
			return err
		}
		return r.insertEvents(ctx, tx, int64(a.ID), events)
	})
}

// UpdateWithProject writes the application and the linked project in one
// transaction, so a resolved proposal and its project change land together.
func (r *ApplicationRepository) UpdateWithProject(ctx context.Context, a *model.Application, p *model.Project, events ...outbox.Pending) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		if err := r.updateRow(ctx, tx, a); err != nil {
			return err
		}

		query := `
			UPDATE projects
			SET status = $1, progress = $2, freelancer_id = $3,
			    start_date = $4, end_date = $5, updated_at = $6,
			    version = version + 1
			WHERE id = $7 AND version = $8
		`
		tag, err := tx.Exec(ctx, query,
			p.Status, p.Progress, p.FreelancerID,
			p.StartDate, p.EndDate, p.UpdatedAt,
			p.ID, p.Version,
		)
		if err != nil {
			return fmt.Errorf("failed to update linked project: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("project %d at version %d: %w", p.ID, p.Version, lifecycle.ErrVersionConflict)
		}
		p.Version++

		return r.insertEvents(ctx, tx, int64(a.ID), events)
	})
}

func (r *ApplicationRepository) GetByID(ctx context.Context, applicationID int) (*model.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`

	a, err := r.scanOne(r.db.QueryRow(ctx, query, applicationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("application %d: %w", applicationID, lifecycle.ErrNotFound)
		}
		return nil, err
	}
	return a, nil
}

// FindLive returns the freelancer's Pending or Accepted application on a
// project, or nil when there is none. Rejected applications do not count.
func (r *ApplicationRepository) FindLive(ctx context.Context, projectID, freelancerID int) (*model.Application, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE project_id = $1 AND freelancer_id = $2 AND status IN ('Pending', 'Accepted')
		ORDER BY applied_at DESC
		LIMIT 1
	`
	a, err := r.scanOne(r.db.QueryRow(ctx, query, projectID, freelancerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

func (r *ApplicationRepository) ListByFreelancer(ctx context.Context, freelancerID int) ([]model.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE freelancer_id = $1 ORDER BY applied_at DESC`
	return r.list(ctx, query, freelancerID)
}

func (r *ApplicationRepository) ListByProject(ctx context.Context, projectID int) ([]model.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE project_id = $1 ORDER BY applied_at DESC`
	return r.list(ctx, query, projectID)
}

func (r *ApplicationRepository) updateRow(ctx context.Context, tx pgx.Tx, a *model.Application) error {
	query := `
		UPDATE applications
		SET status = $1, proposed_status = $2, awaiting_approval = $3,
		    proposed_at = $4, updated_at = $5
		WHERE id = $6
	`
	tag, err := tx.Exec(ctx, query,
		a.Status, a.ProposedStatus, a.AwaitingApproval,
		a.ProposedAt, a.UpdatedAt, a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("application %d: %w", a.ID, lifecycle.ErrNotFound)
	}
	return nil
}

func (r *ApplicationRepository) list(ctx context.Context, query string, arg any) ([]model.Application, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var apps []model.Application
	for rows.Next() {
		var a model.Application
		err := rows.Scan(
			&a.ID, &a.ProjectID, &a.FreelancerID, &a.Name, &a.Email,
			&a.BidBudget, &a.ProposedDeadline, &a.Reason,
			&a.Status, &a.ProposedStatus, &a.AwaitingApproval,
			&a.ProposedAt, &a.AppliedAt, &a.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, a)
	}

	return apps, rows.Err()
}

func (r *ApplicationRepository) scanOne(row pgx.Row) (*model.Application, error) {
	var a model.Application
	err := row.Scan(
		&a.ID, &a.ProjectID, &a.FreelancerID, &a.Name, &a.Email,
		&a.BidBudget, &a.ProposedDeadline, &a.Reason,
		&a.Status, &a.ProposedStatus, &a.AwaitingApproval,
		&a.ProposedAt, &a.AppliedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ApplicationRepository) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
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

func (r *ApplicationRepository) insertEvents(ctx context.Context, tx pgx.Tx, aggregateID int64, events []outbox.Pending) error {
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
