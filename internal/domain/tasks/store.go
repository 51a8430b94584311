package tasks

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"opshub/internal/domain/auth"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const taskColumns = `
    SELECT t.id, t.title, COALESCE(t.description, ''), t.assignee_id, t.assigned_by,
           COALESCE(u.manager_id::text, ''), COALESCE(u.department, ''),
           t.deadline, t.status, t.completed_at, t.rating, COALESCE(t.rated_by::text, ''),
           COALESCE(t.report, ''), t.reported_at, t.created_at
    FROM tasks t
    JOIN users u ON t.assignee_id = u.id
`

func scanTask(row pgx.Row) (Task, error) {
	var task Task
	err := row.Scan(&task.ID, &task.Title, &task.Description, &task.AssigneeID, &task.AssignedBy,
		&task.ManagerID, &task.Department, &task.Deadline, &task.Status, &task.CompletedAt, &task.Rating,
		&task.RatedBy, &task.Report, &task.ReportedAt, &task.CreatedAt)
	return task, err
}

// List applies the caller's three-tier access scope as a row filter.
func (s *Store) List(ctx context.Context, scope auth.Scope, status string, limit, offset int) ([]Task, error) {
	query := taskColumns + " WHERE ($1 = '' OR t.status = $1)"
	args := []any{status}
	switch scope.Kind {
	case auth.ScopeAll:
	case auth.ScopeTeam:
		query += " AND u.manager_id = $2"
		args = append(args, scope.UserID)
	case auth.ScopeSelf:
		query += " AND t.assignee_id = $2"
		args = append(args, scope.UserID)
	default:
		return nil, nil
	}
	query += " ORDER BY t.deadline LIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, taskID string) (Task, error) {
	task, err := scanTask(s.DB.QueryRow(ctx, taskColumns+" WHERE t.id = $1", taskID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Task{}, ErrTaskNotFound
	}
	return task, err
}

func (s *Store) Create(ctx context.Context, task Task) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO tasks (title, description, assignee_id, assigned_by, deadline, status)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, task.Title, task.Description, task.AssigneeID, task.AssignedBy, task.Deadline, task.Status).Scan(&id)
	return id, err
}

func (s *Store) UpdateStatus(ctx context.Context, taskID, status string, completedAt *time.Time) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE tasks SET status = $2, completed_at = $3 WHERE id = $1
  `, taskID, status, completedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (s *Store) SetRating(ctx context.Context, taskID string, rating int, ratedBy string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE tasks SET rating = $2, rated_by = $3 WHERE id = $1 AND status = 'completed'
  `, taskID, rating, ratedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotCompleted
	}
	return nil
}

// FileReport writes the completion report only when none exists; the filter
// on reported_at makes the immutability rule a single guarded update.
func (s *Store) FileReport(ctx context.Context, taskID, report string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE tasks SET report = $2, reported_at = now()
    WHERE id = $1 AND reported_at IS NULL
  `, taskID, report)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := s.DB.QueryRow(ctx, "SELECT reported_at IS NOT NULL FROM tasks WHERE id = $1", taskID).Scan(&exists); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrTaskNotFound
			}
			return err
		}
		if exists {
			return ErrReportAlreadyFiled
		}
		return ErrTaskNotFound
	}
	return nil
}
