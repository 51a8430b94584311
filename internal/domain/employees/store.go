package employees

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"opshub/internal/domain/auth"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const employeeColumns = `
  u.id, u.name, u.email, u.role, COALESCE(u.department, ''), COALESCE(u.designation, ''),
  u.manager_id, u.base_salary, COALESCE(u.currency, ''), u.status,
  u.joined_at, u.last_login_at, u.created_at, u.updated_at`

func scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	err := row.Scan(
		&e.ID, &e.Name, &e.Email, &e.Role, &e.Department, &e.Designation,
		&e.ManagerID, &e.BaseSalary, &e.Currency, &e.Status,
		&e.JoinedAt, &e.LastLoginAt, &e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

func (s *Store) List(ctx context.Context, scope auth.Scope, department, status string, limit, offset int) ([]Employee, error) {
	query := `
    SELECT ` + employeeColumns + `
    FROM users u
    WHERE 1=1`
	var args []any

	switch scope.Kind {
	case auth.ScopeAll:
	case auth.ScopeTeam:
		args = append(args, scope.UserID)
		query += " AND (u.manager_id = $1 OR u.id = $1)"
	case auth.ScopeSelf:
		args = append(args, scope.UserID)
		query += " AND u.id = $1"
	default:
		return nil, nil
	}

	if department != "" {
		args = append(args, department)
		query += " AND u.department = $" + strconv.Itoa(len(args))
	}
	if status != "" {
		args = append(args, status)
		query += " AND u.status = $" + strconv.Itoa(len(args))
	}

	args = append(args, limit, offset)
	query += " ORDER BY u.name" +
		" LIMIT $" + strconv.Itoa(len(args)-1) +
		" OFFSET $" + strconv.Itoa(len(args))

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, employeeID string) (Employee, error) {
	e, err := scanEmployee(s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM users u
    WHERE u.id = $1
  `, employeeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	return e, err
}

func (s *Store) Create(ctx context.Context, in CreateInput, passwordHash string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO users (name, email, password_hash, role, department, designation, manager_id, base_salary, currency, status, joined_at)
    VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8, NULLIF($9, ''), 'active', $10)
    RETURNING id
  `, in.Name, in.Email, passwordHash, in.Role, in.Department, in.Designation, in.ManagerID, in.BaseSalary, in.Currency, in.JoinedAt).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return "", ErrEmailTaken
		}
		return "", err
	}
	return id, nil
}

func (s *Store) Update(ctx context.Context, employeeID string, in UpdateInput) error {
	query := "UPDATE users SET updated_at = NOW()"
	var args []any

	set := func(column string, value any) {
		args = append(args, value)
		query += ", " + column + " = $" + strconv.Itoa(len(args))
	}
	if in.Name != nil {
		set("name", *in.Name)
	}
	if in.Role != nil {
		set("role", *in.Role)
	}
	if in.Department != nil {
		set("department", *in.Department)
	}
	if in.Designation != nil {
		set("designation", *in.Designation)
	}
	if in.ManagerID != nil {
		set("manager_id", *in.ManagerID)
	}
	if in.BaseSalary != nil {
		set("base_salary", *in.BaseSalary)
	}
	if in.Currency != nil {
		set("currency", *in.Currency)
	}

	args = append(args, employeeID)
	query += " WHERE id = $" + strconv.Itoa(len(args))

	tag, err := s.DB.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Deactivate soft-deletes: the row stays for history, sessions are revoked
// and the user drops out of active headcounts.
func (s *Store) Deactivate(ctx context.Context, employeeID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE users SET status = 'inactive', updated_at = NOW()
    WHERE id = $1 AND status = 'active'
  `, employeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := s.DB.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)", employeeID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrAlreadyRemoved
	}
	_, err = s.DB.Exec(ctx, "UPDATE sessions SET revoked_at = NOW() WHERE user_id = $1 AND revoked_at IS NULL", employeeID)
	return err
}
