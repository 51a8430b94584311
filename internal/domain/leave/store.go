package leave

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

func (s *Store) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return s.DB.Begin(ctx)
}

func (s *Store) ListTypes(ctx context.Context) ([]Type, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, code, is_paid, entitlement, created_at
    FROM leave_types
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []Type
	for rows.Next() {
		var t Type
		if err := rows.Scan(&t.ID, &t.Name, &t.Code, &t.IsPaid, &t.Entitlement, &t.CreatedAt); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (s *Store) CreateType(ctx context.Context, t Type) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO leave_types (name, code, is_paid, entitlement)
    VALUES ($1, $2, $3, $4)
    RETURNING id
  `, t.Name, t.Code, t.IsPaid, t.Entitlement).Scan(&id)
	return id, err
}

func (s *Store) GetType(ctx context.Context, typeID string) (Type, error) {
	var t Type
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, code, is_paid, entitlement, created_at
    FROM leave_types
    WHERE id = $1
  `, typeID).Scan(&t.ID, &t.Name, &t.Code, &t.IsPaid, &t.Entitlement, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Type{}, ErrTypeNotFound
	}
	return t, err
}

const requestColumns = `
  r.id, r.user_id, COALESCE(u.name, ''), r.leave_type_id, r.start_date, r.end_date,
  r.start_half, r.end_half, r.days, COALESCE(r.reason, ''), r.status,
  r.decided_by, r.decided_at, r.created_at`

func scanRequest(row pgx.Row) (Request, error) {
	var r Request
	err := row.Scan(
		&r.ID, &r.UserID, &r.UserName, &r.LeaveTypeID, &r.StartDate, &r.EndDate,
		&r.StartHalf, &r.EndHalf, &r.Days, &r.Reason, &r.Status,
		&r.DecidedBy, &r.DecidedAt, &r.CreatedAt,
	)
	return r, err
}

func (s *Store) ListRequests(ctx context.Context, scope auth.Scope, status string, limit, offset int) ([]Request, error) {
	query := `
    SELECT ` + requestColumns + `
    FROM leave_requests r
    JOIN users u ON r.user_id = u.id
    WHERE 1=1`
	var args []any

	switch scope.Kind {
	case auth.ScopeAll:
	case auth.ScopeTeam:
		args = append(args, scope.UserID)
		query += " AND u.manager_id = $" + strconv.Itoa(len(args))
	case auth.ScopeSelf:
		args = append(args, scope.UserID)
		query += " AND r.user_id = $" + strconv.Itoa(len(args))
	default:
		return nil, nil
	}

	if status != "" {
		args = append(args, status)
		query += " AND r.status = $" + strconv.Itoa(len(args))
	}

	args = append(args, limit, offset)
	query += " ORDER BY r.created_at DESC" +
		" LIMIT $" + strconv.Itoa(len(args)-1) +
		" OFFSET $" + strconv.Itoa(len(args))

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

func (s *Store) GetRequest(ctx context.Context, requestID string) (Request, error) {
	r, err := scanRequest(s.DB.QueryRow(ctx, `
    SELECT `+requestColumns+`
    FROM leave_requests r
    JOIN users u ON r.user_id = u.id
    WHERE r.id = $1
  `, requestID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Request{}, ErrRequestNotFound
	}
	return r, err
}

func (s *Store) CreateRequestTx(ctx context.Context, tx pgx.Tx, r Request) (string, error) {
	var id string
	err := tx.QueryRow(ctx, `
    INSERT INTO leave_requests (user_id, leave_type_id, start_date, end_date, start_half, end_half, days, reason, status)
    VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9)
    RETURNING id
  `, r.UserID, r.LeaveTypeID, r.StartDate, r.EndDate, r.StartHalf, r.EndHalf, r.Days, r.Reason, StatusPending).Scan(&id)
	return id, err
}

// AddPendingTx moves days into the pending column, creating the balance row
// on first use of a leave type.
func (s *Store) AddPendingTx(ctx context.Context, tx pgx.Tx, userID, typeID string, days float64) error {
	_, err := tx.Exec(ctx, `
    INSERT INTO leave_balances (user_id, leave_type_id, balance, pending, used)
    VALUES ($1, $2, 0, $3, 0)
    ON CONFLICT (user_id, leave_type_id)
    DO UPDATE SET pending = leave_balances.pending + EXCLUDED.pending, updated_at = NOW()
  `, userID, typeID, days)
	return err
}

func (s *Store) DecideRequestTx(ctx context.Context, tx pgx.Tx, requestID, status, decidedBy string, decidedAt time.Time) error {
	tag, err := tx.Exec(ctx, `
    UPDATE leave_requests
    SET status = $1, decided_by = $2, decided_at = $3
    WHERE id = $4 AND status = $5
  `, status, decidedBy, decidedAt, requestID, StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidState
	}
	return nil
}

// SettlePendingTx clears the pending days; approved requests additionally
// move them into used.
func (s *Store) SettlePendingTx(ctx context.Context, tx pgx.Tx, userID, typeID string, days float64, approved bool) error {
	used := 0.0
	if approved {
		used = days
	}
	_, err := tx.Exec(ctx, `
    UPDATE leave_balances
    SET pending = pending - $1, used = used + $2, updated_at = NOW()
    WHERE user_id = $3 AND leave_type_id = $4
  `, days, used, userID, typeID)
	return err
}

// MarkAttendanceTx writes on_leave attendance rows for every day of an
// approved request so attendance-rate metrics see the absence as excused.
func (s *Store) MarkAttendanceTx(ctx context.Context, tx pgx.Tx, userID string, start, end time.Time) error {
	_, err := tx.Exec(ctx, `
    INSERT INTO attendance_records (user_id, work_date, status)
    SELECT $1, d::date, 'on_leave'
    FROM generate_series($2::date, $3::date, '1 day') d
    ON CONFLICT (user_id, work_date) DO UPDATE SET status = 'on_leave', updated_at = NOW()
  `, userID, start, end)
	return err
}

func (s *Store) ManagerOf(ctx context.Context, userID string) (string, error) {
	var managerID string
	err := s.DB.QueryRow(ctx,
		"SELECT COALESCE(manager_id::text, '') FROM users WHERE id = $1", userID).Scan(&managerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return managerID, err
}

func (s *Store) ListBalances(ctx context.Context, userID string) ([]Balance, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT user_id, leave_type_id, balance, pending, used, updated_at
    FROM leave_balances
    WHERE user_id = $1
  `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []Balance
	for rows.Next() {
		var b Balance
		if err := rows.Scan(&b.UserID, &b.LeaveTypeID, &b.Balance, &b.Pending, &b.Used, &b.UpdatedAt); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

func (s *Store) AdjustBalance(ctx context.Context, userID, typeID string, amount float64) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO leave_balances (user_id, leave_type_id, balance, pending, used)
    VALUES ($1, $2, $3, 0, 0)
    ON CONFLICT (user_id, leave_type_id)
    DO UPDATE SET balance = leave_balances.balance + EXCLUDED.balance, updated_at = NOW()
  `, userID, typeID, amount)
	return err
}
