package attendance

import (
	"context"
	"errors"
	"strconv"
	"time"

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

const recordColumns = `
  a.id, a.user_id, COALESCE(u.name, ''), a.work_date, a.status,
  a.check_in_time, a.check_out_time, a.worked_hours, COALESCE(a.note, ''),
  a.created_at, a.updated_at`

func scanRecord(row pgx.Row) (Record, error) {
	var r Record
	err := row.Scan(
		&r.ID, &r.UserID, &r.UserName, &r.WorkDate, &r.Status,
		&r.CheckInTime, &r.CheckOutTime, &r.WorkedHours, &r.Note,
		&r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

// CheckIn records the start of a working day. The unique index on
// (user_id, work_date) turns a second check-in into ErrAlreadyCheckedIn.
func (s *Store) CheckIn(ctx context.Context, userID string, at time.Time) (Record, error) {
	workDate := DayOf(at)
	row := s.DB.QueryRow(ctx, `
    INSERT INTO attendance_records (user_id, work_date, status, check_in_time)
    VALUES ($1, $2, $3, $4)
    RETURNING id, user_id, '', work_date, status, check_in_time, check_out_time,
              worked_hours, COALESCE(note, ''), created_at, updated_at
  `, userID, workDate, StatusPresent, at)

	r, err := scanRecord(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Record{}, ErrAlreadyCheckedIn
		}
		return Record{}, err
	}
	return r, nil
}

// CheckOut closes today's open record and recomputes worked hours and status.
func (s *Store) CheckOut(ctx context.Context, userID string, at time.Time) (Record, error) {
	workDate := DayOf(at)

	r, err := scanRecord(s.DB.QueryRow(ctx, `
    SELECT `+recordColumns+`
    FROM attendance_records a
    JOIN users u ON a.user_id = u.id
    WHERE a.user_id = $1 AND a.work_date = $2
  `, userID, workDate))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotCheckedIn
		}
		return Record{}, err
	}
	if r.CheckInTime == nil {
		return Record{}, ErrNotCheckedIn
	}
	if r.CheckOutTime != nil {
		return Record{}, ErrAlreadyCheckedOut
	}

	hours := WorkedHours(r.CheckInTime, &at)
	status := StatusForHours(hours)
	_, err = s.DB.Exec(ctx, `
    UPDATE attendance_records
    SET check_out_time = $1, worked_hours = $2, status = $3, updated_at = NOW()
    WHERE id = $4
  `, at, hours, status, r.ID)
	if err != nil {
		return Record{}, err
	}

	r.CheckOutTime = &at
	r.WorkedHours = &hours
	r.Status = status
	return r, nil
}

// Mark upserts a day's status on behalf of an administrator, e.g. flagging
// absences or leave days that the check-in flow never touches.
func (s *Store) Mark(ctx context.Context, userID string, workDate time.Time, status, note string) error {
	if !ValidStatus(status) {
		return ErrUnknownStatus
	}
	_, err := s.DB.Exec(ctx, `
    INSERT INTO attendance_records (user_id, work_date, status, note)
    VALUES ($1, $2, $3, NULLIF($4, ''))
    ON CONFLICT (user_id, work_date)
    DO UPDATE SET status = EXCLUDED.status, note = EXCLUDED.note, updated_at = NOW()
  `, userID, DayOf(workDate), status, note)
	return err
}

func (s *Store) List(ctx context.Context, scope auth.Scope, from, to time.Time, limit, offset int) ([]Record, error) {
	query := `
    SELECT ` + recordColumns + `
    FROM attendance_records a
    JOIN users u ON a.user_id = u.id
    WHERE a.work_date BETWEEN $1 AND $2`
	args := []any{DayOf(from), DayOf(to)}

	switch scope.Kind {
	case auth.ScopeAll:
	case auth.ScopeTeam:
		args = append(args, scope.UserID)
		query += " AND u.manager_id = $" + strconv.Itoa(len(args))
	case auth.ScopeSelf:
		args = append(args, scope.UserID)
		query += " AND a.user_id = $" + strconv.Itoa(len(args))
	default:
		return nil, nil
	}

	args = append(args, limit, offset)
	query += " ORDER BY a.work_date DESC, u.name" +
		" LIMIT $" + strconv.Itoa(len(args)-1) +
		" OFFSET $" + strconv.Itoa(len(args))

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// ManagerOf returns the user's manager id, empty when unset.
func (s *Store) ManagerOf(ctx context.Context, userID string) (string, error) {
	var managerID string
	err := s.DB.QueryRow(ctx,
		"SELECT COALESCE(manager_id::text, '') FROM users WHERE id = $1", userID).Scan(&managerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrRecordNotFound
	}
	return managerID, err
}

func (s *Store) Summarize(ctx context.Context, userID string, from, to time.Time) (Summary, error) {
	sum := Summary{UserID: userID}
	err := s.DB.QueryRow(ctx, `
    SELECT
      COUNT(1) FILTER (WHERE status = 'present'),
      COUNT(1) FILTER (WHERE status = 'absent'),
      COUNT(1) FILTER (WHERE status = 'on_leave'),
      COUNT(1) FILTER (WHERE status = 'half_day'),
      COALESCE(SUM(worked_hours), 0)
    FROM attendance_records
    WHERE user_id = $1 AND work_date BETWEEN $2 AND $3
  `, userID, DayOf(from), DayOf(to)).Scan(
		&sum.PresentDays, &sum.AbsentDays, &sum.LeaveDays, &sum.HalfDays, &sum.WorkedHours,
	)
	return sum, err
}
