package payroll

import (
	"context"
	"encoding/json"
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

const payslipColumns = `
  p.id, p.user_id, COALESCE(u.name, ''), p.month, p.year,
  p.base_salary, p.gross, p.deductions, p.net, p.currency,
  p.components, p.status, COALESCE(p.file_path, ''), p.created_at`

func scanPayslip(row pgx.Row) (Payslip, error) {
	var p Payslip
	var components []byte
	err := row.Scan(
		&p.ID, &p.UserID, &p.UserName, &p.Month, &p.Year,
		&p.BaseSalary, &p.Gross, &p.Deductions, &p.Net, &p.Currency,
		&components, &p.Status, &p.FilePath, &p.CreatedAt,
	)
	if err != nil {
		return Payslip{}, err
	}
	if len(components) > 0 {
		if err := json.Unmarshal(components, &p.Components); err != nil {
			return Payslip{}, err
		}
	}
	return p, nil
}

// Upsert writes a draft payslip keyed by (user, month, year). Recomputing a
// month's payroll overwrites the previous draft rather than duplicating it.
func (s *Store) Upsert(ctx context.Context, p Payslip) (string, error) {
	components, err := json.Marshal(p.Components)
	if err != nil {
		return "", err
	}
	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO payslips (user_id, month, year, base_salary, gross, deductions, net, currency, components, status)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    ON CONFLICT (user_id, month, year)
    DO UPDATE SET base_salary = EXCLUDED.base_salary, gross = EXCLUDED.gross,
                  deductions = EXCLUDED.deductions, net = EXCLUDED.net,
                  currency = EXCLUDED.currency, components = EXCLUDED.components
    RETURNING id
  `, p.UserID, p.Month, p.Year, p.BaseSalary, p.Gross, p.Deductions, p.Net, p.Currency, components, StatusDraft).Scan(&id)
	return id, err
}

func (s *Store) Get(ctx context.Context, payslipID string) (Payslip, error) {
	p, err := scanPayslip(s.DB.QueryRow(ctx, `
    SELECT `+payslipColumns+`
    FROM payslips p
    JOIN users u ON p.user_id = u.id
    WHERE p.id = $1
  `, payslipID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Payslip{}, ErrPayslipNotFound
	}
	return p, err
}

func (s *Store) List(ctx context.Context, scope auth.Scope, month, year, limit, offset int) ([]Payslip, error) {
	query := `
    SELECT ` + payslipColumns + `
    FROM payslips p
    JOIN users u ON p.user_id = u.id
    WHERE 1=1`
	var args []any

	switch scope.Kind {
	case auth.ScopeAll:
	case auth.ScopeTeam:
		args = append(args, scope.UserID)
		query += " AND u.manager_id = $" + strconv.Itoa(len(args))
	case auth.ScopeSelf:
		args = append(args, scope.UserID)
		query += " AND p.user_id = $" + strconv.Itoa(len(args))
	default:
		return nil, nil
	}

	if month > 0 {
		args = append(args, month)
		query += " AND p.month = $" + strconv.Itoa(len(args))
	}
	if year > 0 {
		args = append(args, year)
		query += " AND p.year = $" + strconv.Itoa(len(args))
	}

	args = append(args, limit, offset)
	query += " ORDER BY p.year DESC, p.month DESC, u.name" +
		" LIMIT $" + strconv.Itoa(len(args)-1) +
		" OFFSET $" + strconv.Itoa(len(args))

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payslips []Payslip
	for rows.Next() {
		p, err := scanPayslip(rows)
		if err != nil {
			return nil, err
		}
		payslips = append(payslips, p)
	}
	return payslips, rows.Err()
}

func (s *Store) Publish(ctx context.Context, payslipID, filePath string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE payslips
    SET status = $1, file_path = NULLIF($2, '')
    WHERE id = $3 AND status = $4
  `, StatusPublished, filePath, payslipID, StatusDraft)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := s.DB.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM payslips WHERE id = $1)", payslipID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrPayslipNotFound
		}
		return ErrAlreadyPublished
	}
	return nil
}

type SalaryRecord struct {
	UserID     string
	Name       string
	Email      string
	BaseSalary float64
	Currency   string
}

func (s *Store) ActiveSalaries(ctx context.Context, department string) ([]SalaryRecord, error) {
	query := `
    SELECT id, name, email, base_salary, currency
    FROM users
    WHERE status = 'active' AND base_salary IS NOT NULL`
	var args []any
	if department != "" {
		args = append(args, department)
		query += " AND department = $1"
	}
	query += " ORDER BY name"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []SalaryRecord
	for rows.Next() {
		var r SalaryRecord
		if err := rows.Scan(&r.UserID, &r.Name, &r.Email, &r.BaseSalary, &r.Currency); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// UnpaidAbsenceDays counts marked absences within the payslip month.
func (s *Store) UnpaidAbsenceDays(ctx context.Context, userID string, from, to time.Time) (float64, error) {
	var days float64
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM attendance_records
    WHERE user_id = $1 AND status = 'absent' AND work_date BETWEEN $2 AND $3
  `, userID, from, to).Scan(&days)
	return days, err
}
