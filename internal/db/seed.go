package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"opshub/internal/domain/auth"
	"opshub/internal/platform/config"
)

// Seed brings a fresh database to a usable state: one Super Admin account,
// the stock leave types, and the stock metric definitions. Every step is
// idempotent, re-running against a populated database is a no-op.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if err := ensureAdminUser(ctx, pool, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
		return err
	}
	if err := ensureLeaveTypes(ctx, pool); err != nil {
		return err
	}
	return ensureMetricDefinitions(ctx, pool)
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, email, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil
	}
	email = strings.ToLower(strings.TrimSpace(email))

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&id)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
    INSERT INTO users (name, email, password_hash, role, status)
    VALUES ('Super Admin', $1, $2, $3, 'active')
  `, email, hash, string(auth.RoleSuperAdmin))
	return err
}

func ensureLeaveTypes(ctx context.Context, pool *pgxpool.Pool) error {
	types := []struct {
		name        string
		code        string
		isPaid      bool
		entitlement float64
	}{
		{"Annual Leave", "annual", true, 21},
		{"Sick Leave", "sick", true, 7},
		{"Casual Leave", "casual", true, 7},
		{"Unpaid Leave", "unpaid", false, 0},
	}
	for _, lt := range types {
		_, err := pool.Exec(ctx, `
      INSERT INTO leave_types (name, code, is_paid, entitlement)
      VALUES ($1, $2, $3, $4)
      ON CONFLICT (code) DO NOTHING
    `, lt.name, lt.code, lt.isPaid, lt.entitlement)
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureMetricDefinitions(ctx context.Context, pool *pgxpool.Pool) error {
	f := func(v float64) *float64 { return &v }

	defs := []struct {
		code              string
		name              string
		kind              string
		formula           string
		target            *float64
		thresholdWarning  *float64
		thresholdCritical *float64
	}{
		{"kpi_task_completion", "Task Completion Rate", "kpi", "task_completion_rate", f(90), nil, nil},
		{"kpi_ontime_delivery", "On-Time Delivery Rate", "kpi", "ontime_delivery", f(85), nil, nil},
		{"kpi_avg_rating", "Average Task Rating", "kpi", "avg_task_rating", f(4), nil, nil},
		{"kpi_tasks_completed", "Tasks Completed", "kpi", "tasks_completed", nil, nil, nil},
		{"kpi_attendance_rate", "Attendance Rate", "kpi", "attendance_rate", f(95), nil, nil},
		{"kri_overdue_tasks", "Overdue Tasks", "kri", "overdue_tasks", nil, f(3), f(10)},
		{"kri_tasks_at_risk", "Tasks At Risk", "kri", "tasks_at_risk", nil, f(5), f(15)},
		{"kri_low_performance", "Low Performers", "kri", "low_performance", nil, f(1), f(5)},
		{"kri_high_absenteeism", "High Absenteeism", "kri", "high_absenteeism", nil, f(1), f(3)},
	}
	for _, def := range defs {
		_, err := pool.Exec(ctx, `
      INSERT INTO metric_definitions (code, name, kind, formula, target_value, threshold_warning, threshold_critical, is_active)
      VALUES ($1, $2, $3, $4, $5, $6, $7, true)
      ON CONFLICT (code) DO NOTHING
    `, def.code, def.name, def.kind, def.formula, def.target, def.thresholdWarning, def.thresholdCritical)
		if err != nil {
			return err
		}
	}
	return nil
}
