package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// scopeArgs builds the scope filter for task queries that take the period
// bounds as $1/$2; the scope value, if any, binds as $3.
func scopeArgs(scope Scope) (string, []any) {
	switch {
	case scope.UserID != "":
		return " AND t.assignee_id = $3", []any{scope.UserID}
	case scope.Department != "":
		return " AND u.department = $3", []any{scope.Department}
	}
	return "", nil
}

func (s *Store) TaskCounts(ctx context.Context, scope Scope, period Period) (int, int, error) {
	clause, extra := scopeArgs(scope)
	args := append([]any{period.Start, period.End.AddDate(0, 0, 1)}, extra...)
	var completed, total int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FILTER (WHERE t.status = 'completed'), COUNT(1)
    FROM tasks t
    JOIN users u ON t.assignee_id = u.id
    WHERE t.created_at >= $1 AND t.created_at < $2`+clause, args...).Scan(&completed, &total)
	return completed, total, err
}

func (s *Store) OnTimeCompletions(ctx context.Context, scope Scope, period Period) (int, int, error) {
	clause, extra := scopeArgs(scope)
	args := append([]any{period.Start, period.End.AddDate(0, 0, 1)}, extra...)
	var onTime, completed int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FILTER (WHERE t.completed_at <= t.deadline), COUNT(1)
    FROM tasks t
    JOIN users u ON t.assignee_id = u.id
    WHERE t.status = 'completed' AND t.completed_at >= $1 AND t.completed_at < $2`+clause, args...).Scan(&onTime, &completed)
	return onTime, completed, err
}

func (s *Store) TaskRatingStats(ctx context.Context, scope Scope, period Period) (float64, int, error) {
	clause, extra := scopeArgs(scope)
	args := append([]any{period.Start, period.End.AddDate(0, 0, 1)}, extra...)
	var sum float64
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(SUM(t.rating), 0), COUNT(t.rating)
    FROM tasks t
    JOIN users u ON t.assignee_id = u.id
    WHERE t.rating IS NOT NULL AND t.completed_at >= $1 AND t.completed_at < $2`+clause, args...).Scan(&sum, &count)
	return sum, count, err
}

// PresentAndScheduledDays returns attendance presence against the scheduled
// working days for everyone in scope. Scheduled days are working days in the
// period times scope headcount.
func (s *Store) PresentAndScheduledDays(ctx context.Context, scope Scope, period Period) (int, int, error) {
	var userClause string
	args := []any{period.Start, period.End}
	switch {
	case scope.UserID != "":
		userClause = " AND u.id = $3"
		args = append(args, scope.UserID)
	case scope.Department != "":
		userClause = " AND u.department = $3"
		args = append(args, scope.Department)
	}

	var present, headcount int
	err := s.DB.QueryRow(ctx, `
    SELECT
      (SELECT COUNT(1)
       FROM attendance_records a
       JOIN users u ON a.user_id = u.id
       WHERE a.status IN ('present', 'half_day')
         AND a.work_date BETWEEN $1 AND $2`+userClause+`),
      (SELECT COUNT(1) FROM users u WHERE u.status = 'active'`+userClause+`)
  `, args...).Scan(&present, &headcount)
	if err != nil {
		return 0, 0, err
	}
	return present, WorkingDays(period.Start, period.End) * headcount, nil
}

func (s *Store) OverdueTaskCount(ctx context.Context, scope Scope, asOf time.Time) (int, error) {
	args := []any{asOf}
	var clause string
	switch {
	case scope.UserID != "":
		clause = " AND t.assignee_id = $2"
		args = append(args, scope.UserID)
	case scope.Department != "":
		clause = " AND u.department = $2"
		args = append(args, scope.Department)
	}
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM tasks t
    JOIN users u ON t.assignee_id = u.id
    WHERE t.deadline < $1 AND t.status NOT IN ('completed', 'cancelled')`+clause, args...).Scan(&count)
	return count, err
}

func (s *Store) AtRiskTaskCount(ctx context.Context, scope Scope, asOf time.Time, window time.Duration) (int, error) {
	args := []any{asOf, asOf.Add(window)}
	var clause string
	switch {
	case scope.UserID != "":
		clause = " AND t.assignee_id = $3"
		args = append(args, scope.UserID)
	case scope.Department != "":
		clause = " AND u.department = $3"
		args = append(args, scope.Department)
	}
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM tasks t
    JOIN users u ON t.assignee_id = u.id
    WHERE t.deadline >= $1 AND t.deadline <= $2
      AND t.status NOT IN ('completed', 'cancelled')`+clause, args...).Scan(&count)
	return count, err
}

func (s *Store) LowPerformerCount(ctx context.Context, scope Scope, period Period, ratingFloor, completionFloor float64) (int, error) {
	args := []any{period.Start, period.End.AddDate(0, 0, 1), ratingFloor, completionFloor}
	var clause string
	if scope.Department != "" {
		clause = " AND u.department = $5"
		args = append(args, scope.Department)
	}
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM (
      SELECT t.assignee_id
      FROM tasks t
      JOIN users u ON t.assignee_id = u.id
      WHERE t.created_at >= $1 AND t.created_at < $2`+clause+`
      GROUP BY t.assignee_id
      HAVING COALESCE(AVG(t.rating), 0) < $3
          OR (COUNT(1) FILTER (WHERE t.status = 'completed'))::float / COUNT(1) * 100 < $4
    ) lows
  `, args...).Scan(&count)
	return count, err
}

func (s *Store) HighAbsenceCount(ctx context.Context, scope Scope, period Period, dayFloor int) (int, error) {
	args := []any{period.Start, period.End, dayFloor}
	var clause string
	if scope.Department != "" {
		clause = " AND u.department = $4"
		args = append(args, scope.Department)
	}
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM (
      SELECT a.user_id
      FROM attendance_records a
      JOIN users u ON a.user_id = u.id
      WHERE a.status = 'absent' AND a.work_date BETWEEN $1 AND $2`+clause+`
      GROUP BY a.user_id
      HAVING COUNT(1) > $3
    ) absentees
  `, args...).Scan(&count)
	return count, err
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

func (s *Store) ListDefinitions(ctx context.Context, kind Kind, activeOnly bool) ([]Definition, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, code, name, COALESCE(description, ''), kind, formula,
           target_value, threshold_warning, threshold_critical, is_active
    FROM metric_definitions
    WHERE ($1 = '' OR kind = $1) AND (NOT $2 OR is_active)
    ORDER BY code
  `, string(kind), activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Definition
	for rows.Next() {
		var def Definition
		if err := rows.Scan(&def.ID, &def.Code, &def.Name, &def.Description, &def.Kind, &def.Formula,
			&def.TargetValue, &def.ThresholdWarning, &def.ThresholdCritical, &def.IsActive); err != nil {
			return nil, err
		}
		out = append(out, def)
	}
	return out, rows.Err()
}

func (s *Store) GetDefinition(ctx context.Context, definitionID string) (Definition, error) {
	var def Definition
	err := s.DB.QueryRow(ctx, `
    SELECT id, code, name, COALESCE(description, ''), kind, formula,
           target_value, threshold_warning, threshold_critical, is_active
    FROM metric_definitions
    WHERE id = $1
  `, definitionID).Scan(&def.ID, &def.Code, &def.Name, &def.Description, &def.Kind, &def.Formula,
		&def.TargetValue, &def.ThresholdWarning, &def.ThresholdCritical, &def.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return Definition{}, ErrDefinitionNotFound
	}
	return def, err
}

func (s *Store) CreateDefinition(ctx context.Context, def Definition) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO metric_definitions (code, name, description, kind, formula, target_value, threshold_warning, threshold_critical, is_active)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
    RETURNING id
  `, def.Code, def.Name, def.Description, def.Kind, def.Formula, def.TargetValue, def.ThresholdWarning, def.ThresholdCritical, def.IsActive).Scan(&id)
	return id, err
}

func (s *Store) UpdateDefinition(ctx context.Context, def Definition) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE metric_definitions
    SET name = $2, description = $3, target_value = $4, threshold_warning = $5, threshold_critical = $6, is_active = $7
    WHERE id = $1
  `, def.ID, def.Name, def.Description, def.TargetValue, def.ThresholdWarning, def.ThresholdCritical, def.IsActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDefinitionNotFound
	}
	return nil
}

func (s *Store) DeactivateDefinition(ctx context.Context, definitionID string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE metric_definitions SET is_active = false WHERE id = $1", definitionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDefinitionNotFound
	}
	return nil
}

// UpsertMetric replaces any prior calculation for the same natural key and
// refreshes calculated_at, keeping recalculation idempotent per key.
func (s *Store) UpsertMetric(ctx context.Context, metric Metric) (Metric, error) {
	err := s.DB.QueryRow(ctx, `
    INSERT INTO metric_results (definition_id, scope_user_id, scope_department, period_type, period_start, period_end,
                                calculated_value, target_value, status, risk_level, calculated_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NULLIF($9,''),NULLIF($10,''),now())
    ON CONFLICT (definition_id, scope_user_id, scope_department, period_type, period_start, period_end)
    DO UPDATE SET calculated_value = EXCLUDED.calculated_value,
                  target_value = EXCLUDED.target_value,
                  status = EXCLUDED.status,
                  risk_level = EXCLUDED.risk_level,
                  calculated_at = now()
    RETURNING id, calculated_at
  `, metric.DefinitionID, metric.Scope.UserID, metric.Scope.Department, metric.Period.Type,
		metric.Period.Start, metric.Period.End, metric.Value, metric.TargetValue,
		string(metric.Status), string(metric.RiskLevel)).Scan(&metric.ID, &metric.CalculatedAt)
	return metric, err
}

func (s *Store) ListMetrics(ctx context.Context, definitionID string, scope Scope, periodType PeriodType, limit, offset int) ([]Metric, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, definition_id, scope_user_id, scope_department, period_type, period_start, period_end,
           calculated_value, target_value, COALESCE(status, ''), COALESCE(risk_level, ''), calculated_at
    FROM metric_results
    WHERE ($1 = '' OR definition_id::text = $1)
      AND ($2 = '' OR scope_user_id = $2)
      AND ($3 = '' OR scope_department = $3)
      AND ($4 = '' OR period_type = $4)
    ORDER BY period_start DESC, calculated_at DESC
    LIMIT $5 OFFSET $6
  `, definitionID, scope.UserID, scope.Department, string(periodType), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Metric
	for rows.Next() {
		var m Metric
		var status, risk string
		if err := rows.Scan(&m.ID, &m.DefinitionID, &m.Scope.UserID, &m.Scope.Department,
			&m.Period.Type, &m.Period.Start, &m.Period.End,
			&m.Value, &m.TargetValue, &status, &risk, &m.CalculatedAt); err != nil {
			return nil, err
		}
		m.Status = Status(status)
		m.RiskLevel = RiskLevel(risk)
		out = append(out, m)
	}
	return out, rows.Err()
}
