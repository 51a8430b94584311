package kra

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
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

func (s *Store) ListDefinitions(ctx context.Context, userID string, activeOnly bool) ([]Definition, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, user_id, kra_number, kra_name, weight_percentage,
           COALESCE(kpi_1, ''), COALESCE(kpi_2, ''), is_active
    FROM kra_definitions
    WHERE user_id = $1 AND (NOT $2 OR is_active)
    ORDER BY kra_number
  `, userID, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Definition
	for rows.Next() {
		var def Definition
		if err := rows.Scan(&def.ID, &def.UserID, &def.Number, &def.Name, &def.WeightPercentage,
			&def.KPI1, &def.KPI2, &def.IsActive); err != nil {
			return nil, err
		}
		out = append(out, def)
	}
	return out, rows.Err()
}

func (s *Store) GetDefinition(ctx context.Context, kraID string) (Definition, error) {
	var def Definition
	err := s.DB.QueryRow(ctx, `
    SELECT id, user_id, kra_number, kra_name, weight_percentage,
           COALESCE(kpi_1, ''), COALESCE(kpi_2, ''), is_active
    FROM kra_definitions
    WHERE id = $1
  `, kraID).Scan(&def.ID, &def.UserID, &def.Number, &def.Name, &def.WeightPercentage,
		&def.KPI1, &def.KPI2, &def.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return Definition{}, ErrKRANotFound
	}
	return def, err
}

// SumActiveWeights totals a user's active KRA weights, optionally excluding
// one definition (the one being updated).
func (s *Store) SumActiveWeights(ctx context.Context, userID, excludeID string) (float64, error) {
	var sum float64
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(SUM(weight_percentage), 0)
    FROM kra_definitions
    WHERE user_id = $1 AND is_active AND ($2 = '' OR id::text <> $2)
  `, userID, excludeID).Scan(&sum)
	return sum, err
}

func (s *Store) CreateDefinition(ctx context.Context, def Definition) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO kra_definitions (user_id, kra_number, kra_name, weight_percentage, kpi_1, kpi_2, is_active)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id
  `, def.UserID, def.Number, def.Name, def.WeightPercentage, def.KPI1, def.KPI2, def.IsActive).Scan(&id)
	return id, err
}

func (s *Store) UpdateDefinition(ctx context.Context, def Definition) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE kra_definitions
    SET kra_name = $2, weight_percentage = $3, kpi_1 = $4, kpi_2 = $5, is_active = $6
    WHERE id = $1
  `, def.ID, def.Name, def.WeightPercentage, def.KPI1, def.KPI2, def.IsActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrKRANotFound
	}
	return nil
}

// ActiveWeightTx fetches the weight of one of the subject's active KRAs
// inside the submission transaction.
func (s *Store) ActiveWeightTx(ctx context.Context, tx pgx.Tx, userID, kraID string) (float64, error) {
	var weight float64
	err := tx.QueryRow(ctx, `
    SELECT weight_percentage
    FROM kra_definitions
    WHERE id = $1 AND user_id = $2 AND is_active
  `, kraID, userID).Scan(&weight)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrKRANotFound
	}
	return weight, err
}

func (s *Store) UpsertSubmissionTx(ctx context.Context, tx pgx.Tx, sub Submission) error {
	_, err := tx.Exec(ctx, `
    INSERT INTO kra_submissions (user_id, kra_id, period_type, period_month, period_quarter, period_year,
                                 rating, submitted_by, status, submitted_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,now())
    ON CONFLICT (user_id, kra_id, period_type, period_month, period_quarter, period_year)
    DO UPDATE SET rating = EXCLUDED.rating,
                  submitted_by = EXCLUDED.submitted_by,
                  status = EXCLUDED.status,
                  submitted_at = now()
  `, sub.UserID, sub.KRAID, sub.Period.Type, sub.Period.Month, sub.Period.Quarter, sub.Period.Year,
		sub.Rating, sub.SubmittedBy, sub.Status)
	return err
}

// RatedEntriesTx reads the full current submission set for the period, so
// the recomputed score reflects exactly what is stored, not a blend.
func (s *Store) RatedEntriesTx(ctx context.Context, tx pgx.Tx, userID string, period Period) ([]RatedEntry, error) {
	rows, err := tx.Query(ctx, `
    SELECT sub.rating, def.weight_percentage
    FROM kra_submissions sub
    JOIN kra_definitions def ON sub.kra_id = def.id
    WHERE sub.user_id = $1 AND sub.period_type = $2
      AND sub.period_month = $3 AND sub.period_quarter = $4 AND sub.period_year = $5
      AND def.is_active
  `, userID, period.Type, period.Month, period.Quarter, period.Year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RatedEntry
	for rows.Next() {
		var entry RatedEntry
		if err := rows.Scan(&entry.Rating, &entry.WeightPercentage); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (s *Store) UpsertScoreTx(ctx context.Context, tx pgx.Tx, score Score) error {
	_, err := tx.Exec(ctx, `
    INSERT INTO kra_scores (user_id, period_type, period_month, period_quarter, period_year,
                            total_score, performance_category, calculated_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,now())
    ON CONFLICT (user_id, period_type, period_month, period_quarter, period_year)
    DO UPDATE SET total_score = EXCLUDED.total_score,
                  performance_category = EXCLUDED.performance_category,
                  calculated_at = now()
  `, score.UserID, score.Period.Type, score.Period.Month, score.Period.Quarter, score.Period.Year,
		score.TotalScore, score.Category)
	return err
}

func (s *Store) ListSubmissions(ctx context.Context, userID string, period Period) ([]Submission, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, user_id, kra_id, period_type, period_month, period_quarter, period_year,
           rating, submitted_by, status, submitted_at
    FROM kra_submissions
    WHERE user_id = $1 AND period_type = $2
      AND period_month = $3 AND period_quarter = $4 AND period_year = $5
    ORDER BY submitted_at
  `, userID, period.Type, period.Month, period.Quarter, period.Year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Submission
	for rows.Next() {
		var sub Submission
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.KRAID, &sub.Period.Type, &sub.Period.Month,
			&sub.Period.Quarter, &sub.Period.Year, &sub.Rating, &sub.SubmittedBy, &sub.Status, &sub.SubmittedAt); err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *Store) GetScore(ctx context.Context, userID string, period Period) (Score, error) {
	var score Score
	err := s.DB.QueryRow(ctx, `
    SELECT user_id, period_type, period_month, period_quarter, period_year,
           total_score, performance_category, calculated_at
    FROM kra_scores
    WHERE user_id = $1 AND period_type = $2
      AND period_month = $3 AND period_quarter = $4 AND period_year = $5
  `, userID, period.Type, period.Month, period.Quarter, period.Year).Scan(
		&score.UserID, &score.Period.Type, &score.Period.Month, &score.Period.Quarter, &score.Period.Year,
		&score.TotalScore, &score.Category, &score.CalculatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Score{}, ErrNoSubmissions
	}
	return score, err
}

func (s *Store) ManagerOf(ctx context.Context, userID string) (string, error) {
	var managerID string
	err := s.DB.QueryRow(ctx,
		"SELECT COALESCE(manager_id::text, '') FROM users WHERE id = $1", userID).Scan(&managerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrSubjectNotFound
	}
	return managerID, err
}

func (s *Store) ListScores(ctx context.Context, userID string, year int) ([]Score, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT user_id, period_type, period_month, period_quarter, period_year,
           total_score, performance_category, calculated_at
    FROM kra_scores
    WHERE user_id = $1 AND ($2 = 0 OR period_year = $2)
    ORDER BY period_year DESC, period_quarter DESC, period_month DESC
  `, userID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Score
	for rows.Next() {
		var score Score
		if err := rows.Scan(&score.UserID, &score.Period.Type, &score.Period.Month, &score.Period.Quarter,
			&score.Period.Year, &score.TotalScore, &score.Category, &score.CalculatedAt); err != nil {
			return nil, err
		}
		out = append(out, score)
	}
	return out, rows.Err()
}
