package kra

import (
	"context"
	"fmt"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) ListDefinitions(ctx context.Context, userID string, activeOnly bool) ([]Definition, error) {
	return s.store.ListDefinitions(ctx, userID, activeOnly)
}

func (s *Service) GetDefinition(ctx context.Context, kraID string) (Definition, error) {
	return s.store.GetDefinition(ctx, kraID)
}

// CreateDefinition rejects a weight that would push the user's active total
// past 100. Totals under 100 are allowed; the legacy data had them.
func (s *Service) CreateDefinition(ctx context.Context, def Definition) (string, error) {
	if def.WeightPercentage <= 0 || def.WeightPercentage > 100 {
		return "", fmt.Errorf("%w: weight %.2f", ErrWeightOverflow, def.WeightPercentage)
	}
	if def.IsActive {
		current, err := s.store.SumActiveWeights(ctx, def.UserID, "")
		if err != nil {
			return "", err
		}
		if current+def.WeightPercentage > 100 {
			return "", fmt.Errorf("%w: %.2f + %.2f", ErrWeightOverflow, current, def.WeightPercentage)
		}
	}
	return s.store.CreateDefinition(ctx, def)
}

func (s *Service) UpdateDefinition(ctx context.Context, def Definition) error {
	if def.WeightPercentage <= 0 || def.WeightPercentage > 100 {
		return fmt.Errorf("%w: weight %.2f", ErrWeightOverflow, def.WeightPercentage)
	}
	if def.IsActive {
		current, err := s.store.SumActiveWeights(ctx, def.UserID, def.ID)
		if err != nil {
			return err
		}
		if current+def.WeightPercentage > 100 {
			return fmt.Errorf("%w: %.2f + %.2f", ErrWeightOverflow, current, def.WeightPercentage)
		}
	}
	return s.store.UpdateDefinition(ctx, def)
}

// RatingInput is one rating in a submission batch.
type RatingInput struct {
	KRAID  string
	Rating int
}

// SubmitRatings upserts a batch of ratings for a subject's period and
// recomputes the period score from the full stored set, all in one
// transaction. A failure anywhere rolls back every rating in the batch.
func (s *Service) SubmitRatings(ctx context.Context, subjectID string, period Period, ratings []RatingInput, submittedBy string) (Score, error) {
	if err := validatePeriod(period); err != nil {
		return Score{}, err
	}
	if len(ratings) == 0 {
		return Score{}, ErrNoSubmissions
	}
	for _, input := range ratings {
		if !ValidRating(input.Rating) {
			return Score{}, fmt.Errorf("%w: got %d", ErrRatingOutOfRange, input.Rating)
		}
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return Score{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, input := range ratings {
		if _, err := s.store.ActiveWeightTx(ctx, tx, subjectID, input.KRAID); err != nil {
			return Score{}, err
		}
		sub := Submission{
			UserID:      subjectID,
			KRAID:       input.KRAID,
			Period:      period,
			Rating:      input.Rating,
			SubmittedBy: submittedBy,
			Status:      SubmissionStatusSubmitted,
		}
		if err := s.store.UpsertSubmissionTx(ctx, tx, sub); err != nil {
			return Score{}, err
		}
	}

	entries, err := s.store.RatedEntriesTx(ctx, tx, subjectID, period)
	if err != nil {
		return Score{}, err
	}
	total, category, ok := ComputeScore(entries)
	if !ok {
		return Score{}, ErrNoSubmissions
	}

	score := Score{UserID: subjectID, Period: period, TotalScore: total, Category: category}
	if err := s.store.UpsertScoreTx(ctx, tx, score); err != nil {
		return Score{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Score{}, err
	}
	return score, nil
}

func (s *Service) ListSubmissions(ctx context.Context, userID string, period Period) ([]Submission, error) {
	if err := validatePeriod(period); err != nil {
		return nil, err
	}
	return s.store.ListSubmissions(ctx, userID, period)
}

func (s *Service) GetScore(ctx context.Context, userID string, period Period) (Score, error) {
	if err := validatePeriod(period); err != nil {
		return Score{}, err
	}
	return s.store.GetScore(ctx, userID, period)
}

func (s *Service) ListScores(ctx context.Context, userID string, year int) ([]Score, error) {
	return s.store.ListScores(ctx, userID, year)
}

func (s *Service) ManagerOf(ctx context.Context, userID string) (string, error) {
	return s.store.ManagerOf(ctx, userID)
}

func validatePeriod(period Period) error {
	if period.Year < 2000 || period.Year > 2200 {
		return fmt.Errorf("%w: year %d", ErrInvalidPeriod, period.Year)
	}
	switch period.Type {
	case PeriodMonthly:
		if period.Month < 1 || period.Month > 12 || period.Quarter != 0 {
			return fmt.Errorf("%w: month %d", ErrInvalidPeriod, period.Month)
		}
	case PeriodQuarterly:
		if period.Quarter < 1 || period.Quarter > 4 || period.Month != 0 {
			return fmt.Errorf("%w: quarter %d", ErrInvalidPeriod, period.Quarter)
		}
	default:
		return fmt.Errorf("%w: type %q", ErrInvalidPeriod, period.Type)
	}
	return nil
}
