package tasks

import (
	"context"
	"fmt"
	"time"

	"opshub/internal/domain/auth"
)

type StoreAPI interface {
	List(ctx context.Context, scope auth.Scope, status string, limit, offset int) ([]Task, error)
	Get(ctx context.Context, taskID string) (Task, error)
	Create(ctx context.Context, task Task) (string, error)
	UpdateStatus(ctx context.Context, taskID, status string, completedAt *time.Time) error
	SetRating(ctx context.Context, taskID string, rating int, ratedBy string) error
	FileReport(ctx context.Context, taskID, report string) error
}

type Service struct {
	store StoreAPI
	now   func() time.Time
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store, now: time.Now}
}

func (s *Service) List(ctx context.Context, scope auth.Scope, status string, limit, offset int) ([]Task, error) {
	if status != "" && !ValidStatus(status) {
		return nil, fmt.Errorf("unknown status %q", status)
	}
	return s.store.List(ctx, scope, status, limit, offset)
}

func (s *Service) Get(ctx context.Context, taskID string) (Task, error) {
	return s.store.Get(ctx, taskID)
}

func (s *Service) Create(ctx context.Context, task Task) (string, error) {
	if task.Status == "" {
		task.Status = StatusPending
	}
	return s.store.Create(ctx, task)
}

// Transition enforces the status machine; moving to completed stamps
// completed_at, which on-time delivery metrics compare against the deadline.
func (s *Service) Transition(ctx context.Context, taskID, toStatus string) (Task, error) {
	task, err := s.store.Get(ctx, taskID)
	if err != nil {
		return Task{}, err
	}
	if !CanTransition(task.Status, toStatus) {
		return Task{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, task.Status, toStatus)
	}

	var completedAt *time.Time
	if toStatus == StatusCompleted {
		now := s.now()
		completedAt = &now
	}
	if err := s.store.UpdateStatus(ctx, taskID, toStatus, completedAt); err != nil {
		return Task{}, err
	}
	task.Status = toStatus
	task.CompletedAt = completedAt
	return task, nil
}

func (s *Service) Rate(ctx context.Context, taskID string, rating int, ratedBy string) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: got %d", ErrRatingOutOfRange, rating)
	}
	return s.store.SetRating(ctx, taskID, rating, ratedBy)
}

func (s *Service) FileReport(ctx context.Context, taskID, report string) error {
	return s.store.FileReport(ctx, taskID, report)
}
