package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"opshub/internal/domain/auth"
)

type fakeTaskStore struct {
	tasks       map[string]Task
	lastStatus  string
	completedAt *time.Time
	rating      int
	ratedBy     string
}

func (f *fakeTaskStore) List(_ context.Context, _ auth.Scope, _ string, _, _ int) ([]Task, error) {
	out := make([]Task, 0, len(f.tasks))
	for _, t := range f.tasks {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTaskStore) Get(_ context.Context, taskID string) (Task, error) {
	t, ok := f.tasks[taskID]
	if !ok {
		return Task{}, ErrTaskNotFound
	}
	return t, nil
}

func (f *fakeTaskStore) Create(_ context.Context, task Task) (string, error) {
	f.tasks[task.ID] = task
	return task.ID, nil
}

func (f *fakeTaskStore) UpdateStatus(_ context.Context, taskID, status string, completedAt *time.Time) error {
	f.lastStatus = status
	f.completedAt = completedAt
	return nil
}

func (f *fakeTaskStore) SetRating(_ context.Context, taskID string, rating int, ratedBy string) error {
	t, ok := f.tasks[taskID]
	if !ok {
		return ErrTaskNotFound
	}
	if t.Status != StatusCompleted {
		return ErrNotCompleted
	}
	f.rating = rating
	f.ratedBy = ratedBy
	return nil
}

func (f *fakeTaskStore) FileReport(_ context.Context, taskID, report string) error {
	return nil
}

func TestTransitionStampsCompletedAt(t *testing.T) {
	store := &fakeTaskStore{tasks: map[string]Task{
		"t1": {ID: "t1", Status: StatusInProgress},
	}}
	svc := NewService(store)
	fixed := time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	task, err := svc.Transition(context.Background(), "t1", StatusCompleted)
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if task.CompletedAt == nil || !task.CompletedAt.Equal(fixed) {
		t.Fatalf("expected completed_at %v, got %v", fixed, task.CompletedAt)
	}
	if store.lastStatus != StatusCompleted {
		t.Fatalf("expected store status %q, got %q", StatusCompleted, store.lastStatus)
	}
}

func TestTransitionRejectsInvalidMove(t *testing.T) {
	store := &fakeTaskStore{tasks: map[string]Task{
		"t1": {ID: "t1", Status: StatusCompleted},
	}}
	svc := NewService(store)

	_, err := svc.Transition(context.Background(), "t1", StatusInProgress)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestTransitionUnknownTask(t *testing.T) {
	store := &fakeTaskStore{tasks: map[string]Task{}}
	svc := NewService(store)

	_, err := svc.Transition(context.Background(), "nope", StatusCompleted)
	if !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestRateValidation(t *testing.T) {
	store := &fakeTaskStore{tasks: map[string]Task{
		"done": {ID: "done", Status: StatusCompleted},
		"wip":  {ID: "wip", Status: StatusInProgress},
	}}
	svc := NewService(store)

	if err := svc.Rate(context.Background(), "done", 0, "m1"); !errors.Is(err, ErrRatingOutOfRange) {
		t.Fatalf("expected ErrRatingOutOfRange for 0, got %v", err)
	}
	if err := svc.Rate(context.Background(), "done", 6, "m1"); !errors.Is(err, ErrRatingOutOfRange) {
		t.Fatalf("expected ErrRatingOutOfRange for 6, got %v", err)
	}
	if err := svc.Rate(context.Background(), "wip", 4, "m1"); !errors.Is(err, ErrNotCompleted) {
		t.Fatalf("expected ErrNotCompleted, got %v", err)
	}
	if err := svc.Rate(context.Background(), "done", 4, "m1"); err != nil {
		t.Fatalf("Rate: %v", err)
	}
	if store.rating != 4 || store.ratedBy != "m1" {
		t.Fatalf("rating not persisted: %d by %q", store.rating, store.ratedBy)
	}
}
