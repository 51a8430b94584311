package leave

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"opshub/internal/domain/auth"
)

type StoreAPI interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	ListTypes(ctx context.Context) ([]Type, error)
	CreateType(ctx context.Context, t Type) (string, error)
	GetType(ctx context.Context, typeID string) (Type, error)
	ListRequests(ctx context.Context, scope auth.Scope, status string, limit, offset int) ([]Request, error)
	GetRequest(ctx context.Context, requestID string) (Request, error)
	CreateRequestTx(ctx context.Context, tx pgx.Tx, r Request) (string, error)
	AddPendingTx(ctx context.Context, tx pgx.Tx, userID, typeID string, days float64) error
	DecideRequestTx(ctx context.Context, tx pgx.Tx, requestID, status, decidedBy string, decidedAt time.Time) error
	SettlePendingTx(ctx context.Context, tx pgx.Tx, userID, typeID string, days float64, approved bool) error
	MarkAttendanceTx(ctx context.Context, tx pgx.Tx, userID string, start, end time.Time) error
	ManagerOf(ctx context.Context, userID string) (string, error)
	ListBalances(ctx context.Context, userID string) ([]Balance, error)
	AdjustBalance(ctx context.Context, userID, typeID string, amount float64) error
}

type Service struct {
	store StoreAPI
	now   func() time.Time
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store, now: time.Now}
}

func (s *Service) ListTypes(ctx context.Context) ([]Type, error) {
	return s.store.ListTypes(ctx)
}

func (s *Service) CreateType(ctx context.Context, t Type) (string, error) {
	return s.store.CreateType(ctx, t)
}

func (s *Service) ListRequests(ctx context.Context, scope auth.Scope, status string, limit, offset int) ([]Request, error) {
	return s.store.ListRequests(ctx, scope, status, limit, offset)
}

func (s *Service) GetRequest(ctx context.Context, requestID string) (Request, error) {
	return s.store.GetRequest(ctx, requestID)
}

func (s *Service) ManagerOf(ctx context.Context, userID string) (string, error) {
	return s.store.ManagerOf(ctx, userID)
}

func (s *Service) ListBalances(ctx context.Context, userID string) ([]Balance, error) {
	return s.store.ListBalances(ctx, userID)
}

func (s *Service) AdjustBalance(ctx context.Context, userID, typeID string, amount float64) error {
	return s.store.AdjustBalance(ctx, userID, typeID, amount)
}

// Submit validates the requested range, computes the day count and books the
// days as pending against the balance in one transaction.
func (s *Service) Submit(ctx context.Context, r Request) (Request, error) {
	if _, err := s.store.GetType(ctx, r.LeaveTypeID); err != nil {
		return Request{}, err
	}
	days, err := CalculateRequestDays(r.StartDate, r.EndDate, r.StartHalf, r.EndHalf)
	if err != nil {
		return Request{}, err
	}
	r.Days = days
	r.Status = StatusPending

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return Request{}, err
	}
	defer tx.Rollback(ctx)

	id, err := s.store.CreateRequestTx(ctx, tx, r)
	if err != nil {
		return Request{}, err
	}
	if err := s.store.AddPendingTx(ctx, tx, r.UserID, r.LeaveTypeID, days); err != nil {
		return Request{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Request{}, err
	}
	r.ID = id
	return r, nil
}

// Decide settles a pending request. Approval moves the pending days to used
// and writes on_leave attendance rows; rejection releases the pending days.
func (s *Service) Decide(ctx context.Context, requestID, deciderID string, approve bool) (Request, error) {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return Request{}, err
	}
	if req.Status != StatusPending {
		return Request{}, ErrInvalidState
	}

	status := StatusRejected
	if approve {
		status = StatusApproved
	}
	decidedAt := s.now()

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return Request{}, err
	}
	defer tx.Rollback(ctx)

	if err := s.store.DecideRequestTx(ctx, tx, requestID, status, deciderID, decidedAt); err != nil {
		return Request{}, err
	}
	if err := s.store.SettlePendingTx(ctx, tx, req.UserID, req.LeaveTypeID, req.Days, approve); err != nil {
		return Request{}, err
	}
	if approve {
		if err := s.store.MarkAttendanceTx(ctx, tx, req.UserID, req.StartDate, req.EndDate); err != nil {
			return Request{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return Request{}, err
	}

	req.Status = status
	req.DecidedBy = &deciderID
	req.DecidedAt = &decidedAt
	return req, nil
}

// Cancel withdraws a still-pending request and releases its pending days.
func (s *Service) Cancel(ctx context.Context, requestID string) error {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if req.Status != StatusPending {
		return ErrInvalidState
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.store.DecideRequestTx(ctx, tx, requestID, StatusCancelled, req.UserID, s.now()); err != nil {
		return err
	}
	if err := s.store.SettlePendingTx(ctx, tx, req.UserID, req.LeaveTypeID, req.Days, false); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
