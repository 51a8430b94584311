package kra

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type StoreAPI interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	ListDefinitions(ctx context.Context, userID string, activeOnly bool) ([]Definition, error)
	GetDefinition(ctx context.Context, kraID string) (Definition, error)
	SumActiveWeights(ctx context.Context, userID, excludeID string) (float64, error)
	CreateDefinition(ctx context.Context, def Definition) (string, error)
	UpdateDefinition(ctx context.Context, def Definition) error
	ActiveWeightTx(ctx context.Context, tx pgx.Tx, userID, kraID string) (float64, error)
	UpsertSubmissionTx(ctx context.Context, tx pgx.Tx, sub Submission) error
	RatedEntriesTx(ctx context.Context, tx pgx.Tx, userID string, period Period) ([]RatedEntry, error)
	UpsertScoreTx(ctx context.Context, tx pgx.Tx, score Score) error
	ListSubmissions(ctx context.Context, userID string, period Period) ([]Submission, error)
	GetScore(ctx context.Context, userID string, period Period) (Score, error)
	ListScores(ctx context.Context, userID string, year int) ([]Score, error)
	ManagerOf(ctx context.Context, userID string) (string, error)
}
