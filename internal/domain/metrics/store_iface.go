package metrics

import "context"

// StoreAPI is everything the service needs beyond the engine's aggregates.
// *Store satisfies both interfaces.
type StoreAPI interface {
	AggregateStore
	ListDefinitions(ctx context.Context, kind Kind, activeOnly bool) ([]Definition, error)
	GetDefinition(ctx context.Context, definitionID string) (Definition, error)
	CreateDefinition(ctx context.Context, def Definition) (string, error)
	UpdateDefinition(ctx context.Context, def Definition) error
	DeactivateDefinition(ctx context.Context, definitionID string) error
	UpsertMetric(ctx context.Context, metric Metric) (Metric, error)
	ListMetrics(ctx context.Context, definitionID string, scope Scope, periodType PeriodType, limit, offset int) ([]Metric, error)
	ManagerOf(ctx context.Context, userID string) (string, error)
}
