package metrics

import (
	"context"
	"time"
)

type Service struct {
	store  StoreAPI
	engine *Engine
}

func NewService(store StoreAPI, riskWindow time.Duration) *Service {
	return &Service{store: store, engine: NewEngine(store, riskWindow)}
}

func (s *Service) ListDefinitions(ctx context.Context, kind Kind, activeOnly bool) ([]Definition, error) {
	return s.store.ListDefinitions(ctx, kind, activeOnly)
}

func (s *Service) GetDefinition(ctx context.Context, definitionID string) (Definition, error) {
	return s.store.GetDefinition(ctx, definitionID)
}

func (s *Service) CreateDefinition(ctx context.Context, def Definition) (string, error) {
	return s.store.CreateDefinition(ctx, def)
}

func (s *Service) UpdateDefinition(ctx context.Context, def Definition) error {
	return s.store.UpdateDefinition(ctx, def)
}

func (s *Service) DeactivateDefinition(ctx context.Context, definitionID string) error {
	return s.store.DeactivateDefinition(ctx, definitionID)
}

func (s *Service) ListMetrics(ctx context.Context, definitionID string, scope Scope, periodType PeriodType, limit, offset int) ([]Metric, error) {
	return s.store.ListMetrics(ctx, definitionID, scope, periodType, limit, offset)
}

func (s *Service) ManagerOf(ctx context.Context, userID string) (string, error) {
	return s.store.ManagerOf(ctx, userID)
}

// Calculate runs one definition for one scope and persists the result under
// the natural key, overwriting any prior calculation for that key.
func (s *Service) Calculate(ctx context.Context, definitionID string, scope Scope, period Period) (Metric, error) {
	def, err := s.store.GetDefinition(ctx, definitionID)
	if err != nil {
		return Metric{}, err
	}
	if !def.IsActive {
		return Metric{}, ErrDefinitionNotFound
	}
	return s.calculate(ctx, def, scope, period)
}

// CalculateAll runs every active definition for the scope over the derived
// current period. Synchronous by design; scheduling lives with callers.
func (s *Service) CalculateAll(ctx context.Context, scope Scope, periodType PeriodType, now time.Time) ([]Metric, error) {
	period, err := DerivePeriod(periodType, now)
	if err != nil {
		return nil, err
	}
	defs, err := s.store.ListDefinitions(ctx, "", true)
	if err != nil {
		return nil, err
	}

	out := make([]Metric, 0, len(defs))
	for _, def := range defs {
		metric, err := s.calculate(ctx, def, scope, period)
		if err != nil {
			return nil, err
		}
		out = append(out, metric)
	}
	return out, nil
}

func (s *Service) calculate(ctx context.Context, def Definition, scope Scope, period Period) (Metric, error) {
	metric := Metric{
		DefinitionID: def.ID,
		Scope:        scope,
		Period:       period,
	}

	switch def.Kind {
	case KindKRI:
		result, err := s.engine.CalculateKRI(ctx, def, scope, period)
		if err != nil {
			return Metric{}, err
		}
		metric.Value = result.Value
		metric.RiskLevel = result.RiskLevel
	default:
		value, err := s.engine.CalculateKPI(ctx, def, scope, period)
		if err != nil {
			return Metric{}, err
		}
		metric.Value = value
		metric.TargetValue = def.TargetValue
		if def.TargetValue != nil {
			metric.Status = KPIStatus(value, *def.TargetValue)
		}
	}

	return s.store.UpsertMetric(ctx, metric)
}
