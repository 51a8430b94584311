package metrics

import (
	"context"
	"testing"
	"time"
)

type fakeStore struct {
	fakeAggregates
	defs    map[string]Definition
	metrics map[string]Metric
}

func newFakeStore(defs ...Definition) *fakeStore {
	store := &fakeStore{defs: map[string]Definition{}, metrics: map[string]Metric{}}
	for _, def := range defs {
		store.defs[def.ID] = def
	}
	return store
}

func metricKey(m Metric) string {
	return m.DefinitionID + "|" + m.Scope.UserID + "|" + m.Scope.Department + "|" +
		string(m.Period.Type) + "|" + m.Period.Start.Format("2006-01-02") + "|" + m.Period.End.Format("2006-01-02")
}

func (f *fakeStore) ListDefinitions(_ context.Context, kind Kind, activeOnly bool) ([]Definition, error) {
	var out []Definition
	for _, def := range f.defs {
		if kind != "" && def.Kind != kind {
			continue
		}
		if activeOnly && !def.IsActive {
			continue
		}
		out = append(out, def)
	}
	return out, nil
}

func (f *fakeStore) GetDefinition(_ context.Context, id string) (Definition, error) {
	if def, ok := f.defs[id]; ok {
		return def, nil
	}
	return Definition{}, ErrDefinitionNotFound
}

func (f *fakeStore) CreateDefinition(_ context.Context, def Definition) (string, error) {
	f.defs[def.ID] = def
	return def.ID, nil
}

func (f *fakeStore) UpdateDefinition(_ context.Context, def Definition) error {
	f.defs[def.ID] = def
	return nil
}

func (f *fakeStore) DeactivateDefinition(_ context.Context, id string) error {
	def, ok := f.defs[id]
	if !ok {
		return ErrDefinitionNotFound
	}
	def.IsActive = false
	f.defs[id] = def
	return nil
}

func (f *fakeStore) UpsertMetric(_ context.Context, metric Metric) (Metric, error) {
	metric.CalculatedAt = time.Now()
	metric.ID = metricKey(metric)
	f.metrics[metric.ID] = metric
	return metric, nil
}

func (f *fakeStore) ManagerOf(context.Context, string) (string, error) {
	return "", nil
}

func (f *fakeStore) ListMetrics(context.Context, string, Scope, PeriodType, int, int) ([]Metric, error) {
	var out []Metric
	for _, m := range f.metrics {
		out = append(out, m)
	}
	return out, nil
}

func TestCalculatePersistsKPIWithStatus(t *testing.T) {
	store := newFakeStore(Definition{
		ID: "d1", Kind: KindKPI, Formula: FormulaTaskCompletionRate,
		TargetValue: floatPtr(100), IsActive: true,
	})
	store.completed, store.total = 85, 100
	service := NewService(store, 48*time.Hour)

	metric, err := service.Calculate(context.Background(), "d1", Scope{UserID: "u1"}, testPeriod())
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if metric.Value != 85 {
		t.Fatalf("expected value 85, got %v", metric.Value)
	}
	if metric.Status != StatusBelowTarget {
		t.Fatalf("85 against target 100 is below_target, got %s", metric.Status)
	}
	if len(store.metrics) != 1 {
		t.Fatalf("expected one persisted metric, got %d", len(store.metrics))
	}
}

func TestCalculateUpsertKeepsSingleRow(t *testing.T) {
	store := newFakeStore(Definition{
		ID: "d1", Kind: KindKPI, Formula: FormulaTaskCompletionRate,
		TargetValue: floatPtr(100), IsActive: true,
	})
	service := NewService(store, 48*time.Hour)

	store.completed, store.total = 50, 100
	if _, err := service.Calculate(context.Background(), "d1", Scope{UserID: "u1"}, testPeriod()); err != nil {
		t.Fatalf("first calculate: %v", err)
	}
	store.completed = 90
	metric, err := service.Calculate(context.Background(), "d1", Scope{UserID: "u1"}, testPeriod())
	if err != nil {
		t.Fatalf("second calculate: %v", err)
	}

	if len(store.metrics) != 1 {
		t.Fatalf("recalculation must overwrite, not duplicate; got %d rows", len(store.metrics))
	}
	if stored := store.metrics[metric.ID]; stored.Value != 90 {
		t.Fatalf("expected latest value 90, got %v", stored.Value)
	}
}

func TestCalculatePersistsKRIWithRisk(t *testing.T) {
	store := newFakeStore(Definition{
		ID: "d2", Kind: KindKRI, Formula: FormulaOverdueTasks,
		ThresholdWarning: floatPtr(5), ThresholdCritical: floatPtr(10), IsActive: true,
	})
	store.overdue = 11
	service := NewService(store, 48*time.Hour)

	metric, err := service.Calculate(context.Background(), "d2", Scope{}, testPeriod())
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if metric.RiskLevel != RiskCritical {
		t.Fatalf("expected critical risk, got %s", metric.RiskLevel)
	}
	if metric.Status != "" {
		t.Fatalf("KRI metric must not carry a KPI status, got %s", metric.Status)
	}
}

func TestCalculateInactiveDefinitionNotFound(t *testing.T) {
	store := newFakeStore(Definition{ID: "d1", Kind: KindKPI, Formula: FormulaTasksCompleted})
	service := NewService(store, 48*time.Hour)
	if _, err := service.Calculate(context.Background(), "d1", Scope{}, testPeriod()); err != ErrDefinitionNotFound {
		t.Fatalf("expected ErrDefinitionNotFound for inactive definition, got %v", err)
	}
}

func TestCalculateAllSkipsInactive(t *testing.T) {
	store := newFakeStore(
		Definition{ID: "d1", Kind: KindKPI, Formula: FormulaTasksCompleted, IsActive: true},
		Definition{ID: "d2", Kind: KindKRI, Formula: FormulaOverdueTasks, IsActive: true},
		Definition{ID: "d3", Kind: KindKPI, Formula: FormulaAttendanceRate, IsActive: false},
	)
	service := NewService(store, 48*time.Hour)

	results, err := service.CalculateAll(context.Background(), Scope{}, PeriodWeekly, time.Date(2026, time.March, 11, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("calculate all: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results for active definitions, got %d", len(results))
	}
	for _, metric := range results {
		if !metric.Period.Start.Equal(date(2026, time.March, 9)) {
			t.Fatalf("expected derived Monday start, got %v", metric.Period.Start)
		}
	}
}
