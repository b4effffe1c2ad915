package importer

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestEngine_Validate(t *testing.T) {
	store := newFakeStore()
	store.breeders = []RefEntity{{ID: 5, Name: "Momotaro"}}
	store.varieties = []RefEntity{{ID: 1, Name: "Kohaku"}}
	engine := NewEngine(store, 2, time.Second)

	rows := []RawRow{
		{"Picture ID": "P1", "Variety": "Kohaku", "Bre-ID": "5"},
		{"Picture ID": "P2", "Variety": "Asagi", "Bre-ID": "5"},
	}

	report, err := engine.Validate(context.Background(), rows)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if report.ValidCount != 1 {
		t.Errorf("ValidCount = %d, want 1", report.ValidCount)
	}
	if len(report.Invalid) != 1 {
		t.Errorf("len(Invalid) = %d, want 1", len(report.Invalid))
	}

	// Validation never writes.
	if len(store.createdCustomers)+len(store.createdShipTos) != 0 {
		t.Error("validate mode must not create soft entities")
	}
}

func TestEngine_Run_UnknownMode(t *testing.T) {
	engine := NewEngine(newFakeStore(), 2, time.Second)

	_, err := engine.Run(context.Background(), nil, Mode("commit"))
	if err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestEngine_Run_ReferenceLoadFailureAborts(t *testing.T) {
	store := newFakeStore()
	store.listErr = errStoreDown
	engine := NewEngine(store, 2, time.Second)

	_, err := engine.Map(context.Background(), []RawRow{{"Picture ID": "P1"}})

	var refErr *ReferenceLoadError
	if !errors.As(err, &refErr) {
		t.Fatalf("expected *ReferenceLoadError, got %T: %v", err, err)
	}
}

func TestEngine_Run_LimiterRejectsWhenSaturated(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store, 1, 50*time.Millisecond)

	// Occupy the only slot directly.
	if err := engine.limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer engine.limiter.Release()

	_, err := engine.Validate(context.Background(), nil)
	if !errors.Is(err, ErrTooManyImports) {
		t.Errorf("expected ErrTooManyImports, got %v", err)
	}
}

func TestEngine_References(t *testing.T) {
	store := newFakeStore()
	store.breeders = []RefEntity{{ID: 1, Name: "Momotaro"}}
	engine := NewEngine(store, 2, time.Second)

	refs, err := engine.References(context.Background())
	if err != nil {
		t.Fatalf("References failed: %v", err)
	}
	if len(refs.Breeders) != 1 {
		t.Errorf("Breeders = %v", refs.Breeders)
	}
	if refs.Config.ExchangeRate != DefaultExchangeRate {
		t.Errorf("ExchangeRate = %v, want default", refs.Config.ExchangeRate)
	}
}

func TestEngine_SnapshotIsolationBetweenBatches(t *testing.T) {
	store := newFakeStore()
	store.breeders = []RefEntity{{ID: 5, Name: "Momotaro"}}
	store.varieties = []RefEntity{{ID: 1, Name: "Kohaku"}}
	engine := NewEngine(store, 2, time.Second)

	rows := []RawRow{
		{"Picture ID": "P1", "Variety": "Kohaku", "Bre-ID": "5", "Sold to": "Buyer A"},
	}

	// Same unknown customer in two consecutive batches. The snapshot cache is
	// per batch, and the fake store does not feed creations back into its
	// lists, so each batch creates it again.
	for i := 0; i < 2; i++ {
		if _, err := engine.Map(context.Background(), rows); err != nil {
			t.Fatalf("batch %d failed: %v", i, err)
		}
	}

	if len(store.createdCustomers) != 2 {
		t.Errorf("CreateCustomer called %d times, want 2 (fresh snapshot per batch)", len(store.createdCustomers))
	}
}
