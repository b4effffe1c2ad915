package importer

import (
	"context"
	"errors"
	"testing"
)

func TestLoader_Load(t *testing.T) {
	store := newFakeStore()
	store.breeders = []RefEntity{{ID: 1, Name: "Momotaro"}}
	store.varieties = []RefEntity{{ID: 2, Name: "Kohaku"}}
	store.customers = []RefEntity{{ID: 3, Name: "Koi World"}}
	store.shipLocations = []RefEntity{{ID: 4, Name: "Narita"}}
	store.config = Configuration{ExchangeRate: 150, DefaultCommission: 0.25}
	store.hasConfig = true

	refs, err := NewLoader(store).Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(refs.Breeders) != 1 || refs.Breeders[0].Name != "Momotaro" {
		t.Errorf("Breeders = %v", refs.Breeders)
	}
	if len(refs.Varieties) != 1 || refs.Varieties[0].Name != "Kohaku" {
		t.Errorf("Varieties = %v", refs.Varieties)
	}
	if len(refs.Customers) != 1 || len(refs.ShipLocations) != 1 {
		t.Errorf("Customers = %v, ShipLocations = %v", refs.Customers, refs.ShipLocations)
	}
	if refs.Config.ExchangeRate != 150 || refs.Config.DefaultCommission != 0.25 {
		t.Errorf("Config = %+v", refs.Config)
	}
}

func TestLoader_MissingConfigurationUsesDefaults(t *testing.T) {
	store := newFakeStore() // hasConfig stays false

	refs, err := NewLoader(store).Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if refs.Config.ExchangeRate != DefaultExchangeRate {
		t.Errorf("ExchangeRate = %v, want %v", refs.Config.ExchangeRate, DefaultExchangeRate)
	}
	if refs.Config.DefaultCommission != DefaultCommissionRate {
		t.Errorf("DefaultCommission = %v, want %v", refs.Config.DefaultCommission, DefaultCommissionRate)
	}
}

func TestLoader_FetchFailureIsReferenceLoadError(t *testing.T) {
	store := newFakeStore()
	store.listErr = errStoreDown

	_, err := NewLoader(store).Load(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}

	var refErr *ReferenceLoadError
	if !errors.As(err, &refErr) {
		t.Fatalf("expected *ReferenceLoadError, got %T: %v", err, err)
	}
	if !errors.Is(err, errStoreDown) {
		t.Errorf("cause not preserved: %v", err)
	}
}

func TestLoader_ConfigurationFailureIsReferenceLoadError(t *testing.T) {
	store := newFakeStore()
	store.configErr = errStoreDown

	_, err := NewLoader(store).Load(context.Background())

	var refErr *ReferenceLoadError
	if !errors.As(err, &refErr) {
		t.Fatalf("expected *ReferenceLoadError, got %T: %v", err, err)
	}
	if refErr.Stage != "configuration" {
		t.Errorf("Stage = %q, want configuration", refErr.Stage)
	}
}
