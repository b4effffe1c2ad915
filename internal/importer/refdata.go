package importer

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Defaults used when the business has not configured anything yet. The tool
// must stay operable on a fresh database.
const (
	DefaultExchangeRate   = 140
	DefaultCommissionRate = 0.2
)

// ReferenceLoadError means the reference snapshot could not be built and the
// whole batch is aborted; it is the only error class that escapes the engine.
type ReferenceLoadError struct {
	Stage string // which fetch failed: "breeders", "varieties", ...
	Err   error
}

func (e *ReferenceLoadError) Error() string {
	return fmt.Sprintf("load reference data (%s): %v", e.Stage, e.Err)
}

func (e *ReferenceLoadError) Unwrap() error { return e.Err }

// Loader builds the per-batch ReferenceSet snapshot.
type Loader struct {
	store Store
}

// NewLoader creates a Loader over the given store.
func NewLoader(store Store) *Loader {
	return &Loader{store: store}
}

// Load fetches the four reference lists and the configuration record. The
// five fetches are independent reads and run concurrently; any failure turns
// into a *ReferenceLoadError for the whole batch.
//
// A missing configuration row is not an error: the loader substitutes the
// hard-coded defaults instead.
func (l *Loader) Load(ctx context.Context) (*ReferenceSet, error) {
	refs := &ReferenceSet{}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		list, err := l.store.ListBreeders(ctx)
		if err != nil {
			return &ReferenceLoadError{Stage: "breeders", Err: err}
		}
		refs.Breeders = list
		return nil
	})
	g.Go(func() error {
		list, err := l.store.ListVarieties(ctx)
		if err != nil {
			return &ReferenceLoadError{Stage: "varieties", Err: err}
		}
		refs.Varieties = list
		return nil
	})
	g.Go(func() error {
		list, err := l.store.ListCustomers(ctx)
		if err != nil {
			return &ReferenceLoadError{Stage: "customers", Err: err}
		}
		refs.Customers = list
		return nil
	})
	g.Go(func() error {
		list, err := l.store.ListShipLocations(ctx)
		if err != nil {
			return &ReferenceLoadError{Stage: "ship locations", Err: err}
		}
		refs.ShipLocations = list
		return nil
	})
	g.Go(func() error {
		cfg, ok, err := l.store.GetConfiguration(ctx)
		if err != nil {
			return &ReferenceLoadError{Stage: "configuration", Err: err}
		}
		if !ok {
			cfg = Configuration{
				ExchangeRate:      DefaultExchangeRate,
				DefaultCommission: DefaultCommissionRate,
			}
		}
		refs.Config = cfg
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return refs, nil
}
