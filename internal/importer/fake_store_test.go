package importer

import (
	"context"
	"errors"
	"sync"
)

// fakeStore is an in-memory Store for tests. Creates assign sequential ids
// starting after the highest seeded id.
type fakeStore struct {
	mu sync.Mutex

	breeders      []RefEntity
	varieties     []RefEntity
	customers     []RefEntity
	shipLocations []RefEntity

	config    Configuration
	hasConfig bool

	// Per-call error injection.
	listErr     error
	configErr   error
	createErr   error
	createPanic bool

	createdCustomers []string
	createdShipTos   []string

	nextID int
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 100}
}

func (f *fakeStore) ListBreeders(ctx context.Context) ([]RefEntity, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.breeders, nil
}

func (f *fakeStore) ListVarieties(ctx context.Context) ([]RefEntity, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.varieties, nil
}

func (f *fakeStore) ListCustomers(ctx context.Context) ([]RefEntity, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.customers, nil
}

func (f *fakeStore) ListShipLocations(ctx context.Context) ([]RefEntity, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.shipLocations, nil
}

func (f *fakeStore) GetConfiguration(ctx context.Context) (Configuration, bool, error) {
	if f.configErr != nil {
		return Configuration{}, false, f.configErr
	}
	return f.config, f.hasConfig, nil
}

func (f *fakeStore) CreateCustomer(ctx context.Context, name string) (int, error) {
	if f.createPanic {
		panic("store blew up")
	}
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.createdCustomers = append(f.createdCustomers, name)
	return f.nextID, nil
}

func (f *fakeStore) CreateShipLocation(ctx context.Context, name string) (int, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.createdShipTos = append(f.createdShipTos, name)
	return f.nextID, nil
}

var errStoreDown = errors.New("connection refused")
