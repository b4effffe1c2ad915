package importer

import (
	"context"
	"time"
)

// RawRow is one spreadsheet line (excluding the header), keyed by whatever
// column headings the exporting tool happened to use. Header spellings vary
// between tools and even between exports from the same tool (trailing spaces,
// casing), so rows are never read directly; use ResolveField.
//
// Values are untyped because the upstream parser preserves whatever the cell
// held: strings, numbers, or null.
type RawRow map[string]any

// RefEntity is one entry of a reference list (breeder, variety, customer or
// shipping location).
type RefEntity struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Configuration is the single global settings record.
type Configuration struct {
	ExchangeRate      float64 `json:"exchangeRate"`
	DefaultCommission float64 `json:"defaultCommission"`
}

// ReferenceSet is the session-scoped snapshot of all reference data.
//
// It is created fresh at the start of every batch, mutated only by appends
// when the mapper auto-creates a customer or shipping location, and discarded
// when the batch completes. It is never shared across batches, which is what
// makes the append-without-locking safe: one batch processes its rows
// strictly sequentially.
type ReferenceSet struct {
	Breeders      []RefEntity
	Varieties     []RefEntity
	Customers     []RefEntity
	ShipLocations []RefEntity
	Config        Configuration
}

// CanonicalRecord is the storage-ready output of mapping one row.
//
// At most one of SalePriceJpy/SalePriceUsd is set. CommissionRate and
// ExchangeRate are always populated, falling back to the session
// configuration when the row carries no sale.
type CanonicalRecord struct {
	PictureID      string    `json:"pictureId"`
	VarietyID      int       `json:"varietyId"`
	Sex            string    `json:"sex"`
	Age            int       `json:"age"`
	SizeCm         string    `json:"sizeCm"`
	BreederID      int       `json:"breederId"`
	PieceCount     int       `json:"pieceCount"`
	CostJpy        float64   `json:"costJpy"`
	CustomerID     *int      `json:"customerId"`
	ShipToID       *int      `json:"shipToId"`
	SalePriceJpy   *float64  `json:"salePriceJpy"`
	SalePriceUsd   *float64  `json:"salePriceUsd"`
	CommissionRate float64   `json:"commissionRate"`
	ExchangeRate   float64   `json:"exchangeRate"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ValidationIssue collects everything wrong with a single row.
// RowNumber is 1-based (first data row = 1).
type ValidationIssue struct {
	RowNumber int      `json:"rowNumber"`
	Issues    []string `json:"issues"`
	RawData   RawRow   `json:"rawData"`
}

// MissingEntities lists the distinct unresolved hard-reference identifiers
// across a whole batch, so the operator sees one consolidated "add breeder X"
// message instead of one per row.
type MissingEntities struct {
	Breeders  []string `json:"breeders"`
	Varieties []string `json:"varieties"`
}

// ValidationReport is the outcome of a dry-run pass over a batch.
type ValidationReport struct {
	ValidCount      int               `json:"validCount"`
	Invalid         []ValidationIssue `json:"invalid"`
	MissingEntities MissingEntities   `json:"missingEntities"`
}

// RowError records why one row was dropped during mapping.
type RowError struct {
	RowNumber int    `json:"rowNumber"`
	Error     string `json:"error"`
	RawData   RawRow `json:"rawData"`
}

// MappingResult is the outcome of a committing pass: every row lands in
// exactly one of the two lists.
type MappingResult struct {
	Success []CanonicalRecord `json:"success"`
	Errors  []RowError        `json:"errors"`
}

// Store is the engine's view of the backing relational store: the reads that
// build a ReferenceSet plus the insert-and-return-id calls for soft entities.
// Satisfied by *store.Store; tests use an in-memory fake.
type Store interface {
	ListBreeders(ctx context.Context) ([]RefEntity, error)
	ListVarieties(ctx context.Context) ([]RefEntity, error)
	ListCustomers(ctx context.Context) ([]RefEntity, error)
	ListShipLocations(ctx context.Context) ([]RefEntity, error)

	// GetConfiguration returns ok=false when no configuration row exists yet;
	// the loader substitutes defaults rather than failing.
	GetConfiguration(ctx context.Context) (Configuration, bool, error)

	CreateCustomer(ctx context.Context, name string) (int, error)
	CreateShipLocation(ctx context.Context, name string) (int, error)
}
