package importer

import (
	"context"
	"testing"
)

func TestResolveHard(t *testing.T) {
	varieties := []RefEntity{
		{ID: 1, Name: "Kohaku"},
		{ID: 2, Name: "Showa Sanshoku"},
		{ID: 3, Name: "Taisho Sanke"},
	}
	breeders := []RefEntity{
		{ID: 5, Name: "Momotaro"},
		{ID: 7, Name: "Sakai"},
	}

	tests := []struct {
		name       string
		kind       hardKind
		identifier string
		list       []RefEntity
		wantID     int
		wantOK     bool
	}{
		{"numeric id", kindBreeder, "5", breeders, 5, true},
		{"exact name", kindBreeder, "Sakai", breeders, 7, true},
		{"case insensitive name", kindBreeder, "momotaro", breeders, 5, true},
		{"unknown breeder", kindBreeder, "Dainichi", breeders, 0, false},
		{"no fuzzy match for breeders", kindBreeder, "Saka", breeders, 0, false},
		{"empty identifier", kindBreeder, "", breeders, 0, false},

		{"variety exact", kindVariety, "Kohaku", varieties, 1, true},
		{"variety abbreviation", kindVariety, "Showa", varieties, 2, true},
		{"variety superset", kindVariety, "Taisho Sanke Special", varieties, 3, true},
		{"variety by id", kindVariety, "2", varieties, 2, true},
		{"unknown variety", kindVariety, "Asagi", varieties, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := resolveHard(tt.kind, tt.identifier, tt.list)
			if ok != tt.wantOK {
				t.Fatalf("resolveHard(%q) ok = %v, want %v", tt.identifier, ok, tt.wantOK)
			}
			if id != tt.wantID {
				t.Errorf("resolveHard(%q) id = %d, want %d", tt.identifier, id, tt.wantID)
			}
		})
	}
}

func TestResolveHard_IDBeatsName(t *testing.T) {
	// "7" is both an id and, awkwardly, a name in this catalog. The id match
	// runs first across the whole list.
	list := []RefEntity{
		{ID: 1, Name: "7"},
		{ID: 7, Name: "Sakai"},
	}
	id, ok := resolveHard(kindBreeder, "7", list)
	if !ok || id != 7 {
		t.Errorf("resolveHard(\"7\") = (%d, %v), want (7, true)", id, ok)
	}
}

func TestResolveOrCreateSoft(t *testing.T) {
	ctx := context.Background()

	t.Run("empty name returns nil", func(t *testing.T) {
		store := newFakeStore()
		refs := &ReferenceSet{}
		if got := resolveOrCreateSoft(ctx, store, kindCustomer, "", refs); got != nil {
			t.Errorf("expected nil for empty name, got %v", *got)
		}
		if len(store.createdCustomers) != 0 {
			t.Errorf("created %v, want none", store.createdCustomers)
		}
	})

	t.Run("existing customer matched case-insensitively", func(t *testing.T) {
		store := newFakeStore()
		refs := &ReferenceSet{Customers: []RefEntity{{ID: 9, Name: "Koi World"}}}
		got := resolveOrCreateSoft(ctx, store, kindCustomer, "koi world", refs)
		if got == nil || *got != 9 {
			t.Fatalf("expected id 9, got %v", got)
		}
		if len(store.createdCustomers) != 0 {
			t.Errorf("created %v, want none", store.createdCustomers)
		}
	})

	t.Run("unknown customer is created once per batch", func(t *testing.T) {
		store := newFakeStore()
		refs := &ReferenceSet{Customers: []RefEntity{}}

		first := resolveOrCreateSoft(ctx, store, kindCustomer, "New Buyer", refs)
		if first == nil {
			t.Fatal("expected id for created customer")
		}

		// Second row with the same name must reuse the cached id.
		second := resolveOrCreateSoft(ctx, store, kindCustomer, "New Buyer", refs)
		if second == nil || *second != *first {
			t.Fatalf("expected cached id %d, got %v", *first, second)
		}

		if len(store.createdCustomers) != 1 {
			t.Errorf("CreateCustomer called %d times, want 1", len(store.createdCustomers))
		}
	})

	t.Run("creation failure yields nil, not an error", func(t *testing.T) {
		store := newFakeStore()
		store.createErr = errStoreDown
		refs := &ReferenceSet{}

		if got := resolveOrCreateSoft(ctx, store, kindShipLocation, "Narita", refs); got != nil {
			t.Errorf("expected nil on creation failure, got %v", *got)
		}
		if len(refs.ShipLocations) != 0 {
			t.Errorf("snapshot should not cache a failed creation, got %v", refs.ShipLocations)
		}
	})

	t.Run("ship location uses its own catalog", func(t *testing.T) {
		store := newFakeStore()
		refs := &ReferenceSet{
			Customers:     []RefEntity{{ID: 1, Name: "Narita"}},
			ShipLocations: []RefEntity{{ID: 2, Name: "Narita"}},
		}
		got := resolveOrCreateSoft(ctx, store, kindShipLocation, "Narita", refs)
		if got == nil || *got != 2 {
			t.Errorf("expected ship location id 2, got %v", got)
		}
	})
}
