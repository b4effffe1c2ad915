package importer

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
)

// hardKind distinguishes the two hard-reference catalogs. Varieties get an
// extra fuzzy pass because the sheets routinely abbreviate variety names
// ("Showa" for "Showa Sanshoku"); breeder names do not tolerate that.
type hardKind int

const (
	kindBreeder hardKind = iota
	kindVariety
)

// softKind distinguishes the two auto-creatable catalogs.
type softKind int

const (
	kindCustomer softKind = iota
	kindShipLocation
)

func (k softKind) String() string {
	if k == kindCustomer {
		return "customer"
	}
	return "ship location"
}

// resolveHard resolves a breeder or variety identifier against the snapshot:
//
//  1. exact match on the numeric id,
//  2. case-insensitive exact match on the name,
//  3. varieties only: case-insensitive substring match in either direction.
//
// The first match wins. When several catalog varieties contain the same
// substring the outcome depends on catalog load order; there is no
// disambiguation rule yet (tracked with the product owner).
func resolveHard(kind hardKind, identifier string, list []RefEntity) (int, bool) {
	if identifier == "" {
		return 0, false
	}

	for _, e := range list {
		if strconv.Itoa(e.ID) == identifier {
			return e.ID, true
		}
	}

	for _, e := range list {
		if strings.EqualFold(e.Name, identifier) {
			return e.ID, true
		}
	}

	if kind == kindVariety {
		needle := strings.ToLower(identifier)
		for _, e := range list {
			name := strings.ToLower(e.Name)
			if strings.Contains(name, needle) || strings.Contains(needle, name) {
				return e.ID, true
			}
		}
	}

	return 0, false
}

// resolveOrCreateSoft resolves a customer or shipping location by name,
// creating it when unknown. Returns nil for an empty name (soft references
// are optional) and nil when creation fails: an unresolved non-critical
// reference must not sink the row, so the failure is logged and the record
// simply carries no reference.
//
// A newly created entity is appended to the snapshot so later rows in the
// same batch reuse its id instead of inserting a duplicate.
func resolveOrCreateSoft(ctx context.Context, store Store, kind softKind, name string, refs *ReferenceSet) *int {
	if name == "" {
		return nil
	}

	list := refs.Customers
	if kind == kindShipLocation {
		list = refs.ShipLocations
	}

	for _, e := range list {
		if strings.EqualFold(e.Name, name) {
			id := e.ID
			return &id
		}
	}

	var (
		id  int
		err error
	)
	if kind == kindCustomer {
		id, err = store.CreateCustomer(ctx, name)
	} else {
		id, err = store.CreateShipLocation(ctx, name)
	}
	if err != nil {
		slog.Warn("soft reference creation failed",
			"kind", kind.String(),
			"name", name,
			"error", err,
		)
		return nil
	}

	created := RefEntity{ID: id, Name: name}
	if kind == kindCustomer {
		refs.Customers = append(refs.Customers, created)
	} else {
		refs.ShipLocations = append(refs.ShipLocations, created)
	}

	return &id
}
