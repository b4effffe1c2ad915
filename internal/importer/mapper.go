package importer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// mapRow turns one raw row into a canonical record, or returns the reason it
// could not. Hard references short-circuit: the first missing or
// unresolvable one drops the row. Soft references are best-effort and never
// block the row.
//
// A panic anywhere below (a malformed cell taking an unexpected shape) is
// captured into a row error so a single bad line can never abort the batch.
func (e *Engine) mapRow(ctx context.Context, row RawRow, refs *ReferenceSet) (rec *CanonicalRecord, err error) {
	pictureID := ResolveField(row, FieldPictureID)

	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic while mapping row", "picture_id", pictureID, "panic", r)
			rec = nil
			err = fmt.Errorf("unexpected error mapping row (picture %q): %v", pictureID, r)
		}
	}()

	if pictureID == "" {
		return nil, fmt.Errorf("missing Picture ID")
	}

	varietyText := ResolveField(row, FieldVariety)
	if varietyText == "" {
		return nil, fmt.Errorf("missing variety")
	}
	varietyID, ok := resolveHard(kindVariety, varietyText, refs.Varieties)
	if !ok {
		return nil, fmt.Errorf("unknown variety: %s", varietyText)
	}

	breederIdent := ResolveField(row, FieldBreederID)
	if breederIdent == "" {
		breederIdent = ResolveField(row, FieldBreederName)
	}
	if breederIdent == "" {
		return nil, fmt.Errorf("missing breeder")
	}
	breederID, ok := resolveHard(kindBreeder, breederIdent, refs.Breeders)
	if !ok {
		return nil, fmt.Errorf("unknown breeder: %s", breederIdent)
	}

	customerID := resolveOrCreateSoft(ctx, e.store, kindCustomer, ResolveField(row, FieldCustomer), refs)
	shipToID := resolveOrCreateSoft(ctx, e.store, kindShipLocation, ResolveField(row, FieldShipTo), refs)

	sales := computeSales(row, refs)

	sex := "m"
	if s := ResolveField(row, FieldSex); s != "" {
		sex = strings.ToLower(string([]rune(s)[0]))
	}

	age := int(ParseNumeric(ResolveField(row, FieldAge)))
	if age < 0 {
		age = 0
	}

	sizeCm := ResolveField(row, FieldSizeCm)
	if sizeCm == "" {
		sizeCm = "0"
	}

	pieceCount := int(ParseNumeric(ResolveField(row, FieldPieceCount)))
	if pieceCount < 1 {
		pieceCount = 1
	}

	return &CanonicalRecord{
		PictureID:      pictureID,
		VarietyID:      varietyID,
		Sex:            sex,
		Age:            age,
		SizeCm:         sizeCm,
		BreederID:      breederID,
		PieceCount:     pieceCount,
		CostJpy:        ParseNumeric(ResolveField(row, FieldCostJpy)),
		CustomerID:     customerID,
		ShipToID:       shipToID,
		SalePriceJpy:   sales.SalePriceJpy,
		SalePriceUsd:   sales.SalePriceUsd,
		CommissionRate: sales.CommissionRate,
		ExchangeRate:   refs.Config.ExchangeRate,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// mapRows drives mapRow across a batch, strictly in order. Sequential
// processing is load-bearing: it lets the soft-entity cache in refs dedupe
// creations without any locking.
//
// Every row yields exactly one entry: a record in Success or a RowError with
// its 1-based row number.
func (e *Engine) mapRows(ctx context.Context, rows []RawRow, refs *ReferenceSet) *MappingResult {
	result := &MappingResult{
		Success: []CanonicalRecord{},
		Errors:  []RowError{},
	}

	for i, row := range rows {
		rec, err := e.mapRow(ctx, row, refs)
		if err != nil {
			slog.Warn("row skipped", "row", i+1, "reason", err.Error())
			result.Errors = append(result.Errors, RowError{
				RowNumber: i + 1,
				Error:     err.Error(),
				RawData:   row,
			})
			continue
		}
		result.Success = append(result.Success, *rec)
	}

	return result
}
