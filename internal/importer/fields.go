package importer

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// Field identifies one logical field of the import sheet, independent of the
// header spelling a particular export used.
type Field int

const (
	FieldPictureID Field = iota
	FieldVariety
	FieldBreederID
	FieldBreederName
	FieldSex
	FieldAge
	FieldSizeCm
	FieldPieceCount
	FieldCostJpy
	FieldSaleJpy
	FieldCommissionJpy
	FieldSaleUsd
	FieldCommissionUsd
	FieldCustomer
	FieldShipTo
)

// fieldAliases maps each logical field to the header spellings observed in
// the wild, in priority order. Lookup is case-insensitive and ignores
// surrounding whitespace, so "Variety " and "variety" both hit FieldVariety
// without needing their own entries.
var fieldAliases = map[Field][]string{
	FieldPictureID:     {"Picture ID", "PictureID", "Picture No", "Photo ID"},
	FieldVariety:       {"Variety", "Variety Name", "Breed"},
	FieldBreederID:     {"Bre-ID", "Breeder ID", "BreID"},
	FieldBreederName:   {"Breeder", "Breeder Name", "Bre Name"},
	FieldSex:           {"Sex", "M/F"},
	FieldAge:           {"Age", "Years"},
	FieldSizeCm:        {"Size", "Size cm", "SIZE CM", "Length"},
	FieldPieceCount:    {"PCS", "Pcs", "Pieces", "Qty", "Quantity"},
	FieldCostJpy:       {"JPY Cost", "Cost JPY", "Cost"},
	FieldSaleJpy:       {"JPY Sale", "Sale JPY", "Sold JPY", "Sale Price JPY"},
	FieldCommissionJpy: {"JPY Comm", "Comm JPY", "Commission JPY"},
	FieldSaleUsd:       {"USD Sale", "Sale USD", "Sold USD", "Sale Price USD"},
	FieldCommissionUsd: {"USD Comm", "Comm USD", "Commission USD"},
	FieldCustomer:      {"Sold to", "Sold To", "Customer", "Buyer"},
	FieldShipTo:        {"Ship to", "Ship To", "Shipping", "Destination"},
}

// ResolveField returns the first alias of the logical field that carries a
// non-empty value in the row, cleaned; "" if none does.
func ResolveField(row RawRow, field Field) string {
	for _, alias := range fieldAliases[field] {
		for key, value := range row {
			if !strings.EqualFold(strings.TrimSpace(key), alias) {
				continue
			}
			if v := CleanCell(cellString(value)); v != "" {
				return v
			}
		}
	}
	return ""
}

// cellString renders whatever the upstream parser put in a cell as a string.
// JSON numbers arrive as float64; integer values must not pick up a trailing
// ".0" or breeder-id matching breaks.
func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// CleanCell removes common spreadsheet artifacts from a cell value:
//   - trims whitespace
//   - removes Excel formula prefix (="...")
//   - removes surrounding quotes
//   - folds full-width characters to half-width (the source sheets come from
//     Japanese bookkeeping tools, where full-width digits are common)
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)
	s = width.Fold.String(s)

	return strings.TrimSpace(s)
}
