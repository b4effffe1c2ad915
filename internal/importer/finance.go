package importer

import "github.com/shopspring/decimal"

// saleFigures is what the financial calculator stamps onto a record.
type saleFigures struct {
	SalePriceJpy   *float64
	SalePriceUsd   *float64
	CommissionRate float64
}

// computeSales derives the sale price and the effective commission rate from
// a row. A sheet records a sale either in JPY or in USD, never both; the JPY
// columns take precedence when both are somehow filled.
//
// Commission is a percentage of the realized sale, so it is only computable
// when a sale amount is present. Without one, the configured default rate is
// recorded anyway: a fish still in stock needs a rate the moment it sells.
func computeSales(row RawRow, refs *ReferenceSet) saleFigures {
	out := saleFigures{CommissionRate: refs.Config.DefaultCommission}

	if sale := ParseNumeric(ResolveField(row, FieldSaleJpy)); sale > 0 {
		out.SalePriceJpy = &sale
		out.CommissionRate = commissionRate(ParseNumeric(ResolveField(row, FieldCommissionJpy)), sale, refs)
		return out
	}

	if sale := ParseNumeric(ResolveField(row, FieldSaleUsd)); sale > 0 {
		out.SalePriceUsd = &sale
		out.CommissionRate = commissionRate(ParseNumeric(ResolveField(row, FieldCommissionUsd)), sale, refs)
		return out
	}

	return out
}

// commissionRate divides the commission amount by the sale amount, falling
// back to the configured default when no commission was recorded. The
// division goes through decimal so 150/1000 comes out as exactly 0.15.
func commissionRate(commission, sale float64, refs *ReferenceSet) float64 {
	if commission <= 0 {
		return refs.Config.DefaultCommission
	}
	rate, _ := decimal.NewFromFloat(commission).
		Div(decimal.NewFromFloat(sale)).
		Float64()
	return rate
}
