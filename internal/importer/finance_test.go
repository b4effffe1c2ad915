package importer

import "testing"

func testRefs() *ReferenceSet {
	return &ReferenceSet{
		Config: Configuration{
			ExchangeRate:      140,
			DefaultCommission: 0.2,
		},
	}
}

func TestComputeSales_NoSale(t *testing.T) {
	got := computeSales(RawRow{}, testRefs())

	if got.SalePriceJpy != nil {
		t.Errorf("SalePriceJpy = %v, want nil", *got.SalePriceJpy)
	}
	if got.SalePriceUsd != nil {
		t.Errorf("SalePriceUsd = %v, want nil", *got.SalePriceUsd)
	}
	if got.CommissionRate != 0.2 {
		t.Errorf("CommissionRate = %v, want default 0.2", got.CommissionRate)
	}
}

func TestComputeSales_JpySale(t *testing.T) {
	row := RawRow{
		"JPY Sale": "100,000",
		"JPY Comm": "15,000",
	}
	got := computeSales(row, testRefs())

	if got.SalePriceJpy == nil || *got.SalePriceJpy != 100000 {
		t.Fatalf("SalePriceJpy = %v, want 100000", got.SalePriceJpy)
	}
	if got.SalePriceUsd != nil {
		t.Errorf("SalePriceUsd = %v, want nil", *got.SalePriceUsd)
	}
	if got.CommissionRate != 0.15 {
		t.Errorf("CommissionRate = %v, want exactly 0.15", got.CommissionRate)
	}
}

func TestComputeSales_UsdSale(t *testing.T) {
	row := RawRow{
		"USD Sale": "$1,000",
		"USD Comm": "150",
	}
	got := computeSales(row, testRefs())

	if got.SalePriceUsd == nil || *got.SalePriceUsd != 1000 {
		t.Fatalf("SalePriceUsd = %v, want 1000", got.SalePriceUsd)
	}
	if got.SalePriceJpy != nil {
		t.Errorf("SalePriceJpy = %v, want nil", *got.SalePriceJpy)
	}
	if got.CommissionRate != 0.15 {
		t.Errorf("CommissionRate = %v, want 0.15", got.CommissionRate)
	}
}

func TestComputeSales_JpyWinsOverUsd(t *testing.T) {
	// A sheet should never fill both, but when it does the JPY columns win.
	row := RawRow{
		"JPY Sale": "50,000",
		"USD Sale": "400",
	}
	got := computeSales(row, testRefs())

	if got.SalePriceJpy == nil || *got.SalePriceJpy != 50000 {
		t.Fatalf("SalePriceJpy = %v, want 50000", got.SalePriceJpy)
	}
	if got.SalePriceUsd != nil {
		t.Errorf("SalePriceUsd = %v, want nil", *got.SalePriceUsd)
	}
}

func TestComputeSales_SaleWithoutCommissionUsesDefault(t *testing.T) {
	row := RawRow{"JPY Sale": "80,000"}
	got := computeSales(row, testRefs())

	if got.SalePriceJpy == nil || *got.SalePriceJpy != 80000 {
		t.Fatalf("SalePriceJpy = %v, want 80000", got.SalePriceJpy)
	}
	if got.CommissionRate != 0.2 {
		t.Errorf("CommissionRate = %v, want default 0.2", got.CommissionRate)
	}
}

func TestCommissionRate_ExactDivision(t *testing.T) {
	tests := []struct {
		commission float64
		sale       float64
		want       float64
	}{
		{150, 1000, 0.15},
		{200, 1000, 0.2},
		{1, 3, 0.3333333333333333},
		{0, 1000, 0.2},  // falls back to default
		{-5, 1000, 0.2}, // negative treated as absent
	}

	refs := testRefs()
	for _, tt := range tests {
		got := commissionRate(tt.commission, tt.sale, refs)
		if got != tt.want {
			t.Errorf("commissionRate(%v, %v) = %v, want %v", tt.commission, tt.sale, got, tt.want)
		}
	}
}
