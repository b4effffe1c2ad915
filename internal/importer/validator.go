package importer

import "fmt"

// numericChecks are the fields the validator format-checks: optional, but if
// a cell holds text it must parse as a number.
var numericChecks = []struct {
	field Field
	label string
}{
	{FieldAge, "Age"},
	{FieldPieceCount, "PCS"},
	{FieldCostJpy, "JPY Cost"},
}

// validateRows dry-runs a batch. It re-derives the same structural and
// hard-reference checks as the mapper but does not short-circuit: a row
// accumulates every issue it has, so the operator fixes the sheet in one
// round trip instead of several. It never creates soft entities and never
// writes anything.
//
// Distinct unresolved breeder/variety identifiers are also collected across
// the whole batch (first-seen order, deduplicated) so a sheet from a new
// breeder produces one "add breeder X" item, not one per row.
func validateRows(rows []RawRow, refs *ReferenceSet) *ValidationReport {
	report := &ValidationReport{
		Invalid: []ValidationIssue{},
		MissingEntities: MissingEntities{
			Breeders:  []string{},
			Varieties: []string{},
		},
	}

	seenBreeders := map[string]bool{}
	seenVarieties := map[string]bool{}

	for i, row := range rows {
		var issues []string

		if ResolveField(row, FieldPictureID) == "" {
			issues = append(issues, "Missing Picture ID")
		}

		varietyText := ResolveField(row, FieldVariety)
		if varietyText == "" {
			issues = append(issues, "Missing variety")
		} else if _, ok := resolveHard(kindVariety, varietyText, refs.Varieties); !ok {
			issues = append(issues, fmt.Sprintf("Unknown variety: %s", varietyText))
			if !seenVarieties[varietyText] {
				seenVarieties[varietyText] = true
				report.MissingEntities.Varieties = append(report.MissingEntities.Varieties, varietyText)
			}
		}

		breederIdent := ResolveField(row, FieldBreederID)
		if breederIdent == "" {
			breederIdent = ResolveField(row, FieldBreederName)
		}
		if breederIdent == "" {
			issues = append(issues, "Missing breeder")
		} else if _, ok := resolveHard(kindBreeder, breederIdent, refs.Breeders); !ok {
			issues = append(issues, fmt.Sprintf("Unknown breeder: %s", breederIdent))
			if !seenBreeders[breederIdent] {
				seenBreeders[breederIdent] = true
				report.MissingEntities.Breeders = append(report.MissingEntities.Breeders, breederIdent)
			}
		}

		for _, check := range numericChecks {
			raw := ResolveField(row, check.field)
			if raw != "" && !IsNumeric(raw) {
				issues = append(issues, fmt.Sprintf("Invalid %s: %s", check.label, raw))
			}
		}

		if len(issues) > 0 {
			report.Invalid = append(report.Invalid, ValidationIssue{
				RowNumber: i + 1,
				Issues:    issues,
				RawData:   row,
			})
			continue
		}
		report.ValidCount++
	}

	return report
}
