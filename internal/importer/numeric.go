package importer

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// numericNoise matches every character that is not part of a plain decimal
// number. Thousands separators, currency glyphs (¥, $, 円) and stray
// whitespace all fall out here.
var numericNoise = regexp.MustCompile(`[^0-9.\-]`)

// ParseNumeric converts human-formatted numeric text into a number.
//
// It is deliberately total: anything that does not survive cleanup parses as
// 0, so row processing never throws on a numeric cell. Callers that must
// distinguish "absent" from "malformed" (the validator does) re-check the raw
// text with IsNumeric instead.
func ParseNumeric(s string) float64 {
	cleaned := cleanNumeric(s)
	if cleaned == "" {
		return 0
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0
	}

	f, _ := d.Float64()
	return f
}

// IsNumeric reports whether the text parses as a number after the same
// cleanup ParseNumeric applies. Empty input is not numeric.
func IsNumeric(s string) bool {
	cleaned := cleanNumeric(s)
	if cleaned == "" {
		return false
	}
	_, err := decimal.NewFromString(cleaned)
	return err == nil
}

// cleanNumeric strips everything but digits, '.' and '-', after width-folding
// full-width characters (１,０００ is a perfectly normal cell value here).
func cleanNumeric(s string) string {
	s = CleanCell(s)
	s = numericNoise.ReplaceAllString(s, "")

	// A cell like "TBD" or "¥" reduces to nothing meaningful.
	switch strings.Trim(s, ".-") {
	case "":
		return ""
	}
	return s
}
