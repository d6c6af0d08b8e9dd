// Package spreadsheet turns heterogeneous spreadsheet exports into tables
// with canonical column names and canonical typed cell values.
package spreadsheet

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// nullMarkers are cell values that spreadsheet exports use for "no value".
var nullMarkers = map[string]struct{}{
	"":     {},
	"-":    {},
	"nan":  {},
	"none": {},
	"null": {},
	"n/a":  {},
}

// ParseDecimal converts a locale-formatted numeric cell (comma as decimal
// separator) into a decimal. Blanks, null markers and unparseable values
// yield zero; it never fails, so every money and quantity field stays
// numerically robust against malformed cells.
func ParseDecimal(raw string) decimal.Decimal {
	cleaned := strings.TrimSpace(raw)
	if _, null := nullMarkers[strings.ToLower(cleaned)]; null {
		return decimal.Zero
	}
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// CleanNumber is the harsher variant used on movement-file numeric columns:
// after the comma swap every rune outside [0-9.-] is stripped before
// parsing. Unparseable values coerce to zero.
func CleanNumber(raw string) decimal.Decimal {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	var b strings.Builder
	for _, r := range cleaned {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseDocument splits a raw document cell into its two-letter type code and
// number. Leading noise before the first EA/SA occurrence is discarded and
// the value is uppercased. Cells too short to carry a code yield ("", "").
func ParseDocument(raw string) (docType, number string) {
	doc := strings.ToUpper(strings.TrimSpace(raw))
	idx := -1
	for _, code := range []string{"EA", "SA"} {
		if i := strings.Index(doc, code); i >= 0 && (idx < 0 || i < idx) {
			idx = i
		}
	}
	if idx >= 0 {
		doc = doc[idx:]
	}
	if len(doc) < 2 {
		return "", ""
	}
	return doc[:2], doc[2:]
}

// ParseLedgerDate parses a movement date. Accepted shapes are the 8-digit
// YYYYMMDD export form and an already formatted YYYY-MM-DD; anything else is
// a per-row error for the caller to count.
func ParseLedgerDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if len(s) == 8 && isDigits(s) {
		s = fmt.Sprintf("%s-%s-%s", s[:4], s[4:6], s[6:])
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid movement date %q", raw)
	}
	return t, nil
}

// NormalizeCode canonicalizes a product code: trim whitespace and strip
// leading zeros. Applied identically to base and update files so "00123"
// and "123" resolve to the same product.
func NormalizeCode(raw string) string {
	return strings.TrimLeft(strings.TrimSpace(raw), "0")
}

// CleanText trims a text cell and collapses null markers to empty.
func CleanText(raw string) string {
	s := strings.TrimSpace(raw)
	if _, null := nullMarkers[strings.ToLower(s)]; null {
		return ""
	}
	return s
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
