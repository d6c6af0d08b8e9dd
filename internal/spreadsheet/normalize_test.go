package spreadsheet

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain integer", "42", "42"},
		{"dot decimal", "12.5", "12.5"},
		{"comma decimal", "12,5", "12.5"},
		{"negative comma decimal", "-3,25", "-3.25"},
		{"padded", "  7,0  ", "7"},
		{"empty", "", "0"},
		{"dash marker", "-", "0"},
		{"nan marker", "NaN", "0"},
		{"none marker", "None", "0"},
		{"garbage", "abc", "0"},
		{"mixed garbage", "12x5", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, ParseDecimal(tt.raw).Equal(decimal.RequireFromString(tt.want)),
				"ParseDecimal(%q)", tt.raw)
		})
	}
}

func TestCleanNumber(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "100", "100"},
		{"comma decimal", "1,5", "1.5"},
		{"currency noise", "$ 1.234", "1.234"},
		{"negative", "-8", "-8"},
		{"letters only", "abc", "0"},
		{"empty", "", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, CleanNumber(tt.raw).Equal(decimal.RequireFromString(tt.want)),
				"CleanNumber(%q)", tt.raw)
		})
	}
}

func TestParseDocument(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantType   string
		wantNumber string
	}{
		{"entry", "EA12345", "EA", "12345"},
		{"exit", "SA999", "SA", "999"},
		{"leading noise", "DOC-SA777", "SA", "777"},
		{"lowercase", "ea42", "EA", "42"},
		{"earliest code wins", "XSA1EA2", "SA", "1EA2"},
		{"too short", "E", "", ""},
		{"empty", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docType, number := ParseDocument(tt.raw)
			assert.Equal(t, tt.wantType, docType)
			assert.Equal(t, tt.wantNumber, number)
		})
	}
}

func TestParseDocument_NoCodeKeepsPrefix(t *testing.T) {
	// Without an EA/SA occurrence the first two characters are treated as
	// the type code.
	docType, number := ParseDocument("ZZ123")
	assert.Equal(t, "ZZ", docType)
	assert.Equal(t, "123", number)
}

func TestParseLedgerDate(t *testing.T) {
	compact, err := ParseLedgerDate("20240315")
	assert.NoError(t, err)
	assert.Equal(t, "2024-03-15", compact.Format("2006-01-02"))

	formatted, err := ParseLedgerDate("2023-12-01")
	assert.NoError(t, err)
	assert.Equal(t, "2023-12-01", formatted.Format("2006-01-02"))

	for _, raw := range []string{"", "15/03/2024", "2024031", "notadate", "20241350"} {
		_, err := ParseLedgerDate(raw)
		assert.Error(t, err, "ParseLedgerDate(%q)", raw)
	}
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "123", NormalizeCode("00123"))
	assert.Equal(t, "123", NormalizeCode("  123  "))
	assert.Equal(t, "9A00", NormalizeCode("09A00"))
	assert.Equal(t, "", NormalizeCode("0000"))
	assert.Equal(t, "", NormalizeCode(""))
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Tornillo M6", CleanText("  Tornillo M6 "))
	assert.Equal(t, "", CleanText("nan"))
	assert.Equal(t, "", CleanText("N/A"))
	assert.Equal(t, "", CleanText(" - "))
}
