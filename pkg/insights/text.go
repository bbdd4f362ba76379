package insights

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// cellTrimSet is shared with the push-down SQL (btrim) so both strategies trim identically.
const cellTrimSet = " \t\r\n"

var (
	nonAlphanumeric = regexp.MustCompile(`[^\p{L}\p{N}]+`)

	// numericToken is mirrored verbatim in the push-down SQL.
	numericToken = regexp.MustCompile(`^[-+]?([0-9]+\.?[0-9]*|\.[0-9]+)([eE][-+]?[0-9]+)?$`)
)

const numericTokenSQL = `^[-+]?([0-9]+\.?[0-9]*|\.[0-9]+)([eE][-+]?[0-9]+)?$`

var blankLike = map[string]bool{
	"":     true,
	"-":    true,
	"null": true,
	"nan":  true,
	"n/a":  true,
}

// NormalizeText lowercases s, turns every run of non-alphanumeric characters into a
// single space and trims the result.
func NormalizeText(s string) string {
	return strings.TrimSpace(nonAlphanumeric.ReplaceAllString(strings.ToLower(s), " "))
}

// Tokens returns the normalized tokens of s.
func Tokens(s string) []string {
	return strings.Fields(NormalizeText(s))
}

// IsBlankLike reports whether a cell value counts as absent.
func IsBlankLike(v string) bool {
	return blankLike[strings.ToLower(strings.Trim(v, cellTrimSet))]
}

// cellValue returns the trimmed cell text and false when the cell is blank-like.
func cellValue(v string) (string, bool) {
	t := strings.Trim(v, cellTrimSet)
	if blankLike[strings.ToLower(t)] {
		return "", false
	}
	return t, true
}

// ParseNumber parses a cell as an exact decimal. Thousands separators are ignored;
// blank-like values and non-numeric text are rejected.
func ParseNumber(v string) (decimal.Decimal, bool) {
	t, ok := cellValue(v)
	if !ok {
		return decimal.Zero, false
	}
	t = strings.ReplaceAll(t, ",", "")
	if !numericToken.MatchString(t) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(canonicalNumber(t))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// IsNumeric reports whether a cell parses as a number.
func IsNumeric(v string) bool {
	_, ok := ParseNumber(v)
	return ok
}

// canonicalNumber rewrites the forms numericToken accepts but decimal may not
// ("+3", "1.", ".5") into plain decimal notation.
func canonicalNumber(t string) string {
	sign := ""
	switch {
	case strings.HasPrefix(t, "+"):
		t = t[1:]
	case strings.HasPrefix(t, "-"):
		sign, t = "-", t[1:]
	}
	mantissa, exp := t, ""
	if i := strings.IndexAny(t, "eE"); i >= 0 {
		mantissa, exp = t[:i], t[i:]
	}
	if strings.HasPrefix(mantissa, ".") {
		mantissa = "0" + mantissa
	}
	mantissa = strings.TrimSuffix(mantissa, ".")
	return sign + mantissa + exp
}
