// Package sql guards literals lifted from question text before they reach the row store.
package sql

import (
	libinjection "github.com/corazawaf/libinjection-go"
)

// FingerprintXSS marks a literal refused for markup rather than SQL.
const FingerprintXSS = "xss"

// UnsafeLiteral describes a literal that libinjection flagged.
type UnsafeLiteral struct {
	Name        string // column the literal filters on
	Value       string
	Fingerprint string // libinjection SQLi fingerprint, or FingerprintXSS
}

// CheckLiteral returns nil for clean literals. Filter values are bound as parameters
// and also echoed into answer text, so both SQL and markup payloads are refused.
//
//	CheckLiteral("Country", "Germany")          // nil
//	CheckLiteral("Country", "x' OR '1'='1")     // Fingerprint "s&sos"
//	CheckLiteral("Country", "<script>1</script>") // Fingerprint "xss"
func CheckLiteral(name, value string) *UnsafeLiteral {
	if value == "" {
		return nil
	}
	if isSQLi, fingerprint := libinjection.IsSQLi(value); isSQLi {
		return &UnsafeLiteral{Name: name, Value: value, Fingerprint: string(fingerprint)}
	}
	if libinjection.IsXSS(value) {
		return &UnsafeLiteral{Name: name, Value: value, Fingerprint: FingerprintXSS}
	}
	return nil
}
