package monthly_close

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// NormalizeCode maps a raw product code to the key used to join inventory and
// sales. It never fails: an empty input yields an empty code.
//
// "Café-01 " and "CAFE01" both normalize to "CAFE01"; "straße" to "STRASSE".
func NormalizeCode(raw string) string {
	if raw == "" {
		return ""
	}

	// Full case mapping: "ß" becomes "SS". A Caser keeps state, so each call
	// gets its own.
	upper := cases.Upper(language.Und)
	t := norm.NFKD.String(upper.String(raw))
	// NFKD already folds U+00A0 into a plain space, which the filter drops.
	// Compatibility decompositions (ligatures, full-width letters) may produce
	// lowercase runes again
	t = upper.String(t)

	var b strings.Builder
	b.Grow(len(t))
	for _, r := range t {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
