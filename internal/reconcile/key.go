package reconcile

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/leadforge-cli/internal/model"
)

// Fold normalizes a name for key comparison: compatibility-decomposed,
// diacritics stripped, lower-cased, with every run of non-alphanumeric
// characters collapsed to a single space.
func Fold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	space := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
			continue
		}
		space = true
	}
	return b.String()
}

// NaturalKey derives the deduplication identity of a lead from its company,
// contact name and email domain. It is never used as a persisted id.
func NaturalKey(l model.Lead) string {
	return Fold(l.Company) + "|" + Fold(l.FirstName+" "+l.LastName) + "|" + l.EmailDomain()
}
