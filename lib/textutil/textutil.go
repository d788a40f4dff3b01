package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Normalize canonicalizes free text into a comparable key: diacritics are
// decomposed and dropped, anything that is not an ascii letter, digit or
// whitespace is discarded, the result is lower-cased and whitespace runs are
// collapsed to a single space.
//
// The same function must be used for catalog alias keys and raw names.
// Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	decomposed, _, err := transform.String(
		transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn))),
		text,
	)
	if err != nil {
		decomposed = norm.NFKD.String(text)
	}

	var out strings.Builder
	out.Grow(len(decomposed))
	for _, c := range decomposed {
		if c > unicode.MaxASCII {
			continue
		}
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			out.WriteRune(c)
		case c >= 'A' && c <= 'Z':
			out.WriteRune(unicode.ToLower(c))
		case unicode.IsSpace(c):
			out.WriteRune(' ')
		}
	}

	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(out.String(), " "))
}

// CollapseSpace trims text and collapses inner whitespace runs to one space,
// without touching case or punctuation.
func CollapseSpace(text string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(text, " "))
}

var brlPriceRegex = regexp.MustCompile(`R\$[\s\x{00A0}]?([\d.,]+)`)

// ParseBRL extracts an amount formatted like "R$ 1.234,56" and returns it as a
// plain decimal string ("1234.56"). ok is false when no amount is found.
func ParseBRL(text string) (string, bool) {
	groups := brlPriceRegex.FindStringSubmatch(text)
	if len(groups) < 2 {
		return "", false
	}
	raw := strings.ReplaceAll(groups[1], ".", "")
	raw = strings.ReplaceAll(raw, ",", ".")
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return "", false
	}
	return amount.String(), true
}

// CategoryLabel cleans labels like "Econômico ou similar" into an upper-cased
// category code candidate ("ECONÔMICO").
func CategoryLabel(text string) string {
	fields := strings.Fields(text)
	kept := fields[:0]
	for _, f := range fields {
		switch strings.ToLower(f) {
		case "ou", "similar":
			continue
		}
		kept = append(kept, f)
	}
	return strings.ToUpper(strings.Join(kept, " "))
}
