package textindex

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

var stopWords = toSet(`a about above after again against all am an and any are as at be because been
before being below between both but by can did do does doing down during each few for from further
had has have having he her here hers herself him himself his how i if in into is it its itself just
me more most my myself no nor not now of off on once only or other our ours ourselves out over own
same she should so some such than that the their theirs them themselves then there these they this
those through to too under until up very was we were what when where which while who whom why will
with you your yours yourself yourselves`)

func toSet(words string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.Fields(words) {
		out[w] = struct{}{}
	}
	return out
}

// tokenize case-folds s and splits it into terms of at least two letters or
// digits, dropping English stop words.
func tokenize(s string) []string {
	// Casers are stateful; a fresh one keeps concurrent searches independent.
	folded := cases.Fold().String(s)
	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) < 2 {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}
