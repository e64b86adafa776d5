// Package search is the read path: it plans free-text queries against
// the provision store and bridges informal citizen language to legal
// vocabulary through a fixed collocation table.
package search

import (
	"log/slog"
	"strings"
)

// Expander maps informal text to index vocabulary. The zero value is
// not usable; construct with NewExpander.
type Expander struct {
	rules  []expansionRule
	places []string
}

// NewExpander creates an Expander with the default collocation table
// and place-name list.
func NewExpander() *Expander {
	return &Expander{
		rules:  expansionRules,
		places: placeNames,
	}
}

// Expand returns the space-joined union of expansion terms for every
// trigger matching the input, plus any recognized place names, in
// table order with duplicates removed. Returns "" when nothing
// matches; callers typically skip expansion rather than search on an
// empty term set.
func (e *Expander) Expand(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	seen := make(map[string]bool)
	var terms []string
	var matched []string

	for _, rule := range e.rules {
		if !rule.trigger.MatchString(text) {
			continue
		}
		matched = append(matched, rule.name)
		for _, term := range rule.terms {
			if !seen[term] {
				terms = append(terms, term)
				seen[term] = true
			}
		}
	}

	lower := strings.ToLower(text)
	for _, place := range e.places {
		if strings.Contains(lower, strings.ToLower(place)) && !seen[place] {
			terms = append(terms, place)
			seen[place] = true
		}
	}

	if len(terms) == 0 {
		return ""
	}
	slog.Debug("query_expanded",
		slog.String("rules", strings.Join(matched, ",")),
		slog.Int("terms", len(terms)))
	return strings.Join(terms, " ")
}
