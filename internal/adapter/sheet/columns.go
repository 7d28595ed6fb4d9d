package sheet

import (
	"sort"
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/labeldesk/internal/domain"
)

// normalize lowercases and drops everything but letters and digits,
// so "Трек-номер" and "трек номер" compare equal.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

type candidate struct {
	norm string
	key  string
}

var candidates = func() []candidate {
	var out []candidate
	for _, c := range domain.OrderColumns {
		out = append(out, candidate{norm: normalize(c.Label), key: c.Key})
		out = append(out, candidate{norm: normalize(c.Key), key: c.Key})
		for _, a := range c.Aliases {
			out = append(out, candidate{norm: normalize(a), key: c.Key})
		}
	}
	return out
}()

// ResolveColumn maps a workbook header to a column key.
// Exact matches on label, key or alias win; otherwise the closest fuzzy
// match is used, in either direction ("Tracking" inside "Tracking number (Ozon)").
func ResolveColumn(header string) (string, bool) {
	h := normalize(header)
	if h == "" {
		return "", false
	}

	for _, c := range candidates {
		if c.norm == h {
			return c.key, true
		}
	}

	targets := make([]string, len(candidates))
	for i, c := range candidates {
		targets[i] = c.norm
	}

	// Header abbreviates a known name ("trk" -> "tracking")
	if ranks := fuzzy.RankFindFold(h, targets); len(ranks) > 0 {
		sort.Sort(ranks)
		return candidates[ranks[0].OriginalIndex].key, true
	}

	// Header decorates a known name ("tracking number (ozon)")
	best, bestLen := "", 0
	for _, c := range candidates {
		if len(c.norm) > bestLen && fuzzy.MatchFold(c.norm, h) {
			best, bestLen = c.key, len(c.norm)
		}
	}
	return best, best != ""
}
