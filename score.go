package gazetteer

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Candidate is one scored retrieval result, per query. It references
// its record by arena ordinal only; the record itself stays owned by
// the index.
type Candidate struct {
	ord uint32
	// Score is the raw similarity score in [0,1].
	Score float64
	// Boosted is the score after the hierarchy graph pass. Boosts are
	// additive, so Boosted can exceed 1.
	Boosted float64
	// Match is the strongest retrieval kind that produced the record.
	Match MatchKind
	// Span is the phrase span of the best-scoring originating term.
	Span Span
}

// similarity is the normalized string-similarity measure: one minus
// the Levenshtein distance divided by the longer length. Identical
// strings score 1, disjoint strings approach 0.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longer := utf8.RuneCountInString(a)
	if l := utf8.RuneCountInString(b); l > longer {
		longer = l
	}
	if longer == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longer)
}

// matchKeys returns every normalized key the record is reachable by:
// canonical name, aliases, and code forms. Similarity is taken as the
// maximum over these, so a candidate found through an alias is scored
// against that alias rather than a dissimilar canonical name.
func (ix *Index) matchKeys(loc *Location) []string {
	keys := make([]string, 0, len(loc.Aliases)+3)
	keys = append(keys, ix.interner.Resolve(loc.Name))
	for _, alias := range loc.Aliases {
		keys = append(keys, ix.interner.Resolve(alias))
	}
	keys = append(keys, normalizeJoin(loc.Code))
	if short := shortCode(loc.Kind, loc.Code); short != "" {
		keys = append(keys, normalizeJoin(short))
	}
	return keys
}

// scoreTerm turns one term's retrieval output into thresholded
// candidates.
//
// Exact matches take the fixed ceiling score of 1 regardless of the
// similarity formula, so an exact match always outranks any fuzzy
// signal before boosting. Prefix matches score on a floor above the
// entire fuzzy range, rising with how much of the key the term covers.
// Fuzzy matches use the similarity measure against the record's match
// keys. The threshold is inclusive: a score exactly at the threshold
// is retained.
func (ix *Index) scoreTerm(t Term, matches map[uint32]MatchKind, cfg *runtimeConfig) map[uint32]Candidate {
	out := make(map[uint32]Candidate, len(matches))
	for ord, kind := range matches {
		loc := ix.locationAt(ord)
		var score float64
		switch kind {
		case MatchExact:
			score = 1
		case MatchPrefix:
			score = ix.prefixScore(t.Text, loc, cfg)
		case MatchFuzzy:
			for _, key := range ix.matchKeys(loc) {
				if s := similarity(t.Text, key); s > score {
					score = s
				}
			}
		}
		if t.StopWord {
			score -= cfg.StopWordPenalty
		}
		if score < cfg.ScoreThreshold {
			continue
		}
		out[ord] = Candidate{
			ord:     ord,
			Score:   score,
			Boosted: score,
			Match:   kind,
			Span:    t.Span,
		}
	}
	return out
}

// prefixScore scores a prefix hit: the configured floor plus the
// remaining headroom weighted by how much of the matched key the term
// covers. "edin" on "edinburgh" scores higher than "edin" on
// "edinburgh of the seven seas".
func (ix *Index) prefixScore(term string, loc *Location, cfg *runtimeConfig) float64 {
	coverage := 0.0
	for _, key := range ix.matchKeys(loc) {
		if !strings.HasPrefix(key, term) {
			continue
		}
		if c := float64(len(term)) / float64(len(key)); c > coverage {
			coverage = c
		}
	}
	return cfg.PrefixScoreFloor + (1-cfg.PrefixScoreFloor)*coverage
}

// mergeCandidates combines per-term candidate maps into one map per
// record. Scores combine by maximum, never by sum: several weak
// signals for the same record must not outrank one strong one. The
// strongest match kind wins, and the span follows the best score.
// Term order is preserved so ties resolve to the earlier term,
// keeping output deterministic.
func mergeCandidates(perTerm []map[uint32]Candidate) map[uint32]*Candidate {
	merged := make(map[uint32]*Candidate)
	for _, cands := range perTerm {
		ords := make([]uint32, 0, len(cands))
		for ord := range cands {
			ords = append(ords, ord)
		}
		slices.Sort(ords)
		for _, ord := range ords {
			c := cands[ord]
			existing, ok := merged[ord]
			if !ok {
				copied := c
				merged[ord] = &copied
				continue
			}
			if c.Score > existing.Score {
				existing.Score = c.Score
				existing.Boosted = c.Score
				existing.Span = c.Span
			}
			if c.Match > existing.Match {
				existing.Match = c.Match
			}
		}
	}
	return merged
}
