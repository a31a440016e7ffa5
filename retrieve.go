package gazetteer

import (
	"fmt"
	"sync"

	"github.com/blevesearch/vellum"
	"github.com/blevesearch/vellum/levenshtein"
)

// MatchKind is the retrieval strength of a candidate, from weakest
// (approximate match within edit-distance tolerance) to strongest
// (string identity). The numeric order is the precedence order.
type MatchKind uint8

const (
	MatchFuzzy MatchKind = iota
	MatchPrefix
	MatchExact
)

func (m MatchKind) String() string {
	switch m {
	case MatchExact:
		return "exact"
	case MatchPrefix:
		return "prefix"
	case MatchFuzzy:
		return "fuzzy"
	}
	return fmt.Sprintf("match(%d)", uint8(m))
}

// levBuilders holds one reusable Levenshtein DFA builder per supported
// edit distance. Builders precompute parametric tables once and are
// shared across all concurrent searches.
var levBuilders = sync.OnceValue(func() [maxEditDistance + 1]*levenshtein.LevenshteinAutomatonBuilder {
	var builders [maxEditDistance + 1]*levenshtein.LevenshteinAutomatonBuilder
	for d := 1; d <= maxEditDistance; d++ {
		lb, err := levenshtein.NewLevenshteinAutomatonBuilder(uint8(d), false)
		if err != nil {
			// Static parameters; construction cannot fail at runtime.
			panic(fmt.Sprintf("gazetteer: levenshtein builder (distance %d): %v", d, err))
		}
		builders[d] = lb
	}
	return builders
})

// retrieve collects every record an analyzed term can reach, tagged
// with its match kind. Exact terms bypass the automata entirely: the
// interned identifier indexes straight into the per-field postings.
// Non-exact terms run a prefix query and, when the tolerance schedule
// allows, a bounded Levenshtein query against each field class, and
// the results are unioned with Exact > Prefix > Fuzzy precedence.
//
// Retrieval is purely additive: it never judges quality, and an empty
// result is a normal outcome.
func (ix *Index) retrieve(t Term) map[uint32]MatchKind {
	out := make(map[uint32]MatchKind)
	upgrade := func(ord uint32, kind MatchKind) {
		if existing, ok := out[ord]; !ok || kind > existing {
			out[ord] = kind
		}
	}

	if t.Exact {
		for _, fi := range ix.fields {
			pos, ok := fi.byID[t.ID]
			if !ok {
				continue
			}
			it := fi.posts[pos].Iterator()
			for it.HasNext() {
				upgrade(it.Next(), MatchExact)
			}
		}
		return out
	}

	for _, fi := range ix.fields {
		fi.eachPrefix(t.Text, func(pos int) {
			it := fi.posts[pos].Iterator()
			for it.HasNext() {
				upgrade(it.Next(), MatchPrefix)
			}
		})
	}
	if t.Tolerance > 0 {
		dfa, err := levBuilders()[t.Tolerance].BuildDfa(t.Text, uint8(t.Tolerance))
		if err != nil {
			// Degenerate terms (far beyond any real place name) simply
			// contribute no fuzzy candidates.
			return out
		}
		for _, fi := range ix.fields {
			fi.eachAutomaton(dfa, func(pos int) {
				it := fi.posts[pos].Iterator()
				for it.HasNext() {
					upgrade(it.Next(), MatchFuzzy)
				}
			})
		}
	}
	return out
}

// eachPrefix visits the postings position of every key starting with
// prefix, in key order.
func (fi *fieldIndex) eachPrefix(prefix string, fn func(pos int)) {
	start := []byte(prefix)
	itr, err := fi.fst.Iterator(start, prefixEnd(start))
	for err == nil {
		_, v := itr.Current()
		fn(int(v))
		err = itr.Next()
	}
	// The only error an immutable, fully built FST yields here is
	// iterator exhaustion.
}

// eachAutomaton visits the postings position of every key accepted by
// the automaton, in key order.
func (fi *fieldIndex) eachAutomaton(aut vellum.Automaton, fn func(pos int)) {
	itr, err := fi.fst.Search(aut, nil, nil)
	for err == nil {
		_, v := itr.Current()
		fn(int(v))
		err = itr.Next()
	}
}

// prefixEnd returns the exclusive upper bound of the key range sharing
// the given prefix: the prefix with its last non-0xff byte
// incremented, or nil (open-ended) when no such bound exists.
func prefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
