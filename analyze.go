package gazetteer

import "unicode/utf8"

// Span is a half-open range of word positions within the normalized
// query phrase. Spans let later stages tell whether two terms came
// from overlapping parts of the input (a bigram and one of its words)
// or from independent parts.
type Span struct {
	Start int
	End   int
}

// overlaps reports whether the two spans share any word position.
func (s Span) overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Term is one unigram, bigram or trigram derived from the query
// phrase, classified as exact (resolves to an interned index key) or
// fuzzy-eligible. Terms are per-query and discarded after ranking.
type Term struct {
	// Text is the normalized term text.
	Text string
	// ID is the interned identifier when Exact, else 0.
	ID SymbolID
	// Span locates the term in the normalized phrase.
	Span Span
	// Exact is true when Text resolved through the interner.
	Exact bool
	// Tolerance is the edit distance allowed for fuzzy retrieval.
	// Always 0 for exact terms.
	Tolerance int
	// StopWord marks terms from the stop word list; their candidates
	// are score-penalized rather than dropped, since several stop
	// words double as location codes.
	StopWord bool
}

// minFuzzyTermLength gates fuzzy eligibility: terms of three or fewer
// characters generate too many unrelated automaton hits to be useful,
// so unresolved short terms contribute nothing.
const minFuzzyTermLength = 4

// analyze decomposes normalized query words into search terms: every
// unigram, every adjacent bigram, and exact-only trigrams (multi-word
// names like "Armagh City Banbridge" resolve whole, but three-word
// fuzzy search is never attempted). Each candidate term is classified
// via an exact interner lookup; terms that do not resolve are kept for
// fuzzy retrieval only when long enough. Both a bigram and its
// constituent unigrams are kept when all resolve, and the scorer's
// max-combining deduplicates the records they share.
func (ix *Index) analyze(words []string, cfg *runtimeConfig) []Term {
	terms := make([]Term, 0, len(words)*2)
	seen := make(map[string]bool, len(words)*2)

	add := func(text string, span Span, allowFuzzy bool) {
		if len(text) <= 1 || seen[text] {
			return
		}
		seen[text] = true
		term := Term{Text: text, Span: span, StopWord: cfg.stop[text]}
		if id, ok := ix.interner.Lookup(text); ok {
			term.ID = id
			term.Exact = true
		} else {
			if !allowFuzzy || len(text) < minFuzzyTermLength {
				return
			}
			term.Tolerance = cfg.toleranceFor(utf8.RuneCountInString(text))
		}
		terms = append(terms, term)
	}

	for i, w := range words {
		if i+1 < len(words) {
			bigram := w + " " + words[i+1]
			add(bigram, Span{Start: i, End: i + 2}, true)
			if i+2 < len(words) {
				add(bigram+" "+words[i+2], Span{Start: i, End: i + 3}, false)
			}
		}
		add(w, Span{Start: i, End: i + 1}, true)
	}
	return terms
}
