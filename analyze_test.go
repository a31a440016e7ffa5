package gazetteer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func termTexts(terms []Term) []string {
	texts := make([]string, len(terms))
	for i, t := range terms {
		texts[i] = t.Text
	}
	return texts
}

func TestAnalyzeDecomposition(t *testing.T) {
	ix := mustBuild(t)
	cfg := ix.cfg.Load()

	terms := ix.analyze(Normalize("new york uk"), cfg)
	texts := termTexts(terms)

	// Adjacent bigrams plus the surviving unigrams; the trigram only
	// when it resolves exactly, which "new york uk" does not. "new"
	// neither resolves nor is long enough for fuzzy retrieval.
	assert.NotContains(t, texts, "new")
	assert.Contains(t, texts, "york")
	assert.Contains(t, texts, "uk")
	assert.Contains(t, texts, "new york")
	assert.Contains(t, texts, "york uk")
	assert.NotContains(t, texts, "new york uk")
}

func TestAnalyzeExactTrigram(t *testing.T) {
	ix := mustBuild(t)
	cfg := ix.cfg.Load()

	// "new york city" is an interned index key, so the trigram survives
	// as an exact term.
	term := termFor(t, ix, "new york city", "new york city")
	assert.True(t, term.Exact)
	assert.NotEqual(t, SymbolID(0), term.ID)
	assert.Equal(t, Span{Start: 0, End: 3}, term.Span)

	// An unresolvable trigram never falls back to fuzzy retrieval.
	texts := termTexts(ix.analyze(Normalize("old dirty boulevard"), cfg))
	assert.NotContains(t, texts, "old dirty boulevard")
}

func TestAnalyzeSpans(t *testing.T) {
	ix := mustBuild(t)

	assert.Equal(t, Span{Start: 0, End: 2}, termFor(t, ix, "new york uk", "new york").Span)
	assert.Equal(t, Span{Start: 2, End: 3}, termFor(t, ix, "new york uk", "uk").Span)
	assert.Equal(t, Span{Start: 1, End: 2}, termFor(t, ix, "new york uk", "york").Span)
}

func TestAnalyzeShortAndUnresolvedTerms(t *testing.T) {
	ix := mustBuild(t)
	cfg := ix.cfg.Load()

	// Single-character words are dropped outright.
	texts := termTexts(ix.analyze(Normalize("a london"), cfg))
	assert.NotContains(t, texts, "a")
	assert.Contains(t, texts, "london")

	// Unresolved terms shorter than four characters cannot go fuzzy and
	// are dropped; "xyz" is not interned.
	texts = termTexts(ix.analyze(Normalize("xyz paris"), cfg))
	assert.NotContains(t, texts, "xyz")
	assert.Contains(t, texts, "paris")

	// Unresolved terms of four or more characters stay, with tolerance
	// from the schedule.
	term := termFor(t, ix, "glasbow", "glasbow")
	assert.False(t, term.Exact)
	assert.Equal(t, 2, term.Tolerance)

	term = termFor(t, ix, "pari", "pari")
	assert.False(t, term.Exact)
	assert.Equal(t, 1, term.Tolerance)
}

func TestAnalyzeExactTermsCarryNoTolerance(t *testing.T) {
	ix := mustBuild(t)

	term := termFor(t, ix, "edinburgh", "edinburgh")
	assert.True(t, term.Exact)
	assert.Equal(t, 0, term.Tolerance)
}

func TestAnalyzeStopWords(t *testing.T) {
	ix := mustBuild(t)

	// "in" is both a stop word and the alpha-2 code of India. It stays
	// a searchable exact term, flagged for the score penalty.
	term := termFor(t, ix, "village in england", "in")
	assert.True(t, term.StopWord)
	assert.True(t, term.Exact)

	assert.False(t, termFor(t, ix, "london", "london").StopWord)
}

func TestAnalyzeDeduplicates(t *testing.T) {
	ix := mustBuild(t)
	cfg := ix.cfg.Load()

	terms := ix.analyze(Normalize("paris texas paris"), cfg)
	var parisCount int
	for _, term := range terms {
		if term.Text == "paris" {
			parisCount++
			// First occurrence wins the span.
			assert.Equal(t, Span{Start: 0, End: 1}, term.Span)
		}
	}
	require.Equal(t, 1, parisCount)
}
