package gazetteer

import (
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Validation errors returned by Search before any retrieval work
// begins. Absence of results is never an error.
var (
	ErrInvalidLimit        = errors.New("gazetteer: result limit must be positive")
	ErrInvalidCountryScope = errors.New("gazetteer: country scope must be alpha-2 codes")
)

// Result is one ranked resolution of a query phrase.
type Result struct {
	// Code is the record's UN-LOCODE, ISO 3166-2 or ISO 3166-1 code.
	Code string
	// Kind classifies the resolved record.
	Kind Kind
	// Score is the boosted relevance score. Raw similarity lies in
	// [0,1]; hierarchy boosts can push the final score above 1.
	Score float64
	// Name is the record's canonical normalized name.
	Name string
	// Match is the retrieval strength that produced the record.
	Match MatchKind
	// Key is the record's unique interned key symbol.
	Key SymbolID
}

type searchParams struct {
	limit int
	scope []string
}

// SearchOption adjusts a single search.
type SearchOption func(*searchParams)

// WithLimit caps the number of ranked results.
func WithLimit(n int) SearchOption {
	return func(p *searchParams) { p.limit = n }
}

// WithCountryScope restricts results to the given alpha-2 country
// codes, overriding any configured default scope. Passing no codes
// clears the default scope for this search.
func WithCountryScope(codes ...string) SearchOption {
	return func(p *searchParams) { p.scope = codes }
}

// Search resolves a free-text phrase into ranked candidate locations.
//
// The phrase is normalized and decomposed into terms; every term is
// retrieved and scored independently across worker goroutines, the
// merged candidates run through the hierarchy graph booster, and the
// survivors are ranked. An empty phrase, a phrase with no recognizable
// words, or a phrase nothing matches yields an empty slice and a nil
// error. Invalid parameters (non-positive limit, malformed scope code)
// fail before any retrieval work begins.
func (ix *Index) Search(phrase string, opts ...SearchOption) ([]Result, error) {
	cfg := ix.cfg.Load()

	params := searchParams{limit: cfg.DefaultLimit, scope: cfg.DefaultScope}
	for _, opt := range opts {
		opt(&params)
	}
	if params.limit <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLimit, params.limit)
	}
	for _, code := range params.scope {
		if !validCountryCode(code) {
			return nil, fmt.Errorf("%w: got %q", ErrInvalidCountryScope, code)
		}
	}

	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return []Result{}, nil
	}
	if runes := []rune(phrase); len(runes) > cfg.MaxQueryLength {
		phrase = string(runes[:cfg.MaxQueryLength])
	}

	terms := ix.analyze(Normalize(phrase), cfg)
	if len(terms) == 0 {
		return []Result{}, nil
	}

	// Terms are independent, so retrieval and scoring fan out across a
	// bounded worker pool and join before the sequential graph pass.
	perTerm := make([]map[uint32]Candidate, len(terms))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, t := range terms {
		i, t := i, t
		g.Go(func() error {
			perTerm[i] = ix.scoreTerm(t, ix.retrieve(t), cfg)
			return nil
		})
	}
	_ = g.Wait()

	merged := mergeCandidates(perTerm)
	ix.boost(merged, params.scope, cfg)
	return ix.rank(merged, params.limit), nil
}

// rank orders boosted candidates descending and truncates to limit.
// Ties break by match kind (exact over prefix over fuzzy), then by
// kind specificity (city over subdivision over country), then by
// record key, so identical inputs always produce identical output.
func (ix *Index) rank(cands map[uint32]*Candidate, limit int) []Result {
	results := make([]Result, 0, len(cands))
	for _, c := range cands {
		loc := ix.locationAt(c.ord)
		results = append(results, Result{
			Code:  loc.Code,
			Kind:  loc.Kind,
			Score: c.Boosted,
			Name:  ix.interner.Resolve(loc.Name),
			Match: c.Match,
			Key:   loc.Key,
		})
	}
	slices.SortFunc(results, func(a, b Result) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		if a.Match != b.Match {
			return int(b.Match) - int(a.Match)
		}
		if a.Kind != b.Kind {
			return int(b.Kind) - int(a.Kind)
		}
		return int(a.Key) - int(b.Key)
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
