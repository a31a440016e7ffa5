package gazetteer

import (
	"slices"
	"strings"
)

// hierarchyEdge is one parent relationship between a scored candidate
// and an ancestor candidate elsewhere in the query. The edge carries
// the specificity weight of the ancestor: a shared subdivision says
// more than a shared country.
type hierarchyEdge struct {
	parent      uint32
	child       uint32
	parentScore float64
	weight      float64
}

// hierarchyGraph connects the surviving candidates of one query by
// administrative parentage. Nodes are candidate ordinals plus the
// ancestor ordinals needed to connect them; edges only form between
// candidates whose originating terms do not overlap in the phrase, so
// a record never corroborates itself through the same words.
type hierarchyGraph struct {
	nodes []uint32
	edges []hierarchyEdge
}

// boost runs the hierarchy graph pass over the merged candidates,
// mutating their Boosted scores in place.
//
// A candidate whose territory is contained in another candidate's
// (a city under a subdivision or country that a different query term
// resolved) gains a boost proportional to the ancestor's score and
// specificity. Candidates without hierarchy corroboration keep their
// scorer output. When a country scope is active, candidates outside
// the scope are excluded outright before any boosting.
func (ix *Index) boost(cands map[uint32]*Candidate, scope []string, cfg *runtimeConfig) {
	if len(scope) > 0 {
		allowed := make(map[string]bool, len(scope))
		for _, code := range scope {
			allowed[strings.ToUpper(code)] = true
		}
		for ord, c := range cands {
			if !allowed[ix.locationAt(c.ord).CountryCode] {
				delete(cands, ord)
			}
		}
	}

	graph := ix.buildHierarchyGraph(cands, cfg)
	for _, edge := range graph.edges {
		child := cands[edge.child]
		boosted := child.Score + edge.weight*edge.parentScore
		if boosted > child.Boosted {
			child.Boosted = boosted
		}
	}
}

// buildHierarchyGraph walks every candidate's parent chain (at most
// two hops, verified at build) and records an edge whenever the chain
// reaches another candidate from a non-overlapping span with both
// scores above the edge threshold.
func (ix *Index) buildHierarchyGraph(cands map[uint32]*Candidate, cfg *runtimeConfig) hierarchyGraph {
	var g hierarchyGraph
	seen := make(map[uint32]bool, len(cands))
	addNode := func(ord uint32) {
		if !seen[ord] {
			seen[ord] = true
			g.nodes = append(g.nodes, ord)
		}
	}

	for _, c := range cands {
		addNode(c.ord)
		loc := ix.locationAt(c.ord)
		for parentKey := loc.Parent; parentKey != 0; {
			parentOrd, ok := ix.byKey[parentKey]
			if !ok {
				break
			}
			addNode(parentOrd)
			if ancestor, isCandidate := cands[parentOrd]; isCandidate &&
				!ancestor.Span.overlaps(c.Span) &&
				min(ancestor.Score, c.Score) > cfg.EdgeThreshold {
				g.edges = append(g.edges, hierarchyEdge{
					parent:      parentOrd,
					child:       c.ord,
					parentScore: ancestor.Score,
					weight:      ix.ancestorWeight(parentOrd, cfg),
				})
			}
			parentKey = ix.locationAt(parentOrd).Parent
		}
	}

	slices.Sort(g.nodes)
	slices.SortFunc(g.edges, func(a, b hierarchyEdge) int {
		if a.child != b.child {
			return int(a.child) - int(b.child)
		}
		return int(a.parent) - int(b.parent)
	})
	return g
}

// ancestorWeight maps an ancestor's kind to its boost weight.
func (ix *Index) ancestorWeight(ord uint32, cfg *runtimeConfig) float64 {
	switch ix.locationAt(ord).Kind {
	case KindSubdivision:
		return cfg.SubdivisionBoost
	case KindCountry:
		return cfg.CountryBoost
	}
	// Cities never parent other records; verified at build.
	return 0
}
