package gazetteer

import (
	"math"
	"sort"

	"github.com/golang/geo/s2"
)

// cellLevel sets the granularity of the S2 spatial index over records
// that carry coordinates. Level 10 cells are roughly 10km across at
// the equator, grouping nearby settlements without inflating the
// number of cells a lookup has to visit.
const cellLevel = 10

// maxClosestDistance is ~100km in radians on the unit sphere. Closest
// reports no result when the nearest record is farther than this.
const maxClosestDistance = 0.0157

// buildCellIndex buckets every coordinate-bearing record into its S2
// cell. Runs once during Build, alongside FST compilation.
func (ix *Index) buildCellIndex() {
	ix.cells = make(map[s2.CellID][]uint32)
	for ord := range ix.arena {
		loc := &ix.arena[ord]
		if !loc.HasCoords {
			continue
		}
		cell := s2.CellIDFromLatLng(loc.Coords.latLng()).Parent(cellLevel)
		ix.cells[cell] = append(ix.cells[cell], uint32(ord))
	}
}

// cellAndNeighbors returns the cell plus its edge and corner
// neighbors, so lookups near a cell boundary still see records just
// across it.
func cellAndNeighbors(cell s2.CellID) []s2.CellID {
	cells := make([]s2.CellID, 0, 9)
	cells = append(cells, cell)

	edgeNeighbors := cell.EdgeNeighbors()
	cells = append(cells, edgeNeighbors[:]...)

	seen := make(map[s2.CellID]bool, 9)
	for _, c := range cells {
		seen[c] = true
	}
	for i := 0; i < 4; i++ {
		for _, corner := range edgeNeighbors[i].EdgeNeighbors() {
			if !seen[corner] {
				seen[corner] = true
				cells = append(cells, corner)
			}
		}
	}
	return cells
}

// Closest returns the coordinate-bearing record nearest to the given
// position, or false when no record lies within ~100km or the inputs
// are not finite.
func (ix *Index) Closest(lat, lng float64) (Location, bool) {
	if math.IsNaN(lat) || math.IsNaN(lng) ||
		math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return Location{}, false
	}

	queryLL := s2.LatLngFromDegrees(lat, lng)
	queryCell := s2.CellIDFromLatLng(queryLL).Parent(cellLevel)

	type spatialCandidate struct {
		ord  uint32
		dist float64
	}
	var candidates []spatialCandidate
	for _, cell := range cellAndNeighbors(queryCell) {
		for _, ord := range ix.cells[cell] {
			loc := ix.locationAt(ord)
			dist := float64(queryLL.Distance(loc.Coords.latLng()))
			candidates = append(candidates, spatialCandidate{ord: ord, dist: dist})
		}
	}
	if len(candidates) == 0 {
		return Location{}, false
	}

	// Distance first, record key second, for reproducible output when
	// two records share a position.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return ix.locationAt(candidates[i].ord).Key < ix.locationAt(candidates[j].ord).Key
	})

	best := candidates[0]
	if best.dist > maxClosestDistance {
		return Location{}, false
	}
	return *ix.locationAt(best.ord), true
}
