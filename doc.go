// Package gazetteer resolves free-text place names to UN-LOCODE and
// ISO 3166-2 coded locations using an in-memory search index.
//
// The index is built once at startup from a snapshot of reference data
// and is immutable afterwards, so a single Index can be shared across
// any number of concurrent searches without locking:
//
//	ix, err := gazetteer.Build(records)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	results, err := ix.Search("new york UK", gazetteer.WithLimit(3))
//
// Searching combines exact lookup against an interned string table,
// prefix and bounded edit-distance queries against finite-state
// transducers, string-similarity scoring, and a hierarchy graph pass
// that boosts candidates corroborated by other parts of the query
// (a city boosted by its subdivision or country appearing elsewhere
// in the phrase).
package gazetteer
