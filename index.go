package gazetteer

import (
	"bytes"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/blevesearch/vellum"
	"github.com/golang/geo/s2"
	"golang.org/x/sync/errgroup"
)

// fieldClass identifies one searchable key space of the index.
type fieldClass int

const (
	fieldName fieldClass = iota
	fieldAlias
	fieldCode
	numFieldClasses
)

func (f fieldClass) String() string {
	switch f {
	case fieldName:
		return "name"
	case fieldAlias:
		return "alias"
	case fieldCode:
		return "code"
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// fieldIndex is the compiled search structure of one field class: the
// sorted key set, per-key postings of record ordinals, an interned-ID
// map for O(1) exact lookup that bypasses the automaton, and the
// finite-state transducer for prefix and bounded-edit-distance
// queries. Built once, then read-only.
type fieldIndex struct {
	keys  []string
	posts []*roaring.Bitmap
	byID  map[SymbolID]int
	fst   *vellum.FST
}

// runtimeConfig pairs a Config with derived lookups so a config swap
// replaces everything atomically.
type runtimeConfig struct {
	Config
	stop map[string]bool
}

// Index is the immutable location index. Build constructs it once from
// a reference-data snapshot; afterwards it is safe for any number of
// concurrent Search and Closest calls without locking. Only the
// configuration can change after build, via SetConfig.
type Index struct {
	interner *Interner
	arena    []Location
	byKey    map[SymbolID]uint32
	fields   [numFieldClasses]*fieldIndex
	cells    map[s2.CellID][]uint32
	cfg      atomic.Pointer[runtimeConfig]
}

// prepared is the normalization output for one raw record, computed in
// parallel before the sequential arena pass.
type prepared struct {
	kind        Kind
	key         string
	nameKey     string
	aliasKeys   []string
	code        string
	countryCode string
	parentKeys  []string
	coords      Coordinates
	hasCoords   bool
	err         error
}

// Build validates a reference-data snapshot and compiles the index.
//
// All structural violations are collected and reported together in a
// single error (duplicate codes within a kind, unknown kinds, missing
// names or codes, dangling or malformed parent references, broken
// parent chains), so one rebuild surfaces every problem at once. The
// returned index is complete or nil, never partial.
func Build(records []RawRecord, opts ...Option) (*Index, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("gazetteer: %w", err)
	}

	prep := prepareRecords(records)

	ix := &Index{
		interner: NewInterner(len(records) * 4),
		arena:    make([]Location, 0, len(records)),
		byKey:    make(map[SymbolID]uint32, len(records)),
	}

	var errs []error
	ordinals := make([]int, 0, len(records)) // prep position per arena ordinal
	for i, p := range prep {
		if p.err != nil {
			errs = append(errs, fmt.Errorf("record %d (%q): %w", i, records[i].Name, p.err))
			continue
		}
		keySym := ix.interner.Intern(p.key)
		if _, dup := ix.byKey[keySym]; dup {
			errs = append(errs, fmt.Errorf("record %d (%q): duplicate %s code %q", i, records[i].Name, p.kind, p.code))
			continue
		}
		loc := Location{
			Key:         keySym,
			Name:        ix.interner.Intern(p.nameKey),
			Code:        p.code,
			Kind:        p.kind,
			CountryCode: p.countryCode,
			Coords:      p.coords,
			HasCoords:   p.hasCoords,
		}
		for _, alias := range p.aliasKeys {
			loc.Aliases = append(loc.Aliases, ix.interner.Intern(alias))
		}
		ix.byKey[keySym] = uint32(len(ix.arena))
		ix.arena = append(ix.arena, loc)
		ordinals = append(ordinals, i)
	}

	// Parent references can only be resolved once every record has an
	// ordinal, so this is a second pass over the completed arena.
	for ord := range ix.arena {
		p := prep[ordinals[ord]]
		if len(p.parentKeys) == 0 {
			continue
		}
		parent, ok := ix.resolveParent(p.parentKeys)
		if !ok {
			errs = append(errs, fmt.Errorf("record %d (%q): parent %q does not exist",
				ordinals[ord], ix.interner.Resolve(ix.arena[ord].Name), records[ordinals[ord]].ParentCode))
			continue
		}
		ix.arena[ord].Parent = parent
	}
	for ord := range ix.arena {
		if err := ix.verifyChain(ord); err != nil {
			errs = append(errs, fmt.Errorf("record %d (%q): %w",
				ordinals[ord], ix.interner.Resolve(ix.arena[ord].Name), err))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("gazetteer: invalid reference data:\n%w", errors.Join(errs...))
	}

	entries := ix.collectPostings()

	var g errgroup.Group
	for fc := fieldClass(0); fc < numFieldClasses; fc++ {
		fc := fc
		g.Go(func() error {
			fi, err := compileField(entries[fc], ix.interner)
			if err != nil {
				return fmt.Errorf("compiling %s transducer: %w", fc, err)
			}
			ix.fields[fc] = fi
			return nil
		})
	}
	g.Go(func() error {
		ix.buildCellIndex()
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("gazetteer: %w", err)
	}

	ix.interner.freeze()
	ix.cfg.Store(&runtimeConfig{Config: cfg, stop: cfg.stopWordSet()})
	return ix, nil
}

// prepareRecords normalizes every record's names, codes and
// coordinates. The work is pure per record, so it fans out across
// worker goroutines, each writing only its own slice elements.
func prepareRecords(records []RawRecord) []prepared {
	prep := make([]prepared, len(records))
	workers := runtime.GOMAXPROCS(0)
	if workers > len(records) {
		workers = 1
	}
	var g errgroup.Group
	chunk := (len(records) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, len(records))
		if lo >= hi {
			break
		}
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				prep[i] = prepareRecord(records[i])
			}
			return nil
		})
	}
	// Worker funcs never return errors; Wait is only the join point.
	_ = g.Wait()
	return prep
}

func prepareRecord(rec RawRecord) prepared {
	kind, err := ParseKind(rec.Kind)
	if err != nil {
		return prepared{err: err}
	}
	p := prepared{kind: kind}

	p.nameKey = normalizeJoin(rec.Name)
	if p.nameKey == "" {
		return prepared{err: fmt.Errorf("missing canonical name")}
	}
	p.code = strings.ToUpper(strings.TrimSpace(rec.Code))
	if p.code == "" {
		return prepared{err: fmt.Errorf("missing %s code", kind)}
	}
	p.key = locationKey(kind, p.code)
	p.countryCode = countryCodeOf(kind, p.code)
	if p.countryCode == "" || !validCountryCode(p.countryCode) {
		return prepared{err: fmt.Errorf("cannot derive country from %s code %q", kind, p.code)}
	}

	seen := map[string]bool{p.nameKey: true}
	for _, alias := range rec.Aliases {
		key := normalizeJoin(alias)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		p.aliasKeys = append(p.aliasKeys, key)
	}

	if pc := strings.TrimSpace(rec.ParentCode); pc != "" {
		switch kind {
		case KindCountry:
			return prepared{err: fmt.Errorf("country %q must not have a parent", p.code)}
		case KindSubdivision:
			p.parentKeys = []string{locationKey(KindCountry, pc)}
		case KindCity:
			p.parentKeys = []string{locationKey(KindSubdivision, pc), locationKey(KindCountry, pc)}
		}
	}

	if rec.Coordinates != "" {
		coords, err := ParseCoordinates(rec.Coordinates)
		if err != nil {
			return prepared{err: err}
		}
		p.coords = coords
		p.hasCoords = true
	}
	return p
}

// resolveParent returns the ordinal key of the first candidate parent
// key present in the index. Candidates are ordered most specific
// first, so a city parent code that names both a subdivision and a
// country resolves to the subdivision.
func (ix *Index) resolveParent(candidates []string) (SymbolID, bool) {
	for _, key := range candidates {
		if sym, ok := ix.interner.Lookup(key); ok {
			if _, exists := ix.byKey[sym]; exists {
				return sym, true
			}
		}
	}
	return 0, false
}

// verifyChain checks the build-time hierarchy invariant: the parent
// chain is acyclic, strictly increases in administrative scope, ends
// at a country within at most two hops, and stays within the record's
// own country.
func (ix *Index) verifyChain(ord int) error {
	loc := &ix.arena[ord]
	if loc.Parent == 0 {
		return nil
	}
	cur := loc
	for hops := 0; cur.Parent != 0; hops++ {
		if hops >= 2 {
			return fmt.Errorf("parent chain exceeds two hops (cycle or malformed hierarchy)")
		}
		next, ok := ix.byKey[cur.Parent]
		if !ok {
			return fmt.Errorf("parent chain references unknown record")
		}
		parent := &ix.arena[next]
		if parent.Kind >= cur.Kind {
			return fmt.Errorf("parent %s %q is not broader than %s %q",
				parent.Kind, parent.Code, cur.Kind, cur.Code)
		}
		cur = parent
	}
	if cur.Kind != KindCountry {
		return fmt.Errorf("parent chain ends at %s %q, not a country", cur.Kind, cur.Code)
	}
	if cur.CountryCode != loc.CountryCode {
		return fmt.Errorf("parent chain crosses countries: %q under %q", loc.CountryCode, cur.CountryCode)
	}
	return nil
}

// collectPostings builds the per-field-class key -> record ordinal
// postings. Iteration is in arena order so interned key IDs and bitmap
// contents are reproducible run to run.
func (ix *Index) collectPostings() [numFieldClasses]map[string]*roaring.Bitmap {
	var entries [numFieldClasses]map[string]*roaring.Bitmap
	for fc := range entries {
		entries[fc] = make(map[string]*roaring.Bitmap)
	}
	add := func(fc fieldClass, key string, ord uint32) {
		if key == "" {
			return
		}
		ix.interner.Intern(key)
		bm, ok := entries[fc][key]
		if !ok {
			bm = roaring.New()
			entries[fc][key] = bm
		}
		bm.Add(ord)
	}
	for ord := range ix.arena {
		loc := &ix.arena[ord]
		add(fieldName, ix.interner.Resolve(loc.Name), uint32(ord))
		for _, alias := range loc.Aliases {
			add(fieldAlias, ix.interner.Resolve(alias), uint32(ord))
		}
		add(fieldCode, normalizeJoin(loc.Code), uint32(ord))
		if short := shortCode(loc.Kind, loc.Code); short != "" {
			add(fieldCode, normalizeJoin(short), uint32(ord))
		}
	}
	return entries
}

// compileField freezes one field class: sorts the key set, lays out
// postings in key order, and compiles the keys into an FST whose
// values are positions in the sorted layout.
func compileField(entries map[string]*roaring.Bitmap, in *Interner) (*fieldIndex, error) {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fi := &fieldIndex{
		keys:  keys,
		posts: make([]*roaring.Bitmap, len(keys)),
		byID:  make(map[SymbolID]int, len(keys)),
	}
	var buf bytes.Buffer
	builder, err := vellum.New(&buf, nil)
	if err != nil {
		return nil, err
	}
	for i, key := range keys {
		if err := builder.Insert([]byte(key), uint64(i)); err != nil {
			return nil, err
		}
		fi.posts[i] = entries[key]
		if sym, ok := in.Lookup(key); ok {
			fi.byID[sym] = i
		}
	}
	if err := builder.Close(); err != nil {
		return nil, err
	}
	fst, err := vellum.Load(buf.Bytes())
	if err != nil {
		return nil, err
	}
	fi.fst = fst
	return fi, nil
}

// Len returns the number of indexed location records.
func (ix *Index) Len() int {
	return len(ix.arena)
}

// Interner exposes the read-only string table, for callers that want
// to resolve symbols on results.
func (ix *Index) Interner() *Interner {
	return ix.interner
}

// Config returns the active search configuration.
func (ix *Index) Config() Config {
	return ix.cfg.Load().Config
}

// SetConfig swaps the search configuration atomically. No index
// structures are rebuilt; in-flight searches finish with the config
// they started with.
func (ix *Index) SetConfig(cfg Config) error {
	if err := cfg.validate(); err != nil {
		return fmt.Errorf("gazetteer: %w", err)
	}
	ix.cfg.Store(&runtimeConfig{Config: cfg, stop: cfg.stopWordSet()})
	return nil
}

// locationAt returns the arena record for an ordinal.
func (ix *Index) locationAt(ord uint32) *Location {
	return &ix.arena[ord]
}

// Location returns a copy of the record with the given key symbol.
func (ix *Index) Location(key SymbolID) (Location, bool) {
	ord, ok := ix.byKey[key]
	if !ok {
		return Location{}, false
	}
	return ix.arena[ord], true
}
