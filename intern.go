package gazetteer

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// SymbolID identifies an interned string. The zero value is reserved
// for the empty string and doubles as "no symbol".
type SymbolID uint32

// Interner deduplicates strings into stable integer identifiers with
// O(1) lookup in both directions.
//
// The table has two phases. During index build it is single-logical-
// writer and guarded by a mutex; once frozen it is read-only and reads
// skip the lock entirely, so an arbitrary number of concurrent
// searches can resolve symbols without contention. Identifiers are
// never reused or reassigned after the freeze.
type Interner struct {
	mu     sync.RWMutex
	frozen atomic.Bool
	lookup []string
	index  map[string]SymbolID
}

// NewInterner creates an interner with the given capacity hint.
// Index 0 is reserved for the empty string.
func NewInterner(capacity int) *Interner {
	in := &Interner{
		lookup: make([]string, 1, capacity+1),
		index:  make(map[string]SymbolID, capacity+1),
	}
	in.lookup[0] = ""
	in.index[""] = 0
	return in
}

// Intern returns the identifier for s, assigning one if s has not been
// seen before. Once the interner is frozen it stops inserting and
// behaves exactly like Lookup, returning 0 for unknown strings.
func (in *Interner) Intern(s string) SymbolID {
	if in.frozen.Load() {
		return in.index[s]
	}

	// Fast path: check with read lock.
	in.mu.RLock()
	if id, ok := in.index[s]; ok {
		in.mu.RUnlock()
		return id
	}
	in.mu.RUnlock()

	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.index[s]; ok {
		return id
	}
	if len(in.lookup) > int(^SymbolID(0)) {
		panic(fmt.Sprintf("gazetteer: interner capacity exceeded: %d entries", len(in.lookup)))
	}
	id := SymbolID(len(in.lookup))
	in.lookup = append(in.lookup, s)
	in.index[s] = id
	return id
}

// Lookup returns the identifier for s if it was interned. It never
// inserts; an unknown string is a normal outcome, not an error.
func (in *Interner) Lookup(s string) (SymbolID, bool) {
	if in.frozen.Load() {
		id, ok := in.index[s]
		return id, ok
	}
	in.mu.RLock()
	defer in.mu.RUnlock()
	id, ok := in.index[s]
	return id, ok
}

// Resolve returns the string for an identifier, or "" if the
// identifier was never assigned.
func (in *Interner) Resolve(id SymbolID) string {
	if in.frozen.Load() {
		if int(id) < len(in.lookup) {
			return in.lookup[id]
		}
		return ""
	}
	in.mu.RLock()
	defer in.mu.RUnlock()
	if int(id) < len(in.lookup) {
		return in.lookup[id]
	}
	return ""
}

// Len returns the number of interned strings, including the reserved
// empty string.
func (in *Interner) Len() int {
	if in.frozen.Load() {
		return len(in.lookup)
	}
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.lookup)
}

// freeze switches the interner to its read-only phase. Called once at
// the end of index build; all subsequent reads are lock-free.
func (in *Interner) freeze() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.frozen.Store(true)
}
