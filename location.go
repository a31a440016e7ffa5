package gazetteer

import (
	"fmt"
	"strings"
)

// Kind classifies a location record. The set is closed: every switch
// over Kind in this package handles all three values.
type Kind uint8

const (
	// KindCountry is an ISO 3166-1 country.
	KindCountry Kind = iota + 1
	// KindSubdivision is an ISO 3166-2 administrative subdivision.
	KindSubdivision
	// KindCity is a UN-LOCODE settlement.
	KindCity
)

// String returns the lowercase kind tag used in reference data.
func (k Kind) String() string {
	switch k {
	case KindCountry:
		return "country"
	case KindSubdivision:
		return "subdivision"
	case KindCity:
		return "city"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind maps a reference-data kind tag to its Kind. Unknown tags
// are build-time data errors.
func ParseKind(tag string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "country":
		return KindCountry, nil
	case "subdivision":
		return KindSubdivision, nil
	case "city", "locode":
		return KindCity, nil
	}
	return 0, fmt.Errorf("unknown kind %q", tag)
}

// RawRecord is one entry of the reference-data snapshot handed to
// Build by the external loader. All fields are plain strings; Build
// performs the validation and interning.
type RawRecord struct {
	// Name is the canonical place name, e.g. "New York".
	Name string
	// Aliases are alternate names and spellings, e.g. "NYC".
	Aliases []string
	// Code is the UN-LOCODE ("US NYC"), ISO 3166-2 ("GB-LIN") or
	// ISO 3166-1 alpha-2 ("GB") code, depending on Kind.
	Code string
	// Kind is the record kind tag: "country", "subdivision" or "city".
	Kind string
	// ParentCode optionally names the containing record's code:
	// a subdivision or country for cities, a country for subdivisions.
	ParentCode string
	// Coordinates optionally carries the UN-LOCODE degrees-minutes
	// coordinate string, e.g. "4042N 07400W".
	Coordinates string
}

// Location is one resolved, immutable entry of the index arena. All
// cross-references are SymbolIDs into the owning Index; Location never
// owns another Location.
type Location struct {
	// Key is the interned unique key, kind-prefixed so that records of
	// different kinds sharing a code never collide ("locode:us nyc").
	Key SymbolID
	// Name is the interned normalized canonical name.
	Name SymbolID
	// Aliases are interned normalized alternate names.
	Aliases []SymbolID
	// Code is the original code string, upper-cased.
	Code string
	// Kind classifies the record.
	Kind Kind
	// Parent is the Key of the containing record, or 0 for countries
	// and parentless records. The chain is acyclic and reaches a
	// country within at most two hops; Build verifies this once.
	Parent SymbolID
	// CountryCode is the ISO 3166-1 alpha-2 code of the containing
	// country, denormalized for country-scope filtering.
	CountryCode string
	// Coords holds the record position when HasCoords is true.
	Coords    Coordinates
	HasCoords bool
}

// locationKey derives the unique kind-prefixed key string for a code.
func locationKey(kind Kind, code string) string {
	var prefix string
	switch kind {
	case KindCountry:
		prefix = "country"
	case KindSubdivision:
		prefix = "subdiv"
	case KindCity:
		prefix = "locode"
	default:
		prefix = "unknown"
	}
	return prefix + ":" + normalizeJoin(code)
}

// countryCodeOf derives the alpha-2 country code embedded in a code
// string: "GB" for countries, the part before the dash for ISO 3166-2
// ("GB-LIN"), the first token for UN-LOCODEs ("GB NYK").
func countryCodeOf(kind Kind, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	switch kind {
	case KindCountry:
		return code
	case KindSubdivision:
		if i := strings.IndexByte(code, '-'); i > 0 {
			return code[:i]
		}
	case KindCity:
		if i := strings.IndexByte(code, ' '); i > 0 {
			return code[:i]
		}
	}
	return ""
}

// shortCode returns the trailing segment of a subdivision or city
// code ("LIN" of "GB-LIN", "NYK" of "GB NYK"), or "" when the code has
// no segments. Short codes are indexed in the code field class so
// that queries like "paris lin" can pin a subdivision.
func shortCode(kind Kind, code string) string {
	code = strings.TrimSpace(code)
	switch kind {
	case KindSubdivision:
		if i := strings.IndexByte(code, '-'); i > 0 && i+1 < len(code) {
			return code[i+1:]
		}
	case KindCity:
		if i := strings.IndexByte(code, ' '); i > 0 && i+1 < len(code) {
			return code[i+1:]
		}
	}
	return ""
}
