package gazetteer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	ix := mustBuild(t)
	assert.Equal(t, len(testRecords()), ix.Len())

	// Every record resolves through its kind-prefixed key.
	sym, ok := ix.interner.Lookup("locode:gb nyk")
	require.True(t, ok)
	loc, ok := ix.Location(sym)
	require.True(t, ok)
	assert.Equal(t, "GB NYK", loc.Code)
	assert.Equal(t, KindCity, loc.Kind)
	assert.Equal(t, "GB", loc.CountryCode)
	assert.Equal(t, "new york", ix.interner.Resolve(loc.Name))
	assert.True(t, loc.HasCoords)

	// The parent chain reaches the country through the subdivision.
	parent, ok := ix.Location(loc.Parent)
	require.True(t, ok)
	assert.Equal(t, "GB-LIN", parent.Code)
	country, ok := ix.Location(parent.Parent)
	require.True(t, ok)
	assert.Equal(t, KindCountry, country.Kind)
	assert.Equal(t, "GB", country.Code)
}

func TestBuildCompilesAllFieldClasses(t *testing.T) {
	ix := mustBuild(t)
	for fc := fieldClass(0); fc < numFieldClasses; fc++ {
		fi := ix.fields[fc]
		require.NotNil(t, fi, "field %s", fc)
		require.NotNil(t, fi.fst, "field %s fst", fc)
		assert.Equal(t, len(fi.keys), len(fi.posts), "field %s postings", fc)
		assert.NotEmpty(t, fi.keys, "field %s keys", fc)
	}

	// Aliases land in the alias field, not the name field.
	uk, ok := ix.interner.Lookup("uk")
	require.True(t, ok)
	_, inAlias := ix.fields[fieldAlias].byID[uk]
	assert.True(t, inAlias)
	_, inName := ix.fields[fieldName].byID[uk]
	assert.False(t, inName)

	// Short code segments are searchable in the code field.
	nyk, ok := ix.interner.Lookup("nyk")
	require.True(t, ok)
	_, inCode := ix.fields[fieldCode].byID[nyk]
	assert.True(t, inCode)
}

func TestBuildReportsEveryViolation(t *testing.T) {
	records := []RawRecord{
		{Name: "United Kingdom", Code: "GB", Kind: "country"},
		// Duplicate code within the same kind.
		{Name: "Britain Again", Code: "GB", Kind: "country"},
		// Unknown kind tag.
		{Name: "Atlantis", Code: "XA ATL", Kind: "planet"},
		// Missing code.
		{Name: "Nowhere", Code: "", Kind: "city"},
		// Missing name.
		{Name: "  ", Code: "GB XXX", Kind: "city"},
		// Dangling parent reference.
		{Name: "Orphanville", Code: "GB ORP", Kind: "city", ParentCode: "GB-ZZZ"},
		// Countries are roots.
		{Name: "France", Code: "FR", Kind: "country", ParentCode: "GB"},
		// Unparseable coordinates.
		{Name: "Fogtown", Code: "GB FOG", Kind: "city", Coordinates: "somewhere north"},
	}

	_, err := Build(records)
	require.Error(t, err)

	// One aggregated report naming every violation, not just the first.
	msg := err.Error()
	assert.Contains(t, msg, "duplicate country code \"GB\"")
	assert.Contains(t, msg, "unknown kind \"planet\"")
	assert.Contains(t, msg, "missing city code")
	assert.Contains(t, msg, "missing canonical name")
	assert.Contains(t, msg, "parent \"GB-ZZZ\" does not exist")
	assert.Contains(t, msg, "must not have a parent")
	assert.Contains(t, msg, "somewhere north")
}

func TestBuildRejectsCrossCountryParent(t *testing.T) {
	records := []RawRecord{
		{Name: "United Kingdom", Code: "GB", Kind: "country"},
		{Name: "Calais", Code: "FR CQF", Kind: "city", ParentCode: "GB"},
	}
	_, err := Build(records)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "crosses countries")
}

func TestBuildFreezesInterner(t *testing.T) {
	ix := mustBuild(t)
	before := ix.interner.Len()
	ix.interner.Intern("completely new string")
	assert.Equal(t, before, ix.interner.Len())
}

func TestSetConfig(t *testing.T) {
	ix := mustBuild(t)

	cfg := ix.Config()
	cfg.ScoreThreshold = 0.9
	require.NoError(t, ix.SetConfig(cfg))
	assert.Equal(t, 0.9, ix.Config().ScoreThreshold)

	cfg.DefaultLimit = 0
	err := ix.SetConfig(cfg)
	require.Error(t, err)
	// The bad config was rejected wholesale.
	assert.Equal(t, 0.9, ix.Config().ScoreThreshold)
	assert.NotEqual(t, 0, ix.Config().DefaultLimit)
}

func TestBuildDeterministicArena(t *testing.T) {
	a := mustBuild(t)
	b := mustBuild(t)
	require.Equal(t, a.Len(), b.Len())
	for ord := 0; ord < a.Len(); ord++ {
		assert.Equal(t, a.arena[ord].Code, b.arena[ord].Code)
		assert.Equal(t, a.arena[ord].Key, b.arena[ord].Key)
	}
}
