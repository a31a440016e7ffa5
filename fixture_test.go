package gazetteer

import "testing"

// testRecords is a small reference-data snapshot covering every
// record kind, two-level parent chains, aliases, coordinates, and the
// two same-named "New York" settlements used throughout the search
// tests.
func testRecords() []RawRecord {
	return []RawRecord{
		{Name: "United Kingdom", Code: "GB", Kind: "country",
			Aliases: []string{"UK", "Great Britain", "United Kingdom of Great Britain and Northern Ireland"}},
		{Name: "United States", Code: "US", Kind: "country",
			Aliases: []string{"USA", "United States of America", "America"}},
		{Name: "France", Code: "FR", Kind: "country",
			Aliases: []string{"French Republic"}},
		{Name: "India", Code: "IN", Kind: "country"},

		{Name: "Lincolnshire", Code: "GB-LIN", Kind: "subdivision", ParentCode: "GB"},
		{Name: "Scotland", Code: "GB-SCT", Kind: "subdivision", ParentCode: "GB"},
		{Name: "New York", Code: "US-NY", Kind: "subdivision", ParentCode: "US"},
		{Name: "Nevada", Code: "US-NV", Kind: "subdivision", ParentCode: "US"},
		{Name: "Texas", Code: "US-TX", Kind: "subdivision", ParentCode: "US"},

		{Name: "New York City", Code: "US NYC", Kind: "city", ParentCode: "US-NY",
			Aliases: []string{"New York", "NYC"}, Coordinates: "4042N 07400W"},
		{Name: "New York", Code: "GB NYK", Kind: "city", ParentCode: "GB-LIN",
			Coordinates: "5304N 00009W"},
		{Name: "Glasgow", Code: "GB GLW", Kind: "city", ParentCode: "GB-SCT",
			Coordinates: "5551N 00415W"},
		{Name: "Edinburgh", Code: "GB EDI", Kind: "city", ParentCode: "GB-SCT",
			Coordinates: "5557N 00311W"},
		{Name: "London", Code: "GB LON", Kind: "city", ParentCode: "GB",
			Coordinates: "5130N 00007W"},
		{Name: "Las Vegas", Code: "US LAS", Kind: "city", ParentCode: "US-NV",
			Coordinates: "3610N 11509W"},
		{Name: "Austin", Code: "US AUS", Kind: "city", ParentCode: "US-TX",
			Coordinates: "3016N 09744W"},
		{Name: "Paris", Code: "FR PAR", Kind: "city", ParentCode: "FR",
			Coordinates: "4851N 00221E"},
	}
}

// mustBuild builds the fixture index, failing the test on error.
func mustBuild(t *testing.T, opts ...Option) *Index {
	t.Helper()
	ix, err := Build(testRecords(), opts...)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return ix
}

// termFor runs the analyzer and returns the term with the given text,
// failing the test when the analyzer did not produce it.
func termFor(t *testing.T, ix *Index, phrase, text string) Term {
	t.Helper()
	for _, term := range ix.analyze(Normalize(phrase), ix.cfg.Load()) {
		if term.Text == text {
			return term
		}
	}
	t.Fatalf("analyze(%q) produced no term %q", phrase, text)
	return Term{}
}
