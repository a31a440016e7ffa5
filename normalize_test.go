package gazetteer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"plain", "New York", []string{"new", "york"}},
		{"punctuation", "Armagh City, Banbridge and Craigavon", []string{"armagh", "city", "banbridge", "and", "craigavon"}},
		{"diacritics", "Zürich", []string{"zurich"}},
		{"diacritics nfd", "Zürich", []string{"zurich"}},
		{"transliteration", "Køge Straße", []string{"koge", "strasse"}},
		{"mixed case", "LAS VEGAS", []string{"las", "vegas"}},
		{"digits kept", "One1", []string{"one1"}},
		{"collapse whitespace", "  Las \t Vegas  ", []string{"las", "vegas"}},
		{"pure punctuation", "?!, - ---", nil},
		{"empty", "", nil},
		{"unmappable dropped", "東京", nil},
		{"unmappable inside token", "pa™ris", []string{"paris"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeEncodingInsensitive(t *testing.T) {
	// NFC and NFD spellings of the same name must normalize to
	// byte-identical token sequences.
	nfc := "São Paulo"         // precomposed a-tilde
	nfd := "São Paulo"        // a + combining tilde
	assert.Equal(t, Normalize(nfc), Normalize(nfd))
	assert.Equal(t, []string{"sao", "paulo"}, Normalize(nfc))
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"New York", "Zürich", "Køge Straße", "Armagh City, Banbridge",
		"łódź", "reykjavík", "  mixed   CASE  input!  ",
	}
	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(strings.Join(once, " "))
		assert.Equal(t, once, twice, "input %q", input)
	}
}

func TestNormalizeJoin(t *testing.T) {
	assert.Equal(t, "las vegas", normalizeJoin("Las  Vegas,"))
	// Code punctuation is a word boundary, so dashed and spaced code
	// spellings share one key form.
	assert.Equal(t, "gb lin", normalizeJoin("GB-LIN"))
	assert.Equal(t, "gb lin", normalizeJoin("gb lin"))
}
