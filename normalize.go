package gazetteer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes input to NFD, removes combining marks, and
// recomposes to NFC, so "Zürich" and "Zürich" both normalize to
// "Zurich" regardless of how the input was encoded.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// transliterations maps lowercase code points that survive mark
// stripping to their closest ASCII spelling. Anything non-ASCII and
// not listed here is dropped during segmentation.
var transliterations = map[rune]string{
	'æ': "ae",
	'œ': "oe",
	'ø': "o",
	'ß': "ss",
	'đ': "d",
	'ð': "d",
	'þ': "th",
	'ł': "l",
	'ŋ': "ng",
	'ı': "i",
	'ĳ': "ij",
}

// Normalize converts text into a sequence of lowercase ASCII words.
//
// Combining diacritical marks are stripped, remaining non-ASCII code
// points are transliterated where a reasonable ASCII spelling exists
// and dropped otherwise, and the result is segmented on anything that
// is not a letter or digit. Empty tokens and pure punctuation never
// appear in the output.
//
// Normalize is pure and total: it never fails, and normalizing its own
// output (joined with spaces) yields the same word sequence.
func Normalize(text string) []string {
	stripped, _, err := transform.String(stripMarks, text)
	if err != nil {
		// The chain only fails on short destination buffers, which
		// transform.String resizes away. Fall back to raw input so the
		// function stays total.
		stripped = text
	}
	stripped = strings.ToLower(stripped)

	var words []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			words = append(words, b.String())
			b.Reset()
		}
	}
	for _, r := range stripped {
		switch {
		case r < 128 && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case r >= 128:
			if ascii, ok := transliterations[r]; ok {
				b.WriteString(ascii)
			}
			// No mapping: drop the rune without breaking the token.
		default:
			flush()
		}
	}
	flush()
	return words
}

// normalizeJoin returns the normalized words of text joined by single
// spaces. This is the canonical key form used throughout the index:
// "Las  Vegas," and "las vegas" produce the same key.
func normalizeJoin(text string) string {
	return strings.Join(Normalize(text), " ")
}
