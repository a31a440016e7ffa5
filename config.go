package gazetteer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// defaultStopWords are common English words that appear in free-text
// phrases without carrying location information. Stop-word terms are
// still searched (several are valid codes: "IN", "TO"), but candidates
// produced only by stop words take a score penalty.
var defaultStopWords = []string{
	"any", "all", "are", "is", "at", "to", "in", "on", "of", "for",
	"by", "and", "was", "did", "the",
}

// ToleranceStep is one entry of the edit-distance tolerance schedule:
// query terms of at least MinLength runes are searched with up to
// Distance edits. Steps are evaluated longest MinLength first.
type ToleranceStep struct {
	MinLength int `yaml:"min_length"`
	Distance  int `yaml:"distance"`
}

// Config carries the tunable search parameters. The zero value is not
// usable; start from DefaultConfig or LoadConfig. Every field can be
// changed after the index is built, via Index.SetConfig, without
// recompiling any automata.
type Config struct {
	// ScoreThreshold is the inclusive similarity cutoff: candidates
	// scoring exactly at the threshold are retained, strictly below
	// are discarded.
	ScoreThreshold float64 `yaml:"score_threshold"`
	// PrefixScoreFloor is the base score of a prefix hit. Prefix
	// matches always score above any fuzzy similarity and below the
	// exact-match ceiling of 1.
	PrefixScoreFloor float64 `yaml:"prefix_score_floor"`
	// EdgeThreshold is the minimum score both endpoints of a hierarchy
	// graph edge must exceed for the edge to carry a boost.
	EdgeThreshold float64 `yaml:"edge_threshold"`
	// SubdivisionBoost and CountryBoost weight the boost contributed
	// by a shared ancestor, by ancestor specificity.
	SubdivisionBoost float64 `yaml:"subdivision_boost"`
	CountryBoost     float64 `yaml:"country_boost"`
	// StopWordPenalty is subtracted from the score of candidates
	// produced by stop-word terms. Subtractive rather than
	// multiplicative, so an exact stop-word code ("IN", "TO") still
	// clears the default threshold while weaker matches do not.
	StopWordPenalty float64 `yaml:"stop_word_penalty"`
	// Tolerance is the edit-distance schedule by term length.
	Tolerance []ToleranceStep `yaml:"tolerance"`
	// DefaultLimit is the result count used when a search does not
	// pass WithLimit.
	DefaultLimit int `yaml:"default_limit"`
	// DefaultScope restricts every search to the given alpha-2 country
	// codes unless the search passes its own WithCountryScope. Empty
	// means unrestricted.
	DefaultScope []string `yaml:"default_scope"`
	// MaxQueryLength caps input phrases, in runes. Longer phrases are
	// truncated before analysis.
	MaxQueryLength int `yaml:"max_query_length"`
	// StopWords overrides the built-in stop word list when non-nil.
	StopWords []string `yaml:"stop_words"`
}

// DefaultConfig returns the tuned default parameters. The similarity
// threshold admits single-character typos on four-letter terms
// (score 0.75) while rejecting unrelated words; the tolerance schedule
// allows no edits up to three characters, one edit for four to six,
// and two edits from seven on.
func DefaultConfig() Config {
	return Config{
		ScoreThreshold:   0.70,
		PrefixScoreFloor: 0.90,
		EdgeThreshold:    0.50,
		SubdivisionBoost: 0.50,
		CountryBoost:     0.30,
		StopWordPenalty:  0.20,
		Tolerance: []ToleranceStep{
			{MinLength: 0, Distance: 0},
			{MinLength: 4, Distance: 1},
			{MinLength: 7, Distance: 2},
		},
		DefaultLimit:   10,
		MaxQueryLength: 256,
	}
}

// LoadConfig reads a YAML config file and overlays it on the defaults,
// so a file only needs to name the parameters it changes.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// maxEditDistance is the largest edit distance the Levenshtein
// automata support. Distances beyond 2 blow up automaton size and
// admit mostly unrelated words.
const maxEditDistance = 2

func (c *Config) validate() error {
	if c.ScoreThreshold < 0 || c.ScoreThreshold > 1 {
		return fmt.Errorf("score_threshold %v outside [0,1]", c.ScoreThreshold)
	}
	if c.PrefixScoreFloor < 0 || c.PrefixScoreFloor > 1 {
		return fmt.Errorf("prefix_score_floor %v outside [0,1]", c.PrefixScoreFloor)
	}
	if c.EdgeThreshold < 0 || c.EdgeThreshold > 1 {
		return fmt.Errorf("edge_threshold %v outside [0,1]", c.EdgeThreshold)
	}
	if c.SubdivisionBoost < 0 || c.SubdivisionBoost > 1 {
		return fmt.Errorf("subdivision_boost %v outside [0,1]", c.SubdivisionBoost)
	}
	if c.CountryBoost < 0 || c.CountryBoost > 1 {
		return fmt.Errorf("country_boost %v outside [0,1]", c.CountryBoost)
	}
	if c.StopWordPenalty < 0 || c.StopWordPenalty > 1 {
		return fmt.Errorf("stop_word_penalty %v outside [0,1]", c.StopWordPenalty)
	}
	if c.DefaultLimit <= 0 {
		return fmt.Errorf("default_limit %d must be positive", c.DefaultLimit)
	}
	if c.MaxQueryLength <= 0 {
		return fmt.Errorf("max_query_length %d must be positive", c.MaxQueryLength)
	}
	for _, step := range c.Tolerance {
		if step.Distance < 0 || step.Distance > maxEditDistance {
			return fmt.Errorf("tolerance distance %d outside [0,%d]", step.Distance, maxEditDistance)
		}
		if step.MinLength < 0 {
			return fmt.Errorf("tolerance min_length %d negative", step.MinLength)
		}
	}
	for _, code := range c.DefaultScope {
		if !validCountryCode(code) {
			return fmt.Errorf("default_scope code %q is not an alpha-2 country code", code)
		}
	}
	return nil
}

// toleranceFor returns the edit distance allowed for a term of the
// given rune length, per the configured schedule.
func (c *Config) toleranceFor(length int) int {
	distance := 0
	bestMin := -1
	for _, step := range c.Tolerance {
		if length >= step.MinLength && step.MinLength > bestMin {
			bestMin = step.MinLength
			distance = step.Distance
		}
	}
	return distance
}

// stopWordSet materializes the active stop word list.
func (c *Config) stopWordSet() map[string]bool {
	words := c.StopWords
	if words == nil {
		words = defaultStopWords
	}
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// validCountryCode reports whether code looks like an ISO 3166-1
// alpha-2 code: exactly two ASCII letters.
func validCountryCode(code string) bool {
	if len(code) != 2 {
		return false
	}
	for i := 0; i < 2; i++ {
		c := code[i]
		if !('a' <= c && c <= 'z') && !('A' <= c && c <= 'Z') {
			return false
		}
	}
	return true
}

// Option configures index construction.
type Option func(*Config)

// WithConfig replaces the entire configuration.
func WithConfig(cfg Config) Option {
	return func(c *Config) { *c = cfg }
}

// WithThreshold sets the inclusive similarity retention threshold.
func WithThreshold(v float64) Option {
	return func(c *Config) { c.ScoreThreshold = v }
}

// WithToleranceSchedule replaces the edit-distance schedule.
func WithToleranceSchedule(steps ...ToleranceStep) Option {
	return func(c *Config) { c.Tolerance = steps }
}

// WithDefaultLimit sets the result count used when a search passes no
// explicit limit.
func WithDefaultLimit(n int) Option {
	return func(c *Config) { c.DefaultLimit = n }
}

// WithDefaultScope restricts all searches to the given countries
// unless overridden per search.
func WithDefaultScope(codes ...string) Option {
	return func(c *Config) { c.DefaultScope = codes }
}
