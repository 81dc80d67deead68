// Package naming builds the project-wide rename map. Names are keyed by bare
// identifier text: every occurrence of a given name anywhere in the project
// renames identically, which is what keeps header/implementation pairs and
// cross-file references consistent.
package naming

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/codeveil/codeveil/internal/symbols"
	"github.com/codeveil/codeveil/internal/whitelist"
)

// Strategy names.
const (
	StrategyRandom     = "random"
	StrategyPrefix     = "prefix"
	StrategyPattern    = "pattern"
	StrategyDictionary = "dictionary"
)

// Config controls name generation. Validate must pass before a Table is built.
type Config struct {
	Strategy  string `yaml:"strategy" json:"strategy"`
	Prefix    string `yaml:"prefix" json:"prefix"`
	Pattern   string `yaml:"pattern" json:"pattern"`
	MinLength int    `yaml:"min_length" json:"min_length"`
	MaxLength int    `yaml:"max_length" json:"max_length"`
	// Seed makes generation reproducible for the same ordered symbol set.
	Seed *int64 `yaml:"seed" json:"seed,omitempty"`
}

// DefaultConfig returns the random strategy with moderate name lengths.
func DefaultConfig() Config {
	return Config{
		Strategy:  StrategyRandom,
		MinLength: 8,
		MaxLength: 16,
	}
}

// Validate rejects configuration errors before any file is touched.
func (c Config) Validate() error {
	switch c.Strategy {
	case StrategyRandom, StrategyPrefix, StrategyPattern, StrategyDictionary:
	default:
		return fmt.Errorf("invalid naming strategy %q", c.Strategy)
	}
	if c.MinLength <= 0 || c.MaxLength < c.MinLength {
		return fmt.Errorf("invalid name length range [%d, %d]", c.MinLength, c.MaxLength)
	}
	if c.Strategy == StrategyPrefix && c.Prefix == "" {
		return fmt.Errorf("prefix strategy requires a prefix")
	}
	if c.Strategy == StrategyPattern && !strings.Contains(c.Pattern, "{index}") {
		return fmt.Errorf("pattern strategy requires a pattern containing {index}")
	}
	return nil
}

// Entry is one renamed symbol in the exported mapping document.
type Entry struct {
	Original   string `json:"original"`
	Obfuscated string `json:"obfuscated"`
	Type       string `json:"type"`
	SourceFile string `json:"source_file"`
}

// Table is the append-only symbol table for one run. Every name is generated
// once and reused for every later occurrence of the same original name.
type Table struct {
	cfg       Config
	rng       *rand.Rand
	strategy  strategy
	protected whitelist.Predicate
	mapping   map[string]string // original -> generated
	used      map[string]bool   // generated names, for uniqueness
	entries   []Entry           // insertion order
	index     int               // counter fed to strategies
}

// NewTable creates a table for the given validated config. When cfg.Seed is
// set, two runs over the same ordered symbol list produce identical maps.
// Names matched by protected never enter the map; the table is the last gate
// before renaming, so it re-checks every registered name rather than trusting
// upstream filtering (selector label segments never pass an extractor gate).
func NewTable(cfg Config, protected whitelist.Predicate) (*Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if protected == nil {
		protected = whitelist.None
	}
	seed := time.Now().UnixNano()
	if cfg.Seed != nil {
		seed = *cfg.Seed
	}
	t := &Table{
		cfg:       cfg,
		rng:       rand.New(rand.NewSource(seed)),
		protected: protected,
		mapping:   make(map[string]string),
		used:      make(map[string]bool),
	}
	t.strategy = newStrategy(cfg)
	return t, nil
}

// Preload seeds the table from a prior run's export, keeping names issued in
// earlier incremental runs stable. Preloaded entries count toward uniqueness.
func (t *Table) Preload(entries []Entry) {
	for _, e := range entries {
		if t.protected(e.Original) {
			continue
		}
		if _, ok := t.mapping[e.Original]; ok {
			continue
		}
		t.mapping[e.Original] = e.Obfuscated
		t.used[e.Obfuscated] = true
		t.entries = append(t.entries, e)
		t.index++
	}
}

// Add registers a symbol, issuing a generated name for its original name if
// one has not been issued yet. Objective-C selectors ("foo:bar:") are split
// into label segments and each segment registered as its own flat entry, so
// the transformer stays a pure whole-identifier substitution. Whitelisted
// segments are dropped here: a protected name like "description" can appear
// as a non-leading label of an otherwise renameable selector.
func (t *Table) Add(sym symbols.Symbol) {
	if strings.Contains(sym.Name, ":") {
		for _, label := range strings.Split(sym.Name, ":") {
			if label == "" {
				continue
			}
			t.add(label, sym)
		}
		return
	}
	t.add(sym.Name, sym)
}

// AddAll registers symbols in order; ordering is load-bearing for
// deterministic seeding.
func (t *Table) AddAll(syms []symbols.Symbol) {
	for _, s := range syms {
		t.Add(s)
	}
}

func (t *Table) add(name string, sym symbols.Symbol) {
	if name == "" || t.protected(name) {
		return
	}
	if _, ok := t.mapping[name]; ok {
		return
	}
	generated := t.generateUnique(name, sym)
	t.mapping[name] = generated
	t.used[generated] = true
	t.entries = append(t.entries, Entry{
		Original:   name,
		Obfuscated: generated,
		Type:       string(sym.Kind),
		SourceFile: sym.File,
	})
	t.index++
}

// generateUnique draws names from the strategy until one is neither already
// issued nor identical to an original name in the table.
func (t *Table) generateUnique(original string, sym symbols.Symbol) string {
	for attempt := 0; ; attempt++ {
		candidate := t.strategy.generate(t.rng, t.index, sym)
		if attempt > 0 {
			candidate = fmt.Sprintf("%s%d", candidate, attempt)
		}
		if candidate == original || t.used[candidate] {
			continue
		}
		if _, clash := t.mapping[candidate]; clash {
			continue
		}
		return candidate
	}
}

// Mapping returns the flat original->generated map. The caller must treat it
// as frozen once transformation begins.
func (t *Table) Mapping() map[string]string {
	result := make(map[string]string, len(t.mapping))
	for k, v := range t.mapping {
		result[k] = v
	}
	return result
}

// Entries returns the ordered mapping entries for export.
func (t *Table) Entries() []Entry {
	result := make([]Entry, len(t.entries))
	copy(result, t.entries)
	return result
}

// Len returns the number of issued names.
func (t *Table) Len() int {
	return len(t.entries)
}
