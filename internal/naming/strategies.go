package naming

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/codeveil/codeveil/internal/symbols"
)

// strategy produces one candidate name. Uniqueness is enforced by the Table.
type strategy interface {
	generate(rng *rand.Rand, index int, sym symbols.Symbol) string
}

func newStrategy(cfg Config) strategy {
	switch cfg.Strategy {
	case StrategyPrefix:
		return prefixStrategy{prefix: cfg.Prefix}
	case StrategyPattern:
		return patternStrategy{prefix: cfg.Prefix, pattern: cfg.Pattern}
	case StrategyDictionary:
		return dictionaryStrategy{}
	default:
		return randomStrategy{min: cfg.MinLength, max: cfg.MaxLength}
	}
}

const (
	upperLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerLetters = "abcdefghijklmnopqrstuvwxyz"
	allLetters   = upperLetters + lowerLetters
)

// randomStrategy draws names of length uniform in [min, max] from letters
// only, starting with an uppercase letter so generated type names stay
// plausible in both languages.
type randomStrategy struct {
	min, max int
}

func (s randomStrategy) generate(rng *rand.Rand, index int, sym symbols.Symbol) string {
	length := s.min + rng.Intn(s.max-s.min+1)
	var b strings.Builder
	b.Grow(length)
	b.WriteByte(upperLetters[rng.Intn(len(upperLetters))])
	for i := 1; i < length; i++ {
		b.WriteByte(allLetters[rng.Intn(len(allLetters))])
	}
	return b.String()
}

// prefixStrategy produces <prefix><counter>.
type prefixStrategy struct {
	prefix string
}

func (s prefixStrategy) generate(rng *rand.Rand, index int, sym symbols.Symbol) string {
	return fmt.Sprintf("%s%d", s.prefix, index)
}

// patternStrategy substitutes {prefix}, {type}, and {index} tokens.
type patternStrategy struct {
	prefix  string
	pattern string
}

func (s patternStrategy) generate(rng *rand.Rand, index int, sym symbols.Symbol) string {
	r := strings.NewReplacer(
		"{prefix}", s.prefix,
		"{type}", string(sym.Kind),
		"{index}", fmt.Sprintf("%d", index),
	)
	return r.Replace(s.pattern)
}

// dictionaryStrategy draws from the curated word list, pairing two words once
// single words run out; the Table's uniqueness loop appends a counter beyond
// that.
type dictionaryStrategy struct{}

func (s dictionaryStrategy) generate(rng *rand.Rand, index int, sym symbols.Symbol) string {
	if index < len(dictionaryWords) {
		return dictionaryWords[rng.Intn(len(dictionaryWords))]
	}
	first := dictionaryWords[rng.Intn(len(dictionaryWords))]
	second := dictionaryWords[rng.Intn(len(dictionaryWords))]
	return first + second
}
