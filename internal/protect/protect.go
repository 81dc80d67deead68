// Package protect masks string literals with placeholder tokens so that
// keywords inside string contents never look like code constructs to the
// line-oriented extractors.
package protect

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/codeveil/codeveil/internal/symbols"
)

var (
	// ObjC literals: @"..." and plain C "..." with backslash escapes.
	// Literals never span lines, so newlines terminate a match attempt.
	objcStringRe = regexp.MustCompile(`@?"(?:[^"\\\n]|\\.)*"`)

	// Swift single-line literals. Triple-quote delimiters are matched first
	// and left intact: multi-line string bodies are handled by the Swift
	// extractor's own skip state, not masked here.
	swiftStringRe = regexp.MustCompile(`"""|"(?:[^"\\\n]|\\.)*"`)
)

// Protector replaces string literals with unique placeholder tokens and
// restores them afterwards. One Protector instance covers one file.
type Protector struct {
	placeholders map[string]string // token -> original literal
	counter      int
}

// New creates an empty Protector.
func New() *Protector {
	return &Protector{placeholders: make(map[string]string)}
}

// Protect masks every well-formed string literal in text with a
// __STRING_PLACEHOLDER_<n>__ token. Placeholders are single tokens without
// newlines, so line splitting of the masked text is unaffected. Malformed or
// unterminated literals are left as-is.
func (p *Protector) Protect(text string, lang symbols.Language) string {
	re := swiftStringRe
	if lang == symbols.LangObjC {
		re = objcStringRe
	}
	return re.ReplaceAllStringFunc(text, func(lit string) string {
		if lit == `"""` {
			return lit
		}
		token := fmt.Sprintf("__STRING_PLACEHOLDER_%d__", p.counter)
		p.counter++
		p.placeholders[token] = lit
		return token
	})
}

// Restore substitutes every placeholder token back to its original literal.
func (p *Protector) Restore(text string) string {
	if len(p.placeholders) == 0 {
		return text
	}
	pairs := make([]string, 0, len(p.placeholders)*2)
	for token, lit := range p.placeholders {
		pairs = append(pairs, token, lit)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// Count returns the number of literals masked so far.
func (p *Protector) Count() int {
	return len(p.placeholders)
}
