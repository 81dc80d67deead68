// Package transform applies the frozen rename map to file contents.
package transform

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/codeveil/codeveil/internal/symbols"
)

// identifierRe matches maximal identifier runs. Replacing whole matches
// guarantees a mapped name is never renamed inside a longer identifier.
var identifierRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// Transformer rewrites files with a read-only shared rename map. Per-file
// processing is independent and order-insensitive once the map is frozen.
type Transformer struct {
	mapping map[string]string
}

// New creates a Transformer over the frozen rename map.
func New(mapping map[string]string) *Transformer {
	return &Transformer{mapping: mapping}
}

// Apply rewrites one file's original (unmasked) content, counting
// replacements. Errors are collected into the result; a file with errors
// must not be written to output.
func (t *Transformer) Apply(path, content string, pf *symbols.ParsedFile) symbols.TransformResult {
	result := symbols.TransformResult{
		File:       path,
		OutputName: filepath.Base(path),
	}

	transformed := identifierRe.ReplaceAllStringFunc(content, func(ident string) string {
		if generated, ok := t.mapping[ident]; ok {
			result.Replacements++
			return generated
		}
		return ident
	})
	result.TransformedContent = transformed

	name, err := t.outputName(path, pf)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	result.OutputName = name
	return result
}

// outputName decides the output base filename. When a type declared in the
// file shares the file's base name and is renamed, the output uses the
// generated name with the original extension so header/implementation pairs
// stay together under their new name.
func (t *Transformer) outputName(path string, pf *symbols.ParsedFile) (string, error) {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	if pf != nil {
		for _, sym := range pf.Symbols {
			if sym.Name != stem || !isTypeKind(sym.Kind) {
				continue
			}
			generated, ok := t.mapping[stem]
			if !ok {
				break
			}
			if !identifierRe.MatchString(generated) || identifierRe.FindString(generated) != generated {
				return "", fmt.Errorf("generated name %q is not a valid identifier", generated)
			}
			return generated + ext, nil
		}
	}
	// Only declared types rename their file. Both halves of a
	// header/implementation pair pass through the loop above, since
	// @implementation also yields a class symbol; a file that merely shares
	// its stem with some renamed identifier keeps its name.
	return base, nil
}

func isTypeKind(k symbols.Kind) bool {
	switch k {
	case symbols.KindClass, symbols.KindProtocol, symbols.KindStruct,
		symbols.KindEnum, symbols.KindTypedef, symbols.KindCategory:
		return true
	}
	return false
}
