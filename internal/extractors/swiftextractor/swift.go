// Package swiftextractor extracts renameable symbols from Swift sources
// using line-based regex parsing with brace-depth tracking. Type bodies are
// delimited by braces rather than an end keyword, so the enclosing-type state
// is cleared only when the depth returns to zero.
package swiftextractor

import (
	"os"
	"regexp"
	"strings"

	"github.com/codeveil/codeveil/internal/protect"
	"github.com/codeveil/codeveil/internal/symbols"
	"github.com/codeveil/codeveil/internal/whitelist"
)

// SwiftExtractor extracts symbols from .swift files.
type SwiftExtractor struct {
	whitelisted whitelist.Predicate
}

// New creates a SwiftExtractor with the given whitelist predicate.
func New(pred whitelist.Predicate) *SwiftExtractor {
	if pred == nil {
		pred = whitelist.None
	}
	return &SwiftExtractor{whitelisted: pred}
}

func (e *SwiftExtractor) Language() symbols.Language {
	return symbols.LangSwift
}

func (e *SwiftExtractor) Extensions() []string {
	return []string{".swift"}
}

// --- Regex patterns ---

// generic matches an optional generic parameter list with one level of
// nested angle brackets, e.g. <T: Collection<Int>>.
const generic = `(?:<[^<>]*(?:<[^<>]*>[^<>]*)*>)?`

var (
	importRe = regexp.MustCompile(`^\s*import\s+(\w+)`)

	classRe = regexp.MustCompile(
		`^\s*(?:(?:@\w+\s+)*(?:public|private|fileprivate|internal|open|final)\s+)*class\s+(\w+)\s*` + generic)
	structRe = regexp.MustCompile(
		`^\s*(?:(?:@\w+\s+)*(?:public|private|fileprivate|internal|open)\s+)*struct\s+(\w+)\s*` + generic)
	enumRe = regexp.MustCompile(
		`^\s*(?:(?:public|private|fileprivate|internal|open|indirect)\s+)*enum\s+(\w+)\s*` + generic)
	protocolRe = regexp.MustCompile(
		`^\s*(?:(?:public|private|fileprivate|internal|open)\s+)*protocol\s+(\w+)`)
	extensionRe = regexp.MustCompile(`^\s*extension\s+(\w+)`)

	funcRe = regexp.MustCompile(
		`^\s*(?:(?:public|private|fileprivate|internal|open|override|static|class|mutating|nonmutating|final|@\w+)\s+)*func\s+(\w+)\s*` + generic + `\s*\(([^)]*)\)(?:\s*(?:async|throws|rethrows|\s))*(?:->\s*([^{]+))?`)
	propRe = regexp.MustCompile(
		`^\s*(?:(?:public|private|fileprivate|internal|open|static|class|override|lazy|weak|unowned|@\w+(?:\([^)]*\))?)\s+)*(let|var)\s+(\w+)(?:\s*:\s*([^={]+))?`)
	caseRe      = regexp.MustCompile(`^\s*case\s+(.+)$`)
	typealiasRe = regexp.MustCompile(`^\s*(?:(?:public|private|fileprivate|internal)\s+)*typealias\s+(\w+)`)

	accessRe = regexp.MustCompile(`\b(public|private|fileprivate|internal|open)\b`)
	paramRe  = regexp.MustCompile(`(\w+)\s*:`)
)

// ExtractFile reads and parses one Swift file.
func (e *SwiftExtractor) ExtractFile(path string) (*symbols.ParsedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	pf := symbols.NewParsedFile(path, symbols.LangSwift)
	masked := protect.New().Protect(string(data), symbols.LangSwift)
	e.scan(masked, pf)
	return pf, nil
}

func (e *SwiftExtractor) scan(text string, pf *symbols.ParsedFile) {
	var (
		braceDepth        int
		inComment         bool
		inMultilineString bool
		currentType       string // enclosing type at top level
		currentKind       symbols.Kind
	)

	for i, line := range strings.Split(text, "\n") {
		lineNum := i + 1
		trimmed := strings.TrimSpace(line)

		// Triple-quoted string literals: contained lines are skipped through
		// the closing delimiter's line, but code before an opening delimiter
		// (the binding in `let s = """`) is still scanned.
		if inMultilineString {
			if strings.Count(line, `"""`)%2 == 1 {
				inMultilineString = false
			}
			continue
		}
		if quotes := strings.Count(line, `"""`); quotes > 0 {
			if quotes%2 == 0 {
				continue
			}
			inMultilineString = true
			line = line[:strings.Index(line, `"""`)]
			trimmed = strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
		}

		if inComment {
			if strings.Contains(line, "*/") {
				inComment = false
			}
			continue
		}
		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			continue
		}
		if idx := strings.Index(line, "/*"); idx >= 0 && !strings.Contains(line[idx:], "*/") {
			inComment = true
			line = line[:idx]
			trimmed = strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
		}

		// Depth before this line's opening braces take effect.
		effectiveDepth := braceDepth
		braceDepth += strings.Count(line, "{") - strings.Count(line, "}")
		if braceDepth < 0 {
			braceDepth = 0
		}
		// Enclosing-type state is cleared only when depth returns to zero.
		if braceDepth == 0 && currentType != "" && strings.Contains(line, "}") {
			currentType = ""
			currentKind = ""
			continue
		}

		if effectiveDepth == 0 {
			if m := importRe.FindStringSubmatch(line); m != nil {
				pf.Imports[m[1]] = true
				continue
			}
			if name, kind := matchTypeDecl(line); name != "" {
				parent := firstSupertype(declTail(line, name))
				e.emit(pf, symbols.Symbol{
					Name:           name,
					Kind:           kind,
					Line:           lineNum,
					OriginalLine:   trimmed,
					Parent:         parent,
					AccessModifier: accessLevel(line),
				})
				if strings.Contains(line, "{") {
					currentType = name
					currentKind = kind
				}
				continue
			}
			if m := typealiasRe.FindStringSubmatch(line); m != nil {
				e.emit(pf, symbols.Symbol{
					Name:           m[1],
					Kind:           symbols.KindTypedef,
					Line:           lineNum,
					OriginalLine:   trimmed,
					AccessModifier: accessLevel(line),
				})
				continue
			}
			// Free functions and top-level bindings.
			if e.scanFunc(line, lineNum, trimmed, "", pf) {
				continue
			}
			if e.scanVarLet(line, lineNum, trimmed, "", pf) {
				continue
			}
			continue
		}

		// Member declarations directly inside the current type body.
		if currentType != "" && effectiveDepth == 1 {
			if currentKind == symbols.KindEnum {
				if m := caseRe.FindStringSubmatch(trimmed); m != nil {
					for _, name := range splitCaseList(m[1]) {
						e.emit(pf, symbols.Symbol{
							Name:         name,
							Kind:         symbols.KindConstant,
							Line:         lineNum,
							OriginalLine: trimmed,
							Parent:       currentType,
						})
					}
					continue
				}
			}
			if e.scanFunc(line, lineNum, trimmed, currentType, pf) {
				continue
			}
			if e.scanVarLet(line, lineNum, trimmed, currentType, pf) {
				continue
			}
		}
	}
}

// scanFunc recognizes func declarations. The return type defaults to Void
// when no arrow is present.
func (e *SwiftExtractor) scanFunc(line string, lineNum int, trimmed, parent string, pf *symbols.ParsedFile) bool {
	m := funcRe.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	name, paramList, retType := m[1], m[2], strings.TrimSpace(m[3])
	if retType == "" {
		retType = "Void"
	}

	var params []string
	for _, pm := range paramRe.FindAllStringSubmatch(paramList, -1) {
		params = append(params, pm[1])
	}

	e.emit(pf, symbols.Symbol{
		Name:           name,
		Kind:           symbols.KindMethod,
		Line:           lineNum,
		OriginalLine:   trimmed,
		Parent:         parent,
		AccessModifier: accessLevel(line),
		IsStatic:       false,
		ReturnType:     retType,
		Parameters:     params,
	})
	return true
}

// scanVarLet recognizes var/let declarations. IsStatic flags let-immutability.
func (e *SwiftExtractor) scanVarLet(line string, lineNum int, trimmed, parent string, pf *symbols.ParsedFile) bool {
	m := propRe.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	keyword, name, declType := m[1], m[2], strings.TrimSpace(m[3])
	if name == "_" {
		return true
	}

	e.emit(pf, symbols.Symbol{
		Name:           name,
		Kind:           symbols.KindProperty,
		Line:           lineNum,
		OriginalLine:   trimmed,
		Parent:         parent,
		AccessModifier: accessLevel(line),
		IsStatic:       keyword == "let",
		ReturnType:     declType,
	})
	return true
}

// emit adds a symbol unless its name is whitelisted.
func (e *SwiftExtractor) emit(pf *symbols.ParsedFile, s symbols.Symbol) {
	if e.whitelisted(s.Name) {
		return
	}
	pf.AddSymbol(s)
}

// matchTypeDecl identifies class/struct/enum/protocol/extension openings.
func matchTypeDecl(line string) (string, symbols.Kind) {
	if m := classRe.FindStringSubmatch(line); m != nil {
		return m[1], symbols.KindClass
	}
	if m := structRe.FindStringSubmatch(line); m != nil {
		return m[1], symbols.KindStruct
	}
	if m := enumRe.FindStringSubmatch(line); m != nil {
		return m[1], symbols.KindEnum
	}
	if m := protocolRe.FindStringSubmatch(line); m != nil {
		return m[1], symbols.KindProtocol
	}
	if m := extensionRe.FindStringSubmatch(line); m != nil {
		return m[1], symbols.KindExtension
	}
	return "", ""
}

// declTail returns the text after the declared name on a type header line.
func declTail(line, name string) string {
	if idx := strings.Index(line, name); idx >= 0 {
		return line[idx+len(name):]
	}
	return ""
}

// firstSupertype extracts the first inherited type from a header tail like
// "<T: Proto>: Bar, P where T: Equatable {". Colons inside balanced angle
// brackets or parentheses belong to generic constraints or parameters and
// are skipped.
func firstSupertype(tail string) string {
	depth := 0
	for i, ch := range tail {
		switch ch {
		case '<', '(':
			depth++
		case '>', ')':
			depth--
		case '{':
			return ""
		case ':':
			if depth <= 0 {
				rest := tail[i+1:]
				if idx := strings.IndexAny(rest, "{"); idx >= 0 {
					rest = rest[:idx]
				}
				if idx := strings.Index(rest, " where "); idx >= 0 {
					rest = rest[:idx]
				}
				parts := splitTopLevel(rest, ',')
				if len(parts) == 0 {
					return ""
				}
				return typeName(parts[0])
			}
		}
	}
	return ""
}

// splitTopLevel splits on sep outside of angle brackets and parentheses.
func splitTopLevel(s string, sep rune) []string {
	var result []string
	depth, start := 0, 0
	for i, ch := range s {
		switch ch {
		case '<', '(':
			depth++
		case '>', ')':
			depth--
		case sep:
			if depth == 0 {
				result = append(result, s[start:i])
				start = i + 1
			}
		}
	}
	result = append(result, s[start:])
	var clean []string
	for _, r := range result {
		if t := strings.TrimSpace(r); t != "" {
			clean = append(clean, t)
		}
	}
	return clean
}

// typeName reduces a supertype entry like "Base<T>" or "Module.Foo" to Foo.
func typeName(s string) string {
	s = strings.TrimSpace(s)
	for i, ch := range s {
		if ch == '<' || ch == '(' || ch == ' ' {
			s = s[:i]
			break
		}
	}
	if idx := strings.LastIndex(s, "."); idx >= 0 {
		s = s[idx+1:]
	}
	return s
}

// splitCaseList splits "a, b(Int), c" into case names, stripping
// associated-value parentheses and raw-value assignments.
func splitCaseList(list string) []string {
	var result []string
	for _, part := range splitTopLevel(list, ',') {
		if idx := strings.IndexAny(part, "(="); idx >= 0 {
			part = part[:idx]
		}
		if name := strings.TrimSpace(part); name != "" && isIdentifier(name) {
			result = append(result, name)
		}
	}
	return result
}

func isIdentifier(s string) bool {
	for i, ch := range s {
		switch {
		case ch == '_', ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z':
		case ch >= '0' && ch <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return s != ""
}

func accessLevel(line string) string {
	if m := accessRe.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	return ""
}
