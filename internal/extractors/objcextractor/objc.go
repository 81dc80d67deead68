// Package objcextractor extracts renameable symbols from Objective-C sources
// using line-based regex parsing. It covers enough structure to find
// interfaces, categories, protocols, properties, methods, enums, macros, and
// typedefs; anything it does not recognize is treated as ordinary code.
package objcextractor

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/codeveil/codeveil/internal/protect"
	"github.com/codeveil/codeveil/internal/symbols"
	"github.com/codeveil/codeveil/internal/whitelist"
)

// ObjCExtractor extracts symbols from .h/.m/.mm files.
type ObjCExtractor struct {
	whitelisted whitelist.Predicate
}

// New creates an ObjCExtractor with the given whitelist predicate.
func New(pred whitelist.Predicate) *ObjCExtractor {
	if pred == nil {
		pred = whitelist.None
	}
	return &ObjCExtractor{whitelisted: pred}
}

func (e *ObjCExtractor) Language() symbols.Language {
	return symbols.LangObjC
}

func (e *ObjCExtractor) Extensions() []string {
	return []string{".h", ".m", ".mm"}
}

// --- Regex patterns ---

var (
	importRe       = regexp.MustCompile(`^\s*#\s*(?:import|include)\s+[<"]([^>"]+)[>"]`)
	forwardClassRe = regexp.MustCompile(`^\s*@class\s+([^;]+);`)
	forwardProtoRe = regexp.MustCompile(`^\s*@protocol\s+([\w\s,]+);`)

	categoryRe       = regexp.MustCompile(`^\s*@interface\s+(\w+)\s*\(\s*(\w*)\s*\)`)
	interfaceRe      = regexp.MustCompile(`^\s*@interface\s+(\w+)\s*(?::\s*(\w+))?`)
	implementationRe = regexp.MustCompile(`^\s*@implementation\s+(\w+)(?:\s*\(\s*(\w+)\s*\))?`)
	protocolRe       = regexp.MustCompile(`^\s*@protocol\s+(\w+)`)
	endRe            = regexp.MustCompile(`^\s*@end\b`)

	propertyRe  = regexp.MustCompile(`^\s*@property\s*(?:\(([^)]*)\))?\s*(.+)$`)
	blockNameRe = regexp.MustCompile(`\(\s*\^\s*(\w+)\s*\)`)
	propNameRe  = regexp.MustCompile(`(\w+)\s*;`)

	methodRe  = regexp.MustCompile(`^\s*([-+])\s*\(([^)]*)\)\s*(.+)$`)
	segmentRe = regexp.MustCompile(`(\w+)\s*:\s*\(([^)]*)\)\s*(\w+)`)
	leadingRe = regexp.MustCompile(`^(\w+)`)

	nsEnumRe      = regexp.MustCompile(`^\s*typedef\s+NS_(?:ENUM|OPTIONS)\s*\(\s*(\w+)\s*,\s*(\w+)\s*\)`)
	enumStartRe   = regexp.MustCompile(`^\s*typedef\s+enum\b`)
	structStartRe = regexp.MustCompile(`^\s*typedef\s+struct\b`)
	blockEndRe    = regexp.MustCompile(`}\s*(\w+)\s*;`)
	defineRe      = regexp.MustCompile(`^\s*#\s*define\s+(\w+)`)
	typedefRe     = regexp.MustCompile(`^\s*typedef\s+(.+?)\s+\*?(\w+)\s*;`)

	ivarRe = regexp.MustCompile(`(\w+)\s*(?:\[[^\]]*\])?\s*;`)
)

// reservedMacroPrefixes are system macro namespaces that must not be renamed
// even when a project header redefines them.
var reservedMacroPrefixes = []string{"NS_", "UI_", "CF_", "DISPATCH_", "OBJC_", "__"}

// ExtractFile reads and parses one Objective-C file.
func (e *ObjCExtractor) ExtractFile(path string) (*symbols.ParsedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	pf := symbols.NewParsedFile(path, symbols.LangObjC)
	raw := string(data)
	// Imports come from the unmasked text: quoted import paths are string
	// literals and masking would hide them.
	e.scanImports(raw, pf)
	masked := protect.New().Protect(raw, symbols.LangObjC)
	e.scan(masked, pf)
	return pf, nil
}

// scanImports records #import/#include targets, stripping path and extension.
func (e *ObjCExtractor) scanImports(text string, pf *symbols.ParsedFile) {
	inComment := false
	for _, line := range strings.Split(text, "\n") {
		if inComment {
			if strings.Contains(line, "*/") {
				inComment = false
			}
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(line), "//") {
			continue
		}
		if idx := strings.Index(line, "/*"); idx >= 0 && !strings.Contains(line[idx:], "*/") {
			inComment = true
			line = line[:idx]
		}
		if m := importRe.FindStringSubmatch(line); m != nil {
			name := filepath.Base(m[1])
			pf.Imports[strings.TrimSuffix(name, filepath.Ext(name))] = true
		}
	}
}

// scanner state for one file.
type objcState struct {
	inComment      bool         // inside /* */ block
	inContinuation bool         // previous line ended with a backslash
	currentType    string       // enclosing @interface/@implementation/@protocol name
	inIvarBlock    bool         // between the braces after @interface
	sawMember      bool         // a property or method was seen for the current type
	pendingBlock   symbols.Kind // Enum or Struct while inside "typedef enum {" ... "} Name;"
}

func (e *ObjCExtractor) scan(text string, pf *symbols.ParsedFile) {
	var st objcState

	for i, line := range strings.Split(text, "\n") {
		lineNum := i + 1
		trimmed := strings.TrimSpace(line)

		// Continuation lines (macro or string) are fully skipped, but the
		// continuation chain must be followed to its end.
		if st.inContinuation {
			st.inContinuation = strings.HasSuffix(trimmed, `\`)
			continue
		}

		// Block comments.
		if st.inComment {
			if idx := strings.Index(line, "*/"); idx >= 0 {
				st.inComment = false
			}
			continue
		}
		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			continue
		}
		if idx := strings.Index(line, "/*"); idx >= 0 && !strings.Contains(line[idx:], "*/") {
			st.inComment = true
			line = line[:idx]
			trimmed = strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
		}

		startsContinuation := strings.HasSuffix(trimmed, `\`)

		// typedef enum/struct block in progress: wait for "} Name;".
		if st.pendingBlock != "" {
			if m := blockEndRe.FindStringSubmatch(line); m != nil {
				e.emit(pf, symbols.Symbol{
					Name:         m[1],
					Kind:         st.pendingBlock,
					Line:         lineNum,
					OriginalLine: trimmed,
				})
				st.pendingBlock = ""
			}
			continue
		}

		// Imports were collected from the raw text; skip the line here so a
		// masked quoted path is not misread as code.
		if strings.HasPrefix(trimmed, "#import") || strings.HasPrefix(trimmed, "#include") {
			continue
		}

		// Forward declarations.
		if m := forwardClassRe.FindStringSubmatch(line); m != nil {
			for _, name := range splitNameList(m[1]) {
				pf.ForwardDecls[name] = true
			}
			continue
		}
		if m := forwardProtoRe.FindStringSubmatch(line); m != nil && !strings.Contains(line, "<") {
			for _, name := range splitNameList(m[1]) {
				pf.ForwardDecls[name] = true
			}
			continue
		}

		// Category before plain interface: the category pattern is stricter.
		if m := categoryRe.FindStringSubmatch(line); m != nil {
			className, catName := m[1], m[2]
			st.currentType = className
			st.sawMember = false
			if catName != "" {
				e.emit(pf, symbols.Symbol{
					Name:         className + "+" + catName,
					Kind:         symbols.KindCategory,
					Line:         lineNum,
					OriginalLine: trimmed,
					Parent:       className,
				})
			}
			// Anonymous class extension "@interface Foo ()" only sets
			// the enclosing type.
			continue
		}

		if m := interfaceRe.FindStringSubmatch(line); m != nil {
			name, parent := m[1], m[2]
			st.currentType = name
			st.sawMember = false
			e.emit(pf, symbols.Symbol{
				Name:         name,
				Kind:         symbols.KindClass,
				Line:         lineNum,
				OriginalLine: trimmed,
				Parent:       parent,
			})
			// Instance variable block may open on the same line.
			if strings.Contains(line, "{") {
				st.inIvarBlock = true
			}
			continue
		}

		if m := implementationRe.FindStringSubmatch(line); m != nil {
			name, catName := m[1], m[2]
			st.currentType = name
			st.sawMember = false
			if catName != "" {
				e.emit(pf, symbols.Symbol{
					Name:         name + "+" + catName,
					Kind:         symbols.KindCategory,
					Line:         lineNum,
					OriginalLine: trimmed,
					Parent:       name,
				})
			} else {
				e.emit(pf, symbols.Symbol{
					Name:         name,
					Kind:         symbols.KindClass,
					Line:         lineNum,
					OriginalLine: trimmed,
				})
			}
			continue
		}

		if m := protocolRe.FindStringSubmatch(line); m != nil {
			name := m[1]
			st.currentType = name
			st.sawMember = false
			e.emit(pf, symbols.Symbol{
				Name:         name,
				Kind:         symbols.KindProtocol,
				Line:         lineNum,
				OriginalLine: trimmed,
			})
			continue
		}

		if endRe.MatchString(line) {
			st.currentType = ""
			st.inIvarBlock = false
			continue
		}

		// Instance variable block between the braces after @interface.
		if st.inIvarBlock {
			if strings.Contains(line, "}") {
				st.inIvarBlock = false
				continue
			}
			if m := ivarRe.FindStringSubmatch(line); m != nil {
				e.emit(pf, symbols.Symbol{
					Name:         m[1],
					Kind:         symbols.KindInstanceVariable,
					Line:         lineNum,
					OriginalLine: trimmed,
					Parent:       st.currentType,
				})
			}
			continue
		}

		if st.currentType != "" {
			// Ivar block opening on its own line directly after
			// @interface, before any member declaration.
			if trimmed == "{" && !st.sawMember {
				st.inIvarBlock = true
				continue
			}
			if e.scanProperty(line, lineNum, trimmed, &st, pf) {
				st.sawMember = true
				continue
			}
			if e.scanMethod(line, lineNum, trimmed, &st, pf) {
				st.sawMember = true
				continue
			}
		} else {
			if m := nsEnumRe.FindStringSubmatch(line); m != nil {
				e.emit(pf, symbols.Symbol{
					Name:         m[2],
					Kind:         symbols.KindEnum,
					Line:         lineNum,
					OriginalLine: trimmed,
					ReturnType:   m[1],
				})
				continue
			}
			if enumStartRe.MatchString(line) {
				if m := blockEndRe.FindStringSubmatch(line); m != nil {
					// One-line "typedef enum { A, B } Name;".
					e.emit(pf, symbols.Symbol{
						Name:         m[1],
						Kind:         symbols.KindEnum,
						Line:         lineNum,
						OriginalLine: trimmed,
					})
				} else {
					st.pendingBlock = symbols.KindEnum
				}
				continue
			}
			if structStartRe.MatchString(line) {
				if m := blockEndRe.FindStringSubmatch(line); m != nil {
					e.emit(pf, symbols.Symbol{
						Name:         m[1],
						Kind:         symbols.KindStruct,
						Line:         lineNum,
						OriginalLine: trimmed,
					})
				} else {
					st.pendingBlock = symbols.KindStruct
				}
				continue
			}
			if m := defineRe.FindStringSubmatch(line); m != nil {
				name := m[1]
				if !hasReservedPrefix(name) {
					e.emit(pf, symbols.Symbol{
						Name:         name,
						Kind:         symbols.KindMacro,
						Line:         lineNum,
						OriginalLine: trimmed,
					})
				}
				st.inContinuation = startsContinuation
				continue
			}
			if m := typedefRe.FindStringSubmatch(line); m != nil {
				e.emit(pf, symbols.Symbol{
					Name:         m[2],
					Kind:         symbols.KindTypedef,
					Line:         lineNum,
					OriginalLine: trimmed,
					ReturnType:   strings.TrimSpace(m[1]),
				})
				continue
			}
		}

		st.inContinuation = startsContinuation
	}
}

// scanProperty recognizes attributed, bare, and block-typed @property lines.
func (e *ObjCExtractor) scanProperty(line string, lineNum int, trimmed string, st *objcState, pf *symbols.ParsedFile) bool {
	m := propertyRe.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	attrs, rest := m[1], m[2]

	var name, propType string
	if bm := blockNameRe.FindStringSubmatch(rest); bm != nil {
		// Block-typed property: ReturnType (^name)(Args);
		name = bm[1]
		if idx := strings.Index(rest, "("); idx > 0 {
			propType = strings.TrimSpace(rest[:idx])
		}
	} else if nm := propNameRe.FindStringSubmatch(rest); nm != nil {
		name = nm[1]
		if idx := strings.LastIndex(rest, name); idx > 0 {
			propType = strings.TrimSpace(strings.TrimRight(rest[:idx], " \t*"))
		}
	}
	if name == "" {
		return true // @property line we cannot parse further; still consumed
	}

	e.emit(pf, symbols.Symbol{
		Name:           name,
		Kind:           symbols.KindProperty,
		Line:           lineNum,
		OriginalLine:   trimmed,
		Parent:         st.currentType,
		AccessModifier: strings.TrimSpace(attrs),
		ReturnType:     propType,
	})
	return true
}

// scanMethod recognizes +/- method declarations, assembling the selector
// from its label segments: "foo:(T)a bar:(U)b" becomes "foo:bar:".
func (e *ObjCExtractor) scanMethod(line string, lineNum int, trimmed string, st *objcState, pf *symbols.ParsedFile) bool {
	m := methodRe.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	sign, retType, rest := m[1], m[2], m[3]

	var selector string
	var params []string
	segments := segmentRe.FindAllStringSubmatch(rest, -1)
	if len(segments) > 0 {
		for _, seg := range segments {
			selector += seg[1] + ":"
			params = append(params, seg[3])
		}
	} else if lm := leadingRe.FindStringSubmatch(rest); lm != nil {
		selector = lm[1]
	}
	if selector == "" {
		return true
	}

	e.emit(pf, symbols.Symbol{
		Name:         selector,
		Kind:         symbols.KindMethod,
		Line:         lineNum,
		OriginalLine: trimmed,
		Parent:       st.currentType,
		IsStatic:     sign == "+",
		ReturnType:   strings.TrimSpace(retType),
		Parameters:   params,
	})
	return true
}

// emit adds a symbol unless its name is whitelisted.
func (e *ObjCExtractor) emit(pf *symbols.ParsedFile, s symbols.Symbol) {
	if e.whitelisted(baseSelectorName(s.Name)) {
		return
	}
	pf.AddSymbol(s)
}

// baseSelectorName strips trailing colons so whitelist checks see the
// selector's leading label ("init:" matches "init").
func baseSelectorName(name string) string {
	if idx := strings.Index(name, ":"); idx > 0 {
		return name[:idx]
	}
	return name
}

func splitNameList(list string) []string {
	var result []string
	for _, part := range strings.Split(list, ",") {
		if name := strings.TrimSpace(part); name != "" {
			result = append(result, name)
		}
	}
	return result
}

func hasReservedPrefix(name string) bool {
	for _, p := range reservedMacroPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}
