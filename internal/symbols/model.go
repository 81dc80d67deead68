package symbols

// Kind identifies what sort of source entity a symbol names.
type Kind string

// Symbol kind constants.
const (
	KindClass            Kind = "class"
	KindProtocol         Kind = "protocol"
	KindCategory         Kind = "category"
	KindExtension        Kind = "extension"
	KindStruct           Kind = "struct"
	KindEnum             Kind = "enum"
	KindMethod           Kind = "method"
	KindProperty         Kind = "property"
	KindInstanceVariable Kind = "ivar"
	KindParameter        Kind = "parameter"
	KindLocalVariable    Kind = "local"
	KindConstant         Kind = "constant"
	KindMacro            Kind = "macro"
	KindTypedef          Kind = "typedef"
)

// Language identifies the source language of a parsed file.
type Language string

const (
	LangObjC  Language = "objc"
	LangSwift Language = "swift"
)

// Symbol represents one extracted, nameable source entity.
// A Symbol is created once per structural match during extraction and is
// immutable afterwards; it is owned by the ParsedFile that produced it.
type Symbol struct {
	Name           string   `json:"name"`
	Kind           Kind     `json:"kind"`
	File           string   `json:"file"`
	Line           int      `json:"line"`
	OriginalLine   string   `json:"original_line,omitempty"`
	Parent         string   `json:"parent,omitempty"`          // enclosing type or protocol name
	AccessModifier string   `json:"access_modifier,omitempty"` // ObjC property attributes or Swift access level
	IsStatic       bool     `json:"is_static,omitempty"`       // ObjC class methods; Swift let-immutability
	ReturnType     string   `json:"return_type,omitempty"`
	Parameters     []string `json:"parameters,omitempty"`
	References     []string `json:"references,omitempty"`
}

// ParsedFile holds everything extracted from a single source file in one run.
type ParsedFile struct {
	File         string          `json:"file"`
	Language     Language        `json:"language"`
	Symbols      []Symbol        `json:"symbols"` // extraction order, load-bearing for deterministic naming
	Imports      map[string]bool `json:"imports,omitempty"`
	ForwardDecls map[string]bool `json:"forward_decls,omitempty"`
}

// NewParsedFile creates an empty ParsedFile for the given path and language.
func NewParsedFile(file string, lang Language) *ParsedFile {
	return &ParsedFile{
		File:         file,
		Language:     lang,
		Imports:      make(map[string]bool),
		ForwardDecls: make(map[string]bool),
	}
}

// AddSymbol appends a symbol, preserving extraction order.
func (p *ParsedFile) AddSymbol(s Symbol) {
	s.File = p.File
	p.Symbols = append(p.Symbols, s)
}

// TransformResult is the outcome of applying the rename map to one file.
type TransformResult struct {
	File               string   `json:"file"`
	TransformedContent string   `json:"-"`
	Replacements       int      `json:"replacements"`
	Errors             []string `json:"errors,omitempty"`
	// OutputName is the renamed base filename (with extension) when a type
	// declared in the file shares the file's base name, otherwise the
	// original base name.
	OutputName string `json:"output_name"`
}
