package extractors

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/codeveil/codeveil/internal/symbols"
)

// Extractor parses source files for one language and emits symbols.
type Extractor interface {
	// Language returns the language tag this extractor handles.
	Language() symbols.Language
	// Extensions returns the file extensions (with leading dot) it accepts.
	Extensions() []string
	// ExtractFile parses a single file and returns its symbols, imports,
	// and forward declarations. Unrecognized syntax is ignored, never an
	// error; errors are limited to I/O failures.
	ExtractFile(path string) (*symbols.ParsedFile, error)
}

// ErrUnsupportedFileType is returned when no extractor claims a file's extension.
type ErrUnsupportedFileType struct {
	Path string
}

func (e *ErrUnsupportedFileType) Error() string {
	return fmt.Sprintf("unsupported file type: %s", e.Path)
}

// Registry resolves extractors by file extension.
type Registry struct {
	byExt map[string]Extractor
}

// NewRegistry creates an empty extractor registry.
func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string]Extractor)}
}

// Register adds an extractor, claiming all of its extensions.
func (r *Registry) Register(e Extractor) {
	for _, ext := range e.Extensions() {
		r.byExt[strings.ToLower(ext)] = e
	}
}

// ForFile returns the extractor for a file path, or an
// ErrUnsupportedFileType when no extractor claims its extension.
func (r *Registry) ForFile(path string) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(path))
	e, ok := r.byExt[ext]
	if !ok {
		return nil, &ErrUnsupportedFileType{Path: path}
	}
	return e, nil
}

// Supports reports whether the registry has an extractor for the path.
func (r *Registry) Supports(path string) bool {
	_, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extensions returns every registered extension.
func (r *Registry) Extensions() []string {
	result := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		result = append(result, ext)
	}
	return result
}
