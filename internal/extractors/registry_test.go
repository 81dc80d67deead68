package extractors

import (
	"errors"
	"testing"

	"github.com/codeveil/codeveil/internal/symbols"
)

type fakeExtractor struct {
	lang symbols.Language
	exts []string
}

func (f fakeExtractor) Language() symbols.Language { return f.lang }
func (f fakeExtractor) Extensions() []string       { return f.exts }
func (f fakeExtractor) ExtractFile(path string) (*symbols.ParsedFile, error) {
	return symbols.NewParsedFile(path, f.lang), nil
}

func TestRegistryDispatch(t *testing.T) {
	r := NewRegistry()
	r.Register(fakeExtractor{lang: symbols.LangObjC, exts: []string{".h", ".m"}})
	r.Register(fakeExtractor{lang: symbols.LangSwift, exts: []string{".swift"}})

	tests := []struct {
		path string
		lang symbols.Language
	}{
		{"/p/Foo.h", symbols.LangObjC},
		{"/p/Foo.m", symbols.LangObjC},
		{"/p/FOO.M", symbols.LangObjC}, // extension match is case-insensitive
		{"/p/Bar.swift", symbols.LangSwift},
	}
	for _, tt := range tests {
		e, err := r.ForFile(tt.path)
		if err != nil {
			t.Errorf("ForFile(%q): %v", tt.path, err)
			continue
		}
		if e.Language() != tt.lang {
			t.Errorf("ForFile(%q) language = %q, want %q", tt.path, e.Language(), tt.lang)
		}
		if !r.Supports(tt.path) {
			t.Errorf("Supports(%q) = false", tt.path)
		}
	}
}

func TestRegistryUnsupported(t *testing.T) {
	r := NewRegistry()
	r.Register(fakeExtractor{lang: symbols.LangSwift, exts: []string{".swift"}})

	_, err := r.ForFile("/p/notes.txt")
	if err == nil {
		t.Fatal("expected error for unclaimed extension")
	}
	var unsupported *ErrUnsupportedFileType
	if !errors.As(err, &unsupported) {
		t.Fatalf("error type = %T", err)
	}
	if unsupported.Path != "/p/notes.txt" {
		t.Errorf("error path = %q", unsupported.Path)
	}
	if r.Supports("/p/notes.txt") {
		t.Error("Supports must be false for unclaimed extension")
	}
}

func TestRegistryExtensions(t *testing.T) {
	r := NewRegistry()
	r.Register(fakeExtractor{lang: symbols.LangObjC, exts: []string{".h", ".m", ".mm"}})
	if got := len(r.Extensions()); got != 3 {
		t.Errorf("extensions = %d, want 3", got)
	}
}
