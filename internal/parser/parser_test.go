package parser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/codeveil/codeveil/internal/extractors"
	"github.com/codeveil/codeveil/internal/symbols"
	"github.com/codeveil/codeveil/internal/whitelist"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseFileDispatch(t *testing.T) {
	dir := t.TempDir()
	c := New(whitelist.None)

	objc := writeFile(t, dir, "Foo.h", "@interface Foo : Thing\n@end\n")
	swift := writeFile(t, dir, "Bar.swift", "class Bar {\n}\n")

	pf, err := c.ParseFile(objc)
	if err != nil {
		t.Fatal(err)
	}
	if pf.Language != symbols.LangObjC {
		t.Errorf("language = %q, want objc", pf.Language)
	}

	pf, err = c.ParseFile(swift)
	if err != nil {
		t.Fatal(err)
	}
	if pf.Language != symbols.LangSwift {
		t.Errorf("language = %q, want swift", pf.Language)
	}
}

func TestParseFileUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	c := New(whitelist.None)
	path := writeFile(t, dir, "notes.txt", "hello")

	_, err := c.ParseFile(path)
	if err == nil {
		t.Fatal("expected error for unsupported extension")
	}
	var unsupported *extractors.ErrUnsupportedFileType
	if !errors.As(err, &unsupported) {
		t.Errorf("error type = %T, want ErrUnsupportedFileType", err)
	}
}

func TestParseFilesBatch(t *testing.T) {
	dir := t.TempDir()
	c := New(whitelist.None)

	paths := []string{
		writeFile(t, dir, "A.h", "@interface Alpha : Thing\n@end\n"),
		writeFile(t, dir, "B.m", "@implementation Beta\n- (void)go;\n@end\n"),
		writeFile(t, dir, "C.swift", "struct Gamma {\n}\n"),
	}

	var (
		calls     int
		lastFrac  float64
		monotonic = true
	)
	store, err := c.ParseFiles(context.Background(), paths, func(frac float64, path string) {
		calls++
		if frac < lastFrac {
			monotonic = false
		}
		lastFrac = frac
	})
	if err != nil {
		t.Fatal(err)
	}

	if store.FileCount() != 3 {
		t.Errorf("file count = %d, want 3", store.FileCount())
	}
	if calls != 3 {
		t.Errorf("progress calls = %d, want 3", calls)
	}
	if !monotonic {
		t.Error("progress fractions must be monotonically increasing")
	}
	if lastFrac != 1.0 {
		t.Errorf("final fraction = %v, want 1.0", lastFrac)
	}
	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		found := false
		for _, s := range store.AllSymbols() {
			if s.Name == name {
				found = true
			}
		}
		if !found {
			t.Errorf("symbol %q missing from merged store", name)
		}
	}
}

func TestParseFilesSkipsUnreadable(t *testing.T) {
	dir := t.TempDir()
	c := New(whitelist.None)

	good := writeFile(t, dir, "Good.swift", "class Good {\n}\n")
	missing := filepath.Join(dir, "Gone.swift")

	store, err := c.ParseFiles(context.Background(), []string{good, missing}, nil)
	if err != nil {
		t.Fatalf("batch must not abort on a per-file error: %v", err)
	}
	if store.FileCount() != 1 {
		t.Errorf("file count = %d, want 1", store.FileCount())
	}
}

func TestParseFilesEmpty(t *testing.T) {
	store, err := New(whitelist.None).ParseFiles(context.Background(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if store.Count() != 0 {
		t.Errorf("empty batch produced %d symbols", store.Count())
	}
}

func TestParseFilesCancelledContext(t *testing.T) {
	dir := t.TempDir()
	c := New(whitelist.None)
	path := writeFile(t, dir, "A.swift", "class A {\n}\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ParseFiles(ctx, []string{path}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
