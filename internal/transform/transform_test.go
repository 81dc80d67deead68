package transform

import (
	"strings"
	"testing"

	"github.com/codeveil/codeveil/internal/symbols"
)

func TestWholeIdentifierReplacement(t *testing.T) {
	tests := []struct {
		name         string
		mapping      map[string]string
		content      string
		want         string
		replacements int
	}{
		{
			"simple rename",
			map[string]string{"Foo": "Xq"},
			"Foo *f = [[Foo alloc] init];",
			"Xq *f = [[Xq alloc] init];",
			2,
		},
		{
			"no substring bleed",
			map[string]string{"Foo": "Xq"},
			"FooBar fooish Foo_ _Foo MyFoo",
			"FooBar fooish Foo_ _Foo MyFoo",
			0,
		},
		{
			"selector labels",
			map[string]string{"updateFrom": "Ab", "withFlags": "Cd"},
			"[self updateFrom:x withFlags:y];",
			"[self Ab:x Cd:y];",
			2,
		},
		{
			"underscored ivar",
			map[string]string{"_title": "_Zk"},
			"self->_title = _title;",
			"self->_Zk = _Zk;",
			2,
		},
		{
			"unmapped untouched",
			map[string]string{"gone": "Xy"},
			"nothing here matches",
			"nothing here matches",
			0,
		},
		{
			"string contents also renamed after restore",
			map[string]string{"doWork": "Qz"},
			"doWork(); // calls doWork",
			"Qz(); // calls Qz",
			2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := New(tt.mapping).Apply("/p/T.m", tt.content, nil)
			if result.TransformedContent != tt.want {
				t.Errorf("content = %q, want %q", result.TransformedContent, tt.want)
			}
			if result.Replacements != tt.replacements {
				t.Errorf("replacements = %d, want %d", result.Replacements, tt.replacements)
			}
			if len(result.Errors) != 0 {
				t.Errorf("unexpected errors: %v", result.Errors)
			}
		})
	}
}

func TestLineCountPreserved(t *testing.T) {
	content := "Foo a;\nFoo b;\nFoo c;\n"
	result := New(map[string]string{"Foo": "Xq"}).Apply("/p/T.m", content, nil)
	if got, want := strings.Count(result.TransformedContent, "\n"), strings.Count(content, "\n"); got != want {
		t.Errorf("line count changed: %d -> %d", want, got)
	}
}

func TestOutputNameFollowsDeclaredType(t *testing.T) {
	pf := symbols.NewParsedFile("/proj/Foo.h", symbols.LangObjC)
	pf.AddSymbol(symbols.Symbol{Name: "Foo", Kind: symbols.KindClass})

	result := New(map[string]string{"Foo": "Xqzlkary"}).Apply("/proj/Foo.h", "@interface Foo\n@end\n", pf)
	if result.OutputName != "Xqzlkary.h" {
		t.Errorf("output name = %q, want Xqzlkary.h", result.OutputName)
	}
}

func TestOutputNameImplementationPairsWithHeader(t *testing.T) {
	// @implementation Foo emits a class symbol, so the implementation file
	// follows the same rename as the header.
	pf := symbols.NewParsedFile("/proj/Foo.m", symbols.LangObjC)
	pf.AddSymbol(symbols.Symbol{Name: "Foo", Kind: symbols.KindClass})
	pf.AddSymbol(symbols.Symbol{Name: "doThing", Kind: symbols.KindMethod, Parent: "Foo"})

	result := New(map[string]string{"Foo": "Xqzlkary", "doThing": "Mn"}).Apply("/proj/Foo.m", "@implementation Foo\n@end\n", pf)
	if result.OutputName != "Xqzlkary.m" {
		t.Errorf("output name = %q, want Xqzlkary.m", result.OutputName)
	}
}

func TestOutputNameMappedStemWithoutTypeDecl(t *testing.T) {
	// The file's stem collides with a renamed property, but the file declares
	// no type of that name, so the filename must not change.
	pf := symbols.NewParsedFile("/proj/counter.swift", symbols.LangSwift)
	pf.AddSymbol(symbols.Symbol{Name: "tick", Kind: symbols.KindMethod})

	result := New(map[string]string{"counter": "Xy"}).Apply("/proj/counter.swift", "func tick() {}\n", pf)
	if result.OutputName != "counter.swift" {
		t.Errorf("output name = %q, want counter.swift", result.OutputName)
	}
}

func TestOutputNameUnmappedStem(t *testing.T) {
	result := New(map[string]string{"other": "Xy"}).Apply("/proj/AppDelegate.m", "", nil)
	if result.OutputName != "AppDelegate.m" {
		t.Errorf("output name = %q, want AppDelegate.m", result.OutputName)
	}
}

func TestOutputNameInvalidGeneratedName(t *testing.T) {
	pf := symbols.NewParsedFile("/proj/Foo.h", symbols.LangObjC)
	pf.AddSymbol(symbols.Symbol{Name: "Foo", Kind: symbols.KindClass})

	result := New(map[string]string{"Foo": "9bad name"}).Apply("/proj/Foo.h", "@interface Foo\n@end\n", pf)
	if len(result.Errors) == 0 {
		t.Fatal("expected an error for a non-identifier generated name")
	}
	if result.OutputName != "Foo.h" {
		t.Errorf("output name on error = %q, want original Foo.h", result.OutputName)
	}
}

func TestMethodSymbolDoesNotRenameFile(t *testing.T) {
	// A method whose name happens to equal the file stem must not trigger a
	// filename rename; only type kinds do. The stem itself is unmapped here.
	pf := symbols.NewParsedFile("/proj/refresh.swift", symbols.LangSwift)
	pf.AddSymbol(symbols.Symbol{Name: "refresh", Kind: symbols.KindMethod})

	result := New(map[string]string{"other": "Xy"}).Apply("/proj/refresh.swift", "func refresh() {}\n", pf)
	if result.OutputName != "refresh.swift" {
		t.Errorf("output name = %q, want refresh.swift", result.OutputName)
	}
}
