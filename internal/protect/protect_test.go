package protect

import (
	"strings"
	"testing"

	"github.com/codeveil/codeveil/internal/symbols"
)

func TestProtectMasksLiterals(t *testing.T) {
	tests := []struct {
		name string
		lang symbols.Language
		in   string
		want int // masked literal count
	}{
		{"objc nsstring", symbols.LangObjC, `NSString *s = @"hello @interface";`, 1},
		{"objc c string", symbols.LangObjC, `char *s = "class Foo";`, 1},
		{"objc escaped quote", symbols.LangObjC, `@"say \"hi\"" and @"two"`, 2},
		{"swift literal", symbols.LangSwift, `let s = "func broken {"`, 1},
		{"no literals", symbols.LangSwift, `let x = 5`, 0},
		{"unterminated passes through", symbols.LangObjC, `NSString *s = @"oops`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New()
			masked := p.Protect(tt.in, tt.lang)
			if p.Count() != tt.want {
				t.Errorf("Count() = %d, want %d", p.Count(), tt.want)
			}
			if tt.want > 0 && strings.Contains(masked, `"`) {
				t.Errorf("masked text still contains a quote: %q", masked)
			}
			if tt.want == 0 && masked != tt.in {
				t.Errorf("text without maskable literals changed: %q", masked)
			}
		})
	}
}

func TestProtectRestoreRoundTrip(t *testing.T) {
	inputs := []string{
		``,
		`no strings here`,
		`NSString *a = @"one"; NSString *b = @"two";`,
		`@"escaped \" quote" + "plain" + @""`,
		"line1 @\"x\"\nline2 \"y\"\nline3",
		`[dict setObject:@"@interface Fake : NSObject" forKey:@"k"];`,
	}
	for _, in := range inputs {
		p := New()
		masked := p.Protect(in, symbols.LangObjC)
		if got := p.Restore(masked); got != in {
			t.Errorf("round trip failed:\n in:  %q\n got: %q", in, got)
		}
	}
}

func TestProtectPreservesLineCount(t *testing.T) {
	in := "a = @\"x\"\nb = @\"y\nstill line two?\"\nc"
	p := New()
	masked := p.Protect(in, symbols.LangObjC)
	if strings.Count(masked, "\n") != strings.Count(in, "\n") {
		t.Errorf("line count changed: %d vs %d", strings.Count(masked, "\n"), strings.Count(in, "\n"))
	}
}

func TestPlaceholdersAreUnique(t *testing.T) {
	p := New()
	masked := p.Protect(`@"a" @"a" @"a"`, symbols.LangObjC)
	if p.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", p.Count())
	}
	seen := make(map[string]bool)
	for _, tok := range strings.Fields(masked) {
		if seen[tok] {
			t.Errorf("duplicate placeholder %q", tok)
		}
		seen[tok] = true
	}
}
