package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeveil/codeveil/internal/cache"
	"github.com/codeveil/codeveil/internal/config"
	"github.com/codeveil/codeveil/internal/export"
	"github.com/codeveil/codeveil/internal/naming"
)

const headerSrc = `@interface Foo : Thing
@property (nonatomic) int bar;
- (void)doThing:(int)value;
@end
`

const implSrc = `#import "Foo.h"

@implementation Foo

- (void)doThing:(int)value {
    self.bar = value;
}

@end
`

func projectConfig(root string) *config.Config {
	cfg := config.Default()
	cfg.Root = root
	// Counter-based names keep assertions independent of the RNG.
	cfg.Naming = naming.Config{
		Strategy:  naming.StrategyPrefix,
		Prefix:    "OBF",
		MinLength: 1,
		MaxLength: 1,
	}
	return cfg
}

func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Foo.h"), []byte(headerSrc), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Foo.m"), []byte(implSrc), 0o644))
	return dir
}

func readMapping(t *testing.T, outDir string) map[string]string {
	t.Helper()
	doc, err := export.ReadDocument(filepath.Join(outDir, MappingFileName))
	require.NoError(t, err)
	m := make(map[string]string, len(doc.Entries))
	for _, e := range doc.Entries {
		m[e.Original] = e.Obfuscated
	}
	return m
}

func TestRunHeaderImplementationPair(t *testing.T) {
	dir := writeProject(t)
	eng, err := New(projectConfig(dir))
	require.NoError(t, err)

	summary, err := eng.Run(context.Background(), Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.FilesFound)
	assert.Equal(t, 2, summary.FilesParsed)
	assert.Empty(t, summary.FileErrors)
	assert.Greater(t, summary.Replacements, 0)

	mapping := readMapping(t, summary.OutputDir)
	for _, original := range []string{"Foo", "bar", "doThing"} {
		assert.Contains(t, mapping, original)
	}

	// Both files of the pair follow the class's new name.
	newStem := mapping["Foo"]
	header, err := os.ReadFile(filepath.Join(summary.OutputDir, newStem+".h"))
	require.NoError(t, err)
	impl, err := os.ReadFile(filepath.Join(summary.OutputDir, newStem+".m"))
	require.NoError(t, err)

	for _, content := range []string{string(header), string(impl)} {
		for _, original := range []string{"Foo", "bar", "doThing"} {
			assert.NotContains(t, content, original+" ")
			assert.NotRegexp(t, `\b`+original+`\b`, content)
		}
	}
	// The rename is consistent across the pair.
	assert.Contains(t, string(header), "@interface "+newStem)
	assert.Contains(t, string(impl), "@implementation "+newStem)
	assert.Contains(t, string(impl), "self."+mapping["bar"])
	assert.Contains(t, string(impl), mapping["doThing"]+":")
}

func TestRunIncrementalSecondPass(t *testing.T) {
	dir := writeProject(t)
	eng, err := New(projectConfig(dir))
	require.NoError(t, err)

	first, err := eng.Run(context.Background(), Options{})
	require.NoError(t, err)
	firstMapping := readMapping(t, first.OutputDir)

	second, err := eng.Run(context.Background(), Options{})
	require.NoError(t, err)

	assert.Equal(t, 0, second.FilesParsed, "unchanged tree must parse nothing")
	assert.Equal(t, 2, second.Changes[cache.StateUnchanged])
	assert.Equal(t, 0, second.Changes[cache.StateAdded])

	// Preloading keeps issued names stable across runs.
	assert.Equal(t, firstMapping, readMapping(t, second.OutputDir))
}

func TestRunIncrementalModifiedFile(t *testing.T) {
	dir := writeProject(t)
	eng, err := New(projectConfig(dir))
	require.NoError(t, err)

	first, err := eng.Run(context.Background(), Options{})
	require.NoError(t, err)
	firstMapping := readMapping(t, first.OutputDir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "Foo.m"),
		[]byte(implSrc+"// touched\n"), 0o644))

	second, err := eng.Run(context.Background(), Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, second.FilesParsed)
	assert.Equal(t, 1, second.Changes[cache.StateModified])
	assert.Equal(t, 1, second.Changes[cache.StateUnchanged])

	secondMapping := readMapping(t, second.OutputDir)
	for _, original := range []string{"Foo", "bar", "doThing"} {
		assert.Equal(t, firstMapping[original], secondMapping[original],
			"name for %q must survive an incremental run", original)
	}
}

func TestRunDryRunWritesNothing(t *testing.T) {
	dir := writeProject(t)
	eng, err := New(projectConfig(dir))
	require.NoError(t, err)

	summary, err := eng.Run(context.Background(), Options{DryRun: true})
	require.NoError(t, err)

	assert.Greater(t, summary.Replacements, 0)
	_, err = os.Stat(summary.OutputDir)
	assert.True(t, os.IsNotExist(err), "dry run must not create the output directory")
	_, err = os.Stat(filepath.Join(dir, cache.CacheFileName))
	assert.True(t, os.IsNotExist(err), "dry run must not persist the cache")
}

func TestRunWhitelistedNamesKept(t *testing.T) {
	dir := writeProject(t)
	cfg := projectConfig(dir)
	cfg.Whitelist.Names = []string{"Foo"}
	eng, err := New(cfg)
	require.NoError(t, err)

	summary, err := eng.Run(context.Background(), Options{})
	require.NoError(t, err)

	mapping := readMapping(t, summary.OutputDir)
	assert.NotContains(t, mapping, "Foo")
	assert.Contains(t, mapping, "bar")

	// The file keeps its name and the class keeps its identifier.
	header, err := os.ReadFile(filepath.Join(summary.OutputDir, "Foo.h"))
	require.NoError(t, err)
	assert.Contains(t, string(header), "@interface Foo")
	assert.NotContains(t, string(header), "bar;")
}

func TestRunProtectedSelectorLabelKept(t *testing.T) {
	dir := t.TempDir()
	src := "@interface Foo : Thing\n- (void)updateWith:(id)a description:(TextHolder *)d;\n@end\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Foo.h"), []byte(src), 0o644))

	eng, err := New(projectConfig(dir))
	require.NoError(t, err)
	summary, err := eng.Run(context.Background(), Options{})
	require.NoError(t, err)

	mapping := readMapping(t, summary.OutputDir)
	assert.Contains(t, mapping, "updateWith")
	assert.NotContains(t, mapping, "description",
		"protected NSObject name must not be renamed via a selector label")

	header, err := os.ReadFile(filepath.Join(summary.OutputDir, mapping["Foo"]+".h"))
	require.NoError(t, err)
	assert.Contains(t, string(header), "description:")
	assert.NotContains(t, string(header), "updateWith:")
}

func TestRunExcludePatterns(t *testing.T) {
	dir := writeProject(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Pods"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Pods", "Dep.h"),
		[]byte("@interface Dep : Thing\n@end\n"), 0o644))

	eng, err := New(projectConfig(dir))
	require.NoError(t, err)
	summary, err := eng.Run(context.Background(), Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.FilesFound, "Pods/** must be excluded")
	assert.NotContains(t, readMapping(t, summary.OutputDir), "Dep")
}

func TestRunForceIgnoresCache(t *testing.T) {
	dir := writeProject(t)
	eng, err := New(projectConfig(dir))
	require.NoError(t, err)

	_, err = eng.Run(context.Background(), Options{})
	require.NoError(t, err)

	summary, err := eng.Run(context.Background(), Options{Force: true})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.FilesParsed)
	assert.Equal(t, 2, summary.Changes[cache.StateAdded])
}

func TestRunStringLiteralsPreserved(t *testing.T) {
	dir := t.TempDir()
	src := "@implementation Logger\n- (void)note {\n    [self log:@\"Foo started\"];\n}\n@end\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Logger.m"), []byte(src), 0o644))

	eng, err := New(projectConfig(dir))
	require.NoError(t, err)
	summary, err := eng.Run(context.Background(), Options{})
	require.NoError(t, err)

	mapping := readMapping(t, summary.OutputDir)
	outName := "Logger.m"
	if renamed, ok := mapping["Logger"]; ok {
		outName = renamed + ".m"
	}
	out, err := os.ReadFile(filepath.Join(summary.OutputDir, outName))
	require.NoError(t, err)
	// "Foo" appears only inside a string literal; no symbol named Foo exists,
	// so it must come through untouched.
	assert.Contains(t, string(out), `@"Foo started"`)
}

func TestClassify(t *testing.T) {
	dir := writeProject(t)
	eng, err := New(projectConfig(dir))
	require.NoError(t, err)

	changes, err := eng.Classify()
	require.NoError(t, err)
	assert.Len(t, changes, 2)
	for f, st := range changes {
		assert.Equal(t, cache.StateAdded, st, "file %s", f)
	}

	_, err = eng.Run(context.Background(), Options{})
	require.NoError(t, err)

	changes, err = eng.Classify()
	require.NoError(t, err)
	for f, st := range changes {
		assert.Equal(t, cache.StateUnchanged, st, "file %s", f)
	}
}

func TestWalkProjectHonorsInclude(t *testing.T) {
	dir := writeProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Extra.swift"), []byte("class Extra {\n}\n"), 0o644))

	cfg := projectConfig(dir)
	cfg.Include = []string{"**/*.swift"}
	eng, err := New(cfg)
	require.NoError(t, err)

	root, err := filepath.Abs(dir)
	require.NoError(t, err)
	files, err := eng.walkProject(root)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.True(t, strings.HasSuffix(files[0], "Extra.swift"))
}
