// Package engine orchestrates the obfuscation pipeline:
// walk -> cache gate -> parse -> name -> transform -> export -> finalize.
package engine

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/codeveil/codeveil/internal/cache"
	"github.com/codeveil/codeveil/internal/config"
	"github.com/codeveil/codeveil/internal/export"
	"github.com/codeveil/codeveil/internal/naming"
	"github.com/codeveil/codeveil/internal/parser"
	"github.com/codeveil/codeveil/internal/symbols"
	"github.com/codeveil/codeveil/internal/transform"
	"github.com/codeveil/codeveil/internal/whitelist"
)

// ToolVersion is stamped into mapping exports.
const ToolVersion = "0.1.0"

// MappingFileName is the canonical mapping document; incremental runs
// preload issued names from it.
const MappingFileName = "mapping.json"

// Options control one pipeline run.
type Options struct {
	Force    bool // ignore the incremental cache, reprocess everything
	DryRun   bool // compute everything, write nothing
	Progress parser.Progress
}

// Summary reports what a run did.
type Summary struct {
	ProjectPath  string                       `json:"project_path"`
	FilesFound   int                          `json:"files_found"`
	FilesParsed  int                          `json:"files_parsed"`
	Symbols      int                          `json:"symbols"`
	NamesIssued  int                          `json:"names_issued"`
	Replacements int                          `json:"replacements"`
	Changes      map[cache.ChangeState]int    `json:"changes"`
	FileErrors   map[string][]string          `json:"file_errors,omitempty"`
	Duration     string                       `json:"duration"`
	OutputDir    string                       `json:"output_dir"`
	Results      []symbols.TransformResult    `json:"-"`
	ChangeByFile map[string]cache.ChangeState `json:"-"`
}

// Engine runs obfuscation pipelines for one configuration.
type Engine struct {
	cfg   *config.Config
	coord *parser.Coordinator
	store *symbols.Store
	pred  whitelist.Predicate
}

// New creates an Engine. The configuration must already be validated.
func New(cfg *config.Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pred := whitelist.New(cfg.Whitelist.Names, cfg.Whitelist.Prefixes)
	return &Engine{
		cfg:   cfg,
		coord: parser.New(pred),
		store: symbols.NewStore(),
		pred:  pred,
	}, nil
}

// Store returns the symbol store from the last run.
func (e *Engine) Store() *symbols.Store {
	return e.store
}

// Coordinator returns the parser coordinator.
func (e *Engine) Coordinator() *parser.Coordinator {
	return e.coord
}

// Run executes one pipeline run.
func (e *Engine) Run(ctx context.Context, opts Options) (*Summary, error) {
	start := time.Now()

	root, err := filepath.Abs(e.cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}
	outDir := filepath.Join(root, e.cfg.Output.Dir)

	// 1. Walk the project and collect candidate source files.
	files, err := e.walkProject(root)
	if err != nil {
		return nil, fmt.Errorf("walking project: %w", err)
	}
	log.Printf("[engine] found %d source files in %s", len(files), root)

	// 2. Cache gate: only Added+Modified files re-enter the pipeline.
	buildCache := cache.New(root)
	force := opts.Force || !e.cfg.Cache.Enabled
	if e.cfg.Cache.Enabled {
		buildCache = cache.Load(root)
	}
	toProcess, changes := buildCache.FilesToProcess(files, force)

	var deleted []string
	breakdown := make(map[cache.ChangeState]int)
	for f, st := range changes {
		breakdown[st]++
		if st == cache.StateDeleted {
			deleted = append(deleted, f)
		}
	}
	log.Printf("[engine] %d of %d files need processing (added=%d modified=%d unchanged=%d deleted=%d)",
		len(toProcess), len(files),
		breakdown[cache.StateAdded], breakdown[cache.StateModified],
		breakdown[cache.StateUnchanged], breakdown[cache.StateDeleted])

	// 3. Parse the working set.
	e.store, err = e.coord.ParseFiles(ctx, toProcess, opts.Progress)
	if err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	log.Printf("[engine] extracted %d symbols from %d files", e.store.Count(), e.store.FileCount())

	// 4. Build the rename map. Incremental runs preload the prior mapping so
	// names issued in earlier runs stay stable; a forced full run starts
	// from scratch.
	table, err := naming.NewTable(e.cfg.Naming, e.pred)
	if err != nil {
		return nil, err
	}
	incremental := !buildCache.IsFresh() && !force
	if incremental {
		if doc, err := export.ReadDocument(filepath.Join(outDir, MappingFileName)); err == nil {
			table.Preload(doc.Entries)
			log.Printf("[engine] preloaded %d names from prior mapping", len(doc.Entries))
		}
	}
	table.AddAll(e.store.AllSymbols())
	mapping := table.Mapping()
	log.Printf("[engine] rename map holds %d names", table.Len())

	// 5. Transform. The map is frozen; per-file work is independent.
	tr := transform.New(mapping)
	summary := &Summary{
		ProjectPath:  root,
		FilesFound:   len(files),
		FilesParsed:  e.store.FileCount(),
		Symbols:      e.store.Count(),
		NamesIssued:  table.Len(),
		Changes:      breakdown,
		FileErrors:   make(map[string][]string),
		OutputDir:    outDir,
		ChangeByFile: changes,
	}

	var processed []string
	for _, pf := range e.store.Files() {
		data, err := os.ReadFile(pf.File)
		if err != nil {
			log.Printf("[engine] skipping transform of %s: %v", pf.File, err)
			continue
		}
		result := tr.Apply(pf.File, string(data), pf)
		summary.Replacements += result.Replacements
		summary.Results = append(summary.Results, result)
		if len(result.Errors) > 0 {
			summary.FileErrors[pf.File] = result.Errors
			log.Printf("[engine] transform errors in %s: %v", pf.File, result.Errors)
			continue
		}
		if !opts.DryRun {
			if err := e.writeOutput(root, outDir, pf.File, result); err != nil {
				summary.FileErrors[pf.File] = append(summary.FileErrors[pf.File], err.Error())
				continue
			}
		}
		processed = append(processed, pf.File)
	}

	// 6. Export the mapping document and persist the cache, once, at the end.
	if !opts.DryRun {
		if err := e.writeMapping(outDir, table); err != nil {
			return nil, err
		}
		if e.cfg.Cache.Enabled {
			if err := buildCache.Finalize(processed, deleted); err != nil {
				return nil, fmt.Errorf("finalizing cache: %w", err)
			}
		}
	}

	summary.Duration = time.Since(start).String()
	log.Printf("[engine] run complete in %s: %d replacements across %d files",
		summary.Duration, summary.Replacements, len(summary.Results))
	return summary, nil
}

// Classify walks the project and classifies every file against the stored
// cache snapshot without running the pipeline.
func (e *Engine) Classify() (map[string]cache.ChangeState, error) {
	root, err := filepath.Abs(e.cfg.Root)
	if err != nil {
		return nil, err
	}
	files, err := e.walkProject(root)
	if err != nil {
		return nil, err
	}
	_, changes := cache.Load(root).FilesToProcess(files, false)
	return changes, nil
}

// walkProject collects files under root matching the include globs and not
// matching any exclude glob. Paths are returned absolute.
func (e *Engine) walkProject(root string) ([]string, error) {
	var files []string
	outPrefix := e.cfg.Output.Dir + "/"

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel == e.cfg.Output.Dir || e.matchesAny(e.cfg.Exclude, rel) || e.matchesAny(e.cfg.Exclude, rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(rel, outPrefix) {
			return nil
		}
		if e.matchesAny(e.cfg.Exclude, rel) {
			return nil
		}
		if !e.matchesAny(e.cfg.Include, rel) {
			return nil
		}
		if !e.coord.Registry().Supports(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

func (e *Engine) matchesAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
		// Directory patterns like "Pods/**" should also match the
		// directory itself.
		if dir, found := strings.CutSuffix(p, "/**"); found && rel == dir {
			return true
		}
	}
	return false
}

// writeOutput writes one transformed file under the output directory,
// preserving the project-relative layout but using the renamed base name.
func (e *Engine) writeOutput(root, outDir, srcPath string, result symbols.TransformResult) error {
	rel, err := filepath.Rel(root, srcPath)
	if err != nil {
		return err
	}
	destDir := filepath.Join(outDir, filepath.Dir(rel))
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	dest := filepath.Join(destDir, result.OutputName)
	if err := os.WriteFile(dest, []byte(result.TransformedContent), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	return nil
}

// writeMapping writes mapping.json (always, it seeds incremental runs) and
// additionally the CSV rendering when configured.
func (e *Engine) writeMapping(outDir string, table *naming.Table) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	registry := export.NewRegistry()
	doc := export.NewDocument(table.Entries(), e.cfg.Naming.Strategy, ToolVersion)

	jsonExp, err := registry.Get(export.FormatJSON)
	if err != nil {
		return err
	}
	data, err := jsonExp.Render(doc)
	if err != nil {
		return fmt.Errorf("rendering mapping: %w", err)
	}
	mappingPath := filepath.Join(outDir, MappingFileName)
	if err := os.WriteFile(mappingPath, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", mappingPath, err)
	}
	log.Printf("[engine] wrote %s (%d entries)", mappingPath, len(doc.Entries))

	if e.cfg.Output.MappingFormat == export.FormatCSV {
		csvExp, err := registry.Get(export.FormatCSV)
		if err != nil {
			return err
		}
		csvData, err := csvExp.Render(doc)
		if err != nil {
			return fmt.Errorf("rendering csv mapping: %w", err)
		}
		csvPath := filepath.Join(outDir, "mapping.csv")
		if err := os.WriteFile(csvPath, csvData, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", csvPath, err)
		}
		log.Printf("[engine] wrote %s", csvPath)
	}
	return nil
}
