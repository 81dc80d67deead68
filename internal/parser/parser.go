// Package parser coordinates per-language extraction over file batches.
package parser

import (
	"context"
	"log"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/codeveil/codeveil/internal/extractors"
	"github.com/codeveil/codeveil/internal/extractors/objcextractor"
	"github.com/codeveil/codeveil/internal/extractors/swiftextractor"
	"github.com/codeveil/codeveil/internal/symbols"
	"github.com/codeveil/codeveil/internal/whitelist"
)

// Progress is invoked after each file in a batch with the completed fraction
// in [0,1] and the path just processed. Calls are serialized, so fractions
// are monotonically increasing.
type Progress func(fraction float64, path string)

// Coordinator dispatches files to the correct extractor by extension and
// batch-processes file sets.
type Coordinator struct {
	registry *extractors.Registry
	workers  int
}

// New creates a Coordinator with both language extractors registered.
func New(pred whitelist.Predicate) *Coordinator {
	reg := extractors.NewRegistry()
	reg.Register(objcextractor.New(pred))
	reg.Register(swiftextractor.New(pred))
	return &Coordinator{
		registry: reg,
		workers:  runtime.NumCPU(),
	}
}

// Registry exposes the extension registry (for support checks).
func (c *Coordinator) Registry() *extractors.Registry {
	return c.registry
}

// ParseFile parses a single file, dispatching by extension. Files with an
// unregistered extension fail with extractors.ErrUnsupportedFileType.
func (c *Coordinator) ParseFile(path string) (*symbols.ParsedFile, error) {
	ext, err := c.registry.ForFile(path)
	if err != nil {
		return nil, err
	}
	return ext.ExtractFile(path)
}

// ParseFiles parses a batch of files in parallel. Each file produces an
// independent ParsedFile, so the work is a shared-nothing parallel map;
// results merge into a store keyed by path. A per-file parse error is
// logged and the file skipped rather than aborting the batch. The context
// cancels remaining work between files.
func (c *Coordinator) ParseFiles(ctx context.Context, paths []string, progress Progress) (*symbols.Store, error) {
	store := symbols.NewStore()
	if len(paths) == 0 {
		return store, nil
	}

	var (
		mu   sync.Mutex
		done int
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for _, path := range paths {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			pf, err := c.ParseFile(path)

			mu.Lock()
			defer mu.Unlock()
			done++
			if err != nil {
				log.Printf("[parser] skipping %s: %v", path, err)
			} else {
				store.Add(pf)
			}
			if progress != nil {
				progress(float64(done)/float64(len(paths)), path)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return store, err
	}
	return store, nil
}
