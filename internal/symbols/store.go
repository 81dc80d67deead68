package symbols

import (
	"sort"
	"sync"
)

// Store aggregates ParsedFiles and provides symbol-level queries.
// Files are kept keyed by path; symbol order within a file is preserved.
type Store struct {
	mu    sync.RWMutex
	files map[string]*ParsedFile
	order []string // insertion order of file paths
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{files: make(map[string]*ParsedFile)}
}

// Add inserts or replaces the parse result for a file.
func (s *Store) Add(pf *ParsedFile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[pf.File]; !ok {
		s.order = append(s.order, pf.File)
	}
	s.files[pf.File] = pf
}

// Remove drops the parse result for a file, if present.
func (s *Store) Remove(file string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[file]; !ok {
		return
	}
	delete(s.files, file)
	for i, f := range s.order {
		if f == file {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Get returns the parse result for a file, or nil.
func (s *Store) Get(file string) *ParsedFile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.files[file]
}

// Files returns all parsed files in insertion order.
func (s *Store) Files() []*ParsedFile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*ParsedFile, 0, len(s.order))
	for _, f := range s.order {
		result = append(result, s.files[f])
	}
	return result
}

// AllSymbols flattens every file's symbols into one slice.
// Files are visited in sorted path order so the sequence is stable across
// runs regardless of parse completion order; within a file, extraction order
// is preserved. Deterministic naming depends on this ordering.
func (s *Store) AllSymbols() []Symbol {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]string, 0, len(s.files))
	for f := range s.files {
		paths = append(paths, f)
	}
	sort.Strings(paths)
	var result []Symbol
	for _, f := range paths {
		result = append(result, s.files[f].Symbols...)
	}
	return result
}

// ByKind returns all symbols of the given kind.
func (s *Store) ByKind(kind Kind) []Symbol {
	var result []Symbol
	for _, sym := range s.AllSymbols() {
		if sym.Kind == kind {
			result = append(result, sym)
		}
	}
	return result
}

// GroupByKind groups all symbols by their kind.
func (s *Store) GroupByKind() map[Kind][]Symbol {
	result := make(map[Kind][]Symbol)
	for _, sym := range s.AllSymbols() {
		result[sym.Kind] = append(result[sym.Kind], sym)
	}
	return result
}

// Count returns the total number of symbols across all files.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, pf := range s.files {
		n += len(pf.Symbols)
	}
	return n
}

// FileCount returns the number of parsed files.
func (s *Store) FileCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

// Clear removes all parse results.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = make(map[string]*ParsedFile)
	s.order = nil
}
