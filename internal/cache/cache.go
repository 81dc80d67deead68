// Package cache persists per-file content hashes between runs so unchanged
// files are never re-parsed or re-renamed inconsistently with a prior run.
package cache

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
)

// CacheFileName is the per-project cache document.
const CacheFileName = ".obfuscation_cache.json"

// Version gates compatibility: a stored cache with a different version
// forces a full rebuild.
const Version = "2"

// hashChunkSize bounds memory while hashing arbitrarily large files.
const hashChunkSize = 64 * 1024

// ChangeState classifies a file relative to the previous snapshot. It is a
// pure classification re-derived every run, not a persisted state machine.
type ChangeState string

const (
	StateAdded     ChangeState = "added"
	StateModified  ChangeState = "modified"
	StateDeleted   ChangeState = "deleted"
	StateUnchanged ChangeState = "unchanged"
)

// FileMetadata is the stored snapshot of one file.
type FileMetadata struct {
	Path         string      `json:"path"`
	ContentHash  string      `json:"content_hash"`
	ModifiedTime time.Time   `json:"modified_time"`
	Size         int64       `json:"size"`
	LastChecked  time.Time   `json:"last_checked"`
	State        ChangeState `json:"change_state,omitempty"`
}

// Cache is the only persisted state of the pipeline. It is loaded at the
// start of a run and written exactly once at the end of a successful run, so
// a crashed run leaves the previous cache intact.
type Cache struct {
	ProjectPath   string                  `json:"project_path"`
	LastBuildTime time.Time               `json:"last_build_time"`
	Files         map[string]FileMetadata `json:"file_metadata"`
	TotalFiles    int                     `json:"total_files"`
	CacheVersion  string                  `json:"cache_version"`

	path  string // cache file location
	fresh bool   // true when no usable prior snapshot existed
}

// New creates an empty cache for a project root.
func New(projectPath string) *Cache {
	return &Cache{
		ProjectPath:  projectPath,
		Files:        make(map[string]FileMetadata),
		CacheVersion: Version,
		path:         filepath.Join(projectPath, CacheFileName),
		fresh:        true,
	}
}

// Load reads the cache document for a project root. A missing, corrupt, or
// version-mismatched file is treated as "no cache": a fresh cache is
// returned and the next run processes everything.
func Load(projectPath string) *Cache {
	c := New(projectPath)
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[cache] unreadable cache %s: %v, forcing full rebuild", c.path, err)
		}
		return c
	}

	var stored Cache
	if err := json.Unmarshal(data, &stored); err != nil {
		log.Printf("[cache] corrupt cache %s: %v, forcing full rebuild", c.path, err)
		return c
	}
	if stored.CacheVersion != Version {
		log.Printf("[cache] version mismatch (%s != %s), forcing full rebuild", stored.CacheVersion, Version)
		return c
	}

	stored.ProjectPath = projectPath
	stored.path = c.path
	stored.fresh = false
	if stored.Files == nil {
		stored.Files = make(map[string]FileMetadata)
	}
	return &stored
}

// IsFresh reports whether no usable prior snapshot existed.
func (c *Cache) IsFresh() bool {
	return c.fresh
}

// FilesToProcess classifies every current file against the stored snapshot
// and returns the Added+Modified subset plus the full change map (Deleted
// entries keyed by their stored path). With no prior snapshot, or force set,
// every file is Added and a full run is forced.
func (c *Cache) FilesToProcess(allFiles []string, force bool) ([]string, map[string]ChangeState) {
	changes := make(map[string]ChangeState, len(allFiles))
	var toProcess []string

	if c.fresh || force {
		current := make(map[string]bool, len(allFiles))
		for _, f := range allFiles {
			current[f] = true
			changes[f] = StateAdded
			toProcess = append(toProcess, f)
		}
		// A forced run still must notice files the old snapshot tracks that
		// are gone from disk, or Finalize keeps their stale metadata.
		for f := range c.Files {
			if !current[f] {
				changes[f] = StateDeleted
			}
		}
		return toProcess, changes
	}

	current := make(map[string]bool, len(allFiles))
	for _, f := range allFiles {
		current[f] = true

		stored, ok := c.Files[f]
		if !ok {
			changes[f] = StateAdded
			toProcess = append(toProcess, f)
			continue
		}

		hash, err := HashFile(f)
		if err != nil {
			// Unreadable now; let the parser surface the error.
			changes[f] = StateModified
			toProcess = append(toProcess, f)
			continue
		}
		if hash != stored.ContentHash {
			changes[f] = StateModified
			toProcess = append(toProcess, f)
		} else {
			changes[f] = StateUnchanged
		}
	}

	for f := range c.Files {
		if !current[f] {
			changes[f] = StateDeleted
		}
	}

	return toProcess, changes
}

// Finalize merges fresh metadata for every processed file into the snapshot,
// removes deleted files, stamps the build time, and persists the cache to
// disk in one write.
func (c *Cache) Finalize(processedFiles, deletedFiles []string) error {
	now := time.Now()
	for _, f := range processedFiles {
		meta, err := statFile(f)
		if err != nil {
			log.Printf("[cache] skipping metadata for %s: %v", f, err)
			continue
		}
		meta.LastChecked = now
		c.Files[f] = meta
	}
	for _, f := range deletedFiles {
		delete(c.Files, f)
	}
	c.TotalFiles = len(c.Files)
	c.LastBuildTime = now
	c.CacheVersion = Version
	return c.save()
}

func (c *Cache) save() error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling cache: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("writing cache %s: %w", c.path, err)
	}
	c.fresh = false
	return nil
}

// statFile builds fresh metadata for a file.
func statFile(path string) (FileMetadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileMetadata{}, err
	}
	hash, err := HashFile(path)
	if err != nil {
		return FileMetadata{}, err
	}
	return FileMetadata{
		Path:         path,
		ContentHash:  hash,
		ModifiedTime: info.ModTime(),
		Size:         info.Size(),
	}, nil
}

// HashFile computes the content hash, reading in fixed-size chunks to bound
// memory for arbitrarily large files.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := xxhash.New()
	buf := make([]byte, hashChunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}
