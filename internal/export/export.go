// Package export writes the rename mapping document consumed by other tools
// and by later incremental runs.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/codeveil/codeveil/internal/naming"
)

// Format names.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Metadata describes one obfuscation run. Other subsystems may append their
// own statistics to Extra; only the entry list's shape is guaranteed here.
type Metadata struct {
	RunID       string         `json:"run_id"`
	GeneratedAt string         `json:"generated_at"`
	ToolVersion string         `json:"tool_version"`
	Strategy    string         `json:"strategy"`
	EntryCount  int            `json:"entry_count"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// Document is the JSON mapping export.
type Document struct {
	Metadata Metadata       `json:"metadata"`
	Entries  []naming.Entry `json:"entries"`
}

// Exporter renders mapping entries into one output format.
type Exporter interface {
	Name() string
	Render(doc *Document) ([]byte, error)
}

// Registry resolves exporters by format name.
type Registry struct {
	exporters map[string]Exporter
}

// NewRegistry creates a registry with the JSON and CSV exporters registered.
func NewRegistry() *Registry {
	r := &Registry{exporters: make(map[string]Exporter)}
	r.Register(jsonExporter{})
	r.Register(csvExporter{})
	return r
}

// Register adds an exporter.
func (r *Registry) Register(e Exporter) {
	r.exporters[e.Name()] = e
}

// Get returns the exporter for a format name.
func (r *Registry) Get(format string) (Exporter, error) {
	e, ok := r.exporters[format]
	if !ok {
		return nil, fmt.Errorf("unknown export format %q", format)
	}
	return e, nil
}

// NewDocument assembles an export document for the given entries.
func NewDocument(entries []naming.Entry, strategy, toolVersion string) *Document {
	return &Document{
		Metadata: Metadata{
			RunID:       uuid.NewString(),
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
			ToolVersion: toolVersion,
			Strategy:    strategy,
			EntryCount:  len(entries),
		},
		Entries: entries,
	}
}

type jsonExporter struct{}

func (jsonExporter) Name() string { return FormatJSON }

func (jsonExporter) Render(doc *Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

type csvExporter struct{}

func (csvExporter) Name() string { return FormatCSV }

func (csvExporter) Render(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"original", "obfuscated", "type", "source_file"}); err != nil {
		return nil, err
	}
	for _, e := range doc.Entries {
		if err := w.Write([]string{e.Original, e.Obfuscated, e.Type, e.SourceFile}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadDocument loads a previously exported JSON mapping document. It is used
// to preload the naming table so incremental runs keep issued names stable.
func ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing mapping %s: %w", path, err)
	}
	return &doc, nil
}
