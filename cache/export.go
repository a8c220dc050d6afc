package cache

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"
)

// FormatVersion is written to every export.
const FormatVersion = "1.0"

// ExportFormat is the JSON document written by Export.
type ExportFormat struct {
	Version    string            `json:"version"`
	ExportedAt string            `json:"exported_at"`
	Entries    []ExportEntry     `json:"entries"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ExportEntry is a single memory entry.
type ExportEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Exporter writes the contents of a store as JSON.
type Exporter struct {
	source Lister
	lang   string
}

// NewExporter creates an exporter for source.
func NewExporter(source Lister) *Exporter {
	return &Exporter{source: source}
}

// ForLanguage restricts the export to keys ending in ":"+lang.
func (e *Exporter) ForLanguage(lang string) *Exporter {
	e.lang = lang
	return e
}

// Export writes the entries sorted by key.
func (e *Exporter) Export(w io.Writer, metadata map[string]string) error {
	entries, err := e.entries()
	if err != nil {
		return fmt.Errorf("listing memory entries: %w", err)
	}

	if e.lang != "" {
		if metadata == nil {
			metadata = make(map[string]string)
		}
		metadata["lang"] = e.lang
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ExportFormat{
		Version:    FormatVersion,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Entries:    entries,
		Metadata:   metadata,
	}); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// ExportToFile exports to the file at path, replacing it.
func (e *Exporter) ExportToFile(path string, metadata map[string]string) error {
	f, err := os.Create(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	if err := e.Export(f, metadata); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (e *Exporter) entries() ([]ExportEntry, error) {
	data, err := e.source.Entries()
	if err != nil {
		return nil, err
	}
	out := make([]ExportEntry, 0, len(data))
	for key, value := range data {
		if e.lang != "" && !strings.HasSuffix(key, ":"+e.lang) {
			continue
		}
		out = append(out, ExportEntry{Key: key, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Importer loads exported entries into a store.
type Importer struct {
	cache TranslationCache
}

// NewImporter creates an importer writing to cache.
func NewImporter(cache TranslationCache) *Importer {
	return &Importer{cache: cache}
}

// ImportResult contains statistics about an import.
type ImportResult struct {
	Version  string
	Metadata map[string]string
	Imported int
	Skipped  int
	Failed   int
}

// Import reads an export and stores its entries. Entries with an empty key
// or value are skipped; store failures are counted, not returned.
func (i *Importer) Import(r io.Reader) (*ImportResult, error) {
	var export ExportFormat
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}
	if export.Version != "" && export.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported export version %q", export.Version)
	}

	result := &ImportResult{
		Version:  export.Version,
		Metadata: export.Metadata,
	}
	for _, entry := range export.Entries {
		if entry.Key == "" || entry.Value == "" {
			result.Skipped++
			continue
		}
		if err := i.cache.Set(entry.Key, entry.Value); err != nil {
			result.Failed++
			continue
		}
		result.Imported++
	}
	return result, nil
}

// ImportFromFile imports the export stored at path.
func (i *Importer) ImportFromFile(path string) (*ImportResult, error) {
	f, err := os.Open(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return i.Import(f)
}
