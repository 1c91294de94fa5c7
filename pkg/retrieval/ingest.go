package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/parley-ai/parley/pkg/config"
	"github.com/parley-ai/parley/pkg/store"
)

// Ingester builds the corpus artifacts from the document store.
type Ingester struct {
	store store.DocumentStore
	cfg   *config.RetrievalConfig
}

// NewIngester creates an ingester over the given store.
func NewIngester(docStore store.DocumentStore, cfg *config.RetrievalConfig) *Ingester {
	return &Ingester{store: docStore, cfg: cfg}
}

// Run samples every collection, fits the vectorizer, and writes the
// three corpus artifacts. Returns the number of indexed passages.
func (i *Ingester) Run(ctx context.Context) (int, error) {
	collections, err := i.store.ListCollections(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list collections: %w", err)
	}

	var docs []Document
	count := 0
	for _, name := range collections {
		records, err := i.store.Find(ctx, name, nil, store.FindOptions{
			Limit: i.cfg.SamplePerCollection,
		})
		if err != nil {
			return 0, fmt.Errorf("failed to sample %s: %w", name, err)
		}

		slog.Info("Indexing collection", "collection", name, "records", len(records))
		for _, record := range records {
			docs = append(docs, Document{
				ID:     fmt.Sprintf("%s_%d", name, count),
				Text:   flatten(name, record),
				Source: name,
			})
			count++
		}
	}

	if len(docs) == 0 {
		return 0, fmt.Errorf("no data found to ingest")
	}

	texts := make([]string, len(docs))
	for j, d := range docs {
		texts[j] = d.Text
	}
	vectorizer, rows := Fit(texts)

	if err := WriteArtifacts(i.cfg.Dir, vectorizer, rows, docs); err != nil {
		return 0, err
	}
	return len(docs), nil
}

// flatten renders a document as retrievable text: a collection header
// followed by one "key: value" line per field, keys sorted so the
// result is stable across runs.
func flatten(collection string, record map[string]any) string {
	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "Collection: %s\n", collection)
	for _, k := range keys {
		switch v := record[k].(type) {
		case map[string]any, []any:
			encoded, err := json.Marshal(v)
			if err != nil {
				fmt.Fprintf(&b, "%s: %v\n", k, v)
				continue
			}
			fmt.Fprintf(&b, "%s: %s\n", k, encoded)
		default:
			fmt.Fprintf(&b, "%s: %v\n", k, v)
		}
	}
	return b.String()
}

// WriteArtifacts persists the fitted model, the weight matrix, and the
// document records into dir. Each file is written via a temp file and
// rename so a crash never leaves a half-written artifact behind.
func WriteArtifacts(dir string, vectorizer *Vectorizer, rows []SparseVector, docs []Document) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create knowledge dir: %w", err)
	}

	if err := writeJSON(filepath.Join(dir, VectorizerFile), vectorizer); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, MatrixFile), rows); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, DocumentsFile), docs); err != nil {
		return err
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", filepath.Base(path), err)
	}
	return nil
}
