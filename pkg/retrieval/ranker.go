package retrieval

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/parley-ai/parley/pkg/config"
)

// Corpus artifact file names inside the knowledge directory.
const (
	VectorizerFile = "vectorizer.json"
	MatrixFile     = "matrix.json"
	DocumentsFile  = "documents.json"
)

// Document is one indexed passage.
type Document struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Source string `json:"source"`
}

// Ranker scores corpus passages against a query by cosine similarity
// in TF-IDF space. The corpus is loaded once and read-only afterwards,
// so concurrent searches need no locking. A ranker whose artifacts are
// missing or unreadable is disabled and returns nothing; retrieval is
// advisory, never fatal to the conversation.
type Ranker struct {
	vectorizer *Vectorizer
	rows       []SparseVector
	docs       []Document

	topK     int
	minScore float64
	disabled bool
}

// NewRanker loads the corpus artifacts from the configured directory.
// Absence of any artifact disables the ranker without error.
func NewRanker(cfg *config.RetrievalConfig) *Ranker {
	r := &Ranker{
		topK:     cfg.TopK,
		minScore: cfg.MinScore,
	}

	if err := r.load(cfg.Dir); err != nil {
		slog.Debug("Retrieval disabled", "reason", err)
		r.disabled = true
	}

	return r
}

// Enabled reports whether the corpus loaded.
func (r *Ranker) Enabled() bool {
	return !r.disabled
}

func (r *Ranker) load(dir string) error {
	if err := readJSON(filepath.Join(dir, VectorizerFile), &r.vectorizer); err != nil {
		return err
	}
	if err := readJSON(filepath.Join(dir, MatrixFile), &r.rows); err != nil {
		return err
	}
	if err := readJSON(filepath.Join(dir, DocumentsFile), &r.docs); err != nil {
		return err
	}
	if len(r.rows) != len(r.docs) {
		return fmt.Errorf("corpus shape mismatch: %d rows, %d documents", len(r.rows), len(r.docs))
	}
	return nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Search returns the text of the topK most similar passages, best
// first. Candidates scoring at or below the relevance threshold are
// dropped; an empty result is a common, valid outcome. topK <= 0 uses
// the configured default.
func (r *Ranker) Search(query string, topK int) []string {
	if r.disabled || len(r.docs) == 0 {
		return nil
	}
	if topK <= 0 {
		topK = r.topK
	}

	queryVec := r.vectorizer.Transform(query)
	if len(queryVec) == 0 {
		return nil
	}

	type candidate struct {
		index int
		score float64
	}

	candidates := make([]candidate, len(r.rows))
	for i, row := range r.rows {
		candidates[i] = candidate{index: i, score: Cosine(queryVec, row)}
	}

	// Descending by score; ties keep document order so results are
	// deterministic.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if topK > len(candidates) {
		topK = len(candidates)
	}

	var texts []string
	for _, c := range candidates[:topK] {
		if c.score <= r.minScore {
			continue
		}
		texts = append(texts, r.docs[c.index].Text)
	}
	return texts
}
