package config

import "fmt"

// RetrievalConfig configures the TF-IDF retrieval ranker and the
// ingest pipeline that builds its on-disk artifacts.
type RetrievalConfig struct {
	// Dir holds the corpus artifacts (vectorizer, matrix, documents).
	Dir string `yaml:"dir"`

	// TopK is how many passages a search returns at most.
	TopK int `yaml:"top_k"`

	// MinScore is the relevance threshold. Candidates scoring at or
	// below it are dropped; TF-IDF similarity on small corpora is
	// noise at low scores.
	MinScore float64 `yaml:"min_score"`

	// SamplePerCollection caps how many documents per collection the
	// ingest command indexes.
	SamplePerCollection int `yaml:"sample_per_collection"`
}

func (c *RetrievalConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "knowledge_store"
	}
	if c.TopK == 0 {
		c.TopK = 3
	}
	if c.MinScore == 0 {
		c.MinScore = 0.1
	}
	if c.SamplePerCollection == 0 {
		c.SamplePerCollection = 3
	}
}

func (c *RetrievalConfig) Validate() error {
	if c.TopK < 1 {
		return fmt.Errorf("top_k must be at least 1")
	}
	if c.MinScore < 0 || c.MinScore >= 1 {
		return fmt.Errorf("min_score must be in [0, 1)")
	}
	return nil
}
