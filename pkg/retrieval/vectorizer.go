// Package retrieval implements the TF-IDF retrieval ranker and the
// ingest pipeline that builds its on-disk corpus artifacts.
package retrieval

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// SparseVector maps vocabulary indices to L2-normalized TF-IDF
// weights. Only non-zero terms are present.
type SparseVector map[int]float64

// Vectorizer is a fitted term-weighting model. Fitted once by ingest,
// read-only afterwards.
type Vectorizer struct {
	// Vocabulary maps each term to its index. Terms are indexed in
	// sorted order so fitting is deterministic.
	Vocabulary map[string]int `json:"vocabulary"`

	// IDF holds one smoothed inverse-document-frequency weight per
	// vocabulary index.
	IDF []float64 `json:"idf"`
}

// wordPattern mirrors the usual bag-of-words tokenizer: lowercase word
// tokens of at least two characters.
var wordPattern = regexp.MustCompile(`[a-z0-9_]{2,}`)

func tokenize(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// Fit builds a vectorizer over the corpus and returns it together with
// one normalized row per input text.
func Fit(texts []string) (*Vectorizer, []SparseVector) {
	df := make(map[string]int)
	tokenized := make([][]string, len(texts))

	for i, text := range texts {
		tokens := tokenize(text)
		tokenized[i] = tokens

		seen := make(map[string]bool, len(tokens))
		for _, tok := range tokens {
			if stopWords[tok] || seen[tok] {
				continue
			}
			seen[tok] = true
			df[tok]++
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	v := &Vectorizer{
		Vocabulary: make(map[string]int, len(terms)),
		IDF:        make([]float64, len(terms)),
	}

	n := float64(len(texts))
	for i, term := range terms {
		v.Vocabulary[term] = i
		// Smoothed IDF: ln((1+n)/(1+df)) + 1
		v.IDF[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	rows := make([]SparseVector, len(texts))
	for i, tokens := range tokenized {
		rows[i] = v.weigh(tokens)
	}

	return v, rows
}

// Transform maps a query into the fitted vector space. Terms outside
// the vocabulary contribute nothing.
func (v *Vectorizer) Transform(text string) SparseVector {
	return v.weigh(tokenize(text))
}

func (v *Vectorizer) weigh(tokens []string) SparseVector {
	counts := make(map[int]float64)
	for _, tok := range tokens {
		if idx, ok := v.Vocabulary[tok]; ok {
			counts[idx]++
		}
	}

	vec := make(SparseVector, len(counts))
	var norm float64
	for idx, tf := range counts {
		w := tf * v.IDF[idx]
		vec[idx] = w
		norm += w * w
	}

	if norm > 0 {
		norm = math.Sqrt(norm)
		for idx := range vec {
			vec[idx] /= norm
		}
	}

	return vec
}

// Cosine returns the cosine similarity of two normalized sparse
// vectors, which reduces to their dot product.
func Cosine(a, b SparseVector) float64 {
	// Iterate the smaller vector.
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for idx, w := range a {
		if bw, ok := b[idx]; ok {
			dot += w * bw
		}
	}
	return dot
}
