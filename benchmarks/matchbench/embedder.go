// ABOUTME: Deterministic bag-of-words embedder for offline benchmarking
// ABOUTME: Hashes tokens into a fixed-dimension vector so runs need no API key
package matchbench

import (
	"context"
	"hash/fnv"
	"strings"
)

// Dimension of the benchmark embedding space. Small enough to keep runs
// fast, large enough that token collisions stay rare for step vocabulary.
const Dimension = 256

// BagOfWordsEmbedder embeds text as hashed token counts. Cosine similarity
// over these vectors approximates token overlap, which is deterministic
// and good enough to exercise the full matching pipeline offline.
type BagOfWordsEmbedder struct{}

// NewBagOfWordsEmbedder creates the offline benchmark embedder
func NewBagOfWordsEmbedder() *BagOfWordsEmbedder {
	return &BagOfWordsEmbedder{}
}

// GenerateEmbedding embeds a single text
func (e *BagOfWordsEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float64, error) {
	return embed(text), nil
}

// GenerateEmbeddings embeds a batch of texts
func (e *BagOfWordsEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vectors[i] = embed(text)
	}
	return vectors, nil
}

func embed(text string) []float64 {
	vec := make([]float64, Dimension)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,;:!?()\"'")
		if len(token) < 3 {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(token))
		vec[h.Sum32()%Dimension]++
	}
	return vec
}
