// Package embedding provides the narrow interface the memory engine uses
// to attach a vector representation to a memory item, plus a deterministic
// fallback that needs no external model.
package embedding

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/agentflow/memoryengine/memory/tokenize"
)

// Embedder turns text into a fixed-length vector. Implementations must be
// safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	Dimension() int
}

// HashEmbedder is a deterministic bag-of-tokens embedder: it hashes each
// token into one of Dim buckets, accumulates counts, and L2-normalizes the
// result. It requires no model weights or network access, so it is always
// available as the default collaborator.
type HashEmbedder struct {
	Dim int
}

// NewHashEmbedder returns a HashEmbedder with the given dimension. A
// non-positive dim falls back to 64.
func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = 64
	}
	return &HashEmbedder{Dim: dim}
}

func (h *HashEmbedder) Dimension() int {
	return h.Dim
}

func (h *HashEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	vec := make([]float64, h.Dim)
	for _, tok := range tokenize.Tokens(text) {
		hasher := fnv.New32a()
		_, _ = hasher.Write([]byte(tok))
		bucket := int(hasher.Sum32()) % h.Dim
		if bucket < 0 {
			bucket += h.Dim
		}
		vec[bucket]++
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec, nil
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec, nil
}
