// Package intelligence resolves free-text dish names to stable meal ids
// using semantic similarity over locally computed sentence embeddings.
package intelligence

import (
	"math"
	"sort"
	"sync"
)

// EmbeddingStore owns the mapping from meal id to its unit-normalized
// vector. Vectors are added and removed whole, never mutated in place.
type EmbeddingStore struct {
	mu   sync.RWMutex
	vecs map[int64][]float32
	path string
}

// NewEmbeddingStore creates an empty store persisting to path.
func NewEmbeddingStore(path string) *EmbeddingStore {
	return &EmbeddingStore{vecs: make(map[int64][]float32), path: path}
}

// Add stores the vector for a meal id, replacing any previous one.
func (s *EmbeddingStore) Add(id int64, vec []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vecs[id] = cloneVector(vec)
}

// Remove drops the vector for a meal id.
func (s *EmbeddingStore) Remove(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.vecs, id)
}

// Has reports whether a vector is indexed for the id.
func (s *EmbeddingStore) Has(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.vecs[id]
	return ok
}

// Vector returns a copy of the stored vector for id.
func (s *EmbeddingStore) Vector(id int64) ([]float32, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vec, ok := s.vecs[id]
	if !ok {
		return nil, false
	}
	return cloneVector(vec), true
}

// Len returns the number of indexed meals.
func (s *EmbeddingStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vecs)
}

// IDs returns all indexed meal ids in ascending order. The stable order
// makes equal-score comparisons resolve to the lowest id.
func (s *EmbeddingStore) IDs() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int64, 0, len(s.vecs))
	for id := range s.vecs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Cosine computes the cosine similarity of two vectors in [-1, 1].
// Zero-length or zero-norm input scores 0.
func Cosine(a, b []float32) float32 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		fa := float64(a[i])
		fb := float64(b[i])
		dot += fa * fb
		na += fa * fa
		nb += fb * fb
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

func cloneVector(vec []float32) []float32 {
	out := make([]float32, len(vec))
	copy(out, vec)
	return out
}
