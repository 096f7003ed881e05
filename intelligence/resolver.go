package intelligence

import (
	"fmt"
	"log"
	"sort"
)

// Fixed similarity constants. Match and duplicate thresholds were tuned on
// the historical archive; the admin CLI sweeps with a stricter default.
const (
	MatchThreshold      float32 = 0.78
	DuplicateThreshold  float32 = 0.792
	AdminSweepThreshold float32 = 0.92
	SearchTopK                  = 10
	SearchMinScore      float32 = 0.5
)

// Encoder embeds one text into a unit-normalized vector.
type Encoder interface {
	Encode(text string) ([]float32, error)
}

// MealDirectory is the slice of the record store the resolver needs.
type MealDirectory interface {
	MealName(id int64) (string, error)
	InsertMeal(name string) (int64, error)
	MealIDs() ([]int64, error)
	// ReassignAndDelete rewrites every day reference from duplicate to
	// canonical and deletes the duplicate meal, atomically.
	ReassignAndDelete(duplicate, canonical int64) error
}

// Match is one scored hit against the embedding store.
type Match struct {
	ID    int64
	Score float32
}

// DuplicatePair is a transient candidate produced by the batch scan.
type DuplicatePair struct {
	A, B  int64
	Score float32
}

// Resolver answers dish-identity questions on top of an EmbeddingStore.
type Resolver struct {
	encoder Encoder
	store   *EmbeddingStore
	meals   MealDirectory
	logger  *log.Logger
}

// NewResolver wires the resolver. logger may be nil.
func NewResolver(encoder Encoder, store *EmbeddingStore, meals MealDirectory, logger *log.Logger) *Resolver {
	return &Resolver{encoder: encoder, store: store, meals: meals, logger: logger}
}

// Store exposes the underlying embedding store.
func (r *Resolver) Store() *EmbeddingStore { return r.store }

// ResolveOrCreate maps a dish text to a meal id. When the best cosine score
// against the indexed meals reaches MatchThreshold the existing id is
// returned; otherwise the meal is registered and indexed. Equal best scores
// resolve to the lowest id.
func (r *Resolver) ResolveOrCreate(text string) (id int64, isNew bool, err error) {
	vec, err := r.encoder.Encode(text)
	if err != nil {
		return 0, false, fmt.Errorf("encode %q: %w", text, err)
	}

	bestID, bestScore := r.best(vec)
	if bestID != 0 && bestScore >= MatchThreshold {
		return bestID, false, nil
	}

	id, err = r.meals.InsertMeal(text)
	if err != nil {
		return 0, false, fmt.Errorf("insert meal %q: %w", text, err)
	}
	r.store.Add(id, vec)
	return id, true, nil
}

// best scans all indexed vectors in ascending id order; strict comparison
// keeps the first (lowest) id on ties.
func (r *Resolver) best(vec []float32) (int64, float32) {
	var bestID int64
	var bestScore float32
	for _, candidate := range r.store.IDs() {
		existing, ok := r.store.Vector(candidate)
		if !ok {
			continue
		}
		if score := Cosine(vec, existing); score > bestScore {
			bestID, bestScore = candidate, score
		}
	}
	return bestID, bestScore
}

// Rank returns the topK indexed meals scoring at least minScore against the
// query, sorted by descending score. Ties keep ascending id order. The store
// is not mutated.
func (r *Resolver) Rank(query string, topK int, minScore float32) ([]Match, error) {
	if topK <= 0 {
		topK = SearchTopK
	}
	vec, err := r.encoder.Encode(query)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	var matches []Match
	for _, id := range r.store.IDs() {
		existing, _ := r.store.Vector(id)
		if score := Cosine(vec, existing); score >= minScore {
			matches = append(matches, Match{ID: id, Score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// IndexAll encodes every meal in the directory that has no embedding yet,
// then persists the cache. Returns the number of newly indexed meals.
func (r *Resolver) IndexAll() (int, error) {
	ids, err := r.meals.MealIDs()
	if err != nil {
		return 0, fmt.Errorf("list meals: %w", err)
	}
	indexed := 0
	for _, id := range ids {
		if r.store.Has(id) {
			continue
		}
		name, err := r.meals.MealName(id)
		if err != nil {
			return indexed, fmt.Errorf("meal %d: %w", id, err)
		}
		vec, err := r.encoder.Encode(name)
		if err != nil {
			return indexed, fmt.Errorf("encode meal %d: %w", id, err)
		}
		r.store.Add(id, vec)
		indexed++
	}
	if indexed > 0 {
		if err := r.store.Persist(); err != nil {
			return indexed, err
		}
	}
	r.logf("index up to date, %d meals (%d new)", r.store.Len(), indexed)
	return indexed, nil
}

// FindDuplicates compares every unordered pair of indexed vectors and
// returns the pairs scoring at least threshold, sorted by descending score.
// A threshold of 0 or below means DuplicateThreshold. Quadratic, intended
// for offline sweeps only.
func (r *Resolver) FindDuplicates(threshold float32) []DuplicatePair {
	if threshold <= 0 {
		threshold = DuplicateThreshold
	}
	ids := r.store.IDs()
	var pairs []DuplicatePair
	for i := 0; i < len(ids); i++ {
		a, _ := r.store.Vector(ids[i])
		for j := i + 1; j < len(ids); j++ {
			b, _ := r.store.Vector(ids[j])
			if score := Cosine(a, b); score >= threshold {
				pairs = append(pairs, DuplicatePair{A: ids[i], B: ids[j], Score: score})
			}
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Score > pairs[j].Score
	})
	return pairs
}

// MergeDuplicates folds duplicate pairs above threshold into their canonical
// meal. The protein-group and skip-list guards veto false positives; the
// survivor is the meal with the longer text (first on ties). With apply
// false every decision is logged and nothing is mutated.
func (r *Resolver) MergeDuplicates(threshold float32, apply bool) (int, error) {
	merged := 0
	for _, pair := range r.FindDuplicates(threshold) {
		nameA, err := r.meals.MealName(pair.A)
		if err != nil {
			r.logf("merge: meal %d gone, skipping pair", pair.A)
			continue
		}
		nameB, err := r.meals.MealName(pair.B)
		if err != nil {
			r.logf("merge: meal %d gone, skipping pair", pair.B)
			continue
		}

		if reason, blocked := guardedPair(nameA, nameB); blocked {
			r.logf("skip (%s): %s | %s", reason, clip(nameA), clip(nameB))
			continue
		}

		canonical, duplicate := pair.A, pair.B
		canonicalName, duplicateName := nameA, nameB
		if len(nameB) > len(nameA) {
			canonical, duplicate = pair.B, pair.A
			canonicalName, duplicateName = nameB, nameA
		}

		if !apply {
			r.logf("[dry] (%.3f): %s -> %s", pair.Score, clip(duplicateName), clip(canonicalName))
			merged++
			continue
		}
		if err := r.meals.ReassignAndDelete(duplicate, canonical); err != nil {
			return merged, fmt.Errorf("merge %d into %d: %w", duplicate, canonical, err)
		}
		r.store.Remove(duplicate)
		r.logf("merge (%.3f): %s -> %s", pair.Score, clip(duplicateName), clip(canonicalName))
		merged++
	}
	if apply {
		if err := r.store.Persist(); err != nil {
			return merged, err
		}
	}
	return merged, nil
}

func (r *Resolver) logf(format string, args ...any) {
	if r.logger != nil {
		r.logger.Printf(format, args...)
	}
}

func clip(s string) string {
	runes := []rune(s)
	if len(runes) > 50 {
		return string(runes[:50])
	}
	return s
}
