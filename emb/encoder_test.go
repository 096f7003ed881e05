package emb

import (
	"math"
	"testing"
)

func TestTruncateKeepsTrailingSpecialToken(t *testing.T) {
	// 0 and 102 stand in for the opening and closing special tokens.
	ids := []int{0, 10, 11, 12, 13, 14, 102}
	mask := []int{1, 1, 1, 1, 1, 1, 1}

	gotIds, gotMask := truncate(ids, mask, 5)
	if len(gotIds) != 5 || len(gotMask) != 5 {
		t.Fatalf("lengths = %d, %d", len(gotIds), len(gotMask))
	}
	want := []int{0, 10, 11, 12, 102}
	for i := range want {
		if gotIds[i] != want[i] {
			t.Fatalf("ids = %v, want %v", gotIds, want)
		}
	}
	if gotMask[4] != 1 {
		t.Errorf("mask = %v, trailing token must stay attended", gotMask)
	}
}

func TestTruncateShortSequenceUntouched(t *testing.T) {
	ids := []int{0, 10, 102}
	mask := []int{1, 1, 1}
	gotIds, gotMask := truncate(ids, mask, 5)
	if len(gotIds) != 3 || len(gotMask) != 3 {
		t.Errorf("short sequence must pass through, got %v %v", gotIds, gotMask)
	}
}

func TestMeanPoolMaskedAndNormalized(t *testing.T) {
	// Two attended tokens, one masked out; dim 2.
	data := []float32{1, 0, 3, 0, 0, 100}
	mask := []int64{1, 1, 0}

	vec := meanPool(data, mask, 3, 2)
	if len(vec) != 2 {
		t.Fatalf("dim = %d", len(vec))
	}
	// Mean of (1,0) and (3,0) is (2,0); normalized (1,0).
	if math.Abs(float64(vec[0])-1) > 1e-6 || math.Abs(float64(vec[1])) > 1e-6 {
		t.Errorf("vec = %v, masked token leaked into the pool", vec)
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if math.Abs(norm-1) > 1e-6 {
		t.Errorf("norm² = %f, want 1", norm)
	}
}
