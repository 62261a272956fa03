package translate

import (
	"slices"
	"testing"
)

func TestShardPolicyPlan(t *testing.T) {
	tests := []struct {
		name   string
		policy ShardPolicy
		n      int
		want   []Span
	}{
		{"empty", DefaultShardPolicy(), 0, nil},
		{"single cue", DefaultShardPolicy(), 1, []Span{{0, 1}}},
		{"even", DefaultShardPolicy(), 4, []Span{{0, 2}, {2, 4}}},
		{"odd puts extra first", DefaultShardPolicy(), 5, []Span{{0, 3}, {3, 5}}},
		{"zero shards means one", ShardPolicy{}, 3, []Span{{0, 3}}},
		{"max size raises count", ShardPolicy{Shards: 2, MaxShardSize: 2}, 5, []Span{{0, 2}, {2, 4}, {4, 5}}},
		{"never more shards than cues", ShardPolicy{Shards: 8}, 3, []Span{{0, 1}, {1, 2}, {2, 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.policy.Plan(tt.n)
			if !slices.Equal(got, tt.want) {
				t.Fatalf("Plan(%d) = %v, want %v", tt.n, got, tt.want)
			}
			covered := 0
			for _, span := range got {
				if span.Len() == 0 {
					t.Fatalf("empty span in %v", got)
				}
				covered += span.Len()
			}
			if covered != tt.n {
				t.Fatalf("spans cover %d cues, want %d", covered, tt.n)
			}
		})
	}
}

func TestShardPolicyCount(t *testing.T) {
	policy := ShardPolicy{Shards: 2, MaxShardSize: 100}
	if got := policy.Count(1000); got != 10 {
		t.Fatalf("Count(1000) = %d, want 10", got)
	}
	if got := policy.Count(150); got != 2 {
		t.Fatalf("Count(150) = %d, want 2", got)
	}
}
