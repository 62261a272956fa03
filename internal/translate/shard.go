package translate

// DefaultShards is the number of concurrent requests used per file when no
// size limit forces more.
const DefaultShards = 2

// ShardPolicy decides how a file's cues are split into provider requests.
type ShardPolicy struct {
	// Shards is the minimum number of shards. Values below 1 mean 1.
	Shards int
	// MaxShardSize caps the cues per shard; 0 disables the cap.
	MaxShardSize int
}

// DefaultShardPolicy splits every file in half.
func DefaultShardPolicy() ShardPolicy {
	return ShardPolicy{Shards: DefaultShards}
}

// Span is the half-open cue range [Start, End) covered by one shard.
type Span struct {
	Start int
	End   int
}

// Len returns the number of cues in the span.
func (s Span) Len() int { return s.End - s.Start }

// Count returns how many shards n cues are split into. It never exceeds n.
func (p ShardPolicy) Count(n int) int {
	if n <= 0 {
		return 0
	}
	shards := max(p.Shards, 1)
	if p.MaxShardSize > 0 {
		shards = max(shards, (n+p.MaxShardSize-1)/p.MaxShardSize)
	}
	return min(shards, n)
}

// Plan returns contiguous spans covering [0, n). Sizes differ by at most one
// with the larger spans first, so two shards split at ceil(n/2).
func (p ShardPolicy) Plan(n int) []Span {
	count := p.Count(n)
	if count == 0 {
		return nil
	}
	base, extra := n/count, n%count
	spans := make([]Span, 0, count)
	start := 0
	for i := range count {
		size := base
		if i < extra {
			size++
		}
		spans = append(spans, Span{Start: start, End: start + size})
		start += size
	}
	return spans
}
