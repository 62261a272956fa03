// Package translate turns one file's cues into translated cues.
//
// Pipeline.Translate splits the cue list into contiguous shards, sends the
// text of every shard to a Provider concurrently, waits for all of them, and
// stitches the results back together in shard order. Only Text changes; the
// index and timing of every cue are copied from the input.
//
// The default ShardPolicy produces two shards split at ceil(N/2), so the first
// shard carries the extra cue when N is odd. MaxShardSize adds shards for long
// files so a single request never grows past the provider's batch limit.
//
// Any shard failure fails the whole file with a ProviderError. A provider that
// answers with the wrong number of strings yields an AlignmentError; results
// are never padded or truncated, since shifted captions are worse than none.
package translate
