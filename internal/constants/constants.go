package constants

import "time"

var CacheTTL = struct {
	WorldData time.Duration
	KillStats time.Duration
}{
	WorldData: 5 * time.Minute,  // player/tribe/village rosters
	KillStats: 30 * time.Minute, // gzip ranking feeds
}

var PollIntervals = struct {
	Fast   time.Duration
	Normal time.Duration
	Slow   time.Duration
}{
	Fast:   15 * time.Second,
	Normal: 45 * time.Second,
	Slow:   5 * time.Minute,
}

var FeedConfig = struct {
	Timeout   time.Duration
	UserAgent string
}{
	Timeout:   12 * time.Second,
	UserAgent: "Mozilla/5.0 (compatible; TribalBot/1.0)",
}

var DedupConfig = struct {
	MaxEntries int
}{
	MaxEntries: 2000, // covers roughly a day of captures on an active world
}

// Bounds of the upgrade-inference search. Unbounded combination search is
// exponential; these caps keep the search tractable and the output presentable.
var SearchBounds = struct {
	MaxMultiLevelSpan int
	MaxResults        int
}{
	MaxMultiLevelSpan: 5,
	MaxResults:        10,
}

var CircuitBreakerConfig = struct {
	FailureThreshold int
	ResetTimeout     time.Duration
}{
	FailureThreshold: 3,
	ResetTimeout:     30 * time.Second,
}

var SnapshotConfig = struct {
	Retention                 time.Duration
	SampleInterval            time.Duration
	FallbackTopPlayers        int
	FallbackVillagesPerPlayer int
}{
	Retention:                 30 * 24 * time.Hour,
	SampleInterval:            1 * time.Hour,
	FallbackTopPlayers:        5,
	FallbackVillagesPerPlayer: 3,
}

var DispatchConfig = struct {
	MessagesPerSecond float64
	Burst             int
}{
	MessagesPerSecond: 1,
	Burst:             3,
}

var StringLimits = struct {
	MessageLength int
	VillageName   int
}{
	MessageLength: 1900, // Discord hard cap is 2000; leave headroom for prefixes
	VillageName:   40,
}
