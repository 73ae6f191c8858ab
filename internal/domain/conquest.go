package domain

import (
	"fmt"
	"strings"
)

// ConquestSource identifies which feed produced an event. Identity rules
// differ slightly by source: the raw feed carries a village id, the scraped
// leaderboard only a name plus coordinates.
type ConquestSource string

const (
	SourceRaw     ConquestSource = "raw"
	SourceScraped ConquestSource = "scraped"
)

// Barbarian marker names used by the scraped leaderboard for unclaimed
// villages. The raw feed uses owner id 0 instead.
var barbarianNames = []string{"bárbaro", "barbaro", "barbarians"}

func IsBarbarianName(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, marker := range barbarianNames {
		if lower == marker {
			return true
		}
	}
	return false
}

// Owner is one side of an ownership change. A zero PlayerID with an empty or
// barbarian name denotes an unclaimed village, never a real player.
type Owner struct {
	PlayerID  int
	Name      string
	TribeID   int
	TribeTag  string
	TribeName string
}

func (o Owner) IsBarbarian() bool {
	return o.PlayerID == 0 && (o.Name == "" || IsBarbarianName(o.Name))
}

func (o Owner) HasTribe() bool {
	return !o.IsBarbarian() && (o.TribeID != 0 || o.TribeTag != "")
}

func (o Owner) Display() string {
	if o.IsBarbarian() {
		return "Bárbaro"
	}
	if o.TribeTag != "" {
		return fmt.Sprintf("%s [%s]", o.Name, o.TribeTag)
	}
	return o.Name
}

// ConquestEvent is a single village-ownership change, normalized from either
// feed into one canonical shape.
type ConquestEvent struct {
	Source      ConquestSource
	VillageID   int // 0 when sourced from scraping
	VillageName string
	Coords      Coordinates
	Points      int
	OldOwner    Owner
	NewOwner    Owner
	Timestamp   int64 // Unix seconds, authoritative ordering key
}

// IdentityKey is stable across repeated polls of the same underlying event so
// the same capture is never notified twice. When the village id is missing the
// identity is synthesized from name and coordinates.
func (e ConquestEvent) IdentityKey() string {
	if e.VillageID != 0 {
		return fmt.Sprintf("%s:%d:%d", e.Source, e.VillageID, e.Timestamp)
	}
	return fmt.Sprintf("%s:%s(%s):%d", e.Source, e.VillageName, e.Coords, e.Timestamp)
}

// Classification of an event against the configured home tribe. Derived, never
// stored on the event itself.
type Classification string

const (
	ClassGain    Classification = "gain"
	ClassLoss    Classification = "loss"
	ClassNeutral Classification = "neutral"
)

// RelevantEvent is an analyzer output: a new, relevant event annotated with
// its classification.
type RelevantEvent struct {
	Event          ConquestEvent
	Classification Classification
}
