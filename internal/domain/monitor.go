package domain

import "strings"

// PollMode selects the conquest polling cadence. The concrete intervals live
// in the constants package; changing mode takes effect on the next scheduled
// tick without a restart.
type PollMode string

const (
	PollFast   PollMode = "fast"
	PollNormal PollMode = "normal"
	PollSlow   PollMode = "slow"
)

func (m PollMode) Valid() bool {
	switch m {
	case PollFast, PollNormal, PollSlow:
		return true
	}
	return false
}

// TribeFilterMode controls which conquests are surfaced.
type TribeFilterMode string

const (
	FilterAll      TribeFilterMode = "all"
	FilterSpecific TribeFilterMode = "specific"
)

// TribeFilter narrows gain-side relevance to one tribe. Losses of the home
// tribe are always surfaced regardless of this filter.
type TribeFilter struct {
	Mode      TribeFilterMode `json:"mode"`
	TribeName string          `json:"tribe_name,omitempty"`
}

// MonitorConfig is the persisted conquest-monitor state. It is read at the
// top of every poll cycle and written by configuration commands and by the
// notifier after each successful cycle (watermark advance).
type MonitorConfig struct {
	Enabled         bool        `json:"enabled"`
	HomeTribeID     int         `json:"home_tribe_id"`
	HomeTribeTag    string      `json:"home_tribe_tag"`
	GainsChannelID  string      `json:"gains_channel_id"`
	LossesChannelID string      `json:"losses_channel_id"`
	Mode            PollMode    `json:"mode"`
	Filter          TribeFilter `json:"filter"`
	Watermark       int64       `json:"watermark"` // last-processed point, monotonically non-decreasing
}

// IsHomeTribe reports whether the owner belongs to the configured home tribe.
// Raw-feed owners compare by tribe id, scraped owners by tag.
func (c *MonitorConfig) IsHomeTribe(o Owner) bool {
	if o.IsBarbarian() {
		return false
	}
	if c.HomeTribeID != 0 && o.TribeID == c.HomeTribeID {
		return true
	}
	if c.HomeTribeTag != "" && o.TribeTag != "" && strings.EqualFold(o.TribeTag, c.HomeTribeTag) {
		return true
	}
	return false
}
