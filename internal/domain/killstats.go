package domain

// KillCategory is one of the four opponents-defeated ranking feeds.
type KillCategory string

const (
	KillAll     KillCategory = "all"
	KillAttack  KillCategory = "att"
	KillDefense KillCategory = "def"
	KillSupport KillCategory = "sup"
)

// KillCategories lists every ranking feed in display order.
var KillCategories = []KillCategory{KillAll, KillAttack, KillDefense, KillSupport}

func (c KillCategory) Valid() bool {
	switch c {
	case KillAll, KillAttack, KillDefense, KillSupport:
		return true
	}
	return false
}

func (c KillCategory) Label() string {
	switch c {
	case KillAttack:
		return "atacante"
	case KillDefense:
		return "defensor"
	case KillSupport:
		return "apoyo"
	default:
		return "total"
	}
}

// KillEntry is one `ranking,playerId,kills` line of a gzip ranking feed.
type KillEntry struct {
	Rank     int
	PlayerID int
	Kills    int
}

// PlayerKills aggregates a single player's position in every category.
type PlayerKills struct {
	PlayerID int
	ByCategory map[KillCategory]KillEntry
}
