package conquest

import (
	"context"

	"github.com/marcosgv/tribalbot/internal/domain"
)

// Source produces village-ownership-change events from one upstream feed.
// Implementations normalize their wire format into the canonical
// domain.ConquestEvent shape; downstream code never sniffs field presence.
//
// since is a pre-filter hint in Unix seconds: events at or before it may be
// omitted. The analyzer applies the authoritative watermark cut either way.
type Source interface {
	Name() string
	Fetch(ctx context.Context, since int64) ([]domain.ConquestEvent, error)
}
