package discord

import (
	"fmt"
	"time"

	"github.com/marcosgv/tribalbot/internal/constants"
	"github.com/marcosgv/tribalbot/internal/domain"
	"github.com/marcosgv/tribalbot/internal/util"
)

// MessageComposer renders conquest notifications. It lives on the transport
// side so the monitor core never owns user-facing wording.
type MessageComposer struct {
	location *time.Location
}

func NewMessageComposer(location *time.Location) *MessageComposer {
	return &MessageComposer{location: location}
}

func (c *MessageComposer) Compose(event domain.RelevantEvent) string {
	e := event.Event

	var headline string
	switch event.Classification {
	case domain.ClassGain:
		headline = "Conquista para la tribu"
	case domain.ClassLoss:
		headline = "¡Pueblo perdido!"
	default:
		headline = "Conquista"
	}

	village := util.TruncateString(e.VillageName, constants.StringLimits.VillageName)
	when := util.FormatIn(e.Timestamp, c.location, "02/01 15:04")

	return fmt.Sprintf("%s: %s (%s) %d pts | %s → %s | %s",
		headline,
		village,
		e.Coords,
		e.Points,
		e.OldOwner.Display(),
		e.NewOwner.Display(),
		when,
	)
}
