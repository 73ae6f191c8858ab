package discord

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/marcosgv/tribalbot/internal/domain"
)

func sampleEvent(class domain.Classification) domain.RelevantEvent {
	return domain.RelevantEvent{
		Classification: class,
		Event: domain.ConquestEvent{
			Source:      domain.SourceRaw,
			VillageID:   1001,
			VillageName: "Molino Viejo",
			Coords:      domain.Coordinates{X: 512, Y: 534},
			Points:      3421,
			OldOwner:    domain.Owner{PlayerID: 200, Name: "Defensor", TribeTag: "ENE"},
			NewOwner:    domain.Owner{PlayerID: 100, Name: "Atacante", TribeTag: "CDC"},
			Timestamp:   time.Date(2026, 8, 28, 14, 3, 0, 0, time.UTC).Unix(),
		},
	}
}

func TestComposeGain(t *testing.T) {
	composer := NewMessageComposer(time.UTC)

	msg := composer.Compose(sampleEvent(domain.ClassGain))
	assert.Equal(t, "Conquista para la tribu: Molino Viejo (512|534) 3421 pts | Defensor [ENE] → Atacante [CDC] | 28/08 14:03", msg)
}

func TestComposeLossHeadline(t *testing.T) {
	composer := NewMessageComposer(time.UTC)

	msg := composer.Compose(sampleEvent(domain.ClassLoss))
	assert.Contains(t, msg, "¡Pueblo perdido!")
	// the mention is the transport's job, never baked into the text
	assert.NotContains(t, msg, "@everyone")
}

func TestComposeBarbarianOwner(t *testing.T) {
	composer := NewMessageComposer(time.UTC)

	event := sampleEvent(domain.ClassNeutral)
	event.Event.OldOwner = domain.Owner{}

	msg := composer.Compose(event)
	assert.Contains(t, msg, "Bárbaro → Atacante [CDC]")
	assert.Contains(t, msg, "Conquista:")
}

func TestComposeTruncatesLongVillageName(t *testing.T) {
	composer := NewMessageComposer(time.UTC)

	event := sampleEvent(domain.ClassGain)
	event.Event.VillageName = "Un nombre de pueblo exageradamente largo que no cabe en una línea"

	msg := composer.Compose(event)
	assert.Contains(t, msg, "...")
}

func TestComposeRendersInConfiguredTimezone(t *testing.T) {
	madrid, err := time.LoadLocation("Europe/Madrid")
	if err != nil {
		t.Skip("zone database unavailable")
	}
	composer := NewMessageComposer(madrid)

	// 14:03 UTC is 16:03 in Madrid during CEST
	msg := composer.Compose(sampleEvent(domain.ClassGain))
	assert.Contains(t, msg, "28/08 16:03")
}
