package conquest

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/marcosgv/tribalbot/internal/domain"
)

func homeConfig() domain.MonitorConfig {
	return domain.MonitorConfig{
		Enabled:      true,
		HomeTribeID:  7,
		HomeTribeTag: "CDC",
		Filter:       domain.TribeFilter{Mode: domain.FilterAll},
	}
}

func homeOwner(player string) domain.Owner {
	return domain.Owner{PlayerID: 100, Name: player, TribeID: 7, TribeTag: "CDC", TribeName: "Caballeros"}
}

func enemyOwner(player string) domain.Owner {
	return domain.Owner{PlayerID: 200, Name: player, TribeID: 9, TribeTag: "ENE", TribeName: "Enemigos"}
}

func rawEvent(villageID int, ts int64, old, new domain.Owner) domain.ConquestEvent {
	return domain.ConquestEvent{
		Source:      domain.SourceRaw,
		VillageID:   villageID,
		VillageName: fmt.Sprintf("Pueblo %d", villageID),
		Coords:      domain.Coordinates{X: 500, Y: 500},
		Points:      3000,
		OldOwner:    old,
		NewOwner:    new,
		Timestamp:   ts,
	}
}

func TestAnalyzeClassification(t *testing.T) {
	cfg := homeConfig()

	tests := []struct {
		name string
		old  domain.Owner
		new  domain.Owner
		want domain.Classification
	}{
		{"home gains from enemy", enemyOwner("e"), homeOwner("h"), domain.ClassGain},
		{"home gains from barbarian", domain.Owner{}, homeOwner("h"), domain.ClassGain},
		{"home loses to enemy", homeOwner("h"), enemyOwner("e"), domain.ClassLoss},
		{"internal transfer is neutral", homeOwner("a"), homeOwner("b"), domain.ClassNeutral},
		{"unrelated conquest is neutral", enemyOwner("a"), enemyOwner("b"), domain.ClassNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := NewAnalyzer(100, zap.NewNop())
			relevant := analyzer.Analyze([]domain.ConquestEvent{rawEvent(1, 1000, tt.old, tt.new)}, cfg, 0)
			require.Len(t, relevant, 1)
			assert.Equal(t, tt.want, relevant[0].Classification)
		})
	}
}

func TestAnalyzeWatermarkIsStrictlyGreaterThan(t *testing.T) {
	analyzer := NewAnalyzer(100, zap.NewNop())
	cfg := homeConfig()

	events := []domain.ConquestEvent{
		rawEvent(1, 999, enemyOwner("e"), homeOwner("h")),  // older than watermark
		rawEvent(2, 1000, enemyOwner("e"), homeOwner("h")), // exactly at watermark
		rawEvent(3, 1001, enemyOwner("e"), homeOwner("h")), // newer
	}

	relevant := analyzer.Analyze(events, cfg, 1000)
	require.Len(t, relevant, 1)
	assert.Equal(t, 3, relevant[0].Event.VillageID)
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	analyzer := NewAnalyzer(100, zap.NewNop())
	cfg := homeConfig()

	events := []domain.ConquestEvent{
		rawEvent(1, 1001, enemyOwner("e"), homeOwner("h")),
		rawEvent(2, 1002, homeOwner("h"), enemyOwner("e")),
	}

	first := analyzer.Analyze(events, cfg, 1000)
	assert.Len(t, first, 2)

	// the same batch again: everything already notified
	second := analyzer.Analyze(events, cfg, 1000)
	assert.Empty(t, second)
}

func TestAnalyzeOverlappingBatches(t *testing.T) {
	analyzer := NewAnalyzer(100, zap.NewNop())
	cfg := homeConfig()

	batch1 := []domain.ConquestEvent{
		rawEvent(1, 1001, enemyOwner("e"), homeOwner("h")),
		rawEvent(2, 1002, enemyOwner("e"), homeOwner("h")),
	}
	batch2 := []domain.ConquestEvent{
		rawEvent(2, 1002, enemyOwner("e"), homeOwner("h")), // repeat of the boundary event
		rawEvent(3, 1003, enemyOwner("e"), homeOwner("h")),
	}

	first := analyzer.Analyze(batch1, cfg, 1000)
	require.Len(t, first, 2)

	// watermark not yet advanced past 1002; dedup must absorb the overlap
	second := analyzer.Analyze(batch2, cfg, 1000)
	require.Len(t, second, 1)
	assert.Equal(t, 3, second[0].Event.VillageID)
}

func TestAnalyzeSpecificFilter(t *testing.T) {
	analyzer := NewAnalyzer(100, zap.NewNop())
	cfg := homeConfig()
	cfg.Filter = domain.TribeFilter{Mode: domain.FilterSpecific, TribeName: "cdc"}

	filtered := domain.Owner{PlayerID: 300, Name: "x", TribeID: 11, TribeTag: "OTRA", TribeName: "Otra tribu"}

	events := []domain.ConquestEvent{
		rawEvent(1, 1001, enemyOwner("e"), homeOwner("h")), // matches filter (tag CDC)
		rawEvent(2, 1002, enemyOwner("e"), filtered),       // new owner outside filter
		rawEvent(3, 1003, homeOwner("h"), enemyOwner("e")), // home loss always surfaces
	}

	relevant := analyzer.Analyze(events, cfg, 1000)
	require.Len(t, relevant, 2)
	assert.Equal(t, 1, relevant[0].Event.VillageID)
	assert.Equal(t, domain.ClassLoss, relevant[1].Classification)
}

func TestAnalyzeFilterMatchesTribeNameSubstring(t *testing.T) {
	analyzer := NewAnalyzer(100, zap.NewNop())
	cfg := homeConfig()
	cfg.Filter = domain.TribeFilter{Mode: domain.FilterSpecific, TribeName: "enemig"}

	relevant := analyzer.Analyze(
		[]domain.ConquestEvent{rawEvent(1, 1001, domain.Owner{}, enemyOwner("e"))},
		cfg, 1000,
	)
	require.Len(t, relevant, 1)
	assert.Equal(t, domain.ClassNeutral, relevant[0].Classification)
}

func TestProcessedEventSetEvictsOldestFirst(t *testing.T) {
	set := NewProcessedEventSet(3)

	set.Add("a")
	set.Add("b")
	set.Add("c")
	set.Add("d") // evicts "a"

	assert.Equal(t, 3, set.Len())
	assert.False(t, set.Contains("a"))
	assert.True(t, set.Contains("b"))
	assert.True(t, set.Contains("d"))
}

func TestProcessedEventSetAddIsIdempotent(t *testing.T) {
	set := NewProcessedEventSet(2)

	set.Add("a")
	set.Add("a")
	set.Add("b")

	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Contains("a"))
}

func TestIdentityKeyDistinguishesSources(t *testing.T) {
	raw := rawEvent(1, 1000, domain.Owner{}, homeOwner("h"))

	scraped := raw
	scraped.Source = domain.SourceScraped
	scraped.VillageID = 0

	assert.NotEqual(t, raw.IdentityKey(), scraped.IdentityKey())
}
