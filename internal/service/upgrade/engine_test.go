package upgrade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/marcosgv/tribalbot/internal/domain"
)

// testCatalog uses hand-picked cumulative tables so every expected match is
// easy to verify: wall steps cost 50/70/90/110, farm steps cost 30/40/50.
func testCatalog() *Catalog {
	return NewCatalog([]domain.Building{
		{Key: "wall", Name: "Muralla", Points: []int{0, 50, 120, 210, 320}},
		{Key: "farm", Name: "Granja", Points: []int{0, 30, 70, 120}},
	})
}

func series(villageID int, points ...int) []domain.VillageSnapshot {
	snaps := make([]domain.VillageSnapshot, len(points))
	for i, p := range points {
		snaps[i] = domain.VillageSnapshot{
			VillageID: villageID,
			Timestamp: int64(1000 + i*3600),
			Points:    p,
		}
	}
	return snaps
}

func TestAnalyzeSingleLevelRankedAboveMultiLevel(t *testing.T) {
	engine := NewEngine(testCatalog(), zap.NewNop())

	// delta 70: wall 1->2 (single) and farm 0->2 (multi) both match exactly
	analysis := engine.Analyze(series(1, 1000, 1070), "", 0)

	require.False(t, analysis.InsufficientData)
	require.Equal(t, 1, analysis.Periods)
	require.Len(t, analysis.Deltas, 1)

	hyps := analysis.Deltas[0].Hypotheses
	require.Len(t, hyps, 2)

	assert.Equal(t, domain.UpgradeSingle, hyps[0].Kind)
	assert.Equal(t, "wall", hyps[0].Steps[0].Building)
	assert.Equal(t, 1, hyps[0].Steps[0].FromLevel)
	assert.Equal(t, 2, hyps[0].Steps[0].ToLevel)

	assert.Equal(t, domain.UpgradeMultiple, hyps[1].Kind)
	assert.Equal(t, "farm", hyps[1].Steps[0].Building)
	assert.Equal(t, 0, hyps[1].Steps[0].FromLevel)
	assert.Equal(t, 2, hyps[1].Steps[0].ToLevel)

	// counts come from the top-ranked hypothesis only
	assert.Equal(t, map[string]int{"wall": 1}, analysis.UpgradeCounts)
}

func TestAnalyzeCombinationOnlyWithoutFilter(t *testing.T) {
	engine := NewEngine(testCatalog(), zap.NewNop())

	// delta 80 = wall 0->1 (50) + farm 0->1 (30), nothing else matches
	analysis := engine.Analyze(series(1, 500, 580), "", 0)
	require.Len(t, analysis.Deltas, 1)
	require.Len(t, analysis.Deltas[0].Hypotheses, 1)

	hyp := analysis.Deltas[0].Hypotheses[0]
	assert.Equal(t, domain.UpgradeCombination, hyp.Kind)
	require.Len(t, hyp.Steps, 2)
	assert.Equal(t, "wall", hyp.Steps[0].Building)
	assert.Equal(t, "farm", hyp.Steps[1].Building)
	assert.Equal(t, 80, hyp.TotalPoints)

	// a building filter disables combinations, so the delta stays unexplained
	filtered := engine.Analyze(series(1, 500, 580), "wall", 0)
	require.Len(t, filtered.Deltas, 1)
	assert.False(t, filtered.Deltas[0].Explained())
}

func TestAnalyzeUnexplainedDeltaIsReported(t *testing.T) {
	engine := NewEngine(testCatalog(), zap.NewNop())

	analysis := engine.Analyze(series(1, 1000, 1007), "", 0)
	require.Len(t, analysis.Deltas, 1)
	assert.Equal(t, 7, analysis.Deltas[0].Delta)
	assert.False(t, analysis.Deltas[0].Explained())
	assert.Empty(t, analysis.UpgradeCounts)
}

func TestAnalyzeInsufficientData(t *testing.T) {
	engine := NewEngine(testCatalog(), zap.NewNop())

	analysis := engine.Analyze(series(1, 1000), "", 0)
	assert.True(t, analysis.InsufficientData)
	assert.Equal(t, domain.ConfidenceLow, analysis.Confidence)

	empty := engine.Analyze(nil, "", 0)
	assert.True(t, empty.InsufficientData)
}

func TestAnalyzeSkipsNegativeAndZeroDeltas(t *testing.T) {
	engine := NewEngine(testCatalog(), zap.NewNop())

	// a raid knocked points down, then nothing changed
	analysis := engine.Analyze(series(1, 1000, 900, 900), "", 0)
	assert.False(t, analysis.InsufficientData)
	assert.Zero(t, analysis.Periods)
	assert.Empty(t, analysis.Deltas)
	assert.Equal(t, domain.ConfidenceLow, analysis.Confidence)
}

func TestAnalyzeSinceWindow(t *testing.T) {
	engine := NewEngine(testCatalog(), zap.NewNop())

	snaps := series(1, 500, 550, 620) // timestamps 1000, 4600, 8200
	analysis := engine.Analyze(snaps, "", 4600)

	// only the 550->620 period falls inside the window
	require.Equal(t, 1, analysis.Periods)
	assert.Equal(t, 70, analysis.Deltas[0].Delta)
}

func TestAnalyzeSortsUnorderedSeries(t *testing.T) {
	engine := NewEngine(testCatalog(), zap.NewNop())

	snaps := []domain.VillageSnapshot{
		{VillageID: 1, Timestamp: 2000, Points: 1070},
		{VillageID: 1, Timestamp: 1000, Points: 1000},
	}
	analysis := engine.Analyze(snaps, "", 0)
	require.Equal(t, 1, analysis.Periods)
	assert.Equal(t, 70, analysis.Deltas[0].Delta)
}

func TestConfidenceScalesWithPeriods(t *testing.T) {
	engine := NewEngine(testCatalog(), zap.NewNop())

	// one active period
	one := engine.Analyze(series(1, 1000, 1070), "", 0)
	assert.Equal(t, domain.ConfidenceLow, one.Confidence)

	// three active periods
	three := engine.Analyze(series(1, 1000, 1070, 1140, 1210), "", 0)
	assert.Equal(t, domain.ConfidenceMedium, three.Confidence)

	// five active periods
	five := engine.Analyze(series(1, 1000, 1070, 1140, 1210, 1280, 1350), "", 0)
	assert.Equal(t, domain.ConfidenceHigh, five.Confidence)
}

func TestDefaultCatalogTables(t *testing.T) {
	catalog := DefaultCatalog()

	wall := catalog.Get("wall")
	require.NotNil(t, wall)
	assert.Equal(t, 20, wall.MaxLevel())
	assert.Zero(t, wall.Points[0])
	assert.Equal(t, 8, wall.Points[1])

	// cumulative tables are strictly increasing
	for _, b := range catalog.All() {
		for level := 1; level <= b.MaxLevel(); level++ {
			assert.Greater(t, b.Points[level], b.Points[level-1], b.Key)
		}
	}

	assert.Nil(t, catalog.Get("castle"))
}
