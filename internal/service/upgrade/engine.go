package upgrade

import (
	"sort"

	"go.uber.org/zap"

	"github.com/marcosgv/tribalbot/internal/constants"
	"github.com/marcosgv/tribalbot/internal/domain"
)

// Engine infers which building upgrades explain the point deltas of a village
// snapshot series. The search is deliberately bounded (see
// constants.SearchBounds): single levels, contiguous multi-level spans of one
// building, and pairs of single levels across two buildings. Higher-arity
// combinations blow up combinatorially and are not attempted.
type Engine struct {
	catalog *Catalog
	logger  *zap.Logger
}

func NewEngine(catalog *Catalog, logger *zap.Logger) *Engine {
	return &Engine{catalog: catalog, logger: logger}
}

// Analyze explains every positive delta between consecutive snapshots taken
// at or after since. Fewer than two snapshots in the window is a normal
// negative outcome, reported via InsufficientData.
//
// buildingFilter narrows the search to one building key; empty means all
// buildings, which also unlocks combination hypotheses.
func (e *Engine) Analyze(series []domain.VillageSnapshot, buildingFilter string, since int64) domain.UpgradeAnalysis {
	filtered := make([]domain.VillageSnapshot, 0, len(series))
	for _, snap := range series {
		if since == 0 || snap.Timestamp >= since {
			filtered = append(filtered, snap)
		}
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Timestamp < filtered[j].Timestamp })

	result := domain.UpgradeAnalysis{
		UpgradeCounts: make(map[string]int),
	}
	if len(filtered) > 0 {
		result.VillageID = filtered[0].VillageID
	}

	if len(filtered) < 2 {
		result.InsufficientData = true
		result.Confidence = domain.ConfidenceLow
		return result
	}

	targets := e.targetBuildings(buildingFilter)
	combinations := buildingFilter == ""

	for i := 1; i < len(filtered); i++ {
		prev, curr := filtered[i-1], filtered[i]
		delta := curr.Points - prev.Points
		// zero means no activity; negative deltas (building losses from
		// attacks) are out of scope for upgrade inference
		if delta <= 0 {
			continue
		}

		hypotheses := e.explainDelta(delta, targets, combinations)
		result.Periods++
		result.Deltas = append(result.Deltas, domain.DeltaAnalysis{
			From:       prev,
			To:         curr,
			Delta:      delta,
			Hypotheses: hypotheses,
		})

		if len(hypotheses) > 0 {
			for _, step := range hypotheses[0].Steps {
				result.UpgradeCounts[step.Building]++
			}
		}
	}

	result.Confidence = confidenceFor(result.Periods)
	return result
}

func (e *Engine) targetBuildings(filter string) []domain.Building {
	if filter == "" {
		return e.catalog.All()
	}
	if b := e.catalog.Get(filter); b != nil {
		return []domain.Building{*b}
	}
	return nil
}

// explainDelta collects every bounded hypothesis matching the delta exactly,
// ranked single < multiple < combination and capped to MaxResults.
func (e *Engine) explainDelta(delta int, targets []domain.Building, combinations bool) []domain.UpgradeHypothesis {
	var hypotheses []domain.UpgradeHypothesis

	for _, building := range targets {
		hypotheses = append(hypotheses, singleLevelMatches(building, delta)...)
		hypotheses = append(hypotheses, multiLevelMatches(building, delta)...)
	}

	if combinations {
		hypotheses = append(hypotheses, e.combinationMatches(targets, delta)...)
	}

	sort.SliceStable(hypotheses, func(i, j int) bool {
		if hypotheses[i].Kind != hypotheses[j].Kind {
			return hypotheses[i].Kind < hypotheses[j].Kind
		}
		// lower starting level first: cheap early upgrades are likelier
		return hypotheses[i].Steps[0].FromLevel < hypotheses[j].Steps[0].FromLevel
	})

	if len(hypotheses) > constants.SearchBounds.MaxResults {
		hypotheses = hypotheses[:constants.SearchBounds.MaxResults]
	}
	return hypotheses
}

func singleLevelMatches(building domain.Building, delta int) []domain.UpgradeHypothesis {
	var matches []domain.UpgradeHypothesis
	for level := 0; level < building.MaxLevel(); level++ {
		if building.Points[level+1]-building.Points[level] != delta {
			continue
		}
		matches = append(matches, domain.UpgradeHypothesis{
			Kind: domain.UpgradeSingle,
			Steps: []domain.UpgradeStep{{
				Building:   building.Key,
				FromLevel:  level,
				ToLevel:    level + 1,
				PointsCost: delta,
			}},
			TotalPoints: delta,
		})
	}
	return matches
}

func multiLevelMatches(building domain.Building, delta int) []domain.UpgradeHypothesis {
	var matches []domain.UpgradeHypothesis
	for span := 2; span <= constants.SearchBounds.MaxMultiLevelSpan; span++ {
		for from := 0; from+span <= building.MaxLevel(); from++ {
			if building.Points[from+span]-building.Points[from] != delta {
				continue
			}
			matches = append(matches, domain.UpgradeHypothesis{
				Kind: domain.UpgradeMultiple,
				Steps: []domain.UpgradeStep{{
					Building:   building.Key,
					FromLevel:  from,
					ToLevel:    from + span,
					PointsCost: delta,
				}},
				TotalPoints: delta,
			})
		}
	}
	return matches
}

// combinationMatches pairs one single-level upgrade of each of two distinct
// buildings. Triples and beyond are never attempted.
func (e *Engine) combinationMatches(targets []domain.Building, delta int) []domain.UpgradeHypothesis {
	var matches []domain.UpgradeHypothesis

	for i := 0; i < len(targets); i++ {
		for j := i + 1; j < len(targets); j++ {
			first, second := targets[i], targets[j]
			for l1 := 0; l1 < first.MaxLevel(); l1++ {
				cost1 := first.StepCost(l1)
				if cost1 >= delta {
					continue
				}
				for l2 := 0; l2 < second.MaxLevel(); l2++ {
					if cost1+second.StepCost(l2) != delta {
						continue
					}
					matches = append(matches, domain.UpgradeHypothesis{
						Kind: domain.UpgradeCombination,
						Steps: []domain.UpgradeStep{
							{Building: first.Key, FromLevel: l1, ToLevel: l1 + 1, PointsCost: cost1},
							{Building: second.Key, FromLevel: l2, ToLevel: l2 + 1, PointsCost: delta - cost1},
						},
						TotalPoints: delta,
					})
				}
			}
		}
	}

	return matches
}

// confidenceFor is a plain sample-count heuristic, not statistical
// significance.
func confidenceFor(periods int) domain.Confidence {
	switch {
	case periods < 2:
		return domain.ConfidenceLow
	case periods < 5:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceHigh
	}
}
