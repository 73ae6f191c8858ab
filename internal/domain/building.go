package domain

// Building holds the cumulative point table for one building type.
// Points[level] is the total point contribution at that level; Points[0] = 0.
type Building struct {
	Key    string // stable identifier, e.g. "wall"
	Name   string // display name, e.g. "Muralla"
	Points []int
}

// MaxLevel is the highest level present in the table.
func (b Building) MaxLevel() int {
	if len(b.Points) == 0 {
		return 0
	}
	return len(b.Points) - 1
}

// StepCost is the point cost of going from level to level+1, or 0 when the
// level is out of range.
func (b Building) StepCost(level int) int {
	if level < 0 || level+1 >= len(b.Points) {
		return 0
	}
	return b.Points[level+1] - b.Points[level]
}

// UpgradeKind orders hypothesis plausibility: fewer buildings implicated means
// a higher prior probability.
type UpgradeKind int

const (
	UpgradeSingle UpgradeKind = iota
	UpgradeMultiple
	UpgradeCombination
)

func (k UpgradeKind) String() string {
	switch k {
	case UpgradeSingle:
		return "single"
	case UpgradeMultiple:
		return "multiple"
	default:
		return "combination"
	}
}

// UpgradeStep is one building's contribution to a hypothesis.
type UpgradeStep struct {
	Building   string
	FromLevel  int
	ToLevel    int
	PointsCost int
}

// UpgradeHypothesis is one way a point delta could be explained. Single and
// multiple hypotheses carry exactly one step; combinations carry two or more.
type UpgradeHypothesis struct {
	Kind        UpgradeKind
	Steps       []UpgradeStep
	TotalPoints int
}

// DeltaAnalysis explains one positive point delta between two consecutive
// snapshots. An empty hypothesis list means the delta matched no catalog
// entry; it is still reported, never silently dropped.
type DeltaAnalysis struct {
	From       VillageSnapshot
	To         VillageSnapshot
	Delta      int
	Hypotheses []UpgradeHypothesis
}

func (d DeltaAnalysis) Explained() bool {
	return len(d.Hypotheses) > 0
}

// Confidence is a simple sample-count heuristic, not statistical significance.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// UpgradeAnalysis is the engine result for one village and window.
// InsufficientData marks a normal negative outcome, not an error.
type UpgradeAnalysis struct {
	VillageID        int
	InsufficientData bool
	Periods          int
	Deltas           []DeltaAnalysis
	UpgradeCounts    map[string]int
	Confidence       Confidence
}
