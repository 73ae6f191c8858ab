package domain

// VillageSnapshot is one point-in-time sample of a village's points. The
// series per village is append-only and sorted ascending by timestamp.
type VillageSnapshot struct {
	VillageID int
	Timestamp int64 // Unix seconds
	Points    int
}
