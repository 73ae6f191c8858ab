package snapshot

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/marcosgv/tribalbot/internal/constants"
	"github.com/marcosgv/tribalbot/internal/service/worlddata"
	"github.com/marcosgv/tribalbot/internal/util"
)

// Sampler records one point sample per tracked village on a timer. When the
// explicit tracking set is empty it falls back to the top villages of the top
// players, best effort, so the upgrade engine has something to chew on from
// day one.
type Sampler struct {
	store  *Store
	world  *worlddata.Client
	logger *zap.Logger
	sched  *util.Scheduler
}

func NewSampler(store *Store, world *worlddata.Client, logger *zap.Logger) *Sampler {
	s := &Sampler{
		store:  store,
		world:  world,
		logger: logger,
	}
	s.sched = util.NewScheduler(
		"village-sampler",
		func() time.Duration { return constants.SnapshotConfig.SampleInterval },
		s.tick,
		logger,
	)
	return s
}

func (s *Sampler) Start(ctx context.Context) {
	s.sched.Start(ctx)
}

func (s *Sampler) Stop() {
	s.sched.Stop()
}

func (s *Sampler) tick(ctx context.Context) {
	ids, err := s.store.Tracked(ctx)
	if err != nil {
		s.logger.Error("Failed to load tracking set", zap.Error(err))
		return
	}

	if len(ids) == 0 {
		ids = s.fallbackSet(ctx)
		if len(ids) == 0 {
			return
		}
	}

	now := time.Now().Unix()
	recorded := 0
	for _, id := range ids {
		village, err := s.world.VillageByID(ctx, id)
		if err != nil {
			s.logger.Warn("Sampler could not resolve village", zap.Int("village_id", id), zap.Error(err))
			return // roster is down, the rest of the loop would fail too
		}
		if village == nil {
			continue // deleted or merged away, skip silently
		}
		if err := s.store.Record(ctx, village.ID, village.Points, now); err != nil {
			s.logger.Warn("Failed to record snapshot", zap.Int("village_id", id), zap.Error(err))
			continue
		}
		recorded++
	}

	s.logger.Debug("Village sampling cycle complete",
		zap.Int("tracked", len(ids)),
		zap.Int("recorded", recorded),
	)
}

// fallbackSet picks the top villages of the top active players.
func (s *Sampler) fallbackSet(ctx context.Context) []int {
	players, err := s.world.TopPlayers(ctx, constants.SnapshotConfig.FallbackTopPlayers)
	if err != nil {
		s.logger.Warn("Sampler fallback set unavailable", zap.Error(err))
		return nil
	}

	var ids []int
	for _, player := range players {
		villages, err := s.world.VillagesByPlayer(ctx, player.ID)
		if err != nil {
			continue
		}
		limit := util.Min(constants.SnapshotConfig.FallbackVillagesPerPlayer, len(villages))
		for _, v := range villages[:limit] {
			ids = append(ids, v.ID)
		}
	}
	return util.Unique(ids)
}
