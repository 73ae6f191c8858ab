package conquest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marcosgv/tribalbot/internal/constants"
	"github.com/marcosgv/tribalbot/internal/domain"
	"github.com/marcosgv/tribalbot/internal/util"
)

// ChannelSender delivers one message to one channel. The mention flag asks the
// transport to prepend an @everyone mention; the notifier only decides
// destination and flag, never rich formatting.
type ChannelSender interface {
	SendChannelMessage(ctx context.Context, channelID, content string, mentionEveryone bool) error
}

// Composer renders a relevant event into plain message text. Kept outside the
// notifier so the core never owns user-facing wording.
type Composer interface {
	Compose(event domain.RelevantEvent) string
}

// Notifier owns the conquest polling loop: source fallback, analysis, channel
// routing, and persisted watermark advancement.
//
// Each cycle walks IDLE -> FETCH_PRIMARY -> (FETCH_SECONDARY on failure) ->
// ANALYZE -> DISPATCH -> ADVANCE_WATERMARK. A cycle with no usable source
// leaves the watermark untouched and retries on the next tick.
type Notifier struct {
	store     *MonitorStore
	analyzer  *Analyzer
	primary   Source
	secondary Source
	sender    ChannelSender
	composer  Composer
	logger    *zap.Logger

	staleAfter time.Duration
	grace      time.Duration

	sched *util.Scheduler

	mu      sync.Mutex
	lifeCtx context.Context
}

func NewNotifier(
	store *MonitorStore,
	analyzer *Analyzer,
	primary, secondary Source,
	sender ChannelSender,
	composer Composer,
	staleAfter, grace time.Duration,
	logger *zap.Logger,
) *Notifier {
	n := &Notifier{
		store:      store,
		analyzer:   analyzer,
		primary:    primary,
		secondary:  secondary,
		sender:     sender,
		composer:   composer,
		staleAfter: staleAfter,
		grace:      grace,
		logger:     logger,
	}
	n.sched = util.NewScheduler("conquest-monitor", n.interval, n.tick, logger)
	return n
}

// Start captures the process lifecycle context and resumes monitoring if a
// persisted config says it was enabled. Called once at boot; the captured
// context is what every later Enable derives the poll loop from, so a loop
// started by a command outlives the command's own deadline.
func (n *Notifier) Start(ctx context.Context) error {
	n.mu.Lock()
	n.lifeCtx = ctx
	n.mu.Unlock()

	cfg, err := n.store.Load()
	if err != nil {
		return err
	}
	if cfg == nil || !cfg.Enabled {
		n.logger.Info("Conquest monitor not enabled, loop idle")
		return nil
	}

	if err := n.resetStaleWatermark(); err != nil {
		return err
	}
	n.sched.Start(ctx)
	return nil
}

func (n *Notifier) Stop() {
	n.sched.Stop()
}

func (n *Notifier) Running() bool {
	return n.sched.Running()
}

// Enable activates the monitor with the given output channels and starts the
// loop. The watermark is reset to now minus the grace window so a (re)enable
// after downtime never floods channels with historical captures.
//
// The loop runs under the lifecycle context captured at Start, never under the
// caller's: Enable is invoked from command handlers whose contexts expire as
// soon as the handler returns.
func (n *Notifier) Enable(gainsChannelID, lossesChannelID string) error {
	_, err := n.store.Update(func(cfg *domain.MonitorConfig) {
		cfg.Enabled = true
		cfg.GainsChannelID = gainsChannelID
		cfg.LossesChannelID = lossesChannelID
		cfg.Watermark = time.Now().Add(-n.grace).Unix()
	})
	if err != nil {
		return err
	}

	n.sched.Restart(n.lifecycleContext())
	n.logger.Info("Conquest monitor enabled",
		zap.String("gains_channel", gainsChannelID),
		zap.String("losses_channel", lossesChannelID),
	)
	return nil
}

// Disable stops the loop. The scheduler guarantees no further tick fires; a
// tick already in flight re-checks Enabled before dispatch and commit.
func (n *Notifier) Disable() error {
	_, err := n.store.Update(func(cfg *domain.MonitorConfig) {
		cfg.Enabled = false
	})
	if err != nil {
		return err
	}

	n.sched.Stop()
	n.logger.Info("Conquest monitor disabled")
	return nil
}

// SetMode changes the polling cadence. The scheduler re-reads the interval
// each cycle, so the change is observed within one old interval.
func (n *Notifier) SetMode(mode domain.PollMode) error {
	if !mode.Valid() {
		return fmt.Errorf("invalid poll mode %q", mode)
	}
	_, err := n.store.Update(func(cfg *domain.MonitorConfig) {
		cfg.Mode = mode
	})
	return err
}

// SetHomeTribe records the tribe whose gains and losses drive classification.
func (n *Notifier) SetHomeTribe(tribe *domain.Tribe) error {
	_, err := n.store.Update(func(cfg *domain.MonitorConfig) {
		cfg.HomeTribeID = tribe.ID
		cfg.HomeTribeTag = tribe.Tag
	})
	return err
}

// SetFilter narrows gain-side relevance to one tribe name, or restores the
// all-events mode when name is empty.
func (n *Notifier) SetFilter(name string) error {
	_, err := n.store.Update(func(cfg *domain.MonitorConfig) {
		if name == "" {
			cfg.Filter = domain.TribeFilter{Mode: domain.FilterAll}
			return
		}
		cfg.Filter = domain.TribeFilter{Mode: domain.FilterSpecific, TribeName: name}
	})
	return err
}

func (n *Notifier) lifecycleContext() context.Context {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.lifeCtx != nil {
		return n.lifeCtx
	}
	return context.Background()
}

// Config exposes the persisted state for status commands.
func (n *Notifier) Config() (*domain.MonitorConfig, error) {
	return n.store.Load()
}

// interval maps the persisted poll mode to a duration; used by the scheduler
// before every wait.
func (n *Notifier) interval() time.Duration {
	cfg, err := n.store.Load()
	if err != nil || cfg == nil {
		return constants.PollIntervals.Normal
	}
	switch cfg.Mode {
	case domain.PollFast:
		return constants.PollIntervals.Fast
	case domain.PollSlow:
		return constants.PollIntervals.Slow
	default:
		return constants.PollIntervals.Normal
	}
}

// resetStaleWatermark applies the startup-safety rule: a watermark older than
// staleAfter (or never set) is pulled up to now minus the grace window.
// Freshness over completeness; the dedup set absorbs the overlap.
func (n *Notifier) resetStaleWatermark() error {
	_, err := n.store.Update(func(cfg *domain.MonitorConfig) {
		if cfg.Watermark == 0 || time.Since(time.Unix(cfg.Watermark, 0)) > n.staleAfter {
			fresh := time.Now().Add(-n.grace).Unix()
			n.logger.Info("Resetting stale watermark",
				zap.Int64("old", cfg.Watermark),
				zap.Int64("new", fresh),
			)
			cfg.Watermark = fresh
		}
	})
	return err
}

// tick runs one poll cycle. No error escapes: every failure is logged and the
// next tick retries from the untouched watermark.
func (n *Notifier) tick(ctx context.Context) {
	cycleID := uuid.NewString()[:8]
	log := n.logger.With(zap.String("cycle", cycleID))

	cfg, err := n.store.Load()
	if err != nil {
		log.Error("Failed to load monitor config", zap.Error(err))
		return
	}
	if cfg == nil || !cfg.Enabled {
		return
	}

	cycleStart := time.Now()

	events, sourceName, err := n.fetchWithFallback(ctx, cfg.Watermark, log)
	if err != nil {
		log.Warn("All conquest sources failed, skipping cycle", zap.Error(err))
		return
	}

	relevant := n.analyzer.Analyze(events, *cfg, cfg.Watermark)
	if len(relevant) > 0 {
		log.Info("Conquest events to notify",
			zap.String("source", sourceName),
			zap.Int("count", len(relevant)),
		)
	}

	n.dispatch(ctx, cfg, relevant, log)

	// Re-read before commit: a disable issued mid-cycle must win, and the
	// watermark is advanced to cycle-start wall clock rather than the max
	// event timestamp so feed latency cannot open a permanent gap.
	_, err = n.store.Update(func(current *domain.MonitorConfig) {
		if !current.Enabled {
			return
		}
		if ts := cycleStart.Unix(); ts > current.Watermark {
			current.Watermark = ts
		}
	})
	if err != nil {
		log.Error("Failed to advance watermark", zap.Error(err))
	}
}

// fetchWithFallback tries the primary source, then the secondary. An empty
// primary result is treated as a soft failure so the scrape gets a chance to
// fill the gap.
func (n *Notifier) fetchWithFallback(ctx context.Context, since int64, log *zap.Logger) ([]domain.ConquestEvent, string, error) {
	events, err := n.primary.Fetch(ctx, since)
	if err == nil && len(events) > 0 {
		return events, n.primary.Name(), nil
	}
	if err != nil {
		log.Warn("Primary conquest source failed, falling back",
			zap.String("source", n.primary.Name()),
			zap.Error(err),
		)
	}

	events, err = n.secondary.Fetch(ctx, since)
	if err != nil {
		return nil, "", err
	}
	return events, n.secondary.Name(), nil
}

// dispatch routes each event by classification: gains and neutral captures to
// the gains channel without mention, home losses to the losses channel with an
// @everyone mention. A failed send is logged and never aborts the rest of the
// batch.
func (n *Notifier) dispatch(ctx context.Context, cfg *domain.MonitorConfig, events []domain.RelevantEvent, log *zap.Logger) {
	for _, event := range events {
		channelID := cfg.GainsChannelID
		mention := false
		if event.Classification == domain.ClassLoss {
			channelID = cfg.LossesChannelID
			mention = true
		}
		if channelID == "" {
			continue
		}

		content := n.composer.Compose(event)
		if err := n.sender.SendChannelMessage(ctx, channelID, content, mention); err != nil {
			log.Error("Failed to dispatch conquest notification",
				zap.String("channel_id", channelID),
				zap.String("classification", string(event.Classification)),
				zap.String("village", event.Event.VillageName),
				zap.Error(err),
			)
		}
	}
}
