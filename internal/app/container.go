package app

import (
	"context"
	"fmt"
	"os"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/marcosgv/tribalbot/internal/command"
	"github.com/marcosgv/tribalbot/internal/config"
	"github.com/marcosgv/tribalbot/internal/constants"
	"github.com/marcosgv/tribalbot/internal/discord"
	"github.com/marcosgv/tribalbot/internal/service/conquest"
	"github.com/marcosgv/tribalbot/internal/service/killstats"
	"github.com/marcosgv/tribalbot/internal/service/snapshot"
	"github.com/marcosgv/tribalbot/internal/service/upgrade"
	"github.com/marcosgv/tribalbot/internal/service/worlddata"
	"github.com/marcosgv/tribalbot/internal/util"
)

// Container bundles the assembled services the runtime loop needs. All
// heavy-weight initialization (session, sqlite, schedulers) is performed in
// Build so main stays focused on lifecycle.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	Bot      *discord.Bot
	Notifier *conquest.Notifier
	Sampler  *snapshot.Sampler

	closers []func()
}

// Close tears services down in reverse construction order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// Build assembles the full dependency graph.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	location := util.LoadLocationOrFixed(cfg.World.Timezone, "CET", 1)

	// World data clients
	world := worlddata.NewClient(cfg.World.BaseURL, logger)
	kills := killstats.NewClient(cfg.World.BaseURL, cfg.Storage.DataDir, logger)

	// Snapshot storage and sampler
	snapshots, err := snapshot.Open(cfg.SnapshotDB(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}
	closers = append(closers, func() {
		_ = snapshots.Close()
	})
	sampler := snapshot.NewSampler(snapshots, world, logger)

	// Upgrade inference
	catalog := upgrade.DefaultCatalog()
	engine := upgrade.NewEngine(catalog, logger)

	// Discord session and transport
	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	sender := discord.NewSender(session, logger)
	composer := discord.NewMessageComposer(location)

	// Conquest monitor
	monitorStore := conquest.NewMonitorStore(cfg.MonitorFile(), logger)
	analyzer := conquest.NewAnalyzer(constants.DedupConfig.MaxEntries, logger)
	primary := conquest.NewPrimarySource(cfg.World.BaseURL, world, logger)
	secondary := conquest.NewScrapedSource(cfg.World.TWStatsURL, location, logger)
	notifier := conquest.NewNotifier(
		monitorStore,
		analyzer,
		primary,
		secondary,
		sender,
		composer,
		cfg.Monitor.StaleAfter,
		cfg.Monitor.Grace,
		logger,
	)

	// Command layer
	deps := &command.Dependencies{
		World:     world,
		Kills:     kills,
		Notifier:  notifier,
		Snapshots: snapshots,
		Engine:    engine,
		Catalog:   catalog,
		Location:  location,
		Logger:    logger,
		SendMessage: func(channelID, message string) error {
			return sender.SendChannelMessage(context.Background(), channelID, message, false)
		},
	}

	registry := command.NewRegistry()
	registry.Register(command.NewPlayerCommand(deps))
	registry.Register(command.NewTribeCommand(deps))
	registry.Register(command.NewVillageCommand(deps))
	registry.Register(command.NewKillsCommand(deps))
	registry.Register(command.NewMonitorCommand(deps))
	registry.Register(command.NewAnalyzeCommand(deps))
	registry.Register(command.NewTrackCommand(deps))
	registry.Register(command.NewUntrackCommand(deps))
	registry.Register(command.NewHelpCommand(deps, registry, cfg.Discord.Prefix))

	bot := discord.NewBot(session, registry, cfg.Discord.Prefix, logger)

	return &Container{
		Config:   cfg,
		Logger:   logger,
		Bot:      bot,
		Notifier: notifier,
		Sampler:  sampler,
		closers:  closers,
	}, nil
}
