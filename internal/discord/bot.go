package discord

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/marcosgv/tribalbot/internal/command"
	"github.com/marcosgv/tribalbot/internal/domain"
)

const commandTimeout = 30 * time.Second

// Bot owns the gateway session and routes prefixed messages into the command
// registry. One goroutine per incoming command; discordgo already dispatches
// handlers concurrently.
type Bot struct {
	session  *discordgo.Session
	registry *command.Registry
	prefix   string
	logger   *zap.Logger
}

func NewBot(session *discordgo.Session, registry *command.Registry, prefix string, logger *zap.Logger) *Bot {
	b := &Bot{
		session:  session,
		registry: registry,
		prefix:   prefix,
		logger:   logger,
	}

	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentMessageContent
	session.AddHandler(b.onMessageCreate)

	return b
}

// Start opens the gateway connection.
func (b *Bot) Start(_ context.Context) error {
	if err := b.session.Open(); err != nil {
		return err
	}
	b.logger.Info("Discord gateway connected",
		zap.String("prefix", b.prefix),
		zap.Int("commands", b.registry.Count()),
	)
	return nil
}

func (b *Bot) Shutdown() error {
	return b.session.Close()
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if !strings.HasPrefix(m.Content, b.prefix) {
		return
	}

	fields := strings.Fields(strings.TrimPrefix(m.Content, b.prefix))
	if len(fields) == 0 {
		return
	}
	key := fields[0]
	args := fields[1:]

	cmdCtx := domain.NewCommandContext(m.ChannelID, m.Author.ID, m.Author.Username, m.Content, args)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := b.registry.Execute(ctx, cmdCtx, key); err != nil {
		if errors.Is(err, command.ErrUnknownCommand) {
			return
		}
		b.logger.Error("Command execution failed",
			zap.String("command", key),
			zap.String("user", m.Author.Username),
			zap.Error(err),
		)
	}
}
