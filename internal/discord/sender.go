package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/marcosgv/tribalbot/internal/constants"
	"github.com/marcosgv/tribalbot/pkg/errors"
)

// Sender delivers plain messages to channels. Sends are rate limited locally
// so a burst of conquest notifications queues up instead of tripping the API
// limiter; within one batch this also preserves ordering.
type Sender struct {
	session *discordgo.Session
	limiter *rate.Limiter
	logger  *zap.Logger
}

func NewSender(session *discordgo.Session, logger *zap.Logger) *Sender {
	return &Sender{
		session: session,
		limiter: rate.NewLimiter(
			rate.Limit(constants.DispatchConfig.MessagesPerSecond),
			constants.DispatchConfig.Burst,
		),
		logger: logger,
	}
}

// SendChannelMessage sends content to one channel. With mentionEveryone the
// message is prefixed with @everyone and the mention is allowed to resolve;
// otherwise every mention in the content stays inert.
func (s *Sender) SendChannelMessage(ctx context.Context, channelID, content string, mentionEveryone bool) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	allowed := &discordgo.MessageAllowedMentions{}
	if mentionEveryone {
		content = "@everyone " + content
		allowed.Parse = []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeEveryone}
	}

	_, err := s.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:         content,
		AllowedMentions: allowed,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return errors.NewDispatchError("channel send failed", channelID, err)
	}

	return nil
}
