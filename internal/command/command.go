package command

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/marcosgv/tribalbot/internal/domain"
	"github.com/marcosgv/tribalbot/internal/service/conquest"
	"github.com/marcosgv/tribalbot/internal/service/killstats"
	"github.com/marcosgv/tribalbot/internal/service/snapshot"
	"github.com/marcosgv/tribalbot/internal/service/upgrade"
	"github.com/marcosgv/tribalbot/internal/service/worlddata"
)

type Command interface {
	Name() string
	Description() string
	Usage() string
	Execute(ctx context.Context, cmdCtx *domain.CommandContext) error
}

type Dependencies struct {
	World       *worlddata.Client
	Kills       *killstats.Client
	Notifier    *conquest.Notifier
	Snapshots   *snapshot.Store
	Engine      *upgrade.Engine
	Catalog     *upgrade.Catalog
	Location    *time.Location
	SendMessage func(channelID, message string) error
	Logger      *zap.Logger
}
