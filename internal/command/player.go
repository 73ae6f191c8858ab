package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/marcosgv/tribalbot/internal/domain"
)

type PlayerCommand struct {
	deps *Dependencies
}

func NewPlayerCommand(deps *Dependencies) *PlayerCommand {
	return &PlayerCommand{deps: deps}
}

func (c *PlayerCommand) Name() string        { return "jugador" }
func (c *PlayerCommand) Description() string { return "Muestra el perfil de un jugador" }
func (c *PlayerCommand) Usage() string       { return "jugador <nombre>" }

func (c *PlayerCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext) error {
	if len(cmdCtx.Args) == 0 {
		return c.deps.SendMessage(cmdCtx.ChannelID, "Uso: "+c.Usage())
	}

	name := strings.Join(cmdCtx.Args, " ")
	player, err := c.deps.World.PlayerByName(ctx, name)
	if err != nil {
		return c.deps.SendMessage(cmdCtx.ChannelID, "No se pudieron cargar los datos del mundo, inténtalo de nuevo.")
	}
	if player == nil {
		return c.deps.SendMessage(cmdCtx.ChannelID, fmt.Sprintf("No encuentro al jugador **%s**.", name))
	}

	tribeLine := "sin tribu"
	if player.TribeID != 0 {
		if tribe, err := c.deps.World.TribeByID(ctx, player.TribeID); err == nil && tribe != nil {
			tribeLine = fmt.Sprintf("%s [%s]", tribe.Name, tribe.Tag)
		}
	}

	msg := fmt.Sprintf(
		"**%s** (rank %d)\nTribu: %s\nPueblos: %d\nPuntos: %d",
		player.Name, player.Rank, tribeLine, player.Villages, player.Points,
	)
	return c.deps.SendMessage(cmdCtx.ChannelID, msg)
}
