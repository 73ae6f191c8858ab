package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/marcosgv/tribalbot/internal/domain"
)

type TribeCommand struct {
	deps *Dependencies
}

func NewTribeCommand(deps *Dependencies) *TribeCommand {
	return &TribeCommand{deps: deps}
}

func (c *TribeCommand) Name() string        { return "tribu" }
func (c *TribeCommand) Description() string { return "Muestra el perfil de una tribu" }
func (c *TribeCommand) Usage() string       { return "tribu <tag o nombre>" }

func (c *TribeCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext) error {
	if len(cmdCtx.Args) == 0 {
		return c.deps.SendMessage(cmdCtx.ChannelID, "Uso: "+c.Usage())
	}

	query := strings.Join(cmdCtx.Args, " ")
	tribe, err := c.deps.World.TribeByTagOrName(ctx, query)
	if err != nil {
		return c.deps.SendMessage(cmdCtx.ChannelID, "No se pudieron cargar los datos del mundo, inténtalo de nuevo.")
	}
	if tribe == nil {
		return c.deps.SendMessage(cmdCtx.ChannelID, fmt.Sprintf("No encuentro la tribu **%s**.", query))
	}

	msg := fmt.Sprintf(
		"**%s [%s]** (rank %d)\nMiembros: %d\nPueblos: %d\nPuntos: %d (total %d)",
		tribe.Name, tribe.Tag, tribe.Rank, tribe.Members, tribe.Villages, tribe.Points, tribe.AllPoints,
	)
	return c.deps.SendMessage(cmdCtx.ChannelID, msg)
}
