package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/marcosgv/tribalbot/internal/domain"
)

type KillsCommand struct {
	deps *Dependencies
}

func NewKillsCommand(deps *Dependencies) *KillsCommand {
	return &KillsCommand{deps: deps}
}

func (c *KillsCommand) Name() string        { return "bajas" }
func (c *KillsCommand) Description() string { return "Muestra los adversarios derrotados de un jugador" }
func (c *KillsCommand) Usage() string       { return "bajas <nombre>" }

func (c *KillsCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext) error {
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

	kills, err := c.deps.Kills.PlayerKills(ctx, player.ID)
	if err != nil {
		return c.deps.SendMessage(cmdCtx.ChannelID, "No se pudieron cargar los rankings de adversarios derrotados.")
	}
	if len(kills.ByCategory) == 0 {
		return c.deps.SendMessage(cmdCtx.ChannelID, fmt.Sprintf("**%s** no aparece en ningún ranking de adversarios derrotados.", player.Name))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**Adversarios derrotados de %s**\n", player.Name))
	for _, category := range domain.KillCategories {
		entry, ok := kills.ByCategory[category]
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf("Como %s: %d (rank %d)\n", category.Label(), entry.Kills, entry.Rank))
	}
	return c.deps.SendMessage(cmdCtx.ChannelID, sb.String())
}
