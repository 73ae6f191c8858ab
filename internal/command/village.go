package command

import (
	"context"
	"fmt"

	"github.com/marcosgv/tribalbot/internal/domain"
)

type VillageCommand struct {
	deps *Dependencies
}

func NewVillageCommand(deps *Dependencies) *VillageCommand {
	return &VillageCommand{deps: deps}
}

func (c *VillageCommand) Name() string        { return "pueblo" }
func (c *VillageCommand) Description() string { return "Muestra información de un pueblo" }
func (c *VillageCommand) Usage() string       { return "pueblo <x|y>" }

func (c *VillageCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext) error {
	if len(cmdCtx.Args) == 0 {
		return c.deps.SendMessage(cmdCtx.ChannelID, "Uso: "+c.Usage())
	}

	coords, ok := domain.ParseCoordinates(cmdCtx.Args[0])
	if !ok {
		return c.deps.SendMessage(cmdCtx.ChannelID, "Coordenadas no válidas, usa el formato `x|y` (por ejemplo `512|534`).")
	}

	village, err := c.deps.World.VillageByCoords(ctx, coords)
	if err != nil {
		return c.deps.SendMessage(cmdCtx.ChannelID, "No se pudieron cargar los datos del mundo, inténtalo de nuevo.")
	}
	if village == nil {
		return c.deps.SendMessage(cmdCtx.ChannelID, fmt.Sprintf("No hay ningún pueblo en **%s**.", coords.String()))
	}

	ownerLine := "Bárbaro"
	if !village.IsBarbarian() {
		if player, err := c.deps.World.PlayerByID(ctx, village.PlayerID); err == nil && player != nil {
			ownerLine = player.Name
		} else {
			ownerLine = fmt.Sprintf("#%d", village.PlayerID)
		}
	}

	msg := fmt.Sprintf(
		"**%s** (%s, %s)\nDueño: %s\nPuntos: %d",
		village.Name, coords.String(), coords.Continent(), ownerLine, village.Points,
	)
	return c.deps.SendMessage(cmdCtx.ChannelID, msg)
}
