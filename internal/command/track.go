package command

import (
	"context"
	"fmt"

	"github.com/marcosgv/tribalbot/internal/domain"
)

type TrackCommand struct {
	deps *Dependencies
}

func NewTrackCommand(deps *Dependencies) *TrackCommand {
	return &TrackCommand{deps: deps}
}

func (c *TrackCommand) Name() string        { return "seguir" }
func (c *TrackCommand) Description() string { return "Añade un pueblo al muestreo periódico" }
func (c *TrackCommand) Usage() string       { return "seguir <x|y>" }

func (c *TrackCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext) error {
	village, reply, err := resolveVillageArg(ctx, c.deps, cmdCtx)
	if village == nil {
		if reply != "" {
			return c.deps.SendMessage(cmdCtx.ChannelID, reply)
		}
		return err
	}

	if err := c.deps.Snapshots.Track(ctx, village.ID); err != nil {
		return err
	}
	// record a first sample immediately so analysis has a baseline
	if err := c.deps.Snapshots.Record(ctx, village.ID, village.Points, 0); err != nil {
		c.deps.Logger.Warn("Failed to record initial snapshot")
	}

	return c.deps.SendMessage(cmdCtx.ChannelID,
		fmt.Sprintf("Siguiendo **%s** (%s). Se muestrearán sus puntos cada hora.", village.Name, village.Coords.String()))
}

type UntrackCommand struct {
	deps *Dependencies
}

func NewUntrackCommand(deps *Dependencies) *UntrackCommand {
	return &UntrackCommand{deps: deps}
}

func (c *UntrackCommand) Name() string        { return "dejar" }
func (c *UntrackCommand) Description() string { return "Quita un pueblo del muestreo periódico" }
func (c *UntrackCommand) Usage() string       { return "dejar <x|y>" }

func (c *UntrackCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext) error {
	village, reply, err := resolveVillageArg(ctx, c.deps, cmdCtx)
	if village == nil {
		if reply != "" {
			return c.deps.SendMessage(cmdCtx.ChannelID, reply)
		}
		return err
	}

	removed, err := c.deps.Snapshots.Untrack(ctx, village.ID)
	if err != nil {
		return err
	}
	if !removed {
		return c.deps.SendMessage(cmdCtx.ChannelID,
			fmt.Sprintf("**%s** no estaba en la lista de seguimiento.", village.Name))
	}
	return c.deps.SendMessage(cmdCtx.ChannelID,
		fmt.Sprintf("Se ha dejado de seguir **%s** (%s).", village.Name, village.Coords.String()))
}

// resolveVillageArg parses the first argument as coordinates and resolves the
// village. A non-empty reply means a user-facing validation message should be
// sent instead of proceeding.
func resolveVillageArg(ctx context.Context, deps *Dependencies, cmdCtx *domain.CommandContext) (*domain.Village, string, error) {
	if len(cmdCtx.Args) == 0 {
		return nil, "Indica las coordenadas del pueblo, por ejemplo `512|534`.", nil
	}

	coords, ok := domain.ParseCoordinates(cmdCtx.Args[0])
	if !ok {
		return nil, "Coordenadas no válidas, usa el formato `x|y`.", nil
	}

	village, err := deps.World.VillageByCoords(ctx, coords)
	if err != nil {
		return nil, "No se pudieron cargar los datos del mundo, inténtalo de nuevo.", nil
	}
	if village == nil {
		return nil, fmt.Sprintf("No hay ningún pueblo en **%s**.", coords.String()), nil
	}
	return village, "", err
}
