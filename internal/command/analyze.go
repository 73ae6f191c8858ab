package command

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/marcosgv/tribalbot/internal/constants"
	"github.com/marcosgv/tribalbot/internal/domain"
	"github.com/marcosgv/tribalbot/internal/util"
)

const defaultAnalysisDays = 7

type AnalyzeCommand struct {
	deps *Dependencies
}

func NewAnalyzeCommand(deps *Dependencies) *AnalyzeCommand {
	return &AnalyzeCommand{deps: deps}
}

func (c *AnalyzeCommand) Name() string { return "analisis" }
func (c *AnalyzeCommand) Description() string {
	return "Infiere las construcciones de un pueblo a partir de sus puntos"
}
func (c *AnalyzeCommand) Usage() string { return "analisis <x|y> [días] [edificio]" }

func (c *AnalyzeCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext) error {
	if len(cmdCtx.Args) == 0 {
		return c.deps.SendMessage(cmdCtx.ChannelID, "Uso: "+c.Usage())
	}

	coords, ok := domain.ParseCoordinates(cmdCtx.Args[0])
	if !ok {
		return c.deps.SendMessage(cmdCtx.ChannelID, "Coordenadas no válidas, usa el formato `x|y`.")
	}

	days := defaultAnalysisDays
	buildingFilter := ""
	if len(cmdCtx.Args) >= 2 {
		if n, err := strconv.Atoi(cmdCtx.Args[1]); err == nil && n > 0 {
			days = n
			if len(cmdCtx.Args) >= 3 {
				buildingFilter = strings.ToLower(cmdCtx.Args[2])
			}
		} else {
			buildingFilter = strings.ToLower(cmdCtx.Args[1])
		}
	}
	if buildingFilter != "" && c.deps.Catalog.Get(buildingFilter) == nil {
		return c.deps.SendMessage(cmdCtx.ChannelID,
			fmt.Sprintf("Edificio desconocido: **%s**.", buildingFilter))
	}

	village, err := c.deps.World.VillageByCoords(ctx, coords)
	if err != nil {
		return c.deps.SendMessage(cmdCtx.ChannelID, "No se pudieron cargar los datos del mundo, inténtalo de nuevo.")
	}
	if village == nil {
		return c.deps.SendMessage(cmdCtx.ChannelID, fmt.Sprintf("No hay ningún pueblo en **%s**.", coords.String()))
	}

	since := time.Now().AddDate(0, 0, -days).Unix()
	series, err := c.deps.Snapshots.Series(ctx, village.ID, since)
	if err != nil {
		return err
	}

	analysis := c.deps.Engine.Analyze(series, buildingFilter, since)
	if analysis.InsufficientData {
		return c.deps.SendMessage(cmdCtx.ChannelID,
			fmt.Sprintf("No hay suficientes muestras de **%s** en los últimos %d días. Usa `seguir %s` para empezar a muestrearlo.",
				village.Name, days, coords.String()))
	}

	return c.deps.SendMessage(cmdCtx.ChannelID, c.render(village, days, analysis))
}

func (c *AnalyzeCommand) render(village *domain.Village, days int, analysis domain.UpgradeAnalysis) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**Análisis de %s (%s)** — últimos %d días\n",
		village.Name, village.Coords.String(), days))
	sb.WriteString(fmt.Sprintf("Periodos con actividad: %d | Confianza: %s\n",
		analysis.Periods, confidenceLabel(analysis.Confidence)))

	if len(analysis.UpgradeCounts) > 0 {
		sb.WriteString("\n**Mejoras más probables**\n")
		keys := make([]string, 0, len(analysis.UpgradeCounts))
		for key := range analysis.UpgradeCounts {
			keys = append(keys, key)
		}
		sort.Slice(keys, func(i, j int) bool {
			if analysis.UpgradeCounts[keys[i]] != analysis.UpgradeCounts[keys[j]] {
				return analysis.UpgradeCounts[keys[i]] > analysis.UpgradeCounts[keys[j]]
			}
			return keys[i] < keys[j]
		})
		for _, key := range keys {
			sb.WriteString(fmt.Sprintf("%s: %d nivel(es)\n", c.buildingName(key), analysis.UpgradeCounts[key]))
		}
	}

	shown := 0
	for _, delta := range analysis.Deltas {
		if shown >= 5 {
			sb.WriteString(fmt.Sprintf("\n(y %d periodos más)\n", len(analysis.Deltas)-shown))
			break
		}
		shown++

		sb.WriteString(fmt.Sprintf("\n%s → %s: **+%d pts**\n",
			util.FormatIn(delta.From.Timestamp, c.deps.Location, "02/01 15:04"),
			util.FormatIn(delta.To.Timestamp, c.deps.Location, "02/01 15:04"),
			delta.Delta,
		))
		if !delta.Explained() {
			sb.WriteString("Sin hipótesis que expliquen este salto.\n")
			continue
		}
		for i, hyp := range delta.Hypotheses {
			if i >= 3 {
				break
			}
			sb.WriteString(fmt.Sprintf("• %s\n", c.describeHypothesis(hyp)))
		}
	}

	return util.TruncateString(sb.String(), constants.StringLimits.MessageLength)
}

func (c *AnalyzeCommand) describeHypothesis(hyp domain.UpgradeHypothesis) string {
	parts := make([]string, 0, len(hyp.Steps))
	for _, step := range hyp.Steps {
		parts = append(parts, fmt.Sprintf("%s %d→%d", c.buildingName(step.Building), step.FromLevel, step.ToLevel))
	}
	return strings.Join(parts, " + ")
}

func (c *AnalyzeCommand) buildingName(key string) string {
	if b := c.deps.Catalog.Get(key); b != nil {
		return b.Name
	}
	return key
}

func confidenceLabel(conf domain.Confidence) string {
	switch conf {
	case domain.ConfidenceHigh:
		return "alta"
	case domain.ConfidenceMedium:
		return "media"
	default:
		return "baja"
	}
}
