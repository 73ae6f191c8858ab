package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/marcosgv/tribalbot/internal/domain"
	"github.com/marcosgv/tribalbot/internal/util"
)

type MonitorCommand struct {
	deps *Dependencies
}

func NewMonitorCommand(deps *Dependencies) *MonitorCommand {
	return &MonitorCommand{deps: deps}
}

func (c *MonitorCommand) Name() string        { return "conquistas" }
func (c *MonitorCommand) Description() string { return "Controla el aviso automático de conquistas" }
func (c *MonitorCommand) Usage() string {
	return "conquistas <on|off|estado|modo|filtro|tribu> [...]"
}

func (c *MonitorCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext) error {
	if len(cmdCtx.Args) == 0 {
		return c.deps.SendMessage(cmdCtx.ChannelID, "Uso: "+c.Usage())
	}

	switch strings.ToLower(cmdCtx.Args[0]) {
	case "on":
		return c.enable(cmdCtx)
	case "off":
		return c.disable(cmdCtx)
	case "estado":
		return c.status(cmdCtx)
	case "modo":
		return c.setMode(cmdCtx)
	case "filtro":
		return c.setFilter(cmdCtx)
	case "tribu":
		return c.setTribe(ctx, cmdCtx)
	default:
		return c.deps.SendMessage(cmdCtx.ChannelID, "Uso: "+c.Usage())
	}
}

// enable accepts zero, one or two channel references. With none, the invoking
// channel receives both gains and losses; with one, it receives both too. The
// notifier starts its loop under its own lifecycle context, not the command's.
func (c *MonitorCommand) enable(cmdCtx *domain.CommandContext) error {
	gains := cmdCtx.ChannelID
	losses := cmdCtx.ChannelID
	if len(cmdCtx.Args) >= 2 {
		gains = stripChannelMention(cmdCtx.Args[1])
		losses = gains
	}
	if len(cmdCtx.Args) >= 3 {
		losses = stripChannelMention(cmdCtx.Args[2])
	}

	if err := c.deps.Notifier.Enable(gains, losses); err != nil {
		return err
	}
	return c.deps.SendMessage(cmdCtx.ChannelID,
		fmt.Sprintf("Aviso de conquistas activado. Ganancias en <#%s>, pérdidas en <#%s>.", gains, losses))
}

func (c *MonitorCommand) disable(cmdCtx *domain.CommandContext) error {
	if err := c.deps.Notifier.Disable(); err != nil {
		return err
	}
	return c.deps.SendMessage(cmdCtx.ChannelID, "Aviso de conquistas desactivado.")
}

func (c *MonitorCommand) status(cmdCtx *domain.CommandContext) error {
	cfg, err := c.deps.Notifier.Config()
	if err != nil {
		return err
	}
	if cfg == nil || !cfg.Enabled {
		return c.deps.SendMessage(cmdCtx.ChannelID, "El aviso de conquistas está **desactivado**.")
	}

	var sb strings.Builder
	sb.WriteString("El aviso de conquistas está **activado**.\n")
	sb.WriteString(fmt.Sprintf("Modo: %s\n", cfg.Mode))
	sb.WriteString(fmt.Sprintf("Ganancias: <#%s> | Pérdidas: <#%s>\n", cfg.GainsChannelID, cfg.LossesChannelID))
	if cfg.HomeTribeTag != "" {
		sb.WriteString(fmt.Sprintf("Tribu propia: [%s]\n", cfg.HomeTribeTag))
	}
	if cfg.Filter.Mode == domain.FilterSpecific {
		sb.WriteString(fmt.Sprintf("Filtro: %s\n", cfg.Filter.TribeName))
	} else {
		sb.WriteString("Filtro: todas las conquistas\n")
	}
	if cfg.Watermark > 0 {
		sb.WriteString(fmt.Sprintf("Último ciclo procesado: %s\n",
			util.FormatIn(cfg.Watermark, c.deps.Location, "02/01/2006 15:04")))
	}
	if !c.deps.Notifier.Running() {
		sb.WriteString("(el bucle de sondeo no está en marcha)\n")
	}
	return c.deps.SendMessage(cmdCtx.ChannelID, sb.String())
}

func (c *MonitorCommand) setMode(cmdCtx *domain.CommandContext) error {
	if len(cmdCtx.Args) < 2 {
		return c.deps.SendMessage(cmdCtx.ChannelID, "Uso: conquistas modo <fast|normal|slow>")
	}

	mode := domain.PollMode(strings.ToLower(cmdCtx.Args[1]))
	if err := c.deps.Notifier.SetMode(mode); err != nil {
		return c.deps.SendMessage(cmdCtx.ChannelID, "Modo no válido, usa `fast`, `normal` o `slow`.")
	}
	return c.deps.SendMessage(cmdCtx.ChannelID, fmt.Sprintf("Modo de sondeo cambiado a **%s**.", mode))
}

func (c *MonitorCommand) setFilter(cmdCtx *domain.CommandContext) error {
	name := ""
	if len(cmdCtx.Args) >= 2 {
		name = strings.Join(cmdCtx.Args[1:], " ")
	}
	if strings.EqualFold(name, "todas") {
		name = ""
	}

	if err := c.deps.Notifier.SetFilter(name); err != nil {
		return err
	}
	if name == "" {
		return c.deps.SendMessage(cmdCtx.ChannelID, "Filtro eliminado, se avisará de todas las conquistas.")
	}
	return c.deps.SendMessage(cmdCtx.ChannelID,
		fmt.Sprintf("Filtro activado: solo conquistas de la tribu **%s** (y pérdidas propias).", name))
}

func (c *MonitorCommand) setTribe(ctx context.Context, cmdCtx *domain.CommandContext) error {
	if len(cmdCtx.Args) < 2 {
		return c.deps.SendMessage(cmdCtx.ChannelID, "Uso: conquistas tribu <tag o nombre>")
	}

	query := strings.Join(cmdCtx.Args[1:], " ")
	lookupCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	tribe, err := c.deps.World.TribeByTagOrName(lookupCtx, query)
	if err != nil {
		return c.deps.SendMessage(cmdCtx.ChannelID, "No se pudieron cargar los datos del mundo, inténtalo de nuevo.")
	}
	if tribe == nil {
		return c.deps.SendMessage(cmdCtx.ChannelID, fmt.Sprintf("No encuentro la tribu **%s**.", query))
	}

	if err := c.deps.Notifier.SetHomeTribe(tribe); err != nil {
		return err
	}
	return c.deps.SendMessage(cmdCtx.ChannelID,
		fmt.Sprintf("Tribu propia establecida: **%s [%s]**.", tribe.Name, tribe.Tag))
}

// stripChannelMention turns <#123456> into 123456; bare ids pass through.
func stripChannelMention(s string) string {
	s = strings.TrimPrefix(s, "<#")
	return strings.TrimSuffix(s, ">")
}
