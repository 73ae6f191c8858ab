package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/marcosgv/tribalbot/internal/domain"
)

type HelpCommand struct {
	deps     *Dependencies
	registry *Registry
	prefix   string
}

func NewHelpCommand(deps *Dependencies, registry *Registry, prefix string) *HelpCommand {
	return &HelpCommand{deps: deps, registry: registry, prefix: prefix}
}

func (c *HelpCommand) Name() string        { return "ayuda" }
func (c *HelpCommand) Description() string { return "Lista los comandos disponibles" }
func (c *HelpCommand) Usage() string       { return "ayuda" }

func (c *HelpCommand) Execute(_ context.Context, cmdCtx *domain.CommandContext) error {
	var sb strings.Builder
	sb.WriteString("**Comandos disponibles**\n")
	for _, handler := range c.registry.All() {
		sb.WriteString(fmt.Sprintf("`%s%s` — %s\n", c.prefix, handler.Usage(), handler.Description()))
	}
	return c.deps.SendMessage(cmdCtx.ChannelID, sb.String())
}
