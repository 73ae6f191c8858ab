package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcosgv/tribalbot/internal/domain"
)

type fakeCommand struct {
	name  string
	calls int
	err   error
}

func (f *fakeCommand) Name() string        { return f.name }
func (f *fakeCommand) Description() string { return "fake" }
func (f *fakeCommand) Usage() string       { return f.name }

func (f *fakeCommand) Execute(_ context.Context, _ *domain.CommandContext) error {
	f.calls++
	return f.err
}

func TestRegistryExecuteIsCaseInsensitive(t *testing.T) {
	registry := NewRegistry()
	cmd := &fakeCommand{name: "Jugador"}
	registry.Register(cmd)

	cmdCtx := domain.NewCommandContext("chan", "user", "name", "!JUGADOR", nil)
	require.NoError(t, registry.Execute(context.Background(), cmdCtx, "JUGADOR"))
	require.NoError(t, registry.Execute(context.Background(), cmdCtx, "jugador"))
	assert.Equal(t, 2, cmd.calls)
}

func TestRegistryUnknownCommand(t *testing.T) {
	registry := NewRegistry()

	err := registry.Execute(context.Background(), &domain.CommandContext{}, "nada")
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestRegistryAllSortedByName(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&fakeCommand{name: "tribu"})
	registry.Register(&fakeCommand{name: "ayuda"})
	registry.Register(&fakeCommand{name: "pueblo"})

	all := registry.All()
	require.Len(t, all, 3)
	assert.Equal(t, "ayuda", all[0].Name())
	assert.Equal(t, "pueblo", all[1].Name())
	assert.Equal(t, "tribu", all[2].Name())
	assert.Equal(t, 3, registry.Count())
}

func TestRegistryRegisterNilIsIgnored(t *testing.T) {
	registry := NewRegistry()
	registry.Register(nil)
	assert.Zero(t, registry.Count())
}
