package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Len(t, r.Commands(), len(BuiltinCommands()))
}

func TestResolve_CanonicalAndAlias(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		input   string
		handler string
	}{
		{"tproom", HandlerTpRoom},
		{"exportroom", HandlerExportRoom},
		{"crusher", HandlerCrusher},
		{"roomshelper", HandlerRoomsHelper},
		{"rh", HandlerRoomsHelper},
		{"where", HandlerWhere},
		{"?", HandlerHelp},
	}
	for _, tt := range tests {
		cmd, ok := r.Resolve(tt.input)
		require.True(t, ok, "input %q not found", tt.input)
		assert.Equal(t, tt.handler, cmd.Handler, "input %q wrong handler", tt.input)
	}
}

func TestResolve_NotFound(t *testing.T) {
	r := DefaultRegistry()
	_, ok := r.Resolve("look")
	assert.False(t, ok)
}

func TestNewRegistry_DuplicateName(t *testing.T) {
	_, err := NewRegistry([]Command{{Name: "test", Handler: "a"}, {Name: "test", Handler: "b"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate command name")
}

func TestNewRegistry_DuplicateAlias(t *testing.T) {
	_, err := NewRegistry([]Command{
		{Name: "test1", Aliases: []string{"t"}, Handler: "a"},
		{Name: "test2", Aliases: []string{"t"}, Handler: "b"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate alias")
}

func TestNewRegistry_AliasShadowsName(t *testing.T) {
	_, err := NewRegistry([]Command{
		{Name: "rh", Handler: "a"},
		{Name: "roomshelper", Aliases: []string{"rh"}, Handler: "b"},
	})
	assert.Error(t, err)
}

func TestCommandsByCategory(t *testing.T) {
	cats := DefaultRegistry().CommandsByCategory()
	assert.Len(t, cats[CategoryNavigation], 3)
	assert.Len(t, cats[CategoryHazard], 1)
}

func TestNamesWithPrefix(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{"rh", "roomshelper"}, r.NamesWithPrefix("r"))
	assert.Equal(t, []string{"exportroom"}, r.NamesWithPrefix("EX"))
	assert.Empty(t, r.NamesWithPrefix("zz"))
}

func TestPropertyAllAliasesResolveToCanonical(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := DefaultRegistry()
		cmds := r.Commands()
		cmd := cmds[rapid.IntRange(0, len(cmds)-1).Draw(t, "cmd_idx")]

		resolved, ok := r.Resolve(cmd.Name)
		if !ok || resolved.Name != cmd.Name {
			t.Fatalf("canonical name %q did not resolve to itself", cmd.Name)
		}
		for _, alias := range cmd.Aliases {
			aliasResolved, ok := r.Resolve(alias)
			if !ok || aliasResolved.Name != cmd.Name {
				t.Fatalf("alias %q did not resolve to %q", alias, cmd.Name)
			}
		}
	})
}
