package command

import (
	"context"
	"fmt"
	"strings"
)

// Execute runs a chat command line and returns the chat lines to show.
//
// Precondition: env must be fully populated.
// Postcondition: Unknown commands produce a single error line.
func Execute(ctx context.Context, env *Env, reg *Registry, line string) []string {
	p := Parse(line)
	if p.Command == "" {
		return nil
	}
	cmd, ok := reg.Resolve(p.Command)
	if !ok {
		return []string{fmt.Sprintf("Unknown command: %s", p.Command)}
	}

	switch cmd.Handler {
	case HandlerTpRoom:
		return HandleTpRoom(env, p.Args)
	case HandlerExportRoom:
		return HandleExportRoom(ctx, env, p.Args)
	case HandlerCrusher:
		return HandleCrusher(env, p.Args)
	case HandlerRoomsHelper:
		return HandleRoomsHelper(env, p.Args)
	case HandlerWhere:
		return HandleWhere(env)
	case HandlerHelp:
		return HandleHelp(reg)
	default:
		return []string{fmt.Sprintf("Command %s has no handler", cmd.Name)}
	}
}

// Complete returns tab completions for a partial command line.
//
// Postcondition: While the command word is incomplete, matching command names
// are returned; otherwise the command's argument completions.
func Complete(env *Env, reg *Registry, line string) []string {
	trimmed := strings.TrimPrefix(strings.TrimLeft(line, " "), "/")
	if !strings.Contains(trimmed, " ") {
		return reg.NamesWithPrefix(trimmed)
	}
	p := Parse(trimmed)
	cmd, ok := reg.Resolve(p.Command)
	if !ok {
		return nil
	}
	switch cmd.Handler {
	case HandlerTpRoom:
		return CompleteTpRoom(env, p.Args)
	case HandlerExportRoom:
		return []string{"list"}
	case HandlerCrusher:
		return crusherCompletions()
	case HandlerRoomsHelper:
		return roomsHelperCompletions()
	default:
		return nil
	}
}

// HandleHelp lists every command grouped by category.
func HandleHelp(reg *Registry) []string {
	var lines []string
	for _, cat := range []string{CategoryNavigation, CategorySurvey, CategoryHazard, CategoryClient} {
		for _, cmd := range reg.CommandsByCategory()[cat] {
			lines = append(lines, fmt.Sprintf("%s - %s", cmd.Usage, cmd.Help))
		}
	}
	return lines
}

// HandleWhere prints the overlay lines for the current room.
func HandleWhere(env *Env) []string {
	if env.Rooms.Current() == nil {
		return []string{"No room!"}
	}
	return env.Overlay()
}
