// Package command provides the chat command registry, parser, and the
// built-in rooms helper commands.
package command

// Categories for organizing commands.
const (
	CategoryNavigation = "navigation"
	CategorySurvey     = "survey"
	CategoryHazard     = "hazard"
	CategoryClient     = "client"
)

// Handler identifiers mapping commands to their implementation.
const (
	HandlerTpRoom      = "tproom"
	HandlerExportRoom  = "exportroom"
	HandlerCrusher     = "crusher"
	HandlerRoomsHelper = "roomshelper"
	HandlerWhere       = "where"
	HandlerHelp        = "help"
)

// Command defines a chat command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Help is the short help text.
	Help string
	// Usage is the argument synopsis shown on misuse.
	Usage string
	// Category groups the command.
	Category string
	// Handler selects the implementation.
	Handler string
}

// BuiltinCommands returns all built-in commands.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "tproom", Help: "Teleport to a room by name", Usage: "/tproom <name> [index]", Category: CategoryNavigation, Handler: HandlerTpRoom},
		{Name: "where", Help: "Show the current room", Usage: "/where", Category: CategoryNavigation, Handler: HandlerWhere},
		{Name: "exportroom", Help: "Scan the current room and save its export", Usage: "/exportroom [list]", Category: CategorySurvey, Handler: HandlerExportRoom},
		{Name: "crusher", Help: "Capture and edit crusher hazards", Usage: "/crusher [save|delete|ticks <n>|pause <n>]", Category: CategoryHazard, Handler: HandlerCrusher},
		{Name: "roomshelper", Aliases: []string{"rh"}, Help: "Client conveniences", Usage: "/roomshelper <speedboots|flyspeed <speed>|sp>", Category: CategoryClient, Handler: HandlerRoomsHelper},
		{Name: "help", Aliases: []string{"?"}, Help: "Show available commands", Usage: "/help", Category: CategoryNavigation, Handler: HandlerHelp},
	}
}
