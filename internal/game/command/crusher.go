package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/cory-johannsen/roomshelper/internal/game/hazard"
)

func crusherCompletions() []string {
	return []string{"save", "delete", "ticks", "pause"}
}

// HandleCrusher handles "/crusher" and its subcommands.
func HandleCrusher(env *Env, args []string) []string {
	tool := env.Tool
	if len(args) == 0 {
		tool.Begin()
		return []string{"Click first point..."}
	}

	switch args[0] {
	case "save":
		return saveCrusher(env)
	case "delete":
		return deleteCrusher(env)
	case "ticks", "pause":
		n, ok := parseTicks(args)
		if !ok {
			return []string{"Invalid tick amount"}
		}
		if args[0] == "ticks" {
			if err := tool.SetTicks(n); err != nil {
				return []string{crusherError(err)}
			}
			return []string{fmt.Sprintf("Set current crusher's ticks per block to %d", n)}
		}
		if err := tool.SetPause(n); err != nil {
			return []string{crusherError(err)}
		}
		return []string{fmt.Sprintf("Set current crusher's pause duration to %d", n)}
	default:
		return []string{"Usage: /crusher [save|delete|ticks <n>|pause <n>]"}
	}
}

func parseTicks(args []string) (int, bool) {
	if len(args) < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func saveCrusher(env *Env) []string {
	_, err := env.Tool.Save(env.Rooms.Current())
	var inc *hazard.IncompleteError
	switch {
	case err == nil:
		return []string{"Added crusher entry to room. Do /exportroom to save it."}
	case errors.As(err, &inc):
		lines := make([]string, 0, len(inc.Fields)+1)
		for _, f := range inc.Fields {
			lines = append(lines, fmt.Sprintf("Key %q is null.", f))
		}
		return append(lines, "Null values present! Set these before saving.")
	default:
		return []string{crusherError(err)}
	}
}

func deleteCrusher(env *Env) []string {
	p := env.Player.PlayerPosition()
	res, err := env.Tool.Delete(env.Rooms.Current(), p.X, p.Y, p.Z)
	if err != nil {
		return []string{crusherError(err)}
	}
	if res.Reset {
		return []string{"Reset current crusher."}
	}
	return []string{"Deleted crusher. Do /exportroom to save."}
}

func crusherError(err error) string {
	switch {
	case errors.Is(err, hazard.ErrNoDraft):
		return "No crusher set!"
	case errors.Is(err, hazard.ErrNoRoom):
		return "No room!"
	case errors.Is(err, hazard.ErrNothingToDelete):
		return "Nothing to delete!"
	case errors.Is(err, hazard.ErrInvalidTicks):
		return "Invalid tick amount"
	default:
		return err.Error()
	}
}

// DescribeStep returns the chat lines shown after a capture click.
func DescribeStep(step hazard.Step, draft *hazard.Draft) []string {
	switch step {
	case hazard.StepCorner1:
		return []string{"Set second point..."}
	case hazard.StepFootprint:
		return []string{draftJSON(draft), "Width and height set. Click another spot to set the length."}
	case hazard.StepTravel:
		return []string{draftJSON(draft)}
	default:
		return nil
	}
}

func draftJSON(d *hazard.Draft) string {
	b, err := json.MarshalIndent(d, "", "    ")
	if err != nil {
		return err.Error()
	}
	return string(b)
}
