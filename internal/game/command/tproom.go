package command

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// HandleTpRoom handles "/tproom <name> [index]". Underscores in name match
// spaces; the index wraps around the number of instances.
//
// Postcondition: On a match the client is sent "tp @p <x> 100 <z>".
func HandleTpRoom(env *Env, args []string) []string {
	if len(args) == 0 {
		return []string{"Usage: /tproom <name> [index]"}
	}
	candidates := env.Catalog.ByName(args[0])
	if len(candidates) == 0 {
		return []string{"Room not found!"}
	}

	idx := 0
	if len(args) > 1 {
		if n, err := strconv.Atoi(args[1]); err == nil {
			idx = ((n % len(candidates)) + len(candidates)) % len(candidates)
		}
	}

	ids := make([]string, len(candidates))
	for i, d := range candidates {
		ids[i] = d.ID
	}
	lines := []string{"Ids: " + strings.Join(ids, " | ")}

	target := candidates[idx]
	if err := env.Client.RunCommand(fmt.Sprintf("tp @p %d 100 %d", target.X, target.Z)); err != nil {
		env.Logger.Warn("teleport failed", zap.String("corner_id", target.ID), zap.Error(err))
		lines = append(lines, fmt.Sprintf("Teleport failed: %v", err))
	}
	return lines
}

// CompleteTpRoom completes room names, normalized with underscores, by
// case-insensitive prefix.
func CompleteTpRoom(env *Env, args []string) []string {
	names := env.Catalog.NormalizedNames()
	if len(args) == 0 {
		return names
	}
	prefix := strings.ToLower(args[0])
	var out []string
	for _, n := range names {
		if strings.HasPrefix(n, prefix) {
			out = append(out, n)
		}
	}
	return out
}
