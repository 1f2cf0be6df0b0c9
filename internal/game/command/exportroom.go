package command

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// HandleExportRoom scans the current room and writes its export. With
// "list" it reports the saved exports sharing the current room's room_id.
func HandleExportRoom(ctx context.Context, env *Env, args []string) []string {
	cur := env.Rooms.Current()
	if cur == nil {
		return []string{"No room!"}
	}
	if len(args) > 0 && args[0] == "list" {
		return listExports(ctx, env, cur.RoomID)
	}
	res, err := env.Exporter.Export(ctx, cur)
	if err != nil {
		env.Logger.Error("export failed", zap.String("corner_id", cur.ID), zap.Error(err))
		return []string{fmt.Sprintf("Export failed: %v", err)}
	}
	return []string{fmt.Sprintf("Export took %dms", res.Elapsed.Milliseconds())}
}

func listExports(ctx context.Context, env *Env, roomID string) []string {
	keys, err := env.Exporter.Exports(ctx, roomID)
	if err != nil {
		env.Logger.Error("listing exports failed", zap.String("room_id", roomID), zap.Error(err))
		return []string{fmt.Sprintf("Listing exports failed: %v", err)}
	}
	if len(keys) == 0 {
		return []string{fmt.Sprintf("No exports for room %s", roomID)}
	}
	return []string{fmt.Sprintf("Exports of room %s: %s", roomID, strings.Join(keys, " | "))}
}
