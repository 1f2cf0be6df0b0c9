package command

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"
)

// SpeedBootsCommand gives the player unbreakable boots with a large movement
// speed modifier.
const SpeedBootsCommand = `give @p leather_boots 1 0 {display:{color:0,Name:"Speedy Boots"},ench:[{lvl:127,id:2}],AttributeModifiers:[{AttributeName:"generic.movementSpeed",Amount:0.4,UUIDLeast:276246000,UUIDMost:99,Name:1728205246861}],Unbreakable:1,HideFlags:5}`

func roomsHelperCompletions() []string {
	return []string{"speedboots", "flyspeed", "noclip", "sp", "c"}
}

// HandleRoomsHelper handles "/roomshelper" (alias "/rh"). flyspeed and sp act
// only on the tracked host and are silently ignored elsewhere.
func HandleRoomsHelper(env *Env, args []string) []string {
	if len(args) == 0 {
		return []string{"Usage: /roomshelper <speedboots|flyspeed <speed>|sp>"}
	}
	switch args[0] {
	case "speedboots":
		if err := env.Client.RunCommand(SpeedBootsCommand); err != nil {
			return []string{clientError(env, "speedboots", err)}
		}
		return nil
	case "flyspeed":
		if !env.isLocal() {
			return nil
		}
		if len(args) < 2 {
			return []string{"Invalid fly speed"}
		}
		speed, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return []string{"Invalid fly speed"}
		}
		if err := env.Client.SetFlySpeed(speed); err != nil {
			return []string{clientError(env, "flyspeed", err)}
		}
		return []string{fmt.Sprintf("Fly speed set to %g", speed)}
	case "sp":
		if !env.isLocal() {
			return nil
		}
		on, err := env.Client.EnterSpectator()
		if err != nil {
			return []string{clientError(env, "sp", err)}
		}
		return []string{strconv.FormatBool(on)}
	default:
		return nil
	}
}

func clientError(env *Env, op string, err error) string {
	env.Logger.Warn("client action failed", zap.String("op", op), zap.Error(err))
	return fmt.Sprintf("%s failed: %v", op, err)
}
