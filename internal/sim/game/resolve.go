package game

import (
	"fmt"
	"strings"

	"github.com/SoulShadow8326/Signesture/internal/protocol"
)

// check runs one probability check against the d20. The final bias folds in
// the players' coordination (combined trust) and the adversary's
// interference, then the roll and verdict are appended to the trace log.
func (w *World) check(difficulty int, bias float64) bool {
	interferenceFactor := float64(100-w.ai.Interference) / 100.0
	coordination := float64(w.playerA.Trust+w.playerB.Trust) / 200.0
	finalBias := bias + coordination*0.1 - (1-interferenceFactor)*0.1
	roll := w.dice.Roll(20, finalBias)
	success := roll >= difficulty
	verdict := "fail"
	if success {
		verdict = "success"
	}
	w.appendLog(fmt.Sprintf("Roll: %d vs %d (bias %.2f) -> %s", roll, difficulty, finalBias, verdict))
	return success
}

// Resolve applies one action event and advances the turn counter by exactly
// one. Unrecognized actions resolve as "unknown" without touching any stat.
func (w *World) Resolve(player string, action protocol.Action) protocol.Outcome {
	actor := &w.playerB
	if strings.EqualFold(player, protocol.RoleTrapped) {
		actor = &w.playerA
	}

	outcome := protocol.Outcome{Player: player, Action: action}
	switch action.Kind {
	case protocol.ActionMove:
		if w.check(10, 0.05) {
			actor.Energy = clampStat(actor.Energy - 5)
			outcome.Result = protocol.ResultMoved
		} else {
			actor.Health = clampStat(actor.Health - 10)
			outcome.Result = protocol.ResultHurt
		}
	case protocol.ActionInteract:
		if w.check(12, 0.1) {
			actor.Trust = clampStat(actor.Trust + 5)
			outcome.Result = protocol.ResultSuccess
		} else {
			actor.Trust = clampStat(actor.Trust - 5)
			outcome.Result = protocol.ResultFail
		}
	case protocol.ActionFreeze:
		if w.check(14, -0.05) {
			w.ai.Interference = clampStat(w.ai.Interference - 10)
			outcome.Result = protocol.ResultFrozen
		} else {
			w.escalate(2)
			outcome.Result = protocol.ResultResist
		}
	case protocol.ActionAssist:
		if w.check(11, 0.08) {
			w.playerA.Trust = clampStat(w.playerA.Trust + 3)
			w.playerB.Trust = clampStat(w.playerB.Trust + 3)
			outcome.Result = protocol.ResultAssisted
		} else {
			outcome.Result = protocol.ResultNoEffect
		}
	case protocol.ActionRoll:
		bias := (float64(action.Value) - 10.5) / 40.0
		if w.check(11, bias) {
			actor.Trust = clampStat(actor.Trust + 4)
			outcome.Result = protocol.ResultRollSuccess
		} else {
			actor.Trust = clampStat(actor.Trust - 3)
			w.escalate(1)
			outcome.Result = protocol.ResultRollFail
		}
	default:
		outcome.Result = protocol.ResultUnknown
	}

	w.turn++
	return outcome
}

// ResolveTurn is the periodic pressure tick layered on top of per-action
// resolution. It must run exactly once after each resolved action; every
// third turn the adversary escalates and both players bleed energy.
func (w *World) ResolveTurn() {
	if w.turn%3 != 0 {
		return
	}
	w.escalate(1)
	w.playerA.Energy = clampStat(w.playerA.Energy - 2)
	w.playerB.Energy = clampStat(w.playerB.Energy - 1)
}
