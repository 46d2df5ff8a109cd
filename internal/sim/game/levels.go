package game

// Level transitions are discrete narrative checkpoints invoked externally;
// they are not derived from the turn counter. Re-invoking one resets the
// level value but applies its escalation again, so duplicate requests
// compound corruption (kept as-is pending product clarification).

// LevelOne seeds the adversary at fixed starting pressure rather than
// going through escalate, so a fresh campaign always opens at
// corruption 5 / interference 2.
func (w *World) LevelOne() {
	w.level = 1
	w.appendLog("Level One")
	w.ai.Corruption = 5
	w.ai.Interference = 2
}

func (w *World) LevelTwo() {
	w.level = 2
	w.appendLog("Level Two")
	w.escalate(10)
}

func (w *World) LevelThree() {
	w.level = 3
	w.appendLog("Level Three")
	w.escalate(20)
}

func (w *World) FinalCore() {
	w.level = 4
	w.appendLog("Final Core")
	w.escalate(40)
}
