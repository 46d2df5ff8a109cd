package protocol

import "encoding/json"

// Result tags for a resolved action.
const (
	ResultMoved       = "moved"
	ResultHurt        = "hurt"
	ResultSuccess     = "success"
	ResultFail        = "fail"
	ResultFrozen      = "frozen"
	ResultResist      = "resist"
	ResultAssisted    = "assisted"
	ResultNoEffect    = "no_effect"
	ResultRollSuccess = "roll_success"
	ResultRollFail    = "roll_fail"
	ResultUnknown     = "unknown"
)

// Role identifiers for the two fixed participants.
const (
	RoleTrapped  = "A"
	RoleOperator = "B"
)

// DecodeEvent parses one inbound event message.
func DecodeEvent(b []byte) (EventMsg, error) {
	var m EventMsg
	err := json.Unmarshal(b, &m)
	return m, err
}
