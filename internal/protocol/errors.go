package protocol

// Wire error texts. These are part of the client contract and must not be
// reworded without a protocol bump.
const (
	ErrTextInvalidJSON    = "invalid json"
	ErrTextMissingFields  = "missing player or action"
	ErrTextInvalidPayload = "invalid payload"
	ErrTextUnknownGesture = "unknown gesture"
)

var knownErrorTexts = map[string]struct{}{
	ErrTextInvalidJSON:    {},
	ErrTextMissingFields:  {},
	ErrTextInvalidPayload: {},
	ErrTextUnknownGesture: {},
}

func IsKnownErrorText(text string) bool {
	_, ok := knownErrorTexts[text]
	return ok
}
