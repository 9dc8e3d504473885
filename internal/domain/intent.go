package domain

// IntentType classifies what the user wants to do.
type IntentType int

const (
	IntentUnknown IntentType = iota
	IntentListRecipes
	IntentStartCooking
	IntentPauseResume
	IntentPause
	IntentResume
	IntentStopStep
	IntentClear
	IntentStatus
	IntentToggleView
	IntentHelp
	IntentQuit
)

var intentNames = map[IntentType]string{
	IntentUnknown:      "unknown",
	IntentListRecipes:  "list_recipes",
	IntentStartCooking: "start_cooking",
	IntentPauseResume:  "pause_resume",
	IntentPause:        "pause",
	IntentResume:       "resume",
	IntentStopStep:     "stop_step",
	IntentClear:        "clear",
	IntentStatus:       "status",
	IntentToggleView:   "toggle_view",
	IntentHelp:         "help",
	IntentQuit:         "quit",
}

// String returns the snake_case intent name.
func (i IntentType) String() string {
	if n, ok := intentNames[i]; ok {
		return n
	}
	return "unknown"
}

// Intent represents a parsed user action.
type Intent struct {
	Type    IntentType
	Payload string // optional context, e.g. recipe ID or list position for start
}
