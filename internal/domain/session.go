package domain

import (
	"maps"
	"time"
)

// SessionEntry is the live cooking state of one recipe.
type SessionEntry struct {
	CurrentStepIndex    int
	IsRunning           bool
	StepRemainingSec    int
	OverallRemainingSec int
	LastTickAt          time.Time // last clock sample; zero only before the first one
}

// Status returns the session's lifecycle state.
func (e SessionEntry) Status() SessionStatus {
	if e.IsRunning {
		return SessionRunning
	}
	return SessionPaused
}

// SessionState is the process-wide view of cooking sessions. At most one
// recipe is active; ActiveRecipeID is empty or a key of Entries.
type SessionState struct {
	ActiveRecipeID string
	Entries        map[string]SessionEntry
	// LastEnd is how the most recent session left the engine. Reset by Start.
	LastEnd EndReason
}

// EndReason distinguishes a recipe that ran to the end from one the cook
// abandoned.
type EndReason int

const (
	EndNone EndReason = iota
	// EndFinished: the final step ran out or was skipped.
	EndFinished
	// EndCleared: the session was cleared before it finished.
	EndCleared
)

// String returns a human-readable end reason.
func (r EndReason) String() string {
	switch r {
	case EndFinished:
		return "finished"
	case EndCleared:
		return "cleared"
	default:
		return "none"
	}
}

// Active returns the entry of the active recipe, if any.
func (s SessionState) Active() (SessionEntry, bool) {
	if s.ActiveRecipeID == "" {
		return SessionEntry{}, false
	}
	e, ok := s.Entries[s.ActiveRecipeID]
	return e, ok
}

// Clone returns a copy that shares nothing with s.
func (s SessionState) Clone() SessionState {
	return SessionState{
		ActiveRecipeID: s.ActiveRecipeID,
		Entries:        maps.Clone(s.Entries),
		LastEnd:        s.LastEnd,
	}
}

// SessionStatus tracks the lifecycle of a cooking session.
type SessionStatus int

const (
	SessionIdle SessionStatus = iota
	SessionRunning
	SessionPaused
)

// String returns a human-readable session status.
func (s SessionStatus) String() string {
	switch s {
	case SessionIdle:
		return "idle"
	case SessionRunning:
		return "running"
	case SessionPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// StepStatus is where a step sits relative to the session's position.
type StepStatus int

const (
	StepUpcoming StepStatus = iota
	StepCurrent
	StepCompleted
)

// String returns a human-readable step status.
func (s StepStatus) String() string {
	switch s {
	case StepCurrent:
		return "Current"
	case StepCompleted:
		return "Completed"
	default:
		return "Upcoming"
	}
}
