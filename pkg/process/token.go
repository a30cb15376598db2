package process

import "time"

// State is the state a token recorded for one transition.
type State string

// Token transition states. Other values are tolerated and rendered neutral.
const (
	StateWaiting     State = "waiting"
	StatePassed      State = "passed"
	StateInterrupted State = "interrupted"
)

// Token is one execution thread through a process.
type Token struct {
	ID          string            `json:"id"`
	Transitions []TokenTransition `json:"transitions"`
}

// TokenTransition records a token taking, waiting on, or being interrupted on
// a transition. Exception is empty when the step raised nothing; a boolean
// true in JSON decodes to "true".
type TokenTransition struct {
	ID           string    `json:"id,omitempty"`
	TransitionID string    `json:"transition"`
	State        State     `json:"state"`
	Exception    string    `json:"exception,omitempty"`
	Time         time.Time `json:"time,omitzero"`
}

// HasException reports whether the record carries an exception.
func (tt TokenTransition) HasException() bool { return tt.Exception != "" }
