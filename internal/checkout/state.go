package checkout

// State tags the orchestrator's position in the payment flow. Idle doubles as
// the terminal state: the flow ends there after full success and after any
// pre-capture failure.
type State string

const (
	StateIdle                 State = "IDLE"
	StateRequestingIntent     State = "REQUESTING_INTENT"
	StateAwaitingConfirmation State = "AWAITING_CONFIRMATION"
	StateFinalizing           State = "FINALIZING"
)

var transitions = map[State][]State{
	StateIdle:                 {StateRequestingIntent},
	StateRequestingIntent:     {StateAwaitingConfirmation, StateIdle},
	StateAwaitingConfirmation: {StateFinalizing, StateIdle},
	StateFinalizing:           {StateIdle},
}

func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// String representation (for logging)
func (s State) String() string {
	return string(s)
}
