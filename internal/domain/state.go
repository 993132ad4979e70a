package domain

// State is a step of one attestation run.
type State string

const (
	StateIdle      State = "idle"
	StateSearching State = "searching"
	StateFound     State = "found"
	StateExhausted State = "exhausted"
	StateSigning   State = "signing"
	StateSigned    State = "signed"
	StateVerifying State = "verifying"
	StateVerified  State = "verified"
	StateRejected  State = "rejected"
	StateFailed    State = "failed"
)

var transitions = map[State][]State{
	StateIdle:      {StateSearching, StateVerifying, StateFailed},
	StateSearching: {StateFound, StateExhausted, StateFailed},
	StateFound:     {StateSigning, StateFailed},
	StateSigning:   {StateSigned, StateFailed},
	StateSigned:    {StateVerifying, StateFailed},
	StateVerifying: {StateVerified, StateRejected, StateFailed},
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	_, ok := transitions[s]
	return !ok
}

// CanTransition reports whether s may move to next.
func (s State) CanTransition(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
