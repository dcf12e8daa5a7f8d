package pipeline

// State identifies where a processing run currently is. Decoding and
// encoding sit outside the core; the run starts from an already decoded
// buffer and ends with a buffer ready for encoding.
type State int

const (
	StateIdle State = iota
	StateAnalyzing
	StateLowCut
	StateSplitting
	StateCompressing
	StateRecombining
	StateEqualizing
	StateShaping
	StateMeasuring
	StateNormalizing
	StateDone
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:        "idle",
	StateAnalyzing:   "analyzing",
	StateLowCut:      "low-cut",
	StateSplitting:   "splitting",
	StateCompressing: "compressing",
	StateRecombining: "recombining",
	StateEqualizing:  "equalizing",
	StateShaping:     "shaping",
	StateMeasuring:   "measuring",
	StateNormalizing: "normalizing",
	StateDone:        "done",
	StateFailed:      "failed",
}

// String returns the state name.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}

	return "unknown"
}
