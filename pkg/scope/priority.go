package scope

// Priority is the scheduling class attached to a dirty mark.
type Priority uint8

const (
	// PriorityHigh is used for updates caused by user input.
	PriorityHigh Priority = iota
	// PriorityNormal is the default class.
	PriorityNormal
	// PriorityLow is used for async completions and background work.
	PriorityLow

	numPriorities = 3
)

// NumPriorities is the number of priority classes.
const NumPriorities = numPriorities

// String returns the class name.
func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityNormal:
		return "normal"
	case PriorityLow:
		return "low"
	default:
		return "unknown"
	}
}
