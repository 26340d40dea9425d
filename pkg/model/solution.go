package model

// Status is the solver's verdict, normalized away from any particular
// backend's status enum.
type Status uint8

const (
	StatusUnknown Status = iota
	StatusOptimal
	StatusInfeasible
	StatusUnbounded
	StatusTimeLimit
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	case StatusTimeLimit:
		return "timeLimit"
	default:
		return "unknown"
	}
}

// Solution is the raw solver output for a Problem. Values is indexed by the
// problem's column order and may be nil when no feasible point was found.
type Solution struct {
	Status    Status
	Objective float64
	Values    []float64
}
