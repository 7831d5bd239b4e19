package logsink

import (
	"sync/atomic"
)

// State holds the runtime counters of a sink
type State struct {
	Written        atomic.Uint64 // Records appended to the active file
	Filtered       atomic.Uint64 // Records below the minimum severity
	Rotations      atomic.Uint64 // Successful rotations
	RotationErrors atomic.Uint64 // Failed rotations
	WriteErrors    atomic.Uint64 // Failed appends
}

// Stats is a point-in-time copy of a sink's counters
type Stats struct {
	Written        uint64 `json:"written"`
	Filtered       uint64 `json:"filtered"`
	Rotations      uint64 `json:"rotations"`
	RotationErrors uint64 `json:"rotation_errors"`
	WriteErrors    uint64 `json:"write_errors"`
}

// snapshot copies the counters
func (s *State) snapshot() Stats {
	return Stats{
		Written:        s.Written.Load(),
		Filtered:       s.Filtered.Load(),
		Rotations:      s.Rotations.Load(),
		RotationErrors: s.RotationErrors.Load(),
		WriteErrors:    s.WriteErrors.Load(),
	}
}
