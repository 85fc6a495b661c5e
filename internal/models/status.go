package models

// StatusID is the canonical reference to a task lifecycle stage. Ids match
// the seeded task_statuses rows and grow with the stage order.
type StatusID int64

const (
	StatusInProgress StatusID = 1
	StatusCompleted  StatusID = 2
	StatusClosed     StatusID = 3
)

var statusNames = map[StatusID]string{
	StatusInProgress: "In Progress",
	StatusCompleted:  "Completed",
	StatusClosed:     "Closed",
}

// Valid reports whether s is a known lifecycle stage.
func (s StatusID) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// String returns the display name seeded for s.
func (s StatusID) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "Unknown"
}

// CanMoveTo reports whether a task in s may move to next. Stages never go
// backwards; staying in place is allowed.
func (s StatusID) CanMoveTo(next StatusID) bool {
	return next.Valid() && next >= s
}

// TaskStatus is a row of the status catalog.
type TaskStatus struct {
	ID        StatusID `json:"id"`
	Name      string   `json:"name"`
	SortOrder int      `json:"sort_order,omitempty"`
}
