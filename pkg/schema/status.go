package schema

// Status is a run status reported by the run feed.
type Status string

const (
	StatusSuccess    Status = "Success"
	StatusFail       Status = "Fail"
	StatusWaiting    Status = "Waiting"
	StatusBuilding   Status = "Building"
	StatusPending    Status = "Pending"
	StatusScheduling Status = "Scheduling"
	StatusDisabled   Status = "Disabled"
	StatusNeverBuilt Status = "Never Built"
	StatusStopped    Status = "Stopped"
	StatusSkipped    Status = "Skipped"
)

// IsTerminal reports whether no further transition is expected.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSuccess, StatusFail, StatusStopped, StatusSkipped:
		return true
	}
	return false
}

// Known reports whether s is one of the declared statuses.
func (s Status) Known() bool {
	switch s {
	case StatusSuccess, StatusFail, StatusWaiting, StatusBuilding, StatusPending,
		StatusScheduling, StatusDisabled, StatusNeverBuilt, StatusStopped, StatusSkipped:
		return true
	}
	return false
}
