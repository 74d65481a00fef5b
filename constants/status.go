package constants

// RecordStatus is the canonical processing status for rows in medical_records.
type RecordStatus string

// Stable values (store these exact strings in DB).
const (
	RecordStatusPending    RecordStatus = "pending"    // uploaded, not yet picked up
	RecordStatusProcessing RecordStatus = "processing" // pipeline running
	RecordStatusCompleted  RecordStatus = "completed"  // terminal, fields may be empty
	RecordStatusFailed     RecordStatus = "failed"     // terminal failure
)

var allStatuses = []RecordStatus{
	RecordStatusPending,
	RecordStatusProcessing,
	RecordStatusCompleted,
	RecordStatusFailed,
}

// ParseRecordStatus returns the status for s, or false if s is not a known status.
func ParseRecordStatus(s string) (RecordStatus, bool) {
	for _, st := range allStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Terminal reports whether no further transition is allowed.
func (s RecordStatus) Terminal() bool {
	return s == RecordStatusCompleted || s == RecordStatusFailed
}

// CanTransitionTo enforces pending -> processing -> completed|failed.
// A pending record may also fail directly (e.g. rejected before the pipeline starts).
func (s RecordStatus) CanTransitionTo(next RecordStatus) bool {
	switch s {
	case RecordStatusPending:
		return next == RecordStatusProcessing || next == RecordStatusFailed
	case RecordStatusProcessing:
		return next == RecordStatusCompleted || next == RecordStatusFailed
	default:
		return false
	}
}
