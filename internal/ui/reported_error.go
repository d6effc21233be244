package ui

// ReportedError marks a failure whose message was already shown to the user.
type ReportedError struct {
	Cause error
}

func (reportedError ReportedError) Error() string {
	if reportedError.Cause == nil {
		return ""
	}
	return reportedError.Cause.Error()
}

// Unwrap exposes the failure.
func (reportedError ReportedError) Unwrap() error {
	return reportedError.Cause
}
