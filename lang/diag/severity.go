package diag

// Severity classifies a diagnostic Entry, per spec.md §4.7/§6.
type Severity uint8

const (
	Error Severity = iota
	Warning
	Info
)

var severityNames = [...]string{
	Error:   "error",
	Warning: "warning",
	Info:    "info",
}

func (s Severity) String() string {
	if int(s) >= len(severityNames) {
		return "severity(?)"
	}
	return severityNames[s]
}
