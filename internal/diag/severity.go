package diag

// Severity ranks a diagnostic. Only errors fail a check run.
type Severity uint8

const (
	// SevWarning is for problems that do not break a contract, like files
	// that could not be read.
	SevWarning Severity = iota + 1
	// SevError is a contract violation or a definition error.
	SevError
)

// String returns the lower-case label used by every renderer.
func (s Severity) String() string {
	switch s {
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	}
	return "unknown"
}

// Fails reports whether a diagnostic of this severity fails the run.
func (s Severity) Fails() bool { return s >= SevError }
