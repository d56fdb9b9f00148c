package models

import "fmt"

// ValidationError reports malformed ingestion input or an invalid SLA
// definition. Rejected synchronously at the call site; nothing is
// silently dropped.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UnsupportedFormatError reports an unknown export format string.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported export format %q", e.Format)
}
