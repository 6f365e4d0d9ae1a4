package matching

// ValidationError wraps a user-facing validation message. It is returned
// before any write happens.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }
