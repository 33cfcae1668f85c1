package errorz

// Public is an error with a message that is safe to show to API clients.
// The wrapped error decides what kind of failure it is.
type Public struct {
	Msg string
	Err error
}

// NewPublic creates a public error of the given kind.
func NewPublic(msg string, kind error) Public {
	return Public{Msg: msg, Err: kind}
}

func (p Public) Error() string {
	return p.Msg
}

func (p Public) Unwrap() error {
	return p.Err
}
