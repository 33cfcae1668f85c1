package errorz

// Keyed attaches the name of an input field to an error.
type Keyed struct {
	Key string
	Err error
}

func (k Keyed) Error() string {
	if k.Key == "" {
		return k.Err.Error()
	}
	return k.Key + ": " + k.Err.Error()
}

func (k Keyed) Unwrap() error {
	return k.Err
}
