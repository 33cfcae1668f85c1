package errorz

import "strings"

// InvalidInput signals that a provided input is invalid due to the wrapped errors.
type InvalidInput []error

func (e InvalidInput) Error() string {
	var b strings.Builder
	b.WriteString("invalid input: ")
	for i, err := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(err.Error())
	}
	return b.String()
}

func (e InvalidInput) Unwrap() []error {
	return e
}
