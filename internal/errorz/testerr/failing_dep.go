package testerr

import "errors"

// Err is the error returned by failing dependencies in tests.
var Err = errors.New("test error")

// FailingDep tracks calls made to a dependency and fails some of them.
// The zero value is not ready to use, use NewFailingDeps or Never.
type FailingDep struct {
	CallIndex         int
	Err               error
	FailAllAfterIndex bool
	FailAtIndex       int
}

// Never returns a FailingDep that never fails.
func Never() *FailingDep {
	return &FailingDep{
		CallIndex:   -1,
		FailAtIndex: -1,
	}
}

// NewFailingDeps will create failure cases for a number of calls to a dependency.
//
// Dependencies will fail in two ways:
// - A single failure, then all calls after succesful.
// - All calls will fail after a number of succesful calls.
func NewFailingDeps(err error, expectCalls int) []FailingDep {
	deps := make([]FailingDep, 0, expectCalls*2)
	for i := 0; i < expectCalls; i++ {
		deps = append(deps, FailingDep{
			CallIndex:         -1,
			Err:               err,
			FailAllAfterIndex: true,
			FailAtIndex:       i,
		}, FailingDep{
			CallIndex:         -1,
			Err:               err,
			FailAllAfterIndex: false,
			FailAtIndex:       i,
		})
	}

	return deps
}

func (dep *FailingDep) shouldFail() bool {
	dep.CallIndex++

	if dep.FailAtIndex < 0 {
		return false
	}

	if dep.FailAtIndex == dep.CallIndex {
		return true
	}

	return dep.FailAllAfterIndex && dep.CallIndex > dep.FailAtIndex
}

// MaybeFailErrFunc fails the call if dep says so, otherwise it calls f.
func MaybeFailErrFunc(dep *FailingDep, f func() error) error {
	if dep.shouldFail() {
		return dep.Err
	}

	return f()
}

// MaybeFail fails the call if dep says so, otherwise it calls f.
func MaybeFail[T any](dep *FailingDep, f func() (T, error)) (T, error) {
	if dep.shouldFail() {
		var zero T
		return zero, dep.Err
	}

	return f()
}
