// Package clock abstracts time reads so occurrence advancement and
// horizon checks can be tested without real time passing.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// New returns the wall clock. All times are UTC.
func New() Clock { return systemClock{} }
