package clock

import "time"

// Clock is the source of "now" for time-dependent code
type Clock interface {
	Now() time.Time
}

type realClock struct{}

// Real returns a clock backed by time.Now
func Real() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

// Func adapts a plain function into a Clock
type Func func() time.Time

func (f Func) Now() time.Time {
	return f()
}

// Fixed returns a clock that always reports t
func Fixed(t time.Time) Clock {
	return Func(func() time.Time { return t })
}
