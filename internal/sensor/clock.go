package sensor

import (
	"time"
	"ultrasonic-web/internal/interfaces"
)

// SystemClock is the wall clock. time.Sleep overshoots at microsecond scale,
// which only lengthens the trigger pulse; the HC-SR04 needs at least 10µs.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

func (SystemClock) Sleep(d time.Duration) {
	time.Sleep(d)
}

var _ interfaces.IClock = SystemClock{}
