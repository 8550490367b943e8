// Package sensortest provides scripted stand-ins for the clock and pulse
// sensor so ranging code runs without hardware.
package sensortest

import (
	"sync"
	"time"
	"ultrasonic-web/internal/interfaces"
	"ultrasonic-web/internal/models"
)

// Clock returns the scripted instants from Times in order, then keeps
// returning the last one. Sleep only records its argument.
type Clock struct {
	mu     sync.Mutex
	Times  []time.Time
	Slept  []time.Duration
	called int
}

func NewClock(base time.Time, offsets ...time.Duration) *Clock {
	c := &Clock{}
	for _, offset := range offsets {
		c.Times = append(c.Times, base.Add(offset))
	}
	return c
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.Times) == 0 {
		return time.Time{}
	}
	i := c.called
	if i >= len(c.Times) {
		i = len(c.Times) - 1
	}
	c.called++
	return c.Times[i]
}

func (c *Clock) Sleep(d time.Duration) {
	c.mu.Lock()
	c.Slept = append(c.Slept, d)
	c.mu.Unlock()
}

func (c *Clock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.Slept...)
}

// Sensor replays Samples, one per EchoPulse call. Once exhausted it reports
// models.NoEcho. Errs, when set, is consulted at the same index.
type Sensor struct {
	mu      sync.Mutex
	Samples []models.RawSample
	Errs    []error
	Calls   int
}

func NewSensor(samples ...models.RawSample) *Sensor {
	return &Sensor{Samples: samples}
}

func (s *Sensor) EchoPulse() (models.RawSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.Calls
	s.Calls++
	if i < len(s.Errs) && s.Errs[i] != nil {
		return models.NoEcho, s.Errs[i]
	}
	if i < len(s.Samples) {
		return s.Samples[i], nil
	}
	return models.NoEcho, nil
}

var (
	_ interfaces.IClock       = (*Clock)(nil)
	_ interfaces.IPulseSensor = (*Sensor)(nil)
)
