package sensor

import (
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpiotest"
	"testing"
	"time"
	"ultrasonic-web/internal/models"
	"ultrasonic-web/internal/sensor/sensortest"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newPins() (*gpiotest.Pin, *gpiotest.Pin) {
	trigger := &gpiotest.Pin{N: "TestTriggerPin", L: gpio.Low}
	echo := &gpiotest.Pin{N: "TestEchoPin", L: gpio.Low, EdgesChan: make(chan gpio.Level, 3)}
	return trigger, echo
}

func TestEchoPulseMeasuresWidth(t *testing.T) {
	trigger, echo := newPins()
	// begin, echo rises 200µs later, echo falls 1000µs after that
	clock := sensortest.NewClock(epoch, 0, 200*time.Microsecond, 1200*time.Microsecond)

	s, err := New(trigger, echo, clock, 30*time.Millisecond, zerolog.Nop())
	require.NoError(t, err)

	echo.EdgesChan <- gpio.High
	echo.EdgesChan <- gpio.Low

	sample, err := s.EchoPulse()
	require.NoError(t, err)
	assert.Equal(t, models.RawSample(1000), sample)
	assert.InDelta(t, 17.15, models.DistanceFromSample(sample).Centimeters, 1e-9)

	assert.Equal(t, []time.Duration{settleTime, triggerWidth}, clock.Sleeps())
	assert.Equal(t, gpio.Low, trigger.Read())
}

func TestEchoPulseNoEcho(t *testing.T) {
	trigger, echo := newPins()
	clock := sensortest.NewClock(epoch, 0)

	s, err := New(trigger, echo, clock, 5*time.Millisecond, zerolog.Nop())
	require.NoError(t, err)

	sample, err := s.EchoPulse()
	require.NoError(t, err)
	assert.Equal(t, models.NoEcho, sample)
	assert.False(t, sample.Valid())
	assert.Equal(t, gpio.Low, trigger.Read())
}

func TestEchoPulseNeverFalls(t *testing.T) {
	trigger, echo := newPins()
	clock := sensortest.NewClock(epoch, 0, 100*time.Microsecond)

	s, err := New(trigger, echo, clock, 5*time.Millisecond, zerolog.Nop())
	require.NoError(t, err)

	echo.EdgesChan <- gpio.High

	sample, err := s.EchoPulse()
	require.NoError(t, err)
	assert.Equal(t, models.NoEcho, sample)
}

func TestEchoPulseBudgetSpentBeforeRise(t *testing.T) {
	trigger, echo := newPins()
	clock := sensortest.NewClock(epoch, 0, 31*time.Millisecond)

	s, err := New(trigger, echo, clock, 30*time.Millisecond, zerolog.Nop())
	require.NoError(t, err)

	echo.EdgesChan <- gpio.High
	echo.EdgesChan <- gpio.Low

	sample, err := s.EchoPulse()
	require.NoError(t, err)
	assert.Equal(t, models.NoEcho, sample)
	// the falling edge is left unconsumed
	assert.Len(t, echo.EdgesChan, 1)
}

func TestEchoPulseShortEcho(t *testing.T) {
	trigger, echo := newPins()
	clock := sensortest.NewClock(epoch, 0, 100*time.Microsecond, 250*time.Microsecond)

	s, err := New(trigger, echo, clock, 30*time.Millisecond, zerolog.Nop())
	require.NoError(t, err)

	// both edges already queued before the driver looks at the pin
	echo.EdgesChan <- gpio.High
	echo.EdgesChan <- gpio.Low

	sample, err := s.EchoPulse()
	require.NoError(t, err)
	assert.Equal(t, models.RawSample(150), sample)
	assert.Empty(t, echo.EdgesChan)
}

func TestEchoPulseSkipsStrayFallingEdge(t *testing.T) {
	trigger, echo := newPins()
	// begin, stray low edge, rise, fall
	clock := sensortest.NewClock(epoch, 0, 50*time.Microsecond, 200*time.Microsecond, 1200*time.Microsecond)

	s, err := New(trigger, echo, clock, 30*time.Millisecond, zerolog.Nop())
	require.NoError(t, err)

	echo.EdgesChan <- gpio.Low
	echo.EdgesChan <- gpio.High
	echo.EdgesChan <- gpio.Low

	sample, err := s.EchoPulse()
	require.NoError(t, err)
	assert.Equal(t, models.RawSample(1000), sample)
}

func TestNewRejectsEchoPinWithoutEdges(t *testing.T) {
	trigger := &gpiotest.Pin{N: "TestTriggerPin"}
	echo := &gpiotest.Pin{N: "QuietPin"}

	_, err := New(trigger, echo, sensortest.NewClock(epoch), 30*time.Millisecond, zerolog.Nop())
	assert.ErrorContains(t, err, "QuietPin")
}

func TestHalt(t *testing.T) {
	trigger, echo := newPins()
	s, err := New(trigger, echo, sensortest.NewClock(epoch), 30*time.Millisecond, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, trigger.Out(gpio.High))
	require.NoError(t, s.Halt())
	assert.Equal(t, gpio.Low, trigger.Read())
}
