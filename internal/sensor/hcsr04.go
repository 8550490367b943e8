// Package sensor drives an HC-SR04 ultrasonic ranging module through two
// periph.io GPIO pins.
//
// Datasheet: https://cdn.sparkfun.com/datasheets/Sensors/Proximity/HCSR04.pdf
package sensor

import (
	"fmt"
	"github.com/rs/zerolog"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"
	"time"
	"ultrasonic-web/internal/config/components"
	"ultrasonic-web/internal/interfaces"
	"ultrasonic-web/internal/models"
)

const (
	settleTime   = 2 * time.Microsecond
	triggerWidth = 10 * time.Microsecond
)

type HCSR04 struct {
	trigger gpio.PinIO
	echo    gpio.PinIO
	clock   interfaces.IClock
	timeout time.Duration
	logger  zerolog.Logger
}

// Open initializes the periph host drivers and resolves the configured pins
// by name.
func Open(cfg components.SensorConfigImpl, logger zerolog.Logger) (*HCSR04, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GPIO host: %w", err)
	}

	trigger := gpioreg.ByName(cfg.TriggerPin)
	if trigger == nil {
		return nil, fmt.Errorf("no GPIO trigger pin named: %s", cfg.TriggerPin)
	}
	echo := gpioreg.ByName(cfg.EchoPin)
	if echo == nil {
		return nil, fmt.Errorf("no GPIO echo pin named: %s", cfg.EchoPin)
	}

	return New(trigger, echo, SystemClock{}, cfg.EchoTimeout, logger)
}

// New configures trigger as an output held low and echo as a pulled-down
// edge-triggered input.
func New(trigger, echo gpio.PinIO, clock interfaces.IClock, timeout time.Duration, logger zerolog.Logger) (*HCSR04, error) {
	if err := trigger.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("failed to configure trigger pin %s: %w", trigger.Name(), err)
	}
	if err := echo.In(gpio.PullDown, gpio.BothEdges); err != nil {
		return nil, fmt.Errorf("failed to configure echo pin %s: %w", echo.Name(), err)
	}

	logger.Info().
		Str("trigger", trigger.Name()).
		Str("echo", echo.Name()).
		Dur("timeout", timeout).
		Msg("Pins configured")

	return &HCSR04{
		trigger: trigger,
		echo:    echo,
		clock:   clock,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// EchoPulse fires one trigger pulse and times the echo. The timeout bounds the
// wait for the rising and the falling edge together; running out of it yields
// models.NoEcho and a nil error.
//
// The pin stays armed for both edges for the whole pulse so a short echo
// cannot fall while the pin is being reconfigured.
func (s *HCSR04) EchoPulse() (models.RawSample, error) {
	if err := s.echo.In(gpio.PullDown, gpio.BothEdges); err != nil {
		return models.NoEcho, fmt.Errorf("failed to arm echo pin: %w", err)
	}

	if err := s.pulseTrigger(); err != nil {
		return models.NoEcho, err
	}

	begin := s.clock.Now()
	deadline := begin.Add(s.timeout)

	start, ok := s.waitForLevel(gpio.High, begin, deadline)
	if !ok {
		s.logger.Debug().Msg("no echo before timeout")
		return models.NoEcho, nil
	}

	end, ok := s.waitForLevel(gpio.Low, start, deadline)
	if !ok {
		s.logger.Debug().Msg("echo still high at timeout")
		return models.NoEcho, nil
	}

	return models.RawSample(end.Sub(start).Microseconds()), nil
}

// waitForLevel consumes edges until the echo pin reads level, returning the
// time of that edge. Edges leaving the pin at the other level are skipped.
func (s *HCSR04) waitForLevel(level gpio.Level, last, deadline time.Time) (time.Time, bool) {
	for {
		remaining := deadline.Sub(last)
		if remaining <= 0 {
			return last, false
		}
		if ok := s.echo.WaitForEdge(remaining); !ok {
			return last, false
		}
		last = s.clock.Now()
		if s.echo.Read() == level {
			return last, true
		}
	}
}

func (s *HCSR04) pulseTrigger() error {
	if err := s.trigger.Out(gpio.Low); err != nil {
		return fmt.Errorf("failed to clear trigger pin: %w", err)
	}
	s.clock.Sleep(settleTime)

	if err := s.trigger.Out(gpio.High); err != nil {
		return fmt.Errorf("failed to raise trigger pin: %w", err)
	}
	s.clock.Sleep(triggerWidth)

	if err := s.trigger.Out(gpio.Low); err != nil {
		return fmt.Errorf("failed to lower trigger pin: %w", err)
	}
	return nil
}

func (s *HCSR04) Halt() error {
	if err := s.trigger.Out(gpio.Low); err != nil {
		return err
	}
	return s.echo.Halt()
}

var _ interfaces.IPulseSensor = (*HCSR04)(nil)
