package components

import (
	"time"
	"ultrasonic-web/internal/config/shared"
	"ultrasonic-web/internal/interfaces"
)

type SensorConfig interface {
	interfaces.Config
}

// SensorConfigImpl names the HC-SR04 wiring. Pin names are anything
// periph.io's gpioreg.ByName accepts, e.g. "GPIO5" or "5" on a Raspberry Pi.
type SensorConfigImpl struct {
	ID          string        `json:"id"`
	TriggerPin  string        `json:"trigger_pin"`
	EchoPin     string        `json:"echo_pin"`
	EchoTimeout time.Duration `json:"echo_timeout"`
	SampleDelay time.Duration `json:"sample_delay"`
	Samples     int           `json:"samples"`
}

func NewSensorConfig() SensorConfigImpl {
	config := SensorConfigImpl{}
	config.Load()
	config.SetDefaults()
	return config
}

func (S *SensorConfigImpl) Load() {
	S.ID = shared.GetEnv("SENSOR_ID")
	S.TriggerPin = shared.GetEnv("SENSOR_TRIGGER_PIN")
	S.EchoPin = shared.GetEnv("SENSOR_ECHO_PIN")
	S.EchoTimeout = shared.GetEnvAsDuration("SENSOR_ECHO_TIMEOUT")
	S.SampleDelay = shared.GetEnvAsDuration("SENSOR_SAMPLE_DELAY")
	S.Samples = shared.GetEnvAsInt("SENSOR_SAMPLES")
}

func (S *SensorConfigImpl) SetDefaults() {
	if S.ID == "" {
		S.ID = "hcsr04"
	}
	if S.TriggerPin == "" {
		S.TriggerPin = "GPIO5"
	}
	if S.EchoPin == "" {
		S.EchoPin = "GPIO18"
	}
	if S.EchoTimeout <= 0 {
		S.EchoTimeout = 30 * time.Millisecond
	}
	if S.SampleDelay <= 0 {
		S.SampleDelay = 10 * time.Millisecond
	}
	if S.Samples <= 0 {
		S.Samples = 3
	}
}

func (S *SensorConfigImpl) Validate() error {
	if S.ID == "" {
		return shared.NewConfigError("sensor", "id", nil, "is required")
	}
	if S.TriggerPin == "" {
		return shared.NewConfigError("sensor", "trigger_pin", nil, "is required")
	}
	if S.EchoPin == "" {
		return shared.NewConfigError("sensor", "echo_pin", nil, "is required")
	}
	if S.TriggerPin == S.EchoPin {
		return shared.NewConfigError("sensor", "echo_pin", S.EchoPin, "must differ from the trigger pin")
	}
	if S.EchoTimeout > time.Second {
		return shared.NewConfigError("sensor", "echo_timeout", S.EchoTimeout, "must not exceed 1s")
	}
	if S.Samples > 10 {
		return shared.NewConfigError("sensor", "samples", S.Samples, "must not exceed 10")
	}
	return nil
}

var _ SensorConfig = (*SensorConfigImpl)(nil)
