package interfaces

import (
	"context"
	"time"
	"ultrasonic-web/internal/models"
)

type Config interface {
	Load()
	SetDefaults()
	Validate() error
}

// IClock is the timing half of the sensor capability. Tests substitute a
// scripted clock so pulse widths are deterministic.
type IClock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// IPulseSensor fires one trigger pulse and reports the echo width. A
// RawSample of zero means no echo arrived before the timeout.
type IPulseSensor interface {
	EchoPulse() (models.RawSample, error)
}

// IDistanceReader produces one averaged reading per call, blocking for the
// duration of the measurement burst.
type IDistanceReader interface {
	Reading() models.AveragedReading
}

type IMqClient interface {
	PublishJSON(topic string, data interface{}) error
	Connect(ctx context.Context) error
	Disconnect()
	IsConnected() bool
}

type ITopicManager interface {
	GetBaseTopic() string
	GetDistanceTopic(sensorID string) string
}

type IReadingPublisher interface {
	PublishReading(reading *models.AveragedReading) error
}

type INetworkJoiner interface {
	Join(ctx context.Context) (*models.NetworkStatus, error)
}
