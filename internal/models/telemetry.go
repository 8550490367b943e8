package models

import (
	"fmt"
	"time"
)

type TelemetryMessage struct {
	SensorID     string    `json:"sensor_id"`
	OK           bool      `json:"ok"`
	DistanceCM   *float64  `json:"distance_cm"`
	Samples      int       `json:"samples"`
	ValidSamples int       `json:"valid_samples"`
	Timestamp    time.Time `json:"timestamp"`
}

func NewTelemetryMessage(sensorID string, reading *AveragedReading) *TelemetryMessage {
	response := NewDistanceResponse(reading)
	return &TelemetryMessage{
		SensorID:     sensorID,
		OK:           response.OK,
		DistanceCM:   response.DistanceCM,
		Samples:      reading.Samples,
		ValidSamples: reading.ValidSamples,
		Timestamp:    reading.Timestamp,
	}
}

func (m *TelemetryMessage) Validate() error {
	if m.SensorID == "" {
		return fmt.Errorf("sensor_id is required")
	}
	if m.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}
	if m.OK && m.DistanceCM == nil {
		return fmt.Errorf("distance_cm is required when ok is set")
	}
	return nil
}
