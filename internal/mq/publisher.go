package mq

import (
	"fmt"
	"github.com/rs/zerolog"
	"ultrasonic-web/internal/interfaces"
	"ultrasonic-web/internal/models"
)

// ReadingPublisher forwards each averaged reading to the broker on the
// sensor's distance topic.
type ReadingPublisher struct {
	client       interfaces.IMqClient
	topicManager interfaces.ITopicManager
	sensorID     string
	logger       zerolog.Logger
}

func NewReadingPublisher(
	client interfaces.IMqClient,
	topicManager interfaces.ITopicManager,
	sensorID string,
	logger zerolog.Logger,
) *ReadingPublisher {
	return &ReadingPublisher{
		client:       client,
		topicManager: topicManager,
		sensorID:     sensorID,
		logger:       logger,
	}
}

func (p *ReadingPublisher) PublishReading(reading *models.AveragedReading) error {
	if reading == nil {
		return fmt.Errorf("reading is required")
	}

	message := models.NewTelemetryMessage(p.sensorID, reading)
	if err := message.Validate(); err != nil {
		return fmt.Errorf("invalid telemetry message: %w", err)
	}

	if !p.client.IsConnected() {
		return fmt.Errorf("MQTT client is not connected")
	}

	topic := p.topicManager.GetDistanceTopic(p.sensorID)
	if err := p.client.PublishJSON(topic, message); err != nil {
		return fmt.Errorf("error publishing reading: %w", err)
	}

	p.logger.Debug().
		Str("topic", topic).
		Bool("ok", message.OK).
		Msg("Published reading")

	return nil
}

var _ interfaces.IReadingPublisher = (*ReadingPublisher)(nil)
