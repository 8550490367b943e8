package mq

import (
	"fmt"
	"strings"
	"ultrasonic-web/internal/interfaces"
)

type TopicManager struct {
	BaseTopic string
}

func NewTopicManager(baseTopic string) *TopicManager {
	return &TopicManager{BaseTopic: baseTopic}
}

const (
	DistanceTopicTemplate = "%s/v1/sensors/%s/distance"
)

// GetDistanceTopic returns the publish topic for one sensor. Sensor ids are
// lowercased and may not contain topic separators or wildcards.
func (m *TopicManager) GetDistanceTopic(sensorID string) string {
	return fmt.Sprintf(DistanceTopicTemplate, m.GetBaseTopic(), sanitizeLevel(sensorID))
}

func (m *TopicManager) GetBaseTopic() string {
	return strings.TrimSuffix(m.BaseTopic, "/")
}

func sanitizeLevel(level string) string {
	return strings.NewReplacer("/", "_", "+", "_", "#", "_").Replace(strings.ToLower(level))
}

var _ interfaces.ITopicManager = (*TopicManager)(nil)
