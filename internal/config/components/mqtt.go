package components

import (
	"fmt"
	"strings"
	"time"
	"ultrasonic-web/internal/config/shared"
	"ultrasonic-web/internal/interfaces"
)

type MQTTConfig interface {
	interfaces.Config
	GetUrl() string
}

// MQTTConfigImpl configures the optional telemetry publisher. Nothing is
// dialled unless Enabled is set.
type MQTTConfigImpl struct {
	Enabled              bool          `json:"enabled"`
	Host                 string        `json:"host"`
	Port                 int           `json:"port"`
	Username             string        `json:"username"`
	Password             string        `json:"password"`
	ClientID             string        `json:"client_id"`
	BaseTopic            string        `json:"base_topic"`
	QoS                  byte          `json:"qos"`
	Retained             bool          `json:"retained"`
	KeepAlive            time.Duration `json:"keep_alive"`
	ConnectTimeout       time.Duration `json:"connect_timeout"`
	PublishTimeout       time.Duration `json:"publish_timeout"`
	AutoReconnect        bool          `json:"auto_reconnect"`
	MaxReconnectInterval time.Duration `json:"max_reconnect_interval"`
	CleanSession         bool          `json:"clean_session"`
}

func NewMQTTConfig() MQTTConfigImpl {
	config := MQTTConfigImpl{}
	config.Load()
	config.SetDefaults()
	return config
}

func (M *MQTTConfigImpl) Load() {
	M.Enabled = shared.GetEnvAsBool("MQTT_ENABLED", false)
	M.Host = shared.GetEnv("MQTT_HOST")
	M.Port = shared.GetEnvAsInt("MQTT_PORT")
	M.Username = shared.GetEnv("MQTT_USERNAME")
	M.Password = shared.GetEnv("MQTT_PASSWORD")
	M.ClientID = shared.GetEnv("MQTT_CLIENT_ID")
	M.BaseTopic = shared.GetEnv("MQTT_BASE_TOPIC")
	M.QoS = byte(shared.GetEnvAsInt("MQTT_QOS"))
	M.Retained = shared.GetEnvAsBool("MQTT_RETAINED", true)
	M.KeepAlive = shared.GetEnvAsDuration("MQTT_KEEP_ALIVE")
	M.ConnectTimeout = shared.GetEnvAsDuration("MQTT_CONNECT_TIMEOUT")
	M.PublishTimeout = shared.GetEnvAsDuration("MQTT_PUBLISH_TIMEOUT")
	M.AutoReconnect = shared.GetEnvAsBool("MQTT_AUTO_RECONNECT", true)
	M.MaxReconnectInterval = shared.GetEnvAsDuration("MQTT_MAX_RECONNECT_INTERVAL")
	M.CleanSession = shared.GetEnvAsBool("MQTT_CLEAN_SESSION", true)
}

func (M *MQTTConfigImpl) SetDefaults() {
	if M.Host == "" {
		M.Host = "localhost"
	}
	if M.Port == 0 {
		M.Port = 1883
	}
	if M.ClientID == "" {
		M.ClientID = "ultrasonic-web"
	}
	if M.BaseTopic == "" {
		M.BaseTopic = "ultrasonic"
	}
	if M.KeepAlive == 0 {
		M.KeepAlive = 60 * time.Second
	}
	if M.ConnectTimeout == 0 {
		M.ConnectTimeout = 10 * time.Second
	}
	if M.PublishTimeout == 0 {
		M.PublishTimeout = 2 * time.Second
	}
	if M.MaxReconnectInterval == 0 {
		M.MaxReconnectInterval = 10 * time.Second
	}

	M.BaseTopic = strings.TrimSuffix(M.BaseTopic, "/")
}

func (M *MQTTConfigImpl) Validate() error {
	if !M.Enabled {
		return nil
	}

	if M.Host == "" {
		return shared.NewConfigError("mqtt", "host", nil, "is required when MQTT_ENABLED is set")
	}

	if M.BaseTopic == "" {
		return shared.NewConfigError("mqtt", "base_topic", nil, "is required")
	}

	if strings.ContainsAny(M.BaseTopic, "+#") {
		return shared.NewConfigError("mqtt", "base_topic", M.BaseTopic, "must not contain MQTT wildcards")
	}

	if M.Port <= 0 || M.Port > 65535 {
		return shared.NewConfigError("mqtt", "port", M.Port, "must be between 1 and 65535")
	}

	if M.QoS > 2 {
		return shared.NewConfigError("mqtt", "qos", M.QoS, "must be 0, 1, or 2")
	}

	if M.KeepAlive < 0 {
		return shared.NewConfigError("mqtt", "keep_alive", M.KeepAlive, "cannot be negative")
	}

	return nil
}

func (M *MQTTConfigImpl) GetUrl() string {
	return fmt.Sprintf("tcp://%s:%d", M.Host, M.Port)
}

var _ MQTTConfig = (*MQTTConfigImpl)(nil)
