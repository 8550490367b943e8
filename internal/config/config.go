package config

import (
	"fmt"
	"github.com/joho/godotenv"
	"ultrasonic-web/internal/config/components"
	"ultrasonic-web/internal/interfaces"
)

// Config is handed to the application's initialize step; nothing in the
// service reads the environment after Load returns.
type Config struct {
	Service components.ServiceConfigImpl `json:"service"`
	Sensor  components.SensorConfigImpl  `json:"sensor"`
	Network components.NetworkConfigImpl `json:"network"`
	MQTT    components.MQTTConfigImpl    `json:"mqtt"`
	Logger  components.LoggerConfigImpl  `json:"logger"`
}

// Load reads an optional .env file, then the process environment, and fills
// in defaults for anything left unset.
func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		Service: components.NewServiceConfig(),
		Sensor:  components.NewSensorConfig(),
		Network: components.NewNetworkConfig(),
		MQTT:    components.NewMQTTConfig(),
		Logger:  components.NewLoggerConfig(),
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	sections := []struct {
		name   string
		config interfaces.Config
	}{
		{"service", &c.Service},
		{"sensor", &c.Sensor},
		{"network", &c.Network},
		{"mqtt", &c.MQTT},
		{"logger", &c.Logger},
	}

	for _, section := range sections {
		if err := section.config.Validate(); err != nil {
			return fmt.Errorf("invalid %s config: %w", section.name, err)
		}
	}

	return nil
}
