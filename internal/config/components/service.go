package components

import (
	"time"
	"ultrasonic-web/internal/config/shared"
	"ultrasonic-web/internal/interfaces"
)

type ServiceConfig interface {
	interfaces.Config
}

type ServiceConfigImpl struct {
	Name            string        `json:"name"`
	Version         string        `json:"version"`
	ListenAddr      string        `json:"listen_addr"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

func NewServiceConfig() ServiceConfigImpl {
	config := ServiceConfigImpl{}
	config.Load()
	config.SetDefaults()
	return config
}

func (S *ServiceConfigImpl) Load() {
	S.Name = shared.GetEnv("SERVICE_NAME")
	S.Version = shared.GetEnv("SERVICE_VERSION")
	S.ListenAddr = shared.GetEnv("HTTP_LISTEN_ADDR")
	S.ReadTimeout = shared.GetEnvAsDuration("HTTP_READ_TIMEOUT")
	S.WriteTimeout = shared.GetEnvAsDuration("HTTP_WRITE_TIMEOUT")
	S.ShutdownTimeout = shared.GetEnvAsDuration("HTTP_SHUTDOWN_TIMEOUT")
}

func (S *ServiceConfigImpl) SetDefaults() {
	if S.Name == "" {
		S.Name = "ultrasonic-web"
	}
	if S.Version == "" {
		S.Version = "1.0.0"
	}
	if S.ListenAddr == "" {
		S.ListenAddr = ":80"
	}
	if S.ReadTimeout <= 0 {
		S.ReadTimeout = 5 * time.Second
	}
	if S.WriteTimeout <= 0 {
		S.WriteTimeout = 5 * time.Second
	}
	if S.ShutdownTimeout <= 0 {
		S.ShutdownTimeout = 5 * time.Second
	}
}

func (S *ServiceConfigImpl) Validate() error {
	if S.Name == "" {
		return shared.NewConfigError("service", "name", nil, "is required")
	}

	if S.Version == "" {
		return shared.NewConfigError("service", "version", nil, "is required")
	}

	if S.ListenAddr == "" {
		return shared.NewConfigError("service", "listen_addr", nil, "is required")
	}

	if S.WriteTimeout < time.Second {
		return shared.NewConfigError("service", "write_timeout", S.WriteTimeout, "must leave room for a full measurement burst")
	}

	return nil
}

var _ ServiceConfig = (*ServiceConfigImpl)(nil)
