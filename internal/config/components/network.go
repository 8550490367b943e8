package components

import (
	"time"
	"ultrasonic-web/internal/config/shared"
	"ultrasonic-web/internal/interfaces"
)

// Build-time credentials, set with
// -ldflags "-X ultrasonic-web/internal/config/components.BuildSSID=..."
// Environment values win over these.
var (
	BuildSSID     string
	BuildPassword string
)

type NetworkConfig interface {
	interfaces.Config
}

type NetworkConfigImpl struct {
	Interface    string        `json:"interface"`
	SSID         string        `json:"ssid"`
	Password     string        `json:"-"`
	JoinTimeout  time.Duration `json:"join_timeout"`
	PollInterval time.Duration `json:"poll_interval"`
	Associate    bool          `json:"associate"`
}

func NewNetworkConfig() NetworkConfigImpl {
	config := NetworkConfigImpl{}
	config.Load()
	config.SetDefaults()
	return config
}

func (N *NetworkConfigImpl) Load() {
	N.Interface = shared.GetEnv("WIFI_INTERFACE")
	N.SSID = shared.GetEnv("WIFI_SSID")
	N.Password = shared.GetEnv("WIFI_PASSWORD")
	N.JoinTimeout = shared.GetEnvAsDuration("WIFI_JOIN_TIMEOUT")
	N.PollInterval = shared.GetEnvAsDuration("WIFI_POLL_INTERVAL")
	N.Associate = shared.GetEnvAsBool("WIFI_ASSOCIATE", true)
}

func (N *NetworkConfigImpl) SetDefaults() {
	if N.Interface == "" {
		N.Interface = "wlan0"
	}
	if N.SSID == "" {
		N.SSID = BuildSSID
	}
	if N.Password == "" {
		N.Password = BuildPassword
	}
	if N.JoinTimeout <= 0 {
		N.JoinTimeout = 20 * time.Second
	}
	if N.PollInterval <= 0 {
		N.PollInterval = 500 * time.Millisecond
	}
}

func (N *NetworkConfigImpl) Validate() error {
	if N.Interface == "" {
		return shared.NewConfigError("network", "interface", nil, "is required")
	}
	if N.PollInterval > N.JoinTimeout {
		return shared.NewConfigError("network", "poll_interval", N.PollInterval, "must not exceed the join timeout")
	}
	return nil
}

var _ NetworkConfig = (*NetworkConfigImpl)(nil)
