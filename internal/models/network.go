package models

import "time"

type NetworkStatus struct {
	Interface string        `json:"interface"`
	SSID      string        `json:"ssid,omitempty"`
	Connected bool          `json:"connected"`
	Address   string        `json:"address,omitempty"`
	Attempts  int           `json:"attempts"`
	Elapsed   time.Duration `json:"elapsed"`
}
