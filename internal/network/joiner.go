// Package network brings the host onto its wireless network before the HTTP
// server starts. Joining is bounded and never fatal: a failed join is
// reported and the caller carries on with whatever connectivity exists.
package network

import (
	"context"
	"errors"
	"fmt"
	"github.com/rs/zerolog"
	"net"
	"os/exec"
	"strings"
	"time"
	"ultrasonic-web/internal/config/components"
	"ultrasonic-web/internal/interfaces"
	"ultrasonic-web/internal/models"
)

var ErrJoinTimeout = errors.New("network join timed out")

type addressLookup func(iface string) (string, error)

type associator func(ctx context.Context, iface, ssid, password string) error

type StationJoiner struct {
	config    components.NetworkConfigImpl
	lookup    addressLookup
	associate associator
	logger    zerolog.Logger
}

func NewStationJoiner(cfg components.NetworkConfigImpl, logger zerolog.Logger) *StationJoiner {
	return &StationJoiner{
		config:    cfg,
		lookup:    interfaceIPv4,
		associate: nmcliConnect,
		logger:    logger,
	}
}

// Join asks the system to associate with the configured SSID, then polls the
// interface for an IPv4 address until JoinTimeout elapses.
func (j *StationJoiner) Join(ctx context.Context) (*models.NetworkStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, j.config.JoinTimeout)
	defer cancel()

	began := time.Now()
	status := &models.NetworkStatus{
		Interface: j.config.Interface,
		SSID:      j.config.SSID,
	}

	j.logger.Info().
		Str("interface", j.config.Interface).
		Str("ssid", j.config.SSID).
		Dur("timeout", j.config.JoinTimeout).
		Msg("Joining network")

	if j.config.SSID != "" && j.config.Associate {
		if err := j.associate(ctx, j.config.Interface, j.config.SSID, j.config.Password); err != nil {
			j.logger.Warn().Err(err).Msg("association request failed, waiting for an address anyway")
		}
	}

	ticker := time.NewTicker(j.config.PollInterval)
	defer ticker.Stop()

	for {
		status.Attempts++
		addr, err := j.lookup(j.config.Interface)
		if err == nil && addr != "" {
			status.Connected = true
			status.Address = addr
			status.Elapsed = time.Since(began)
			j.logger.Info().
				Str("address", addr).
				Int("attempts", status.Attempts).
				Msg("Network connected")
			return status, nil
		}
		j.logger.Debug().Err(err).Int("attempt", status.Attempts).Msg("no address yet")

		select {
		case <-ctx.Done():
			status.Elapsed = time.Since(began)
			return status, fmt.Errorf("%w after %d attempts: %v", ErrJoinTimeout, status.Attempts, ctx.Err())
		case <-ticker.C:
		}
	}
}

func interfaceIPv4(name string) (string, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return "", fmt.Errorf("failed to find interface %s: %w", name, err)
	}
	if iface.Flags&net.FlagUp == 0 {
		return "", fmt.Errorf("interface %s is down", name)
	}

	addrs, err := iface.Addrs()
	if err != nil {
		return "", fmt.Errorf("failed to list addresses of %s: %w", name, err)
	}

	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			return ip4.String(), nil
		}
	}

	return "", fmt.Errorf("interface %s has no IPv4 address", name)
}

func nmcliConnect(ctx context.Context, iface, ssid, password string) error {
	args := []string{"device", "wifi", "connect", ssid, "ifname", iface}
	if password != "" {
		args = append(args, "password", password)
	}

	out, err := exec.CommandContext(ctx, "nmcli", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("nmcli: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

var _ interfaces.INetworkJoiner = (*StationJoiner)(nil)
