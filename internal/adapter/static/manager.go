// Package static applies a statically addressed interface blob.
package static

import (
	"context"
	"fmt"
	"net"

	"golang-kvconfig/internal/adapter/infrastructure/file"
	"golang-kvconfig/internal/adapter/infrastructure/network"
	"golang-kvconfig/internal/pkg/logging"
	"golang-kvconfig/internal/port"
	"golang-kvconfig/internal/types"

	"github.com/vishvananda/netlink"
)

// Manager configures one interface from a static InterfaceConfig.
type Manager struct {
	ifaceName  string
	cfg        *types.InterfaceConfig
	networkMgr port.NetworkManager
	fileMgr    port.FileManager
	resolvConf string
}

// Ensure Manager implements the InterfaceConfigurator port
var _ port.InterfaceConfigurator = (*Manager)(nil)

// NewManager validates cfg and returns a configurator for ifaceName.
func NewManager(ifaceName string, cfg *types.InterfaceConfig, networkMgr port.NetworkManager, fileMgr port.FileManager) (*Manager, error) {
	if cfg.Mode != types.InterfaceConfigModeStatic {
		return nil, fmt.Errorf("interface %s is in %s mode, not static", ifaceName, cfg.Mode)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", ifaceName, err)
	}

	return &Manager{
		ifaceName:  ifaceName,
		cfg:        cfg,
		networkMgr: networkMgr,
		fileMgr:    fileMgr,
		resolvConf: file.ResolvConfPath,
	}, nil
}

// GetInterfaceName returns the name of the network interface managed by this manager.
func (m *Manager) GetInterfaceName() string {
	return m.ifaceName
}

// Apply brings the link up and installs the address, default route and resolver.
func (m *Manager) Apply(ctx context.Context) error {
	logger := logging.WithComponentAndInterface("static", m.ifaceName)
	if err := ctx.Err(); err != nil {
		return err
	}

	link, err := m.networkMgr.GetLinkByName(m.ifaceName)
	if err != nil {
		return fmt.Errorf("failed to get netlink interface: %w", err)
	}
	if err := m.networkMgr.SetLinkUp(link); err != nil {
		return err
	}
	if m.cfg.Mtu > 0 && link.Attrs().MTU != m.cfg.Mtu {
		if err := m.networkMgr.SetLinkMTU(link, m.cfg.Mtu); err != nil {
			return err
		}
		logger.WithField("mtu", m.cfg.Mtu).Info("Set MTU")
	}

	addr := &netlink.Addr{IPNet: m.cfg.Address.IPNet()}
	if err := network.EnsureAddress(m.networkMgr, link, addr, logger); err != nil {
		return fmt.Errorf("failed to apply address %s: %w", m.cfg.Address, err)
	}

	if m.cfg.Gateway.Valid() {
		if err := network.EnsureDefaultRoute(m.networkMgr, link, m.cfg.Gateway.IPNet().IP, logger); err != nil {
			return fmt.Errorf("failed to set default gateway: %w", err)
		}
	}

	if m.cfg.Dns.Valid() {
		if err := file.EnsureResolvConf(m.fileMgr, m.resolvConf, []net.IP{m.cfg.Dns.IPNet().IP}, logger); err != nil {
			logger.WithError(err).Warn("Failed to configure DNS")
		}
	}

	logger.WithField("ip", m.cfg.Address.String()).Info("Static configuration applied")
	return nil
}
