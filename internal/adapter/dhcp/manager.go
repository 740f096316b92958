// Package dhcp applies a DHCP interface blob and records the lease it obtains.
package dhcp

import (
	"context"
	"fmt"
	"net"
	"time"

	"golang-kvconfig/internal/adapter/infrastructure/file"
	"golang-kvconfig/internal/adapter/infrastructure/lock"
	"golang-kvconfig/internal/adapter/infrastructure/network"
	"golang-kvconfig/internal/pkg/ipv4"
	"golang-kvconfig/internal/pkg/kvconfig"
	"golang-kvconfig/internal/pkg/logging"
	"golang-kvconfig/internal/port"
	"golang-kvconfig/internal/types"

	"github.com/insomniacslk/dhcp/dhcpv4"
	"github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"
)

const (
	maxAttempts      = 3
	defaultLeaseTime = 60 * time.Second
)

// Manager obtains a lease for one interface, applies it and writes it out as a LeaseRecord blob.
type Manager struct {
	ifaceName  string
	cfg        *types.InterfaceConfig
	leasePath  string
	locker     kvconfig.Locker
	dhcpClient port.DHCPClient
	networkMgr port.NetworkManager
	fileMgr    port.FileManager

	resolvConf string
	retryDelay time.Duration
	now        func() time.Time
	lease      *types.LeaseRecord
}

// Ensure Manager implements the InterfaceConfigurator port
var _ port.InterfaceConfigurator = (*Manager)(nil)

// NewManager returns a DHCP configurator. An empty leasePath skips recording the lease;
// locker guards the lease file.
func NewManager(ifaceName string, cfg *types.InterfaceConfig, leasePath string, locker kvconfig.Locker,
	dhcpClient port.DHCPClient, networkMgr port.NetworkManager, fileMgr port.FileManager) (*Manager, error) {
	if cfg.Mode != types.InterfaceConfigModeDhcp {
		return nil, fmt.Errorf("interface %s is in %s mode, not dhcp", ifaceName, cfg.Mode)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", ifaceName, err)
	}

	return &Manager{
		ifaceName:  ifaceName,
		cfg:        cfg,
		leasePath:  leasePath,
		locker:     locker,
		dhcpClient: dhcpClient,
		networkMgr: networkMgr,
		fileMgr:    fileMgr,
		resolvConf: file.ResolvConfPath,
		retryDelay: 2 * time.Second,
		now:        time.Now,
	}, nil
}

// GetInterfaceName returns the name of the network interface managed by this manager.
func (m *Manager) GetInterfaceName() string {
	return m.ifaceName
}

// Lease returns the record built by the last successful Apply, or nil.
func (m *Manager) Lease() *types.LeaseRecord {
	return m.lease
}

// Apply requests a lease, configures the interface with it and records it.
func (m *Manager) Apply(ctx context.Context) error {
	logger := logging.WithComponentAndInterface("dhcp", m.ifaceName)

	ack, err := m.requestLease(ctx, logger)
	if err != nil {
		return err
	}
	record := LeaseRecord(ack, m.now())
	logger.WithFields(logrus.Fields{
		"ip":         record.Address.String(),
		"lease_time": record.LeaseTime,
	}).Info("Obtained DHCP lease")

	if err := m.applyLease(ack, record, logger); err != nil {
		return fmt.Errorf("failed to apply DHCP lease: %w", err)
	}
	m.lease = record

	if m.leasePath == "" {
		return nil
	}
	if err := m.persist(record, logger); err != nil {
		return fmt.Errorf("failed to record DHCP lease: %w", err)
	}
	return nil
}

func (m *Manager) requestLease(ctx context.Context, logger *logrus.Entry) (*dhcpv4.DHCPv4, error) {
	timeout := time.Duration(m.cfg.DhcpTimeout) * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		logger.WithField("attempt", fmt.Sprintf("%d/%d", attempt, maxAttempts)).Debug("Requesting DHCP lease")

		ack, err := m.dhcpClient.RequestLease(ctx, m.ifaceName, timeout)
		if err == nil {
			return ack, nil
		}
		lastErr = err
		logger.WithError(err).WithField("attempt", attempt).Warn("DHCP lease request failed")

		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.retryDelay):
		}
	}
	return nil, fmt.Errorf("DHCP lease request failed after %d attempts: %w", maxAttempts, lastErr)
}

func (m *Manager) applyLease(ack *dhcpv4.DHCPv4, record *types.LeaseRecord, logger *logrus.Entry) error {
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
	}

	addr := &netlink.Addr{
		IPNet:       record.Address.IPNet(),
		ValidLft:    record.LeaseTime,
		PreferedLft: record.LeaseTime,
	}
	if err := network.EnsureAddress(m.networkMgr, link, addr, logger); err != nil {
		return err
	}

	if record.Router.Valid() {
		if err := network.EnsureDefaultRoute(m.networkMgr, link, record.Router.IPNet().IP, logger); err != nil {
			return fmt.Errorf("failed to set default gateway: %w", err)
		}
	}

	if servers := ack.DNS(); len(servers) > 0 {
		if err := file.EnsureResolvConf(m.fileMgr, m.resolvConf, servers, logger); err != nil {
			logger.WithError(err).Warn("Failed to configure DNS")
		}
	}
	return nil
}

// persist encodes and writes the record under one acquisition of the lease lock.
func (m *Manager) persist(record *types.LeaseRecord, logger *logrus.Entry) error {
	return lock.With(m.locker, func() error {
		blob, err := kvconfig.New(record, kvconfig.NoLock).WithLogger(logger).Encode()
		if err != nil {
			return err
		}
		return m.fileMgr.WriteFile(m.leasePath, []byte(blob), 0644)
	})
}

// LeaseRecord converts a DHCP ACK into its key=value record. A missing subnet
// mask leaves the prefix unset, which reads back as the default /24.
func LeaseRecord(ack *dhcpv4.DHCPv4, obtained time.Time) *types.LeaseRecord {
	rec := types.NewLeaseRecord()

	var prefix int
	if mask := ack.SubnetMask(); mask != nil {
		prefix, _ = mask.Size()
	}
	rec.Address = fromIP(ack.YourIPAddr, uint8(prefix))
	if routers := ack.Router(); len(routers) > 0 {
		rec.Router = fromIP(routers[0], 0)
	}
	if servers := ack.DNS(); len(servers) > 0 {
		rec.Dns = fromIP(servers[0], 0)
	}
	rec.Server = fromIP(ack.ServerIdentifier(), 0)

	leaseTime := ack.IPAddressLeaseTime(defaultLeaseTime)
	rec.LeaseTime = int(leaseTime.Seconds())
	rec.RenewalTime = int(ack.IPAddressRenewalTime(leaseTime / 2).Seconds())
	rec.Obtained = obtained.UTC().Format(time.RFC3339)
	return rec
}

func fromIP(ip net.IP, prefix uint8) ipv4.Address {
	v4 := ip.To4()
	if v4 == nil {
		return ipv4.Address{}
	}
	return ipv4.FromOctets([4]byte(v4), prefix)
}
