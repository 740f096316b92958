//go:build unit

package dhcp

import (
	"context"
	"errors"
	"net"
	"os"
	"testing"
	"time"

	"golang-kvconfig/internal/mock"
	"golang-kvconfig/internal/pkg/kvconfig"
	"golang-kvconfig/internal/types"

	"github.com/insomniacslk/dhcp/dhcpv4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vishvananda/netlink"
	"go.uber.org/mock/gomock"
)

var obtained = time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)

func dhcpConfig(t *testing.T, blob string) *types.InterfaceConfig {
	t.Helper()
	cfg := types.NewInterfaceConfig()
	require.NoError(t, kvconfig.New(cfg, kvconfig.NoLock).Decode(blob))
	return cfg
}

func testACK(t *testing.T) *dhcpv4.DHCPv4 {
	t.Helper()
	ack, err := dhcpv4.New(
		dhcpv4.WithYourIP(net.IPv4(192, 168, 1, 50)),
		dhcpv4.WithNetmask(net.CIDRMask(24, 32)),
		dhcpv4.WithRouter(net.IPv4(192, 168, 1, 1)),
		dhcpv4.WithDNS(net.IPv4(1, 1, 1, 1), net.IPv4(8, 8, 8, 8)),
		dhcpv4.WithLeaseTime(3600),
		dhcpv4.WithOption(dhcpv4.OptServerIdentifier(net.IPv4(192, 168, 1, 254))),
	)
	require.NoError(t, err)
	return ack
}

func newTestManager(t *testing.T, ctrl *gomock.Controller, blob, leasePath string) (*Manager, *mock.MockDHCPClient, *mock.MockNetworkManager, *mock.MockFileManager) {
	t.Helper()
	dhcpClient := mock.NewMockDHCPClient(ctrl)
	networkMgr := mock.NewMockNetworkManager(ctrl)
	fileMgr := mock.NewMockFileManager(ctrl)

	manager, err := NewManager("eth0", dhcpConfig(t, blob), leasePath, kvconfig.NewMutex(), dhcpClient, networkMgr, fileMgr)
	require.NoError(t, err)
	manager.retryDelay = time.Millisecond
	manager.resolvConf = "/tmp/resolv.conf"
	manager.now = func() time.Time { return obtained }
	return manager, dhcpClient, networkMgr, fileMgr
}

func TestNewManager(t *testing.T) {
	ctrl := gomock.NewController(t)

	t.Run("StaticMode", func(t *testing.T) {
		cfg := dhcpConfig(t, "mode=static\naddress=10.0.0.1\n")
		_, err := NewManager("eth0", cfg, "", kvconfig.NoLock, mock.NewMockDHCPClient(ctrl), mock.NewMockNetworkManager(ctrl), mock.NewMockFileManager(ctrl))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not dhcp")
	})

	t.Run("ValidDhcp", func(t *testing.T) {
		manager, _, _, _ := newTestManager(t, ctrl, "mode=dhcp\n", "")
		assert.Equal(t, "eth0", manager.GetInterfaceName())
		assert.Nil(t, manager.Lease())
	})
}

func TestLeaseRecord(t *testing.T) {
	t.Run("FullACK", func(t *testing.T) {
		rec := LeaseRecord(testACK(t), obtained)
		assert.Equal(t, "192.168.1.50/24", rec.Address.String())
		assert.Equal(t, "192.168.1.1", rec.Router.String())
		assert.Equal(t, "1.1.1.1", rec.Dns.String())
		assert.Equal(t, "192.168.1.254", rec.Server.String())
		assert.Equal(t, 3600, rec.LeaseTime)
		assert.Equal(t, 1800, rec.RenewalTime)
		assert.Equal(t, "2026-10-15T10:00:00Z", rec.Obtained)
	})

	t.Run("BareACK", func(t *testing.T) {
		ack := &dhcpv4.DHCPv4{YourIPAddr: net.ParseIP("10.0.0.9")}
		rec := LeaseRecord(ack, obtained)
		assert.Equal(t, "10.0.0.9", rec.Address.String())
		assert.Equal(t, uint8(24), rec.Address.Subnet())
		assert.False(t, rec.Router.Valid())
		assert.False(t, rec.Server.Valid())
		assert.Equal(t, 60, rec.LeaseTime)
		assert.Equal(t, 30, rec.RenewalTime)
	})
}

// countingLocker records acquisitions and whether it is currently held.
type countingLocker struct {
	acquired int
	held     bool
}

func (l *countingLocker) Lock() error {
	l.acquired++
	l.held = true
	return nil
}

func (l *countingLocker) Unlock() error {
	l.held = false
	return nil
}

func TestManager_PersistSingleCriticalSection(t *testing.T) {
	ctrl := gomock.NewController(t)
	fileMgr := mock.NewMockFileManager(ctrl)
	locker := &countingLocker{}

	manager, err := NewManager("eth0", dhcpConfig(t, "mode=dhcp\n"), "/var/lib/kvconf/eth0.lease", locker,
		mock.NewMockDHCPClient(ctrl), mock.NewMockNetworkManager(ctrl), fileMgr)
	require.NoError(t, err)

	fileMgr.EXPECT().WriteFile("/var/lib/kvconf/eth0.lease", gomock.Any(), os.FileMode(0644)).DoAndReturn(
		func(_ string, data []byte, _ os.FileMode) error {
			assert.True(t, locker.held, "lease must be written while the lock is held")
			assert.Contains(t, string(data), "lease_time=60\n")
			return nil
		})

	rec := LeaseRecord(&dhcpv4.DHCPv4{YourIPAddr: net.ParseIP("10.0.0.9")}, obtained)
	require.NoError(t, manager.persist(rec, logrus.NewEntry(logrus.New())))
	assert.Equal(t, 1, locker.acquired)
	assert.False(t, locker.held)
}

func TestManager_Apply(t *testing.T) {
	ctx := context.Background()
	link := &netlink.Dummy{LinkAttrs: netlink.LinkAttrs{Index: 4, Name: "eth0", MTU: 1500}}

	t.Run("LeaseAppliedAndRecorded", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		manager, dhcpClient, networkMgr, fileMgr := newTestManager(t, ctrl, "mode=dhcp\ndhcp_timeout=5\n", "/var/lib/kvconf/eth0.lease")

		dhcpClient.EXPECT().RequestLease(ctx, "eth0", 5*time.Second).Return(testACK(t), nil)
		networkMgr.EXPECT().GetLinkByName("eth0").Return(link, nil)
		networkMgr.EXPECT().SetLinkUp(link).Return(nil)
		networkMgr.EXPECT().ListAddresses(link).Return(nil, nil)
		networkMgr.EXPECT().AddAddress(link, gomock.Any()).DoAndReturn(func(_ netlink.Link, addr *netlink.Addr) error {
			assert.Equal(t, "192.168.1.50/24", addr.IPNet.String())
			assert.Equal(t, 3600, addr.ValidLft)
			return nil
		})
		networkMgr.EXPECT().ListRoutes().Return(nil, nil)
		networkMgr.EXPECT().AddRoute(gomock.Any()).Return(nil)
		fileMgr.EXPECT().ReadFile("/tmp/resolv.conf").Return(nil, errors.New("missing"))
		fileMgr.EXPECT().OverwriteFile("/tmp/resolv.conf", gomock.Any(), gomock.Any()).Return(nil)

		want := "address=192.168.1.50/24\nrouter=192.168.1.1\ndns=1.1.1.1\nserver=192.168.1.254\nlease_time=3600\nrenewal_time=1800\nobtained=2026-10-15T10:00:00Z\n"
		fileMgr.EXPECT().WriteFile("/var/lib/kvconf/eth0.lease", []byte(want), os.FileMode(0644)).Return(nil)

		require.NoError(t, manager.Apply(ctx))
		require.NotNil(t, manager.Lease())
		assert.Equal(t, 3600, manager.Lease().LeaseTime)
	})

	t.Run("RetriesThenFails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		manager, dhcpClient, _, _ := newTestManager(t, ctrl, "mode=dhcp\n", "")

		dhcpClient.EXPECT().RequestLease(ctx, "eth0", 15*time.Second).Return(nil, errors.New("timeout")).Times(maxAttempts)

		err := manager.Apply(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "after 3 attempts")
	})

	t.Run("RetrySucceeds", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		manager, dhcpClient, networkMgr, _ := newTestManager(t, ctrl, "mode=dhcp\n", "")

		ack := &dhcpv4.DHCPv4{YourIPAddr: net.ParseIP("10.0.0.9")}
		gomock.InOrder(
			dhcpClient.EXPECT().RequestLease(ctx, "eth0", gomock.Any()).Return(nil, errors.New("timeout")),
			dhcpClient.EXPECT().RequestLease(ctx, "eth0", gomock.Any()).Return(ack, nil),
		)
		networkMgr.EXPECT().GetLinkByName("eth0").Return(link, nil)
		networkMgr.EXPECT().SetLinkUp(link).Return(nil)
		networkMgr.EXPECT().ListAddresses(link).Return(nil, nil)
		networkMgr.EXPECT().AddAddress(link, gomock.Any()).Return(nil)

		require.NoError(t, manager.Apply(ctx))
	})

	t.Run("CancelledDuringRetry", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		manager, dhcpClient, _, _ := newTestManager(t, ctrl, "mode=dhcp\n", "")
		manager.retryDelay = time.Hour

		cancelled, cancel := context.WithCancel(ctx)
		dhcpClient.EXPECT().RequestLease(cancelled, "eth0", gomock.Any()).DoAndReturn(
			func(context.Context, string, time.Duration) (*dhcpv4.DHCPv4, error) {
				cancel()
				return nil, errors.New("interrupted")
			})

		assert.ErrorIs(t, manager.Apply(cancelled), context.Canceled)
	})

	t.Run("LeaseWriteFailure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		manager, dhcpClient, networkMgr, fileMgr := newTestManager(t, ctrl, "mode=dhcp\n", "/ro/eth0.lease")

		ack := &dhcpv4.DHCPv4{YourIPAddr: net.ParseIP("10.0.0.9")}
		dhcpClient.EXPECT().RequestLease(ctx, "eth0", gomock.Any()).Return(ack, nil)
		networkMgr.EXPECT().GetLinkByName("eth0").Return(link, nil)
		networkMgr.EXPECT().SetLinkUp(link).Return(nil)
		networkMgr.EXPECT().ListAddresses(link).Return(nil, nil)
		networkMgr.EXPECT().AddAddress(link, gomock.Any()).Return(nil)
		fileMgr.EXPECT().WriteFile("/ro/eth0.lease", gomock.Any(), gomock.Any()).Return(errors.New("read-only file system"))

		err := manager.Apply(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to record DHCP lease")
	})
}
