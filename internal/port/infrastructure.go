// Package port defines the ports (interfaces) between the configurators and the system.
package port

import (
	"context"
	"os"
	"time"

	"github.com/insomniacslk/dhcp/dhcpv4"
	"github.com/vishvananda/netlink"
)

// DHCPClient acquires leases.
type DHCPClient interface {
	// RequestLease performs the DISCOVER/OFFER/REQUEST/ACK exchange and returns the ACK
	RequestLease(ctx context.Context, interfaceName string, timeout time.Duration) (*dhcpv4.DHCPv4, error)
}

// NetworkManager wraps the netlink operations needed to apply an interface blob.
type NetworkManager interface {
	GetLinkByName(interfaceName string) (netlink.Link, error)
	SetLinkUp(link netlink.Link) error
	SetLinkMTU(link netlink.Link, mtu int) error

	// ListAddresses returns IPv4 addresses configured on the link
	ListAddresses(link netlink.Link) ([]netlink.Addr, error)
	AddAddress(link netlink.Link, addr *netlink.Addr) error
	DeleteAddress(link netlink.Link, addr *netlink.Addr) error

	// ListRoutes returns IPv4 routes of every link
	ListRoutes() ([]netlink.Route, error)
	AddRoute(route *netlink.Route) error
	DeleteRoute(route *netlink.Route) error
}

// FileManager reads and writes blob, lease and resolver files.
type FileManager interface {
	ReadFile(filename string) ([]byte, error)

	// WriteFile replaces filename atomically, creating parent directories as needed
	WriteFile(filename string, data []byte, perm os.FileMode) error

	// OverwriteFile truncates and rewrites filename in place, following symlinks.
	// Used for files owned by the host such as the resolver configuration.
	OverwriteFile(filename string, data []byte, perm os.FileMode) error

	FileExists(filename string) bool
}
