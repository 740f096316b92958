package network

import (
	"errors"
	"fmt"
	"net"
	"syscall"

	"golang-kvconfig/internal/port"

	"github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"
)

// EnsureAddress makes want the only IPv4 address on link. Addresses that already
// match are left alone; stale ones are removed on a best effort basis.
func EnsureAddress(nm port.NetworkManager, link netlink.Link, want *netlink.Addr, logger *logrus.Entry) error {
	existing, err := nm.ListAddresses(link)
	if err != nil {
		return fmt.Errorf("failed to list existing addresses: %w", err)
	}

	for _, addr := range existing {
		if sameNet(addr.IPNet, want.IPNet) {
			logger.WithField("ip", want.IPNet.String()).Debug("Address already configured")
			return nil
		}
	}

	for _, addr := range existing {
		if err := nm.DeleteAddress(link, &addr); err != nil {
			logger.WithError(err).WithField("address", addr.IPNet.String()).Warn("Failed to remove stale address")
			continue
		}
		logger.WithField("address", addr.IPNet.String()).Debug("Removed stale address")
	}

	if err := nm.AddAddress(link, want); err != nil {
		return err
	}
	logger.WithField("ip", want.IPNet.String()).Info("Added address")
	return nil
}

// EnsureDefaultRoute points the IPv4 default route at gateway through link,
// replacing any other default route.
func EnsureDefaultRoute(nm port.NetworkManager, link netlink.Link, gateway net.IP, logger *logrus.Entry) error {
	logger = logger.WithField("gateway", gateway.String())

	routes, err := nm.ListRoutes()
	if err != nil {
		return fmt.Errorf("failed to list routes: %w", err)
	}

	index := link.Attrs().Index
	for _, route := range routes {
		if isDefault(route) && route.Gw.Equal(gateway) && route.LinkIndex == index {
			logger.Debug("Default route already configured")
			return nil
		}
	}

	for _, route := range routes {
		if !isDefault(route) {
			continue
		}
		if err := nm.DeleteRoute(&route); err != nil {
			logger.WithError(err).Warn("Failed to remove conflicting default route")
		}
	}

	err = nm.AddRoute(&netlink.Route{LinkIndex: index, Gw: gateway})
	if errors.Is(err, syscall.EEXIST) {
		logger.Debug("Default route already exists")
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("Configured default route")
	return nil
}

func isDefault(route netlink.Route) bool {
	if route.Gw == nil {
		return false
	}
	if route.Dst == nil {
		return true
	}
	ones, _ := route.Dst.Mask.Size()
	return ones == 0
}

func sameNet(a, b *net.IPNet) bool {
	if a == nil || b == nil {
		return false
	}
	return a.IP.Equal(b.IP) && a.Mask.String() == b.Mask.String()
}
