// Package dhcp implements the DHCPClient port with insomniacslk/dhcp.
package dhcp

import (
	"context"
	"fmt"
	"time"

	"golang-kvconfig/internal/port"

	"github.com/insomniacslk/dhcp/dhcpv4"
	"github.com/insomniacslk/dhcp/dhcpv4/nclient4"
)

// requested are the options a LeaseRecord is built from.
var requested = dhcpv4.WithRequestedOptions(
	dhcpv4.OptionSubnetMask,
	dhcpv4.OptionRouter,
	dhcpv4.OptionDomainNameServer,
	dhcpv4.OptionIPAddressLeaseTime,
	dhcpv4.OptionRenewTimeValue,
)

// ClientAdapter runs one nclient4 exchange per lease request.
type ClientAdapter struct {
	retries int
}

// Ensure ClientAdapter implements the DHCPClient port
var _ port.DHCPClient = (*ClientAdapter)(nil)

// NewClientAdapter creates a DHCP client adapter that retransmits each packet up to retries times.
func NewClientAdapter(retries int) *ClientAdapter {
	return &ClientAdapter{retries: retries}
}

// RequestLease performs the complete DHCP DISCOVER/OFFER/REQUEST/ACK sequence.
func (c *ClientAdapter) RequestLease(ctx context.Context, interfaceName string, timeout time.Duration) (*dhcpv4.DHCPv4, error) {
	client, err := nclient4.New(interfaceName, nclient4.WithTimeout(timeout), nclient4.WithRetry(c.retries))
	if err != nil {
		return nil, fmt.Errorf("failed to create DHCP client on %s: %w", interfaceName, err)
	}
	defer client.Close()

	lease, err := client.Request(ctx, requested)
	if err != nil {
		return nil, fmt.Errorf("DHCP lease request on %s failed: %w", interfaceName, err)
	}

	return lease.ACK, nil
}
