// Package types defines the key=value field sets exchanged between the CLI and the adapters.
package types

import (
	"fmt"
)

//go:generate go run golang-kvconfig gen --schema interface.yaml --package types --type InterfaceConfig --out interface_gen.go
//go:generate go run golang-kvconfig gen --schema lease.yaml --package types --type LeaseRecord --out lease_gen.go

// Validate checks that the decoded settings are enough to configure an interface.
func (c *InterfaceConfig) Validate() error {
	switch c.Mode {
	case InterfaceConfigModeStatic:
		if !c.Address.Valid() {
			return fmt.Errorf("static mode requires an address")
		}
	case InterfaceConfigModeDhcp:
		if c.DhcpTimeout <= 0 {
			return fmt.Errorf("dhcp_timeout must be positive, got %d", c.DhcpTimeout)
		}
	default:
		return fmt.Errorf("unknown mode %s", c.Mode)
	}

	if c.Mtu < 0 {
		return fmt.Errorf("mtu must not be negative, got %d", c.Mtu)
	}
	return nil
}
