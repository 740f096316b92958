package port

import (
	"context"
)

// InterfaceConfigurator applies one decoded interface blob to the system.
// Implementations exist for static addressing and for DHCP.
type InterfaceConfigurator interface {
	// Apply configures the interface once and returns. It honours ctx cancellation.
	Apply(ctx context.Context) error

	// GetInterfaceName returns the name of the interface being configured.
	GetInterfaceName() string
}
