package cmd

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"golang-kvconfig/internal/adapter/dhcp"
	infraDhcp "golang-kvconfig/internal/adapter/infrastructure/dhcp"
	"golang-kvconfig/internal/adapter/infrastructure/file"
	"golang-kvconfig/internal/adapter/infrastructure/lock"
	"golang-kvconfig/internal/adapter/infrastructure/network"
	"golang-kvconfig/internal/adapter/static"
	"golang-kvconfig/internal/pkg/config"
	"golang-kvconfig/internal/pkg/kvconfig"
	"golang-kvconfig/internal/pkg/logging"
	"golang-kvconfig/internal/port"
	"golang-kvconfig/internal/types"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// dhcpRetries is the nclient4 retransmission count per exchange.
const dhcpRetries = 3

// adapters bundles the infrastructure shared by every interface.
type adapters struct {
	files   port.FileManager
	network port.NetworkManager
	dhcp    port.DHCPClient
}

// plan is one interface ready to be configured.
type plan struct {
	name         string
	cfg          *types.InterfaceConfig
	codec        *kvconfig.Codec
	configurator port.InterfaceConfigurator
}

// loadPlan decodes the interface blob under its lock and picks the configurator for its mode.
func loadPlan(name string, app *config.Config, a adapters) (*plan, error) {
	ifaceCfg, _ := app.GetInterfaceConfig(name)
	locker := lock.For(app.LockPath(name), app.Lock.Timeout)

	var data []byte
	err := lock.With(locker, func() error {
		var err error
		data, err = a.files.ReadFile(ifaceCfg.Config)
		return err
	})
	if err != nil {
		return nil, err
	}

	cfg := types.NewInterfaceConfig()
	codec := kvconfig.New(cfg, locker).WithLogger(logging.WithComponentAndInterface("apply", name))
	if err := codec.Decode(string(data)); err != nil {
		return nil, err
	}

	p := &plan{name: name, cfg: cfg, codec: codec}
	switch cfg.Mode {
	case types.InterfaceConfigModeDhcp:
		p.configurator, err = dhcp.NewManager(name, cfg, ifaceCfg.Lease, locker, a.dhcp, a.network, a.files)
	default:
		p.configurator, err = static.NewManager(name, cfg, a.network, a.files)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// applyAll runs every configurator concurrently. A failing interface does not stop the others.
func applyAll(ctx context.Context, plans []*plan) error {
	logger := logging.WithComponent("apply")

	var g errgroup.Group
	for _, p := range plans {
		g.Go(func() error {
			if err := p.configurator.Apply(ctx); err != nil {
				logger.WithField("interface", p.name).WithError(err).Error("Interface configuration failed")
				return fmt.Errorf("interface %s: %w", p.name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func printPlans(out io.Writer, plans []*plan) error {
	for _, p := range plans {
		blob, err := p.codec.Encode()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "# %s (%s)\n%s", p.name, p.cfg.Mode, blob)
	}
	return nil
}

// selectInterfaces returns the configured interfaces to apply, sorted and
// without repeats so that no link gets two configurators.
func selectInterfaces(cfg *config.Config, only []string) ([]string, error) {
	if len(only) == 0 {
		return slices.Sorted(maps.Keys(cfg.Interfaces)), nil
	}
	for _, name := range only {
		if _, ok := cfg.GetInterfaceConfig(name); !ok {
			return nil, fmt.Errorf("interface %s is not configured", name)
		}
	}
	return slices.Compact(slices.Sorted(slices.Values(only))), nil
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Configure every interface listed in the config file from its blob",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		only, _ := cmd.Flags().GetStringSlice("interface")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config validation error: %w", err)
		}
		logging.InitLogger(logConfig(cfg.Logging))
		logger := logging.GetLogger().WithField("config_file", configPath)

		names, err := selectInterfaces(cfg, only)
		if err != nil {
			return err
		}

		a := adapters{
			files:   file.NewManagerAdapter(),
			network: network.NewManagerAdapter(),
			dhcp:    infraDhcp.NewClientAdapter(dhcpRetries),
		}
		plans := make([]*plan, 0, len(names))
		for _, name := range names {
			p, err := loadPlan(name, cfg, a)
			if err != nil {
				return fmt.Errorf("interface %s: %w", name, err)
			}
			plans = append(plans, p)
		}

		if dryRun {
			return printPlans(cmd.OutOrStdout(), plans)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.WithField("interfaces", len(plans)).Info("Applying interface configuration")
		if err := applyAll(ctx, plans); err != nil {
			return err
		}
		logger.Info("All interfaces configured")
		return nil
	},
}

func init() {
	applyCmd.Flags().StringP("config", "f", "", "Path to config file (YAML)")
	applyCmd.Flags().StringSliceP("interface", "i", nil, "Only configure these interfaces")
	applyCmd.Flags().Bool("dry-run", false, "Print the decoded blobs instead of applying them")
	requireFlag(applyCmd, "config")
	rootCmd.AddCommand(applyCmd)
}
