package cmd

import (
	"fmt"
	"net"

	"golang-kvconfig/internal/pkg/ipv4"

	"github.com/spf13/cobra"
)

var ipv4Cmd = &cobra.Command{
	Use:   "ipv4 ADDR...",
	Short: "Check IPv4 addresses and show their subnet",
	Long: `For every argument print whether it is a valid A.B.C.D[/M] address, its
canonical form, the effective prefix length and the dotted subnet mask.
The command fails if any argument is invalid.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		invalid := 0
		for _, arg := range args {
			addr, err := ipv4.Parse(arg)
			if err != nil {
				invalid++
				fmt.Fprintf(out, "%s\tinvalid\t%v\n", arg, err)
				continue
			}
			mask := addr.SubnetMask()
			fmt.Fprintf(out, "%s\tvalid\t%s\t/%d\t%s\n", arg, addr, addr.Subnet(), net.IP(mask[:]))
		}
		if invalid > 0 {
			return fmt.Errorf("%d of %d addresses invalid", invalid, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ipv4Cmd)
}
