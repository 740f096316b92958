package cmd

import (
	"fmt"

	"golang-kvconfig/internal/pkg/kvconfig"

	"github.com/spf13/cobra"
)

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Print a blob holding schema defaults with --set overrides applied",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		schemaPath, _ := cmd.Flags().GetString("schema")
		sets, _ := cmd.Flags().GetStringArray("set")

		inst, codec, err := loadInstance(schemaPath, "encode")
		if err != nil {
			return err
		}
		if err := codec.Reset(); err != nil {
			return err
		}
		for _, line := range sets {
			key, _, ok := kvconfig.SplitLine(line)
			if !ok {
				return fmt.Errorf("--set %q: want key=value", line)
			}
			if _, known := inst.Schema().Field(key); !known {
				return fmt.Errorf("--set %q: unknown key %q", line, key)
			}
			if err := codec.UpdateLine(line); err != nil {
				return err
			}
		}

		out, err := codec.Encode()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	encodeCmd.Flags().StringP("schema", "s", "", "Schema file (.json, .jsonc, .yaml)")
	encodeCmd.Flags().StringArray("set", nil, "key=value override, may be repeated")
	requireFlag(encodeCmd, "schema")
	rootCmd.AddCommand(encodeCmd)
}
