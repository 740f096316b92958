package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decode a blob against a schema and print it back in canonical form",
	Long: `Decode reads a key=value blob, applies every recognised line to a field set
built from --schema and prints the result. Unknown keys and unconvertible values
are dropped; fields left unset take their schema default.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		schemaPath, _ := cmd.Flags().GetString("schema")
		filePath, _ := cmd.Flags().GetString("file")
		output, _ := cmd.Flags().GetString("output")

		inst, codec, err := loadInstance(schemaPath, "decode")
		if err != nil {
			return err
		}
		blob, err := readBlob(cmd, filePath)
		if err != nil {
			return err
		}
		if err := codec.Decode(blob); err != nil {
			return err
		}

		switch output {
		case "kv":
			out, err := codec.Encode()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
		case "yaml":
			out, err := yaml.Marshal(inst)
			if err != nil {
				return fmt.Errorf("failed to render yaml: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(out))
		default:
			return fmt.Errorf("unknown output format %q (want kv or yaml)", output)
		}
		return nil
	},
}

func init() {
	decodeCmd.Flags().StringP("schema", "s", "", "Schema file (.json, .jsonc, .yaml)")
	decodeCmd.Flags().StringP("file", "f", "-", "Blob to decode, - for stdin")
	decodeCmd.Flags().StringP("output", "o", "kv", "Output format: kv or yaml")
	requireFlag(decodeCmd, "schema")
	rootCmd.AddCommand(decodeCmd)
}
