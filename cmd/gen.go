package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"golang-kvconfig/internal/pkg/schema"

	"github.com/spf13/cobra"
)

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate a Go field set from a schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		schemaPath, _ := flags.GetString("schema")
		outPath, _ := flags.GetString("out")

		opts := schema.GenerateOptions{Source: filepath.Base(schemaPath)}
		opts.Package, _ = flags.GetString("package")
		opts.Type, _ = flags.GetString("type")
		opts.Module, _ = flags.GetString("module")

		s, err := schema.Load(schemaPath)
		if err != nil {
			return err
		}
		src, err := schema.Generate(s, opts)
		if err != nil {
			return err
		}

		if outPath == "" || outPath == "-" {
			_, err = cmd.OutOrStdout().Write(src)
			return err
		}
		if err := os.WriteFile(outPath, src, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", outPath, err)
		}
		return nil
	},
}

func init() {
	genCmd.Flags().StringP("schema", "s", "", "Schema file (.json, .jsonc, .yaml)")
	genCmd.Flags().StringP("package", "p", "config", "Package of the generated file")
	genCmd.Flags().StringP("type", "t", "", "Struct name (default: schema file name + Config)")
	genCmd.Flags().String("module", schema.DefaultModule, "Module path providing internal/pkg/kvconfig")
	genCmd.Flags().StringP("out", "o", "-", "Output file, - for stdout")
	requireFlag(genCmd, "schema")
	rootCmd.AddCommand(genCmd)
}
