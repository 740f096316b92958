package cmd

import (
	"fmt"
	"io"
	"os"

	"golang-kvconfig/internal/pkg/kvconfig"
	"golang-kvconfig/internal/pkg/logging"
	"golang-kvconfig/internal/pkg/schema"

	"github.com/spf13/cobra"
)

// loadInstance builds a field set from the schema file at path together with its codec.
func loadInstance(path, component string) (*schema.Instance, *kvconfig.Codec, error) {
	s, err := schema.Load(path)
	if err != nil {
		return nil, nil, err
	}
	inst := s.NewInstance()
	codec := kvconfig.New(inst, kvconfig.NoLock).WithLogger(logging.WithComponent(component))
	return inst, codec, nil
}

// readBlob reads path, or standard input when path is empty or "-".
func readBlob(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read blob: %w", err)
	}
	return string(data), nil
}

func requireFlag(cmd *cobra.Command, name string) {
	if err := cmd.MarkFlagRequired(name); err != nil {
		panic(err) // This should never happen during initialization
	}
}
