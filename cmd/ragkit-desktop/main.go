package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := buildRoot().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// GlobalFlags holds the persistent flags shared by all subcommands.
type GlobalFlags struct {
	ConfigPath string
}

// StubFlags holds flags for the stub command.
type StubFlags struct {
	Port             int
	FailHealthProbes int
}

func buildRoot() *cobra.Command {
	globalFlags := &GlobalFlags{}
	stubFlags := &StubFlags{}

	root := &cobra.Command{
		Use:           "ragkit-desktop",
		Short:         "Supervisor for the ragkit desktop backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&globalFlags.ConfigPath, "config", "", "path to desktop.toml (default ~/.ragkit/desktop.toml)")

	root.AddCommand(
		createRunCommand(globalFlags),
		createStubCommand(stubFlags),
	)
	return root
}
