// Package main provides the splines CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const version = "v0.1.0-dev"

func makeRootCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "splines [command] (flags)",
		Short: "splines builds and evaluates tensor-product B-spline interpolants.",
		Long: `splines builds and evaluates tensor-product B-spline interpolants.

Typical usage:
    splines fit --config problem.yaml --samples 10000
        Interpolate the configured test function and report the error at
        random points.
`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	command.AddCommand(makeVersionCommand())
	command.AddCommand(makeFitCommand())
	return command
}

func makeVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "splines %s\n", version)
		},
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func main() {
	if err := makeRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
