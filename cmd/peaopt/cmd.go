package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newRootCmd() *cobra.Command {
	var dumpMode string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "peaopt <program.asm>",
		Short: "Run the partial escape analysis pass over a textual SSA program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], dumpMode, verbose)
		},
	}

	var flags *pflag.FlagSet = cmd.Flags()
	flags.StringVar(&dumpMode, "dump", "", "print a Graphviz dump instead of the rewritten program: \"cfg\" or \"escape\"")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log the run's allocation diagnostics, back-edge aborts and summary to stderr")

	return cmd
}
