package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/maxshaw/dbmodel/gen"
)

func main() {
	if err := newCommand().Execute(); err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var opts gen.Options

	cmd := &cobra.Command{
		Use:           "gen",
		Short:         "Generate model definitions",
		Long:          "Scan a model package and write the table definition of every model into a generated file",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := gen.Generate(opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, m := range res.Models {
				fmt.Fprintf(out, "  %s -> %s\n", color.CyanString(m.Name), m.Table)
			}
			color.New(color.FgGreen, color.Bold).Fprintf(out, "wrote %d definitions to %s\n", len(res.Models), res.File)

			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Dir, "dir", gen.DefaultDir, "model package directory")
	cmd.Flags().StringVar(&opts.Output, "out", gen.DefaultOutput, "generated file name, written inside --dir")
	cmd.Flags().StringVar(&opts.Connection, "connection", "", "connection name written into every definition")

	return cmd
}
