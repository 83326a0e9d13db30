package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/askiada/iris-pipeline/internal/config"
	"github.com/askiada/iris-pipeline/pkg/iris"
)

var describeFlags struct {
	config string
}

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Print the steps of the pipeline and their configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := &config.RunConfig{
			Notebook: config.Notebook{Path: config.DefaultNotebook, Runner: config.RunnerPapermill},
		}
		if describeFlags.config != "" {
			var err error
			cfg, err = config.Load(describeFlags.config)
			if err != nil {
				return err //nolint:wrapcheck
			}
		}

		def, err := newDefinition(cfg, logger)
		if err != nil {
			return err
		}

		return printDescription(cmd.OutOrStdout(), def.Describe())
	},
}

func printDescription(wrt io.Writer, desc iris.Description) error {
	tw := tabwriter.NewWriter(wrt, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "pipeline %s\n\n", desc.Name)
	for _, s := range desc.Solids {
		fmt.Fprintf(tw, "%s\t%s\n", s.Name, s.Description)
		if s.Input != "" {
			fmt.Fprintf(tw, "  input\t%s\n", s.Input)
		}
		if s.Output != "" {
			fmt.Fprintf(tw, "  output\t%s\n", s.Output)
		}
		for _, f := range s.Config {
			required := ""
			if f.Required {
				required = " (required)"
			}
			def := ""
			if f.Default != "" {
				def = " [default " + f.Default + "]"
			}
			fmt.Fprintf(tw, "  config.%s\t%s%s%s: %s\n", f.Name, f.Type, required, def, f.Description)
		}
	}

	fmt.Fprintln(tw)
	for _, e := range desc.Edges {
		fmt.Fprintf(tw, "%s -> %s\t(%s)\n", e.From, e.To, e.Input)
	}

	return tw.Flush() //nolint:wrapcheck
}
