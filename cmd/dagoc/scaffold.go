package main

import (
	"fmt"

	"github.com/aescanero/dagoc/internal/application/graphspec"
	"github.com/aescanero/dagoc/internal/application/scaffold"
	"github.com/spf13/cobra"
)

func newScaffoldCmd(c *cli) *cobra.Command {
	var (
		graph string
		opts  scaffold.Options
	)

	cmd := &cobra.Command{
		Use:   "scaffold SOURCE",
		Short: "Generate routing function stubs for a graph",
		Long: `Scaffold writes one Go file per routing node of the graph, holding a stub
per edge condition. Existing files are left untouched unless --force is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}

			spec, warnings, err := graphspec.NewBuilder(c.logger).BuildGraph(rows, graph)
			if err != nil {
				return err
			}

			results, err := scaffold.NewGenerator(c.logger).Generate(spec, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, w := range warnings {
				fmt.Fprintf(out, "warning: %s\n", w.Error())
			}
			for _, r := range results {
				fmt.Fprintf(out, "%s\t%s\n", r.Status, r.Path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&graph, "graph", "g", "", "graph to scaffold")
	cmd.Flags().StringVarP(&opts.Dir, "dir", "d", "", "output directory")
	cmd.Flags().StringVarP(&opts.Package, "package", "p", scaffold.DefaultPackage, "package name of generated files")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite existing stubs")
	_ = cmd.MarkFlagRequired("graph")
	_ = cmd.MarkFlagRequired("dir")

	return cmd
}
