package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aescanero/dagoc/internal/application/compiler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCompileCmd(c *cli) *cobra.Command {
	var (
		graph  string
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "compile SOURCE",
		Short: "Compile graphs from a CSV source into cached bundles",
		Long: `Compile reads a CSV workflow definition (use - for stdin) and compiles
one graph, or every graph in the source when --graph is omitted. Unchanged
graphs are served from the bundle cache.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}

			a, err := buildApp(cmd.Context(), c.cfg, prometheus.NewRegistry(), c.logger)
			if err != nil {
				return err
			}
			defer a.Close(c.logger)

			var results []*compiler.Result
			if graph != "" {
				res, err := a.compiler.Compile(cmd.Context(), rows, graph)
				if err != nil {
					return err
				}
				results = []*compiler.Result{res}
			} else {
				results, err = a.compiler.CompileAll(cmd.Context(), rows)
				if err != nil {
					return err
				}
			}

			ext := a.compiler.Codec().Name()
			out := cmd.OutOrStdout()
			for _, res := range results {
				cache := "miss"
				if res.CacheHit {
					cache = "hit"
				}
				fmt.Fprintf(out, "%s\t%s\tcache=%s\twarnings=%d\n",
					res.Bundle.Graph.Name, res.Bundle.Hash, cache, len(res.Warnings))
				for _, w := range res.Warnings {
					fmt.Fprintf(out, "  warning: %s\n", w.Error())
				}

				if outDir == "" {
					continue
				}
				path, err := writeBundle(outDir, res.Bundle.Graph.Name, ext, res.Data)
				if err != nil {
					return err
				}
				c.logger.Info("bundle written",
					zap.String("graph", res.Bundle.Graph.Name),
					zap.String("path", path))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&graph, "graph", "g", "", "graph to compile (default: all graphs in the source)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "also write each bundle into this directory")

	return cmd
}

func writeBundle(dir, graph, ext string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s.%s", filepath.Base(graph), ext))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write bundle: %w", err)
	}
	return path, nil
}
