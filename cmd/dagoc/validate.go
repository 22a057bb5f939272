package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aescanero/dagoc/internal/application/graphspec"
	"github.com/aescanero/dagoc/pkg/domain"
	"github.com/spf13/cobra"
)

// errInvalid is returned when at least one validated graph has errors.
var errInvalid = errors.New("validation failed")

func newValidateCmd(c *cli) *cobra.Command {
	var (
		graph  string
		format string
	)

	cmd := &cobra.Command{
		Use:   "validate SOURCE",
		Short: "Statically validate graphs without compiling them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("unknown format %q (want text or json)", format)
			}

			rows, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}

			names := []string{graph}
			if graph == "" {
				names = graphNames(rows)
			}
			if len(names) == 0 {
				return fmt.Errorf("source contains no graphs")
			}

			builder := graphspec.NewBuilder(c.logger)
			reports := make([]*domain.ValidationReport, 0, len(names))
			valid := true
			for _, name := range names {
				report := builder.Validate(rows, name)
				valid = valid && report.Valid
				reports = append(reports, report)
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(reports); err != nil {
					return fmt.Errorf("failed to encode reports: %w", err)
				}
			} else {
				for _, r := range reports {
					printReport(out, r)
				}
			}

			if !valid {
				return errInvalid
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&graph, "graph", "g", "", "graph to validate (default: all graphs in the source)")
	cmd.Flags().StringVar(&format, "format", "text", "output format (text, json)")

	return cmd
}

func printReport(w io.Writer, r *domain.ValidationReport) {
	status := "ok"
	if !r.Valid {
		status = "invalid"
	}
	fmt.Fprintf(w, "%s: %s (%d errors, %d warnings)\n", r.Graph, status, len(r.Errors), len(r.Warnings))
	for _, issue := range r.Errors {
		fmt.Fprintf(w, "  error   [%s] %s\n", issue.Kind, issue.Message)
	}
	for _, issue := range r.Warnings {
		fmt.Fprintf(w, "  warning [%s] %s\n", issue.Kind, issue.Message)
	}
	if a := r.Analysis; a != nil {
		depth := "n/a"
		if a.MaxDepth != nil {
			depth = fmt.Sprint(*a.MaxDepth)
		}
		fmt.Fprintf(w, "  dag=%t depth=%s fan-outs=%d fan-ins=%d\n",
			a.IsDAG, depth, len(a.FanOuts), len(a.FanIns))
	}
}
