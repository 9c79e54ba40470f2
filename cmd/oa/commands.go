package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"taguchi/adapters/files"
	"taguchi/app"
	"taguchi/domain/core"
	"taguchi/domain/oa"
	"taguchi/internal/analysis"
	"taguchi/internal/catalogue"
	"taguchi/internal/migration"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readMatrix(path string) ([][]int, error) {
	reader, err := files.NewDataReader(path)
	if err != nil {
		return nil, err
	}
	return reader.ReadMatrix()
}

func newInspectCmd(svc *app.DesignService) *cobra.Command {
	var name string
	var strength int
	var format string

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Report balance, correlation and likely construction of an array file",
		Long: `Inspect reads a CSV, JSON or XLSX array and prints a combined report.

Example: oa inspect design.csv --format html > report.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matrix, err := readMatrix(args[0])
			if err != nil {
				return err
			}
			if name == "" {
				name = args[0]
			}
			opts := app.InspectOptions{Name: name, ClaimedStrength: strength}

			out := cmd.OutOrStdout()
			switch format {
			case "markdown", "md":
				md, err := svc.Report(cmd.Context(), matrix, opts)
				if err != nil {
					return err
				}
				_, err = io.WriteString(out, md)
				return err
			case "html":
				body, err := svc.ReportHTML(cmd.Context(), matrix, opts)
				if err != nil {
					return err
				}
				_, err = out.Write(body)
				return err
			case "json":
				in, err := svc.Inspect(cmd.Context(), matrix, opts)
				if err != nil {
					return err
				}
				return printJSON(out, in)
			}
			return fmt.Errorf("unknown format %q (use markdown, html or json)", format)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Report title (defaults to the file name)")
	cmd.Flags().IntVar(&strength, "strength", 0, "Claimed strength to verify, when a verifier is configured")
	cmd.Flags().StringVar(&format, "format", "markdown", "Output format: markdown, html or json")

	return cmd
}

func newImportCheckCmd(svc *app.DesignService) *cobra.Command {
	return &cobra.Command{
		Use:   "import-check [file]",
		Short: "Validate an array file and estimate its strength",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matrix, err := readMatrix(args[0])
			if err != nil {
				return err
			}
			result, err := svc.ValidateImport(matrix)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
}

func newBalanceCmd(svc *app.DesignService) *cobra.Command {
	return &cobra.Command{
		Use:   "balance [file]",
		Short: "Print level counts per factor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matrix, err := readMatrix(args[0])
			if err != nil {
				return err
			}
			report, err := svc.Balance(matrix)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FACTOR\tLEVEL\tCOUNT\tEXPECTED\tBALANCED")
			for f, counts := range report.LevelCounts {
				for _, level := range slices.Sorted(maps.Keys(counts)) {
					fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%t\n", f+1, level, counts[level], report.ExpectedCounts[f], report.FactorBalance[f])
				}
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if unbalanced := analysis.UnbalancedFactors(*report); len(unbalanced) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "unbalanced factors: %v\n", unbalanced)
			}
			return nil
		},
	}
}

func newCorrelationCmd(svc *app.DesignService) *cobra.Command {
	return &cobra.Command{
		Use:   "correlation [file]",
		Short: "Print the factor correlation matrix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matrix, err := readMatrix(args[0])
			if err != nil {
				return err
			}
			m, err := svc.Correlation(matrix)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
			for _, row := range m.Matrix {
				for _, v := range row {
					fmt.Fprintf(tw, "%.4f\t", v)
				}
				fmt.Fprintln(tw)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "max |r| = %.4f\n", m.MaxAbsOffDiagonal())
			return nil
		},
	}
}

func newClassifyCmd(svc *app.DesignService) *cobra.Command {
	return &cobra.Command{
		Use:   "classify [file]",
		Short: "Name the construction most likely to have produced an array",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matrix, err := readMatrix(args[0])
			if err != nil {
				return err
			}
			method, err := svc.Classify(matrix)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), method)
			return nil
		},
	}
}

func newSuggestCmd(svc *app.DesignService) *cobra.Command {
	var levels, strength int

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "List construction methods for a level count and strength",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printOptions(cmd.OutOrStdout(), svc.SuggestConstructions(levels, strength))
		},
	}

	cmd.Flags().IntVar(&levels, "levels", 2, "Levels per factor")
	cmd.Flags().IntVar(&strength, "strength", 2, "Required strength")

	return cmd
}

func printOptions(w io.Writer, options []oa.ConstructionOption) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tRUNS\tMAX FACTORS\tDESCRIPTION")
	for _, o := range options {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", o.Name, o.Runs, o.MaxFactors, o.Description)
	}
	return tw.Flush()
}

// parseLevels reads "3" as symmetric and "2,3,3" as mixed levels
func parseLevels(raw string) (oa.LevelSpec, error) {
	parts := strings.Split(raw, ",")
	values := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return oa.LevelSpec{}, core.NewParameterError("levels", fmt.Sprintf("%q is not a number", p))
		}
		values = append(values, v)
	}
	if len(values) == 1 {
		return oa.Symmetric(values[0]), nil
	}
	return oa.Mixed(values...), nil
}

func newValidateCmd(svc *app.DesignService) *cobra.Command {
	var levels string
	var factors, strength int

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check whether build parameters can be satisfied",
		Long: `Validate checks levels, factors and strength against the known constructions.

Example: oa validate --levels 3 --factors 4 --strength 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := parseLevels(levels)
			if err != nil {
				return err
			}
			result := svc.ValidateBuildParameters(oa.BuildRequest{Levels: spec, Factors: factors, Strength: strength})
			if err := printJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if !result.Valid {
				return fmt.Errorf("invalid build parameters: %s", strings.Join(result.Errors, "; "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&levels, "levels", "2", "Levels per factor, or a comma-separated list for mixed levels")
	cmd.Flags().IntVar(&factors, "factors", 3, "Number of factors")
	cmd.Flags().IntVar(&strength, "strength", 2, "Required strength")

	return cmd
}

func newCatalogueCmd(svc *app.DesignService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalogue",
		Short: "Browse the standard Taguchi arrays",
	}

	var minRuns, maxRuns, levels, minFactors int
	list := &cobra.Command{
		Use:   "list",
		Short: "List standard arrays, optionally filtered",
		RunE: func(cmd *cobra.Command, args []string) error {
			var f catalogue.Filter
			flags := cmd.Flags()
			for name, target := range map[string]struct {
				value *int
				field **int
			}{
				"min-runs":    {&minRuns, &f.MinRuns},
				"max-runs":    {&maxRuns, &f.MaxRuns},
				"levels":      {&levels, &f.Levels},
				"min-factors": {&minFactors, &f.MinFactors},
			} {
				if flags.Changed(name) {
					*target.field = target.value
				}
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tRUNS\tFACTORS\tLEVELS\tDESCRIPTION")
			for _, info := range svc.SearchStandardArrays(f) {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n", info.Name, info.Runs, info.Factors, info.Levels, info.Description)
			}
			return tw.Flush()
		},
	}
	list.Flags().IntVar(&minRuns, "min-runs", 0, "Minimum run count")
	list.Flags().IntVar(&maxRuns, "max-runs", 0, "Maximum run count")
	list.Flags().IntVar(&levels, "levels", 0, "Levels per factor")
	list.Flags().IntVar(&minFactors, "min-factors", 0, "Minimum factor count")

	var out string
	get := &cobra.Command{
		Use:   "get [name]",
		Short: "Print or save a standard array",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := svc.GetStandardArray(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if out == "" {
				return files.Encode(cmd.OutOrStdout(), files.FormatCSV, *data)
			}
			writer, err := files.NewDataWriter(out)
			if err != nil {
				return err
			}
			return writer.Write(*data)
		},
	}
	get.Flags().StringVarP(&out, "out", "o", "", "Output file (.csv, .json, .tex or .xlsx); stdout CSV when empty")

	cmd.AddCommand(list, get)
	return cmd
}

func newExportCmd(svc *app.DesignService) *cobra.Command {
	var name string
	var strength int

	cmd := &cobra.Command{
		Use:   "export [input] [output]",
		Short: "Convert an array between CSV, JSON, LaTeX and XLSX",
		Long: `Export reads an array file and writes it in the format implied by the output extension.

Example: oa export design.csv design.tex`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := loadOAData(svc, args[0], name, strength)
			if err != nil {
				return err
			}
			writer, err := files.NewDataWriter(args[1])
			if err != nil {
				return err
			}
			return writer.Write(*data)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Array name stored in JSON metadata")
	cmd.Flags().IntVar(&strength, "strength", 0, "Strength to record (defaults to the estimate)")

	return cmd
}

// loadOAData reads JSON files with their metadata and wraps other formats with
// a classified algorithm and the estimated strength
func loadOAData(svc *app.DesignService, path, name string, strength int) (*oa.OAData, error) {
	reader, err := files.NewDataReader(path)
	if err != nil {
		return nil, err
	}
	if format, _ := files.FormatFromPath(path); format == files.FormatJSON {
		return reader.ReadOAData()
	}

	matrix, err := reader.ReadMatrix()
	if err != nil {
		return nil, err
	}
	summary, err := svc.ValidateImport(matrix)
	if err != nil {
		return nil, err
	}
	method, err := svc.Classify(matrix)
	if err != nil {
		return nil, err
	}
	if strength <= 0 {
		strength = summary.EstimatedStrength
	}

	a, err := oa.FromMatrix(matrix)
	if err != nil {
		return nil, err
	}
	meta := oa.OAMetadata{Algorithm: method, CreatedAt: core.SystemClock()}
	if name != "" {
		meta.Name = &name
	}
	data := oa.NewOAData(core.NewID().String(), a.WithStrength(strength), meta)
	return &data, nil
}

func newMigrateCmd() *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the array and analysis tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				return fmt.Errorf("database URL required (--database-url or DATABASE_URL)")
			}
			return runMigrations(cmd.Context(), databaseURL)
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres connection string")

	return cmd
}

func runMigrations(ctx context.Context, databaseURL string) error {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	return migration.NewRunner().Run(ctx, db)
}
