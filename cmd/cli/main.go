package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"goeda/adapters/postgres"
	"goeda/adapters/render"
	"goeda/app"
	"goeda/domain/core"
	"goeda/internal/config"
	"goeda/internal/testkit"
	"goeda/ports"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "goeda",
		Short: "Automated exploratory data analysis for tabular files",
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newDemoCmd(),
		newHistoryCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newAnalyzeCmd() *cobra.Command {
	var outDir string
	var format string
	var concurrency int

	cmd := &cobra.Command{
		Use:   "analyze [files...]",
		Short: "Analyze one or more CSV/TSV/XLSX files",
		Long: `Analyze tabular files and write a report per file.

Multiple files are processed concurrently.

Example: goeda analyze sales.csv customers.tsv --format html --out reports/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := buildService(outDir)
			if err != nil {
				return err
			}
			return runAnalyze(cmd.Context(), service, args, format, concurrency)
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "", "Output directory for reports (default from config)")
	cmd.Flags().StringVar(&format, "format", "html", "Report format: html, markdown, markdown-html, or json")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Maximum files analyzed in parallel")

	return cmd
}

func runAnalyze(ctx context.Context, service *app.AnalysisService, paths []string, format string, concurrency int) error {
	switch format {
	case "html", "markdown", "markdown-html", "json":
	default:
		return fmt.Errorf("unknown format %q (want html, markdown, markdown-html, or json)", format)
	}
	if concurrency < 1 {
		concurrency = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, path := range paths {
		path := path
		g.Go(func() error {
			result, err := service.AnalyzeFile(ctx, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			return emitReport(service, result, path, format)
		})
	}

	return g.Wait()
}

func emitReport(service *app.AnalysisService, result *app.AnalysisResult, path, format string) error {
	rep := result.Report

	switch format {
	case "html":
		written, err := service.WriteHTML(rep)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Printf("%s: %d rows, %d columns analyzed in %dms -> %s\n",
			filepath.Base(path), rep.Overview.Rows, rep.Overview.Columns, result.ElapsedMs, written)
	case "markdown":
		fmt.Println(render.Markdown(rep))
	case "markdown-html":
		// Markdown rendition converted to an HTML fragment for embedding
		os.Stdout.Write(render.MarkdownHTML(rep))
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func newDemoCmd() *cobra.Command {
	var seed int64
	var rows int
	var format string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Analyze a generated sample dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := buildService("")
			if err != nil {
				return err
			}

			genCfg := testkit.DefaultGeneratorConfig()
			genCfg.Seed = seed
			if rows > 0 {
				genCfg.Rows = rows
			}
			gen := testkit.NewDatasetGenerator(genCfg)

			result, err := service.AnalyzeStream(cmd.Context(), strings.NewReader(gen.GenerateCSV()), "sample_employees.csv")
			if err != nil {
				return err
			}
			return emitReport(service, result, "sample_employees.csv", format)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for the generated dataset")
	cmd.Flags().IntVar(&rows, "rows", 0, "Row count for the generated dataset (0 = default)")
	cmd.Flags().StringVar(&format, "format", "markdown", "Report format: html, markdown, markdown-html, or json")

	return cmd
}

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored report runs (requires DATABASE_URL)",
		RunE: func(cmd *cobra.Command, args []string) error {
			history, closeFn, err := connectHistory()
			if err != nil {
				return err
			}
			defer closeFn()

			runs, err := history.List(cmd.Context(), limit, 0)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("No stored reports.")
				return nil
			}

			for _, run := range runs {
				fmt.Printf("%s  %-30s  %6d rows  %3d cols  %s\n",
					run.ID, run.DatasetName, run.Rows, run.Columns,
					run.CreatedAt.Time().Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to list")

	cmd.AddCommand(&cobra.Command{
		Use:   "rm [report-id]",
		Short: "Delete a stored report run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := core.ParseReportID(args[0])
			if err != nil {
				return err
			}

			history, closeFn, err := connectHistory()
			if err != nil {
				return err
			}
			defer closeFn()

			if err := history.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Printf("Deleted report %s\n", id)
			return nil
		},
	})

	return cmd
}

func buildService(outDir string) (*app.AnalysisService, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if outDir != "" {
		cfg.Paths.OutputDir = outDir
	}
	return app.NewAnalysisService(cfg, nil)
}

func connectHistory() (ports.ReportRepository, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.URL == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL is not set")
	}

	db, err := postgres.Connect(cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	if err := postgres.EnsureSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return postgres.NewReportRepository(db), func() { db.Close() }, nil
}
