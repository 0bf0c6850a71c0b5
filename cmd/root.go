package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/dataknots/knotql/config"
	"github.com/dataknots/knotql/knots"
	"github.com/dataknots/knotql/output/formats"
	"github.com/dataknots/knotql/query"
	"github.com/dataknots/knotql/sources/csv"
	"github.com/dataknots/knotql/sources/json"
)

var (
	inputPath    string
	outputFormat string
	configPath   string
	takeCount    int
	dropCount    int
	aggregateFn  string
	profilePath  string
)

var rootCmd = &cobra.Command{
	Use:   "knotql 'path.expression'",
	Short: "Run a navigation query over a CSV or JSON file",
	Example: `knotql name --input employees.csv
knotql department.name --input employees.json --agg count
knotql salary --input employees.csv --agg max --output json`,
	Args:          cobra.ExactArgs(1),
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if profilePath != "" {
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(profilePath)).Stop()
		}

		cfg, err := config.Read(configPath)
		if err != nil {
			return err
		}
		format := outputFormat
		if format == "" {
			format = cfg.Output
		}

		input, err := loadInput(inputPath)
		if err != nil {
			return err
		}

		q := parseQuery(args[0])
		if takeCount != 0 {
			q = q.Then(query.Take(takeCount))
		}
		if dropCount != 0 {
			q = q.Then(query.Drop(dropCount))
		}
		if aggregateFn != "" {
			suffix, err := parseAggregate(aggregateFn)
			if err != nil {
				return err
			}
			q = q.Then(suffix)
		}

		out, err := knots.Run(input, q)
		if err != nil {
			return err
		}

		formatter, err := formats.New(format, os.Stdout)
		if err != nil {
			return err
		}
		return formats.Render(formatter, out)
	},
}

func loadInput(path string) (knots.DataKnot, error) {
	if path == "" {
		return knots.Unit(), nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return csv.Load(path)
	case ".json", ".jsonl", ".ndjson":
		return json.Load(path)
	}
	return knots.DataKnot{}, fmt.Errorf("unsupported input file extension: %s", path)
}

func parseQuery(expression string) query.Query {
	if expression == "" || expression == "It" {
		return query.It
	}
	return query.Nav(strings.Split(expression, ".")...)
}

func parseAggregate(name string) (query.Query, error) {
	switch name {
	case "count":
		return query.Count(), nil
	case "sum":
		return query.Sum(), nil
	case "min":
		return query.Min(), nil
	case "max":
		return query.Max(), nil
	}
	return query.Query{}, fmt.Errorf("unknown aggregate %s", name)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVar(&inputPath, "input", "", "input file (.csv or .json lines)")
	rootCmd.Flags().StringVar(&outputFormat, "output", "", "output format: table, csv or json")
	rootCmd.Flags().StringVar(&configPath, "config", "", "configuration file path")
	rootCmd.Flags().IntVar(&takeCount, "take", 0, "keep the first n elements (negative drops the last -n)")
	rootCmd.Flags().IntVar(&dropCount, "drop", 0, "drop the first n elements (negative keeps the last -n)")
	rootCmd.Flags().StringVar(&aggregateFn, "agg", "", "aggregate the result: count, sum, min or max")
	rootCmd.Flags().StringVar(&profilePath, "profile", "", "write a cpu profile to the given directory")
}
