package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ruizmr/8090-top-coder/pkg/config"
	"github.com/ruizmr/8090-top-coder/pkg/dataset"
	"github.com/ruizmr/8090-top-coder/pkg/enumerate"
	"github.com/ruizmr/8090-top-coder/pkg/expr"
	"github.com/ruizmr/8090-top-coder/pkg/parser"
	"github.com/ruizmr/8090-top-coder/pkg/reimburse"
	"github.com/ruizmr/8090-top-coder/pkg/synth"
)

var (
	configPath string
	casesPath  string
	verbose    bool
)

func loadConfig() (config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

func logger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func examples() ([]synth.Example, error) {
	cases, err := dataset.Load(casesPath)
	if err != nil {
		return nil, err
	}

	exs := make([]synth.Example, 0, len(cases))
	for _, c := range cases {
		exs = append(exs, synth.Example{Env: c.Env(), Expected: c.ExpectedOutput})
	}
	return exs, nil
}

func enumerateCmd() *cobra.Command {
	var maxSize int
	var stream bool

	cmd := &cobra.Command{
		Use:   "enumerate",
		Short: "print every unique expression up to the size bound",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if maxSize > 0 {
				cfg.MaxSize = maxSize
			}
			pools, err := cfg.Pools()
			if err != nil {
				return err
			}

			en, err := enumerate.New(pools)
			if err != nil {
				return err
			}

			count := 0
			emit := func(e expr.Expr) error {
				count += 1
				_, err := fmt.Fprintln(cmd.OutOrStdout(), e)
				return err
			}

			if stream {
				err = en.Stream(cfg.MaxSize, emit)
			} else {
				for _, e := range en.Enumerate(cfg.MaxSize) {
					if err = emit(e); err != nil {
						break
					}
				}
			}
			if err != nil {
				return err
			}

			logger().Info("enumeration complete", "max_size", cfg.MaxSize, "expressions", count)
			return nil
		},
	}

	cmd.Flags().IntVarP(&maxSize, "max-size", "n", 0, "maximum AST size (default from config)")
	cmd.Flags().BoolVar(&stream, "stream", false,
		"stream the topmost size class instead of materializing it")
	return cmd
}

func searchCmd() *cobra.Command {
	var budget time.Duration

	cmd := &cobra.Command{
		Use:   "search",
		Short: "search for the smallest program reproducing every case",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if budget > 0 {
				cfg.Budget = config.Duration(budget)
			}
			sc, err := cfg.SynthConfig()
			if err != nil {
				return err
			}

			exs, err := examples()
			if err != nil {
				return err
			}

			log := logger()
			s, err := synth.New(sc, log)
			if err != nil {
				return err
			}

			res, err := s.Search(cmd.Context(), exs)
			if err != nil {
				return err
			}
			if res.Program == nil {
				return fmt.Errorf("search: no viable candidate found")
			}

			log.Info("search finished", "exact", res.Exact,
				"budget_exceeded", res.BudgetExceeded, "candidates", res.Candidates,
				"mismatches", res.Mismatches, "abs_error", res.AbsError,
				"size", res.Size, "elapsed", res.Elapsed)
			fmt.Fprintln(cmd.OutOrStdout(), res.Program)
			return nil
		},
	}

	cmd.Flags().StringVar(&casesPath, "cases", "public_cases.json", "labeled cases file")
	cmd.Flags().DurationVar(&budget, "budget", 0, "overall search budget (0 = none)")
	return cmd
}

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "print exploratory summaries of the labeled cases",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cases, err := dataset.Load(casesPath)
			if err != nil {
				return err
			}

			for i, s := range dataset.Summarize(cases) {
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				fmt.Fprint(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&casesPath, "cases", "public_cases.json", "labeled cases file")
	return cmd
}

func checkCmd() *cobra.Command {
	var tolerance float64

	cmd := &cobra.Command{
		Use:   "check",
		Short: "score the legacy reimbursement model against the cases",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cases, err := dataset.Load(casesPath)
			if err != nil {
				return err
			}
			if len(cases) == 0 {
				return fmt.Errorf("check: no cases")
			}

			mismatches := 0
			var absError float64
			for _, c := range cases {
				got := reimburse.Legacy(c.Input.TripDurationDays, c.Input.MilesTraveled,
					c.Input.TotalReceiptsAmount)
				abs := math.Abs(got - c.ExpectedOutput)
				absError += abs
				if abs > tolerance {
					mismatches += 1
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "cases: %d\nmismatches: %d\nmean abs error: %.4f\n",
				len(cases), mismatches, absError/float64(len(cases)))
			return nil
		},
	}

	cmd.Flags().StringVar(&casesPath, "cases", "public_cases.json", "labeled cases file")
	cmd.Flags().Float64Var(&tolerance, "tolerance", 0.01, "per-case acceptance band")
	return cmd
}

func evalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval <program>",
		Short: "evaluate a program in canonical form against the cases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stmt, err := parser.ParseStmt(args[0])
			if err != nil {
				return err
			}

			cases, err := dataset.Load(casesPath)
			if err != nil {
				return err
			}
			if len(cases) == 0 {
				return fmt.Errorf("eval: no cases")
			}

			mismatches := 0
			var absError float64
			for _, c := range cases {
				got, err := stmt.Eval(c.Env())
				if err != nil {
					return err
				}
				abs := math.Abs(got - c.ExpectedOutput)
				absError += abs
				if abs > 0.01 {
					mismatches += 1
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "cases: %d\nmismatches: %d\nmean abs error: %.4f\n",
				len(cases), mismatches, absError/float64(len(cases)))
			return nil
		},
	}

	cmd.Flags().StringVar(&casesPath, "cases", "public_cases.json", "labeled cases file")
	return cmd
}

func main() {
	root := &cobra.Command{
		Use:           "topcoder",
		Short:         "enumerative search for reimbursement formulas",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML search config")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	root.AddCommand(enumerateCmd(), searchCmd(), statsCmd(), checkCmd(), evalCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "topcoder: %s\n", err)
		os.Exit(1)
	}
}
