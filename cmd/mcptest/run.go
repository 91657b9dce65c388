package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mcptest/mcptest/pkg/config"
	"github.com/mcptest/mcptest/pkg/mcp"
	"github.com/mcptest/mcptest/pkg/output"
	"github.com/mcptest/mcptest/pkg/testrunner"
)

var runConfigPath string

var runCmd = &cobra.Command{
	Use:   "run <suite-glob...>",
	Short: "Run one or more test suites against a server descriptor",
	Long: `Discovers suite files from the given glob patterns, connects once
per suite to the server described by --config, and reports a PASS/FAIL/ERR
line per test plus a final summary table. Exits non-zero if any test
failed or errored.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSuites(args, runConfigPath)
	},
}

func init() {
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "path to the server launch descriptor (required)")
	runCmd.MarkFlagRequired("config")
}

func runSuites(globs []string, configPath string) error {
	reporter := output.New()
	reporter.Banner(config.FrameworkVersion)

	paths, err := discoverSuites(globs)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no suite files matched %v", globs)
	}

	desc, err := config.LoadDescriptor(configPath)
	if err != nil {
		return fmt.Errorf("loading descriptor: %w", err)
	}

	logger := newCLILogger()
	runner := testrunner.New()

	var results []output.SuiteResult
	failed := false

	for _, path := range paths {
		suite, err := config.LoadSuite(path)
		if err != nil {
			reporter.Error("failed to load suite", "path", path, "error", err)
			failed = true
			continue
		}

		reporter.Suite(suite.Description)

		client, err := mcp.NewClient(*desc, mcp.WithLogger(logger))
		if err != nil {
			reporter.Error("failed to construct client", "path", path, "error", err)
			failed = true
			continue
		}

		suiteOutcome := runner.RunSuite(context.Background(), suite, client)
		for _, t := range suiteOutcome.Tests {
			reporter.Test(toReportResult(t))
			if t.Outcome != testrunner.Pass {
				failed = true
			}
		}
		results = append(results, toReportSuite(suite.Description, suiteOutcome))
	}

	reporter.Summary(results)

	if failed {
		return fmt.Errorf("one or more tests failed")
	}
	return nil
}

func discoverSuites(globs []string) ([]string, error) {
	var paths []string
	for _, g := range globs {
		matches, err := filepath.Glob(g)
		if err != nil {
			return nil, fmt.Errorf("invalid glob %q: %w", g, err)
		}
		paths = append(paths, matches...)
	}
	return paths, nil
}

func toReportResult(t testrunner.TestOutcome) output.TestResult {
	r := output.TestResult{
		Name:     t.Name,
		Duration: t.Duration,
	}
	switch t.Outcome {
	case testrunner.Pass:
		r.Outcome = output.Pass
	case testrunner.Fail:
		r.Outcome = output.Fail
	default:
		r.Outcome = output.Error
		r.ErrorKind = string(t.ErrorKind)
	}
	for _, d := range t.Diffs {
		r.Diffs = append(r.Diffs, d.String())
	}
	if len(t.Suggestions) > 0 {
		r.Hint = t.Suggestions[0].Rationale
	}
	return r
}

func toReportSuite(description string, s *testrunner.SuiteOutcome) output.SuiteResult {
	sr := output.SuiteResult{Description: description, Duration: s.Duration}
	for _, t := range s.Tests {
		sr.Tests = append(sr.Tests, toReportResult(t))
	}
	return sr
}
