package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/fip-lang/fip/pkg/fip"
	"github.com/fip-lang/fip/pkg/ioctx"
	"github.com/spf13/cobra"
)

func main() {
	var debug bool

	rootCmd := &cobra.Command{
		Use:   "fip [flags] [file]",
		Short: "FIP language interpreter",
		Long: `FIP is a small, expression-oriented functional language with
auto-currying and a static purity/predicate naming discipline.`,
		Example: `  # Run a script
  fip script.fip

  # Run with debug logging enabled
  fip --debug script.fip`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runEntryPoint(cmd.Context(), debug)
			}
			return runFile(cmd.Context(), args[0], debug)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	rootCmd.AddCommand(lintCmd())
	rootCmd.AddCommand(fmtCmd())

	ctx := context.Background()
	ctx = ioctx.WithStdout(ctx, os.Stdout)
	ctx = ioctx.WithStderr(ctx, os.Stderr)
	if err := fang.Execute(ctx, rootCmd,
		fang.WithVersion("v0.1.0"),
		fang.WithCommit("dev"),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			_, _ = fmt.Fprintln(w, err.Error())
		}),
	); err != nil {
		os.Exit(1)
	}
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// runEntryPoint runs the project's fip.toml-configured entry script when
// invoked with no file argument, grounded on pkg/dang/project.go's
// FindProjectConfig walk-up-to-.git resolution.
func runEntryPoint(ctx context.Context, debug bool) error {
	setupLogging(debug)

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	configPath, config, err := fip.FindProjectConfig(cwd)
	if err != nil {
		return fmt.Errorf("failed to find fip.toml: %w", err)
	}
	if config == nil || config.Entry == "" {
		return fmt.Errorf("no fip.toml with an entry script found starting from %s", cwd)
	}
	if config.Debug {
		setupLogging(true)
	}

	entry := config.Entry
	if !os.IsPathSeparator(entry[0]) {
		entry = fmt.Sprintf("%s/%s", cwdOf(configPath), entry)
	}
	return runFile(ctx, entry, debug || config.Debug)
}

func cwdOf(configPath string) string {
	dir := configPath
	for i := len(dir) - 1; i >= 0; i-- {
		if os.IsPathSeparator(dir[i]) {
			return dir[:i]
		}
	}
	return "."
}

func runFile(ctx context.Context, path string, debug bool) error {
	setupLogging(debug)

	result, _, err := fip.EvaluateFile(ctx, path)
	if err != nil {
		if diag, ok := err.(fip.Diagnostic); ok {
			fmt.Fprintln(os.Stderr, fip.RenderDiagnosticsColor([]fip.Diagnostic{diag})[0])
			os.Exit(1)
		}
		return err
	}
	if _, isNull := result.(fip.NullValue); !isNull {
		fmt.Fprintln(ioctx.Stdout(ctx), fip.DisplayString(result))
	}
	return nil
}

func lintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint <file>...",
		Short: "Check purity/predicate suffix discipline without running the program",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(args)
		},
	}
	return cmd
}

func runLint(paths []string) error {
	var total int
	for _, path := range paths {
		diags, err := fip.AnalyzeFile(path)
		if err != nil {
			return err
		}
		for _, line := range fip.RenderDiagnosticsColor(diags) {
			fmt.Fprintln(os.Stderr, line)
		}
		total += len(diags)
	}
	if total > 0 {
		return fmt.Errorf("%d suffix violation(s) found", total)
	}
	return nil
}

func fmtCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "fmt <file>...",
		Aliases: []string{"format"},
		Short:   "Format FIP source files",
		Long:  "Canonical formatting is not yet implemented; this subcommand is a placeholder.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("fip fmt: unimplemented")
		},
	}
	return cmd
}
