package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jward/schematic"
	"github.com/jward/schematic/internal/config"
	"github.com/jward/schematic/scripts"
)

var (
	flagFormat     string
	flagConfig     string
	flagVerbose    bool
	flagGear       string
	flagIndex      string
	flagScriptsDir string
	flagInput      string
	flagNoColor    bool
)

// settings is the config file merged with explicit flags.
var settings config.Config

var logger = zap.NewNop()

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "schematic",
	Short: "Find part numbers and gear ratios in an engine schematic",
	Long: `schematic reads a character grid of numbers and symbols and reports
which numbers touch a symbol and which gears join exactly two numbers.

Input is read from a file or from standard input. All line and column numbers
are 0-based.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := resolveSettings(cmd); err != nil {
			return err
		}
		if flagNoColor {
			color.NoColor = true
		}

		zc := zap.NewProductionConfig()
		if settings.Verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	// No Run: prints help by default.
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagFormat, "format", "json", "output format: json|text")
	pf.StringVar(&flagConfig, "config", "", "config file (default: nearest "+config.FileName+")")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging to stderr")
	pf.StringVar(&flagGear, "gear", "*", "symbol character paired into gear ratios")
	pf.StringVar(&flagIndex, "index", "memory", "token index: memory|sqlite")
	pf.StringVar(&flagScriptsDir, "scripts-dir", "", "load report scripts from disk path instead of embedded")
	pf.StringVarP(&flagInput, "input", "i", "-", "schematic file, or - for stdin")
	pf.BoolVar(&flagNoColor, "no-color", false, "disable colored text output")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(reportCmd)
}

// resolveSettings loads the config file, then applies flags the user set
// explicitly on top of it.
func resolveSettings(cmd *cobra.Command) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting cwd: %w", err)
	}
	cfg, path, err := config.Resolve(flagConfig, cwd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Format = flagFormat
	}
	if flags.Changed("gear") {
		cfg.Gear = flagGear
	}
	if flags.Changed("index") {
		cfg.Index = flagIndex
	}
	if flags.Changed("verbose") {
		cfg.Verbose = flagVerbose
	}
	if flags.Changed("scripts-dir") {
		cfg.ScriptsDir = flagScriptsDir
	}
	cfg.Format = strings.ToLower(cfg.Format)

	// outputError reads flagFormat, so keep it in step before validating.
	flagFormat = cfg.Format
	if err := validateFormat(cfg.Format); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		if path != "" {
			return fmt.Errorf("%s: %w", path, err)
		}
		return err
	}
	settings = cfg
	return nil
}

// openInput returns the named file, or stdin for "" and "-".
func openInput(name string) (io.ReadCloser, error) {
	if name == "" || name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	return f, nil
}

// openEngine builds an Engine from settings and loads the input into it.
func openEngine(ctx context.Context, input string) (*schematic.Engine, error) {
	kind, err := schematic.ParseIndexKind(settings.Index)
	if err != nil {
		return nil, err
	}
	opts := []schematic.Option{
		schematic.WithGear(settings.GearByte()),
		schematic.WithIndex(kind),
		schematic.WithLogger(logger),
		scriptsOption(),
	}

	engine, err := schematic.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}

	r, err := openInput(input)
	if err != nil {
		engine.Close()
		return nil, err
	}
	defer r.Close()

	if err := engine.Load(ctx, r); err != nil {
		engine.Close()
		return nil, fmt.Errorf("loading schematic: %w", err)
	}
	return engine, nil
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Print the part number sum and the gear ratio sum",
	Long:  "Reads a schematic from file (or --input, or stdin) and reports Part 1 (sum of numbers touching a symbol) and Part 2 (sum of gear ratios).",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	input := flagInput
	if len(args) > 0 {
		input = args[0]
	}

	engine, err := openEngine(cmd.Context(), input)
	if err != nil {
		return outputError("analyze", err)
	}
	defer engine.Close()

	q := engine.Query()
	partA, err := q.PartNumberSum()
	if err != nil {
		return outputError("analyze", err)
	}
	partB, err := q.GearRatioSum()
	if err != nil {
		return outputError("analyze", err)
	}

	return outputResult(CLIResult{
		Command: "analyze",
		Results: CLIAnalysis{PartNumbers: partA, GearRatios: partB},
	})
}

var reportCmd = &cobra.Command{
	Use:   "report [name]",
	Short: "Run a Risor report script over the schematic",
	Long:  "Runs report/<name>.risor from the embedded scripts (or --scripts-dir) and prints the values it emitted. Without a name, lists the available reports.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		engine, err := schematic.New(scriptsOption())
		if err != nil {
			return outputError("report", err)
		}
		defer engine.Close()
		names, err := engine.Reports()
		if err != nil {
			return outputError("report", err)
		}
		return outputResult(CLIResult{Command: "report", Results: CLIReportList(names)})
	}

	engine, err := openEngine(cmd.Context(), flagInput)
	if err != nil {
		return outputError("report", err)
	}
	defer engine.Close()

	values, err := engine.RunReport(cmd.Context(), args[0])
	if err != nil {
		return outputError("report", err)
	}
	return outputResult(CLIResult{
		Command: "report",
		Results: CLIReport{Name: args[0], Values: values},
	})
}

// scriptsOption picks the report script source: --scripts-dir overrides the
// embedded FS.
func scriptsOption() schematic.Option {
	if settings.ScriptsDir != "" {
		return schematic.WithScriptsDir(settings.ScriptsDir)
	}
	return schematic.WithScriptsFS(scripts.FS)
}
