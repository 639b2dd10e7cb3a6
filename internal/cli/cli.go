// Package cli implements the fmp4info command line.
package cli

import (
	"fmt"
	"io"

	"github.com/alecthomas/kong"

	"github.com/autobrr/go-fmp4info/internal/inspect"
	"github.com/autobrr/go-fmp4info/internal/logger"
)

// Run executes the command line and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	var cli struct {
		Version    bool     `help:"print version and exit"`
		JSON       bool     `help:"output the report as JSON"`
		Verbose    bool     `help:"enable debug logging"`
		MaxSamples uint32   `name:"max-samples" default:"1048576" help:"maximum samples accepted per track run (0 disables the cap)"`
		Files      []string `arg:"" optional:"" help:"fragmented MP4 files to inspect"`
	}

	exited := false
	parser, err := kong.New(&cli,
		kong.Name("fmp4info"),
		kong.Description("Fragmented MP4 inspector"),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) { exited = true }),
	)
	if err != nil {
		panic(err)
	}

	_, err = parser.Parse(args[1:])
	if exited {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "ERR: %s\n", err)
		return 1
	}

	if cli.Version {
		printVersion(stdout)
		return 0
	}

	if len(cli.Files) == 0 {
		fmt.Fprintln(stderr, "ERR: no input files")
		return 1
	}

	level := logger.Info
	if cli.Verbose {
		level = logger.Debug
	}
	log := logger.New(level, stderr, false)

	var reports []inspect.Report
	for _, path := range cli.Files {
		report, err := inspect.AnalyzeFile(path, inspect.Options{
			MaxSamplesPerRun: cli.MaxSamples,
			Log:              log,
		})
		if err != nil {
			log.Log(logger.Error, "%s: %v", path, err)
			return 1
		}
		reports = append(reports, report)
	}

	if cli.JSON {
		out, err := inspect.RenderJSON(reports)
		if err != nil {
			log.Log(logger.Error, "%v", err)
			return 1
		}
		fmt.Fprintln(stdout, out)
		return 0
	}

	fmt.Fprintln(stdout, inspect.RenderText(reports))
	return 0
}
