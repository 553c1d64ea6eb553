package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/wdm0006/colfill/pkg/imputer"
	"github.com/wdm0006/colfill/pkg/logging"
)

var (
	version = "0.1.0-dev"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run parses args, imputes and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("colfill", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: colfill [flags] [input [output]]")
		fs.PrintDefaults()
	}
	showVersion := fs.Bool("version", false, "Print version and exit")
	configPath := fs.String("config", "", "Path to config file (JSON, TOML or YAML)")
	in := fs.String("in", imputer.DefaultInput, "Input file (csv, jsonl or parquet; - for stdin)")
	out := fs.String("out", imputer.DefaultOutput, "Output file (- for stdout)")
	chunkSize := fs.Int("chunk-size", 0, "Stream CSV input in chunks of this many rows. 0 loads the whole table.")
	delimiter := fs.String("delimiter", ",", `Input delimiter: one character, "tab" or "auto"`)
	logLevel := fs.String("log-level", "info", "Log level (debug, info, warn, error)")
	logFormat := fs.String("log-format", logging.FormatConsole, "Log format (console or json)")
	showProfile := fs.Bool("profile", false, "Print column statistics of the input after imputing")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *showVersion {
		fmt.Fprintln(stdout, "colfill", version)
		return 0
	}
	if fs.NArg() > 2 {
		fs.Usage()
		return 2
	}

	var cfg imputer.Config
	if *configPath != "" {
		var err error
		if cfg, err = imputer.LoadConfig(*configPath); err != nil {
			fmt.Fprintln(stderr, "Error:", err)
			return 1
		}
	}
	// explicit flags win over the config file, positional arguments over both
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "in":
			cfg.Input.Path = *in
		case "out":
			cfg.Output.Path = *out
		case "chunk-size":
			cfg.ChunkSize = *chunkSize
		case "delimiter":
			cfg.Input.Delimiter = *delimiter
		case "log-level":
			cfg.Log.Level = *logLevel
		case "log-format":
			cfg.Log.Format = *logFormat
		}
	})
	if fs.NArg() > 0 {
		cfg.Input.Path = fs.Arg(0)
	}
	if fs.NArg() > 1 {
		cfg.Output.Path = fs.Arg(1)
	}
	cfg.Defaults()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}

	logger, err := logging.New(stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	res, err := imputer.New(cfg, logger).Run(ctx)
	if err != nil {
		fmt.Fprintln(stderr, imputer.Message(err, cfg.Input.Path, cfg.Output.Path))
		return 1
	}
	if *showProfile && res.Profile != nil {
		fmt.Fprint(stdout, res.Profile.ReportText())
	}
	// keep stdout clean when the table itself goes there
	if cfg.Output.Path != "-" {
		fmt.Fprintln(stdout, imputer.Success(res))
	}
	return 0
}
