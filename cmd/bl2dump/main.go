// bl2dump decodes save files and writes their records as JSON, YAML or CBOR.
//
// Usage:
//
//	bl2dump [flags] <savefile> [<savefile> ...]
//
// Flags:
//
//	    --config string       YAML config file (default $BL2SAVE_CONFIG)
//	-f, --format string       output format: json, yaml or cbor
//	-o, --output-dir string   write <name>.<format> per input instead of stdout
//	-j, --workers int         files decoded concurrently
//	-v, --verbose             log container diagnostics
//	-h, --help                print this message
//	    --version             print version information
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/Oberacda/Borderlands2SaveEditor/internal/config"
	"github.com/Oberacda/Borderlands2SaveEditor/save"
)

const version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var (
		configPath string
		format     string
		outputDir  string
		workers    int
		verbose    bool
	)
	flagSet := pflag.NewFlagSet("bl2dump", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&configPath, "config", "", "YAML config file (default $"+config.EnvVar+")")
	flagSet.StringVarP(&format, "format", "f", "", "output format: json, yaml or cbor")
	flagSet.StringVarP(&outputDir, "output-dir", "o", "", "write <name>.<format> per input instead of stdout")
	flagSet.IntVarP(&workers, "workers", "j", 0, "files decoded concurrently")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log container diagnostics")
	flagSet.BoolP("help", "h", false, "print this message")
	flagSet.Bool("version", false, "print version information")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printUsage(stdout, flagSet)
			return 0
		}
		fmt.Fprintf(stderr, "bl2dump: %v\n", err)
		return 2
	}
	if help, _ := flagSet.GetBool("help"); help {
		printUsage(stdout, flagSet)
		return 0
	}
	if v, _ := flagSet.GetBool("version"); v {
		fmt.Fprintf(stdout, "bl2dump %s\n", version)
		return 0
	}
	if flagSet.NArg() == 0 {
		printUsage(stderr, flagSet)
		return 2
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "bl2dump: %v\n", err)
		return 2
	}
	if flagSet.Changed("format") {
		cfg.Output.Format = strings.ToLower(format)
	}
	if flagSet.Changed("output-dir") {
		cfg.Output.Directory = outputDir
	}
	if flagSet.Changed("workers") {
		cfg.Workers = workers
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "bl2dump: %v\n", err)
		return 2
	}

	logger := cfg.Logger(stderr)
	decoder := &save.Decoder{Limits: cfg.SaveLimits(), Logger: logger}

	results := decoder.LoadFiles(context.Background(), flagSet.Args(), cfg.Workers)

	exitCode := 0
	for _, r := range results {
		if r.Err != nil {
			logger.Error("decode failed", "file", r.Path, "stage", save.StageOf(r.Err).String(), "error", r.Err)
			exitCode = 1
			continue
		}
		if err := writeRecord(stdout, cfg.Output, r.Path, r.Game); err != nil {
			logger.Error("write failed", "file", r.Path, "error", err)
			exitCode = 1
			continue
		}
		logger.Info("decoded", "file", r.Path, "class", r.Game.PlayerClass, "level", r.Game.PlayerLevel)
	}
	return exitCode
}

// writeRecord writes g to stdout, or to a file named after path inside
// out.Directory.
func writeRecord(stdout io.Writer, out config.OutputConfig, path string, g *save.SaveGame) error {
	if out.Directory == "" {
		return encodeRecord(stdout, out.Format, g)
	}

	if err := os.MkdirAll(out.Directory, 0o755); err != nil {
		return err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + "." + out.Format
	f, err := os.Create(filepath.Join(out.Directory, name))
	if err != nil {
		return err
	}
	if err := encodeRecord(f, out.Format, g); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printUsage(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, "Usage: bl2dump [flags] savefile [savefile ...]\n\n")
	fmt.Fprintf(w, "Decode save files and write each record as JSON, YAML or CBOR.\n\n")
	fmt.Fprintf(w, "Flags:\n%s", flagSet.FlagUsages())
}
