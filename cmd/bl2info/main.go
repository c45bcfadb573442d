// bl2info prints container and header information from save files.
//
// Usage:
//
//	bl2info [flags] <savefile> [<savefile> ...]
//
// Flags:
//
//	    --config string   YAML config file (default $BL2SAVE_CONFIG)
//	-r, --record          also decode the record and print a summary
//	-h, --help            print this message
//	    --version         print version information
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
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
		record     bool
	)
	flagSet := pflag.NewFlagSet("bl2info", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&configPath, "config", "", "YAML config file (default $"+config.EnvVar+")")
	flagSet.BoolVarP(&record, "record", "r", false, "also decode the record and print a summary")
	flagSet.BoolP("help", "h", false, "print this message")
	flagSet.Bool("version", false, "print version information")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printUsage(stdout, flagSet)
			return 0
		}
		fmt.Fprintf(stderr, "bl2info: %v\n", err)
		return 2
	}
	if help, _ := flagSet.GetBool("help"); help {
		printUsage(stdout, flagSet)
		return 0
	}
	if v, _ := flagSet.GetBool("version"); v {
		fmt.Fprintf(stdout, "bl2info %s\n", version)
		return 0
	}
	if flagSet.NArg() == 0 {
		printUsage(stderr, flagSet)
		return 2
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "bl2info: %v\n", err)
		return 2
	}
	decoder := &save.Decoder{Limits: cfg.SaveLimits(), Logger: cfg.Logger(stderr)}

	exitCode := 0
	for _, path := range flagSet.Args() {
		if err := printInfo(stdout, decoder, path, record); err != nil {
			var le *save.LoadError
			if errors.As(err, &le) && le.Path == "" {
				le.Path = path
			}
			if le == nil {
				err = fmt.Errorf("%s: %w", path, err)
			}
			fmt.Fprintf(stderr, "bl2info: %v\n", err)
			exitCode = 1
		}
	}
	return exitCode
}

func printInfo(w io.Writer, decoder *save.Decoder, path string, record bool) error {
	data, err := decoder.ReadFile(path)
	if err != nil {
		return err
	}
	var (
		info *save.ContainerInfo
		g    *save.SaveGame
	)
	if record {
		info, g, err = decoder.InspectRecord(context.Background(), data)
	} else {
		info, err = decoder.Inspect(data)
	}
	if err != nil {
		return err
	}

	h := info.Header
	fmt.Fprintf(w, "\nfile %s:\n\n", path)
	fmt.Fprintf(w, "container size (bytes): %d (%s)\n", info.Size, humanize.IBytes(uint64(info.Size)))
	fmt.Fprintf(w, "sha1: %s\n", hex.EncodeToString(info.Digest[:]))
	fmt.Fprintf(w, "lzo1x: %d -> %d bytes (%s)\n", info.CompressedSize, info.BlockSize, humanize.IBytes(uint64(info.BlockSize)))
	fmt.Fprintf(w, "magic: %s\n", h.Magic[:])
	fmt.Fprintf(w, "inner size: %d\n", h.InnerSize)
	fmt.Fprintf(w, "version: %d\n", h.Version)
	fmt.Fprintf(w, "hash: 0x%08x\n", h.Hash)
	fmt.Fprintf(w, "payload size (bytes): %d\n", h.PayloadSize)
	fmt.Fprintf(w, "huffman tree: %d nodes, %d symbols, %d bits\n", info.TreeNodes, info.TreeSymbols, info.TreeBits)

	if g == nil {
		return nil
	}
	fmt.Fprintf(w, "\nclass: %s\n", g.PlayerClass)
	fmt.Fprintf(w, "level: %d (%s xp)\n", g.PlayerLevel, humanize.Comma(int64(g.ExperiencePoints)))
	fmt.Fprintf(w, "skill points: %d general, %d specialist\n", g.GeneralSkillPoints, g.SpecialistSkillPoints)
	fmt.Fprintf(w, "playthroughs completed: %d\n", g.PlaythroughsCompleted)
	if len(g.Currency) > 0 {
		fmt.Fprintf(w, "money: %s\n", humanize.Comma(int64(g.Currency[0])))
	}
	fmt.Fprintf(w, "skills: %d, resources: %d, unknown fields: %d\n", len(g.Skills), len(g.Resources), len(g.Unknown))
	return nil
}

func printUsage(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, "Usage: bl2info [flags] savefile [savefile ...]\n\n")
	fmt.Fprintf(w, "Read save files and print container, header and Huffman tree details.\n\n")
	fmt.Fprintf(w, "Flags:\n%s", flagSet.FlagUsages())
}
