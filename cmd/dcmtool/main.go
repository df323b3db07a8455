// Command dcmtool is the CLI entrypoint for the DICOM batch utilities.
//
// It parses flags, validates configuration, runs the precondition checks and
// then drives one command (anonymize, dump, rewrite, load, sort) over the
// resolved work items.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/backmassage/dcmtool/internal/check"
	"github.com/backmassage/dcmtool/internal/classify"
	"github.com/backmassage/dcmtool/internal/config"
	"github.com/backmassage/dcmtool/internal/dicomstore"
	"github.com/backmassage/dcmtool/internal/display"
	"github.com/backmassage/dcmtool/internal/logging"
	"github.com/backmassage/dcmtool/internal/pipeline"
	"github.com/backmassage/dcmtool/internal/placement"
	"github.com/backmassage/dcmtool/internal/rules"
)

// version is injected at build time via -ldflags.
var version = "0.3.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// Phase 1: Bootstrap. The logger doesn't exist yet, so errors go
	// directly to stderr via fmt.
	cfg := config.DefaultConfig()
	if err := config.ParseFlags(&cfg, args, version); err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			return 0
		case errors.Is(err, config.ErrVersion):
			fmt.Fprintln(os.Stdout, version)
			return 0
		}
		fmt.Fprintf(os.Stderr, "dcmtool: %v\n", err)
		return 1
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "dcmtool: %v\n", err)
		return 1
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dcmtool: %v\n", err)
		return 1
	}
	defer log.Close()

	// Phase 2: Logger available. Preconditions are fatal and run before any
	// work item is touched.
	if cfg.Verbose {
		display.PrintBanner(os.Stdout)
	}
	log.Info("%s", display.Header(version, string(cfg.Command), cfg.InputPath))

	isDir, err := check.Preconditions(&cfg, log)
	if err != nil {
		log.Error("%v", err)
		return 1
	}

	var rs *rules.RuleSet
	if cfg.RulesPath != "" {
		if rs, err = rules.Load(cfg.RulesPath); err != nil {
			log.Error("%v", err)
			return 1
		}
		log.Debug("Loaded %d rule(s) from %s (default rule: %t)", rs.Len(), cfg.RulesPath, rs.HasDefault())
	}

	// Phase 3: Build the processor for the command.
	store := dicomstore.NewCodec()
	var (
		proc pipeline.Processor
		mode = pipeline.ResolveFlat
	)
	switch cfg.Command {
	case config.CmdAnonymize:
		if err := os.MkdirAll(cfg.OutputPath, 0o755); err != nil {
			log.Error("Cannot create output directory: %s", cfg.OutputPath)
			return 1
		}
		proc = pipeline.NewAnonymizer(store, rs, cfg.OutputPath)
	case config.CmdDump:
		proc = pipeline.NewDumper(store, log.Out())
	case config.CmdRewrite:
		proc = pipeline.NewRewriter(store, log.Out(), cfg.Dump, rs, cfg.OutputPath)
	case config.CmdLoad:
		proc = pipeline.NewLoader(store)
		mode = pipeline.ResolveGrouped
	case config.CmdSort:
		key, err := classify.ParseMode(string(cfg.SortKey))
		if err != nil {
			log.Error("%v", err)
			return 1
		}
		move := placement.ModeCopy
		if cfg.Move {
			move = placement.ModeMove
		}
		engine := placement.NewEngine(placement.Policy(cfg.OnConflict))
		proc = pipeline.NewSorter(store, classify.New(key, classify.NewRegistry()), engine, move)
	}

	// Phase 4: Resolve and run.
	items, single, err := pipeline.Resolve(cfg.InputPath, mode, cfg.Folder)
	if err != nil {
		log.Error("%v", err)
		return 1
	}
	shape := pipeline.ShapeBatch
	if single || !isDir {
		shape = pipeline.ShapeSingle
	}

	res := pipeline.NewOrchestrator(log).Run(items, proc, shape)

	if cfg.ReportFile != "" {
		if err := pipeline.WriteYAML(cfg.ReportFile, res.Report(string(cfg.Command), cfg.InputPath)); err != nil {
			log.Error("%v", err)
			return 1
		}
		log.Info("Report written to %s", cfg.ReportFile)
	}

	if err := res.Err(); err != nil {
		log.Error("%s failed: %v", cfg.Command, err)
	}
	return res.ExitCode(cfg.Strict)
}
