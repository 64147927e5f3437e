package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/ironsheep/image-decompose/internal/decompose"
	"github.com/ironsheep/image-decompose/internal/extract"
	"github.com/ironsheep/image-decompose/internal/ocr"
	"github.com/ironsheep/image-decompose/internal/registry"
	"github.com/ironsheep/image-decompose/internal/repair"
	"github.com/ironsheep/image-decompose/internal/service"
	"github.com/ironsheep/image-decompose/internal/textattr"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printHelp()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "--version", "-v", "version":
		fmt.Printf("image-decompose %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	case "--help", "-h", "help":
		printHelp()
		return
	case "serve":
		run(cmdServe, os.Args[2:])
	case "analyze":
		run(cmdAnalyze, os.Args[2:])
	case "batch":
		run(cmdBatch, os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printHelp()
		os.Exit(2)
	}
}

func printHelp() {
	fmt.Println("image-decompose - recursive raster-image decomposition")
	fmt.Println()
	fmt.Println("Usage: image-decompose <command> [options] [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  analyze <image>        Decompose one image, print the element tree as JSON")
	fmt.Println("  batch <image>...       Decompose several images concurrently")
	fmt.Println("  serve                  JSON-RPC service over stdin/stdout")
	fmt.Println("  version                Print version information")
	fmt.Println()
	fmt.Println("Options (before args):")
	fmt.Println("  -config <path>         YAML configuration file")
	fmt.Println("  -workdir <path>        Artifact output directory (crops, backgrounds)")
	fmt.Println("  -debug                 Enable debug logging")
}

type cmdFunc func(cfg decompose.Config, log *slog.Logger, args []string) error

// run parses shared flags, builds the controller wiring, and executes
// the command.
func run(cmd cmdFunc, args []string) {
	fs := flag.NewFlagSet("image-decompose", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML configuration file")
	workDir := fs.String("workdir", "", "artifact output directory")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.Parse(args)

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	// stdout carries results; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg := decompose.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = decompose.LoadConfig(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	}
	if *workDir != "" {
		cfg.WorkDir = *workDir
	}

	if err := cmd(cfg, log, fs.Args()); err != nil {
		log.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// buildController wires the capability registries from the
// configuration: layout extraction when a processor is configured with
// the local heuristic as fallback, a dedicated table extractor, mask
// repair for precise region types with the generative provider as the
// default when an endpoint is configured.
func buildController(cfg decompose.Config, log *slog.Logger) (*decompose.Controller, error) {
	recognizer := &ocr.Tesseract{Language: cfg.OCRLanguage}

	extractors := registry.New[extract.Extractor]()
	heuristic := extract.NewHeuristic(recognizer, log)
	if cfg.Layout.Enabled() {
		extractors.RegisterDefault(extract.NewLayout(cfg.Layout, log))
	} else {
		extractors.RegisterDefault(heuristic)
	}
	extractors.RegisterTypes([]string{"table"}, extract.NewTable(recognizer, log))

	repairers := registry.New[repair.Strategy]()
	mask := repair.NewMask()
	if cfg.Generative.Enabled() {
		repairers.RegisterDefault(repair.NewGenerative(cfg.Generative))
		repairers.RegisterTypes([]string{"text", "table", "table_cell"}, mask)
	} else {
		repairers.RegisterDefault(mask)
	}

	textAttrs := registry.New[textattr.Strategy]()
	textAttrs.RegisterDefault(textattr.NewHeuristic())

	return decompose.NewController(cfg, log, extractors, repairers, textAttrs)
}

func cmdServe(cfg decompose.Config, log *slog.Logger, args []string) error {
	controller, err := buildController(cfg, log)
	if err != nil {
		return err
	}
	return service.New(controller, log).Run(context.Background(), os.Stdin, os.Stdout)
}

func cmdAnalyze(cfg decompose.Config, log *slog.Logger, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("analyze takes exactly one image path")
	}
	controller, err := buildController(cfg, log)
	if err != nil {
		return err
	}

	node, err := controller.Analyze(context.Background(), args[0])
	if err != nil {
		return err
	}
	return printJSON(node)
}

func cmdBatch(cfg decompose.Config, log *slog.Logger, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("batch takes one or more image paths")
	}
	controller, err := buildController(cfg, log)
	if err != nil {
		return err
	}

	nodes := controller.AnalyzeBatch(context.Background(), args)
	return printJSON(nodes)
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
