// Command convert turns the handcrafted event spreadsheets (events.csv and
// event_options.csv) into the events.json file the servers load.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jwebster45206/lotus-events/internal/config"
	"github.com/jwebster45206/lotus-events/internal/content"
	"github.com/jwebster45206/lotus-events/internal/logger"
	"github.com/jwebster45206/lotus-events/pkg/handcrafted"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatalf("load config: %v", err)
	}

	var eventsPath string
	var optionsPath string
	var outPath string

	flag.StringVar(&eventsPath, "events", filepath.Join(cfg.DataDir, "events.csv"), "Events CSV (one row per event)")
	flag.StringVar(&optionsPath, "options", filepath.Join(cfg.DataDir, "event_options.csv"), "Options CSV (one row per option)")
	flag.StringVar(&outPath, "out", filepath.Join(cfg.DataDir, content.EventsFile), "Write events JSON to this path, or - for stdout")
	flag.Parse()

	if strings.TrimSpace(eventsPath) == "" || strings.TrimSpace(optionsPath) == "" {
		fatalf("events and options are required")
	}

	// stdout may carry the JSON, so logs go to stderr.
	log := logger.SetupWriter(cfg, os.Stderr)

	n, err := run(eventsPath, optionsPath, outPath, log)
	if err != nil {
		fatalf("%v", err)
	}
	log.Info("Converted handcrafted events", "count", n, "out", outPath)
}

func run(eventsPath, optionsPath, outPath string, log *slog.Logger) (int, error) {
	eventsFile, err := os.Open(eventsPath)
	if err != nil {
		return 0, fmt.Errorf("open events: %w", err)
	}
	defer func() {
		_ = eventsFile.Close()
	}()

	optionsFile, err := os.Open(optionsPath)
	if err != nil {
		return 0, fmt.Errorf("open options: %w", err)
	}
	defer func() {
		_ = optionsFile.Close()
	}()

	events, err := handcrafted.ConvertCSV(eventsFile, optionsFile, log)
	if err != nil {
		return 0, fmt.Errorf("convert: %w", err)
	}

	var out io.Writer = os.Stdout
	if outPath != "-" {
		f, err := os.Create(outPath)
		if err != nil {
			return 0, fmt.Errorf("create %s: %w", outPath, err)
		}
		defer func() {
			_ = f.Close()
		}()
		out = f
	}

	if err := handcrafted.WriteEvents(out, events); err != nil {
		return 0, fmt.Errorf("write events: %w", err)
	}
	return len(events), nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "ERROR: "+format+"\n", args...)
	os.Exit(1)
}
