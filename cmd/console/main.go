package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/lotus-events/internal/config"
	"github.com/jwebster45206/lotus-events/internal/content"
	"github.com/jwebster45206/lotus-events/internal/logger"
	"github.com/jwebster45206/lotus-events/pkg/dice"
	"github.com/jwebster45206/lotus-events/pkg/engine"
	"github.com/jwebster45206/lotus-events/pkg/handcrafted"
	"github.com/jwebster45206/lotus-events/pkg/player"
	"github.com/jwebster45206/lotus-events/pkg/procedural"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI, so logs go to a file.
	logPath := filepath.Join(os.TempDir(), "lotus-console.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logFile.Close()
	}()
	log := logger.SetupWriter(cfg, logFile)

	bundle, err := content.LoadDir(cfg.DataDir, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load content from %s: %v\n", cfg.DataDir, err)
		os.Exit(1)
	}

	seed := cfg.RNGSeed
	if seed == 0 {
		if seed, err = dice.NewSeed(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to seed dice: %v\n", err)
			os.Exit(1)
		}
	}
	log.Info("Console session starting", "seed", seed, "log_file", logPath)

	generator := procedural.NewGenerator(bundle.Library, log, procedural.WithWildcardChance(cfg.WildcardChance))
	eng := engine.New(generator, handcrafted.NewResolver(bundle.Events, log), log)

	ui := NewConsoleUI(eng, Session{
		Seed:    seed,
		Player:  player.Default(),
		History: player.NewHistory(cfg.HistorySize),
		Dice:    dice.New(seed),
	}, clipboard.WriteAll)

	p := tea.NewProgram(ui, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
