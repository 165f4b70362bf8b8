// Package content loads the situation library and handcrafted events from a
// data directory.
//
// Layout:
//
//	procedural/*.yaml   situations, one file per domain
//	procedural/variables.yaml
//	events.json         handcrafted fallback events
package content

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/lotus-events/pkg/event"
	"github.com/jwebster45206/lotus-events/pkg/handcrafted"
	"github.com/jwebster45206/lotus-events/pkg/procedural"
)

const (
	ProceduralDir = "procedural"
	VariablesFile = "variables.yaml"
	EventsFile    = "events.json"
)

var ErrNoSituations = errors.New("no situations found")

// Bundle is everything the engine needs, loaded once at startup.
type Bundle struct {
	Library *procedural.Library
	Events  []event.EventData
}

// situationFile is the shape of one procedural file. A file-level domain
// fills in situations that leave theirs empty.
type situationFile struct {
	Domain     event.Domain                   `yaml:"domain"`
	Situations []procedural.SituationTemplate `yaml:"situations"`
}

// LoadDir loads content from a directory on disk.
func LoadDir(dir string, logger *slog.Logger) (*Bundle, error) {
	return Load(os.DirFS(dir), logger)
}

// Load reads and validates all content in fsys. The handcrafted events file
// is optional; without it the fallback serves only the diagnostic event.
func Load(fsys fs.FS, logger *slog.Logger) (*Bundle, error) {
	if logger == nil {
		logger = slog.Default()
	}

	situations, err := loadSituations(fsys, logger)
	if err != nil {
		return nil, err
	}
	if len(situations) == 0 {
		return nil, ErrNoSituations
	}

	vars, err := loadVariables(fsys)
	if err != nil {
		return nil, err
	}

	lib, err := procedural.NewLibrary(situations, vars)
	if err != nil {
		return nil, fmt.Errorf("invalid situation library: %w", err)
	}

	events, err := loadEvents(fsys, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Content loaded",
		"situations", lib.Len(),
		"word_lists", len(vars.Lists),
		"handcrafted_events", len(events))

	return &Bundle{Library: lib, Events: events}, nil
}

func loadSituations(fsys fs.FS, logger *slog.Logger) ([]procedural.SituationTemplate, error) {
	entries, err := fs.ReadDir(fsys, ProceduralDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoSituations
		}
		return nil, fmt.Errorf("failed to read %s: %w", ProceduralDir, err)
	}

	var situations []procedural.SituationTemplate
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == VariablesFile || !isContentFile(name) {
			continue
		}

		p := path.Join(ProceduralDir, name)
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}

		var file situationFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", p, err)
		}
		for i := range file.Situations {
			if file.Situations[i].Domain == "" {
				file.Situations[i].Domain = file.Domain
			}
		}

		logger.Debug("Loaded situation file", "file", p, "situations", len(file.Situations))
		situations = append(situations, file.Situations...)
	}
	return situations, nil
}

func loadVariables(fsys fs.FS) (procedural.VariableLibraries, error) {
	var vars procedural.VariableLibraries
	p := path.Join(ProceduralDir, VariablesFile)
	data, err := fs.ReadFile(fsys, p)
	if err != nil {
		return vars, fmt.Errorf("failed to read %s: %w", p, err)
	}
	if err := yaml.Unmarshal(data, &vars); err != nil {
		return vars, fmt.Errorf("failed to parse %s: %w", p, err)
	}
	return vars, nil
}

func loadEvents(fsys fs.FS, logger *slog.Logger) ([]event.EventData, error) {
	events, err := handcrafted.LoadEvents(fsys, EventsFile)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("No handcrafted events file, fallback will only serve the placeholder", "file", EventsFile)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EventsFile, err)
	}
	return events, nil
}

func isContentFile(name string) bool {
	return slices.Contains([]string{".yaml", ".yml", ".json"}, path.Ext(name))
}
