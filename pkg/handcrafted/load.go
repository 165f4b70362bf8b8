package handcrafted

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"

	"github.com/jwebster45206/lotus-events/pkg/event"
)

// ParseEvents decodes a JSON array of handcrafted events.
func ParseEvents(r io.Reader) ([]event.EventData, error) {
	var events []event.EventData
	if err := json.NewDecoder(r).Decode(&events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}
	return events, nil
}

// LoadEvents reads a JSON event file from fsys. A missing file wraps
// fs.ErrNotExist.
func LoadEvents(fsys fs.FS, name string) ([]event.EventData, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()
	return ParseEvents(f)
}

// WriteEvents encodes events as indented JSON.
func WriteEvents(w io.Writer, events []event.EventData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(events); err != nil {
		return fmt.Errorf("failed to encode events: %w", err)
	}
	return nil
}
