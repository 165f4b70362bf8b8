package player

import "github.com/jwebster45206/lotus-events/pkg/event"

// DefaultHistorySize keeps two domains for the repetition filter plus headroom.
const DefaultHistorySize = 4

// History is the per-session anti-repetition record. It is owned by a single
// player session and is never shared between sessions.
type History struct {
	Size          int             `json:"size"`
	RecentDomains []event.Domain  `json:"recent_domains"` // most recent first
	Encountered   map[string]bool `json:"encountered"`    // situation ids seen this session
}

// NewHistory creates an empty history keeping at most size recent domains.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{
		Size:          size,
		RecentDomains: make([]event.Domain, 0, size),
		Encountered:   make(map[string]bool),
	}
}

// Recent returns up to n of the most recent domains, newest first.
func (h *History) Recent(n int) []event.Domain {
	if h == nil {
		return nil
	}
	if n > len(h.RecentDomains) {
		n = len(h.RecentDomains)
	}
	return h.RecentDomains[:n]
}

// HasEncountered reports whether the situation id was already drawn this session.
func (h *History) HasEncountered(id string) bool {
	if h == nil {
		return false
	}
	return h.Encountered[id]
}

// Record notes a drawn situation: its domain goes to the front of the rolling
// window and its id joins the encountered set.
func (h *History) Record(domain event.Domain, id string) {
	if h.Encountered == nil {
		h.Encountered = make(map[string]bool)
	}
	if h.Size <= 0 {
		h.Size = DefaultHistorySize
	}

	h.RecentDomains = append([]event.Domain{domain}, h.RecentDomains...)
	if len(h.RecentDomains) > h.Size {
		h.RecentDomains = h.RecentDomains[:h.Size]
	}
	if id != "" {
		h.Encountered[id] = true
	}
}

// RecordEvent records a procedural event. Handcrafted events carry no domain
// and leave the history untouched.
func (h *History) RecordEvent(e event.EventData) {
	if !e.IsProcedural() {
		return
	}
	h.Record(e.ProceduralDomain, e.ProceduralID)
}
