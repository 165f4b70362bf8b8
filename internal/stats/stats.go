// Package stats counts issued events and resolved choices so content gaps
// show up without reading logs.
package stats

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jwebster45206/lotus-events/pkg/engine"
	"github.com/jwebster45206/lotus-events/pkg/event"
)

// Recorder counts generation results.
type Recorder interface {
	RecordEvent(ctx context.Context, origin engine.Origin, domain event.Domain, tier int) error
	RecordChoice(ctx context.Context, failed bool) error
	Snapshot(ctx context.Context) (*Snapshot, error)
	Close() error
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Origins map[string]int64 `json:"origins"`
	Domains map[string]int64 `json:"domains"`
	Tiers   map[string]int64 `json:"tiers"`
	Choices map[string]int64 `json:"choices"`
}

func newSnapshot() *Snapshot {
	return &Snapshot{
		Origins: map[string]int64{},
		Domains: map[string]int64{},
		Tiers:   map[string]int64{},
		Choices: map[string]int64{},
	}
}

// Field prefixes within the events hash.
const (
	originPrefix = "origin:"
	domainPrefix = "domain:"
	tierPrefix   = "tier:"

	choiceSuccess = "success"
	choiceFailure = "failure"
)

// eventFields lists the counters bumped for one issued event. Handcrafted
// events have no domain and only count origin and tier.
func eventFields(origin engine.Origin, domain event.Domain, tier int) []string {
	fields := []string{originPrefix + string(origin), tierPrefix + strconv.Itoa(tier)}
	if domain != "" {
		fields = append(fields, domainPrefix+string(domain))
	}
	return fields
}

func choiceField(failed bool) string {
	if failed {
		return choiceFailure
	}
	return choiceSuccess
}

// add files a raw hash field into the right snapshot map.
func (s *Snapshot) add(field string, n int64) error {
	for prefix, m := range map[string]map[string]int64{
		originPrefix: s.Origins,
		domainPrefix: s.Domains,
		tierPrefix:   s.Tiers,
	} {
		if name, ok := strings.CutPrefix(field, prefix); ok && name != "" {
			m[name] += n
			return nil
		}
	}
	return fmt.Errorf("unknown stats field %q", field)
}
